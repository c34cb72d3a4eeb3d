package servicios

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ClienteIA habla con el microservicio de análisis de imágenes. Un solo
// intento por archivo: sin reintentos, el que llama decide qué hacer con
// el error.
type ClienteIA struct {
	baseURL string
	cliente *http.Client
}

var _ AnalizadorIA = (*ClienteIA)(nil)

func NuevoClienteIA(baseURL string) *ClienteIA {
	return &ClienteIA{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		cliente: &http.Client{Timeout: 60 * time.Second},
	}
}

// Analizar manda la ruta del archivo al servicio de inferencia y devuelve
// el resultado estructurado.
func (c *ClienteIA) Analizar(ctx context.Context, uploadPath string) (*ResultadoIA, error) {
	cuerpo, err := json.Marshal(map[string]string{"path": uploadPath})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(cuerpo))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.cliente.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error al llamar al servicio de IA: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("el servicio de IA respondió %d", resp.StatusCode)
	}

	var resultado ResultadoIA
	if err := json.NewDecoder(resp.Body).Decode(&resultado); err != nil {
		return nil, fmt.Errorf("error al decodificar la respuesta de IA: %v", err)
	}
	return &resultado, nil
}
