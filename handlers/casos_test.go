package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plataformaclinica/models"
	"plataformaclinica/servicios"
)

type casosMock struct {
	CrearCasoFn         func(ctx context.Context, caso *models.Caso, quien servicios.Identidad) (string, error)
	ObtenerCasoFn       func(ctx context.Context, id string) (*models.Caso, error)
	ListarCasosFn       func(ctx context.Context, estado string, quien servicios.Identidad) ([]models.Caso, error)
	ComentariosDeCasoFn func(ctx context.Context, casoID string) ([]models.Comentario, error)
	AgregarComentarioFn func(ctx context.Context, casoID, texto, autorID, autorNombre, autorRol string) (*models.Comentario, error)
	CerrarCasoFn        func(ctx context.Context, id string, quien servicios.Identidad) error
	ActualizarCasoFn    func(ctx context.Context, id string, campos map[string]interface{}, quien servicios.Identidad) error
	EliminarCasoFn      func(ctx context.Context, id string, quien servicios.Identidad) error
}

var _ Casos = (*casosMock)(nil)

func (m *casosMock) CrearCaso(ctx context.Context, caso *models.Caso, quien servicios.Identidad) (string, error) {
	return m.CrearCasoFn(ctx, caso, quien)
}

func (m *casosMock) ObtenerCaso(ctx context.Context, id string) (*models.Caso, error) {
	return m.ObtenerCasoFn(ctx, id)
}

func (m *casosMock) ListarCasos(ctx context.Context, estado string, quien servicios.Identidad) ([]models.Caso, error) {
	return m.ListarCasosFn(ctx, estado, quien)
}

func (m *casosMock) ComentariosDeCaso(ctx context.Context, casoID string) ([]models.Comentario, error) {
	return m.ComentariosDeCasoFn(ctx, casoID)
}

func (m *casosMock) AgregarComentario(ctx context.Context, casoID, texto, autorID, autorNombre, autorRol string) (*models.Comentario, error) {
	return m.AgregarComentarioFn(ctx, casoID, texto, autorID, autorNombre, autorRol)
}

func (m *casosMock) CerrarCaso(ctx context.Context, id string, quien servicios.Identidad) error {
	return m.CerrarCasoFn(ctx, id, quien)
}

func (m *casosMock) ActualizarCaso(ctx context.Context, id string, campos map[string]interface{}, quien servicios.Identidad) error {
	return m.ActualizarCasoFn(ctx, id, campos, quien)
}

func (m *casosMock) EliminarCaso(ctx context.Context, id string, quien servicios.Identidad) error {
	return m.EliminarCasoFn(ctx, id, quien)
}

func logPrueba() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func enrutador(h *HandlerCasos) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/casos", h.Crear).Methods("POST")
	r.HandleFunc("/api/casos", h.Listar).Methods("GET")
	r.HandleFunc("/api/casos/{id}", h.Obtener).Methods("GET")
	r.HandleFunc("/api/casos/{id}", h.Actualizar).Methods("PATCH")
	r.HandleFunc("/api/casos/{id}/comentarios", h.AgregarComentario).Methods("POST")
	r.HandleFunc("/api/casos/{id}/cerrar", h.Cerrar).Methods("PATCH")
	return r
}

func TestCrearCasoResponde201ConID(t *testing.T) {
	h := NuevoHandlerCasos(&casosMock{
		CrearCasoFn: func(ctx context.Context, caso *models.Caso, quien servicios.Identidad) (string, error) {
			assert.Equal(t, "12345678901", caso.PacienteNSS)
			return "id-nuevo", nil
		},
	}, logPrueba())

	cuerpo, _ := json.Marshal(map[string]string{
		"pacienteNSS":            "12345678901",
		"pacienteNombreCompleto": "Juan Pérez",
		"medicoEspecialistaId":   "uid-esp",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/casos", bytes.NewReader(cuerpo))
	resp := httptest.NewRecorder()

	enrutador(h).ServeHTTP(resp, req)

	assert.Equal(t, http.StatusCreated, resp.Code)

	var respuesta map[string]string
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &respuesta))
	assert.Equal(t, "id-nuevo", respuesta["id"])
}

func TestCrearCasoCuerpoIlegible(t *testing.T) {
	h := NuevoHandlerCasos(&casosMock{}, logPrueba())

	req := httptest.NewRequest(http.MethodPost, "/api/casos", bytes.NewReader([]byte("{roto")))
	resp := httptest.NewRecorder()

	enrutador(h).ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestErroresDelServicioSeTraducenACodigos(t *testing.T) {
	casos := []struct {
		nombre string
		err    error
		codigo int
	}{
		{"validación", servicios.ErrValidacion, http.StatusBadRequest},
		{"prohibido", servicios.ErrProhibido, http.StatusForbidden},
		{"no encontrado", servicios.ErrNoEncontrado, http.StatusNotFound},
		{"infraestructura", errors.New("mongo caído"), http.StatusInternalServerError},
	}

	for _, tc := range casos {
		t.Run(tc.nombre, func(t *testing.T) {
			h := NuevoHandlerCasos(&casosMock{
				CerrarCasoFn: func(ctx context.Context, id string, quien servicios.Identidad) error {
					return tc.err
				},
			}, logPrueba())

			req := httptest.NewRequest(http.MethodPatch, "/api/casos/abc/cerrar", nil)
			resp := httptest.NewRecorder()

			enrutador(h).ServeHTTP(resp, req)

			assert.Equal(t, tc.codigo, resp.Code)
		})
	}
}

func TestErrorDeInfraestructuraNoFiltraDetalle(t *testing.T) {
	h := NuevoHandlerCasos(&casosMock{
		CerrarCasoFn: func(ctx context.Context, id string, quien servicios.Identidad) error {
			return errors.New("dial tcp 10.0.0.5:27017: connection refused")
		},
	}, logPrueba())

	req := httptest.NewRequest(http.MethodPatch, "/api/casos/abc/cerrar", nil)
	resp := httptest.NewRecorder()

	enrutador(h).ServeHTTP(resp, req)

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.NotContains(t, resp.Body.String(), "10.0.0.5")
}

func TestListarPasaElEstado(t *testing.T) {
	h := NuevoHandlerCasos(&casosMock{
		ListarCasosFn: func(ctx context.Context, estado string, quien servicios.Identidad) ([]models.Caso, error) {
			assert.Equal(t, "cerrado", estado)
			return []models.Caso{}, nil
		},
	}, logPrueba())

	req := httptest.NewRequest(http.MethodGet, "/api/casos?estado=cerrado", nil)
	resp := httptest.NewRecorder()

	enrutador(h).ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, "[]", resp.Body.String())
}

func TestAgregarComentarioResponde201(t *testing.T) {
	h := NuevoHandlerCasos(&casosMock{
		AgregarComentarioFn: func(ctx context.Context, casoID, texto, autorID, autorNombre, autorRol string) (*models.Comentario, error) {
			assert.Equal(t, "abc", casoID)
			assert.Equal(t, "hola", texto)
			assert.Equal(t, "uid-1", autorID)
			return &models.Comentario{Texto: texto}, nil
		},
	}, logPrueba())

	cuerpo, _ := json.Marshal(map[string]string{
		"texto":       "hola",
		"autorId":     "uid-1",
		"autorNombre": "Ana",
		"autorRol":    "atencion",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/casos/abc/comentarios", bytes.NewReader(cuerpo))
	resp := httptest.NewRecorder()

	enrutador(h).ServeHTTP(resp, req)

	assert.Equal(t, http.StatusCreated, resp.Code)
}

func TestActualizarPasaLosCampos(t *testing.T) {
	h := NuevoHandlerCasos(&casosMock{
		ActualizarCasoFn: func(ctx context.Context, id string, campos map[string]interface{}, quien servicios.Identidad) error {
			assert.Equal(t, map[string]interface{}{"diagnostico": "fractura distal"}, campos)
			return nil
		},
	}, logPrueba())

	cuerpo, _ := json.Marshal(map[string]string{"diagnostico": "fractura distal"})
	req := httptest.NewRequest(http.MethodPatch, "/api/casos/abc", bytes.NewReader(cuerpo))
	resp := httptest.NewRecorder()

	enrutador(h).ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
}
