package servicios

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"plataformaclinica/models"
)

func TestGenerarPDF(t *testing.T) {
	caso := casoAbierto()
	caso.Diagnostico = "Fractura distal de radio, se recomienda inmovilización."

	almacen := &almacenMock{
		ObtenerCasoFn: func(ctx context.Context, id string) (*models.Caso, error) {
			return caso, nil
		},
	}

	s := NuevoServicioReportes(almacen)

	buffer, nombre, err := s.GenerarPDF(context.Background(), caso.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Reporte_12345678901.pdf", nombre)
	// Un PDF válido empieza con la firma %PDF.
	require.Greater(t, buffer.Len(), 4)
	assert.Equal(t, "%PDF", buffer.String()[:4])
}

func TestGenerarPDFCasoInexistente(t *testing.T) {
	almacen := &almacenMock{
		ObtenerCasoFn: func(ctx context.Context, id string) (*models.Caso, error) {
			return nil, mongo.ErrNoDocuments
		},
	}

	s := NuevoServicioReportes(almacen)

	_, _, err := s.GenerarPDF(context.Background(), "000000000000000000000000")
	assert.ErrorIs(t, err, ErrNoEncontrado)
}
