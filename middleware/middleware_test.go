package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"plataformaclinica/models"
	"plataformaclinica/servicios"
)

type verificadorMock struct {
	VerificarTokenFn func(ctx context.Context, idToken string) (string, error)
}

var _ VerificadorToken = (*verificadorMock)(nil)

func (m *verificadorMock) VerificarToken(ctx context.Context, idToken string) (string, error) {
	return m.VerificarTokenFn(ctx, idToken)
}

type perfilesMock struct {
	ObtenerUsuarioFn func(ctx context.Context, uid string) (*models.Usuario, error)
}

var _ BuscadorPerfil = (*perfilesMock)(nil)

func (m *perfilesMock) ObtenerUsuario(ctx context.Context, uid string) (*models.Usuario, error) {
	return m.ObtenerUsuarioFn(ctx, uid)
}

func logPrueba() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestAutenticacionSinTokenResponde401(t *testing.T) {
	mw := Autenticacion(&verificadorMock{}, &perfilesMock{}, logPrueba())
	protegido := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("el handler no debe ejecutarse sin token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/casos", nil)
	resp := httptest.NewRecorder()

	protegido.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestAutenticacionTokenInvalidoResponde403(t *testing.T) {
	mw := Autenticacion(&verificadorMock{
		VerificarTokenFn: func(ctx context.Context, idToken string) (string, error) {
			return "", errors.New("token expirado")
		},
	}, &perfilesMock{}, logPrueba())
	protegido := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("el handler no debe ejecutarse con token inválido")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/casos", nil)
	req.Header.Set("Authorization", "Bearer token-malo")
	resp := httptest.NewRecorder()

	protegido.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestAutenticacionAdjuntaLaIdentidad(t *testing.T) {
	mw := Autenticacion(&verificadorMock{
		VerificarTokenFn: func(ctx context.Context, idToken string) (string, error) {
			assert.Equal(t, "token-bueno", idToken)
			return "uid-123", nil
		},
	}, &perfilesMock{
		ObtenerUsuarioFn: func(ctx context.Context, uid string) (*models.Usuario, error) {
			return &models.Usuario{ID: uid, Nombre: "Ana", Apellido: "López", Rol: models.RolAtencion}, nil
		},
	}, logPrueba())

	var identidad servicios.Identidad
	protegido := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identidad = IdentidadDe(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/casos", nil)
	req.Header.Set("Authorization", "Bearer token-bueno")
	resp := httptest.NewRecorder()

	protegido.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "uid-123", identidad.UID)
	assert.Equal(t, models.RolAtencion, identidad.Rol)
	assert.Equal(t, "Ana López", identidad.Nombre)
}

func TestAutenticacionSinPerfilSigueConRolVacio(t *testing.T) {
	mw := Autenticacion(&verificadorMock{
		VerificarTokenFn: func(ctx context.Context, idToken string) (string, error) {
			return "uid-123", nil
		},
	}, &perfilesMock{
		ObtenerUsuarioFn: func(ctx context.Context, uid string) (*models.Usuario, error) {
			return nil, errors.New("sin perfil")
		},
	}, logPrueba())

	var identidad servicios.Identidad
	protegido := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identidad = IdentidadDe(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/casos", nil)
	req.Header.Set("Authorization", "Bearer token-bueno")
	resp := httptest.NewRecorder()

	protegido.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "uid-123", identidad.UID)
	assert.Empty(t, identidad.Rol)
}

func TestIdentidadDeSinMiddlewareDevuelveCero(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, servicios.Identidad{}, IdentidadDe(req))
}
