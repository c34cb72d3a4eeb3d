package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"plataformaclinica/models"
	"plataformaclinica/servicios"
)

// Usuarios es el contrato del servicio de usuarios.
type Usuarios interface {
	Registrar(ctx context.Context, solicitud servicios.RegistroUsuario) (string, error)
	ObtenerUsuario(ctx context.Context, uid string) (*models.Usuario, error)
	ListarMedicos(ctx context.Context) ([]models.Usuario, error)
}

// HandlerUsuarios atiende las rutas /api/users.
type HandlerUsuarios struct {
	usuarios Usuarios
	log      *logrus.Logger
}

func NuevoHandlerUsuarios(usuarios Usuarios, log *logrus.Logger) *HandlerUsuarios {
	return &HandlerUsuarios{usuarios: usuarios, log: log}
}

// Registrar maneja POST /api/users/register.
func (h *HandlerUsuarios) Registrar(w http.ResponseWriter, r *http.Request) {
	var solicitud servicios.RegistroUsuario
	if err := json.NewDecoder(r.Body).Decode(&solicitud); err != nil {
		responderMensaje(w, http.StatusBadRequest, "Error al decodificar la solicitud")
		return
	}

	uid, err := h.usuarios.Registrar(r.Context(), solicitud)
	if err != nil {
		responderError(w, h.log, err, "Error en el servidor al registrar el usuario.")
		return
	}

	responderJSON(w, http.StatusCreated, map[string]string{
		"uid":     uid,
		"message": "Usuario registrado con éxito",
	})
}

// Doctores maneja GET /api/users/doctors.
func (h *HandlerUsuarios) Doctores(w http.ResponseWriter, r *http.Request) {
	medicos, err := h.usuarios.ListarMedicos(r.Context())
	if err != nil {
		responderError(w, h.log, err, "Error en el servidor al obtener médicos.")
		return
	}
	responderJSON(w, http.StatusOK, medicos)
}

// Obtener maneja GET /api/users/{uid}.
func (h *HandlerUsuarios) Obtener(w http.ResponseWriter, r *http.Request) {
	uid := mux.Vars(r)["uid"]

	usuario, err := h.usuarios.ObtenerUsuario(r.Context(), uid)
	if err != nil {
		responderError(w, h.log, err, "Error en el servidor al obtener datos de usuario.")
		return
	}
	responderJSON(w, http.StatusOK, usuario)
}
