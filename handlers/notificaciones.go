package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"plataformaclinica/middleware"
	"plataformaclinica/models"
	"plataformaclinica/servicios"
)

// Notificaciones es el contrato de la bandeja de notificaciones.
type Notificaciones interface {
	NotificacionesDeUsuario(ctx context.Context, usuarioID string) ([]models.Notificacion, error)
	MarcarLeida(ctx context.Context, id string, quien servicios.Identidad) error
}

// HandlerNotificaciones atiende las rutas /api/notificaciones.
type HandlerNotificaciones struct {
	notificaciones Notificaciones
	log            *logrus.Logger
}

func NuevoHandlerNotificaciones(notificaciones Notificaciones, log *logrus.Logger) *HandlerNotificaciones {
	return &HandlerNotificaciones{notificaciones: notificaciones, log: log}
}

// Listar maneja GET /api/notificaciones: la bandeja del usuario autenticado.
func (h *HandlerNotificaciones) Listar(w http.ResponseWriter, r *http.Request) {
	quien := middleware.IdentidadDe(r)

	notificaciones, err := h.notificaciones.NotificacionesDeUsuario(r.Context(), quien.UID)
	if err != nil {
		responderError(w, h.log, err, "Error en el servidor al obtener las notificaciones.")
		return
	}
	responderJSON(w, http.StatusOK, notificaciones)
}

// MarcarLeida maneja PATCH /api/notificaciones/{id}/leida.
func (h *HandlerNotificaciones) MarcarLeida(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.notificaciones.MarcarLeida(r.Context(), id, middleware.IdentidadDe(r)); err != nil {
		responderError(w, h.log, err, "Error en el servidor al marcar la notificación.")
		return
	}
	responderMensaje(w, http.StatusOK, "Notificación marcada como leída")
}
