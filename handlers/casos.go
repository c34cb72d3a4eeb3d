package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"plataformaclinica/middleware"
	"plataformaclinica/models"
	"plataformaclinica/servicios"
)

// Casos es el contrato del gestor del ciclo de vida de los casos que
// consumen estos handlers.
type Casos interface {
	CrearCaso(ctx context.Context, caso *models.Caso, quien servicios.Identidad) (string, error)
	ObtenerCaso(ctx context.Context, id string) (*models.Caso, error)
	ListarCasos(ctx context.Context, estado string, quien servicios.Identidad) ([]models.Caso, error)
	ComentariosDeCaso(ctx context.Context, casoID string) ([]models.Comentario, error)
	AgregarComentario(ctx context.Context, casoID, texto, autorID, autorNombre, autorRol string) (*models.Comentario, error)
	CerrarCaso(ctx context.Context, id string, quien servicios.Identidad) error
	ActualizarCaso(ctx context.Context, id string, campos map[string]interface{}, quien servicios.Identidad) error
	EliminarCaso(ctx context.Context, id string, quien servicios.Identidad) error
}

// HandlerCasos atiende las rutas /api/casos.
type HandlerCasos struct {
	casos Casos
	log   *logrus.Logger
}

func NuevoHandlerCasos(casos Casos, log *logrus.Logger) *HandlerCasos {
	return &HandlerCasos{casos: casos, log: log}
}

// Crear maneja POST /api/casos.
func (h *HandlerCasos) Crear(w http.ResponseWriter, r *http.Request) {
	var caso models.Caso
	if err := json.NewDecoder(r.Body).Decode(&caso); err != nil {
		responderMensaje(w, http.StatusBadRequest, "Error al decodificar la solicitud")
		return
	}

	id, err := h.casos.CrearCaso(r.Context(), &caso, middleware.IdentidadDe(r))
	if err != nil {
		responderError(w, h.log, err, "Error en el servidor al crear el caso.")
		return
	}

	responderJSON(w, http.StatusCreated, map[string]string{
		"message": "Caso enviado con éxito (IA procesando...)",
		"id":      id,
	})
}

// Listar maneja GET /api/casos?estado=.
func (h *HandlerCasos) Listar(w http.ResponseWriter, r *http.Request) {
	estado := r.URL.Query().Get("estado")

	casos, err := h.casos.ListarCasos(r.Context(), estado, middleware.IdentidadDe(r))
	if err != nil {
		responderError(w, h.log, err, "Error en el servidor al obtener los casos.")
		return
	}
	responderJSON(w, http.StatusOK, casos)
}

// Obtener maneja GET /api/casos/{id}.
func (h *HandlerCasos) Obtener(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	caso, err := h.casos.ObtenerCaso(r.Context(), id)
	if err != nil {
		responderError(w, h.log, err, "Error en el servidor al obtener el caso.")
		return
	}
	responderJSON(w, http.StatusOK, caso)
}

// Comentarios maneja GET /api/casos/{id}/comentarios.
func (h *HandlerCasos) Comentarios(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	comentarios, err := h.casos.ComentariosDeCaso(r.Context(), id)
	if err != nil {
		responderError(w, h.log, err, "Error en el servidor al obtener comentarios.")
		return
	}
	responderJSON(w, http.StatusOK, comentarios)
}

// AgregarComentario maneja POST /api/casos/{id}/comentarios.
func (h *HandlerCasos) AgregarComentario(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var cuerpo struct {
		Texto       string `json:"texto"`
		AutorID     string `json:"autorId"`
		AutorNombre string `json:"autorNombre"`
		AutorRol    string `json:"autorRol"`
	}
	if err := json.NewDecoder(r.Body).Decode(&cuerpo); err != nil {
		responderMensaje(w, http.StatusBadRequest, "Error al decodificar la solicitud")
		return
	}

	comentario, err := h.casos.AgregarComentario(r.Context(), id, cuerpo.Texto, cuerpo.AutorID, cuerpo.AutorNombre, cuerpo.AutorRol)
	if err != nil {
		responderError(w, h.log, err, "Error en el servidor al añadir comentario.")
		return
	}
	responderJSON(w, http.StatusCreated, comentario)
}

// Cerrar maneja PATCH /api/casos/{id}/cerrar.
func (h *HandlerCasos) Cerrar(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.casos.CerrarCaso(r.Context(), id, middleware.IdentidadDe(r)); err != nil {
		responderError(w, h.log, err, "Error en el servidor al cerrar el caso.")
		return
	}
	responderMensaje(w, http.StatusOK, "El caso ha sido cerrado con éxito.")
}

// Actualizar maneja PATCH /api/casos/{id}.
func (h *HandlerCasos) Actualizar(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var campos map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&campos); err != nil {
		responderMensaje(w, http.StatusBadRequest, "Error al decodificar la solicitud")
		return
	}

	if err := h.casos.ActualizarCaso(r.Context(), id, campos, middleware.IdentidadDe(r)); err != nil {
		responderError(w, h.log, err, "Error al actualizar el caso")
		return
	}
	responderMensaje(w, http.StatusOK, "Caso actualizado con éxito")
}

// Eliminar maneja DELETE /api/casos/{id}.
func (h *HandlerCasos) Eliminar(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.casos.EliminarCaso(r.Context(), id, middleware.IdentidadDe(r)); err != nil {
		responderError(w, h.log, err, "Error en el servidor al eliminar el caso.")
		return
	}
	responderMensaje(w, http.StatusOK, "El caso y todos sus datos asociados han sido eliminados con éxito.")
}
