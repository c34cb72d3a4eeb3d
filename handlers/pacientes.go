package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"plataformaclinica/models"
)

// Pacientes es el contrato del servicio de pacientes.
type Pacientes interface {
	Guardar(ctx context.Context, paciente *models.Paciente) error
	Obtener(ctx context.Context, nss string) (*models.Paciente, error)
	Buscar(ctx context.Context, termino string) ([]models.Paciente, error)
	Eliminar(ctx context.Context, nss string) error
}

// HandlerPacientes atiende las rutas /api/pacientes.
type HandlerPacientes struct {
	pacientes Pacientes
	log       *logrus.Logger
}

func NuevoHandlerPacientes(pacientes Pacientes, log *logrus.Logger) *HandlerPacientes {
	return &HandlerPacientes{pacientes: pacientes, log: log}
}

// Guardar maneja POST /api/pacientes: crea o actualiza por NSS.
func (h *HandlerPacientes) Guardar(w http.ResponseWriter, r *http.Request) {
	var paciente models.Paciente
	if err := json.NewDecoder(r.Body).Decode(&paciente); err != nil {
		responderMensaje(w, http.StatusBadRequest, "Error al decodificar la solicitud")
		return
	}

	if err := h.pacientes.Guardar(r.Context(), &paciente); err != nil {
		responderError(w, h.log, err, "Error en el servidor al guardar el paciente.")
		return
	}
	responderJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Paciente guardado con éxito",
		"data":    paciente,
	})
}

// Buscar maneja GET /api/pacientes/search?q=.
func (h *HandlerPacientes) Buscar(w http.ResponseWriter, r *http.Request) {
	termino := r.URL.Query().Get("q")

	pacientes, err := h.pacientes.Buscar(r.Context(), termino)
	if err != nil {
		responderError(w, h.log, err, "Error en el servidor al buscar pacientes.")
		return
	}
	responderJSON(w, http.StatusOK, pacientes)
}

// Obtener maneja GET /api/pacientes/{nss}.
func (h *HandlerPacientes) Obtener(w http.ResponseWriter, r *http.Request) {
	nss := mux.Vars(r)["nss"]

	paciente, err := h.pacientes.Obtener(r.Context(), nss)
	if err != nil {
		responderError(w, h.log, err, "Error en el servidor al obtener el paciente.")
		return
	}
	responderJSON(w, http.StatusOK, paciente)
}

// Eliminar maneja DELETE /api/pacientes/{nss}: eliminación en cascada.
func (h *HandlerPacientes) Eliminar(w http.ResponseWriter, r *http.Request) {
	nss := mux.Vars(r)["nss"]

	if err := h.pacientes.Eliminar(r.Context(), nss); err != nil {
		responderError(w, h.log, err, "Error en el servidor durante la eliminación en cascada.")
		return
	}
	responderMensaje(w, http.StatusOK,
		"Paciente con NSS "+nss+" y todos sus datos asociados han sido eliminados con éxito.")
}
