package handlers

import (
	"bytes"
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Reportes es el contrato del generador de reportes PDF.
type Reportes interface {
	GenerarPDF(ctx context.Context, casoID string) (*bytes.Buffer, string, error)
}

// HandlerReportes atiende las rutas /api/reports.
type HandlerReportes struct {
	reportes Reportes
	log      *logrus.Logger
}

func NuevoHandlerReportes(reportes Reportes, log *logrus.Logger) *HandlerReportes {
	return &HandlerReportes{reportes: reportes, log: log}
}

// Generar maneja GET /api/reports/{id}/generate: descarga el reporte del caso.
func (h *HandlerReportes) Generar(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	buffer, nombre, err := h.reportes.GenerarPDF(r.Context(), id)
	if err != nil {
		responderError(w, h.log, err, "Error al generar el reporte PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename="+nombre)
	if _, err := buffer.WriteTo(w); err != nil {
		h.log.Errorf("Error al enviar el PDF: %v", err)
	}
}
