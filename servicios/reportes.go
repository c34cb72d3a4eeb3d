package servicios

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// ServicioReportes genera el reporte médico en PDF de un caso.
type ServicioReportes struct {
	almacen Almacen
}

func NuevoServicioReportes(almacen Almacen) *ServicioReportes {
	return &ServicioReportes{almacen: almacen}
}

// GenerarPDF arma el reporte del caso en memoria y devuelve el buffer
// listo para descargar.
func (s *ServicioReportes) GenerarPDF(ctx context.Context, casoID string) (*bytes.Buffer, string, error) {
	caso, err := s.almacen.ObtenerCaso(ctx, casoID)
	if err != nil {
		return nil, "", traducirNoEncontrado(err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	// Las fuentes base de gofpdf no son UTF-8; el traductor convierte los
	// acentos a la página de códigos de la fuente.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	// Encabezado
	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(0, 10, tr("Reporte Médico de Radiodiagnóstico"), "", 1, "C", false, 0, "")
	pdf.Ln(4)
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Fecha: %s", time.Now().Format("02-01-2006")), "", 1, "R", false, 0, "")
	pdf.Ln(4)

	// Información del paciente
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, tr("Información del Paciente"))
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 8, tr(fmt.Sprintf("Nombre: %s", caso.PacienteNombreCompleto)))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("NSS: %s", caso.PacienteNSS))
	pdf.Ln(8)
	pdf.Cell(0, 8, tr(fmt.Sprintf("Motivo de Consulta: %s", caso.MotivoConsulta)))
	pdf.Ln(12)

	// Médico especialista
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, tr("Médico Especialista"))
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 8, tr(fmt.Sprintf("Dr. %s", caso.MedicoEspecialistaNombre)))
	pdf.Ln(12)

	// Diagnóstico
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, tr("Diagnóstico / Hallazgos"))
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 11)
	diagnostico := caso.Diagnostico
	if diagnostico == "" {
		diagnostico = "Sin diagnóstico registrado."
	}
	pdf.MultiCell(0, 6, tr(diagnostico), "", "J", false)
	pdf.Ln(16)

	// Firma
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 8, "_________________________", "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("Firma: Dr. %s", caso.MedicoEspecialistaNombre)), "", 1, "C", false, 0, "")

	var buffer bytes.Buffer
	if err := pdf.Output(&buffer); err != nil {
		return nil, "", fmt.Errorf("error al generar el PDF: %v", err)
	}

	nombre := fmt.Sprintf("Reporte_%s.pdf", caso.PacienteNSS)
	return &buffer, nombre, nil
}
