package servicios

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"plataformaclinica/models"
)

// ServicioPacientes gestiona el padrón de pacientes y la eliminación en
// cascada de todos sus datos.
type ServicioPacientes struct {
	almacen  Almacen
	archivos ArchivosStore
	log      *logrus.Logger
}

func NuevoServicioPacientes(almacen Almacen, archivos ArchivosStore, log *logrus.Logger) *ServicioPacientes {
	return &ServicioPacientes{almacen: almacen, archivos: archivos, log: log}
}

// Guardar crea o actualiza un paciente usando el NSS como identificador.
func (s *ServicioPacientes) Guardar(ctx context.Context, paciente *models.Paciente) error {
	if paciente.NSS == "" {
		return fmt.Errorf("%w: el NSS es requerido", ErrValidacion)
	}
	return s.almacen.GuardarPaciente(ctx, paciente)
}

// Obtener devuelve un paciente por NSS.
func (s *ServicioPacientes) Obtener(ctx context.Context, nss string) (*models.Paciente, error) {
	paciente, err := s.almacen.ObtenerPaciente(ctx, nss)
	if err != nil {
		return nil, traducirNoEncontrado(err)
	}
	return paciente, nil
}

// Buscar devuelve los pacientes cuyo nombre, apellidos o NSS contienen el
// término. El filtrado es en memoria sobre el padrón completo; para miles
// de pacientes haría falta un índice de búsqueda dedicado.
func (s *ServicioPacientes) Buscar(ctx context.Context, termino string) ([]models.Paciente, error) {
	pacientes, err := s.almacen.ListarPacientes(ctx)
	if err != nil {
		return nil, err
	}

	termino = strings.ToLower(strings.TrimSpace(termino))
	if termino == "" {
		return pacientes, nil
	}

	filtrados := []models.Paciente{}
	for _, p := range pacientes {
		if strings.Contains(strings.ToLower(p.Nombre), termino) ||
			strings.Contains(strings.ToLower(p.ApellidoP), termino) ||
			strings.Contains(strings.ToLower(p.ApellidoM), termino) ||
			strings.Contains(p.NSS, termino) {
			filtrados = append(filtrados, p)
		}
	}
	return filtrados, nil
}

// Eliminar borra el paciente y todos sus datos asociados: primero los
// archivos de cada caso (uno a uno, tolerando los que ya no existan) y
// después los documentos de casos, comentarios y paciente como un solo
// lote atómico.
func (s *ServicioPacientes) Eliminar(ctx context.Context, nss string) error {
	if nss == "" {
		return fmt.Errorf("%w: el NSS es requerido", ErrValidacion)
	}

	casos, err := s.almacen.BuscarCasos(ctx, FiltroCasos{PacienteNSS: nss})
	if err != nil {
		return err
	}

	if len(casos) > 0 {
		s.log.Infof("Encontrados %d casos para el paciente %s, eliminando archivos y casos", len(casos), nss)
	}

	casoIDs := make([]string, 0, len(casos))
	for _, caso := range casos {
		casoIDs = append(casoIDs, caso.ID.Hex())
		for _, archivo := range caso.Archivos {
			if archivo.UploadPath == "" {
				continue
			}
			if err := s.archivos.Eliminar(ctx, archivo.UploadPath); err != nil {
				// No detener el proceso si un archivo no se encuentra.
				s.log.Errorf("Error al eliminar %s, puede que ya no exista: %v", archivo.UploadPath, err)
			}
		}
	}

	return s.almacen.EliminarPacienteEnLote(ctx, nss, casoIDs)
}
