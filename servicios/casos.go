package servicios

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"plataformaclinica/models"
)

// Extensiones de archivo que se mandan al análisis automático.
var extensionesAnalizables = map[string]bool{
	"dcm":  true,
	"jpg":  true,
	"jpeg": true,
	"png":  true,
}

// ServicioCasos orquesta el ciclo de vida de los casos clínicos: creación,
// listado por rol, comentarios, cierre, actualización y eliminación.
type ServicioCasos struct {
	almacen     Almacen
	archivos    ArchivosStore
	notificador Notificador
	ia          AnalizadorIA
	runner      Runner
	log         *logrus.Logger
}

func NuevoServicioCasos(almacen Almacen, archivos ArchivosStore, notificador Notificador, ia AnalizadorIA, runner Runner, log *logrus.Logger) *ServicioCasos {
	return &ServicioCasos{
		almacen:     almacen,
		archivos:    archivos,
		notificador: notificador,
		ia:          ia,
		runner:      runner,
		log:         log,
	}
}

// CrearCaso persiste un caso nuevo y devuelve su id. El estado y la fecha
// de creación los fija siempre el servidor, ignorando lo que mande el
// cliente. Las tareas posteriores (notificación, análisis IA por archivo)
// se encolan en segundo plano: la respuesta no las espera y sus fallos
// nunca llegan al llamador.
func (s *ServicioCasos) CrearCaso(ctx context.Context, caso *models.Caso, quien Identidad) (string, error) {
	if caso.PacienteNSS == "" || caso.PacienteNombreCompleto == "" || caso.MedicoEspecialistaID == "" {
		return "", fmt.Errorf("%w: faltan datos del paciente o del especialista", ErrValidacion)
	}

	// El médico que refiere sale de la identidad verificada, no del cuerpo.
	if quien.UID != "" {
		caso.MedicoGeneralID = quien.UID
	}
	if quien.Nombre != "" {
		caso.MedicoGeneralNombre = quien.Nombre
	}

	caso.Estado = models.EstadoAbierto
	caso.FechaCreacion = time.Now().UTC()
	caso.FechaCierre = nil
	caso.LastCommentTimestamp = nil
	caso.LastCommentAutor = ""
	caso.LastCommentText = ""

	id, err := s.almacen.InsertarCaso(ctx, caso)
	if err != nil {
		return "", err
	}

	// Copia para las tareas en segundo plano; el llamador conserva el original.
	creado := *caso

	s.runner.Encolar("notificar_nuevo_caso", func(ctx context.Context) {
		if err := s.notificador.NotificarNuevoCaso(ctx, &creado); err != nil {
			s.log.Errorf("Error al notificar el caso nuevo %s: %v", id, err)
		}
	})

	for _, archivo := range caso.Archivos {
		if !esAnalizable(archivo.Nombre) {
			continue
		}
		a := archivo
		s.runner.Encolar("analizar_archivo", func(ctx context.Context) {
			s.analizarArchivo(ctx, id, a)
		})
	}

	return id, nil
}

// analizarArchivo pide el análisis al microservicio de IA y, si hay
// resultado, lo registra como comentario del sistema. Cualquier fallo se
// registra y se continúa: el caso ya fue creado con éxito.
func (s *ServicioCasos) analizarArchivo(ctx context.Context, casoID string, archivo models.Archivo) {
	s.log.Infof("Solicitando análisis IA para: %s", archivo.Nombre)

	resultado, err := s.ia.Analizar(ctx, archivo.UploadPath)
	if err != nil {
		s.log.Errorf("Error al analizar el archivo %s con IA: %v", archivo.Nombre, err)
		return
	}

	caso, err := s.almacen.ObtenerCaso(ctx, casoID)
	if err != nil {
		s.log.Errorf("Error al recuperar el caso %s para el comentario de IA: %v", casoID, err)
		return
	}

	comentario := &models.Comentario{
		CasoID: caso.ID,
		Texto: fmt.Sprintf("-Análisis de fracturas con IA (%s)-:\n- Predicción: %s\n- Confianza: %s%%\n- Nota: %s",
			resultado.Status, resultado.Prediction, resultado.Confidence, resultado.Note),
		AutorID:       "sistema_ia",
		AutorNombre:   "Asistente IA",
		AutorRol:      models.RolSistema,
		FechaCreacion: time.Now().UTC(),
	}

	if _, err := s.almacen.InsertarComentario(ctx, comentario); err != nil {
		s.log.Errorf("Error al guardar el comentario de IA para el caso %s: %v", casoID, err)
		return
	}

	campos := map[string]interface{}{
		"lastCommentTimestamp": comentario.FechaCreacion,
		"lastCommentAutor":     comentario.AutorNombre,
		"lastCommentText":      "[IA] " + resultado.Prediction,
	}
	if err := s.almacen.ActualizarCaso(ctx, casoID, campos); err != nil {
		s.log.Errorf("Error al actualizar el último comentario del caso %s: %v", casoID, err)
		return
	}

	s.log.Infof("Diagnóstico IA guardado para %s", archivo.Nombre)
}

// ObtenerCaso devuelve un caso por id.
func (s *ServicioCasos) ObtenerCaso(ctx context.Context, id string) (*models.Caso, error) {
	caso, err := s.almacen.ObtenerCaso(ctx, id)
	if err != nil {
		return nil, traducirNoEncontrado(err)
	}
	return caso, nil
}

// ComentariosDeCaso devuelve los comentarios de un caso en orden de
// creación ascendente. Es una instantánea finita, no un stream.
func (s *ServicioCasos) ComentariosDeCaso(ctx context.Context, casoID string) ([]models.Comentario, error) {
	comentarios, err := s.almacen.ComentariosDeCaso(ctx, casoID)
	if err != nil {
		return nil, traducirNoEncontrado(err)
	}
	return comentarios, nil
}

// AgregarComentario añade un comentario a un caso abierto y actualiza el
// resumen desnormalizado del último comentario en el caso. Las dos
// escrituras no son atómicas entre sí: si la segunda falla, el comentario
// ya es visible y el resumen se corrige con el siguiente comentario.
func (s *ServicioCasos) AgregarComentario(ctx context.Context, casoID, texto, autorID, autorNombre, autorRol string) (*models.Comentario, error) {
	if texto == "" || autorID == "" || autorNombre == "" || autorRol == "" {
		return nil, fmt.Errorf("%w: faltan datos para añadir el comentario", ErrValidacion)
	}

	caso, err := s.almacen.ObtenerCaso(ctx, casoID)
	if err != nil {
		return nil, traducirNoEncontrado(err)
	}

	if caso.Estado == models.EstadoCerrado {
		return nil, fmt.Errorf("%w: no se pueden añadir comentarios a un caso cerrado", ErrProhibido)
	}

	comentario := &models.Comentario{
		CasoID:        caso.ID,
		Texto:         texto,
		AutorID:       autorID,
		AutorNombre:   autorNombre,
		AutorRol:      autorRol,
		FechaCreacion: time.Now().UTC(),
	}

	if _, err := s.almacen.InsertarComentario(ctx, comentario); err != nil {
		return nil, err
	}

	campos := map[string]interface{}{
		"lastCommentTimestamp": comentario.FechaCreacion,
		"lastCommentAutor":     comentario.AutorNombre,
		"lastCommentText":      truncar(comentario.Texto, 50),
	}
	if err := s.almacen.ActualizarCaso(ctx, casoID, campos); err != nil {
		// El comentario ya quedó guardado; el resumen es eventual.
		s.log.Errorf("Error al actualizar el último comentario del caso %s: %v", casoID, err)
	}

	// El destinatario es la contraparte del autor; un autor ajeno al caso
	// no genera notificación.
	if autorID == caso.MedicoGeneralID || autorID == caso.MedicoEspecialistaID {
		casoNotif := *caso
		comentarioNotif := *comentario
		s.runner.Encolar("notificar_nuevo_comentario", func(ctx context.Context) {
			if err := s.notificador.NotificarNuevoComentario(ctx, &casoNotif, &comentarioNotif); err != nil {
				s.log.Errorf("Error al notificar el comentario del caso %s: %v", casoID, err)
			}
		})
	}

	return comentario, nil
}

// CerrarCaso marca el caso como cerrado. Solo el especialista asignado o
// un administrador pueden cerrarlo; después del cierre no se aceptan
// comentarios nuevos.
func (s *ServicioCasos) CerrarCaso(ctx context.Context, id string, quien Identidad) error {
	caso, err := s.almacen.ObtenerCaso(ctx, id)
	if err != nil {
		return traducirNoEncontrado(err)
	}

	if caso.MedicoEspecialistaID != quien.UID && quien.Rol != models.RolAdministrador {
		return fmt.Errorf("%w: no tienes permiso para cerrar este caso", ErrProhibido)
	}

	campos := map[string]interface{}{
		"estado":      models.EstadoCerrado,
		"fechaCierre": time.Now().UTC(),
	}
	return s.almacen.ActualizarCaso(ctx, id, campos)
}

// ListarCasos devuelve los casos visibles para el usuario según su rol,
// con filtro opcional por estado, ordenados por fecha de creación
// descendente. Un rol desconocido no ve ningún caso.
func (s *ServicioCasos) ListarCasos(ctx context.Context, estado string, quien Identidad) ([]models.Caso, error) {
	filtro := FiltroCasos{}

	switch quien.Rol {
	case models.RolMedico:
		filtro.MedicoEspecialistaID = quien.UID
	case models.RolAtencion:
		filtro.MedicoGeneralID = quien.UID
	case models.RolAdministrador:
		// Sin filtro implícito: ve todos los casos.
	default:
		s.log.Warnf("Listado de casos con rol no reconocido %q (uid %s)", quien.Rol, quien.UID)
		return []models.Caso{}, nil
	}

	if estado != "" && estado != "todos" {
		filtro.Estado = estado
	}

	return s.almacen.BuscarCasos(ctx, filtro)
}

// Campos que acepta la actualización parcial de un caso.
var camposActualizables = map[string]bool{
	"diagnostico": true,
}

// ActualizarCaso aplica una actualización parcial restringida a una lista
// blanca de campos. Solo el especialista asignado (con el caso abierto) o
// un administrador pueden actualizar.
func (s *ServicioCasos) ActualizarCaso(ctx context.Context, id string, campos map[string]interface{}, quien Identidad) error {
	if len(campos) == 0 {
		return fmt.Errorf("%w: no hay campos para actualizar", ErrValidacion)
	}
	for campo := range campos {
		if !camposActualizables[campo] {
			return fmt.Errorf("%w: el campo %q no es actualizable", ErrValidacion, campo)
		}
	}

	caso, err := s.almacen.ObtenerCaso(ctx, id)
	if err != nil {
		return traducirNoEncontrado(err)
	}

	esEspecialista := caso.MedicoEspecialistaID == quien.UID && caso.Estado == models.EstadoAbierto
	if !esEspecialista && quien.Rol != models.RolAdministrador {
		return fmt.Errorf("%w: no tienes permiso para actualizar este caso", ErrProhibido)
	}

	return s.almacen.ActualizarCaso(ctx, id, campos)
}

// EliminarCaso borra el caso, sus comentarios y sus archivos. Pueden
// hacerlo el médico que refirió, el especialista asignado o un
// administrador. Los archivos se eliminan uno a uno en modo best-effort;
// los documentos se borran como lote atómico.
func (s *ServicioCasos) EliminarCaso(ctx context.Context, id string, quien Identidad) error {
	caso, err := s.almacen.ObtenerCaso(ctx, id)
	if err != nil {
		return traducirNoEncontrado(err)
	}

	esGeneral := caso.MedicoGeneralID == quien.UID
	esEspecialista := caso.MedicoEspecialistaID == quien.UID
	esAdmin := quien.Rol == models.RolAdministrador
	if !esGeneral && !esEspecialista && !esAdmin {
		return fmt.Errorf("%w: no tienes permiso para eliminar este caso", ErrProhibido)
	}

	for _, archivo := range caso.Archivos {
		if archivo.UploadPath == "" {
			continue
		}
		if err := s.archivos.Eliminar(ctx, archivo.UploadPath); err != nil {
			// Un archivo que ya no existe no detiene la eliminación.
			s.log.Errorf("Error al eliminar el archivo %s, puede que ya no exista: %v", archivo.UploadPath, err)
		}
	}

	return s.almacen.EliminarCasoEnLote(ctx, id)
}

func esAnalizable(nombre string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(nombre), "."))
	return extensionesAnalizables[ext]
}

// truncar corta el texto a n runas y marca el corte con puntos suspensivos.
func truncar(texto string, n int) string {
	runas := []rune(texto)
	if len(runas) <= n {
		return texto
	}
	return string(runas[:n]) + "..."
}

func traducirNoEncontrado(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNoEncontrado
	}
	return err
}
