package servicios

import (
	"context"
	"io"

	"plataformaclinica/models"
)

// Identidad es la identidad verificada del usuario que hace la petición,
// extraída del token por el middleware de autenticación.
type Identidad struct {
	UID    string
	Rol    string
	Nombre string
}

// FiltroCasos son los criterios de búsqueda que soporta el almacén de casos.
// Los campos vacíos no filtran. El resultado siempre viene ordenado por
// fecha de creación descendente.
type FiltroCasos struct {
	MedicoEspecialistaID string
	MedicoGeneralID      string
	Estado               string
	PacienteNSS          string
}

// Almacen abstrae el almacén de documentos (casos, comentarios,
// notificaciones, usuarios y pacientes).
type Almacen interface {
	InsertarCaso(ctx context.Context, caso *models.Caso) (string, error)
	ObtenerCaso(ctx context.Context, id string) (*models.Caso, error)
	BuscarCasos(ctx context.Context, filtro FiltroCasos) ([]models.Caso, error)
	ActualizarCaso(ctx context.Context, id string, campos map[string]interface{}) error
	EliminarCasoEnLote(ctx context.Context, casoID string) error

	InsertarComentario(ctx context.Context, comentario *models.Comentario) (string, error)
	ComentariosDeCaso(ctx context.Context, casoID string) ([]models.Comentario, error)

	InsertarNotificacion(ctx context.Context, notificacion *models.Notificacion) error
	NotificacionesDeUsuario(ctx context.Context, usuarioID string) ([]models.Notificacion, error)
	ObtenerNotificacion(ctx context.Context, id string) (*models.Notificacion, error)
	MarcarNotificacionLeida(ctx context.Context, id string) error

	GuardarUsuario(ctx context.Context, usuario *models.Usuario) error
	ObtenerUsuario(ctx context.Context, uid string) (*models.Usuario, error)
	BuscarUsuariosPorRol(ctx context.Context, rol string) ([]models.Usuario, error)

	GuardarPaciente(ctx context.Context, paciente *models.Paciente) error
	ObtenerPaciente(ctx context.Context, nss string) (*models.Paciente, error)
	ListarPacientes(ctx context.Context) ([]models.Paciente, error)
	EliminarPacienteEnLote(ctx context.Context, nss string, casoIDs []string) error
}

// ArchivosStore abstrae el almacén de objetos donde viven los archivos
// adjuntos. Se consume por ruta de subida (uploadPath).
type ArchivosStore interface {
	Subir(ctx context.Context, path string, contenido io.Reader) error
	Abrir(ctx context.Context, path string) (io.ReadCloser, error)
	Eliminar(ctx context.Context, path string) error
}

// Notificador despacha notificaciones por correo y dentro de la aplicación.
// Sus fallos nunca deben bloquear la mutación de un caso.
type Notificador interface {
	NotificarNuevoCaso(ctx context.Context, caso *models.Caso) error
	NotificarNuevoComentario(ctx context.Context, caso *models.Caso, comentario *models.Comentario) error
}

// ResultadoIA es la respuesta estructurada del microservicio de inferencia.
type ResultadoIA struct {
	Status     string `json:"status"`
	Prediction string `json:"prediction"`
	Confidence string `json:"confidence_fracture"`
	Note       string `json:"analysis_note"`
}

// AnalizadorIA abstrae el microservicio de análisis de imágenes.
type AnalizadorIA interface {
	Analizar(ctx context.Context, uploadPath string) (*ResultadoIA, error)
}

// Correo abstrae el envío de correo transaccional.
type Correo interface {
	Enviar(destinatario, replyTo, asunto, cuerpoHTML string) error
}

// Runner ejecuta tareas en segundo plano: la tarea se entrega y la
// petición continúa sin esperar su resultado.
type Runner interface {
	Encolar(nombre string, tarea func(ctx context.Context))
}
