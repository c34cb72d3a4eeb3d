package servicios

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"

	"plataformaclinica/models"
)

// Dobles de prueba con campos de función: cada test fija solo los métodos
// que espera que se llamen.

type almacenMock struct {
	InsertarCasoFn       func(ctx context.Context, caso *models.Caso) (string, error)
	ObtenerCasoFn        func(ctx context.Context, id string) (*models.Caso, error)
	BuscarCasosFn        func(ctx context.Context, filtro FiltroCasos) ([]models.Caso, error)
	ActualizarCasoFn     func(ctx context.Context, id string, campos map[string]interface{}) error
	EliminarCasoEnLoteFn func(ctx context.Context, casoID string) error

	InsertarComentarioFn func(ctx context.Context, comentario *models.Comentario) (string, error)
	ComentariosDeCasoFn  func(ctx context.Context, casoID string) ([]models.Comentario, error)

	InsertarNotificacionFn    func(ctx context.Context, notificacion *models.Notificacion) error
	NotificacionesDeUsuarioFn func(ctx context.Context, usuarioID string) ([]models.Notificacion, error)
	ObtenerNotificacionFn     func(ctx context.Context, id string) (*models.Notificacion, error)
	MarcarNotificacionLeidaFn func(ctx context.Context, id string) error

	GuardarUsuarioFn       func(ctx context.Context, usuario *models.Usuario) error
	ObtenerUsuarioFn       func(ctx context.Context, uid string) (*models.Usuario, error)
	BuscarUsuariosPorRolFn func(ctx context.Context, rol string) ([]models.Usuario, error)

	GuardarPacienteFn        func(ctx context.Context, paciente *models.Paciente) error
	ObtenerPacienteFn        func(ctx context.Context, nss string) (*models.Paciente, error)
	ListarPacientesFn        func(ctx context.Context) ([]models.Paciente, error)
	EliminarPacienteEnLoteFn func(ctx context.Context, nss string, casoIDs []string) error
}

var _ Almacen = (*almacenMock)(nil)

func (m *almacenMock) InsertarCaso(ctx context.Context, caso *models.Caso) (string, error) {
	return m.InsertarCasoFn(ctx, caso)
}

func (m *almacenMock) ObtenerCaso(ctx context.Context, id string) (*models.Caso, error) {
	return m.ObtenerCasoFn(ctx, id)
}

func (m *almacenMock) BuscarCasos(ctx context.Context, filtro FiltroCasos) ([]models.Caso, error) {
	return m.BuscarCasosFn(ctx, filtro)
}

func (m *almacenMock) ActualizarCaso(ctx context.Context, id string, campos map[string]interface{}) error {
	return m.ActualizarCasoFn(ctx, id, campos)
}

func (m *almacenMock) EliminarCasoEnLote(ctx context.Context, casoID string) error {
	return m.EliminarCasoEnLoteFn(ctx, casoID)
}

func (m *almacenMock) InsertarComentario(ctx context.Context, comentario *models.Comentario) (string, error) {
	return m.InsertarComentarioFn(ctx, comentario)
}

func (m *almacenMock) ComentariosDeCaso(ctx context.Context, casoID string) ([]models.Comentario, error) {
	return m.ComentariosDeCasoFn(ctx, casoID)
}

func (m *almacenMock) InsertarNotificacion(ctx context.Context, notificacion *models.Notificacion) error {
	return m.InsertarNotificacionFn(ctx, notificacion)
}

func (m *almacenMock) NotificacionesDeUsuario(ctx context.Context, usuarioID string) ([]models.Notificacion, error) {
	return m.NotificacionesDeUsuarioFn(ctx, usuarioID)
}

func (m *almacenMock) ObtenerNotificacion(ctx context.Context, id string) (*models.Notificacion, error) {
	return m.ObtenerNotificacionFn(ctx, id)
}

func (m *almacenMock) MarcarNotificacionLeida(ctx context.Context, id string) error {
	return m.MarcarNotificacionLeidaFn(ctx, id)
}

func (m *almacenMock) GuardarUsuario(ctx context.Context, usuario *models.Usuario) error {
	return m.GuardarUsuarioFn(ctx, usuario)
}

func (m *almacenMock) ObtenerUsuario(ctx context.Context, uid string) (*models.Usuario, error) {
	return m.ObtenerUsuarioFn(ctx, uid)
}

func (m *almacenMock) BuscarUsuariosPorRol(ctx context.Context, rol string) ([]models.Usuario, error) {
	return m.BuscarUsuariosPorRolFn(ctx, rol)
}

func (m *almacenMock) GuardarPaciente(ctx context.Context, paciente *models.Paciente) error {
	return m.GuardarPacienteFn(ctx, paciente)
}

func (m *almacenMock) ObtenerPaciente(ctx context.Context, nss string) (*models.Paciente, error) {
	return m.ObtenerPacienteFn(ctx, nss)
}

func (m *almacenMock) ListarPacientes(ctx context.Context) ([]models.Paciente, error) {
	return m.ListarPacientesFn(ctx)
}

func (m *almacenMock) EliminarPacienteEnLote(ctx context.Context, nss string, casoIDs []string) error {
	return m.EliminarPacienteEnLoteFn(ctx, nss, casoIDs)
}

type archivosMock struct {
	SubirFn    func(ctx context.Context, path string, contenido io.Reader) error
	AbrirFn    func(ctx context.Context, path string) (io.ReadCloser, error)
	EliminarFn func(ctx context.Context, path string) error
}

var _ ArchivosStore = (*archivosMock)(nil)

func (m *archivosMock) Subir(ctx context.Context, path string, contenido io.Reader) error {
	return m.SubirFn(ctx, path, contenido)
}

func (m *archivosMock) Abrir(ctx context.Context, path string) (io.ReadCloser, error) {
	return m.AbrirFn(ctx, path)
}

func (m *archivosMock) Eliminar(ctx context.Context, path string) error {
	return m.EliminarFn(ctx, path)
}

type notificadorMock struct {
	NotificarNuevoCasoFn       func(ctx context.Context, caso *models.Caso) error
	NotificarNuevoComentarioFn func(ctx context.Context, caso *models.Caso, comentario *models.Comentario) error
}

var _ Notificador = (*notificadorMock)(nil)

func (m *notificadorMock) NotificarNuevoCaso(ctx context.Context, caso *models.Caso) error {
	return m.NotificarNuevoCasoFn(ctx, caso)
}

func (m *notificadorMock) NotificarNuevoComentario(ctx context.Context, caso *models.Caso, comentario *models.Comentario) error {
	return m.NotificarNuevoComentarioFn(ctx, caso, comentario)
}

type analizadorMock struct {
	AnalizarFn func(ctx context.Context, uploadPath string) (*ResultadoIA, error)
}

var _ AnalizadorIA = (*analizadorMock)(nil)

func (m *analizadorMock) Analizar(ctx context.Context, uploadPath string) (*ResultadoIA, error) {
	return m.AnalizarFn(ctx, uploadPath)
}

type correoMock struct {
	EnviarFn func(destinatario, replyTo, asunto, cuerpoHTML string) error
}

var _ Correo = (*correoMock)(nil)

func (m *correoMock) Enviar(destinatario, replyTo, asunto, cuerpoHTML string) error {
	return m.EnviarFn(destinatario, replyTo, asunto, cuerpoHTML)
}

// runnerSincrono ejecuta cada tarea en el momento de encolarla y registra
// los nombres, para poder afirmar sobre el fan-out sin goroutines.
type runnerSincrono struct {
	nombres []string
}

var _ Runner = (*runnerSincrono)(nil)

func (r *runnerSincrono) Encolar(nombre string, tarea func(ctx context.Context)) {
	r.nombres = append(r.nombres, nombre)
	tarea(context.Background())
}

// runnerNulo descarta las tareas; sirve cuando el test solo mira la
// escritura principal.
type runnerNulo struct{}

var _ Runner = (*runnerNulo)(nil)

func (runnerNulo) Encolar(string, func(ctx context.Context)) {}

func logSilencioso() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
