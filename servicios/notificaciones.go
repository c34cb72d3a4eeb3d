package servicios

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"plataformaclinica/models"
)

// ServicioNotificaciones resuelve destinatarios y despacha correo y
// notificaciones dentro de la aplicación. Todo es best-effort: un fallo
// aquí se registra y nunca tumba la operación que lo disparó.
//
// No hay clave de idempotencia: un reintento externo puede duplicar
// notificaciones.
type ServicioNotificaciones struct {
	almacen Almacen
	correo  Correo
	log     *logrus.Logger
}

var _ Notificador = (*ServicioNotificaciones)(nil)

func NuevoServicioNotificaciones(almacen Almacen, correo Correo, log *logrus.Logger) *ServicioNotificaciones {
	return &ServicioNotificaciones{almacen: almacen, correo: correo, log: log}
}

// NotificarNuevoCaso avisa al especialista asignado: correo con Reply-To
// al médico que refiere, y notificación en la aplicación.
func (s *ServicioNotificaciones) NotificarNuevoCaso(ctx context.Context, caso *models.Caso) error {
	destinatario, err := s.almacen.ObtenerUsuario(ctx, caso.MedicoEspecialistaID)
	if err != nil {
		s.log.Errorf("No se pudo resolver al especialista %s: %v", caso.MedicoEspecialistaID, err)
		return nil
	}
	remitente, err := s.almacen.ObtenerUsuario(ctx, caso.MedicoGeneralID)
	if err != nil {
		s.log.Errorf("No se pudo resolver al médico general %s: %v", caso.MedicoGeneralID, err)
		return nil
	}

	asunto := fmt.Sprintf("Nuevo caso clínico asignado: %s", caso.PacienteNombreCompleto)
	cuerpo := fmt.Sprintf(`
		<p>Hola Dr. %s,</p>
		<p>Se le ha asignado un nuevo caso clínico para el paciente <strong>%s</strong>.</p>
		<p>Motivo de la consulta: %s</p>
		<p>Por favor, inicie sesión en la plataforma para revisar los detalles y los archivos adjuntos.</p>
		<br>
		<p>Atentamente,</p>
		<p>Dr. %s</p>
	`, caso.MedicoEspecialistaNombre, caso.PacienteNombreCompleto, caso.MotivoConsulta, caso.MedicoGeneralNombre)

	if err := s.correo.Enviar(destinatario.Email, remitente.Email, asunto, cuerpo); err != nil {
		s.log.Errorf("Error al enviar el correo de caso nuevo a %s: %v", destinatario.Email, err)
	} else {
		s.log.Infof("Correo de notificación enviado a %s", destinatario.Email)
	}

	notificacion := &models.Notificacion{
		UsuarioID:     caso.MedicoEspecialistaID,
		Tipo:          models.TipoNuevoCaso,
		Mensaje:       fmt.Sprintf("Nuevo caso asignado: %s", caso.PacienteNombreCompleto),
		Leido:         false,
		FechaCreacion: time.Now().UTC(),
		CasoID:        caso.ID.Hex(),
		Link:          "/app/casos/" + caso.ID.Hex(),
	}
	if err := s.almacen.InsertarNotificacion(ctx, notificacion); err != nil {
		return fmt.Errorf("error al crear la notificación de caso nuevo: %v", err)
	}
	return nil
}

// NotificarNuevoComentario avisa a la contraparte del autor del comentario.
// Si el autor no es ni el médico general ni el especialista del caso, no
// hay a quién avisar y se omite en silencio.
func (s *ServicioNotificaciones) NotificarNuevoComentario(ctx context.Context, caso *models.Caso, comentario *models.Comentario) error {
	var idDestinatario, idRemitente string
	switch comentario.AutorID {
	case caso.MedicoGeneralID:
		idDestinatario = caso.MedicoEspecialistaID
		idRemitente = caso.MedicoGeneralID
	case caso.MedicoEspecialistaID:
		idDestinatario = caso.MedicoGeneralID
		idRemitente = caso.MedicoEspecialistaID
	default:
		return nil
	}

	destinatario, err := s.almacen.ObtenerUsuario(ctx, idDestinatario)
	if err != nil {
		s.log.Errorf("No se pudo resolver al destinatario %s: %v", idDestinatario, err)
		return nil
	}
	remitente, err := s.almacen.ObtenerUsuario(ctx, idRemitente)
	if err != nil {
		s.log.Errorf("No se pudo resolver al remitente %s: %v", idRemitente, err)
		return nil
	}

	asunto := fmt.Sprintf("Nuevo comentario en el caso de: %s", caso.PacienteNombreCompleto)
	cuerpo := fmt.Sprintf(`
		<p>Hola,</p>
		<p>El <strong>Dr. %s</strong> ha añadido un nuevo comentario en el caso del paciente <strong>%s</strong>.</p>
		<p><strong>Comentario:</strong> "%s"</p>
		<p>Por favor, inicie sesión en la plataforma para ver el historial completo y responder.</p>
	`, comentario.AutorNombre, caso.PacienteNombreCompleto, comentario.Texto)

	if err := s.correo.Enviar(destinatario.Email, remitente.Email, asunto, cuerpo); err != nil {
		s.log.Errorf("Error al enviar el correo de comentario a %s: %v", destinatario.Email, err)
	} else {
		s.log.Infof("Correo de nuevo comentario enviado a %s", destinatario.Email)
	}

	notificacion := &models.Notificacion{
		UsuarioID:     idDestinatario,
		Tipo:          models.TipoNuevoComentario,
		Mensaje:       fmt.Sprintf("Nuevo comentario en caso de %s: \"%s\"", caso.PacienteNombreCompleto, truncar(comentario.Texto, 30)),
		Leido:         false,
		FechaCreacion: time.Now().UTC(),
		CasoID:        caso.ID.Hex(),
		Link:          "/app/casos/" + caso.ID.Hex(),
	}
	if err := s.almacen.InsertarNotificacion(ctx, notificacion); err != nil {
		return fmt.Errorf("error al crear la notificación de comentario: %v", err)
	}
	return nil
}

// NotificacionesDeUsuario devuelve las notificaciones del usuario, más
// recientes primero.
func (s *ServicioNotificaciones) NotificacionesDeUsuario(ctx context.Context, usuarioID string) ([]models.Notificacion, error) {
	return s.almacen.NotificacionesDeUsuario(ctx, usuarioID)
}

// MarcarLeida marca una notificación como leída. Solo el destinatario
// puede hacerlo; el flag nunca vuelve a false.
func (s *ServicioNotificaciones) MarcarLeida(ctx context.Context, id string, quien Identidad) error {
	notificacion, err := s.almacen.ObtenerNotificacion(ctx, id)
	if err != nil {
		return traducirNoEncontrado(err)
	}
	if notificacion.UsuarioID != quien.UID {
		return fmt.Errorf("%w: la notificación no pertenece al usuario", ErrProhibido)
	}
	return s.almacen.MarcarNotificacionLeida(ctx, id)
}
