package servicios

import (
	"gopkg.in/gomail.v2"
)

// CorreoSMTP envía correo transaccional por SMTP. El remitente siempre es
// la cuenta del sistema; el Reply-To permite que las respuestas lleguen al
// médico correspondiente.
type CorreoSMTP struct {
	servidor string
	puerto   int
	email    string
	password string
}

var _ Correo = (*CorreoSMTP)(nil)

func NuevoCorreoSMTP(servidor string, puerto int, email, password string) *CorreoSMTP {
	return &CorreoSMTP{servidor: servidor, puerto: puerto, email: email, password: password}
}

func (c *CorreoSMTP) Enviar(destinatario, replyTo, asunto, cuerpoHTML string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(c.email, "Plataforma Clínica"))
	m.SetHeader("To", destinatario)
	if replyTo != "" {
		m.SetHeader("Reply-To", replyTo)
	}
	m.SetHeader("Subject", asunto)
	m.SetBody("text/html", cuerpoHTML)

	d := gomail.NewDialer(c.servidor, c.puerto, c.email, c.password)
	return d.DialAndSend(m)
}
