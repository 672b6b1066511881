// Package email envía los mails transaccionales del servicio (hoy: solo el
// magic link de activación).
package email

import (
	"crypto/tls"
	"fmt"

	mail "github.com/go-mail/mail"

	"github.com/baggiolabs/baggio/internal/observability/logger"
)

// SMTPConfig contiene la configuración del servidor SMTP.
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	TLSMode   string // "auto" | "starttls" | "ssl" | "none"
}

// SMTPSender manda emails por SMTP.
type SMTPSender struct {
	cfg SMTPConfig
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	if cfg.TLSMode == "" {
		cfg.TLSMode = "auto"
	}
	return &SMTPSender{cfg: cfg}
}

// send envía un email multipart (texto + HTML).
func (s *SMTPSender) send(to, subject, textBody, htmlBody string) error {
	m := mail.NewMessage()
	m.SetHeader("From", s.cfg.FromEmail)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", textBody)
	if htmlBody != "" {
		m.AddAlternative("text/html", htmlBody)
	}

	d := mail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	d.TLSConfig = &tls.Config{ServerName: s.cfg.Host}

	switch s.cfg.TLSMode {
	case "ssl":
		d.SSL = true
	case "none":
		d.TLSConfig = &tls.Config{InsecureSkipVerify: true} // solo dev
	default:
		// "auto"/"starttls": go-mail negocia STARTTLS si corresponde
	}

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// SendMagicLink manda el email de activación con el link de login.
func (s *SMTPSender) SendMagicLink(to, link string) error {
	log := logger.Named("email").With(logger.Email(to))

	text := "Activá tu cuenta entrando a este link:\n\n" + link + "\n\nEl link vence en unos minutos."
	html := fmt.Sprintf(
		`<p>Activá tu cuenta haciendo click acá:</p><p><a href="%s">Entrar</a></p><p>El link vence en unos minutos.</p>`,
		link,
	)

	if err := s.send(to, "Tu link de acceso", text, html); err != nil {
		return err
	}
	log.Debug("magic link sent")
	return nil
}

// LogSender es el sender de desarrollo: loguea el link en vez de mandarlo.
type LogSender struct{}

func (LogSender) SendMagicLink(to, link string) error {
	logger.Named("email").Info("magic link (dev, not sent)",
		logger.Email(to), logger.String("link", link))
	return nil
}
