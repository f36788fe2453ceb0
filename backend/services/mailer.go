package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"coursehub/backend/config"

	"github.com/pkg/errors"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

type Email struct {
	ToName    string
	ToAddress string
	Subject   string
	HTML      string
}

// Mailer is anything that can deliver an email.
type Mailer interface {
	Send(ctx context.Context, msg Email) error
}

type sendgridMailer struct {
	client *sendgrid.Client
	from   *sgmail.Email
	logger *zap.Logger
}

var _ Mailer = (*sendgridMailer)(nil)

func NewSendgridMailer(cfg *config.Config, logger *zap.Logger) Mailer {
	return &sendgridMailer{
		client: sendgrid.NewSendClient(cfg.SendgridAPIKey),
		from:   sgmail.NewEmail(cfg.EmailFromName, cfg.EmailFrom),
		logger: logger.With(zap.String("service", "SendgridMailer")),
	}
}

func (m *sendgridMailer) Send(ctx context.Context, msg Email) error {
	to := sgmail.NewEmail(msg.ToName, msg.ToAddress)
	message := sgmail.NewSingleEmail(m.from, msg.Subject, to, "", msg.HTML)

	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return errors.Wrap(err, "sendgrid send")
	}
	if resp.StatusCode >= 400 {
		return errors.Errorf("sendgrid send: status %d: %s", resp.StatusCode, resp.Body)
	}
	m.logger.Debug("email sent", zap.String("to", msg.ToAddress), zap.Int("status", resp.StatusCode))
	return nil
}

// logMailer writes emails to the log instead of delivering them.
type logMailer struct {
	logger *zap.Logger
}

func NewLogMailer(logger *zap.Logger) Mailer {
	return &logMailer{logger: logger.With(zap.String("service", "LogMailer"))}
}

func (m *logMailer) Send(_ context.Context, msg Email) error {
	m.logger.Info("email",
		zap.String("to", msg.ToAddress),
		zap.String("subject", msg.Subject),
		zap.String("html", msg.HTML),
	)
	return nil
}

// NewMailer picks SendGrid when an API key is configured.
func NewMailer(cfg *config.Config, logger *zap.Logger) Mailer {
	if cfg.SendgridAPIKey != "" {
		return NewSendgridMailer(cfg, logger)
	}
	return NewLogMailer(logger)
}

var enrollmentEmailTmpl = template.Must(template.New("enrollment").Parse(
	`<h3>Hello {{.Name}},</h3>
<p>You have successfully enrolled in <strong>{{.Course}}</strong>.</p>
<p>Start learning here: <a href="{{.Link}}">View Course</a></p>
<p>Happy Learning! 🎓</p>`))

func enrollmentEmail(name, address, course, link string) (Email, error) {
	var buf bytes.Buffer
	data := struct{ Name, Course, Link string }{name, course, link}
	if err := enrollmentEmailTmpl.Execute(&buf, data); err != nil {
		return Email{}, errors.Wrap(err, "render enrollment email")
	}
	return Email{
		ToName:    name,
		ToAddress: address,
		Subject:   fmt.Sprintf("Enrollment Confirmed: %s", course),
		HTML:      buf.String(),
	}, nil
}
