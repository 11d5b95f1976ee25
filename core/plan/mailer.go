package plan

import (
	"context"
	"fmt"
	"html/template"
	"net/mail"
	"strings"

	"github.com/pkg/errors"

	"github.com/oinstituto/atlas/core"
	"github.com/oinstituto/atlas/core/entry"
)

const planTemplate = "plan"

var (
	ErrMailFailed = errors.New("Erro ao enviar o e-mail.")
	ErrNoEntry    = errors.New("the plan has no saved entry")
	ErrNoPlan     = errors.New("the entry has no plan")
)

// MailRequest addresses one plan delivery.
type MailRequest struct {
	EntryID string
	Email   string
	Plan    string
	Name    string
}

type planEmailData struct {
	Name         string
	PlanHTML     template.HTML
	PlanMarkdown string
}

// Subject is the subject line of the plan email.
func Subject(name string) string {
	return fmt.Sprintf("🚀 Seu Plano de Aula Chegou, %s!", name)
}

// Mailer delivers plans by email and records the delivery.
type Mailer struct {
	emails  core.EmailService
	entries *entry.Service
	logger  core.Logger
}

func NewMailer(emails core.EmailService, entries *entry.Service, logger core.Logger) *Mailer {
	return &Mailer{emails: emails, entries: entries, logger: logger}
}

// Send makes a single delivery attempt. The entry's plan_sent flag is only set
// once the email service accepted the message.
func (m *Mailer) Send(ctx context.Context, req MailRequest) error {
	if req.EntryID == "" {
		return ErrNoEntry
	}
	if !strings.Contains(req.Email, "@") {
		return core.NewValidationError(nil, core.FieldError{Field: "email", Error: `email deve conter "@"`})
	}

	professor := entry.Entry{ID: req.EntryID, Name: req.Name, Email: req.Email}
	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: req.Name, Address: req.Email}},
		Subject:      Subject(req.Name),
		TemplateName: planTemplate,
		TemplateData: planEmailData{
			Name:         req.Name,
			PlanHTML:     template.HTML(MarkdownToHTML(req.Plan)), // plans come from our own generator
			PlanMarkdown: req.Plan,
		},
	}
	if err := msg.Render(); err != nil {
		m.logger.Error(fmt.Sprintf("mailer: rendering plan email for entry %s", req.EntryID), err, professor)
		return ErrMailFailed
	}
	if err := m.emails.Send(ctx, msg); err != nil {
		m.logger.Error(fmt.Sprintf("mailer: sending plan email for entry %s", req.EntryID), err, professor)
		return ErrMailFailed
	}

	if err := m.entries.MarkPlanSent(ctx, req.EntryID); err != nil {
		if errors.Is(err, entry.ErrPlanAlreadySent) {
			m.logger.Warn(fmt.Sprintf("mailer: plan of entry %s was already sent", req.EntryID), professor)
			return nil
		}
		return errors.Wrap(err, "recording plan delivery")
	}
	return nil
}
