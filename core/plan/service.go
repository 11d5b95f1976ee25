package plan

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/oinstituto/atlas/core"
	"github.com/oinstituto/atlas/core/entry"
)

// WarnNotSaved is set on a successful Result whose entry could not be saved.
const WarnNotSaved = "Erro ao salvar os dados."

// Result is the structured outcome of the pipeline.
type Result struct {
	Success bool   `json:"success"`
	Plan    string `json:"plan,omitempty"`
	EntryID string `json:"entry_id,omitempty"`
	Error   string `json:"error,omitempty"`
	Warning string `json:"warning,omitempty"`
}

func failure(err error) Result {
	return Result{Success: false, Error: err.Error()}
}

// Service runs a submitted form through retrieval, generation and persistence,
// then mails plans on request.
type Service struct {
	validator *FormValidator
	retriever *Retriever
	generator *Generator
	entries   *entry.Service
	mailer    *Mailer
	logger    core.Logger
}

func NewService(
	validator *FormValidator,
	retriever *Retriever,
	generator *Generator,
	entries *entry.Service,
	mailer *Mailer,
	logger core.Logger,
) *Service {
	return &Service{
		validator: validator,
		retriever: retriever,
		generator: generator,
		entries:   entries,
		mailer:    mailer,
		logger:    logger,
	}
}

// Generate returns a core.ValidationError for an incomplete form.
// Every other failure is reported in the Result.
func (svc *Service) Generate(ctx context.Context, form FormSubmission) (Result, error) {
	if err := svc.validator.Validate(form); err != nil {
		return Result{}, err
	}
	form.Clean()

	knowledge := svc.retriever.Retrieve(ctx, Query(form))

	planMd, err := svc.generator.Generate(ctx, form, knowledge)
	if err != nil {
		return failure(err), nil
	}

	res := Result{Success: true, Plan: planMd}
	e, err := svc.entries.Create(ctx, entry.NewEntry{
		Name:        form.Name,
		Email:       form.Email,
		Expectation: form.Expectation,
		Discipline:  form.Discipline,
		Grade:       form.Grade,
		Content:     form.Content,
		Vibe:        form.Vibe,
		Space:       form.Space,
		Grouping:    form.Grouping,
		Challenge:   form.Challenge,
		Plan:        planMd,
	})
	if err != nil {
		svc.logger.Error(fmt.Sprintf("pipeline: saving entry of %q", form.Email), err, entry.Entry{Name: form.Name, Email: form.Email})
		res.Warning = WarnNotSaved
		return res, nil
	}
	res.EntryID = e.ID
	svc.logger.Info(fmt.Sprintf("pipeline: plan generated for entry %s", e.ID), e)
	return res, nil
}

// Email mails a plan. Delivery failures are reported in the Result; a missing
// entry or a bad address is returned as an error.
func (svc *Service) Email(ctx context.Context, req MailRequest) (Result, error) {
	err := svc.mailer.Send(ctx, req)
	switch {
	case err == nil:
		return Result{Success: true, EntryID: req.EntryID}, nil
	case errors.Is(err, ErrMailFailed):
		return failure(err), nil
	default:
		return Result{}, err
	}
}

// EmailEntry mails the stored plan of an entry, to the entry's address unless
// another one is given.
func (svc *Service) EmailEntry(ctx context.Context, id, email string) (Result, error) {
	e, err := svc.entries.Get(ctx, id)
	if err != nil {
		return Result{}, err
	}
	if e.LessonPlanMarkdown == "" {
		return Result{}, ErrNoPlan
	}
	if email == "" {
		email = e.Email
	}
	return svc.Email(ctx, MailRequest{EntryID: e.ID, Email: email, Plan: e.LessonPlanMarkdown, Name: e.Name})
}
