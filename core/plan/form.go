package plan

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/oinstituto/atlas/core"
)

// Vibes are the accepted pedagogical styles.
var Vibes = []string{"High-Tech", "Mão na Massa", "Social"}

var (
	ErrNoStep      = errors.New("no such step")
	ErrStepBlocked = errors.New("fill in the current step before advancing")
	ErrIncomplete  = errors.New("the form is not complete")
)

// FormSubmission is everything a teacher fills in across the four steps.
type FormSubmission struct {
	// Identidade
	Name        string `json:"name" validate:"required,min=2"`
	Expectation string `json:"expectation" validate:"required,min=2"`

	// Contexto
	Discipline string `json:"discipline" validate:"required"`
	Grade      string `json:"grade" validate:"required"`
	Content    string `json:"content" validate:"required,min=5"`

	// Metodologia
	Vibe     string `json:"vibe" validate:"required,oneof='High-Tech' 'Mão na Massa' 'Social'"`
	Grouping string `json:"grouping" validate:"required"`

	// Logística
	Space     string `json:"space" validate:"required"`
	Challenge string `json:"challenge" validate:"required"`
	Email     string `json:"email" validate:"required,has_at"`
}

func (f *FormSubmission) Clean() {
	f.Name = core.CleanString(f.Name)
	f.Expectation = core.CleanString(f.Expectation)
	f.Discipline = core.CleanString(f.Discipline)
	f.Grade = core.CleanString(f.Grade)
	f.Content = core.CleanString(f.Content)
	f.Vibe = core.CleanString(f.Vibe)
	f.Grouping = core.CleanString(f.Grouping)
	f.Space = core.CleanString(f.Space)
	f.Challenge = core.CleanString(f.Challenge)
	f.Email = core.CleanString(f.Email)
}

// FormPatch sets the non-nil fields of a FormSubmission.
type FormPatch struct {
	Name        *string `json:"name"`
	Expectation *string `json:"expectation"`
	Discipline  *string `json:"discipline"`
	Grade       *string `json:"grade"`
	Content     *string `json:"content"`
	Vibe        *string `json:"vibe"`
	Grouping    *string `json:"grouping"`
	Space       *string `json:"space"`
	Challenge   *string `json:"challenge"`
	Email       *string `json:"email"`
}

func (p FormPatch) apply(f *FormSubmission) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&f.Name, p.Name)
	set(&f.Expectation, p.Expectation)
	set(&f.Discipline, p.Discipline)
	set(&f.Grade, p.Grade)
	set(&f.Content, p.Content)
	set(&f.Vibe, p.Vibe)
	set(&f.Grouping, p.Grouping)
	set(&f.Space, p.Space)
	set(&f.Challenge, p.Challenge)
	set(&f.Email, p.Email)
}

type Step int

const (
	StepIdentity Step = iota + 1
	StepContext
	StepMethodology
	StepLogistics

	FirstStep = StepIdentity
	LastStep  = StepLogistics
)

type stepInfo struct {
	title  string
	fields []string // struct field names
}

var steps = map[Step]stepInfo{
	StepIdentity:    {"Identidade", []string{"Name", "Expectation"}},
	StepContext:     {"Contexto", []string{"Discipline", "Grade", "Content"}},
	StepMethodology: {"Metodologia", []string{"Vibe", "Grouping"}},
	StepLogistics:   {"Logística", []string{"Space", "Challenge", "Email"}},
}

func (s Step) Valid() bool {
	_, ok := steps[s]
	return ok
}

func (s Step) Title() string {
	return steps[s].title
}

// FormValidator checks a FormSubmission, one step or all at once.
type FormValidator struct {
	validate   *validator.Validate
	translator ut.Translator
}

func NewFormValidator() *FormValidator {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	return &FormValidator{validate: validate, translator: translator}
}

// StepErrors returns the field errors of step, in field order.
func (v *FormValidator) StepErrors(form FormSubmission, step Step) []core.FieldError {
	form.Clean()
	flds, err := core.TranslateErrors(v.validate.StructPartial(form, steps[step].fields...), v.translator)
	if err != nil {
		return []core.FieldError{{Field: "form", Error: err.Error()}}
	}
	return flds
}

// Validate checks every step. It returns a core.ValidationError when a field fails.
func (v *FormValidator) Validate(form FormSubmission) error {
	var flds []core.FieldError
	for s := FirstStep; s <= LastStep; s++ {
		flds = append(flds, v.StepErrors(form, s)...)
	}
	if len(flds) > 0 {
		return core.NewValidationError(ErrIncomplete, flds...)
	}
	return nil
}

// Collector drives one form through its steps. It is not safe for concurrent use.
type Collector struct {
	validator *FormValidator
	step      Step
	form      FormSubmission
}

func NewCollector(validator *FormValidator) *Collector {
	return &Collector{validator: validator, step: FirstStep}
}

func (c *Collector) Step() Step {
	return c.step
}

func (c *Collector) Form() FormSubmission {
	return c.form
}

func (c *Collector) Update(patch FormPatch) {
	patch.apply(&c.form)
}

// Errors lists what blocks the current step.
func (c *Collector) Errors() []core.FieldError {
	return c.validator.StepErrors(c.form, c.step)
}

func (c *Collector) CanAdvance() bool {
	return len(c.Errors()) == 0
}

// Next moves to the following step once the current one is valid.
func (c *Collector) Next() error {
	if c.step >= LastStep {
		return ErrNoStep
	}
	if flds := c.Errors(); len(flds) > 0 {
		return core.NewValidationError(ErrStepBlocked, flds...)
	}
	c.step++
	return nil
}

func (c *Collector) Back() error {
	if c.step <= FirstStep {
		return ErrNoStep
	}
	c.step--
	return nil
}

// Submit hands over the cleaned form. It is only allowed from the last step.
func (c *Collector) Submit() (FormSubmission, error) {
	if c.step != LastStep {
		return FormSubmission{}, ErrIncomplete
	}
	if err := c.validator.Validate(c.form); err != nil {
		return FormSubmission{}, err
	}
	form := c.form
	form.Clean()
	return form, nil
}
