package plan

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oinstituto/atlas/core"
)

func strPtr(s string) *string { return &s }

func completeForm() FormSubmission {
	return FormSubmission{
		Name:        "Ana",
		Expectation: "Robótica",
		Discipline:  "Matemática",
		Grade:       "6º ano - Fundamental",
		Content:     "Frações equivalentes",
		Vibe:        "Mão na Massa",
		Grouping:    "Duplas",
		Space:       "Sala de aula tradicional",
		Challenge:   "Falta de engajamento/atenção",
		Email:       "ana@escola.com",
	}
}

func fields(flds []core.FieldError) []string {
	names := make([]string, 0, len(flds))
	for _, f := range flds {
		names = append(names, f.Field)
	}
	return names
}

func TestFormValidator_StepErrors(t *testing.T) {
	v := NewFormValidator()

	tests := []struct {
		name   string
		modify func(f *FormSubmission)
		step   Step
		want   []core.FieldError
	}{
		{
			name:   "valid identity",
			modify: func(f *FormSubmission) {},
			step:   StepIdentity,
			want:   []core.FieldError{},
		},
		{
			name:   "missing name",
			modify: func(f *FormSubmission) { f.Name = "   " },
			step:   StepIdentity,
			want:   []core.FieldError{{Field: "name", Error: "este campo é obrigatório"}},
		},
		{
			name:   "short expectation",
			modify: func(f *FormSubmission) { f.Expectation = "x" },
			step:   StepIdentity,
			want:   []core.FieldError{{Field: "expectation", Error: "expectation deve ter pelo menos 2 caracteres"}},
		},
		{
			name:   "short content",
			modify: func(f *FormSubmission) { f.Content = "soma" },
			step:   StepContext,
			want:   []core.FieldError{{Field: "content", Error: "content deve ter pelo menos 5 caracteres"}},
		},
		{
			name:   "errors of other steps are ignored",
			modify: func(f *FormSubmission) { f.Email = "" },
			step:   StepContext,
			want:   []core.FieldError{},
		},
		{
			name:   "email without at",
			modify: func(f *FormSubmission) { f.Email = "ana.escola.com" },
			step:   StepLogistics,
			want:   []core.FieldError{{Field: "email", Error: `email deve conter "@"`}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := completeForm()
			tt.modify(&form)
			got := v.StepErrors(form, tt.step)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormValidator_Vibe(t *testing.T) {
	v := NewFormValidator()
	for _, vibe := range Vibes {
		form := completeForm()
		form.Vibe = vibe
		assert.Empty(t, v.StepErrors(form, StepMethodology), vibe)
	}

	form := completeForm()
	form.Vibe = "Gamificação"
	assert.Equal(t, []string{"vibe"}, fields(v.StepErrors(form, StepMethodology)))
}

func TestFormValidator_Validate(t *testing.T) {
	v := NewFormValidator()
	require.NoError(t, v.Validate(completeForm()))

	err := v.Validate(FormSubmission{Name: "Ana", Vibe: "Social"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIncomplete))

	var vErr *core.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t,
		[]string{"expectation", "discipline", "grade", "content", "grouping", "space", "challenge", "email"},
		fields(vErr.Fields),
	)
}

func TestCollector(t *testing.T) {
	c := NewCollector(NewFormValidator())
	assert.Equal(t, StepIdentity, c.Step())
	assert.Equal(t, "Identidade", c.Step().Title())
	assert.False(t, c.CanAdvance())
	assert.ErrorIs(t, c.Back(), ErrNoStep)

	err := c.Next()
	assert.ErrorIs(t, err, ErrStepBlocked)
	assert.Equal(t, StepIdentity, c.Step())

	_, err = c.Submit()
	assert.ErrorIs(t, err, ErrIncomplete)

	c.Update(FormPatch{Name: strPtr("Ana"), Expectation: strPtr("Robótica")})
	assert.True(t, c.CanAdvance())
	require.NoError(t, c.Next())
	assert.Equal(t, "Contexto", c.Step().Title())

	require.NoError(t, c.Back())
	assert.Equal(t, StepIdentity, c.Step())
	assert.Equal(t, "Ana", c.Form().Name, "going back keeps the answers")
	require.NoError(t, c.Next())

	c.Update(FormPatch{Discipline: strPtr("Matemática"), Grade: strPtr("6º ano - Fundamental"), Content: strPtr("Frações equivalentes")})
	require.NoError(t, c.Next())
	c.Update(FormPatch{Vibe: strPtr("Mão na Massa"), Grouping: strPtr("Duplas")})
	require.NoError(t, c.Next())
	assert.Equal(t, StepLogistics, c.Step())
	assert.ErrorIs(t, c.Next(), ErrNoStep)

	c.Update(FormPatch{Space: strPtr("Biblioteca"), Challenge: strPtr("Turma muito grande"), Email: strPtr("  ana@escola.com ")})
	form, err := c.Submit()
	require.NoError(t, err)
	assert.Equal(t, "ana@escola.com", form.Email)
	assert.Equal(t, "Frações equivalentes", form.Content)
}

func TestDraftStore(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	ds := NewDraftStore(NewFormValidator(), time.Hour)
	ds.now = func() time.Time { return now }

	st := ds.Create()
	assert.Equal(t, StepIdentity, st.Step)
	assert.Equal(t, "Identidade", st.Title)
	assert.False(t, st.CanAdvance)
	assert.False(t, st.IsLast)

	st, err := ds.With(st.ID, func(c *Collector) error {
		c.Update(FormPatch{Name: strPtr("Ana"), Expectation: strPtr("IA")})
		return c.Next()
	})
	require.NoError(t, err)
	assert.Equal(t, StepContext, st.Step)
	assert.Equal(t, "Ana", st.Form.Name)

	got, err := ds.Get(st.ID)
	require.NoError(t, err)
	assert.Equal(t, st, got)

	_, err = ds.Get("missing")
	assert.ErrorIs(t, err, ErrDraftNotFound)

	now = now.Add(2 * time.Hour)
	fresh := ds.Create()
	assert.Equal(t, 1, ds.Len(), "stale drafts are purged")
	_, err = ds.Get(st.ID)
	assert.ErrorIs(t, err, ErrDraftNotFound)

	ds.Delete(fresh.ID)
	assert.Zero(t, ds.Len())
}

func TestLoadOptions(t *testing.T) {
	opts, err := LoadOptions()
	require.NoError(t, err)
	require.Len(t, opts.Vibes, len(Vibes))
	for i, vibe := range opts.Vibes {
		assert.Equal(t, Vibes[i], vibe.Label)
	}
	assert.Contains(t, opts.Disciplines, "Matemática")
	assert.NotEmpty(t, opts.Grades)
	assert.NotEmpty(t, opts.Spaces)
	assert.NotEmpty(t, opts.Groupings)
	assert.NotEmpty(t, opts.Challenges)

	_, err = ParseOptions([]byte("vibes: [unclosed"))
	assert.Error(t, err)
}
