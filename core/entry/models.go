package entry

import (
	"time"

	"github.com/oinstituto/atlas/core"
)

type Entry struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email,omitempty"`
	Expectation        string    `json:"expectation"`
	Discipline         string    `json:"discipline,omitempty"`
	Grade              string    `json:"grade,omitempty"`
	Content            string    `json:"content,omitempty"`
	Vibe               string    `json:"vibe,omitempty"`
	Space              string    `json:"space,omitempty"`
	Grouping           string    `json:"grouping,omitempty"`
	Challenge          string    `json:"challenge,omitempty"`
	LessonPlanMarkdown string    `json:"lesson_plan_markdown,omitempty"`
	PlanSent           bool      `json:"plan_sent"`
	CreatedAt          time.Time `json:"created_at"` // UTC
}

// Summary drops the submission details, keeping what the dashboard shows.
func (e Entry) Summary() Entry {
	return Entry{ID: e.ID, Name: e.Name, Expectation: e.Expectation, CreatedAt: e.CreatedAt}
}

// NewEntry contains the information needed to persist a submission.
// Simulated entries only carry Name and Expectation.
type NewEntry struct {
	Name        string
	Email       string
	Expectation string
	Discipline  string
	Grade       string
	Content     string
	Vibe        string
	Space       string
	Grouping    string
	Challenge   string
	Plan        string
}

func (ne *NewEntry) Clean() {
	ne.Name = core.CleanString(ne.Name)
	ne.Email = core.CleanString(ne.Email, true /* lower */)
	ne.Expectation = core.CleanString(ne.Expectation)
}

type ChangeOp string

const (
	OpInsert ChangeOp = "INSERT"
	OpDelete ChangeOp = "DELETE"
)

// Change is one row-level notification of the entries change-feed.
type Change struct {
	Op    ChangeOp `json:"op"`
	Entry Entry    `json:"entry"`
}

// OpResync tells subscribers that changes may have been missed (e.g. after a reconnect).
const OpResync ChangeOp = "RESYNC"
