package entry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/oinstituto/atlas/core"
)

var (
	ErrNotFound        = errors.New("entry not found")
	ErrPlanAlreadySent = errors.New("plan already sent")

	// OrderingFields are the fields entries may be ordered by.
	OrderingFields = []string{"created_at", "name"}

	defaultOrdering = []core.DBOrdering{{Field: "created_at", Ascending: true}}
)

type (
	Repository interface {
		CreateEntry(ctx context.Context, e Entry) (Entry, error)
		GetEntry(ctx context.Context, id string) (Entry, error)
		// QueryEntries returns every entry in the given order.
		QueryEntries(ctx context.Context, ordering []core.DBOrdering) ([]Entry, error)
		// MarkPlanSent flips plan_sent from false to true. ok is false when no row was updated.
		MarkPlanSent(ctx context.Context, id string) (ok bool, err error)
		DeleteEntries(ctx context.Context, ids ...string) (int64, error)
		DeleteAllEntries(ctx context.Context) (int64, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create persists a new entry with plan_sent=false.
func (svc *Service) Create(ctx context.Context, ne NewEntry) (Entry, error) {
	ne.Clean()
	e := Entry{
		ID:                 uuid.NewString(),
		Name:               ne.Name,
		Email:              ne.Email,
		Expectation:        ne.Expectation,
		Discipline:         ne.Discipline,
		Grade:              ne.Grade,
		Content:            ne.Content,
		Vibe:               ne.Vibe,
		Space:              ne.Space,
		Grouping:           ne.Grouping,
		Challenge:          ne.Challenge,
		LessonPlanMarkdown: ne.Plan,
		PlanSent:           false,
		CreatedAt:          time.Now().UTC(),
	}
	created, err := svc.repo.CreateEntry(ctx, e)
	if err != nil {
		return Entry{}, errors.Wrap(err, "creating entry")
	}
	return created, nil
}

func (svc *Service) Get(ctx context.Context, id string) (Entry, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Entry{}, ErrNotFound
	}
	return svc.repo.GetEntry(ctx, id)
}

// Query lists entries, oldest first unless told otherwise.
func (svc *Service) Query(ctx context.Context, ordering ...core.DBOrdering) ([]Entry, error) {
	ordering = core.AllowedOrderings(ordering, OrderingFields...)
	if len(ordering) == 0 {
		ordering = defaultOrdering
	}
	return svc.repo.QueryEntries(ctx, ordering)
}

// MarkPlanSent sets the "plan sent" flag. It never sets it twice.
func (svc *Service) MarkPlanSent(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	ok, err := svc.repo.MarkPlanSent(ctx, id)
	if err != nil {
		return errors.Wrap(err, "marking plan sent")
	}
	if ok {
		return nil
	}
	if _, err = svc.repo.GetEntry(ctx, id); err != nil {
		return err
	}
	return ErrPlanAlreadySent
}

func (svc *Service) Delete(ctx context.Context, ids ...string) (int64, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return 0, nil
	}
	return svc.repo.DeleteEntries(ctx, valid...)
}

// Reset deletes every entry.
func (svc *Service) Reset(ctx context.Context) (int64, error) {
	return svc.repo.DeleteAllEntries(ctx)
}
