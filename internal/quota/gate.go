package quota

import (
	"context"
	"log/slog"
	"time"

	"resume-forge/internal/models"
)

// Store is the slice of the persistence layer the gate needs.
type Store interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	UpdateUsage(ctx context.Context, user *models.User) error
}

// Gate performs the check-and-consume against the persisted user record.
// The read-modify-write is deliberately not atomic: two concurrent requests
// from the same user can both be admitted at the boundary. The ledger is a
// best-effort ceiling, not a hard one.
type Gate struct {
	store Store
}

func NewGate(store Store) *Gate {
	return &Gate{store: store}
}

// Consume loads the user, runs the ledger evaluation and persists the
// mutated counters. On rejection it still persists a month rollover, then
// returns a quota-exceeded error. Returns the loaded user on success.
func (g *Gate) Consume(ctx context.Context, userID int64) (*models.User, error) {
	user, err := g.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if user == nil {
		return nil, models.NewNotFoundError("user not found")
	}

	decision := Evaluate(user, time.Now())

	if err := g.store.UpdateUsage(ctx, user); err != nil {
		return nil, models.NewInternalError(err)
	}

	if !decision.Allowed {
		slog.Info("quota exceeded",
			"user_id", user.ID,
			"tier", string(user.Tier),
			"limit", decision.Limit)
		return nil, models.NewQuotaExceededError(decision.Limit)
	}

	return user, nil
}
