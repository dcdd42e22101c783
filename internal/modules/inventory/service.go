package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNoSnapshot means no weekly count has been recorded yet. It is a
// recoverable, user-facing condition ("start a weekly count first"), not a
// fault; callers check it with errors.Is.
var ErrNoSnapshot = errors.New("no inventory snapshot for the current cycle")

// Service is the reconciliation engine: it derives current stock and
// purchase suggestions from the active snapshot plus cumulative purchases,
// and owns the cycle lifecycle.
type Service interface {
	GetStockActual(ctx context.Context) ([]StockRow, error)
	GetSuggestedPurchases(ctx context.Context) ([]Suggestion, error)
	GetSuggestedPurchasesByStore(ctx context.Context) ([]StoreSuggestions, error)

	// StartNewCycle destroys the previous snapshot and purchase history and
	// writes the given lines as the new snapshot. Destructive by design:
	// stock accounting is always relative to the current cycle only.
	StartNewCycle(ctx context.Context, lines []Line) (uuid.UUID, error)

	// RecordPurchase appends a purchase event; quantities accumulate across
	// purchases within the cycle.
	RecordPurchase(ctx context.Context, lines []Line) (uuid.UUID, error)
}

type service struct {
	repo Repository
}

// NewService creates a new reconciliation service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetStockActual(ctx context.Context) ([]StockRow, error) {
	snapshotID, found, err := s.repo.ActiveSnapshotID(ctx)
	if err != nil {
		return nil, fmt.Errorf("active snapshot: %w", err)
	}
	if !found {
		return nil, ErrNoSnapshot
	}
	return s.repo.StockRows(ctx, snapshotID)
}

func (s *service) GetSuggestedPurchases(ctx context.Context) ([]Suggestion, error) {
	rows, err := s.GetStockActual(ctx)
	if err != nil {
		return nil, err
	}

	var out []Suggestion
	for _, r := range rows {
		if r.BaseQty <= 0 {
			continue
		}
		shortfall := r.BaseQty - r.StockActual
		if shortfall <= 0 {
			continue
		}
		out = append(out, Suggestion{
			ProductID: r.ProductID,
			Name:      r.Name,
			Store:     r.Store,
			Shortfall: shortfall,
		})
	}
	return out, nil
}

func (s *service) GetSuggestedPurchasesByStore(ctx context.Context) ([]StoreSuggestions, error) {
	suggestions, err := s.GetSuggestedPurchases(ctx)
	if err != nil {
		return nil, err
	}

	// Rows arrive ordered by store then name; keep that order.
	var out []StoreSuggestions
	for _, sg := range suggestions {
		if len(out) == 0 || out[len(out)-1].Store != sg.Store {
			out = append(out, StoreSuggestions{Store: sg.Store})
		}
		last := &out[len(out)-1]
		last.Suggestions = append(last.Suggestions, sg)
	}
	return out, nil
}

func (s *service) StartNewCycle(ctx context.Context, lines []Line) (uuid.UUID, error) {
	snapshotID := uuid.New()
	if err := s.repo.ReplaceCycle(ctx, snapshotID, lines); err != nil {
		return uuid.Nil, fmt.Errorf("replace cycle: %w", err)
	}
	return snapshotID, nil
}

func (s *service) RecordPurchase(ctx context.Context, lines []Line) (uuid.UUID, error) {
	purchaseID := uuid.New()
	if err := s.repo.AddPurchase(ctx, purchaseID, lines); err != nil {
		return uuid.Nil, fmt.Errorf("add purchase: %w", err)
	}
	return purchaseID, nil
}
