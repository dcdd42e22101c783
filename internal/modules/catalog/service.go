package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Service defines catalog business logic: resolving free-text product names
// and maintaining base targets.
type Service interface {
	// Resolve maps raw names to canonical products. Names with no match are
	// simply absent from the result; callers detect them as the set
	// difference between their input and the returned keys. An unresolved
	// name is a partial failure to report, never an error.
	Resolve(ctx context.Context, names []string) (map[string]Resolved, error)
	// SetBaseTarget overwrites one product's target stock level.
	SetBaseTarget(ctx context.Context, productID uuid.UUID, baseQty float64) error
	// SetBaseTargets applies several target overwrites, e.g. a finalized
	// base-edit batch.
	SetBaseTargets(ctx context.Context, targets map[uuid.UUID]float64) error
}

type service struct {
	repo Repository
}

// NewService creates a new catalog service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Resolve applies a deterministic precedence over lookup candidates:
// an exact name match always beats an alias match, and ties within the
// same kind break on the lexicographically smallest canonical name.
func (s *service) Resolve(ctx context.Context, names []string) (map[string]Resolved, error) {
	if len(names) == 0 {
		return map[string]Resolved{}, nil
	}

	// Collapse duplicates before hitting the store.
	seen := make(map[string]struct{}, len(names))
	distinct := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		distinct = append(distinct, n)
	}

	matches, err := s.repo.ResolveNames(ctx, distinct)
	if err != nil {
		return nil, err
	}

	best := make(map[string]NameMatch, len(matches))
	for _, m := range matches {
		cur, ok := best[m.Raw]
		if !ok || better(m, cur) {
			best[m.Raw] = m
		}
	}

	out := make(map[string]Resolved, len(best))
	for raw, m := range best {
		out[raw] = Resolved{ProductID: m.ProductID, Name: m.Name}
	}
	return out, nil
}

// better reports whether candidate m should replace the current pick.
// Exact matches win over alias matches; within a kind the smaller
// canonical name wins, so resolution never depends on row order.
func better(m, cur NameMatch) bool {
	if m.ViaAlias != cur.ViaAlias {
		return !m.ViaAlias
	}
	return m.Name < cur.Name
}

func (s *service) SetBaseTarget(ctx context.Context, productID uuid.UUID, baseQty float64) error {
	return s.repo.UpdateBaseQty(ctx, productID, baseQty)
}

func (s *service) SetBaseTargets(ctx context.Context, targets map[uuid.UUID]float64) error {
	for id, qty := range targets {
		if err := s.repo.UpdateBaseQty(ctx, id, qty); err != nil {
			return err
		}
	}
	return nil
}
