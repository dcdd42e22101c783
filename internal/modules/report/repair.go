package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	// totalTolerance absorbs handwriting and decimal misreads when comparing
	// a declared total against the sum of its sub-columns.
	totalTolerance = 0.26
	// zeroTotalFloor flags a declared total of 0 when the sub-columns carry
	// anything meaningful.
	zeroTotalFloor = 0.1
	// maxRepairNames bounds the cost and latency of the repair pass.
	maxRepairNames = 25
)

// Service turns a photo into usable items, running the two-pass repair
// protocol for weekly sheets.
type Service interface {
	ExtractItems(ctx context.Context, mode Mode, image []byte, mimeType string) ([]Item, error)
}

type service struct {
	extractor Extractor
	log       *logrus.Logger
}

// NewService creates a report service on top of an extractor.
func NewService(extractor Extractor, log *logrus.Logger) Service {
	return &service{extractor: extractor, log: log}
}

func (s *service) ExtractItems(ctx context.Context, mode Mode, image []byte, mimeType string) ([]Item, error) {
	rows, err := s.extractor.Extract(ctx, Request{Mode: mode, Image: image, MIMEType: mimeType})
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	if mode == ModePurchase {
		return purchaseItems(rows.Purchase), nil
	}

	weekly, err := s.repairWeekly(ctx, image, mimeType, rows.Weekly)
	if err != nil {
		return nil, err
	}
	return weeklyItems(weekly), nil
}

// repairWeekly re-queries the extractor over suspicious rows only and
// overwrites their first-pass values with whatever the second pass returns.
func (s *service) repairWeekly(ctx context.Context, image []byte, mimeType string, rows []WeeklyRow) ([]WeeklyRow, error) {
	var suspects []string
	for _, r := range rows {
		if Suspicious(r) {
			suspects = append(suspects, r.Name)
		}
	}
	if len(suspects) == 0 {
		return rows, nil
	}
	if len(suspects) > maxRepairNames {
		suspects = suspects[:maxRepairNames]
	}

	s.log.WithFields(logrus.Fields{"suspects": len(suspects)}).
		Info("re-reading suspicious rows")

	repaired, err := s.extractor.Extract(ctx, Request{
		Mode:            ModeWeekly,
		Image:           image,
		MIMEType:        mimeType,
		RestrictToNames: suspects,
	})
	if err != nil {
		return nil, fmt.Errorf("repair pass: %w", err)
	}

	byName := make(map[string]WeeklyRow, len(repaired.Weekly))
	for _, r := range repaired.Weekly {
		byName[nameKey(r.Name)] = r
	}
	for i, r := range rows {
		if fixed, ok := byName[nameKey(r.Name)]; ok {
			fixed.Name = r.Name
			rows[i] = fixed
		}
	}
	return rows, nil
}

// Suspicious reports whether a weekly row needs a second read: the declared
// total disagrees with the sub-column sum beyond tolerance, or reads exactly
// zero while the sub-columns carry something.
func Suspicious(r WeeklyRow) bool {
	if r.Total == nil {
		return false
	}
	if r.Front == nil && r.Storage == nil {
		return false
	}
	sum := presentSum(r)
	if *r.Total == 0 && sum > zeroTotalFloor {
		return true
	}
	diff := *r.Total - sum
	if diff < 0 {
		diff = -diff
	}
	return diff > totalTolerance
}

// ResolveTotal yields the usable quantity of a weekly row: the declared
// total is ground truth when present; otherwise the sum of present
// sub-columns is synthesized. ok=false means the row has no usable number
// and must be dropped, never defaulted to zero.
func ResolveTotal(r WeeklyRow) (float64, bool) {
	if r.Total != nil {
		return *r.Total, true
	}
	if r.Front == nil && r.Storage == nil {
		return 0, false
	}
	return presentSum(r), true
}

// presentSum adds the sub-columns that are present; absence counts as zero
// for synthesis only.
func presentSum(r WeeklyRow) float64 {
	var sum float64
	if r.Front != nil {
		sum += *r.Front
	}
	if r.Storage != nil {
		sum += *r.Storage
	}
	return sum
}

func weeklyItems(rows []WeeklyRow) []Item {
	var out []Item
	for _, r := range rows {
		qty, ok := ResolveTotal(r)
		if !ok || r.Name == "" {
			continue
		}
		out = append(out, Item{RawName: r.Name, Qty: qty})
	}
	return out
}

func purchaseItems(rows []PurchaseRow) []Item {
	var out []Item
	for _, r := range rows {
		if r.Qty == nil || r.Name == "" {
			continue
		}
		out = append(out, Item{RawName: r.Name, Qty: *r.Qty})
	}
	return out
}

func nameKey(s string) string { return strings.ToLower(CleanName(s)) }
