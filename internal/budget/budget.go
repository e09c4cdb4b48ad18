// Package budget keeps the per-client ledger: planned allocations, actual
// spend per category and an append-only record log, newest first.
package budget

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/eersi/marketplace/internal/apperr"
	"github.com/eersi/marketplace/internal/docstore"
	"github.com/eersi/marketplace/internal/models"
)

type Service struct {
	store *docstore.Store
	now   func() time.Time
	newID func() string
}

func NewService(store *docstore.Store) *Service {
	return &Service{store: store, now: time.Now, newID: uuid.NewString}
}

func emptyBudget(clientID string, now time.Time) models.Budget {
	return models.Budget{
		ClientID:    clientID,
		Total:       0,
		Allocations: map[string]float64{},
		Actuals:     map[string]float64{},
		Records:     []models.BudgetRecord{},
		UpdatedAt:   now,
	}
}

// GetOrCreate returns the client's budget, creating and persisting an empty
// one on first access.
func (s *Service) GetOrCreate(ctx context.Context, clientID string) (models.Budget, error) {
	var out models.Budget
	_, err := docstore.Update(ctx, s.store, docstore.CollBudgets,
		func(items []models.Budget) ([]models.Budget, error) {
			for _, b := range items {
				if b.ClientID == clientID {
					out = b
					return items, nil
				}
			}
			out = emptyBudget(clientID, s.now())
			return append(items, out), nil
		})
	if err != nil {
		return models.Budget{}, err
	}
	return out, nil
}

// UpdateInput is a partial patch. Maps merge key-by-key into the existing
// ones; keys absent from the patch are preserved.
type UpdateInput struct {
	Total       *float64           `json:"total"`
	Allocations map[string]float64 `json:"allocations"`
	Actuals     map[string]float64 `json:"actuals"`
}

// Update applies a partial patch and bumps updatedAt.
func (s *Service) Update(ctx context.Context, clientID string, in UpdateInput) (models.Budget, error) {
	var out models.Budget
	_, err := docstore.Update(ctx, s.store, docstore.CollBudgets,
		func(items []models.Budget) ([]models.Budget, error) {
			idx := s.findOrAppend(&items, clientID)
			b := &items[idx]
			if in.Total != nil {
				b.Total = *in.Total
			}
			for k, v := range in.Allocations {
				b.Allocations[k] = v
			}
			for k, v := range in.Actuals {
				b.Actuals[k] = v
			}
			b.UpdatedAt = s.now()
			out = *b
			return items, nil
		})
	if err != nil {
		return models.Budget{}, err
	}
	return out, nil
}

// RecordInput is one spend entry. BookingID and VendorID are set when the
// entry comes from a booking confirmation.
type RecordInput struct {
	Category  string
	Amount    float64
	Date      string
	BookingID string
	VendorID  string
}

// Record increments actuals for the category and prepends a ledger record.
// Date defaults to today's ISO date.
func (s *Service) Record(ctx context.Context, clientID string, in RecordInput) (models.Budget, error) {
	if in.Category == "" {
		return models.Budget{}, apperr.Validation("category and numeric amount required")
	}
	var out models.Budget
	_, err := docstore.Update(ctx, s.store, docstore.CollBudgets,
		func(items []models.Budget) ([]models.Budget, error) {
			idx := s.findOrAppend(&items, clientID)
			b := &items[idx]
			b.Actuals[in.Category] += in.Amount
			date := in.Date
			if date == "" {
				date = s.now().Format("2006-01-02")
			}
			rec := models.BudgetRecord{
				ID:        s.newID(),
				Date:      date,
				Category:  in.Category,
				Amount:    in.Amount,
				BookingID: in.BookingID,
				VendorID:  in.VendorID,
			}
			b.Records = append([]models.BudgetRecord{rec}, b.Records...)
			b.UpdatedAt = s.now()
			out = *b
			return items, nil
		})
	if err != nil {
		return models.Budget{}, err
	}
	return out, nil
}

// findOrAppend locates the client's budget in items, appending an empty one
// when absent, and returns its index.
func (s *Service) findOrAppend(items *[]models.Budget, clientID string) int {
	for i := range *items {
		if (*items)[i].ClientID == clientID {
			if (*items)[i].Allocations == nil {
				(*items)[i].Allocations = map[string]float64{}
			}
			if (*items)[i].Actuals == nil {
				(*items)[i].Actuals = map[string]float64{}
			}
			return i
		}
	}
	*items = append(*items, emptyBudget(clientID, s.now()))
	return len(*items) - 1
}
