package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/textilia/contracts-service/internal/model"
)

type PlanEntry struct {
	Date     time.Time
	Quantity float64
}

type ContractPlansInput struct {
	ContractID uuid.UUID
	Plans      []PlanEntry
}

// CreateMonthlyPlans appends delivery plans to each listed contract, in
// order. A missing contract aborts the remaining batch; contracts
// processed before it keep their new plans.
func (s *ContractService) CreateMonthlyPlans(ctx context.Context, batch []ContractPlansInput) error {
	for _, item := range batch {
		if _, err := s.contracts.GetContract(ctx, item.ContractID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: contract %s", ErrNotFound, item.ContractID)
			}
			return err
		}

		plans := make([]model.MonthlyPlan, 0, len(item.Plans))
		for _, entry := range item.Plans {
			plans = append(plans, model.MonthlyPlan{
				ID:         uuid.New(),
				ContractID: item.ContractID,
				Date:       entry.Date,
				Quantity:   entry.Quantity,
				Status:     model.PlanStatusPending,
			})
		}
		if err := s.contracts.AppendMonthlyPlans(ctx, item.ContractID, plans); err != nil {
			return err
		}
	}
	return nil
}

// PlansForContract returns only the monthly plans of a contract.
func (s *ContractService) PlansForContract(ctx context.Context, contractID uuid.UUID) ([]model.MonthlyPlan, error) {
	if _, err := s.contracts.GetContract(ctx, contractID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.contracts.ListMonthlyPlans(ctx, contractID)
}
