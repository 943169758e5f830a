package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/textilia/contracts-service/internal/model"
)

// Stats computes the ten (type x status) buckets. Admins get direct
// per-bucket counts; suppliers and customers get a single grouped
// aggregation over their role, folded into the same buckets.
func (s *ContractService) Stats(ctx context.Context, principal model.Principal) (*model.ContractStats, error) {
	if principal.IsAdmin() {
		return s.adminStats(ctx)
	}
	if !principal.IsSupplier() && !principal.IsCustomer() {
		return nil, ErrPermissionDenied
	}

	rows, err := s.contracts.StatusCountsForRole(ctx, principal.BusinessType)
	if err != nil {
		return nil, err
	}
	stats := foldStatusCounts(rows)
	return &stats, nil
}

func (s *ContractService) adminStats(ctx context.Context) (*model.ContractStats, error) {
	count := func(t model.ContractType, status model.ContractStatus) (int64, error) {
		return s.contracts.CountByTypeAndStatus(ctx, t, status)
	}

	var stats model.ContractStats
	var err error

	if stats.General.Running, err = count(model.ContractTypeGeneral, model.ContractStatusGenRunning); err != nil {
		return nil, err
	}
	if stats.General.Completed, err = count(model.ContractTypeGeneral, model.ContractStatusGenCompleted); err != nil {
		return nil, err
	}
	if stats.General.Closed, err = count(model.ContractTypeGeneral, model.ContractStatusClosed); err != nil {
		return nil, err
	}
	if stats.General.Paused, err = count(model.ContractTypeGeneral, model.ContractStatusPaused); err != nil {
		return nil, err
	}
	if stats.General.Cancelled, err = count(model.ContractTypeGeneral, model.ContractStatusCancelled); err != nil {
		return nil, err
	}

	if stats.BlockBooking.Running, err = count(model.ContractTypeBlockBooking, model.ContractStatusBlockRunning); err != nil {
		return nil, err
	}
	if stats.BlockBooking.Completed, err = count(model.ContractTypeBlockBooking, model.ContractStatusBlockCompleted); err != nil {
		return nil, err
	}
	if stats.BlockBooking.Closed, err = count(model.ContractTypeBlockBooking, model.ContractStatusClosed); err != nil {
		return nil, err
	}
	if stats.BlockBooking.Paused, err = count(model.ContractTypeBlockBooking, model.ContractStatusPaused); err != nil {
		return nil, err
	}
	if stats.BlockBooking.Cancelled, err = count(model.ContractTypeBlockBooking, model.ContractStatusCancelled); err != nil {
		return nil, err
	}

	stats.Total = stats.General.Add(stats.BlockBooking)
	return &stats, nil
}

// foldStatusCounts maps grouped aggregation rows into the nested
// summaries, zero-filling absent buckets.
func foldStatusCounts(rows []model.StatusCountRow) model.ContractStats {
	var stats model.ContractStats
	for _, row := range rows {
		switch row.ContractType {
		case model.ContractTypeGeneral:
			switch row.Status {
			case model.ContractStatusGenRunning:
				stats.General.Running = row.Count
			case model.ContractStatusGenCompleted:
				stats.General.Completed = row.Count
			case model.ContractStatusClosed:
				stats.General.Closed = row.Count
			case model.ContractStatusPaused:
				stats.General.Paused = row.Count
			case model.ContractStatusCancelled:
				stats.General.Cancelled = row.Count
			}
		case model.ContractTypeBlockBooking:
			switch row.Status {
			case model.ContractStatusBlockRunning:
				stats.BlockBooking.Running = row.Count
			case model.ContractStatusBlockCompleted:
				stats.BlockBooking.Completed = row.Count
			case model.ContractStatusClosed:
				stats.BlockBooking.Closed = row.Count
			case model.ContractStatusPaused:
				stats.BlockBooking.Paused = row.Count
			case model.ContractStatusCancelled:
				stats.BlockBooking.Cancelled = row.Count
			}
		}
	}
	stats.Total = stats.General.Add(stats.BlockBooking)
	return stats
}

type ExportResult struct {
	FileName string
	Content  []byte
}

// StatsWorkbook renders the caller's statistics as an xlsx workbook.
func (s *ContractService) StatsWorkbook(ctx context.Context, principal model.Principal) (*ExportResult, error) {
	stats, err := s.Stats(ctx, principal)
	if err != nil {
		return nil, err
	}

	content, err := s.excel.Generate(*stats)
	if err != nil {
		return nil, err
	}

	fileName := fmt.Sprintf("contract-stats-%s.xlsx", time.Now().Format("20060102"))
	return &ExportResult{FileName: fileName, Content: content}, nil
}

// ContractPDF renders a printable contract summary with party and
// signature blocks.
func (s *ContractService) ContractPDF(ctx context.Context, contractID uuid.UUID) (*ExportResult, error) {
	contract, err := s.contracts.GetContract(ctx, contractID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	names, err := s.contracts.UserNames(ctx, []uuid.UUID{contract.SupplierID, contract.CustomerID})
	if err != nil {
		return nil, err
	}

	content, err := s.pdf.Generate(model.ContractDocument{
		Contract:     *contract,
		SupplierName: names[contract.SupplierID],
		CustomerName: names[contract.CustomerID],
	})
	if err != nil {
		return nil, err
	}

	name := sanitizeFileName(contract.ContractNumber)
	if name == "" {
		name = contract.ID.String()
	}
	return &ExportResult{FileName: fmt.Sprintf("contract-%s.pdf", name), Content: content}, nil
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			result = append(result, r)
		case r >= 'A' && r <= 'Z':
			result = append(result, r)
		case r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}
