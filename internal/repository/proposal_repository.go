package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/textilia/contracts-service/internal/model"
)

type ProposalRepository struct {
	db *gorm.DB
}

func NewProposalRepository(db *gorm.DB) *ProposalRepository {
	return &ProposalRepository{db: db}
}

func proposalTable(kind model.ProposalKind) (string, error) {
	switch kind {
	case model.ProposalKindGeneral:
		return "general_proposals", nil
	case model.ProposalKindBlockBooking:
		return "block_booking_proposals", nil
	default:
		return "", fmt.Errorf("unknown proposal kind %q", kind)
	}
}

func (r *ProposalRepository) GetProposal(ctx context.Context, kind model.ProposalKind, id uuid.UUID) (*model.Proposal, error) {
	table, err := proposalTable(kind)
	if err != nil {
		return nil, err
	}

	var row struct {
		ID        uuid.UUID
		InquiryID uuid.UUID
		Status    string
		Quantity  *string
		Rate      *float64
		CreatedAt time.Time
	}
	err = r.db.WithContext(ctx).Raw(fmt.Sprintf(`
		SELECT id, inquiry_id, status, quantity, rate, created_at
		FROM %s
		WHERE id = ?
		LIMIT 1
	`, table), id).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}

	proposal := model.Proposal{
		ID:        row.ID,
		InquiryID: row.InquiryID,
		Status:    model.ProposalStatus(row.Status),
		CreatedAt: row.CreatedAt,
	}
	if row.Quantity != nil {
		proposal.Quantity = *row.Quantity
	}
	if row.Rate != nil {
		proposal.Rate = *row.Rate
	}
	return &proposal, nil
}

// Exists reports whether a proposal id resolves in the variant table.
func (r *ProposalRepository) Exists(ctx context.Context, kind model.ProposalKind, id uuid.UUID) (bool, error) {
	table, err := proposalTable(kind)
	if err != nil {
		return false, err
	}

	var count int64
	err = r.db.WithContext(ctx).Raw(fmt.Sprintf(`
		SELECT COUNT(*) FROM %s WHERE id = ?
	`, table), id).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ProposalRepository) UpdateStatus(ctx context.Context, kind model.ProposalKind, id uuid.UUID, status model.ProposalStatus) error {
	table, err := proposalTable(kind)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Exec(fmt.Sprintf(`
		UPDATE %s SET status = ? WHERE id = ?
	`, table), status, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListWithInquiries batch-fetches proposals and their originating
// inquiries, keyed by proposal id. Missing references are skipped.
func (r *ProposalRepository) ListWithInquiries(ctx context.Context, kind model.ProposalKind, ids []uuid.UUID) (map[uuid.UUID]model.ProposalView, error) {
	views := make(map[uuid.UUID]model.ProposalView, len(ids))
	if len(ids) == 0 {
		return views, nil
	}

	table, err := proposalTable(kind)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		ID             uuid.UUID
		InquiryID      uuid.UUID
		Status         string
		Quantity       *string
		Rate           *float64
		CreatedAt      time.Time
		InquirySubject *string
		InquiryDetails *string
	}
	err = r.db.WithContext(ctx).Raw(fmt.Sprintf(`
		SELECT
			p.id,
			p.inquiry_id,
			p.status,
			p.quantity,
			p.rate,
			p.created_at,
			i.subject AS inquiry_subject,
			i.details AS inquiry_details
		FROM %s p
		LEFT JOIN inquiries i ON i.id = p.inquiry_id
		WHERE p.id = ANY(?)
	`, table), ids).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		view := model.ProposalView{
			Proposal: model.Proposal{
				ID:        row.ID,
				InquiryID: row.InquiryID,
				Status:    model.ProposalStatus(row.Status),
				CreatedAt: row.CreatedAt,
			},
		}
		if row.Quantity != nil {
			view.Quantity = *row.Quantity
		}
		if row.Rate != nil {
			view.Rate = *row.Rate
		}
		if row.InquirySubject != nil || row.InquiryDetails != nil {
			view.Inquiry = &model.Inquiry{
				ID:      row.InquiryID,
				Subject: deref(row.InquirySubject),
				Details: deref(row.InquiryDetails),
			}
		}
		views[row.ID] = view
	}
	return views, nil
}
