package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/textilia/contracts-service/internal/model"
)

type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

const contractColumns = `
	c.id,
	c.contract_number,
	c.contract_date,
	c.po_number,
	c.so_number,
	c.specs,
	c.rate,
	c.cone_weight,
	c.quantity,
	c.balance,
	c.start_date,
	c.end_date,
	c.status,
	c.aging,
	c.customer_name,
	c.customer_id,
	c.supplier_id,
	c.contract_type,
	c.allocation_number,
	c.proposal_ref,
	c.so_document_name,
	c.so_document_path,
	c.supplier_sign_name,
	c.supplier_signed_at,
	c.supplier_signature_url,
	c.customer_sign_name,
	c.customer_signed_at,
	c.customer_signature_url,
	c.reason,
	c.contract_status,
	c.created_at,
	c.updated_at
`

type contractRow struct {
	ID                   uuid.UUID
	ContractNumber       string
	ContractDate         time.Time
	PoNumber             string
	SoNumber             string
	Specs                string
	Rate                 float64
	ConeWeight           float64
	Quantity             string
	Balance              *string
	StartDate            time.Time
	EndDate              time.Time
	Status               string
	Aging                *string
	CustomerName         string
	CustomerID           uuid.UUID
	SupplierID           uuid.UUID
	ContractType         string
	AllocationNumber     *string
	ProposalRef          string
	SoDocumentName       *string
	SoDocumentPath       *string
	SupplierSignName     *string
	SupplierSignedAt     *time.Time
	SupplierSignatureUrl *string
	CustomerSignName     *string
	CustomerSignedAt     *time.Time
	CustomerSignatureUrl *string
	Reason               *string
	ContractStatus       string
	CreatedAt            time.Time
	UpdatedAt            time.Time
	SupplierName         *string
	PartyCustomerName    *string
}

func (row contractRow) toModel() model.Contract {
	contract := model.Contract{
		ID:               row.ID,
		ContractNumber:   row.ContractNumber,
		ContractDate:     row.ContractDate,
		PONumber:         row.PoNumber,
		SONumber:         row.SoNumber,
		Specs:            row.Specs,
		Rate:             row.Rate,
		ConeWeight:       row.ConeWeight,
		Quantity:         row.Quantity,
		StartDate:        row.StartDate,
		EndDate:          row.EndDate,
		Status:           model.ContractStatus(row.Status),
		CustomerName:     row.CustomerName,
		CustomerID:       row.CustomerID,
		SupplierID:       row.SupplierID,
		ContractType:     model.ContractType(row.ContractType),
		AllocationNumber: row.AllocationNumber,
		ProposalRef:      model.ProposalKind(row.ProposalRef),
		Reason:           row.Reason,
		ContractStatus:   model.PipelineStatus(row.ContractStatus),
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
	if row.Balance != nil {
		contract.Balance = *row.Balance
	}
	if row.Aging != nil {
		contract.Aging = *row.Aging
	}
	if row.SoDocumentName != nil || row.SoDocumentPath != nil {
		contract.SODocument = &model.SODocument{
			Name: deref(row.SoDocumentName),
			Path: deref(row.SoDocumentPath),
		}
	}
	contract.ESignatures = model.ESignatures{
		Supplier: model.Signature{
			Name:         deref(row.SupplierSignName),
			SignedAt:     row.SupplierSignedAt,
			SignatureURL: deref(row.SupplierSignatureUrl),
		},
		Customer: model.Signature{
			Name:         deref(row.CustomerSignName),
			SignedAt:     row.CustomerSignedAt,
			SignatureURL: deref(row.CustomerSignatureUrl),
		},
	}
	return contract
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

// CreateContract inserts the contract together with its ordered proposal
// references. The id and contract number are assigned by the caller.
func (r *ContractRepository) CreateContract(ctx context.Context, contract *model.Contract) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Exec(`
			INSERT INTO contracts (
				id,
				contract_number,
				contract_date,
				po_number,
				so_number,
				specs,
				rate,
				cone_weight,
				quantity,
				balance,
				start_date,
				end_date,
				status,
				aging,
				customer_name,
				customer_id,
				supplier_id,
				contract_type,
				allocation_number,
				proposal_ref,
				reason,
				contract_status
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			contract.ID,
			contract.ContractNumber,
			contract.ContractDate,
			contract.PONumber,
			contract.SONumber,
			contract.Specs,
			contract.Rate,
			contract.ConeWeight,
			contract.Quantity,
			contract.Balance,
			contract.StartDate,
			contract.EndDate,
			contract.Status,
			contract.Aging,
			contract.CustomerName,
			contract.CustomerID,
			contract.SupplierID,
			contract.ContractType,
			contract.AllocationNumber,
			contract.ProposalRef,
			contract.Reason,
			contract.ContractStatus,
		).Error
		if err != nil {
			return err
		}

		for i, proposalID := range contract.ProposalIDs {
			if err := tx.Exec(`
				INSERT INTO contract_proposals (contract_id, proposal_id, position)
				VALUES (?, ?, ?)
			`, contract.ID, proposalID, i).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *ContractRepository) GetContract(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	var row contractRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+contractColumns+`
		FROM contracts c
		WHERE c.id = ?
		LIMIT 1
	`, id).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}

	contract := row.toModel()
	proposalIDs, err := r.proposalIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	contract.ProposalIDs = proposalIDs
	return &contract, nil
}

func (r *ContractRepository) proposalIDs(ctx context.Context, contractID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Raw(`
		SELECT proposal_id
		FROM contract_proposals
		WHERE contract_id = ?
		ORDER BY position ASC
	`, contractID).Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// ProposalRefs returns the ordered proposal references for a set of
// contracts in one round trip.
func (r *ContractRepository) ProposalRefs(ctx context.Context, contractIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	refs := make(map[uuid.UUID][]uuid.UUID, len(contractIDs))
	if len(contractIDs) == 0 {
		return refs, nil
	}

	var rows []struct {
		ContractID uuid.UUID
		ProposalID uuid.UUID
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT contract_id, proposal_id
		FROM contract_proposals
		WHERE contract_id = ANY(?)
		ORDER BY contract_id, position ASC
	`, contractIDs).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		refs[row.ContractID] = append(refs[row.ContractID], row.ProposalID)
	}
	return refs, nil
}

func (r *ContractRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ContractStatus, reason *string) error {
	query := `UPDATE contracts SET status = ?, updated_at = NOW()`
	args := []interface{}{status}
	if reason != nil {
		query += `, reason = ?`
		args = append(args, *reason)
	}
	query += ` WHERE id = ?`
	args = append(args, id)

	result := r.db.WithContext(ctx).Exec(query, args...)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ContractRepository) SetPipelineStatus(ctx context.Context, id uuid.UUID, status model.PipelineStatus) error {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE contracts SET contract_status = ?, updated_at = NOW() WHERE id = ?
	`, status, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetSODocument records the descriptor of an already-uploaded sales-order
// document. Single-statement update, nothing else on the row changes.
func (r *ContractRepository) SetSODocument(ctx context.Context, id uuid.UUID, name, path string) error {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE contracts
		SET so_document_name = ?, so_document_path = ?, updated_at = NOW()
		WHERE id = ?
	`, name, path, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ContractFilter narrows a listing query. Nil fields are skipped.
type ContractFilter struct {
	ParticipantID *uuid.UUID
	PipelineIs    *model.PipelineStatus
	PipelineNot   *model.PipelineStatus
	StatusIs      *model.ContractStatus
	ContractType  *model.ContractType
}

// ListContracts returns contracts matching the filter with both party
// names joined in, newest first.
func (r *ContractRepository) ListContracts(ctx context.Context, filter ContractFilter) ([]model.ContractView, error) {
	baseQuery := `
		SELECT ` + contractColumns + `,
			supplier.name AS supplier_name,
			customer.name AS party_customer_name
		FROM contracts c
		JOIN users supplier ON supplier.id = c.supplier_id
		JOIN users customer ON customer.id = c.customer_id
		WHERE 1=1
	`
	var args []interface{}

	if filter.ParticipantID != nil {
		baseQuery += " AND (c.supplier_id = ? OR c.customer_id = ?)"
		args = append(args, *filter.ParticipantID, *filter.ParticipantID)
	}
	if filter.PipelineIs != nil {
		baseQuery += " AND c.contract_status = ?"
		args = append(args, *filter.PipelineIs)
	}
	if filter.PipelineNot != nil {
		baseQuery += " AND c.contract_status <> ?"
		args = append(args, *filter.PipelineNot)
	}
	if filter.StatusIs != nil {
		baseQuery += " AND c.status = ?"
		args = append(args, *filter.StatusIs)
	}
	if filter.ContractType != nil {
		baseQuery += " AND c.contract_type = ?"
		args = append(args, *filter.ContractType)
	}
	baseQuery += " ORDER BY c.created_at DESC"

	var rows []contractRow
	if err := r.db.WithContext(ctx).Raw(baseQuery, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	views := make([]model.ContractView, 0, len(rows))
	for _, row := range rows {
		view := model.ContractView{Contract: row.toModel()}
		view.Supplier = model.PartyRef{ID: row.SupplierID, Name: deref(row.SupplierName)}
		view.Customer = model.PartyRef{ID: row.CustomerID, Name: deref(row.PartyCustomerName)}
		views = append(views, view)
	}
	return views, nil
}

// UserNames resolves display names for a set of user ids.
func (r *ContractRepository) UserNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	var rows []struct {
		ID   uuid.UUID
		Name string
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, name FROM users WHERE id = ANY(?)
	`, ids).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		names[row.ID] = row.Name
	}
	return names, nil
}

type monthlyPlanRow struct {
	ID                     uuid.UUID
	ContractID             uuid.UUID
	Date                   time.Time
	Quantity               float64
	Status                 string
	SupplierTermsDate      *time.Time
	SupplierTermsQuantity  *float64
	SupplierTermsRemarks   *string
	FinalAgreementDate     *time.Time
	FinalAgreementQuantity *float64
	Position               int
}

// AppendMonthlyPlans adds plans to a contract after the existing ones.
func (r *ContractRepository) AppendMonthlyPlans(ctx context.Context, contractID uuid.UUID, plans []model.MonthlyPlan) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var next int
		if err := tx.Raw(`
			SELECT COALESCE(MAX(position), -1) + 1
			FROM monthly_plans
			WHERE contract_id = ?
		`, contractID).Scan(&next).Error; err != nil {
			return err
		}

		for i, plan := range plans {
			if err := tx.Exec(`
				INSERT INTO monthly_plans (id, contract_id, date, quantity, status, position)
				VALUES (?, ?, ?, ?, ?, ?)
			`, plan.ID, contractID, plan.Date, plan.Quantity, plan.Status, next+i).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *ContractRepository) ListMonthlyPlans(ctx context.Context, contractID uuid.UUID) ([]model.MonthlyPlan, error) {
	var rows []monthlyPlanRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			id,
			contract_id,
			date,
			quantity,
			status,
			supplier_terms_date,
			supplier_terms_quantity,
			supplier_terms_remarks,
			final_agreement_date,
			final_agreement_quantity,
			position
		FROM monthly_plans
		WHERE contract_id = ?
		ORDER BY position ASC
	`, contractID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	plans := make([]model.MonthlyPlan, 0, len(rows))
	for _, row := range rows {
		plans = append(plans, model.MonthlyPlan{
			ID:         row.ID,
			ContractID: row.ContractID,
			Date:       row.Date,
			Quantity:   row.Quantity,
			Status:     model.PlanStatus(row.Status),
			SupplierTerms: model.SupplierTerms{
				Date:     row.SupplierTermsDate,
				Quantity: row.SupplierTermsQuantity,
				Remarks:  deref(row.SupplierTermsRemarks),
			},
			FinalAgreement: model.FinalAgreement{
				Date:     row.FinalAgreementDate,
				Quantity: row.FinalAgreementQuantity,
			},
			Position: row.Position,
		})
	}
	return plans, nil
}

func (r *ContractRepository) CountByTypeAndStatus(ctx context.Context, contractType model.ContractType, status model.ContractStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) FROM contracts WHERE contract_type = ? AND status = ?
	`, contractType, status).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// StatusCountsForRole groups contracts by (type, status) across all users
// of one business type, joining through the party column that role owns.
func (r *ContractRepository) StatusCountsForRole(ctx context.Context, role string) ([]model.StatusCountRow, error) {
	userColumn := "c.customer_id"
	if role == model.RoleSupplier {
		userColumn = "c.supplier_id"
	}

	query := fmt.Sprintf(`
		SELECT
			c.contract_type,
			c.status,
			COUNT(*) AS count
		FROM contracts c
		JOIN users u ON u.id = %s
		WHERE u.business_type = ?
		GROUP BY c.contract_type, c.status
	`, userColumn)

	var rows []model.StatusCountRow
	if err := r.db.WithContext(ctx).Raw(query, strings.TrimSpace(role)).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
