package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/textilia/contracts-service/internal/config"
	"github.com/textilia/contracts-service/internal/model"
	"github.com/textilia/contracts-service/internal/repository"
)

// ContractRepository is the persistence surface the service needs.
type ContractRepository interface {
	CreateContract(ctx context.Context, contract *model.Contract) error
	GetContract(ctx context.Context, id uuid.UUID) (*model.Contract, error)
	ProposalRefs(ctx context.Context, contractIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.ContractStatus, reason *string) error
	SetPipelineStatus(ctx context.Context, id uuid.UUID, status model.PipelineStatus) error
	SetSODocument(ctx context.Context, id uuid.UUID, name, path string) error
	ListContracts(ctx context.Context, filter repository.ContractFilter) ([]model.ContractView, error)
	UserNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
	AppendMonthlyPlans(ctx context.Context, contractID uuid.UUID, plans []model.MonthlyPlan) error
	ListMonthlyPlans(ctx context.Context, contractID uuid.UUID) ([]model.MonthlyPlan, error)
	CountByTypeAndStatus(ctx context.Context, contractType model.ContractType, status model.ContractStatus) (int64, error)
	StatusCountsForRole(ctx context.Context, role string) ([]model.StatusCountRow, error)
}

type ProposalRepository interface {
	Exists(ctx context.Context, kind model.ProposalKind, id uuid.UUID) (bool, error)
	UpdateStatus(ctx context.Context, kind model.ProposalKind, id uuid.UUID, status model.ProposalStatus) error
	ListWithInquiries(ctx context.Context, kind model.ProposalKind, ids []uuid.UUID) (map[uuid.UUID]model.ProposalView, error)
}

type StatsExporter interface {
	Generate(stats model.ContractStats) ([]byte, error)
}

type DocumentGenerator interface {
	Generate(doc model.ContractDocument) ([]byte, error)
}

type ContractService struct {
	contracts ContractRepository
	proposals ProposalRepository
	excel     StatsExporter
	pdf       DocumentGenerator
	cfg       *config.Config
}

func NewContractService(
	contracts ContractRepository,
	proposals ProposalRepository,
	excel StatsExporter,
	pdf DocumentGenerator,
	cfg *config.Config,
) *ContractService {
	return &ContractService{
		contracts: contracts,
		proposals: proposals,
		excel:     excel,
		pdf:       pdf,
		cfg:       cfg,
	}
}

type CreateContractInput struct {
	Supplier         model.Principal
	ContractDate     time.Time
	ContractType     model.ContractType
	CustomerID       uuid.UUID
	ProposalIDs      []uuid.UUID
	PONumber         string
	SONumber         string
	Specs            string
	ConeWeight       float64
	Rate             float64
	Quantity         string
	Balance          string
	StartDate        time.Time
	EndDate          time.Time
	Status           model.ContractStatus
	CustomerName     string
	Aging            string
	AllocationNumber string
}

// Create builds a new contract in the initial pipeline state and marks
// every referenced proposal as contract_sent. Identity is allocated
// first so the contract number can be derived before persisting.
func (s *ContractService) Create(ctx context.Context, input CreateContractInput) (*model.Contract, error) {
	if input.ContractType != model.ContractTypeGeneral && input.ContractType != model.ContractTypeBlockBooking {
		return nil, fmt.Errorf("%w: invalid contract type %q", ErrInvalidInput, input.ContractType)
	}
	if input.ContractType == model.ContractTypeBlockBooking && strings.TrimSpace(input.AllocationNumber) == "" {
		return nil, fmt.Errorf("%w: allocation number is required for block-booking contracts", ErrInvalidInput)
	}

	kind := model.KindForContractType(input.ContractType)
	for _, proposalID := range input.ProposalIDs {
		exists, err := s.proposals.Exists(ctx, kind, proposalID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("%w: proposal %s does not exist for contract type %q", ErrInvalidInput, proposalID, input.ContractType)
		}
	}

	contract := &model.Contract{
		ID:             uuid.New(),
		ContractDate:   input.ContractDate,
		PONumber:       input.PONumber,
		SONumber:       input.SONumber,
		Specs:          input.Specs,
		Rate:           input.Rate,
		ConeWeight:     input.ConeWeight,
		Quantity:       input.Quantity,
		Balance:        input.Balance,
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
		Status:         input.Status,
		Aging:          input.Aging,
		CustomerName:   input.CustomerName,
		CustomerID:     input.CustomerID,
		SupplierID:     input.Supplier.UserID,
		ContractType:   input.ContractType,
		ProposalIDs:    input.ProposalIDs,
		ProposalRef:    kind,
		ContractStatus: model.PipelineSentReceived,
	}
	if input.ContractType == model.ContractTypeBlockBooking {
		allocation := input.AllocationNumber
		contract.AllocationNumber = &allocation
	}
	contract.ContractNumber = fmt.Sprintf("%s-%s/%d", s.cfg.Contracts.NumberPrefix, contract.ID, time.Now().Year())

	// Best effort: proposal updates that already landed are not rolled
	// back if the contract insert fails afterwards.
	if err := s.fanOutProposalStatus(ctx, kind, contract.ProposalIDs, model.ProposalStatusSent); err != nil {
		return nil, err
	}
	if err := s.contracts.CreateContract(ctx, contract); err != nil {
		return nil, err
	}
	return contract, nil
}

type UpdateStatusInput struct {
	ContractID uuid.UUID
	Status     string
	Reason     *string
	Caller     model.Principal
}

// UpdateStatus overwrites the fine-grained status. The caller must be
// one of the contract's parties. Linked proposals are untouched.
func (s *ContractService) UpdateStatus(ctx context.Context, input UpdateStatusInput) error {
	valid := false
	for _, status := range s.cfg.Contracts.ValidStatuses {
		if status == input.Status {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("%w: invalid status %q", ErrInvalidInput, input.Status)
	}

	contract, err := s.contracts.GetContract(ctx, input.ContractID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if input.Caller.UserID != contract.SupplierID && input.Caller.UserID != contract.CustomerID {
		return ErrPermissionDenied
	}

	return s.contracts.UpdateStatus(ctx, input.ContractID, model.ContractStatus(input.Status), input.Reason)
}

type AcceptContractInput struct {
	ContractID uuid.UUID
	CustomerID uuid.UUID
	SupplierID uuid.UUID
}

// Accept moves the contract's pipeline to running and every referenced
// proposal to contract_running. Both supplied party ids must match the
// stored references exactly.
func (s *ContractService) Accept(ctx context.Context, input AcceptContractInput) (*model.Contract, error) {
	contract, err := s.contracts.GetContract(ctx, input.ContractID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if input.CustomerID != contract.CustomerID || input.SupplierID != contract.SupplierID {
		return nil, fmt.Errorf("%w: invalid client or supplier", ErrInvalidInput)
	}

	if err := s.fanOutProposalStatus(ctx, contract.ProposalRef, contract.ProposalIDs, model.ProposalStatusRunning); err != nil {
		return nil, err
	}
	if err := s.contracts.SetPipelineStatus(ctx, input.ContractID, model.PipelineRunning); err != nil {
		return nil, err
	}

	contract.ContractStatus = model.PipelineRunning
	return contract, nil
}

// AttachSODocument records a sales-order document descriptor uploaded
// by an external file store.
func (s *ContractService) AttachSODocument(ctx context.Context, contractID uuid.UUID, name, path string) (*model.Contract, error) {
	if err := s.contracts.SetSODocument(ctx, contractID, name, path); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	contract, err := s.contracts.GetContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	return contract, nil
}

// Detail returns the fully populated contract: party names, proposal
// references expanded with inquiries, and monthly plans.
func (s *ContractService) Detail(ctx context.Context, contractID uuid.UUID) (*model.ContractView, error) {
	contract, err := s.contracts.GetContract(ctx, contractID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	plans, err := s.contracts.ListMonthlyPlans(ctx, contractID)
	if err != nil {
		return nil, err
	}
	contract.MonthlyPlans = plans

	names, err := s.contracts.UserNames(ctx, []uuid.UUID{contract.SupplierID, contract.CustomerID})
	if err != nil {
		return nil, err
	}

	fetched, err := s.proposals.ListWithInquiries(ctx, contract.ProposalRef, contract.ProposalIDs)
	if err != nil {
		return nil, err
	}

	view := &model.ContractView{
		Contract: *contract,
		Supplier: model.PartyRef{ID: contract.SupplierID, Name: names[contract.SupplierID]},
		Customer: model.PartyRef{ID: contract.CustomerID, Name: names[contract.CustomerID]},
	}
	view.Proposals = orderedProposals(contract.ProposalIDs, fetched, nil)
	return view, nil
}

func (s *ContractService) fanOutProposalStatus(ctx context.Context, kind model.ProposalKind, ids []uuid.UUID, status model.ProposalStatus) error {
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for _, id := range ids {
		wg.Add(1)
		go func(proposalID uuid.UUID) {
			defer wg.Done()
			err := s.proposals.UpdateStatus(ctx, kind, proposalID, status)
			if err == nil || errors.Is(err, gorm.ErrRecordNotFound) {
				return
			}
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
		}(id)
	}
	wg.Wait()
	return firstErr
}

// orderedProposals assembles proposal views in reference order. A nil
// whitelist keeps everything; otherwise only whitelisted statuses
// survive. Unresolvable references are dropped.
func orderedProposals(ids []uuid.UUID, fetched map[uuid.UUID]model.ProposalView, whitelist []model.ProposalStatus) []model.ProposalView {
	result := make([]model.ProposalView, 0, len(ids))
	for _, id := range ids {
		view, ok := fetched[id]
		if !ok {
			continue
		}
		if whitelist != nil && !containsStatus(whitelist, view.Status) {
			continue
		}
		result = append(result, view)
	}
	return result
}

func containsStatus(list []model.ProposalStatus, status model.ProposalStatus) bool {
	for _, item := range list {
		if item == status {
			return true
		}
	}
	return false
}
