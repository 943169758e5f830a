package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/textilia/contracts-service/internal/model"
	"github.com/textilia/contracts-service/internal/repository"
)

type fakeContractRepo struct {
	mu         sync.Mutex
	contracts  map[uuid.UUID]*model.Contract
	plans      map[uuid.UUID][]model.MonthlyPlan
	users      map[uuid.UUID]string
	listResult []model.ContractView
	lastFilter *repository.ContractFilter
	counts     map[string]int64
	roleRows   []model.StatusCountRow
	createErr  error
}

func newFakeContractRepo() *fakeContractRepo {
	return &fakeContractRepo{
		contracts: make(map[uuid.UUID]*model.Contract),
		plans:     make(map[uuid.UUID][]model.MonthlyPlan),
		users:     make(map[uuid.UUID]string),
		counts:    make(map[string]int64),
	}
}

func countKey(t model.ContractType, s model.ContractStatus) string {
	return fmt.Sprintf("%s|%s", t, s)
}

func (f *fakeContractRepo) CreateContract(ctx context.Context, contract *model.Contract) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	saved := *contract
	f.contracts[contract.ID] = &saved
	return nil
}

func (f *fakeContractRepo) GetContract(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	contract, ok := f.contracts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *contract
	return &clone, nil
}

func (f *fakeContractRepo) ProposalRefs(ctx context.Context, contractIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	refs := make(map[uuid.UUID][]uuid.UUID)
	for _, id := range contractIDs {
		if contract, ok := f.contracts[id]; ok {
			refs[id] = contract.ProposalIDs
		}
	}
	return refs, nil
}

func (f *fakeContractRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ContractStatus, reason *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	contract, ok := f.contracts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	contract.Status = status
	if reason != nil {
		contract.Reason = reason
	}
	return nil
}

func (f *fakeContractRepo) SetPipelineStatus(ctx context.Context, id uuid.UUID, status model.PipelineStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	contract, ok := f.contracts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	contract.ContractStatus = status
	return nil
}

func (f *fakeContractRepo) SetSODocument(ctx context.Context, id uuid.UUID, name, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	contract, ok := f.contracts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	contract.SODocument = &model.SODocument{Name: name, Path: path}
	return nil
}

func (f *fakeContractRepo) ListContracts(ctx context.Context, filter repository.ContractFilter) ([]model.ContractView, error) {
	f.lastFilter = &filter
	return f.listResult, nil
}

func (f *fakeContractRepo) UserNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string)
	for _, id := range ids {
		if name, ok := f.users[id]; ok {
			names[id] = name
		}
	}
	return names, nil
}

func (f *fakeContractRepo) AppendMonthlyPlans(ctx context.Context, contractID uuid.UUID, plans []model.MonthlyPlan) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing := f.plans[contractID]
	for i := range plans {
		plans[i].Position = len(existing) + i
	}
	f.plans[contractID] = append(existing, plans...)
	return nil
}

func (f *fakeContractRepo) ListMonthlyPlans(ctx context.Context, contractID uuid.UUID) ([]model.MonthlyPlan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.MonthlyPlan{}, f.plans[contractID]...), nil
}

func (f *fakeContractRepo) CountByTypeAndStatus(ctx context.Context, contractType model.ContractType, status model.ContractStatus) (int64, error) {
	return f.counts[countKey(contractType, status)], nil
}

func (f *fakeContractRepo) StatusCountsForRole(ctx context.Context, role string) ([]model.StatusCountRow, error) {
	return f.roleRows, nil
}

type fakeProposalRepo struct {
	mu        sync.Mutex
	proposals map[model.ProposalKind]map[uuid.UUID]*model.Proposal
	inquiries map[uuid.UUID]*model.Inquiry
	updateErr error
}

func newFakeProposalRepo() *fakeProposalRepo {
	return &fakeProposalRepo{
		proposals: map[model.ProposalKind]map[uuid.UUID]*model.Proposal{
			model.ProposalKindGeneral:      {},
			model.ProposalKindBlockBooking: {},
		},
		inquiries: make(map[uuid.UUID]*model.Inquiry),
	}
}

func (f *fakeProposalRepo) add(kind model.ProposalKind, status model.ProposalStatus) uuid.UUID {
	id := uuid.New()
	f.proposals[kind][id] = &model.Proposal{ID: id, InquiryID: uuid.New(), Status: status}
	return id
}

func (f *fakeProposalRepo) Exists(ctx context.Context, kind model.ProposalKind, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.proposals[kind][id]
	return ok, nil
}

func (f *fakeProposalRepo) UpdateStatus(ctx context.Context, kind model.ProposalKind, id uuid.UUID, status model.ProposalStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	proposal, ok := f.proposals[kind][id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	proposal.Status = status
	return nil
}

func (f *fakeProposalRepo) ListWithInquiries(ctx context.Context, kind model.ProposalKind, ids []uuid.UUID) (map[uuid.UUID]model.ProposalView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	views := make(map[uuid.UUID]model.ProposalView)
	for _, id := range ids {
		proposal, ok := f.proposals[kind][id]
		if !ok {
			continue
		}
		view := model.ProposalView{Proposal: *proposal}
		if inquiry, ok := f.inquiries[proposal.InquiryID]; ok {
			view.Inquiry = inquiry
		}
		views[id] = view
	}
	return views, nil
}

func (f *fakeProposalRepo) status(kind model.ProposalKind, id uuid.UUID) model.ProposalStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.proposals[kind][id].Status
}
