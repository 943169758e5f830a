package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/textilia/contracts-service/internal/model"
	"github.com/textilia/contracts-service/internal/repository"
)

// Each listing view pairs a query-level contract filter with its own
// whitelist over the populated proposals' statuses. The query filter
// targets contract fields, the whitelist targets the proposals' own
// status field; the two layers stay independent.

// ListAll returns every contract a user participates in that has left
// the initial pipeline state.
func (s *ContractService) ListAll(ctx context.Context, userID uuid.UUID) ([]model.ContractView, error) {
	pipeline := model.PipelineSentReceived
	views, err := s.contracts.ListContracts(ctx, repository.ContractFilter{
		ParticipantID: &userID,
		PipelineNot:   &pipeline,
	})
	if err != nil {
		return nil, err
	}
	return s.populateProposals(ctx, views, []model.ProposalStatus{
		model.ProposalStatusSent,
		model.ProposalStatusAccepted,
		model.ProposalStatusRunning,
		model.ProposalStatusDelivered,
	})
}

// ListRunning filters on the fine-grained status field, not the
// pipeline field.
func (s *ContractService) ListRunning(ctx context.Context, userID uuid.UUID) ([]model.ContractView, error) {
	status := model.ContractStatusRunning
	views, err := s.contracts.ListContracts(ctx, repository.ContractFilter{
		ParticipantID: &userID,
		StatusIs:      &status,
	})
	if err != nil {
		return nil, err
	}
	return s.populateProposals(ctx, views, []model.ProposalStatus{
		model.ProposalStatusRunning,
	})
}

func (s *ContractService) ListCompleted(ctx context.Context, userID uuid.UUID) ([]model.ContractView, error) {
	pipeline := model.PipelineDelivered
	views, err := s.contracts.ListContracts(ctx, repository.ContractFilter{
		ParticipantID: &userID,
		PipelineIs:    &pipeline,
	})
	if err != nil {
		return nil, err
	}
	return s.populateProposals(ctx, views, []model.ProposalStatus{
		model.ProposalStatusDelivered,
	})
}

// ListNew returns general contracts still awaiting acceptance. No
// proposal whitelist applies on this view.
func (s *ContractService) ListNew(ctx context.Context, userID uuid.UUID) ([]model.ContractView, error) {
	pipeline := model.PipelineSentReceived
	contractType := model.ContractTypeGeneral
	views, err := s.contracts.ListContracts(ctx, repository.ContractFilter{
		ParticipantID: &userID,
		PipelineIs:    &pipeline,
		ContractType:  &contractType,
	})
	if err != nil {
		return nil, err
	}
	return s.populateProposals(ctx, views, nil)
}

// ListBlockBooking is the block-booking counterpart of ListNew.
func (s *ContractService) ListBlockBooking(ctx context.Context, userID uuid.UUID) ([]model.ContractView, error) {
	pipeline := model.PipelineSentReceived
	contractType := model.ContractTypeBlockBooking
	views, err := s.contracts.ListContracts(ctx, repository.ContractFilter{
		ParticipantID: &userID,
		PipelineIs:    &pipeline,
		ContractType:  &contractType,
	})
	if err != nil {
		return nil, err
	}
	return s.populateProposals(ctx, views, nil)
}

// populateProposals batch-reads the proposal references of every listed
// contract, expands them with their inquiries and applies the view's
// whitelist. Assembly happens here rather than in the query so it stays
// unit-testable apart from the store.
func (s *ContractService) populateProposals(ctx context.Context, views []model.ContractView, whitelist []model.ProposalStatus) ([]model.ContractView, error) {
	if len(views) == 0 {
		return views, nil
	}

	contractIDs := make([]uuid.UUID, 0, len(views))
	for _, view := range views {
		contractIDs = append(contractIDs, view.ID)
	}
	refs, err := s.contracts.ProposalRefs(ctx, contractIDs)
	if err != nil {
		return nil, err
	}

	byKind := make(map[model.ProposalKind][]uuid.UUID)
	for _, view := range views {
		byKind[view.ProposalRef] = append(byKind[view.ProposalRef], refs[view.ID]...)
	}

	fetched := make(map[model.ProposalKind]map[uuid.UUID]model.ProposalView, len(byKind))
	for kind, ids := range byKind {
		proposals, err := s.proposals.ListWithInquiries(ctx, kind, ids)
		if err != nil {
			return nil, err
		}
		fetched[kind] = proposals
	}

	for i := range views {
		view := &views[i]
		view.ProposalIDs = refs[view.ID]
		view.Proposals = orderedProposals(refs[view.ID], fetched[view.ProposalRef], whitelist)
	}
	return views, nil
}
