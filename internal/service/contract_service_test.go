package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/textilia/contracts-service/internal/config"
	"github.com/textilia/contracts-service/internal/excel"
	"github.com/textilia/contracts-service/internal/model"
	"github.com/textilia/contracts-service/internal/pdf"
)

func newTestService(contracts *fakeContractRepo, proposals *fakeProposalRepo) *ContractService {
	cfg := &config.Config{
		Contracts: config.ContractsConfig{
			NumberPrefix: "Textilia",
			ValidStatuses: []string{
				"gen_running",
				"gen_completed",
				"block_running",
				"block_completed",
				"cancelled",
				"closed",
				"paused",
			},
		},
	}
	return NewContractService(contracts, proposals, excel.NewGenerator(), pdf.NewGenerator(), cfg)
}

func supplierPrincipal() model.Principal {
	return model.Principal{UserID: uuid.New(), Name: "Mill Co", BusinessType: model.RoleSupplier}
}

func baseCreateInput(proposals *fakeProposalRepo) CreateContractInput {
	proposalID := proposals.add(model.ProposalKindGeneral, model.ProposalStatusAccepted)
	return CreateContractInput{
		Supplier:     supplierPrincipal(),
		ContractDate: time.Now(),
		ContractType: model.ContractTypeGeneral,
		CustomerID:   uuid.New(),
		ProposalIDs:  []uuid.UUID{proposalID},
		PONumber:     "PO-100",
		SONumber:     "SO-200",
		Specs:        "30s combed cotton",
		ConeWeight:   0.56,
		Rate:         3.25,
		Quantity:     "1000 lbs",
		StartDate:    time.Now(),
		EndDate:      time.Now().AddDate(0, 6, 0),
		Status:       model.ContractStatusRunning,
		CustomerName: "Weave Ltd",
	}
}

func TestCreateBlockBookingRequiresAllocationNumber(t *testing.T) {
	contracts := newFakeContractRepo()
	proposals := newFakeProposalRepo()
	svc := newTestService(contracts, proposals)

	input := baseCreateInput(proposals)
	input.ContractType = model.ContractTypeBlockBooking
	input.ProposalIDs = []uuid.UUID{proposals.add(model.ProposalKindBlockBooking, model.ProposalStatusAccepted)}
	input.AllocationNumber = ""

	_, err := svc.Create(context.Background(), input)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if len(contracts.contracts) != 0 {
		t.Errorf("no contract should be persisted, found %d", len(contracts.contracts))
	}
}

func TestCreateContractNumberFormat(t *testing.T) {
	contracts := newFakeContractRepo()
	proposals := newFakeProposalRepo()
	svc := newTestService(contracts, proposals)

	contract, err := svc.Create(context.Background(), baseCreateInput(proposals))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	pattern := fmt.Sprintf(`^Textilia-%s/%d$`, regexp.QuoteMeta(contract.ID.String()), time.Now().Year())
	if !regexp.MustCompile(pattern).MatchString(contract.ContractNumber) {
		t.Errorf("contract number %q does not match %q", contract.ContractNumber, pattern)
	}
	if contract.ContractStatus != model.PipelineSentReceived {
		t.Errorf("expected initial pipeline %q, got %q", model.PipelineSentReceived, contract.ContractStatus)
	}

	saved, err := contracts.GetContract(context.Background(), contract.ID)
	if err != nil {
		t.Fatalf("contract not persisted: %v", err)
	}
	if saved.ContractNumber != contract.ContractNumber {
		t.Errorf("persisted number %q differs from returned %q", saved.ContractNumber, contract.ContractNumber)
	}
}

func TestCreateMarksProposalsSent(t *testing.T) {
	contracts := newFakeContractRepo()
	proposals := newFakeProposalRepo()
	svc := newTestService(contracts, proposals)

	input := baseCreateInput(proposals)
	extra := proposals.add(model.ProposalKindGeneral, model.ProposalStatusAccepted)
	input.ProposalIDs = append(input.ProposalIDs, extra)

	if _, err := svc.Create(context.Background(), input); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	for _, id := range input.ProposalIDs {
		if got := proposals.status(model.ProposalKindGeneral, id); got != model.ProposalStatusSent {
			t.Errorf("proposal %s status = %q, want %q", id, got, model.ProposalStatusSent)
		}
	}
}

func TestCreateRejectsUnknownProposalReference(t *testing.T) {
	contracts := newFakeContractRepo()
	proposals := newFakeProposalRepo()
	svc := newTestService(contracts, proposals)

	input := baseCreateInput(proposals)
	input.ProposalIDs = append(input.ProposalIDs, uuid.New())

	_, err := svc.Create(context.Background(), input)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if len(contracts.contracts) != 0 {
		t.Errorf("no contract should be persisted")
	}
}

func seedContract(contracts *fakeContractRepo, proposals *fakeProposalRepo, kind model.ProposalKind) *model.Contract {
	proposalID := proposals.add(kind, model.ProposalStatusSent)
	contract := &model.Contract{
		ID:             uuid.New(),
		ContractNumber: "Textilia-test/2026",
		SupplierID:     uuid.New(),
		CustomerID:     uuid.New(),
		ContractType:   model.ContractTypeGeneral,
		ProposalIDs:    []uuid.UUID{proposalID},
		ProposalRef:    kind,
		Status:         model.ContractStatusRunning,
		ContractStatus: model.PipelineSentReceived,
	}
	if kind == model.ProposalKindBlockBooking {
		contract.ContractType = model.ContractTypeBlockBooking
	}
	contracts.contracts[contract.ID] = contract
	return contract
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	contracts := newFakeContractRepo()
	proposals := newFakeProposalRepo()
	svc := newTestService(contracts, proposals)
	contract := seedContract(contracts, proposals, model.ProposalKindGeneral)

	err := svc.UpdateStatus(context.Background(), UpdateStatusInput{
		ContractID: contract.ID,
		Status:     "launched",
		Caller:     model.Principal{UserID: contract.SupplierID},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestUpdateStatusRequiresParty(t *testing.T) {
	contracts := newFakeContractRepo()
	proposals := newFakeProposalRepo()
	svc := newTestService(contracts, proposals)
	contract := seedContract(contracts, proposals, model.ProposalKindGeneral)

	err := svc.UpdateStatus(context.Background(), UpdateStatusInput{
		ContractID: contract.ID,
		Status:     "paused",
		Caller:     model.Principal{UserID: uuid.New()},
	})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if got := contracts.contracts[contract.ID].Status; got != model.ContractStatusRunning {
		t.Errorf("status should be unchanged, got %q", got)
	}
}

func TestUpdateStatusIsIdempotent(t *testing.T) {
	contracts := newFakeContractRepo()
	proposals := newFakeProposalRepo()
	svc := newTestService(contracts, proposals)
	contract := seedContract(contracts, proposals, model.ProposalKindGeneral)

	reason := "customer requested a pause"
	input := UpdateStatusInput{
		ContractID: contract.ID,
		Status:     "paused",
		Reason:     &reason,
		Caller:     model.Principal{UserID: contract.CustomerID},
	}

	for i := 0; i < 2; i++ {
		if err := svc.UpdateStatus(context.Background(), input); err != nil {
			t.Fatalf("update %d failed: %v", i+1, err)
		}
	}

	saved := contracts.contracts[contract.ID]
	if saved.Status != model.ContractStatusPaused {
		t.Errorf("status = %q, want %q", saved.Status, model.ContractStatusPaused)
	}
	if saved.Reason == nil || *saved.Reason != reason {
		t.Errorf("reason not stored")
	}
	if got := proposals.status(model.ProposalKindGeneral, contract.ProposalIDs[0]); got != model.ProposalStatusSent {
		t.Errorf("status update must not touch proposals, got %q", got)
	}
}

func TestAcceptPartyMismatchMutatesNothing(t *testing.T) {
	contracts := newFakeContractRepo()
	proposals := newFakeProposalRepo()
	svc := newTestService(contracts, proposals)
	contract := seedContract(contracts, proposals, model.ProposalKindGeneral)

	_, err := svc.Accept(context.Background(), AcceptContractInput{
		ContractID: contract.ID,
		CustomerID: uuid.New(),
		SupplierID: contract.SupplierID,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	if got := contracts.contracts[contract.ID].ContractStatus; got != model.PipelineSentReceived {
		t.Errorf("pipeline mutated to %q", got)
	}
	if got := proposals.status(model.ProposalKindGeneral, contract.ProposalIDs[0]); got != model.ProposalStatusSent {
		t.Errorf("proposal mutated to %q", got)
	}
}

func TestAcceptPropagatesToProposals(t *testing.T) {
	contracts := newFakeContractRepo()
	proposals := newFakeProposalRepo()
	svc := newTestService(contracts, proposals)
	contract := seedContract(contracts, proposals, model.ProposalKindBlockBooking)

	updated, err := svc.Accept(context.Background(), AcceptContractInput{
		ContractID: contract.ID,
		CustomerID: contract.CustomerID,
		SupplierID: contract.SupplierID,
	})
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	if updated.ContractStatus != model.PipelineRunning {
		t.Errorf("returned pipeline = %q, want %q", updated.ContractStatus, model.PipelineRunning)
	}
	if got := contracts.contracts[contract.ID].ContractStatus; got != model.PipelineRunning {
		t.Errorf("stored pipeline = %q, want %q", got, model.PipelineRunning)
	}
	if got := proposals.status(model.ProposalKindBlockBooking, contract.ProposalIDs[0]); got != model.ProposalStatusRunning {
		t.Errorf("proposal status = %q, want %q", got, model.ProposalStatusRunning)
	}
}

func TestAcceptMissingContract(t *testing.T) {
	contracts := newFakeContractRepo()
	proposals := newFakeProposalRepo()
	svc := newTestService(contracts, proposals)

	_, err := svc.Accept(context.Background(), AcceptContractInput{
		ContractID: uuid.New(),
		CustomerID: uuid.New(),
		SupplierID: uuid.New(),
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateMonthlyPlansAppendsPending(t *testing.T) {
	contracts := newFakeContractRepo()
	proposals := newFakeProposalRepo()
	svc := newTestService(contracts, proposals)
	contract := seedContract(contracts, proposals, model.ProposalKindGeneral)

	existing := model.MonthlyPlan{
		ID:         uuid.New(),
		ContractID: contract.ID,
		Date:       time.Now(),
		Quantity:   100,
		Status:     model.PlanStatusAgreed,
	}
	contracts.plans[contract.ID] = []model.MonthlyPlan{existing}

	batch := []ContractPlansInput{{
		ContractID: contract.ID,
		Plans: []PlanEntry{
			{Date: time.Now().AddDate(0, 1, 0), Quantity: 200},
			{Date: time.Now().AddDate(0, 2, 0), Quantity: 300},
		},
	}}
	if err := svc.CreateMonthlyPlans(context.Background(), batch); err != nil {
		t.Fatalf("create monthly plans failed: %v", err)
	}

	plans, err := svc.PlansForContract(context.Background(), contract.ID)
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	if len(plans) != 3 {
		t.Fatalf("expected 3 plans, got %d", len(plans))
	}
	if plans[0].Status != model.PlanStatusAgreed {
		t.Errorf("existing plan status changed to %q", plans[0].Status)
	}
	for _, plan := range plans[1:] {
		if plan.Status != model.PlanStatusPending {
			t.Errorf("new plan status = %q, want %q", plan.Status, model.PlanStatusPending)
		}
	}
}

func TestCreateMonthlyPlansMissingContractShortCircuits(t *testing.T) {
	contracts := newFakeContractRepo()
	proposals := newFakeProposalRepo()
	svc := newTestService(contracts, proposals)
	first := seedContract(contracts, proposals, model.ProposalKindGeneral)
	third := seedContract(contracts, proposals, model.ProposalKindGeneral)

	batch := []ContractPlansInput{
		{ContractID: first.ID, Plans: []PlanEntry{{Date: time.Now(), Quantity: 50}}},
		{ContractID: uuid.New(), Plans: []PlanEntry{{Date: time.Now(), Quantity: 60}}},
		{ContractID: third.ID, Plans: []PlanEntry{{Date: time.Now(), Quantity: 70}}},
	}

	err := svc.CreateMonthlyPlans(context.Background(), batch)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// Contracts before the missing one keep their plans; later ones
	// are never reached.
	if len(contracts.plans[first.ID]) != 1 {
		t.Errorf("first contract should keep its appended plan")
	}
	if len(contracts.plans[third.ID]) != 0 {
		t.Errorf("third contract should not have been processed")
	}
}

func TestPlansForMissingContract(t *testing.T) {
	contracts := newFakeContractRepo()
	proposals := newFakeProposalRepo()
	svc := newTestService(contracts, proposals)

	_, err := svc.PlansForContract(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAttachSODocument(t *testing.T) {
	contracts := newFakeContractRepo()
	proposals := newFakeProposalRepo()
	svc := newTestService(contracts, proposals)
	contract := seedContract(contracts, proposals, model.ProposalKindGeneral)

	updated, err := svc.AttachSODocument(context.Background(), contract.ID, "so-200.pdf", "/uploads/so-200.pdf")
	if err != nil {
		t.Fatalf("attach failed: %v", err)
	}
	if updated.SODocument == nil || updated.SODocument.Name != "so-200.pdf" {
		t.Errorf("so document not recorded: %+v", updated.SODocument)
	}

	_, err = svc.AttachSODocument(context.Background(), uuid.New(), "x", "y")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
