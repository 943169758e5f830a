package model

import (
	"time"

	"github.com/google/uuid"
)

type ContractType string

const (
	ContractTypeGeneral      ContractType = "general"
	ContractTypeBlockBooking ContractType = "block-booking"
)

type ContractStatus string

const (
	ContractStatusRunning   ContractStatus = "running"
	ContractStatusCompleted ContractStatus = "completed"
	ContractStatusCancelled ContractStatus = "cancelled"
	ContractStatusClosed    ContractStatus = "closed"
	ContractStatusPaused    ContractStatus = "paused"

	// Transition targets accepted by the status-update operation. The
	// gen_/block_ prefixed values carry the contract type alongside the
	// state so the statistics buckets can tell them apart.
	ContractStatusGenRunning     ContractStatus = "gen_running"
	ContractStatusGenCompleted   ContractStatus = "gen_completed"
	ContractStatusBlockRunning   ContractStatus = "block_running"
	ContractStatusBlockCompleted ContractStatus = "block_completed"
)

// PipelineStatus is the coarse lifecycle field, distinct from Status.
// The two are mutated at independent points and are never reconciled.
type PipelineStatus string

const (
	PipelineSentReceived PipelineStatus = "contract_sent_rcvd"
	PipelineRunning      PipelineStatus = "running"
	PipelineDelivered    PipelineStatus = "dlvrd"
)

type SODocument struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

type Signature struct {
	Name         string     `json:"name"`
	SignedAt     *time.Time `json:"signedAt,omitempty"`
	SignatureURL string     `json:"signatureUrl,omitempty"`
}

type ESignatures struct {
	Supplier Signature `json:"supplier"`
	Customer Signature `json:"customer"`
}

type Contract struct {
	ID               uuid.UUID      `json:"id"`
	ContractNumber   string         `json:"contractNumber"`
	ContractDate     time.Time      `json:"contractDate"`
	PONumber         string         `json:"poNumber"`
	SONumber         string         `json:"soNumber"`
	Specs            string         `json:"specs"`
	Rate             float64        `json:"rate"`
	ConeWeight       float64        `json:"coneWeight"`
	Quantity         string         `json:"quantity"`
	Balance          string         `json:"balance,omitempty"`
	StartDate        time.Time      `json:"startDate"`
	EndDate          time.Time      `json:"endDate"`
	Status           ContractStatus `json:"status"`
	Aging            string         `json:"aging,omitempty"`
	CustomerName     string         `json:"customerName"`
	CustomerID       uuid.UUID      `json:"customerId"`
	SupplierID       uuid.UUID      `json:"supplierId"`
	ContractType     ContractType   `json:"contractType"`
	AllocationNumber *string        `json:"allocationNumber,omitempty"`
	// ProposalIDs references rows in the proposal table selected by
	// ProposalRef. Ordered as submitted. The original schema called
	// this list "description".
	ProposalIDs    []uuid.UUID    `json:"description"`
	ProposalRef    ProposalKind   `json:"proposalRef"`
	SODocument     *SODocument    `json:"soDocument,omitempty"`
	MonthlyPlans   []MonthlyPlan  `json:"monthlyPlans,omitempty"`
	ESignatures    ESignatures    `json:"eSignatures"`
	Reason         *string        `json:"reason,omitempty"`
	ContractStatus PipelineStatus `json:"contractStatus"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

type PartyRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ContractView is a contract populated for read endpoints: party names
// resolved and proposal references expanded with their inquiries.
type ContractView struct {
	Contract
	Supplier  PartyRef       `json:"supplier"`
	Customer  PartyRef       `json:"customer"`
	Proposals []ProposalView `json:"proposals"`
}

// ContractDocument bundles what the printable summary needs.
type ContractDocument struct {
	Contract     Contract
	SupplierName string
	CustomerName string
}
