package model

import (
	"time"

	"github.com/google/uuid"
)

// ProposalKind selects which proposal table a contract's references
// resolve against. Resolved once from the contract type at the boundary.
type ProposalKind string

const (
	ProposalKindGeneral      ProposalKind = "general"
	ProposalKindBlockBooking ProposalKind = "block-booking"
)

// KindForContractType maps a contract type to its proposal variant.
func KindForContractType(t ContractType) ProposalKind {
	if t == ContractTypeBlockBooking {
		return ProposalKindBlockBooking
	}
	return ProposalKindGeneral
}

type ProposalStatus string

const (
	ProposalStatusSent      ProposalStatus = "contract_sent"
	ProposalStatusAccepted  ProposalStatus = "contract_accepted"
	ProposalStatusRunning   ProposalStatus = "contract_running"
	ProposalStatusDelivered ProposalStatus = "delivered"
)

type Proposal struct {
	ID        uuid.UUID      `json:"id"`
	InquiryID uuid.UUID      `json:"inquiryId"`
	Status    ProposalStatus `json:"status"`
	Quantity  string         `json:"quantity,omitempty"`
	Rate      float64        `json:"rate,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

type Inquiry struct {
	ID      uuid.UUID `json:"id"`
	Subject string    `json:"subject"`
	Details string    `json:"details,omitempty"`
}

// ProposalView is a proposal with its originating inquiry attached.
type ProposalView struct {
	Proposal
	Inquiry *Inquiry `json:"inquiry,omitempty"`
}
