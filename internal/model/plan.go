package model

import (
	"time"

	"github.com/google/uuid"
)

type PlanStatus string

const (
	PlanStatusPending  PlanStatus = "pending"
	PlanStatusAgreed   PlanStatus = "agreed"
	PlanStatusRejected PlanStatus = "rejected"
	PlanStatusReplied  PlanStatus = "replied"
	PlanStatusRevised  PlanStatus = "revised"
)

// SupplierTerms is the supplier's counter-offer on a monthly plan.
type SupplierTerms struct {
	Date     *time.Time `json:"date,omitempty"`
	Quantity *float64   `json:"quantity,omitempty"`
	Remarks  string     `json:"remarks,omitempty"`
}

type FinalAgreement struct {
	Date     *time.Time `json:"date,omitempty"`
	Quantity *float64   `json:"quantity,omitempty"`
}

// MonthlyPlan is one delivery commitment embedded in a contract.
type MonthlyPlan struct {
	ID             uuid.UUID      `json:"id"`
	ContractID     uuid.UUID      `json:"contractId"`
	Date           time.Time      `json:"date"`
	Quantity       float64        `json:"quantity"`
	Status         PlanStatus     `json:"status"`
	SupplierTerms  SupplierTerms  `json:"supplierTerms"`
	FinalAgreement FinalAgreement `json:"finalAgreement"`
	Position       int            `json:"-"`
}
