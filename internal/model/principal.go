package model

import "github.com/google/uuid"

const (
	RoleSupplier = "supplier"
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// Principal is the authenticated caller, extracted from the access token.
type Principal struct {
	UserID       uuid.UUID
	Name         string
	BusinessType string
}

func (p Principal) IsSupplier() bool { return p.BusinessType == RoleSupplier }
func (p Principal) IsCustomer() bool { return p.BusinessType == RoleCustomer }
func (p Principal) IsAdmin() bool    { return p.BusinessType == RoleAdmin }
