package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		business_type VARCHAR(32) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS inquiries (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		subject VARCHAR(255) NOT NULL,
		details TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS general_proposals (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		inquiry_id UUID REFERENCES inquiries(id),
		status VARCHAR(48) NOT NULL,
		quantity VARCHAR(64),
		rate NUMERIC(18,4),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS block_booking_proposals (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		inquiry_id UUID REFERENCES inquiries(id),
		status VARCHAR(48) NOT NULL,
		quantity VARCHAR(64),
		rate NUMERIC(18,4),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS contracts (
		id UUID PRIMARY KEY,
		contract_number VARCHAR(128) NOT NULL,
		contract_date DATE NOT NULL,
		po_number VARCHAR(64) NOT NULL,
		so_number VARCHAR(64) NOT NULL,
		specs TEXT NOT NULL,
		rate NUMERIC(18,4) NOT NULL,
		cone_weight NUMERIC(18,4) NOT NULL,
		quantity VARCHAR(64) NOT NULL,
		balance VARCHAR(64),
		start_date DATE NOT NULL,
		end_date DATE NOT NULL,
		status VARCHAR(32) NOT NULL,
		aging VARCHAR(64),
		customer_name VARCHAR(255) NOT NULL,
		customer_id UUID NOT NULL REFERENCES users(id),
		supplier_id UUID NOT NULL REFERENCES users(id),
		contract_type VARCHAR(32) NOT NULL,
		allocation_number VARCHAR(64),
		proposal_ref VARCHAR(32) NOT NULL,
		so_document_name VARCHAR(255),
		so_document_path VARCHAR(512),
		supplier_sign_name VARCHAR(255),
		supplier_signed_at TIMESTAMPTZ,
		supplier_signature_url VARCHAR(512),
		customer_sign_name VARCHAR(255),
		customer_signed_at TIMESTAMPTZ,
		customer_signature_url VARCHAR(512),
		reason TEXT,
		contract_status VARCHAR(32) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_contract_number ON contracts (contract_number);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_supplier_id ON contracts (supplier_id);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_customer_id ON contracts (customer_id);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_status ON contracts (status);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_contract_status ON contracts (contract_status);`,
	`CREATE TABLE IF NOT EXISTS contract_proposals (
		contract_id UUID NOT NULL REFERENCES contracts(id) ON DELETE CASCADE,
		proposal_id UUID NOT NULL,
		position INT NOT NULL,
		PRIMARY KEY (contract_id, proposal_id)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_contract_proposals_contract ON contract_proposals (contract_id, position);`,
	`CREATE TABLE IF NOT EXISTS monthly_plans (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		contract_id UUID NOT NULL REFERENCES contracts(id) ON DELETE CASCADE,
		date DATE NOT NULL,
		quantity NUMERIC(18,4) NOT NULL,
		status VARCHAR(32) NOT NULL DEFAULT 'pending',
		supplier_terms_date DATE,
		supplier_terms_quantity NUMERIC(18,4),
		supplier_terms_remarks TEXT,
		final_agreement_date DATE,
		final_agreement_quantity NUMERIC(18,4),
		position INT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_monthly_plans_contract ON monthly_plans (contract_id, position);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
