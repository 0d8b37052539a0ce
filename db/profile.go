package db

import (
	"context"
	"database/sql"
	"fmt"

	"vendorfill/api/models"
)

// SaveProfile persists the full profile for the user, overwriting every
// field. No normalization happens here; the mapper normalizes at use time.
func SaveProfile(ctx context.Context, userID string, p models.Profile) error {
	query := `
		INSERT INTO user_profiles (
			user_id, company_name, legal_name, tax_id, entity_type,
			address_line1, address_line2, city, state, zip, country,
			phone, website, bank_account, bank_routing,
			accounting_email, sales_email, accounting_contact, sales_contact,
			insurance_provider, insurance_policy, diversity_status, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, now()
		)
		ON CONFLICT (user_id) DO UPDATE SET
			company_name = EXCLUDED.company_name,
			legal_name = EXCLUDED.legal_name,
			tax_id = EXCLUDED.tax_id,
			entity_type = EXCLUDED.entity_type,
			address_line1 = EXCLUDED.address_line1,
			address_line2 = EXCLUDED.address_line2,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			zip = EXCLUDED.zip,
			country = EXCLUDED.country,
			phone = EXCLUDED.phone,
			website = EXCLUDED.website,
			bank_account = EXCLUDED.bank_account,
			bank_routing = EXCLUDED.bank_routing,
			accounting_email = EXCLUDED.accounting_email,
			sales_email = EXCLUDED.sales_email,
			accounting_contact = EXCLUDED.accounting_contact,
			sales_contact = EXCLUDED.sales_contact,
			insurance_provider = EXCLUDED.insurance_provider,
			insurance_policy = EXCLUDED.insurance_policy,
			diversity_status = EXCLUDED.diversity_status,
			updated_at = now()
	`
	_, err := DB.ExecContext(ctx, query,
		userID, p.CompanyName, p.LegalName, p.TaxID, p.EntityType,
		p.AddressLine1, p.AddressLine2, p.City, p.State, p.Zip, p.Country,
		p.Phone, p.Website, p.BankAccount, p.BankRouting,
		p.AccountingEmail, p.SalesEmail, p.AccountingContact, p.SalesContact,
		p.InsuranceProvider, p.InsurancePolicy, p.DiversityStatus,
	)
	if err != nil {
		return fmt.Errorf("error saving profile for user %s: %v", userID, err)
	}
	return nil
}

// GetProfile loads the user's saved profile. A user who has never saved
// one gets the zero value, not an error.
func GetProfile(ctx context.Context, userID string) (models.Profile, error) {
	query := `
		SELECT company_name, legal_name, tax_id, entity_type,
			address_line1, address_line2, city, state, zip, country,
			phone, website, bank_account, bank_routing,
			accounting_email, sales_email, accounting_contact, sales_contact,
			insurance_provider, insurance_policy, diversity_status
		FROM user_profiles
		WHERE user_id = $1
	`
	var p models.Profile
	err := DB.QueryRowContext(ctx, query, userID).Scan(
		&p.CompanyName, &p.LegalName, &p.TaxID, &p.EntityType,
		&p.AddressLine1, &p.AddressLine2, &p.City, &p.State, &p.Zip, &p.Country,
		&p.Phone, &p.Website, &p.BankAccount, &p.BankRouting,
		&p.AccountingEmail, &p.SalesEmail, &p.AccountingContact, &p.SalesContact,
		&p.InsuranceProvider, &p.InsurancePolicy, &p.DiversityStatus,
	)
	if err == sql.ErrNoRows {
		return models.Profile{}, nil
	}
	if err != nil {
		return models.Profile{}, fmt.Errorf("error getting profile for user %s: %v", userID, err)
	}
	return p, nil
}
