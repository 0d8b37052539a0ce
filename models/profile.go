package models

import "strings"

// Profile is the company identity record a user saves once and reuses
// for every fill. Keys are stable; absent fields stay empty and are
// never fabricated downstream.
type Profile struct {
	CompanyName string `json:"companyName"`
	LegalName   string `json:"legalName"`
	TaxID       string `json:"taxId"`
	EntityType  string `json:"entityType"`

	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city"`
	State        string `json:"state"`
	Zip          string `json:"zip"`
	Country      string `json:"country"`

	Phone   string `json:"phone"`
	Website string `json:"website"`

	BankAccount string `json:"bankAccount"`
	BankRouting string `json:"bankRouting"`

	AccountingEmail   string `json:"accountingEmail"`
	SalesEmail        string `json:"salesEmail"`
	AccountingContact string `json:"accountingContact"`
	SalesContact      string `json:"salesContact"`

	InsuranceProvider string `json:"insuranceProvider"`
	InsurancePolicy   string `json:"insurancePolicy"`

	DiversityStatus string `json:"diversityStatus"`
}

// FullAddress joins the non-empty postal components with ", ".
// Used when a form has a single address field rather than one per line.
func (p Profile) FullAddress() string {
	parts := make([]string, 0, 6)
	for _, s := range []string{p.AddressLine1, p.AddressLine2, p.City, p.State, p.Zip, p.Country} {
		if strings.TrimSpace(s) != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// IsEmpty reports whether no identifying field has been filled in.
func (p Profile) IsEmpty() bool {
	return p.CompanyName == "" && p.LegalName == "" && p.TaxID == ""
}
