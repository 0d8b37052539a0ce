// Package mapper computes a complete field-name -> value map for a
// PDF's form fields from a saved company profile: cheap keyword rules
// first, an LLM only for what they miss.
package mapper

import (
	"strings"

	"vendorfill/api/models"
)

// Unresolved is the sentinel for any field no strategy could trace to
// the profile. Values are never invented.
const Unresolved = "N/A"

// Checkbox states produced by the deterministic rules.
const (
	Checked   = "Yes"
	Unchecked = "Off"
)

// Normalize lowercases a field name, replaces punctuation with spaces
// and collapses runs of whitespace, so rule matching sees
// "LEGAL STRUCTURE — LLC" and "legal_structure-llc" identically.
func Normalize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func hasToken(norm, token string) bool {
	for _, t := range strings.Fields(norm) {
		if t == token {
			return true
		}
	}
	return false
}

func containsAny(norm string, subs ...string) bool {
	for _, s := range subs {
		if strings.Contains(norm, s) {
			return true
		}
	}
	return false
}

// entityTokens are legal-structure phrasings seen on vendor forms,
// longest first so "s corporation" wins over "corporation".
var entityTokens = []string{
	"sole proprietorship",
	"sole proprietor",
	"limited liability company",
	"s corporation",
	"c corporation",
	"s corp",
	"c corp",
	"partnership",
	"corporation",
	"nonprofit",
	"non profit",
	"individual",
	"llc",
}

// entityAliases folds equivalent phrasings onto one canonical token.
var entityAliases = map[string]string{
	"limited liability company": "llc",
	"s corporation":             "s corp",
	"c corporation":             "c corp",
	"non profit":                "nonprofit",
	"sole proprietorship":       "sole proprietor",
}

func canonicalEntity(token string) string {
	if alias, ok := entityAliases[token]; ok {
		return alias
	}
	return token
}

// ResolveEntityCheckbox decides a checkbox that names a legal
// structure: checked iff the named structure matches the profile's
// declared entity type. The second return is false when the checkbox
// doesn't name an entity type at all.
func ResolveEntityCheckbox(norm string, entityType string) (string, bool) {
	var fieldEntity string
	for _, token := range entityTokens {
		if strings.Contains(norm, token) {
			fieldEntity = canonicalEntity(token)
			break
		}
	}
	if fieldEntity == "" {
		return "", false
	}

	declared := ""
	normDeclared := Normalize(entityType)
	for _, token := range entityTokens {
		if normDeclared == token || strings.Contains(normDeclared, token) {
			declared = canonicalEntity(token)
			break
		}
	}

	if declared != "" && declared == fieldEntity {
		return Checked, true
	}
	return Unchecked, true
}

// ResolveText applies the ordered keyword rules to a normalized field
// name. First matching rule wins. The second return is false when no
// rule recognizes the field; a true return with an empty value means
// the rule matched but the profile has nothing for it.
func ResolveText(norm string, p models.Profile) (string, bool) {
	switch {
	// Emails first: "email address" must not fall through to the
	// address rules.
	case containsAny(norm, "email", "e mail"):
		if containsAny(norm, "representative", "sales", "contact") {
			return p.SalesEmail, true
		}
		return p.AccountingEmail, true

	case containsAny(norm, "legal name", "legal business name", "name of company", "legal company name"):
		return firstNonEmpty(p.LegalName, p.CompanyName), true

	case containsAny(norm, "dba", "doing business as", "trade name"):
		return firstNonEmpty(p.CompanyName, p.LegalName), true

	case strings.Contains(norm, "company") && strings.Contains(norm, "name"),
		containsAny(norm, "business name", "vendor name", "supplier name"):
		return firstNonEmpty(p.CompanyName, p.LegalName), true

	case containsAny(norm, "tax id", "taxpayer id", "federal id", "federal ein") ||
		hasToken(norm, "ein") || hasToken(norm, "tin") || hasToken(norm, "fein"):
		return p.TaxID, true

	case containsAny(norm, "entity type", "type of entity", "legal structure", "organization type", "business type", "type of organization"):
		return p.EntityType, true

	case containsAny(norm, "website", "web site") || hasToken(norm, "url") || hasToken(norm, "web"):
		return p.Website, true

	case strings.Contains(norm, "fax"):
		return "", true

	case containsAny(norm, "phone", "telephone", "mobile") || hasToken(norm, "tel"):
		return p.Phone, true

	case strings.Contains(norm, "routing") || hasToken(norm, "aba"):
		return p.BankRouting, true

	case containsAny(norm, "account number", "bank account", "account no", "acct"):
		return p.BankAccount, true

	case strings.Contains(norm, "insurance"):
		if strings.Contains(norm, "policy") {
			return p.InsurancePolicy, true
		}
		return p.InsuranceProvider, true

	case containsAny(norm, "policy number", "policy no"):
		return p.InsurancePolicy, true

	case containsAny(norm, "minority", "woman owned", "women owned", "veteran", "diversity", "disadvantaged", "diverse"):
		return p.DiversityStatus, true

	case containsAny(norm, "contact name", "contact person", "representative", "name of contact"):
		if containsAny(norm, "accounting", "accounts payable", "billing", "remit", "payable") {
			return p.AccountingContact, true
		}
		return p.SalesContact, true

	case containsAny(norm, "address line 2", "address 2", "suite", "apt", "unit"):
		return p.AddressLine2, true

	case strings.Contains(norm, "city"):
		return p.City, true

	case containsAny(norm, "state", "province"):
		return p.State, true

	case containsAny(norm, "zip", "postal"):
		return p.Zip, true

	case strings.Contains(norm, "country"):
		return p.Country, true

	case containsAny(norm, "address line 1", "address 1", "street address", "street"):
		return p.AddressLine1, true

	// Generic address field: synthesize the full postal address.
	case strings.Contains(norm, "address"):
		return p.FullAddress(), true
	}

	return "", false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
