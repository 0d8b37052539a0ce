// Package llm maps unresolved PDF form fields to profile values using
// a hosted model. Each provider is a thin typed wrapper over its HTTP
// API; there is no SDK dependency.
package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"vendorfill/api/models"
)

// requestTimeoutSeconds is deliberately generous: one fill is dominated
// by model latency and can run tens of seconds.
const requestTimeoutSeconds = 60

const systemPrompt = "You fill PDF form fields. Output MUST be a single valid JSON object. Values must be strings."

// synonymTable tells the model which vendor-form phrasings belong to
// which profile key, so it maps fields instead of guessing.
var synonymTable = map[string][]string{
	"companyName":     {"company name", "business name", "vendor name", "dba", "trade name"},
	"legalName":       {"legal name", "legal business name", "name of company"},
	"taxId":           {"tax id", "ein", "tin", "fein", "taxpayer identification number", "federal id"},
	"entityType":      {"entity type", "legal structure", "type of organization", "business type"},
	"addressLine1":    {"street address", "address line 1"},
	"addressLine2":    {"address line 2", "suite", "unit"},
	"city":            {"city"},
	"state":           {"state", "province"},
	"zip":             {"zip", "postal code"},
	"country":         {"country"},
	"phone":           {"phone", "telephone", "contact number"},
	"website":         {"website", "url"},
	"bankAccount":     {"bank account number", "account number"},
	"bankRouting":     {"routing number", "aba number"},
	"accountingEmail": {"email", "accounts payable email", "billing email", "remittance email"},
	"salesEmail":      {"sales email", "representative email", "contact email"},
	"insuranceProvider": {"insurance provider", "insurance carrier"},
	"insurancePolicy":   {"policy number", "insurance policy"},
	"diversityStatus":   {"minority owned", "woman owned", "veteran owned", "diversity certification"},
}

// BuildPrompt assembles the single user prompt: profile data, synonym
// table, the literal unresolved field names, and the output contract.
func BuildPrompt(profile models.Profile, fieldNames []string) (string, error) {
	profileJSON, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal profile: %w", err)
	}
	synonymsJSON, err := json.MarshalIndent(synonymTable, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal synonym table: %w", err)
	}

	return fmt.Sprintf(`Fill this vendor form using ONLY the data below.

Company Data:
%s

Synonyms (profile key -> phrasings seen on vendor forms):
%s

Form fields:
%s

Rules:
- Output ONLY JSON (no markdown, no backticks).
- JSON keys MUST exactly match the field names.
- Values must be strings.
- Never invent data not present in the Company Data.
- If unsure, use "N/A".
`, profileJSON, synonymsJSON, strings.Join(fieldNames, "\n")), nil
}

// MalformedOutputError carries the raw model output for diagnosis when
// it cannot be parsed as the required single JSON object.
type MalformedOutputError struct {
	Raw string
	Err error
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("model output is not a valid field map: %v", e.Err)
}

func (e *MalformedOutputError) Unwrap() error {
	return e.Err
}

// ParseFieldMap parses the model's response strictly: one JSON object,
// string values only. Anything else is a hard failure for the request.
func ParseFieldMap(raw string) (map[string]string, error) {
	values := make(map[string]string)
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, &MalformedOutputError{Raw: raw, Err: err}
	}
	return values, nil
}
