// Package model defines the investigation report assembled by the scanner
// and scored by the risk engine.
package model

import (
	"encoding/json"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sells-group/phoenix-cli/pkg/companieshouse"
)

// FoundBy tags which registry search produced a similar-company hit.
type FoundBy string

const (
	FoundByName    FoundBy = "name"
	FoundByAddress FoundBy = "address"
)

// Severity grades an indicator.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// RiskLevel is the tier derived from the risk score.
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "LOW"
	RiskLevelMedium   RiskLevel = "MEDIUM"
	RiskLevelHigh     RiskLevel = "HIGH"
	RiskLevelCritical RiskLevel = "CRITICAL"
)

// LinkedCompany is a company discovered via an officer name search.
type LinkedCompany struct {
	CompanyNumber  string `json:"company_number" yaml:"company_number"`
	Title          string `json:"title" yaml:"title"`
	Status         string `json:"status" yaml:"status"`
	DateOfCreation string `json:"date_of_creation,omitempty" yaml:"date_of_creation,omitempty"`
}

// Officer summarizes a director and the companies linked to their name.
// The counters are derived once during collection and never mutated after.
type Officer struct {
	Name             string          `json:"name" yaml:"name"`
	Role             string          `json:"role,omitempty" yaml:"role,omitempty"`
	AppointedOn      string          `json:"appointed_on,omitempty" yaml:"appointed_on,omitempty"`
	ResignedOn       string          `json:"resigned_on,omitempty" yaml:"resigned_on,omitempty"`
	LinkedCompanies  []LinkedCompany `json:"linked_companies" yaml:"linked_companies"`
	DissolvedLinks   int             `json:"dissolved_links" yaml:"dissolved_links"`
	LiquidationLinks int             `json:"liquidation_links" yaml:"liquidation_links"`
	RecentFormations int             `json:"recent_formations" yaml:"recent_formations"`
}

// SimilarCompany is a registry search hit considered for recycling patterns.
type SimilarCompany struct {
	Title           string  `json:"title" yaml:"title"`
	CompanyNumber   string  `json:"company_number" yaml:"company_number"`
	CompanyStatus   string  `json:"company_status,omitempty" yaml:"company_status,omitempty"`
	DateOfCreation  string  `json:"date_of_creation,omitempty" yaml:"date_of_creation,omitempty"`
	DateOfCessation string  `json:"date_of_cessation,omitempty" yaml:"date_of_cessation,omitempty"`
	AddressSnippet  string  `json:"address_snippet,omitempty" yaml:"address_snippet,omitempty"`
	FoundBy         FoundBy `json:"found_by" yaml:"found_by"`
}

// Indicator is a single triggered risk rule.
type Indicator struct {
	Type        string   `json:"type" yaml:"type"`
	Severity    Severity `json:"severity" yaml:"severity"`
	Description string   `json:"description" yaml:"description"`
}

// RiskAssessment is the scoring output for a report.
type RiskAssessment struct {
	RiskScore         int         `json:"risk_score" yaml:"risk_score"`
	RiskLevel         RiskLevel   `json:"risk_level" yaml:"risk_level"`
	IsPhoenix         bool        `json:"is_phoenix" yaml:"is_phoenix"`
	PhoenixConfidence int         `json:"phoenix_confidence" yaml:"phoenix_confidence"`
	PhoenixReasons    []string    `json:"phoenix_reasons" yaml:"phoenix_reasons"`
	Indicators        []Indicator `json:"indicators" yaml:"indicators"`
}

// Report is the full investigation bundle for a single scan.
type Report struct {
	ScanID           string                     `json:"scan_id" yaml:"scan_id"`
	ScannedAt        time.Time                  `json:"scanned_at" yaml:"scanned_at"`
	Company          companieshouse.Company     `json:"company" yaml:"company"`
	Officers         []Officer                  `json:"officers" yaml:"officers"`
	FilingHistory    []companieshouse.Filing    `json:"filing_history" yaml:"filing_history"`
	PSC              []companieshouse.PSC       `json:"psc" yaml:"psc"`
	Charges          []companieshouse.Charge    `json:"charges" yaml:"charges"`
	Insolvency       *companieshouse.Insolvency `json:"insolvency,omitempty" yaml:"insolvency,omitempty"`
	SimilarCompanies []SimilarCompany           `json:"similar_companies" yaml:"similar_companies"`
	Flags            FlagSet                    `json:"flags" yaml:"flags"`
	Assessment       RiskAssessment             `json:"assessment" yaml:"assessment"`
}

// FlagSet is an insertion-ordered set of distinct flag strings. Duplicate
// adds are ignored, so collection-time flags never repeat in output.
type FlagSet struct {
	seen  map[string]struct{}
	flags []string
}

// Add inserts a flag unless an identical one was already recorded.
func (s *FlagSet) Add(flag string) {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, ok := s.seen[flag]; ok {
		return
	}
	s.seen[flag] = struct{}{}
	s.flags = append(s.flags, flag)
}

// All returns the flags in insertion order.
func (s *FlagSet) All() []string {
	return s.flags
}

// Len returns the number of distinct flags.
func (s *FlagSet) Len() int {
	return len(s.flags)
}

// MarshalJSON renders the set as a JSON array.
func (s FlagSet) MarshalJSON() ([]byte, error) {
	if s.flags == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.flags)
}

// UnmarshalJSON rebuilds the set from a JSON array.
func (s *FlagSet) UnmarshalJSON(data []byte) error {
	var flags []string
	if err := json.Unmarshal(data, &flags); err != nil {
		return err
	}
	*s = FlagSet{}
	for _, f := range flags {
		s.Add(f)
	}
	return nil
}

// MarshalYAML renders the set as a YAML sequence.
func (s FlagSet) MarshalYAML() (any, error) {
	if s.flags == nil {
		return []string{}, nil
	}
	return s.flags, nil
}

// UnmarshalYAML rebuilds the set from a YAML sequence.
func (s *FlagSet) UnmarshalYAML(value *yaml.Node) error {
	var flags []string
	if err := value.Decode(&flags); err != nil {
		return err
	}
	*s = FlagSet{}
	for _, f := range flags {
		s.Add(f)
	}
	return nil
}
