package companieshouse

import "strings"

// Company status values as returned by the register.
const (
	StatusActive                = "active"
	StatusDissolved             = "dissolved"
	StatusLiquidation           = "liquidation"
	StatusInsolvencyProceedings = "insolvency-proceedings"
	StatusReceivership          = "receivership"
	StatusAdministration        = "administration"
)

// SuspiciousStatus reports whether a company status signals distress or closure.
func SuspiciousStatus(status string) bool {
	switch status {
	case StatusDissolved, StatusLiquidation, StatusInsolvencyProceedings,
		StatusReceivership, StatusAdministration:
		return true
	}
	return false
}

// Address is a registered office address.
type Address struct {
	AddressLine1 string `json:"address_line_1,omitempty" yaml:"address_line_1,omitempty"`
	AddressLine2 string `json:"address_line_2,omitempty" yaml:"address_line_2,omitempty"`
	Locality     string `json:"locality,omitempty" yaml:"locality,omitempty"`
	Region       string `json:"region,omitempty" yaml:"region,omitempty"`
	PostalCode   string `json:"postal_code,omitempty" yaml:"postal_code,omitempty"`
	Country      string `json:"country,omitempty" yaml:"country,omitempty"`
}

// Company is a company profile.
type Company struct {
	CompanyNumber           string  `json:"company_number" yaml:"company_number"`
	CompanyName             string  `json:"company_name" yaml:"company_name"`
	CompanyStatus           string  `json:"company_status" yaml:"company_status"`
	Type                    string  `json:"type,omitempty" yaml:"type,omitempty"`
	DateOfCreation          string  `json:"date_of_creation,omitempty" yaml:"date_of_creation,omitempty"`
	DateOfCessation         string  `json:"date_of_cessation,omitempty" yaml:"date_of_cessation,omitempty"`
	RegisteredOfficeAddress Address `json:"registered_office_address" yaml:"registered_office_address"`
}

// AddressString joins address line 1, line 2, locality and postal code with
// single spaces, omitting missing components. Used as a registry search query.
func (c *Company) AddressString() string {
	a := c.RegisteredOfficeAddress
	var parts []string
	for _, p := range []string{a.AddressLine1, a.AddressLine2, a.Locality, a.PostalCode} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// OfficerList is the officer list payload.
type OfficerList struct {
	Items []OfficerItem `json:"items" yaml:"items"`
}

// OfficerItem is a single appointment in the officer list.
type OfficerItem struct {
	Name        string `json:"name" yaml:"name"`
	OfficerRole string `json:"officer_role,omitempty" yaml:"officer_role,omitempty"`
	AppointedOn string `json:"appointed_on,omitempty" yaml:"appointed_on,omitempty"`
	ResignedOn  string `json:"resigned_on,omitempty" yaml:"resigned_on,omitempty"`
}

// FilingList is the filing history payload.
type FilingList struct {
	Items []Filing `json:"items" yaml:"items"`
}

// Filing is a single filing history entry.
type Filing struct {
	Date        string `json:"date,omitempty" yaml:"date,omitempty"`
	Type        string `json:"type,omitempty" yaml:"type,omitempty"`
	Category    string `json:"category,omitempty" yaml:"category,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// PSCList is the persons-with-significant-control payload.
type PSCList struct {
	Items []PSC `json:"items" yaml:"items"`
}

// PSC is a person with significant control.
type PSC struct {
	Name             string   `json:"name" yaml:"name"`
	NaturesOfControl []string `json:"natures_of_control,omitempty" yaml:"natures_of_control,omitempty"`
	NotifiedOn       string   `json:"notified_on,omitempty" yaml:"notified_on,omitempty"`
}

// ChargeList is the charges payload.
type ChargeList struct {
	Items []Charge `json:"items" yaml:"items"`
}

// Charge is a registered charge or mortgage.
type Charge struct {
	Status         string               `json:"status,omitempty" yaml:"status,omitempty"`
	CreatedOn      string               `json:"created_on,omitempty" yaml:"created_on,omitempty"`
	Classification ChargeClassification `json:"classification" yaml:"classification"`
}

// ChargeClassification describes the type of a charge.
type ChargeClassification struct {
	Type        string `json:"type,omitempty" yaml:"type,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Insolvency is the insolvency record payload.
type Insolvency struct {
	Cases []InsolvencyCase `json:"cases,omitempty" yaml:"cases,omitempty"`
}

// InsolvencyCase is a single insolvency case.
type InsolvencyCase struct {
	Type   string `json:"type,omitempty" yaml:"type,omitempty"`
	Number string `json:"number,omitempty" yaml:"number,omitempty"`
}

// SearchResult is the company search payload.
type SearchResult struct {
	TotalResults int          `json:"total_results,omitempty" yaml:"total_results,omitempty"`
	Items        []SearchItem `json:"items" yaml:"items"`
}

// SearchItem is a single company search hit.
type SearchItem struct {
	Title           string `json:"title" yaml:"title"`
	CompanyNumber   string `json:"company_number" yaml:"company_number"`
	CompanyStatus   string `json:"company_status,omitempty" yaml:"company_status,omitempty"`
	DateOfCreation  string `json:"date_of_creation,omitempty" yaml:"date_of_creation,omitempty"`
	DateOfCessation string `json:"date_of_cessation,omitempty" yaml:"date_of_cessation,omitempty"`
	AddressSnippet  string `json:"address_snippet,omitempty" yaml:"address_snippet,omitempty"`
}
