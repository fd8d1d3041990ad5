// Package formd resolves a discovered filing to its primary XML document and
// parses it into a normalized offering record.
package formd

import (
	"errors"
	"time"
)

// Source tags every record with its provenance.
const Source = "SEC_EDGAR_FORM_D"

// IndefiniteOffering is the sentinel amount for an offering whose issuer
// declined to state a maximum. Distinct from 0, which means "unknown or not
// disclosed".
const IndefiniteOffering int64 = -1

// Skip reasons for a single filing. Each is recoverable: the filing is
// dropped and the run continues.
var (
	// ErrNotFound: no XML document could be located for the filing.
	ErrNotFound = errors.New("filing document not found")
	// ErrUnreachable: the document exists but could not be fetched.
	ErrUnreachable = errors.New("filing document unreachable")
	// ErrMalformed: the document was fetched but could not be parsed.
	ErrMalformed = errors.New("filing document malformed")
)

// OfferingRecord is the enriched, normalized result of parsing one Form D
// filing. Immutable once built.
type OfferingRecord struct {
	CompanyName         string `json:"company_name"`
	CIK                 string `json:"cik"`
	EntityType          string `json:"entity_type"`
	Jurisdiction        string `json:"jurisdiction"`
	YearOfIncorporation string `json:"year_of_incorporation"`

	Street string `json:"street"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip"`
	Phone  string `json:"phone"`

	// TotalOfferingAmount is IndefiniteOffering (-1) for uncapped
	// offerings, 0 when undisclosed, otherwise the dollar amount.
	TotalOfferingAmount int64 `json:"total_offering_amount"`
	TotalAmountSold     int64 `json:"total_amount_sold"`
	TotalRemaining      int64 `json:"total_remaining"`
	IsIndefinite        bool  `json:"is_indefinite"`

	// InvestmentFundType non-empty implies the issuer is a pooled
	// investment vehicle.
	IndustryGroup      string `json:"industry_group"`
	InvestmentFundType string `json:"investment_fund_type"`

	IsEquity bool `json:"is_equity"`
	IsDebt   bool `json:"is_debt"`

	DateOfFirstSale string `json:"date_of_first_sale"`
	DateFiled       string `json:"date_filed"`

	FormType        string `json:"form_type"`
	AccessionNumber string `json:"accession_number"`

	PulledAt time.Time `json:"pulled_at"`
	Source   string    `json:"source"`
}
