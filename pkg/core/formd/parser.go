package formd

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"formdwatch/pkg/core/edgar"
)

var (
	// Default namespace declarations are stripped so unqualified element
	// matching works whether or not the document declares one.
	xmlnsPattern = regexp.MustCompile(`xmlns="[^"]+"`)

	// Everything except digits and the decimal point is dropped before
	// numeric conversion ("$1,234,567.00" -> "1234567.00").
	nonNumeric = regexp.MustCompile(`[^\d.]`)
)

// Two document layouts exist in the archive: the current one nests the
// offering sections under <offeringData>, older submissions place them at
// the root. Both are decoded and the populated one wins.
type formDDocument struct {
	IssuerName    string        `xml:"issuerName"` // legacy layout
	PrimaryIssuer primaryIssuer `xml:"primaryIssuer"`

	OfferingData offeringSections `xml:"offeringData"`

	RootSales      salesAmounts      `xml:"offeringSalesAmounts"`
	RootIndustry   industryGroup     `xml:"industryGroup"`
	RootSecurities securitiesOffered `xml:"typesOfSecuritiesOffered"`
	RootFirstSale  valueElement      `xml:"dateOfFirstSale"`
}

type offeringSections struct {
	Sales      salesAmounts      `xml:"offeringSalesAmounts"`
	Industry   industryGroup     `xml:"industryGroup"`
	Securities securitiesOffered `xml:"typesOfSecuritiesOffered"`
	FirstSale  valueElement      `xml:"dateOfFirstSale"`
}

type primaryIssuer struct {
	EntityName        string       `xml:"entityName"`
	EntityType        string       `xml:"entityType"`
	JurisdictionOfInc string       `xml:"jurisdictionOfInc"`
	YearOfInc         valueElement `xml:"yearOfInc"`
	IssuerAddress     struct {
		Street1        string `xml:"street1"`
		City           string `xml:"city"`
		StateOrCountry string `xml:"stateOrCountry"`
		ZipCode        string `xml:"zipCode"`
	} `xml:"issuerAddress"`
	IssuerPhoneNumber string `xml:"issuerPhoneNumber"`
}

type salesAmounts struct {
	TotalOfferingAmount          string `xml:"totalOfferingAmount"`
	TotalAmountSold              string `xml:"totalAmountSold"`
	TotalRemaining               string `xml:"totalRemaining"`
	IndefiniteSecuritiesIncluded string `xml:"indefiniteSecuritiesIncluded"`
}

type industryGroup struct {
	IndustryGroupType  string `xml:"industryGroupType"`
	InvestmentFundInfo struct {
		InvestmentFundType string `xml:"investmentFundType"`
	} `xml:"investmentFundInfo"`
}

type securitiesOffered struct {
	IsEquityType string `xml:"isEquityType"`
	IsDebtType   string `xml:"isDebtType"`
}

type valueElement struct {
	Value string `xml:"value"`
}

func (s salesAmounts) empty() bool {
	return s == salesAmounts{}
}

func (g industryGroup) empty() bool {
	return g == industryGroup{}
}

func (s securitiesOffered) empty() bool {
	return s == securitiesOffered{}
}

// sections merges the two layouts: each offering section is taken from the
// offeringData wrapper when populated, from the document root otherwise.
func (d formDDocument) sections() offeringSections {
	out := d.OfferingData
	if out.Sales.empty() {
		out.Sales = d.RootSales
	}
	if out.Industry.empty() {
		out.Industry = d.RootIndustry
	}
	if out.Securities.empty() {
		out.Securities = d.RootSecurities
	}
	if out.FirstSale.Value == "" {
		out.FirstSale = d.RootFirstSale
	}
	return out
}

// Parser turns raw Form D XML into OfferingRecords.
type Parser struct{}

// NewParser creates a Form D parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse extracts an OfferingRecord from raw XML. Missing fields fall back to
// the originating FilingReference where one exists; a document that is not
// well-formed XML returns an error wrapping ErrMalformed.
func (p *Parser) Parse(xmlText string, ref edgar.FilingReference) (*OfferingRecord, error) {
	cleaned := xmlnsPattern.ReplaceAllString(xmlText, "")

	var doc formDDocument
	if err := xml.Unmarshal([]byte(cleaned), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	sections := doc.sections()

	// Issuer name: current path, then legacy path, then the discovery
	// record's company name.
	name := strings.TrimSpace(doc.PrimaryIssuer.EntityName)
	if name == "" {
		name = strings.TrimSpace(doc.IssuerName)
	}
	if name == "" {
		name = ref.CompanyName
	}

	totalOffering := parseAmount(sections.Sales.TotalOfferingAmount)
	if totalOffering == 0 && parseBool(sections.Sales.IndefiniteSecuritiesIncluded) {
		totalOffering = IndefiniteOffering
	}

	dateFiled := ""
	if !ref.DateFiled.IsZero() {
		dateFiled = ref.DateFiled.Format("2006-01-02")
	}

	record := &OfferingRecord{
		CompanyName:         name,
		CIK:                 ref.CIK,
		EntityType:          strings.TrimSpace(doc.PrimaryIssuer.EntityType),
		Jurisdiction:        strings.TrimSpace(doc.PrimaryIssuer.JurisdictionOfInc),
		YearOfIncorporation: strings.TrimSpace(doc.PrimaryIssuer.YearOfInc.Value),

		Street: strings.TrimSpace(doc.PrimaryIssuer.IssuerAddress.Street1),
		City:   strings.TrimSpace(doc.PrimaryIssuer.IssuerAddress.City),
		State:  strings.TrimSpace(doc.PrimaryIssuer.IssuerAddress.StateOrCountry),
		Zip:    strings.TrimSpace(doc.PrimaryIssuer.IssuerAddress.ZipCode),
		Phone:  strings.TrimSpace(doc.PrimaryIssuer.IssuerPhoneNumber),

		TotalOfferingAmount: totalOffering,
		TotalAmountSold:     parseAmount(sections.Sales.TotalAmountSold),
		TotalRemaining:      parseAmount(sections.Sales.TotalRemaining),
		IsIndefinite:        totalOffering == IndefiniteOffering,

		IndustryGroup:      strings.TrimSpace(sections.Industry.IndustryGroupType),
		InvestmentFundType: strings.TrimSpace(sections.Industry.InvestmentFundInfo.InvestmentFundType),

		IsEquity: parseBool(sections.Securities.IsEquityType),
		IsDebt:   parseBool(sections.Securities.IsDebtType),

		DateOfFirstSale: strings.TrimSpace(sections.FirstSale.Value),
		DateFiled:       dateFiled,

		FormType:        ref.FormType,
		AccessionNumber: ref.AccessionNumber,

		PulledAt: time.Now().UTC(),
		Source:   Source,
	}

	return record, nil
}

// parseAmount converts free-form dollar text to an integer amount. Anything
// unconvertible yields 0, never an error.
func parseAmount(text string) int64 {
	clean := nonNumeric.ReplaceAllString(strings.TrimSpace(text), "")
	if clean == "" {
		return 0
	}
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0
	}
	return int64(f)
}

// parseBool treats "true", "yes" and "1" (case-insensitive) as true.
func parseBool(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "true", "yes", "1":
		return true
	}
	return false
}
