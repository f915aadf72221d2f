package parsers

import (
	"fmt"
)

// DealParserConfig configures parsing of the management-fee board export
type DealParserConfig struct {
	NameColumn          string `json:"name_column"`
	FeePercentColumn    string `json:"fee_percent_column"`
	FundingDateColumn   string `json:"funding_date_column"`
	FundedAmountColumn  string `json:"funded_amount_column"`
	ManagementFeeColumn string `json:"management_fee_column"`
	PartnerColumn       string `json:"partner_column"`
	DealTypeColumn      string `json:"deal_type_column"`
	NotesColumn         string `json:"notes_column"`

	HasHeader       bool              `json:"has_header"`
	Delimiter       rune              `json:"delimiter"`
	ColumnAliases   map[string]string `json:"column_aliases"`
	MaxErrors       int               `json:"max_errors"`
	ContinueOnError bool              `json:"continue_on_error"`
}

// DefaultDealParserConfig returns a configuration matching the standard export
func DefaultDealParserConfig() *DealParserConfig {
	return &DealParserConfig{
		NameColumn:          "name",
		FeePercentColumn:    "fee_percent",
		FundingDateColumn:   "funding_date",
		FundedAmountColumn:  "funded_amount",
		ManagementFeeColumn: "management_fee",
		PartnerColumn:       "partner",
		DealTypeColumn:      "deal_type",
		NotesColumn:         "notes",
		HasHeader:           true,
		Delimiter:           ',',
		ColumnAliases: map[string]string{
			"deal":        "name",
			"deal name":   "name",
			"fee %":       "fee_percent",
			"fee percent": "fee_percent",
			"date funded": "funding_date",
			"funded date": "funding_date",
			"amount":      "funded_amount",
			"funded":      "funded_amount",
			"mgmt fee":    "management_fee",
			"fee":         "management_fee",
			"iso":         "partner",
			"lender":      "partner",
			"type":        "deal_type",
			"note":        "notes",
		},
		MaxErrors:       100,
		ContinueOnError: true,
	}
}

// Validate checks the configuration for completeness
func (c *DealParserConfig) Validate() error {
	if c.NameColumn == "" {
		return fmt.Errorf("name column is required")
	}
	if c.FundedAmountColumn == "" {
		return fmt.Errorf("funded amount column is required")
	}
	if c.FundingDateColumn == "" {
		return fmt.Errorf("funding date column is required")
	}
	if c.Delimiter == 0 {
		return fmt.Errorf("delimiter cannot be zero")
	}
	return nil
}

func (c *DealParserConfig) positionalOrder() []string {
	return []string{
		c.NameColumn, c.FeePercentColumn, c.FundingDateColumn, c.FundedAmountColumn,
		c.ManagementFeeColumn, c.PartnerColumn, c.DealTypeColumn, c.NotesColumn,
	}
}

// SubmissionParserConfig configures parsing of the submission board export
type SubmissionParserConfig struct {
	NameColumn          string `json:"name_column"`
	ISOColumn           string `json:"iso_column"`
	RepColumn           string `json:"rep_column"`
	StageColumn         string `json:"stage_column"`
	OfferAmountColumn   string `json:"offer_amount_column"`
	LeadReceivedColumn  string `json:"lead_received_column"`
	LeadSubmittedColumn string `json:"lead_submitted_column"`

	HasHeader       bool              `json:"has_header"`
	Delimiter       rune              `json:"delimiter"`
	ColumnAliases   map[string]string `json:"column_aliases"`
	MaxErrors       int               `json:"max_errors"`
	ContinueOnError bool              `json:"continue_on_error"`
}

// DefaultSubmissionParserConfig returns a configuration matching the standard export
func DefaultSubmissionParserConfig() *SubmissionParserConfig {
	return &SubmissionParserConfig{
		NameColumn:          "name",
		ISOColumn:           "iso",
		RepColumn:           "rep",
		StageColumn:         "stage",
		OfferAmountColumn:   "offer_amount",
		LeadReceivedColumn:  "lead_received",
		LeadSubmittedColumn: "lead_submitted",
		HasHeader:           true,
		Delimiter:           ',',
		ColumnAliases: map[string]string{
			"merchant":       "name",
			"business name":  "name",
			"partner":        "iso",
			"iso name":       "iso",
			"sales rep":      "rep",
			"status":         "stage",
			"offer":          "offer_amount",
			"offer amount":   "offer_amount",
			"received":       "lead_received",
			"date received":  "lead_received",
			"submitted":      "lead_submitted",
			"date submitted": "lead_submitted",
		},
		MaxErrors:       100,
		ContinueOnError: true,
	}
}

// Validate checks the configuration for completeness
func (c *SubmissionParserConfig) Validate() error {
	if c.NameColumn == "" {
		return fmt.Errorf("name column is required")
	}
	if c.LeadSubmittedColumn == "" {
		return fmt.Errorf("lead submitted column is required")
	}
	if c.Delimiter == 0 {
		return fmt.Errorf("delimiter cannot be zero")
	}
	return nil
}

func (c *SubmissionParserConfig) positionalOrder() []string {
	return []string{
		c.NameColumn, c.ISOColumn, c.RepColumn, c.StageColumn,
		c.OfferAmountColumn, c.LeadReceivedColumn, c.LeadSubmittedColumn,
	}
}

// FundingParserConfig configures parsing of the funding ledger export
type FundingParserConfig struct {
	DealNameColumn      string `json:"deal_name_column"`
	FundingDateColumn   string `json:"funding_date_column"`
	FundedAmountColumn  string `json:"funded_amount_column"`
	ManagementFeeColumn string `json:"management_fee_column"`
	PartnerColumn       string `json:"partner_column"`

	HasHeader       bool              `json:"has_header"`
	Delimiter       rune              `json:"delimiter"`
	ColumnAliases   map[string]string `json:"column_aliases"`
	MaxErrors       int               `json:"max_errors"`
	ContinueOnError bool              `json:"continue_on_error"`
}

// DefaultFundingParserConfig returns a configuration matching the standard export
func DefaultFundingParserConfig() *FundingParserConfig {
	return &FundingParserConfig{
		DealNameColumn:      "deal_name",
		FundingDateColumn:   "funding_date",
		FundedAmountColumn:  "funded_amount",
		ManagementFeeColumn: "management_fee",
		PartnerColumn:       "partner",
		HasHeader:           true,
		Delimiter:           ',',
		ColumnAliases: map[string]string{
			"deal":        "deal_name",
			"name":        "deal_name",
			"merchant":    "deal_name",
			"date funded": "funding_date",
			"funded date": "funding_date",
			"amount":      "funded_amount",
			"funded":      "funded_amount",
			"mgmt fee":    "management_fee",
			"fee":         "management_fee",
			"iso":         "partner",
			"lender":      "partner",
		},
		MaxErrors:       100,
		ContinueOnError: true,
	}
}

// Validate checks the configuration for completeness
func (c *FundingParserConfig) Validate() error {
	if c.DealNameColumn == "" {
		return fmt.Errorf("deal name column is required")
	}
	if c.FundedAmountColumn == "" {
		return fmt.Errorf("funded amount column is required")
	}
	if c.Delimiter == 0 {
		return fmt.Errorf("delimiter cannot be zero")
	}
	return nil
}

func (c *FundingParserConfig) positionalOrder() []string {
	return []string{
		c.DealNameColumn, c.FundingDateColumn, c.FundedAmountColumn,
		c.ManagementFeeColumn, c.PartnerColumn,
	}
}
