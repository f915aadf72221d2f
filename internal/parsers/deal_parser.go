package parsers

import (
	"fmt"
	"io"

	"golang-mca-analytics/internal/models"
	"golang-mca-analytics/internal/normalizer"
	apperrors "golang-mca-analytics/pkg/errors"
	"golang-mca-analytics/pkg/logger"
)

// DealParser parses management-fee board exports into validated deals
type DealParser struct {
	config     *DealParserConfig
	normalizer *normalizer.Normalizer
	logger     logger.Logger
}

// DealParseResult holds parsed deals alongside recoverable row errors
type DealParseResult struct {
	Deals     []models.Deal
	Errors    []*apperrors.RowError
	TotalRows int
}

// NewDealParser creates a parser with the given configuration. The normalizer
// is applied to partner names as rows are parsed.
func NewDealParser(config *DealParserConfig, norm *normalizer.Normalizer) (*DealParser, error) {
	if config == nil {
		config = DefaultDealParserConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, apperrors.ConfigurationError(apperrors.CodeInvalidConfig, "deal_parser", config, err)
	}
	if norm == nil {
		return nil, apperrors.ConfigurationError(apperrors.CodeMissingConfig, "deal_parser.normalizer", nil,
			fmt.Errorf("normalizer is required"))
	}

	return &DealParser{
		config:     config,
		normalizer: norm,
		logger:     logger.WithComponent("deal_parser"),
	}, nil
}

// ParseFile parses a CSV file from disk
func (p *DealParser) ParseFile(path string) (*DealParseResult, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return p.Parse(f, path)
}

// Parse reads deals from a CSV stream. Invalid rows are collected as errors
// and skipped; the error limit from the configuration aborts the parse early.
func (p *DealParser) Parse(r io.Reader, sourceName string) (*DealParseResult, error) {
	cm, rows, err := readCSV(r, p.config.Delimiter, p.config.HasHeader, p.config.ColumnAliases, p.config.positionalOrder())
	if err != nil {
		return nil, apperrors.FileError(apperrors.CodeFileCorrupted, sourceName, err)
	}

	required := []string{p.config.NameColumn, p.config.FundingDateColumn, p.config.FundedAmountColumn}
	if p.config.HasHeader {
		if rowErr := requireColumns(cm, sourceName, required); rowErr != nil {
			return nil, rowErr
		}
	}

	collector := apperrors.NewParseErrorCollector(p.config.MaxErrors, p.config.ContinueOnError)
	result := &DealParseResult{TotalRows: len(rows)}

	for _, row := range rows {
		deal, rowErr := p.parseRow(cm, row, sourceName)
		if rowErr != nil {
			if !collector.Add(rowErr) {
				break
			}
			continue
		}
		result.Deals = append(result.Deals, *deal)
	}

	result.Errors = collector.GetErrors()

	p.logger.WithFields(logger.Fields{
		"source": sourceName,
		"rows":   result.TotalRows,
		"parsed": len(result.Deals),
		"errors": len(result.Errors),
	}).Info("Parsed deal export")

	return result, nil
}

func (p *DealParser) parseRow(cm columnMap, row rawRow, file string) (*models.Deal, *apperrors.RowError) {
	name := cm.get(row, p.config.NameColumn)
	if name == "" {
		return nil, apperrors.EmptyValueError(file, row.line, p.config.NameColumn)
	}

	amountRaw := cm.get(row, p.config.FundedAmountColumn)
	amount, err := models.ParseAmount(amountRaw)
	if err != nil {
		return nil, apperrors.InvalidAmountError(file, row.line, p.config.FundedAmountColumn, amountRaw)
	}

	dateRaw := cm.get(row, p.config.FundingDateColumn)
	fundingDate, err := models.ParseDateWithFormats(dateRaw)
	if err != nil {
		return nil, apperrors.InvalidDateError(file, row.line, p.config.FundingDateColumn, dateRaw)
	}

	deal := models.Deal{
		Name:         name,
		FundingDate:  fundingDate,
		FundedAmount: amount,
		RawPartner:   cm.get(row, p.config.PartnerColumn),
		DealType:     cm.get(row, p.config.DealTypeColumn),
		Notes:        cm.get(row, p.config.NotesColumn),
	}
	deal.Partner = p.normalizer.Normalize(deal.RawPartner)

	if feeRaw := cm.get(row, p.config.FeePercentColumn); feeRaw != "" {
		fee, err := models.ParsePercent(feeRaw)
		if err != nil {
			return nil, apperrors.InvalidAmountError(file, row.line, p.config.FeePercentColumn, feeRaw)
		}
		deal.FeePercent = fee
	}

	if mgmtRaw := cm.get(row, p.config.ManagementFeeColumn); mgmtRaw != "" {
		mgmt, err := models.ParseAmount(mgmtRaw)
		if err != nil {
			return nil, apperrors.InvalidAmountError(file, row.line, p.config.ManagementFeeColumn, mgmtRaw)
		}
		deal.ManagementFee = mgmt
	}

	if err := deal.Validate(); err != nil {
		context := &apperrors.ParseContext{File: file, Line: row.line}
		return nil, apperrors.NewRowError(apperrors.CodeInvalidData, context, err.Error(), err)
	}

	return &deal, nil
}
