package parsers

import (
	"fmt"
	"io"

	"golang-mca-analytics/internal/models"
	"golang-mca-analytics/internal/normalizer"
	apperrors "golang-mca-analytics/pkg/errors"
	"golang-mca-analytics/pkg/logger"
)

// FundingParser parses funding ledger exports into validated funding records
type FundingParser struct {
	config     *FundingParserConfig
	normalizer *normalizer.Normalizer
	logger     logger.Logger
}

// FundingParseResult holds parsed records alongside recoverable row errors
type FundingParseResult struct {
	Records   []models.FundingRecord
	Errors    []*apperrors.RowError
	TotalRows int
}

// NewFundingParser creates a parser with the given configuration
func NewFundingParser(config *FundingParserConfig, norm *normalizer.Normalizer) (*FundingParser, error) {
	if config == nil {
		config = DefaultFundingParserConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, apperrors.ConfigurationError(apperrors.CodeInvalidConfig, "funding_parser", config, err)
	}
	if norm == nil {
		return nil, apperrors.ConfigurationError(apperrors.CodeMissingConfig, "funding_parser.normalizer", nil,
			fmt.Errorf("normalizer is required"))
	}

	return &FundingParser{
		config:     config,
		normalizer: norm,
		logger:     logger.WithComponent("funding_parser"),
	}, nil
}

// ParseFile parses a CSV file from disk
func (p *FundingParser) ParseFile(path string) (*FundingParseResult, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return p.Parse(f, path)
}

// Parse reads funding records from a CSV stream
func (p *FundingParser) Parse(r io.Reader, sourceName string) (*FundingParseResult, error) {
	cm, rows, err := readCSV(r, p.config.Delimiter, p.config.HasHeader, p.config.ColumnAliases, p.config.positionalOrder())
	if err != nil {
		return nil, apperrors.FileError(apperrors.CodeFileCorrupted, sourceName, err)
	}

	required := []string{p.config.DealNameColumn, p.config.FundedAmountColumn}
	if p.config.HasHeader {
		if rowErr := requireColumns(cm, sourceName, required); rowErr != nil {
			return nil, rowErr
		}
	}

	collector := apperrors.NewParseErrorCollector(p.config.MaxErrors, p.config.ContinueOnError)
	result := &FundingParseResult{TotalRows: len(rows)}

	for _, row := range rows {
		record, rowErr := p.parseRow(cm, row, sourceName)
		if rowErr != nil {
			if !collector.Add(rowErr) {
				break
			}
			continue
		}
		result.Records = append(result.Records, *record)
	}

	result.Errors = collector.GetErrors()

	p.logger.WithFields(logger.Fields{
		"source": sourceName,
		"rows":   result.TotalRows,
		"parsed": len(result.Records),
		"errors": len(result.Errors),
	}).Info("Parsed funding ledger")

	return result, nil
}

func (p *FundingParser) parseRow(cm columnMap, row rawRow, file string) (*models.FundingRecord, *apperrors.RowError) {
	name := cm.get(row, p.config.DealNameColumn)
	if name == "" {
		return nil, apperrors.EmptyValueError(file, row.line, p.config.DealNameColumn)
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

	record := models.FundingRecord{
		DealName:     name,
		FundingDate:  fundingDate,
		FundedAmount: amount,
		RawPartner:   cm.get(row, p.config.PartnerColumn),
	}
	record.Partner = p.normalizer.Normalize(record.RawPartner)

	if mgmtRaw := cm.get(row, p.config.ManagementFeeColumn); mgmtRaw != "" {
		mgmt, err := models.ParseAmount(mgmtRaw)
		if err != nil {
			return nil, apperrors.InvalidAmountError(file, row.line, p.config.ManagementFeeColumn, mgmtRaw)
		}
		record.ManagementFee = mgmt
	}

	if err := record.Validate(); err != nil {
		context := &apperrors.ParseContext{File: file, Line: row.line}
		return nil, apperrors.NewRowError(apperrors.CodeInvalidData, context, err.Error(), err)
	}

	return &record, nil
}
