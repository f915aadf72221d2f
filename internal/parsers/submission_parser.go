package parsers

import (
	"fmt"
	"io"
	"time"

	"golang-mca-analytics/internal/models"
	"golang-mca-analytics/internal/normalizer"
	apperrors "golang-mca-analytics/pkg/errors"
	"golang-mca-analytics/pkg/logger"
)

// SubmissionParser parses submission board exports. Derived fields on each
// submission are computed against an explicit reference time so repeated runs
// over the same export produce identical output.
type SubmissionParser struct {
	config     *SubmissionParserConfig
	normalizer *normalizer.Normalizer
	logger     logger.Logger
}

// SubmissionParseResult holds parsed submissions alongside recoverable row errors
type SubmissionParseResult struct {
	Submissions []models.Submission
	Errors      []*apperrors.RowError
	TotalRows   int
}

// NewSubmissionParser creates a parser with the given configuration
func NewSubmissionParser(config *SubmissionParserConfig, norm *normalizer.Normalizer) (*SubmissionParser, error) {
	if config == nil {
		config = DefaultSubmissionParserConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, apperrors.ConfigurationError(apperrors.CodeInvalidConfig, "submission_parser", config, err)
	}
	if norm == nil {
		return nil, apperrors.ConfigurationError(apperrors.CodeMissingConfig, "submission_parser.normalizer", nil,
			fmt.Errorf("normalizer is required"))
	}

	return &SubmissionParser{
		config:     config,
		normalizer: norm,
		logger:     logger.WithComponent("submission_parser"),
	}, nil
}

// ParseFile parses a CSV file from disk
func (p *SubmissionParser) ParseFile(path string, now time.Time) (*SubmissionParseResult, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return p.Parse(f, path, now)
}

// Parse reads submissions from a CSV stream, normalizing ISO names and
// deriving pipeline fields against the supplied reference time.
func (p *SubmissionParser) Parse(r io.Reader, sourceName string, now time.Time) (*SubmissionParseResult, error) {
	cm, rows, err := readCSV(r, p.config.Delimiter, p.config.HasHeader, p.config.ColumnAliases, p.config.positionalOrder())
	if err != nil {
		return nil, apperrors.FileError(apperrors.CodeFileCorrupted, sourceName, err)
	}

	required := []string{p.config.NameColumn, p.config.LeadSubmittedColumn}
	if p.config.HasHeader {
		if rowErr := requireColumns(cm, sourceName, required); rowErr != nil {
			return nil, rowErr
		}
	}

	collector := apperrors.NewParseErrorCollector(p.config.MaxErrors, p.config.ContinueOnError)
	result := &SubmissionParseResult{TotalRows: len(rows)}

	for _, row := range rows {
		sub, rowErr := p.parseRow(cm, row, sourceName, now)
		if rowErr != nil {
			if !collector.Add(rowErr) {
				break
			}
			continue
		}
		result.Submissions = append(result.Submissions, *sub)
	}

	result.Errors = collector.GetErrors()

	p.logger.WithFields(logger.Fields{
		"source": sourceName,
		"rows":   result.TotalRows,
		"parsed": len(result.Submissions),
		"errors": len(result.Errors),
	}).Info("Parsed submission export")

	return result, nil
}

func (p *SubmissionParser) parseRow(cm columnMap, row rawRow, file string, now time.Time) (*models.Submission, *apperrors.RowError) {
	name := cm.get(row, p.config.NameColumn)
	if name == "" {
		return nil, apperrors.EmptyValueError(file, row.line, p.config.NameColumn)
	}

	submittedRaw := cm.get(row, p.config.LeadSubmittedColumn)
	submitted, err := models.ParseDateWithFormats(submittedRaw)
	if err != nil {
		return nil, apperrors.InvalidDateError(file, row.line, p.config.LeadSubmittedColumn, submittedRaw)
	}

	sub := models.Submission{
		Name:          name,
		RawISO:        cm.get(row, p.config.ISOColumn),
		Rep:           cm.get(row, p.config.RepColumn),
		RawStage:      cm.get(row, p.config.StageColumn),
		LeadSubmitted: submitted,
	}
	sub.ISO = p.normalizer.Normalize(sub.RawISO)

	if offerRaw := cm.get(row, p.config.OfferAmountColumn); offerRaw != "" {
		offer, err := models.ParseAmount(offerRaw)
		if err != nil {
			return nil, apperrors.InvalidAmountError(file, row.line, p.config.OfferAmountColumn, offerRaw)
		}
		sub.OfferAmount = offer
	}

	if receivedRaw := cm.get(row, p.config.LeadReceivedColumn); receivedRaw != "" {
		received, err := models.ParseDateWithFormats(receivedRaw)
		if err != nil {
			return nil, apperrors.InvalidDateError(file, row.line, p.config.LeadReceivedColumn, receivedRaw)
		}
		sub.LeadReceived = &received
	}

	if err := sub.Validate(); err != nil {
		context := &apperrors.ParseContext{File: file, Line: row.line}
		return nil, apperrors.NewRowError(apperrors.CodeInvalidData, context, err.Error(), err)
	}

	sub.Derive(now)

	return &sub, nil
}
