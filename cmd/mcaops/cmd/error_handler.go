package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	apperrors "golang-mca-analytics/pkg/errors"
)

// ExitCode maps an error to a process exit code. Categorized errors carry
// their own code; anything else exits 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if analyticsErr, ok := apperrors.AsAnalyticsError(err); ok {
		printErrorDetail(analyticsErr)
		return analyticsErr.GetExitCode()
	}
	return 1
}

// printErrorDetail prints context and suggestions from a categorized error
func printErrorDetail(err *apperrors.AnalyticsError) {
	if len(err.Context) > 0 && viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "\nContext:\n")
		for key, value := range err.Context {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", key, value)
		}
	}

	if err.Suggestion != "" {
		fmt.Fprintf(os.Stderr, "Suggestion: %s\n", err.Suggestion)
	}

	fmt.Fprintf(os.Stderr, "%s\n", categoryHelp(err.Category))
}

func categoryHelp(category apperrors.ErrorCategory) string {
	switch category {
	case apperrors.CategoryFile:
		return `File error help:
- Check if the file exists and is readable
- Verify the file path is correct (use absolute paths if needed)`

	case apperrors.CategoryParse:
		return `Parse error help:
- Verify the CSV file format and structure
- Check for proper column headers and data types
- Amounts may include $ and thousand separators; dates use YYYY-MM-DD or MM/DD/YYYY`

	case apperrors.CategoryValidation:
		return `Validation error help:
- Check that all required fields have values
- Ensure amounts are positive and dates are valid`

	case apperrors.CategoryConfiguration:
		return `Configuration error help:
- Check your command-line flags and arguments
- Verify configuration file syntax if using --config
- Use 'mcaops analyze --help' to see all available options`

	case apperrors.CategoryStorage:
		return `Storage error help:
- Check the audit database path is writable
- Verify no other process holds the database open`

	default:
		return `For more help:
- Use 'mcaops --help' for general help
- Run with --verbose for detailed error information`
	}
}
