package normalizer

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ReferenceData holds the canonical partner vocabulary and known-misspelling
// alias table. It is maintained by operations staff as a YAML file checked in
// next to the exports.
type ReferenceData struct {
	MasterList []string          `yaml:"master_list"`
	Aliases    map[string]string `yaml:"aliases"`
}

// LoadReferenceData reads reference data from a YAML file. A missing file is
// not an error: the built-in defaults apply, so a fresh install works without
// any setup.
func LoadReferenceData(path string) (*ReferenceData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultReferenceData(), nil
		}
		return nil, fmt.Errorf("read reference data: %w", err)
	}

	ref := &ReferenceData{}
	if err := yaml.Unmarshal(data, ref); err != nil {
		return nil, fmt.Errorf("parse reference data: %w", err)
	}

	// File entries extend the defaults rather than replacing them, so the
	// stock alias table keeps working alongside house additions.
	defaults := DefaultReferenceData()
	merged := &ReferenceData{
		MasterList: append(defaults.MasterList, ref.MasterList...),
		Aliases:    make(map[string]string, len(defaults.Aliases)+len(ref.Aliases)),
	}
	for from, to := range defaults.Aliases {
		merged.Aliases[from] = to
	}
	for from, to := range ref.Aliases {
		merged.Aliases[from] = to
	}

	return merged, nil
}

// DefaultReferenceData returns the built-in partner vocabulary and the alias
// table accumulated from misspellings seen in historical exports
func DefaultReferenceData() *ReferenceData {
	return &ReferenceData{
		MasterList: []string{
			"AFN",
			"CAPITAL GURUS",
			"CLEARFUND",
			"EMPIRE FUNDING",
			"FORA FINANCIAL",
			"GLAZER/SAMSON",
			"IN-HOUSE",
			"LENDINI",
			"LIBERTAS",
			"MERIDIAN LEADS",
			"NEWCO CAPITAL",
			"PEARL CAPITAL",
			"RAPID FINANCE",
			"SPARTAN CAPITAL",
			"TVT CAPITAL",
			"VADER MOUNTAIN",
			"WYNWOOD CAPITAL",
		},
		Aliases: map[string]string{
			"CAPTIAL GURUS":      "CAPITAL GURUS",
			"CAPITAL GURU":       "CAPITAL GURUS",
			"CLEAR FUND":         "CLEARFUND",
			"EMPIRE":             "EMPIRE FUNDING",
			"FORA":               "FORA FINANCIAL",
			"GLAZER SAMSON":      "GLAZER/SAMSON",
			"IN HOUSE":           "IN-HOUSE",
			"INHOUSE":            "IN-HOUSE",
			"LIBERTAS FUNDING":   "LIBERTAS",
			"NEWCO":              "NEWCO CAPITAL",
			"PEARL":              "PEARL CAPITAL",
			"RAPID":              "RAPID FINANCE",
			"SPARTAN":            "SPARTAN CAPITAL",
			"TVT":                "TVT CAPITAL",
			"VADER MTN":          "VADER MOUNTAIN",
			"WYNWOOD":            "WYNWOOD CAPITAL",
		},
	}
}
