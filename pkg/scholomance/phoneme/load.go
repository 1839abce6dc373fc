package phoneme

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadV2 reads a vowel-family dictionary (phoneme_dictionary_v2.json).
func LoadV2(path string) (*V2Dict, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var dict V2Dict
	if err := json.Unmarshal(data, &dict); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &dict, nil
}

// LoadCMU reads the compact CMU dictionary (cmudict.min.json).
func LoadCMU(path string) (map[string]CMUEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var dict map[string]CMUEntry
	if err := json.Unmarshal(data, &dict); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return dict, nil
}

// LoadCodaGroups reads consonant-equivalence groups from YAML.
//
// Expected format:
//
//	coda_groups:
//	  sibilant: [ST, SK, SP]
//	  nasal: [M, N, NG]
func LoadCodaGroups(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc struct {
		CodaGroups map[string][]string `yaml:"coda_groups"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc.CodaGroups, nil
}
