package pipeline

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/okulov/fairline/internal/model"
)

// LoadEvidence reads an evidence list from a JSON file (an array of
// Evidence records) and checks the id-uniqueness invariant the aggregator
// depends on.
func LoadEvidence(path string) ([]model.Evidence, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read evidence file: %w", err)
	}

	var evidence []model.Evidence
	if err := json.Unmarshal(raw, &evidence); err != nil {
		return nil, fmt.Errorf("parse evidence file %s: %w", path, err)
	}

	seen := make(map[string]bool, len(evidence))
	for i, ev := range evidence {
		if ev.ID == "" {
			return nil, fmt.Errorf("evidence item %d has no id", i)
		}
		if seen[ev.ID] {
			return nil, fmt.Errorf("duplicate evidence id %q", ev.ID)
		}
		seen[ev.ID] = true
	}

	return evidence, nil
}

// LoadCritique reads critic feedback from a JSON file.
func LoadCritique(path string) (model.Critique, error) {
	var critique model.Critique

	raw, err := os.ReadFile(path)
	if err != nil {
		return critique, fmt.Errorf("read critique file: %w", err)
	}
	if err := json.Unmarshal(raw, &critique); err != nil {
		return critique, fmt.Errorf("parse critique file %s: %w", path, err)
	}

	return critique, nil
}
