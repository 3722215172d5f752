// Package report serializes the terminal artifact of a sync run. A report
// is always produced, even when the run halted early: it enumerates what
// succeeded, what failed (with the captured diagnostics), and what was
// skipped.
package report

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/lintbridge/lintbridge/pkg/codacy"
)

type Report struct {
	StandardID    string                   `json:"standard_id,omitempty"`
	Name          string                   `json:"name"`
	Organization  string                   `json:"organization"`
	Provider      string                   `json:"provider"`
	DryRun        bool                     `json:"dry_run,omitempty"`
	PatternsCount int                      `json:"patterns_count"`
	Patterns      []codacy.Pattern         `json:"patterns"`
	Operations    []codacy.OperationResult `json:"operations,omitempty"`
	Warnings      []string                 `json:"warnings,omitempty"`
}

// New builds a report skeleton from a standard spec.
func New(spec codacy.StandardSpec) *Report {
	return &Report{
		Name:          spec.Name,
		Organization:  spec.Organization,
		Provider:      string(spec.Provider),
		PatternsCount: len(spec.Patterns),
		Patterns:      spec.Patterns,
	}
}

// Succeeded reports whether every operation completed.
func (r *Report) Succeeded() bool {
	if r.DryRun {
		return true
	}
	if len(r.Operations) == 0 {
		return false
	}
	for _, op := range r.Operations {
		if op.Status != codacy.StatusOK {
			return false
		}
	}
	return true
}

// DefaultFilename derives the artifact name from the standard name,
// "My Standard" -> my_standard_result.json.
func DefaultFilename(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", "_")) + "_result.json"
}

// WriteFile writes the report as indented JSON.
func (r *Report) WriteFile(path string) error {
	encoded, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(encoded, '\n'), 0644)
}
