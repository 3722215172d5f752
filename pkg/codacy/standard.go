package codacy

import (
	"fmt"
)

// Provider is a git provider as the Codacy API spells it.
type Provider string

const (
	ProviderGitHub    Provider = "gh"
	ProviderGitLab    Provider = "gl"
	ProviderBitbucket Provider = "bb"
)

// ParseProvider validates a provider flag value.
func ParseProvider(s string) (Provider, error) {
	switch Provider(s) {
	case ProviderGitHub, ProviderGitLab, ProviderBitbucket:
		return Provider(s), nil
	}
	return "", fmt.Errorf("provider must be one of: gh, gl, bb (got %q)", s)
}

// StandardSpec is the coding standard to materialize: metadata plus the
// mapped pattern set. Immutable once assembled.
type StandardSpec struct {
	Name         string    `json:"name"`
	Organization string    `json:"organization"`
	Provider     Provider  `json:"provider"`
	Languages    []string  `json:"languages"`
	Patterns     []Pattern `json:"patterns"`
}

// OperationKind enumerates the orchestrated API steps.
type OperationKind int

const (
	OpCreateStandard OperationKind = iota
	OpDisableTools
	OpConfigurePatterns
	OpPromote
)

func (k OperationKind) String() string {
	switch k {
	case OpCreateStandard:
		return "create"
	case OpDisableTools:
		return "disable_tools"
	case OpConfigurePatterns:
		return "configure_patterns"
	case OpPromote:
		return "promote"
	}
	return fmt.Sprintf("operation(%d)", int(k))
}

// Operation is one orchestrated step. Dependencies on earlier steps are
// declared, not implied: an operation that needs the standard id says so,
// and the assembler refuses operation lists where that contract can't hold.
type Operation struct {
	Kind               OperationKind
	ProducesStandardID bool
	NeedsStandardID    bool

	run func(c *Client, standardID string) (producedID, response string, attempts int, err error)
}

// BuildOperations assembles the ordered operation list for a standard:
// create it, disable every tool except ESLint, configure the ESLint tool
// with the full pattern set in one call, then promote. The dependency
// contract is checked here, at assembly time, so a mis-ordered list fails
// before any network traffic happens.
func BuildOperations(spec StandardSpec) ([]Operation, error) {
	ops := []Operation{
		{
			Kind:               OpCreateStandard,
			ProducesStandardID: true,
			run: func(c *Client, _ string) (string, string, int, error) {
				id, resp, attempts, err := c.CreateStandard(spec.Name, spec.Languages)
				if err != nil {
					return "", "", attempts, err
				}
				return id, resp.Body, attempts, nil
			},
		},
		{
			Kind:            OpDisableTools,
			NeedsStandardID: true,
			run:             disableOtherTools,
		},
		{
			Kind:            OpConfigurePatterns,
			NeedsStandardID: true,
			run: func(c *Client, standardID string) (string, string, int, error) {
				resp, attempts, err := c.UpdateTool(standardID, ESLintToolUUID, true, spec.Patterns)
				if err != nil {
					return "", "", attempts, err
				}
				return "", resp.Body, attempts, nil
			},
		},
		{
			Kind:            OpPromote,
			NeedsStandardID: true,
			run: func(c *Client, standardID string) (string, string, int, error) {
				resp, attempts, err := c.PromoteStandard(standardID)
				if err != nil {
					return "", "", attempts, err
				}
				return "", resp.Body, attempts, nil
			},
		},
	}
	if err := checkOperationContract(ops); err != nil {
		return nil, err
	}
	return ops, nil
}

// disableOtherTools turns off every tool on the standard except ESLint.
// One list call plus one patch per tool; the reported attempt count is the
// one of the request that decided the outcome.
func disableOtherTools(c *Client, standardID string) (string, string, int, error) {
	tools, attempts, err := c.ListTools(standardID)
	if err != nil {
		return "", "", attempts, fmt.Errorf("listing tools: %w", err)
	}

	disabled := 0
	for _, tool := range tools {
		if tool.UUID == ESLintToolUUID {
			continue
		}
		_, attempts, err = c.UpdateTool(standardID, tool.UUID, false, nil)
		if err != nil {
			return "", "", attempts, fmt.Errorf("disabling tool %s: %w", tool.UUID, err)
		}
		disabled++
	}

	return "", fmt.Sprintf(`{"disabledTools":%d}`, disabled), attempts, nil
}

// checkOperationContract verifies that every operation needing the standard
// id is preceded by one that produces it.
func checkOperationContract(ops []Operation) error {
	produced := false
	for i, op := range ops {
		if op.NeedsStandardID && !produced {
			return fmt.Errorf("operation %d (%s) requires a standard id but no earlier operation produces one", i, op.Kind)
		}
		if op.ProducesStandardID {
			produced = true
		}
	}
	return nil
}
