package codacy

import (
	"github.com/lintbridge/lintbridge/internal/utils"
)

// Status is the outcome of one orchestrated operation. Skipped is distinct
// from failed: a skipped operation was never attempted because a step it
// depends on already failed.
type Status string

const (
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// OperationResult records one operation's outcome. The slice returned by
// Execute preserves operation order and always covers every operation,
// whether attempted or not.
type OperationResult struct {
	Operation string `json:"operation"`
	Status    Status `json:"status"`
	Attempts  int    `json:"attempts"`
	Response  string `json:"response,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Execute runs the assembled operations in order. A failed operation never
// aborts the run: its dependents are recorded as skipped and execution
// continues with whatever independent operations remain, so the caller
// always gets a complete per-operation report.
func Execute(c *Client, ops []Operation) (string, []OperationResult) {
	var standardID string
	results := make([]OperationResult, 0, len(ops))

	for _, op := range ops {
		if op.NeedsStandardID && standardID == "" {
			utils.Log.Warnf("Skipping %s: no standard id from earlier steps", op.Kind)
			results = append(results, OperationResult{
				Operation: op.Kind.String(),
				Status:    StatusSkipped,
			})
			continue
		}

		utils.Log.Debugf("Running %s", op.Kind)
		producedID, response, attempts, err := op.run(c, standardID)
		if err != nil {
			utils.Log.Errorf("%s failed after %d attempt(s): %s", op.Kind, attempts, err)
			results = append(results, OperationResult{
				Operation: op.Kind.String(),
				Status:    StatusFailed,
				Attempts:  attempts,
				Error:     err.Error(),
			})
			continue
		}

		if producedID != "" {
			standardID = producedID
		}
		results = append(results, OperationResult{
			Operation: op.Kind.String(),
			Status:    StatusOK,
			Attempts:  attempts,
			Response:  response,
		})
	}

	return standardID, results
}
