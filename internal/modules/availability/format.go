package availability

import (
	"fmt"
	"strings"

	"carrental/internal/pkg/apperror"
)

const dateLayout = "2006-01-02 15:04"

// FormatConflicts renders a conflict list as one message for operators.
func FormatConflicts(conflicts []Conflict) string {
	if len(conflicts) == 0 {
		return "vehicle is available"
	}

	parts := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		end := "open-ended"
		if c.End != nil {
			end = c.End.UTC().Format(dateLayout)
		}
		label := c.Label
		if label == "" {
			label = fmt.Sprintf("%s #%d", c.Kind, c.SourceID)
		}
		parts = append(parts, fmt.Sprintf("%s [%s, %s) %s", label, c.Start.UTC().Format(dateLayout), end, c.Status))
	}
	return "vehicle is not available: " + strings.Join(parts, "; ")
}

// ConflictError is the business error returned by lifecycle transitions.
func ConflictError(conflicts []Conflict) error {
	return apperror.Conflict(FormatConflicts(conflicts)).WithDetails(map[string]any{
		"conflicts": conflicts,
	})
}
