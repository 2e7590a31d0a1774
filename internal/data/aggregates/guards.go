package aggregates

import "strings"

// RequireRowsAffected converts a conditional write that matched no rows into
// onMiss. Conditional deletes use it so the loser of a race sees a typed
// failure instead of a silent no-op.
func RequireRowsAffected(n int64, onMiss error) error {
	if n > 0 {
		return nil
	}
	return onMiss
}

// RequireNonBlank returns a validation error naming the first blank field.
func RequireNonBlank(fields ...[2]string) error {
	for _, f := range fields {
		if strings.TrimSpace(f[1]) == "" {
			return ValidationError(f[0] + " is required")
		}
	}
	return nil
}
