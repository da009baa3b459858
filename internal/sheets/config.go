package sheets

import (
	"errors"
	"net/http"

	"google.golang.org/api/googleapi"
)

var rateLimitReasons = map[string]bool{
	"rateLimitExceeded":     true,
	"userRateLimitExceeded": true,
	"quotaExceeded":         true,
}

// IsRetryable reports whether a Sheets or Drive error is worth retrying:
// rate limits and server errors are, other API errors are not. Errors that
// never reached the API (network failures) are retried.
func IsRetryable(err error) bool {
	var gErr *googleapi.Error
	if !errors.As(err, &gErr) {
		return true
	}
	switch {
	case gErr.Code == http.StatusTooManyRequests:
		return true
	case gErr.Code >= 500:
		return true
	case gErr.Code == http.StatusForbidden:
		for _, item := range gErr.Errors {
			if rateLimitReasons[item.Reason] {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// ColumnName converts a 1-based column index to its A1 letters.
func ColumnName(col int) string {
	name := ""
	for col > 0 {
		col--
		name = string(rune('A'+col%26)) + name
		col /= 26
	}
	return name
}

// quoteTitle quotes a worksheet title for use in an A1 range.
func quoteTitle(title string) string {
	quoted := make([]rune, 0, len(title)+2)
	quoted = append(quoted, '\'')
	for _, r := range title {
		if r == '\'' {
			quoted = append(quoted, '\'')
		}
		quoted = append(quoted, r)
	}
	return string(append(quoted, '\''))
}
