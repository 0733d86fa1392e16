package gateway

import (
	"strings"

	"github.com/trezcool/mtihani/core"
)

// Classify maps a path (or intent string) to its OperationClass by substring match,
// in priority order; first match wins. The ordering matters: a path containing both
// "exam" and "api" is an exam submission, not a generic API call.
func Classify(pathOrIntent string) OperationClass {
	p := core.CleanString(pathOrIntent, true /* lower */)
	switch {
	case strings.Contains(p, "login"):
		return OpLogin
	case strings.Contains(p, "register"):
		return OpRegistration
	case strings.Contains(p, "submit"), strings.Contains(p, "exam"):
		return OpExamSubmission
	case strings.Contains(p, "api"):
		return OpGenericAPI
	default:
		return OpOther
	}
}

// IsAdminPath reports whether a path targets the administrative surface.
func IsAdminPath(path string) bool {
	return strings.HasPrefix(path, "/admin")
}
