package imposition

import "github.com/pkg/errors"

// Sentinel error kinds, matching the error-handling table: each is wrapped
// with context via github.com/pkg/errors before reaching a caller, so
// errors.Cause(err) recovers the kind for HTTP status mapping.
var (
	ErrEncrypted        = errors.New("source PDF is encrypted")
	ErrNoPages           = errors.New("source PDF has zero pages")
	ErrMalformedBox      = errors.New("page is missing a MediaBox")
	ErrTrimExceedsSheet  = errors.New("trim plus bleed exceeds the sheet size")
	ErrZeroNUp           = errors.New("no item fits the printable area")
	ErrAssemblyFailure   = errors.New("low-level PDF assembly failed")
)

// WarningKind tags a non-fatal condition accumulated on an AnalysisResult.
type WarningKind string

const (
	WarnMixedPageSizes WarningKind = "MixedPageSizes"
	WarnNoTrimBox      WarningKind = "NoTrimBox"
)

// Warning is one recoverable condition surfaced to the caller at HTTP 200
// rather than failing the request.
type Warning struct {
	Kind    WarningKind
	Message string
}
