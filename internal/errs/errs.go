// Package errs defines the sentinel error kinds surfaced by mmdbwriter's
// public API, so callers can classify failures with errors.Is.
package errs

import "github.com/pkg/errors"

// Sentinel error kinds. Every configuration, overlap and value error
// returned by the public API wraps exactly one of these via errors.Wrap,
// so callers can test with errors.Is(err, errs.ErrConfiguration) and
// friends. Sink and file I/O errors are wrapped with context only and
// wrap none of these.
var (
	// ErrConfiguration signals an invalid ip_version, a record_size not
	// divisible by 4, or a v6 prefix inserted into a v4 database.
	ErrConfiguration = errors.New("configuration error")

	// ErrOverlap signals a strict-mode insertion that would overwrite
	// existing data or split an existing less-specific prefix.
	ErrOverlap = errors.New("overlap violation")

	// ErrUnsupportedType signals uint128, the data-cache container type,
	// an unknown tag, or a native value with no automatic mapping.
	ErrUnsupportedType = errors.New("unsupported value type")

	// ErrMalformedValue signals a tagged value missing its type or
	// content, or a map/array payload that is not the expected structure.
	ErrMalformedValue = errors.New("malformed tagged value")
)
