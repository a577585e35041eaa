package photostat

import "errors"

// These errors represent the categories of failure a run can meet. Per-file errors
// (metadata, read, lapse) never leave the engine; they end up as skip reasons in the
// Report. Only ErrAborted and ErrConfigValidation are returned to callers.
var (
	// ErrNoMetadata indicates the file carries no decodable EXIF block.
	ErrNoMetadata = errors.New("no metadata found")

	// ErrIncompleteMetadata indicates an EXIF block lacking at least one tracked field,
	// or carrying one with a value of an unusable type.
	ErrIncompleteMetadata = errors.New("incomplete metadata")

	// ErrReadFailed indicates the file could not be opened or read.
	ErrReadFailed = errors.New("failed to read file")

	// ErrTaskLapsed indicates extraction for a single file exceeded the per-task timeout.
	ErrTaskLapsed = errors.New("task lapsed")

	// ErrAborted indicates the run was interrupted before completion. No table is
	// produced for an aborted run.
	ErrAborted = errors.New("run aborted by user")

	// ErrConfigValidation indicates that the provided Options failed validation.
	ErrConfigValidation = errors.New("invalid configuration options provided")

	// ErrMalformedValue indicates a stored value that cannot be parsed by its field's
	// ordering rule. Such values are left out of the distribution.
	ErrMalformedValue = errors.New("malformed field value")
)
