package domain

import "errors"

var (
	// ErrApplicationNotFound is returned when an application id or name does not resolve.
	ErrApplicationNotFound = errors.New("application not found")
	// ErrDuplicateName is returned when creating an application whose name is taken.
	ErrDuplicateName = errors.New("application name already exists")
	// ErrNoQuestions indicates the selected application has no usable question pool.
	ErrNoQuestions = errors.New("no questions available")
	// ErrInvalidSampleSize indicates a non-positive requested sample size.
	ErrInvalidSampleSize = errors.New("sample size must be positive")
	// ErrSessionNotFound is returned when a quiz session id is unknown or expired.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrInvalidResult indicates a result record that fails ledger validation.
	ErrInvalidResult = errors.New("invalid quiz result")
	// ErrInvalidRequest covers malformed start/submit input (missing name, email, etc).
	ErrInvalidRequest = errors.New("invalid request")
	// ErrEmptyImport is returned when a CSV import yields zero usable rows.
	ErrEmptyImport = errors.New("no valid questions found in CSV")
	// ErrStoreUnavailable indicates the durable catalog could not be reached.
	ErrStoreUnavailable = errors.New("question store unavailable")
)
