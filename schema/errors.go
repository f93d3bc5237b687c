package schema

import "errors"

var (
	// ErrInvalidRequest indicates a malformed request payload.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrTabNotFound indicates a requested tab could not be found.
	ErrTabNotFound = errors.New("tab not found")
	// ErrNoTabs indicates the session has no tabs loaded.
	ErrNoTabs = errors.New("no tabs")
	// ErrUnknownLanguage indicates a language with no grammar.
	ErrUnknownLanguage = errors.New("unknown language")
	// ErrHighlightFailed indicates a grammar rejected the text.
	ErrHighlightFailed = errors.New("highlight failed")
	// ErrNoFormatter indicates no formatter handles the active language.
	ErrNoFormatter = errors.New("no formatter for language")
	// ErrFormatterUnavailable indicates the formatter tool is not installed.
	ErrFormatterUnavailable = errors.New("formatter not available")
	// ErrEmptyBuffer indicates the operation needs a non-blank buffer.
	ErrEmptyBuffer = errors.New("buffer is empty")
	// ErrWindowUnavailable indicates no editor session is attached.
	ErrWindowUnavailable = errors.New("window not available")
)
