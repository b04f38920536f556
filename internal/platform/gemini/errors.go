package gemini

import "errors"

// Errors returned by Judge. Callers match them with errors.Is.
var (
	// ErrInvalidConfig is returned when the judge cannot be constructed.
	ErrInvalidConfig = errors.New("invalid gemini configuration")

	// ErrInvalidResponse is returned when the model reply cannot be parsed.
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when safety filters block the prompt or reply.
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is returned when retries are exhausted or the
	// context ends while waiting to retry.
	ErrTransientFailure = errors.New("transient error during semantic grading")

	// ErrPermanentFailure is returned for API errors that retrying cannot fix.
	ErrPermanentFailure = errors.New("language model request rejected")
)
