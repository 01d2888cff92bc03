package questiongen

import "errors"

var (
	// ErrNoTopics is returned when no topic was given and none are configured.
	ErrNoTopics = errors.New("no topics configured")

	// ErrGenerationTimeout is returned when the model did not answer in time.
	ErrGenerationTimeout = errors.New("question generation timed out")

	// ErrGenerationFailed covers transport errors and an unusable
	// corrective draft.
	ErrGenerationFailed = errors.New("question generation failed")

	// ErrMalformedResponse is returned when the first draft has no JSON
	// object or lacks required fields.
	ErrMalformedResponse = errors.New("malformed question response")
)
