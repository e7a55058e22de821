package wizard

import "errors"

var (
	// ErrAborted signals the user aborted input (Ctrl+C).
	ErrAborted = errors.New("wizard: aborted")
	// ErrNoRepository is returned when Run has nowhere to load answers from.
	ErrNoRepository = errors.New("wizard: repository is required")
)
