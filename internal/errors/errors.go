package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for common failure scenarios.
var (
	ErrPlaybackBlocked     = errors.New("playback blocked until user interaction")
	ErrResourceFailed      = errors.New("audio resource failed")
	ErrNotFound            = errors.New("not found")
	ErrPersistence         = errors.New("persistence failed")
	ErrInvalidPlaylistName = errors.New("playlist name must not be blank")
	ErrEmptyCatalog        = errors.New("catalog is empty")
	ErrNoCurrentSong       = errors.New("no song selected")
	ErrConfigNotFound      = errors.New("config file not found")
	ErrInvalidConfig       = errors.New("invalid configuration")
)

// EuphonyError wraps an error with a user-friendly suggestion.
type EuphonyError struct {
	Err        error
	Suggestion string
}

func (e *EuphonyError) Error() string {
	return e.Err.Error()
}

func (e *EuphonyError) Unwrap() error {
	return e.Err
}

// WithSuggestion wraps an error with a helpful suggestion.
func WithSuggestion(err error, suggestion string) error {
	return &EuphonyError{
		Err:        err,
		Suggestion: suggestion,
	}
}

// Persistence wraps a storage failure for key so that errors.Is(err, ErrPersistence) holds.
func Persistence(key string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrPersistence, key, err)
}

// IsBlocked reports whether err means audio is waiting for a user gesture.
func IsBlocked(err error) bool {
	return errors.Is(err, ErrPlaybackBlocked)
}

// GetSuggestion returns a suggestion for the given error.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	var euErr *EuphonyError
	if errors.As(err, &euErr) && euErr.Suggestion != "" {
		return euErr.Suggestion
	}

	errStr := strings.ToLower(err.Error())

	switch {
	case errors.Is(err, ErrPlaybackBlocked):
		return "Press any key in the player to start audio"
	case errors.Is(err, ErrEmptyCatalog):
		return "Set catalog.path in your config to a CSV file with songs"
	case errors.Is(err, ErrNotFound):
		return "Run 'euphony search <query>' to find song ids"
	case errors.Is(err, ErrInvalidPlaylistName):
		return "Give the playlist a name, e.g. 'euphony playlist create \"Road Trip\"'"
	case errors.Is(err, ErrPersistence):
		if strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "redis") {
			return "Check that Redis is running at storage.redis_addr"
		}
		return "Check that storage.dir exists and is writable"
	case errors.Is(err, ErrConfigNotFound):
		return "Run 'euphony config init' to create a configuration file"
	case errors.Is(err, ErrInvalidConfig) || strings.Contains(errStr, "config"):
		return "Run 'euphony config show' to review your configuration"
	}

	return ""
}

// Format returns a formatted error message with suggestion if available.
func Format(err error) string {
	if err == nil {
		return ""
	}

	suggestion := GetSuggestion(err)
	if suggestion != "" {
		return fmt.Sprintf("Error: %s\n\nSuggestion: %s", err.Error(), suggestion)
	}

	return fmt.Sprintf("Error: %s", err.Error())
}

// PartialResult represents a result that may have partial failures.
type PartialResult[T any] struct {
	Data   T
	Errors []error
}

// HasErrors returns true if there were any errors.
func (p *PartialResult[T]) HasErrors() bool {
	return len(p.Errors) > 0
}

// AddError adds an error to the partial result.
func (p *PartialResult[T]) AddError(err error) {
	if err != nil {
		p.Errors = append(p.Errors, err)
	}
}

// ErrorSummary returns a summary of all errors.
func (p *PartialResult[T]) ErrorSummary() string {
	if len(p.Errors) == 0 {
		return ""
	}
	if len(p.Errors) == 1 {
		return p.Errors[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d errors occurred:\n", len(p.Errors))
	for i, err := range p.Errors {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}
