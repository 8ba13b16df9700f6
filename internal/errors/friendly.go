// Package errors turns known failure modes into messages that tell the user
// what to do next.
package errors

import (
	"errors"
	"os/exec"
	"strings"

	"musicsync/internal/bookmarks"
)

// UserFriendlyError pairs a failure with an actionable suggestion.
type UserFriendlyError struct {
	Message    string
	Suggestion string
	Details    error
}

func (e *UserFriendlyError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)
	if e.Suggestion != "" {
		sb.WriteString("\nHow to fix: ")
		sb.WriteString(e.Suggestion)
	}
	return sb.String()
}

func (e *UserFriendlyError) Unwrap() error {
	return e.Details
}

// Friendly wraps err with a suggestion when the failure mode is recognized,
// and returns err unchanged otherwise.
func Friendly(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, bookmarks.ErrStoreLocked):
		return &UserFriendlyError{
			Message:    "the bookmark database is locked",
			Suggestion: "close the browser (or copy places.sqlite elsewhere) and retry",
			Details:    err,
		}
	case errors.Is(err, exec.ErrNotFound):
		return &UserFriendlyError{
			Message:    "yt-dlp was not found",
			Suggestion: "install yt-dlp or set ytdlp.path in the config",
			Details:    err,
		}
	}
	s := err.Error()
	switch {
	case strings.Contains(s, "no such host"), strings.Contains(s, "name resolution"):
		return &UserFriendlyError{
			Message:    "cannot resolve the remote host",
			Suggestion: "check your internet connection and DNS settings",
			Details:    err,
		}
	case strings.Contains(s, "deadline exceeded"):
		return &UserFriendlyError{
			Message:    "the remote fetch timed out",
			Suggestion: "raise ytdlp.timeout_seconds in the config or retry later",
			Details:    err,
		}
	}
	return err
}
