package service

import (
	"errors"
	"fmt"
)

var (
	// ErrTaskNotFound is returned when an action targets a task that no longer exists.
	ErrTaskNotFound = errors.New("task not found")
	// ErrResolution matches every ResolutionError.
	ErrResolution = errors.New("resolution failed")
)

// ValidationError rejects member input before any state changes.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// ResolutionError reports a guild, channel or message the chat platform could not find.
type ResolutionError struct {
	Kind string
	Name string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

func (e *ResolutionError) Is(target error) bool {
	return target == ErrResolution
}

func GuildNotFound(guildID string) error {
	return &ResolutionError{Kind: "guild", Name: guildID}
}

func ChannelNotFound(name string) error {
	return &ResolutionError{Kind: "channel", Name: name}
}

func MessageNotFound(messageID string) error {
	return &ResolutionError{Kind: "message", Name: messageID}
}
