package service

import "context"

// Messenger is the chat platform as seen by the task services.
// Resolution failures are reported as *ResolutionError.
type Messenger interface {
	ResolveGuild(ctx context.Context, guildID string) error
	// ResolveChannelByName returns the id of the guild's text channel with that name.
	ResolveChannelByName(ctx context.Context, guildID, name string) (string, error)
	// Publish posts an interactive task view and returns the new message id.
	Publish(ctx context.Context, channelID string, view View) (string, error)
	Notify(ctx context.Context, channelID string, view View) error
	DeleteMessage(ctx context.Context, channelID, messageID string) error
}

// Mirror receives a copy of reminder notifications on another platform.
type Mirror interface {
	Forward(ctx context.Context, view View) error
}
