package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"guild-tasks/internal/service"
)

// messenger implements service.Messenger over the Discord REST API.
type messenger struct {
	session *discordgo.Session
}

func NewMessenger(session *discordgo.Session) service.Messenger {
	return &messenger{session: session}
}

func (m *messenger) ResolveGuild(ctx context.Context, guildID string) error {
	if guild, err := m.session.State.Guild(guildID); err == nil && guild != nil {
		return nil
	}
	if _, err := m.session.Guild(guildID, discordgo.WithContext(ctx)); err != nil {
		if isNotFound(err) {
			return service.GuildNotFound(guildID)
		}
		return fmt.Errorf("fetch guild: %w", err)
	}
	return nil
}

func (m *messenger) ResolveChannelByName(ctx context.Context, guildID, name string) (string, error) {
	channels, err := m.session.GuildChannels(guildID, discordgo.WithContext(ctx))
	if err != nil {
		if isNotFound(err) {
			return "", service.GuildNotFound(guildID)
		}
		return "", fmt.Errorf("fetch channels: %w", err)
	}
	for _, ch := range channels {
		if ch.Type == discordgo.ChannelTypeGuildText && ch.Name == name {
			return ch.ID, nil
		}
	}
	return "", service.ChannelNotFound(name)
}

func (m *messenger) Publish(ctx context.Context, channelID string, view service.View) (string, error) {
	msg, err := m.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:    view.Content,
		Embeds:     embedsFor(view),
		Components: componentsFor(view),
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("send message: %w", err)
	}
	return msg.ID, nil
}

func (m *messenger) Notify(ctx context.Context, channelID string, view service.View) error {
	if _, err := m.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content: view.Content,
		Embeds:  embedsFor(view),
	}, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	return nil
}

func (m *messenger) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	if _, err := m.session.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx)); err != nil {
		if hasCode(err, discordgo.ErrCodeUnknownChannel) {
			return service.ChannelNotFound(channelID)
		}
		if isNotFound(err) {
			return service.MessageNotFound(messageID)
		}
		return fmt.Errorf("fetch message: %w", err)
	}
	if err := m.session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx)); err != nil {
		if isNotFound(err) {
			return service.MessageNotFound(messageID)
		}
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) || restErr.Response == nil {
		return false
	}
	return restErr.Response.StatusCode == http.StatusNotFound
}

func hasCode(err error, code int) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) || restErr.Message == nil {
		return false
	}
	return restErr.Message.Code == code
}
