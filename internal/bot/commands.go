package bot

import (
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
)

const (
	commandCreate = "create"
	commandList   = "list"
)

// Commands lists the slash commands the bot answers to.
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{Name: commandCreate, Description: "Create a new task."},
		{Name: commandList, Description: "List the open tasks of this channel's category."},
	}
}

// RegisterCommands replaces the application's slash commands. An empty
// guildID registers them globally.
func RegisterCommands(session *discordgo.Session, appID, guildID string) ([]*discordgo.ApplicationCommand, error) {
	if appID == "" {
		self, err := session.User("@me")
		if err != nil {
			return nil, fmt.Errorf("resolve application id: %w", err)
		}
		appID = self.ID
	}

	log.Printf("[info] registering %d command(s) app=%s guild=%q", len(Commands()), appID, guildID)
	registered, err := session.ApplicationCommandBulkOverwrite(appID, guildID, Commands())
	if err != nil {
		return nil, fmt.Errorf("register commands: %w", err)
	}
	return registered, nil
}
