package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"guild-tasks/internal/bot"
)

var registerGuildID string

var registerCmd = &cobra.Command{
	Use:   "register-commands",
	Short: "Publish the /create and /list slash commands",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		guildID := registerGuildID
		if guildID == "" {
			guildID = a.cfg.GuildID
		}

		registered, err := bot.RegisterCommands(a.session, a.cfg.ApplicationID, guildID)
		if err != nil {
			return err
		}
		for _, c := range registered {
			fmt.Fprintf(cmd.OutOrStdout(), "registered /%s (%s)\n", c.Name, c.ID)
		}
		return nil
	},
}

func init() {
	registerCmd.Flags().StringVar(&registerGuildID, "guild", "", "register for one guild instead of globally")
	rootCmd.AddCommand(registerCmd)
}
