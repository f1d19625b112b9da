package bot

import (
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"guild-tasks/internal/service"
)

var buttonStyles = map[service.ControlStyle]discordgo.ButtonStyle{
	service.StyleSuccess:   discordgo.SuccessButton,
	service.StyleDanger:    discordgo.DangerButton,
	service.StylePrimary:   discordgo.PrimaryButton,
	service.StyleSecondary: discordgo.SecondaryButton,
}

// embedsFor returns an empty, non-nil slice for views without an embed so
// that an update clears the previous one.
func embedsFor(view service.View) []*discordgo.MessageEmbed {
	if view.Title == "" && view.Description == "" && len(view.Fields) == 0 {
		return []*discordgo.MessageEmbed{}
	}

	embed := &discordgo.MessageEmbed{
		Title:       view.Title,
		Description: view.Description,
		Color:       view.Color,
	}
	for _, field := range view.Fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   field.Name,
			Value:  field.Value,
			Inline: false,
		})
	}
	if view.Footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: view.Footer}
	}
	if !view.Timestamp.IsZero() {
		embed.Timestamp = view.Timestamp.Format(time.RFC3339)
	}
	return []*discordgo.MessageEmbed{embed}
}

func componentsFor(view service.View) []discordgo.MessageComponent {
	if len(view.Controls) == 0 {
		return []discordgo.MessageComponent{}
	}
	row := discordgo.ActionsRow{}
	for _, control := range view.Controls {
		row.Components = append(row.Components, discordgo.Button{
			Label:    control.Label,
			Style:    buttonStyles[control.Style],
			CustomID: control.ID,
			Disabled: control.Disabled,
		})
	}
	return []discordgo.MessageComponent{row}
}

// modalValues collects text input values keyed by custom id.
func modalValues(data discordgo.ModalSubmitInteractionData) map[string]string {
	values := make(map[string]string)
	for _, component := range data.Components {
		row, ok := component.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, inner := range row.Components {
			if input, ok := inner.(*discordgo.TextInput); ok {
				values[input.CustomID] = input.Value
			}
		}
	}
	return values
}

func parseModalCategory(customID string) (string, bool) {
	category, ok := strings.CutPrefix(customID, taskModalPrefix)
	if !ok || category == "" {
		return "", false
	}
	return category, true
}

func shortTitle(title string, maxLen int) string {
	clean := strings.TrimSpace(strings.ReplaceAll(title, "\n", " "))
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}
