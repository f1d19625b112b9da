package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"guild-tasks/internal/model"
	"guild-tasks/internal/service"
)

func (b *Bot) handleCommand(ctx context.Context, i *discordgo.InteractionCreate) error {
	data := i.ApplicationCommandData()
	log.Printf("[info] command /%s guild=%s channel=%s", data.Name, i.GuildID, i.ChannelID)

	switch data.Name {
	case commandCreate:
		return b.handleCreate(i)
	case commandList:
		return b.handleList(ctx, i)
	default:
		b.replyEphemeral(i.Interaction, "Unknown command.")
		return nil
	}
}

func (b *Bot) handleCreate(i *discordgo.InteractionCreate) error {
	options := make([]discordgo.SelectMenuOption, 0, len(b.categories.List()))
	for _, cat := range b.categories.List() {
		options = append(options, discordgo.SelectMenuOption{Label: cat.Label, Value: cat.Key})
	}

	return b.respond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: msgChooseCat,
			Flags:   discordgo.MessageFlagsEphemeral,
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.SelectMenu{
						MenuType:    discordgo.StringSelectMenu,
						CustomID:    categorySelectID,
						Placeholder: "Choose a task category",
						Options:     options,
					},
				}},
			},
		},
	})
}

func (b *Bot) handleList(ctx context.Context, i *discordgo.InteractionCreate) error {
	channel, err := b.session.State.Channel(i.ChannelID)
	if err != nil {
		channel, err = b.session.Channel(i.ChannelID, discordgo.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("fetch channel: %w", err)
		}
	}

	category, ok := b.categories.ForChannel(channel.Name)
	if !ok {
		b.replyEphemeral(i.Interaction, msgUnboundList)
		return nil
	}

	tasks, err := b.taskSvc.ListIncomplete(ctx, i.GuildID, category.Key)
	if err != nil {
		return err
	}

	view := service.ListView(category, tasks)
	return b.respond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: embedsFor(view),
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
}

func (b *Bot) handleCategorySelect(i *discordgo.InteractionCreate) error {
	values := i.MessageComponentData().Values
	if len(values) == 0 {
		b.replyEphemeral(i.Interaction, msgUnknownCat)
		return nil
	}
	category, ok := b.categories.Lookup(values[0])
	if !ok {
		b.replyEphemeral(i.Interaction, msgUnknownCat)
		return nil
	}
	return b.respond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: taskModal(category),
	})
}

func taskModal(category model.Category) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		CustomID: taskModalPrefix + category.Key,
		Title:    shortTitle(fmt.Sprintf("New task: %s", category.Label), 45),
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.TextInput{
					CustomID:  contentInputID,
					Label:     "What needs to be done?",
					Style:     discordgo.TextInputParagraph,
					Required:  true,
					MaxLength: 1000,
				},
			}},
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.TextInput{
					CustomID:    dueDateInputID,
					Label:       "Due date (optional, YYYY-MM-DD)",
					Style:       discordgo.TextInputShort,
					Placeholder: "e.g. 2025-12-31",
					Required:    false,
					MaxLength:   10,
				},
			}},
		},
	}
}

func (b *Bot) handleModalSubmit(ctx context.Context, i *discordgo.InteractionCreate) error {
	data := i.ModalSubmitData()
	category, ok := parseModalCategory(data.CustomID)
	if !ok {
		b.replyEphemeral(i.Interaction, msgUnknownCat)
		return nil
	}

	// Publishing can outlive the initial response deadline.
	if err := b.respond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	}); err != nil {
		return err
	}

	values := modalValues(data)
	task, err := b.taskSvc.CreateTask(ctx, service.TaskInput{
		GuildID:   i.GuildID,
		ChannelID: i.ChannelID,
		Category:  category,
		Content:   values[contentInputID],
		DueDate:   values[dueDateInputID],
	})

	var text string
	if err != nil {
		text = createErrorMessage(err)
		if text == msgFailure {
			log.Printf("create task: %v", err)
		}
	} else {
		log.Printf("[info] task created id=%d guild=%s message=%s", task.ID, task.GuildID, task.MessageID)
		text = fmt.Sprintf("Created a task in <#%s>!", task.ChannelID)
	}

	if _, err := b.session.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &text}); err != nil {
		return fmt.Errorf("edit response: %w", err)
	}
	return nil
}

// createErrorMessage maps a CreateTask failure to the text shown to the member.
func createErrorMessage(err error) string {
	var validation *service.ValidationError
	if errors.As(err, &validation) {
		switch validation.Field {
		case "due date":
			return msgBadDueDate
		case "content":
			return msgEmptyContent
		case "category":
			return msgUnknownCat
		}
	}
	var resolution *service.ResolutionError
	if errors.As(err, &resolution) {
		if resolution.Kind == "channel" {
			return fmt.Sprintf("Error: channel #%s not found.", resolution.Name)
		}
		return fmt.Sprintf("Error: %s.", resolution.Error())
	}
	return msgFailure
}

func (b *Bot) handleButton(ctx context.Context, i *discordgo.InteractionCreate) error {
	if i.Message == nil {
		return nil
	}
	customID := i.MessageComponentData().CustomID
	messageID := i.Message.ID

	var (
		task *model.Task
		err  error
	)
	if customID == service.ControlComplete {
		task, err = b.taskSvc.CompleteTask(ctx, messageID)
		if err == nil {
			log.Printf("[info] task completed id=%d message=%s", task.ID, messageID)
		}
	} else if priority, ok := service.ParsePriorityControlID(customID); ok {
		task, err = b.taskSvc.SetPriority(ctx, messageID, priority)
	} else {
		return b.respond(i.Interaction, &discordgo.InteractionResponse{Type: discordgo.InteractionResponseDeferredMessageUpdate})
	}

	if errors.Is(err, service.ErrTaskNotFound) {
		return b.updateMessage(i.Interaction, service.GoneView())
	}
	if err != nil {
		return err
	}

	view := service.TaskView(*task)
	view.Timestamp = originalTimestamp(i.Message)
	return b.updateMessage(i.Interaction, view)
}

func (b *Bot) updateMessage(interaction *discordgo.Interaction, view service.View) error {
	return b.respond(interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    view.Content,
			Embeds:     embedsFor(view),
			Components: componentsFor(view),
		},
	})
}

func originalTimestamp(msg *discordgo.Message) time.Time {
	if msg == nil || len(msg.Embeds) == 0 || msg.Embeds[0].Timestamp == "" {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339, msg.Embeds[0].Timestamp)
	if err != nil {
		return time.Time{}
	}
	return ts
}
