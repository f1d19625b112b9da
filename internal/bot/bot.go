package bot

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"
	"time"

	"github.com/bwmarrin/discordgo"

	"guild-tasks/internal/service"
)

const interactionTimeout = 10 * time.Second

const (
	categorySelectID = "category_select"
	taskModalPrefix  = "task_modal:"
	contentInputID   = "task_content"
	dueDateInputID   = "task_due_date"
)

const (
	msgFailure      = "Something went wrong while handling this request."
	msgGuildOnly    = "Tasks can only be managed inside a server."
	msgChooseCat    = "Which category should the new task go to?"
	msgUnboundList  = "This channel is not bound to a task category."
	msgBadDueDate   = "Error: the due date must be a valid date in `YYYY-MM-DD` form."
	msgUnknownCat   = "Error: that category is not configured anymore."
	msgEmptyContent = "Error: the task needs some content."
)

// NewSession builds a Discord session with the intents the bot needs.
func NewSession(token string) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages
	return session, nil
}

// Bot aggregates the Discord gateway with services.
type Bot struct {
	session    *discordgo.Session
	taskSvc    *service.TaskService
	categories *service.CategoryService
}

func New(session *discordgo.Session, taskSvc *service.TaskService, categories *service.CategoryService) *Bot {
	return &Bot{
		session:    session,
		taskSvc:    taskSvc,
		categories: categories,
	}
}

// Start opens the gateway and handles interactions until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		b.onInteraction(ctx, s, i)
	})

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open gateway: %w", err)
	}
	log.Println("[info] gateway connected")

	<-ctx.Done()

	if err := b.session.Close(); err != nil {
		log.Printf("close gateway: %v", err)
	}
	return ctx.Err()
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	log.Printf("[info] logged in as %s#%s", r.User.Username, r.User.Discriminator)
}

func (b *Bot) onInteraction(ctx context.Context, _ *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(ctx, interactionTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("interaction panic: %v\n%s", r, debug.Stack())
			b.replyEphemeral(i.Interaction, msgFailure)
		}
	}()

	if i.GuildID == "" {
		b.replyEphemeral(i.Interaction, msgGuildOnly)
		return
	}

	var err error
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		err = b.handleCommand(ctx, i)
	case discordgo.InteractionMessageComponent:
		if i.MessageComponentData().CustomID == categorySelectID {
			err = b.handleCategorySelect(i)
		} else {
			err = b.handleButton(ctx, i)
		}
	case discordgo.InteractionModalSubmit:
		err = b.handleModalSubmit(ctx, i)
	default:
		return
	}

	if err != nil {
		log.Printf("handle interaction %s: %v", i.ID, err)
		b.replyEphemeral(i.Interaction, msgFailure)
	}
}

// replyEphemeral answers an interaction, falling back to a follow-up when it was already acknowledged.
func (b *Bot) replyEphemeral(interaction *discordgo.Interaction, text string) {
	err := b.session.InteractionRespond(interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: text,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err == nil {
		return
	}
	if _, ferr := b.session.FollowupMessageCreate(interaction, true, &discordgo.WebhookParams{
		Content: text,
		Flags:   discordgo.MessageFlagsEphemeral,
	}); ferr != nil {
		log.Printf("reply: %v (followup: %v)", err, ferr)
	}
}

func (b *Bot) respond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse) error {
	if err := b.session.InteractionRespond(interaction, resp); err != nil {
		return fmt.Errorf("respond: %w", err)
	}
	return nil
}
