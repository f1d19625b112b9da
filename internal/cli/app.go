package cli

import (
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
	"gorm.io/gorm"

	"guild-tasks/internal/bot"
	"guild-tasks/internal/config"
	"guild-tasks/internal/repository"
	"guild-tasks/internal/service"
	"guild-tasks/internal/telegram"
)

// app holds the wired dependencies shared by the commands.
type app struct {
	cfg        config.Config
	db         *gorm.DB
	session    *discordgo.Session
	categories *service.CategoryService
	tasks      *service.TaskService
	reminders  *service.ReminderService
	cleanup    *service.CleanupService
}

func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}

	session, err := bot.NewSession(cfg.DiscordToken)
	if err != nil {
		repository.Close(db)
		return nil, err
	}

	var mirrors []service.Mirror
	if cfg.TelegramEnabled() {
		mirror, err := telegram.NewMirror(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Printf("telegram mirror disabled: %v", err)
		} else {
			mirrors = append(mirrors, mirror)
		}
	}

	taskRepo := repository.NewTaskRepository(db)
	messenger := bot.NewMessenger(session)
	categories := service.NewCategoryService(cfg.Categories)

	return &app{
		cfg:        cfg,
		db:         db,
		session:    session,
		categories: categories,
		tasks:      service.NewTaskService(taskRepo, categories, messenger),
		reminders:  service.NewReminderService(taskRepo, messenger, cfg.ReminderChannel, cfg.Location, mirrors...),
		cleanup:    service.NewCleanupService(taskRepo, messenger, cfg.Retention),
	}, nil
}

func (a *app) Close() {
	if err := repository.Close(a.db); err != nil {
		log.Printf("close db: %v", err)
	}
}
