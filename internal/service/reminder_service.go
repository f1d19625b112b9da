package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"guild-tasks/internal/model"
	"guild-tasks/internal/repository"
)

// ReminderService posts a notification for every open task due today.
type ReminderService struct {
	taskRepo  *repository.TaskRepository
	messenger Messenger
	mirrors   []Mirror
	channel   string
	loc       *time.Location
	now       func() time.Time
}

func NewReminderService(taskRepo *repository.TaskRepository, messenger Messenger, channel string, loc *time.Location, mirrors ...Mirror) *ReminderService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReminderService{
		taskRepo:  taskRepo,
		messenger: messenger,
		mirrors:   mirrors,
		channel:   channel,
		loc:       loc,
		now:       time.Now,
	}
}

// Today is the current calendar day in the reminder timezone.
func (s *ReminderService) Today() string {
	return s.now().In(s.loc).Format(model.DueDateLayout)
}

// Run reminds every open, not yet reminded task due today. Tasks whose
// guild or reminder channel cannot be resolved are skipped and stay unreminded.
func (s *ReminderService) Run(ctx context.Context) (SweepResult, error) {
	today := s.Today()
	tasks, err := s.taskRepo.ListDueUnreminded(ctx, today)
	if err != nil {
		return SweepResult{}, err
	}
	result := SweepResult{Found: len(tasks)}
	if len(tasks) == 0 {
		return result, nil
	}

	log.Printf("[info] reminding %d task(s) due %s", len(tasks), today)
	errs := forEach(ctx, tasks, s.remind)
	for i, err := range errs {
		switch {
		case err == nil:
			result.Done++
		case errors.Is(err, ErrResolution):
			result.Skipped++
			log.Printf("reminder: skip task %d: %v", tasks[i].ID, err)
		default:
			result.Failed++
			log.Printf("reminder: task %d: %v", tasks[i].ID, err)
		}
	}
	return result, nil
}

func (s *ReminderService) remind(ctx context.Context, task model.Task) error {
	if err := s.messenger.ResolveGuild(ctx, task.GuildID); err != nil {
		return err
	}
	channelID, err := s.messenger.ResolveChannelByName(ctx, task.GuildID, s.channel)
	if err != nil {
		return err
	}

	view := ReminderView(task, s.now())
	if err := s.messenger.Notify(ctx, channelID, view); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	if err := s.taskRepo.MarkReminded(ctx, task.ID); err != nil {
		return err
	}

	for _, mirror := range s.mirrors {
		if err := mirror.Forward(ctx, view); err != nil {
			log.Printf("reminder: mirror task %d: %v", task.ID, err)
		}
	}
	return nil
}
