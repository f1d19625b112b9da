package service

import (
	"context"
	"log"
	"time"

	"guild-tasks/internal/model"
	"guild-tasks/internal/repository"
)

// DefaultRetention is how long a completed task stays visible.
const DefaultRetention = 24 * time.Hour

// CleanupService removes completed tasks once the retention window has passed.
type CleanupService struct {
	taskRepo  *repository.TaskRepository
	messenger Messenger
	retention time.Duration
	now       func() time.Time
}

func NewCleanupService(taskRepo *repository.TaskRepository, messenger Messenger, retention time.Duration) *CleanupService {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &CleanupService{taskRepo: taskRepo, messenger: messenger, retention: retention, now: time.Now}
}

// Run deletes every expired task. Removing the chat message is best effort;
// the row is deleted either way.
func (s *CleanupService) Run(ctx context.Context) (SweepResult, error) {
	cutoff := s.now().Add(-s.retention)
	tasks, err := s.taskRepo.ListExpired(ctx, cutoff)
	if err != nil {
		return SweepResult{}, err
	}
	result := SweepResult{Found: len(tasks)}
	if len(tasks) == 0 {
		return result, nil
	}

	log.Printf("[info] removing %d completed task(s)", len(tasks))
	errs := forEach(ctx, tasks, s.expire)
	for i, err := range errs {
		if err != nil {
			result.Failed++
			log.Printf("cleanup: task %d: %v", tasks[i].ID, err)
			continue
		}
		result.Done++
	}
	return result, nil
}

func (s *CleanupService) expire(ctx context.Context, task model.Task) error {
	s.deleteMessage(ctx, task)
	return s.taskRepo.Delete(ctx, task.ID)
}

func (s *CleanupService) deleteMessage(ctx context.Context, task model.Task) {
	if err := s.messenger.ResolveGuild(ctx, task.GuildID); err != nil {
		log.Printf("cleanup: task %d: %v", task.ID, err)
		return
	}
	if err := s.messenger.DeleteMessage(ctx, task.ChannelID, task.MessageID); err != nil {
		log.Printf("cleanup: delete message for task %d: %v", task.ID, err)
	}
}
