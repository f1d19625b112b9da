package service

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"guild-tasks/internal/model"
	"guild-tasks/internal/repository"
)

const retractTimeout = 5 * time.Second

var dueDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// TaskInput represents data required to create a task.
type TaskInput struct {
	GuildID   string
	ChannelID string
	Category  string
	Content   string
	DueDate   string
}

// TaskService wraps task-related business logic.
type TaskService struct {
	taskRepo   *repository.TaskRepository
	categories *CategoryService
	messenger  Messenger
	now        func() time.Time
}

func NewTaskService(taskRepo *repository.TaskRepository, categories *CategoryService, messenger Messenger) *TaskService {
	return &TaskService{taskRepo: taskRepo, categories: categories, messenger: messenger, now: time.Now}
}

// ParseDueDate accepts an empty string (no due date) or a real calendar day in YYYY-MM-DD form.
func ParseDueDate(raw string) (*string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}
	if !dueDatePattern.MatchString(value) {
		return nil, &ValidationError{Field: "due date", Value: value, Reason: "expected YYYY-MM-DD"}
	}
	if _, err := time.Parse(model.DueDateLayout, value); err != nil {
		return nil, &ValidationError{Field: "due date", Value: value, Reason: "not a calendar date"}
	}
	return &value, nil
}

// CreateTask publishes the task message in the category channel and stores the task under its message id.
func (s *TaskService) CreateTask(ctx context.Context, input TaskInput) (*model.Task, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, &ValidationError{Field: "content", Value: input.Content, Reason: "content is required"}
	}

	dueDate, err := ParseDueDate(input.DueDate)
	if err != nil {
		return nil, err
	}

	category, ok := s.categories.Lookup(input.Category)
	if !ok {
		return nil, &ValidationError{Field: "category", Value: input.Category, Reason: "unknown category"}
	}

	channelID, err := s.messenger.ResolveChannelByName(ctx, input.GuildID, category.Channel)
	if err != nil {
		return nil, fmt.Errorf("resolve category channel: %w", err)
	}

	task := model.Task{
		GuildID:   input.GuildID,
		ChannelID: channelID,
		Content:   content,
		Category:  category.Key,
		Priority:  model.PriorityUnset,
		Status:    model.StatusIncomplete,
		DueDate:   dueDate,
	}

	view := TaskView(task)
	view.Timestamp = s.now()
	messageID, err := s.messenger.Publish(ctx, channelID, view)
	if err != nil {
		return nil, fmt.Errorf("publish task: %w", err)
	}
	task.MessageID = messageID

	if err := s.taskRepo.Insert(ctx, &task); err != nil {
		s.retract(ctx, channelID, messageID)
		return nil, err
	}
	return &task, nil
}

// retract removes a published message whose task could not be stored. It
// outlives ctx, which may be the reason the insert failed.
func (s *TaskService) retract(ctx context.Context, channelID, messageID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), retractTimeout)
	defer cancel()
	if err := s.messenger.DeleteMessage(ctx, channelID, messageID); err != nil {
		log.Printf("create task: remove orphaned message %s: %v", messageID, err)
	}
}

func (s *TaskService) GetTask(ctx context.Context, messageID string) (*model.Task, error) {
	task, err := s.taskRepo.GetByMessageID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

// SetPriority changes the priority of an open task. A completed task is
// returned unchanged.
func (s *TaskService) SetPriority(ctx context.Context, messageID string, priority model.Priority) (*model.Task, error) {
	if !priority.Valid() {
		return nil, &ValidationError{Field: "priority", Value: fmt.Sprint(int(priority)), Reason: "expected 1, 2 or 3"}
	}
	if err := s.taskRepo.SetPriority(ctx, messageID, priority); err != nil {
		return nil, err
	}
	return s.GetTask(ctx, messageID)
}

// CompleteTask marks a task as done. Completing it again keeps the first completion time.
func (s *TaskService) CompleteTask(ctx context.Context, messageID string) (*model.Task, error) {
	if err := s.taskRepo.MarkComplete(ctx, messageID, s.now()); err != nil {
		return nil, err
	}
	return s.GetTask(ctx, messageID)
}

func (s *TaskService) ListIncomplete(ctx context.Context, guildID, category string) ([]model.Task, error) {
	return s.taskRepo.ListIncomplete(ctx, guildID, category)
}
