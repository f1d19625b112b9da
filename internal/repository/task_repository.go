package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"guild-tasks/internal/model"
)

// ErrDuplicateMessage means a task is already bound to the message id.
var ErrDuplicateMessage = errors.New("task for message already exists")

// Unset priority sorts after low.
const priorityOrder = "CASE WHEN priority = 0 THEN 99 ELSE priority END ASC"

// TaskRepository handles CRUD for tasks.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Insert(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert task %s: %w", task.MessageID, ErrDuplicateMessage)
		}
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// GetByMessageID returns nil without an error when no task is bound to the message.
func (r *TaskRepository) GetByMessageID(ctx context.Context, messageID string) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).Where("message_id = ?", messageID).First(&task).Error
	switch {
	case err == nil:
		return &task, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("find task: %w", err)
	}
}

func (r *TaskRepository) ListIncomplete(ctx context.Context, guildID, category string) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("guild_id = ? AND category = ? AND status = ?", guildID, category, model.StatusIncomplete).
		Order(priorityOrder).
		Order("id ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list incomplete tasks: %w", err)
	}
	return tasks, nil
}

// SetPriority only touches open tasks; a completed task keeps its last priority.
func (r *TaskRepository) SetPriority(ctx context.Context, messageID string, priority model.Priority) error {
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("message_id = ? AND status = ?", messageID, model.StatusIncomplete).
		Update("priority", priority).Error; err != nil {
		return fmt.Errorf("set priority: %w", err)
	}
	return nil
}

// MarkComplete stamps completed_at once; later calls leave the row alone.
func (r *TaskRepository) MarkComplete(ctx context.Context, messageID string, completedAt time.Time) error {
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("message_id = ? AND status = ?", messageID, model.StatusIncomplete).
		Updates(map[string]interface{}{
			"status":       model.StatusComplete,
			"completed_at": storedTime(completedAt),
		}).Error; err != nil {
		return fmt.Errorf("complete task: %w", err)
	}
	return nil
}

func (r *TaskRepository) MarkReminded(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ?", id).
		Update("reminded", true).Error; err != nil {
		return fmt.Errorf("mark reminded: %w", err)
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Task{}).Error; err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// ListDueUnreminded returns open tasks due on dueDate (YYYY-MM-DD) that have not been reminded yet.
func (r *TaskRepository) ListDueUnreminded(ctx context.Context, dueDate string) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("status = ? AND reminded = ? AND due_date = ?", model.StatusIncomplete, false, dueDate).
		Order("id ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list due tasks: %w", err)
	}
	return tasks, nil
}

// ListExpired returns completed tasks with completed_at at or before the given instant.
func (r *TaskRepository) ListExpired(ctx context.Context, before time.Time) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("status = ? AND completed_at IS NOT NULL AND completed_at <= ?", model.StatusComplete, storedTime(before)).
		Order("id ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list expired tasks: %w", err)
	}
	return tasks, nil
}

// storedTime normalizes instants so the text values SQLite compares share one layout.
func storedTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
