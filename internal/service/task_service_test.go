package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"guild-tasks/internal/model"
	"guild-tasks/internal/repository"
)

func TestParseDueDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantNil bool
		wantErr bool
	}{
		{name: "empty", input: "", wantNil: true},
		{name: "blank", input: "   ", wantNil: true},
		{name: "valid", input: "2025-12-31", want: "2025-12-31"},
		{name: "trimmed", input: " 2024-02-29 ", want: "2024-02-29"},
		{name: "leap day in common year", input: "2023-02-29", wantErr: true},
		{name: "february 30", input: "2024-02-30", wantErr: true},
		{name: "month 13", input: "2024-13-01", wantErr: true},
		{name: "slashes", input: "2024/01/01", wantErr: true},
		{name: "short", input: "2024-1-1", wantErr: true},
		{name: "trailing text", input: "2024-01-01T00:00", wantErr: true},
		{name: "words", input: "tomorrow", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDueDate(tt.input)
			if tt.wantErr {
				var validation *ValidationError
				require.ErrorAs(t, err, &validation)
				assert.Equal(t, "due date", validation.Field)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestParseDueDate_AcceptsEveryCalendarDay(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		offset := rapid.IntRange(0, 3650*3).Draw(t, "dayOffset")
		day := time.Date(1995, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
		raw := day.Format(model.DueDateLayout)

		got, err := ParseDueDate(raw)
		if err != nil {
			t.Fatalf("ParseDueDate(%q): %v", raw, err)
		}
		if got == nil || *got != raw {
			t.Fatalf("ParseDueDate(%q) = %v", raw, got)
		}
	})
}

func TestParseDueDate_RejectsImpossibleDays(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		year := rapid.IntRange(1000, 9999).Draw(t, "year")
		month := rapid.IntRange(1, 12).Draw(t, "month")
		lastDay := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
		day := rapid.IntRange(lastDay+1, 99).Draw(t, "day")
		raw := fmt.Sprintf("%04d-%02d-%02d", year, month, day)

		_, err := ParseDueDate(raw)
		var validation *ValidationError
		if !errors.As(err, &validation) {
			t.Fatalf("ParseDueDate(%q) err = %v, want ValidationError", raw, err)
		}
	})
}

func TestTaskService_CreateTask(t *testing.T) {
	env := newTestEnv(t)

	task := env.create(t, "buy", "  milk  ", "2025-06-02")

	assert.Equal(t, "guild-1", task.GuildID)
	assert.Equal(t, "chan-shopping", task.ChannelID)
	assert.Equal(t, "msg-1", task.MessageID)
	assert.Equal(t, "milk", task.Content)
	assert.Equal(t, "buy", task.Category)

	stored, err := env.repo.GetByMessageID(context.Background(), "msg-1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, model.StatusIncomplete, stored.Status)
	assert.Equal(t, model.PriorityUnset, stored.Priority)
	require.NotNil(t, stored.DueDate)
	assert.Equal(t, "2025-06-02", *stored.DueDate)

	require.Len(t, env.messenger.published, 1)
	published := env.messenger.published[0]
	assert.Equal(t, "chan-shopping", published.ChannelID)
	assert.Equal(t, env.clock.Now(), published.View.Timestamp)
	require.Len(t, published.View.Controls, 4)
	for _, control := range published.View.Controls {
		assert.False(t, control.Disabled, control.ID)
	}
	assert.Contains(t, published.View.Fields, Field{Name: "Priority", Value: "unset"})
	assert.Contains(t, published.View.Fields, Field{Name: "Due date", Value: "2025-06-02"})
}

func TestTaskService_CreateTaskRejectsInput(t *testing.T) {
	tests := []struct {
		name     string
		category string
		content  string
		due      string
		field    string
	}{
		{name: "bad due date", category: "buy", content: "milk", due: "2024-02-30", field: "due date"},
		{name: "wrong format", category: "buy", content: "milk", due: "31.12.2025", field: "due date"},
		{name: "empty content", category: "buy", content: "   ", field: "content"},
		{name: "unknown category", category: "garden", content: "weeds", field: "category"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			_, err := env.tasks.CreateTask(context.Background(), TaskInput{
				GuildID: "guild-1", Category: tt.category, Content: tt.content, DueDate: tt.due,
			})

			var validation *ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, tt.field, validation.Field)
			assert.Empty(t, env.messenger.published)

			tasks, err := env.repo.ListIncomplete(context.Background(), "guild-1", tt.category)
			require.NoError(t, err)
			assert.Empty(t, tasks)
		})
	}
}

func TestTaskService_CreateTaskMissingChannel(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.tasks.CreateTask(context.Background(), TaskInput{
		GuildID: "guild-2", Category: "todo", Content: "laundry",
	})
	require.ErrorIs(t, err, ErrResolution)

	env.messenger.channels["guild-2"] = map[string]string{}
	_, err = env.tasks.CreateTask(context.Background(), TaskInput{
		GuildID: "guild-2", Category: "todo", Content: "laundry",
	})
	var resolution *ResolutionError
	require.ErrorAs(t, err, &resolution)
	assert.Equal(t, "channel", resolution.Kind)
	assert.Equal(t, "todo", resolution.Name)
	assert.Empty(t, env.messenger.published)
}

func TestTaskService_CreateTaskPublishFailure(t *testing.T) {
	env := newTestEnv(t)
	env.messenger.publishErr = errBoom

	_, err := env.tasks.CreateTask(context.Background(), TaskInput{GuildID: "guild-1", Category: "buy", Content: "milk"})
	require.ErrorIs(t, err, errBoom)

	tasks, err := env.repo.ListIncomplete(context.Background(), "guild-1", "buy")
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestTaskService_SetPriority(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	task := env.create(t, "buy", "milk", "")

	updated, err := env.tasks.SetPriority(ctx, task.MessageID, model.PriorityHigh)
	require.NoError(t, err)
	assert.Equal(t, model.PriorityHigh, updated.Priority)
	assert.Equal(t, model.StatusIncomplete, updated.Status)

	_, err = env.tasks.SetPriority(ctx, task.MessageID, model.Priority(4))
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)

	_, err = env.tasks.SetPriority(ctx, task.MessageID, model.PriorityUnset)
	require.ErrorAs(t, err, &validation)

	_, err = env.tasks.SetPriority(ctx, "gone", model.PriorityLow)
	require.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTaskService_SetPriorityAfterCompletion(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	task := env.create(t, "buy", "milk", "")

	_, err := env.tasks.SetPriority(ctx, task.MessageID, model.PriorityLow)
	require.NoError(t, err)
	_, err = env.tasks.CompleteTask(ctx, task.MessageID)
	require.NoError(t, err)

	late, err := env.tasks.SetPriority(ctx, task.MessageID, model.PriorityHigh)
	require.NoError(t, err)
	assert.Equal(t, model.PriorityLow, late.Priority)
	assert.Equal(t, model.StatusComplete, late.Status)
}

func TestTaskService_CompleteTaskIsIdempotent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	task := env.create(t, "todo", "laundry", "")

	done, err := env.tasks.CompleteTask(ctx, task.MessageID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusComplete, done.Status)
	require.NotNil(t, done.CompletedAt)
	first := *done.CompletedAt
	assert.True(t, env.clock.Now().Equal(first))

	env.clock.Advance(3 * time.Hour)
	again, err := env.tasks.CompleteTask(ctx, task.MessageID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusComplete, again.Status)
	require.NotNil(t, again.CompletedAt)
	assert.True(t, first.Equal(*again.CompletedAt))

	_, err = env.tasks.CompleteTask(ctx, "gone")
	require.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTaskService_ListIncomplete(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	unset := env.create(t, "buy", "bread", "")
	low := env.create(t, "buy", "jam", "")
	high := env.create(t, "buy", "milk", "")
	env.create(t, "todo", "laundry", "")

	_, err := env.tasks.SetPriority(ctx, low.MessageID, model.PriorityLow)
	require.NoError(t, err)
	_, err = env.tasks.SetPriority(ctx, high.MessageID, model.PriorityHigh)
	require.NoError(t, err)

	tasks, err := env.tasks.ListIncomplete(ctx, "guild-1", "buy")
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, []string{high.MessageID, low.MessageID, unset.MessageID},
		[]string{tasks[0].MessageID, tasks[1].MessageID, tasks[2].MessageID})
}

func TestTaskLifecycle_EndToEnd(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	task := env.create(t, "buy", "milk", "")
	assert.Equal(t, model.StatusIncomplete, task.Status)
	assert.Equal(t, model.PriorityUnset, task.Priority)
	assert.Nil(t, task.DueDate)

	task, err := env.tasks.SetPriority(ctx, task.MessageID, model.PriorityHigh)
	require.NoError(t, err)
	assert.Equal(t, model.PriorityHigh, task.Priority)

	task, err = env.tasks.CompleteTask(ctx, task.MessageID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusComplete, task.Status)
	assert.NotNil(t, task.CompletedAt)

	env.clock.Advance(23 * time.Hour)
	result, err := env.cleanup.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, result.Found)

	env.clock.Advance(time.Hour)
	result, err = env.cleanup.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Done)

	_, err = env.tasks.GetTask(ctx, task.MessageID)
	require.ErrorIs(t, err, ErrTaskNotFound)
	assert.Equal(t, []string{task.MessageID}, env.messenger.deleted)
}

func TestTaskService_CreateTaskStoreFailureRemovesMessage(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	// The fake numbers messages msg-1, msg-2, ...; claim the next id up front.
	require.NoError(t, env.repo.Insert(ctx, &model.Task{
		GuildID: "guild-1", MessageID: "msg-1", ChannelID: "chan-shopping",
		Content: "bread", Category: "buy", Status: model.StatusIncomplete,
	}))

	_, err := env.tasks.CreateTask(ctx, TaskInput{GuildID: "guild-1", Category: "buy", Content: "milk"})
	require.ErrorIs(t, err, repository.ErrDuplicateMessage)

	require.Len(t, env.messenger.published, 1)
	assert.Equal(t, []string{"msg-1"}, env.messenger.deleted)
}

func TestTaskService_CreateTaskRemovesMessageAfterCancellation(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.repo.Insert(context.Background(), &model.Task{
		GuildID: "guild-1", MessageID: "msg-1", ChannelID: "chan-todo",
		Content: "dishes", Category: "todo", Status: model.StatusIncomplete,
	}))
	ctx, cancel := context.WithCancel(context.Background())
	env.messenger.onPublish = cancel

	_, err := env.tasks.CreateTask(ctx, TaskInput{GuildID: "guild-1", Category: "todo", Content: "laundry"})
	require.Error(t, err)
	assert.Equal(t, []string{"msg-1"}, env.messenger.deleted)
	assert.NoError(t, env.messenger.lastDeleteCtxErr)
}

func TestTaskService_CreateTaskStoreFailureToleratesDeleteError(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	require.NoError(t, env.repo.Insert(ctx, &model.Task{
		GuildID: "guild-1", MessageID: "msg-1", ChannelID: "chan-shopping",
		Content: "bread", Category: "buy", Status: model.StatusIncomplete,
	}))
	env.messenger.deleteErr = errBoom

	_, err := env.tasks.CreateTask(ctx, TaskInput{GuildID: "guild-1", Category: "buy", Content: "milk"})
	require.ErrorIs(t, err, repository.ErrDuplicateMessage)
	assert.NotErrorIs(t, err, errBoom)
}
