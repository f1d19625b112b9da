package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"guild-tasks/internal/model"
	"guild-tasks/internal/repository"
)

type sentView struct {
	ChannelID string
	View      View
}

// fakeMessenger keeps guilds and channels in memory and records every request.
type fakeMessenger struct {
	mu        sync.Mutex
	channels  map[string]map[string]string // guild -> name -> id
	messages  map[string]string            // message id -> channel id
	published []sentView
	notified  []sentView
	deleted   []string
	nextID    int

	publishErr error
	notifyErr  error
	deleteErr  error

	onPublish        func()
	lastDeleteCtxErr error
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{
		channels: make(map[string]map[string]string),
		messages: make(map[string]string),
	}
}

func (f *fakeMessenger) addChannel(guildID, name, id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.channels[guildID] == nil {
		f.channels[guildID] = make(map[string]string)
	}
	f.channels[guildID][name] = id
}

func (f *fakeMessenger) ResolveGuild(_ context.Context, guildID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.channels[guildID]; !ok {
		return GuildNotFound(guildID)
	}
	return nil
}

func (f *fakeMessenger) ResolveChannelByName(_ context.Context, guildID, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	channels, ok := f.channels[guildID]
	if !ok {
		return "", GuildNotFound(guildID)
	}
	id, ok := channels[name]
	if !ok {
		return "", ChannelNotFound(name)
	}
	return id, nil
}

func (f *fakeMessenger) Publish(_ context.Context, channelID string, view View) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return "", f.publishErr
	}
	f.nextID++
	id := fmt.Sprintf("msg-%d", f.nextID)
	f.messages[id] = channelID
	f.published = append(f.published, sentView{ChannelID: channelID, View: view})
	if f.onPublish != nil {
		f.onPublish()
	}
	return id, nil
}

func (f *fakeMessenger) Notify(_ context.Context, channelID string, view View) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.notifyErr != nil {
		return f.notifyErr
	}
	f.notified = append(f.notified, sentView{ChannelID: channelID, View: view})
	return nil
}

func (f *fakeMessenger) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastDeleteCtxErr = ctx.Err()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if f.messages[messageID] != channelID {
		return MessageNotFound(messageID)
	}
	delete(f.messages, messageID)
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeMessenger) notifiedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.notified)
}

type fakeMirror struct {
	mu        sync.Mutex
	forwarded []View
	err       error
}

func (m *fakeMirror) Forward(_ context.Context, view View) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forwarded = append(m.forwarded, view)
	return m.err
}

// clock is a settable time source shared by the services under test.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	repo      *repository.TaskRepository
	messenger *fakeMessenger
	mirror    *fakeMirror
	clock     *clock
	tasks     *TaskService
	reminders *ReminderService
	cleanup   *CleanupService
}

var errBoom = errors.New("boom")

var tokyo = time.FixedZone("JST", 9*60*60)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "tasks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repository.Close(db) })

	repo := repository.NewTaskRepository(db)
	messenger := newFakeMessenger()
	messenger.addChannel("guild-1", "shopping", "chan-shopping")
	messenger.addChannel("guild-1", "todo", "chan-todo")
	messenger.addChannel("guild-1", "today", "chan-today")

	categories := NewCategoryService([]model.Category{
		{Key: "buy", Label: "Shopping", Channel: "shopping"},
		{Key: "todo", Label: "To do", Channel: "todo"},
	})
	clk := &clock{now: time.Date(2025, 6, 1, 7, 0, 0, 0, tokyo)}
	mirror := &fakeMirror{}

	env := &testEnv{
		repo:      repo,
		messenger: messenger,
		mirror:    mirror,
		clock:     clk,
		tasks:     NewTaskService(repo, categories, messenger),
		reminders: NewReminderService(repo, messenger, "today", tokyo, mirror),
		cleanup:   NewCleanupService(repo, messenger, DefaultRetention),
	}
	env.tasks.now = clk.Now
	env.reminders.now = clk.Now
	env.cleanup.now = clk.Now
	return env
}

func (e *testEnv) create(t *testing.T, category, content, due string) *model.Task {
	t.Helper()
	task, err := e.tasks.CreateTask(context.Background(), TaskInput{
		GuildID:   "guild-1",
		ChannelID: "chan-origin",
		Category:  category,
		Content:   content,
		DueDate:   due,
	})
	require.NoError(t, err)
	return task
}
