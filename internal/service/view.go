package service

import (
	"fmt"
	"time"
	"unicode/utf8"

	"guild-tasks/internal/model"
)

// Control ids carried by the buttons under every task message.
const (
	ControlComplete = "task_complete"
	priorityPrefix  = "priority_"
)

const (
	ColorBlue   = 0x3498DB
	ColorGreen  = 0x57F287
	ColorOrange = 0xE67E22
	ColorGold   = 0xF1C40F
)

// Discord rejects embeds past these sizes.
const (
	maxEmbedFields     = 25
	maxEmbedChars      = 6000
	maxFieldValueChars = 1024
	// room kept for the trailing "…and N more" field
	overflowReserve = 64
)

const (
	goneText       = "This task no longer exists."
	removalNotice  = "This task will be removed automatically in 24 hours."
	emptyListText  = "No open tasks right now! 🎉"
	sortedListText = "Sorted by priority."
)

type ControlStyle int

const (
	StyleSuccess ControlStyle = iota
	StyleDanger
	StylePrimary
	StyleSecondary
)

// Control describes one button; rendering it is up to the chat adapter.
type Control struct {
	ID       string
	Label    string
	Style    ControlStyle
	Disabled bool
}

type Field struct {
	Name  string
	Value string
}

// View is the platform-neutral payload of a chat message.
type View struct {
	Content     string
	Title       string
	Description string
	Color       int
	Fields      []Field
	Footer      string
	Controls    []Control
	Timestamp   time.Time
}

// PriorityControlID returns the button id that sets p.
func PriorityControlID(p model.Priority) string {
	return fmt.Sprintf("%s%d", priorityPrefix, int(p))
}

// ParsePriorityControlID is the inverse of PriorityControlID.
func ParsePriorityControlID(id string) (model.Priority, bool) {
	var n int
	if _, err := fmt.Sscanf(id, priorityPrefix+"%d", &n); err != nil {
		return model.PriorityUnset, false
	}
	if id != PriorityControlID(model.Priority(n)) || !model.Priority(n).Valid() {
		return model.PriorityUnset, false
	}
	return model.Priority(n), true
}

// TaskView renders the interactive message of a task. All controls are
// disabled once the task is complete.
func TaskView(task model.Task) View {
	done := task.IsComplete()

	view := View{
		Title:       fmt.Sprintf("Task: %s", task.Category),
		Description: task.Content,
		Color:       ColorBlue,
		Fields: []Field{
			{Name: "Priority", Value: task.Priority.Label()},
			{Name: "Status", Value: task.Status.Label()},
		},
	}
	if done {
		view.Color = ColorGreen
	}
	if task.DueDate != nil {
		view.Fields = append(view.Fields, Field{Name: "Due date", Value: *task.DueDate})
	}
	if done {
		view.Footer = removalNotice
	}

	view.Controls = []Control{
		{ID: ControlComplete, Label: "Complete", Style: StyleSuccess, Disabled: done},
		{ID: PriorityControlID(model.PriorityHigh), Label: "Priority: high", Style: StyleDanger, Disabled: done},
		{ID: PriorityControlID(model.PriorityMedium), Label: "Priority: medium", Style: StylePrimary, Disabled: done},
		{ID: PriorityControlID(model.PriorityLow), Label: "Priority: low", Style: StyleSecondary, Disabled: done},
	}
	return view
}

// GoneView replaces a message whose task was already removed.
func GoneView() View {
	return View{Content: goneText}
}

// ListView renders the open tasks of a category. Tasks that do not fit into
// one embed are summarized by a final "…and N more" field.
func ListView(category model.Category, tasks []model.Task) View {
	view := View{
		Title:       fmt.Sprintf("Open tasks: %s", category.Label),
		Description: sortedListText,
		Color:       ColorOrange,
	}
	if len(tasks) == 0 {
		view.Description = emptyListText
		view.Color = ColorGreen
		return view
	}

	used := utf8.RuneCountInString(view.Title) + utf8.RuneCountInString(view.Description)
	for i, task := range tasks {
		field := Field{
			Name:  fmt.Sprintf("Priority: %s", task.Priority.Label()),
			Value: truncate("- "+task.Content, maxFieldValueChars),
		}
		size := utf8.RuneCountInString(field.Name) + utf8.RuneCountInString(field.Value)

		limitFields, limitChars := maxEmbedFields, maxEmbedChars
		if i < len(tasks)-1 {
			limitFields--
			limitChars -= overflowReserve
		}
		if len(view.Fields) >= limitFields || used+size > limitChars {
			view.Fields = append(view.Fields, Field{
				Name:  fmt.Sprintf("…and %d more", len(tasks)-i),
				Value: "Complete some tasks to see the rest.",
			})
			break
		}
		view.Fields = append(view.Fields, field)
		used += size
	}
	return view
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-1]) + "…"
}

// ReminderView is the notification posted when a task is due today.
func ReminderView(task model.Task, at time.Time) View {
	return View{
		Title:       "Due today!",
		Description: fmt.Sprintf("**Category**: %s\n**Task**: %s", task.Category, task.Content),
		Color:       ColorGold,
		Timestamp:   at,
	}
}
