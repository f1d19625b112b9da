package model

import "time"

// DueDateLayout is the calendar-day format used for due dates.
const DueDateLayout = "2006-01-02"

// Priority orders open tasks. Zero means the priority was never set.
type Priority int

const (
	PriorityUnset Priority = iota
	PriorityHigh
	PriorityMedium
	PriorityLow
)

// Valid reports whether p can be chosen by a member.
func (p Priority) Valid() bool {
	return p >= PriorityHigh && p <= PriorityLow
}

func (p Priority) Label() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	default:
		return "unset"
	}
}

// Status only ever moves from incomplete to complete.
type Status string

const (
	StatusIncomplete Status = "incomplete"
	StatusComplete   Status = "complete"
)

func (s Status) Label() string {
	if s == StatusComplete {
		return "done ✅"
	}
	return "running 🏃"
}

// Task is a single item posted in a guild channel.
type Task struct {
	ID          uint       `gorm:"primaryKey"`
	GuildID     string     `gorm:"not null;index:idx_tasks_guild_category"`
	MessageID   string     `gorm:"not null;uniqueIndex"`
	ChannelID   string     `gorm:"not null"`
	Content     string     `gorm:"not null"`
	Category    string     `gorm:"not null;index:idx_tasks_guild_category"`
	Priority    Priority   `gorm:"not null;default:0"`
	Status      Status     `gorm:"not null;default:incomplete;index"`
	CompletedAt *time.Time
	DueDate     *string `gorm:"size:10;index"`
	Reminded    bool    `gorm:"not null;default:false"`
}

func (t Task) IsComplete() bool {
	return t.Status == StatusComplete
}
