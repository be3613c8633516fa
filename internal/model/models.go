package model

import "time"

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Priorities lists the accepted task priorities in ascending urgency.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// StatusDone is the terminal status every project workflow must contain.
const StatusDone = "done"

// FallbackStatus is used for tasks whose project has no columns at all.
const FallbackStatus = "assigned"

type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Color       string    `json:"color"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (c Category) RecordID() string { return c.ID }

type Tag struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (t Tag) RecordID() string { return t.ID }

// User is the public view of a user. The password hash lives only on UserRecord.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u User) RecordID() string { return u.ID }

// UserRecord is the persisted shape of a user.
type UserRecord struct {
	User
	PasswordHash string `json:"passwordHash"`
}

type Link struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Column is one workflow stage of a project board.
type Column struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Title  string `json:"title"`
	Order  int    `json:"order"`
}

type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CategoryIDs []string  `json:"categoryIds"`
	Links       []Link    `json:"links"`
	Columns     []Column  `json:"columns"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (p Project) RecordID() string { return p.ID }

// HasStatus reports whether status is one of the project's column slugs.
func (p Project) HasStatus(status string) bool {
	for _, c := range p.Columns {
		if c.Status == status {
			return true
		}
	}
	return false
}

type Task struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"projectId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CategoryID  *string   `json:"categoryId"`
	TagIDs      []string  `json:"tagIds"`
	Status      string    `json:"status"`
	Priority    Priority  `json:"priority"`
	AssigneeID  *string   `json:"assigneeId"`
	StartDate   string    `json:"startDate"`
	DueDate     *string   `json:"dueDate"`
	Links       []Link    `json:"links"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (t Task) RecordID() string { return t.ID }

// ExpandedTask is a task with its foreign keys resolved for display.
// It is computed on read and never stored.
type ExpandedTask struct {
	Task
	Project  *Project  `json:"project"`
	Category *Category `json:"category"`
	Tags     []Tag     `json:"tags"`
	Assignee *User     `json:"assignee"`
}
