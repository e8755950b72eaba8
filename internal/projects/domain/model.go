package domain

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Status is the lifecycle state of a project.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

var statusOrder = map[Status]int{
	StatusPending:    0,
	StatusInProgress: 1,
	StatusCompleted:  2,
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.TrimSpace(s))
	if !st.Valid() {
		return "", fmt.Errorf("unknown status %q", s)
	}
	return st, nil
}

func (s Status) Valid() bool {
	_, ok := statusOrder[s]
	return ok
}

// CanAdvanceTo reports whether next keeps or moves forward the
// pending -> in_progress -> completed ordering.
func (s Status) CanAdvanceTo(next Status) bool {
	from, ok1 := statusOrder[s]
	to, ok2 := statusOrder[next]
	return ok1 && ok2 && to >= from
}

// Project is a unit of work created by a client.
type Project struct {
	ID          string    `json:"id"`
	ClientID    string    `json:"client_id"`
	DesignerID  *string   `json:"designer_id"`
	Status      Status    `json:"status"`
	PointsCost  int       `json:"points_cost"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Files       []string  `json:"files"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsAssignedTo reports whether designerID is the project's designer.
func (p *Project) IsAssignedTo(designerID string) bool {
	return p.DesignerID != nil && *p.DesignerID == designerID
}

// HasFile reports whether path is one of the project's stored files.
func (p *Project) HasFile(path string) bool {
	for _, f := range p.Files {
		if f == path {
			return true
		}
	}
	return false
}

// CreateInput is what a caller supplies to open a project.
type CreateInput struct {
	Title       string
	Description string
	Offering    string
	Files       []Upload
}

// Upload is one file to store in object storage.
type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Patch is a partial update; nil fields are left unchanged.
type Patch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	PointsCost  *int    `json:"points_cost,omitempty"`
	Status      *Status `json:"status,omitempty"`
}

func (p Patch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.PointsCost == nil && p.Status == nil
}

// ListFilter narrows a project listing. Empty fields do not filter.
type ListFilter struct {
	ClientID   string
	DesignerID string
}

// DesignerWorkload is a designer together with the projects assigned to them.
type DesignerWorkload struct {
	DesignerID string    `json:"designer_id"`
	Email      string    `json:"email"`
	Projects   []Project `json:"projects"`
}
