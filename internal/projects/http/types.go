package http

import (
	"context"
	"time"

	authdomain "github.com/grayola/task-manager/internal/auth/domain"
	"github.com/grayola/task-manager/internal/projects/domain"
	"github.com/grayola/task-manager/internal/projects/service"
)

// Workflow is the project behaviour the handlers depend on.
type Workflow interface {
	Create(ctx context.Context, caller authdomain.Caller, in domain.CreateInput) (*service.CreateResult, error)
	Assign(ctx context.Context, caller authdomain.Caller, id, designerID string) (*domain.Project, error)
	UpdateStatus(ctx context.Context, caller authdomain.Caller, id, status string) (*domain.Project, error)
	Delete(ctx context.Context, caller authdomain.Caller, id string) error
	Update(ctx context.Context, caller authdomain.Caller, id string, patch domain.Patch) (*domain.Project, error)
	AttachFiles(ctx context.Context, caller authdomain.Caller, id string, files []domain.Upload) (*domain.Project, error)
	List(ctx context.Context, caller authdomain.Caller) ([]domain.Project, error)
	Get(ctx context.Context, caller authdomain.Caller, id string) (*domain.Project, error)
	SignedURL(ctx context.Context, caller authdomain.Caller, id, path string) (string, time.Duration, error)
	Designers(ctx context.Context, caller authdomain.Caller) ([]domain.DesignerWorkload, error)
}

// Handler bundles the dependencies for projects HTTP endpoints.
type Handler struct {
	workflow    Workflow
	maxFileSize int64
}

const defaultMaxFileSize = 20 << 20

func New(workflow Workflow) *Handler {
	return &Handler{workflow: workflow, maxFileSize: defaultMaxFileSize}
}

type createReq struct {
	Title       string `json:"title" form:"title" binding:"required"`
	Description string `json:"description" form:"description" binding:"required"`
	Offering    string `json:"offering" form:"offering" binding:"required"`
}

type assignReq struct {
	DesignerID string `json:"designer_id" binding:"required"`
}

type statusReq struct {
	Status string `json:"status" binding:"required,project_status"`
}

type updateReq struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	PointsCost  *int    `json:"points_cost"`
	Status      *string `json:"status" binding:"omitempty,project_status"`
}

func (r updateReq) patch() domain.Patch {
	p := domain.Patch{
		Title:       r.Title,
		Description: r.Description,
		PointsCost:  r.PointsCost,
	}
	if r.Status != nil {
		s := domain.Status(*r.Status)
		p.Status = &s
	}
	return p
}
