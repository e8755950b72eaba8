package service

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/grayola/task-manager/internal/apperr"
	authdomain "github.com/grayola/task-manager/internal/auth/domain"
	"github.com/grayola/task-manager/internal/projects/domain"
	"github.com/grayola/task-manager/internal/storage/objectstore"
)

// Store is the project persistence the workflow needs.
type Store interface {
	CreateWithDebit(ctx context.Context, p *domain.Project) (int, error)
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context, f domain.ListFilter) ([]domain.Project, error)
	Assign(ctx context.Context, id, designerID string) (*domain.Project, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Project, error)
	Update(ctx context.Context, id string, patch domain.Patch) (*domain.Project, error)
	AppendFiles(ctx context.Context, id string, paths []string) (*domain.Project, error)
	Delete(ctx context.Context, id string) error
}

// ObjectStore is where project files are kept.
type ObjectStore interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// ProfileLister lists profiles by role.
type ProfileLister interface {
	ListByRole(ctx context.Context, role authdomain.Role) ([]authdomain.Profile, error)
}

// CreateResult is a created project and the client's balance after the debit.
type CreateResult struct {
	Project       *domain.Project `json:"project"`
	PointsBalance int             `json:"points_balance"`
}

// ProjectService enforces who may create, change, assign and delete
// projects.
type ProjectService struct {
	store        Store
	objects      ObjectStore
	profiles     ProfileLister
	signedURLTTL time.Duration
	log          *zap.Logger
	newID        func() string
}

func NewProjectService(store Store, objects ObjectStore, profiles ProfileLister, signedURLTTL time.Duration, log *zap.Logger) *ProjectService {
	if log == nil {
		log = zap.NewNop()
	}
	if signedURLTTL <= 0 {
		signedURLTTL = objectstore.DefaultSignedURLTTL
	}
	return &ProjectService{
		store:        store,
		objects:      objects,
		profiles:     profiles,
		signedURLTTL: signedURLTTL,
		log:          log,
		newID:        uuid.NewString,
	}
}

// Create opens a pending project priced by its offering and debits the
// caller. Files are uploaded after the project is stored; if an upload
// fails the project and the debit remain and an upload error is returned
// together with the result.
func (s *ProjectService) Create(ctx context.Context, caller authdomain.Caller, in domain.CreateInput) (*CreateResult, error) {
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if title == "" {
		return nil, apperr.Validation("title is required")
	}
	if description == "" {
		return nil, apperr.Validation("description is required")
	}
	offering, ok := domain.LookupOffering(in.Offering)
	if !ok {
		return nil, apperr.Validation("unknown offering type")
	}

	p := &domain.Project{
		ID:          s.newID(),
		ClientID:    caller.UserID,
		Status:      domain.StatusPending,
		PointsCost:  offering.Credits,
		Title:       title,
		Description: description,
	}
	balance, err := s.store.CreateWithDebit(ctx, p)
	if err != nil {
		return nil, err
	}
	s.log.Info("project created",
		zap.String("project_id", p.ID),
		zap.String("client_id", caller.UserID),
		zap.Int("points_cost", p.PointsCost),
		zap.Int("points_balance", balance),
	)

	res := &CreateResult{Project: p, PointsBalance: balance}
	if len(in.Files) == 0 {
		return res, nil
	}

	updated, err := s.attach(ctx, p.ID, in.Files)
	if err != nil {
		return res, err
	}
	res.Project = updated
	return res, nil
}

// Assign sets the designer of a project and moves it to in_progress. The
// designer id is not checked against the profile store.
func (s *ProjectService) Assign(ctx context.Context, caller authdomain.Caller, id, designerID string) (*domain.Project, error) {
	if !caller.Is(authdomain.RoleProjectManager) {
		return nil, apperr.Forbidden("only project managers can assign designers")
	}
	designerID = strings.TrimSpace(designerID)
	if designerID == "" {
		return nil, apperr.Validation("designer id is required")
	}

	p, err := s.store.Assign(ctx, id, designerID)
	if err != nil {
		return nil, err
	}
	s.log.Info("project assigned", zap.String("project_id", id), zap.String("designer_id", designerID))
	return p, nil
}

// UpdateStatus sets the status of a project. Project managers may set any
// status; the assigned designer may only keep it or move it forward.
func (s *ProjectService) UpdateStatus(ctx context.Context, caller authdomain.Caller, id, raw string) (*domain.Project, error) {
	status, err := domain.ParseStatus(raw)
	if err != nil {
		return nil, apperr.Validation("status must be pending, in_progress or completed")
	}

	switch caller.Role {
	case authdomain.RoleProjectManager:
	case authdomain.RoleDesigner:
		current, err := s.store.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		// unassigned projects are invisible to designers
		if !current.IsAssignedTo(caller.UserID) {
			return nil, apperr.NotFound("project not found")
		}
		if !current.Status.CanAdvanceTo(status) {
			return nil, apperr.Validation("status cannot move backwards")
		}
	default:
		return nil, apperr.Forbidden("only project managers and the assigned designer can change status")
	}

	p, err := s.store.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.log.Info("project status updated",
		zap.String("project_id", id),
		zap.String("status", string(status)),
		zap.String("by", caller.UserID),
	)
	return p, nil
}

// Delete removes a project permanently. Its stored files are kept.
func (s *ProjectService) Delete(ctx context.Context, caller authdomain.Caller, id string) error {
	if !caller.Is(authdomain.RoleProjectManager) {
		return apperr.Forbidden("only project managers can delete projects")
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("project deleted", zap.String("project_id", id))
	return nil
}

// Update applies a partial field update.
func (s *ProjectService) Update(ctx context.Context, caller authdomain.Caller, id string, patch domain.Patch) (*domain.Project, error) {
	if !caller.Is(authdomain.RoleProjectManager) {
		return nil, apperr.Forbidden("only project managers can edit projects")
	}
	if patch.Empty() {
		return nil, apperr.Validation("nothing to update")
	}
	if patch.Title != nil {
		t := strings.TrimSpace(*patch.Title)
		if t == "" {
			return nil, apperr.Validation("title cannot be empty")
		}
		patch.Title = &t
	}
	if patch.Description != nil {
		d := strings.TrimSpace(*patch.Description)
		if d == "" {
			return nil, apperr.Validation("description cannot be empty")
		}
		patch.Description = &d
	}
	if patch.PointsCost != nil && *patch.PointsCost <= 0 {
		return nil, apperr.Validation("points cost must be positive")
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, apperr.Validation("status must be pending, in_progress or completed")
	}

	return s.store.Update(ctx, id, patch)
}

// AttachFiles uploads files to an existing project. The owning client and
// project managers may attach.
func (s *ProjectService) AttachFiles(ctx context.Context, caller authdomain.Caller, id string, files []domain.Upload) (*domain.Project, error) {
	if len(files) == 0 {
		return nil, apperr.Validation("no files to attach")
	}
	p, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if p.ClientID != caller.UserID && !caller.Is(authdomain.RoleProjectManager) {
		return nil, apperr.Forbidden("only the project owner can attach files")
	}
	return s.attach(ctx, id, files)
}

// attach uploads every file and appends the stored paths in order. Nothing
// is appended when any upload fails.
func (s *ProjectService) attach(ctx context.Context, id string, files []domain.Upload) (*domain.Project, error) {
	paths := make([]string, 0, len(files))
	for _, f := range files {
		key := objectstore.ProjectFileKey(id, f.Name)
		path, err := s.objects.Upload(ctx, key, f.Body, f.Size, f.ContentType)
		if err != nil {
			s.log.Warn("file upload failed",
				zap.String("project_id", id),
				zap.String("file", f.Name),
				zap.Error(err),
			)
			if apperr.KindOf(err) != apperr.KindUpload {
				err = apperr.Upload("file upload failed", err)
			}
			return nil, err
		}
		paths = append(paths, path)
	}
	return s.store.AppendFiles(ctx, id, paths)
}

// List returns the projects visible to the caller, newest first.
func (s *ProjectService) List(ctx context.Context, caller authdomain.Caller) ([]domain.Project, error) {
	switch caller.Role {
	case authdomain.RoleProjectManager:
		return s.store.List(ctx, domain.ListFilter{})
	case authdomain.RoleDesigner:
		return s.store.List(ctx, domain.ListFilter{DesignerID: caller.UserID})
	case authdomain.RoleClient:
		return s.store.List(ctx, domain.ListFilter{ClientID: caller.UserID})
	default:
		return nil, apperr.Forbidden("unknown role")
	}
}

// Get returns a project the caller may see. Projects outside the caller's
// view are reported as not found.
func (s *ProjectService) Get(ctx context.Context, caller authdomain.Caller, id string) (*domain.Project, error) {
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canSee(caller, p) {
		return nil, apperr.NotFound("project not found")
	}
	return p, nil
}

// SignedURL issues a time-limited download link for one of the project's files.
func (s *ProjectService) SignedURL(ctx context.Context, caller authdomain.Caller, id, path string) (string, time.Duration, error) {
	p, err := s.Get(ctx, caller, id)
	if err != nil {
		return "", 0, err
	}
	if !p.HasFile(path) {
		return "", 0, apperr.NotFound("file not found")
	}
	url, err := s.objects.SignedURL(ctx, path, s.signedURLTTL)
	if err != nil {
		return "", 0, err
	}
	return url, s.signedURLTTL, nil
}

func canSee(caller authdomain.Caller, p *domain.Project) bool {
	switch caller.Role {
	case authdomain.RoleProjectManager:
		return true
	case authdomain.RoleDesigner:
		return p.IsAssignedTo(caller.UserID)
	case authdomain.RoleClient:
		return p.ClientID == caller.UserID
	}
	return false
}
