package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/grayola/task-manager/internal/apperr"
	authdomain "github.com/grayola/task-manager/internal/auth/domain"
	"github.com/grayola/task-manager/internal/projects/domain"
)

const designerFanOut = 8

// Designers returns every designer with their assigned projects. Each
// designer's projects come from a separate filtered query.
func (s *ProjectService) Designers(ctx context.Context, caller authdomain.Caller) ([]domain.DesignerWorkload, error) {
	if !caller.Is(authdomain.RoleProjectManager) {
		return nil, apperr.Forbidden("only project managers can list designers")
	}

	designers, err := s.profiles.ListByRole(ctx, authdomain.RoleDesigner)
	if err != nil {
		return nil, err
	}

	out := make([]domain.DesignerWorkload, len(designers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(designerFanOut)
	for i, d := range designers {
		out[i] = domain.DesignerWorkload{DesignerID: d.ID, Email: d.Email}
		g.Go(func() error {
			projects, err := s.store.List(gctx, domain.ListFilter{DesignerID: d.ID})
			if err != nil {
				return err
			}
			out[i].Projects = projects
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
