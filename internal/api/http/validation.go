package http

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	authdomain "github.com/grayola/task-manager/internal/auth/domain"
	projectdomain "github.com/grayola/task-manager/internal/projects/domain"
)

var registerOnce sync.Once

// RegisterValidators adds the "role" and "project_status" tags to gin's
// binding validator.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
			return authdomain.Role(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("project_status", func(fl validator.FieldLevel) bool {
			return projectdomain.Status(fl.Field().String()).Valid()
		})
	})
}
