package http

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	apihttp "github.com/grayola/task-manager/internal/api/http"
	"github.com/grayola/task-manager/internal/apperr"
	"github.com/grayola/task-manager/internal/auth"
	authdomain "github.com/grayola/task-manager/internal/auth/domain"
	"github.com/grayola/task-manager/internal/projects/domain"
)

func callerOrAbort(c *gin.Context) (authdomain.Caller, bool) {
	caller, ok := auth.CallerFrom(c)
	if !ok {
		apihttp.WriteError(c, apperr.Auth("user not authenticated", nil))
	}
	return caller, ok
}

func (h *Handler) offerings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "offerings": domain.Catalog()})
}

// create accepts JSON, or a multipart form with optional "files" parts.
func (h *Handler) create(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}

	var (
		req     createReq
		uploads []domain.Upload
	)
	if isMultipart(c) {
		if err := c.ShouldBindWith(&req, binding.FormMultipart); err != nil {
			apihttp.BadRequest(c, err)
			return
		}
		files, closeAll, err := h.openUploads(c)
		if err != nil {
			apihttp.WriteError(c, err)
			return
		}
		defer closeAll()
		uploads = files
	} else if err := c.ShouldBindJSON(&req); err != nil {
		apihttp.BadRequest(c, err)
		return
	}

	res, err := h.workflow.Create(c.Request.Context(), caller, domain.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Offering:    req.Offering,
		Files:       uploads,
	})
	if err != nil {
		apihttp.WriteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": res.Project, "points_balance": res.PointsBalance})
}

func (h *Handler) list(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	items, err := h.workflow.List(c.Request.Context(), caller)
	if err != nil {
		apihttp.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": items})
}

func (h *Handler) get(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	p, err := h.workflow.Get(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		apihttp.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) update(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apihttp.BadRequest(c, err)
		return
	}
	p, err := h.workflow.Update(c.Request.Context(), caller, c.Param("id"), req.patch())
	if err != nil {
		apihttp.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) delete(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	if err := h.workflow.Delete(c.Request.Context(), caller, c.Param("id")); err != nil {
		apihttp.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) assign(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	var req assignReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apihttp.BadRequest(c, err)
		return
	}
	p, err := h.workflow.Assign(c.Request.Context(), caller, c.Param("id"), req.DesignerID)
	if err != nil {
		apihttp.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) updateStatus(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	var req statusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apihttp.BadRequest(c, err)
		return
	}
	p, err := h.workflow.UpdateStatus(c.Request.Context(), caller, c.Param("id"), req.Status)
	if err != nil {
		apihttp.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) attachFiles(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	if !isMultipart(c) {
		apihttp.WriteError(c, apperr.Validation("multipart form with files is required"))
		return
	}
	uploads, closeAll, err := h.openUploads(c)
	if err != nil {
		apihttp.WriteError(c, err)
		return
	}
	defer closeAll()

	p, err := h.workflow.AttachFiles(c.Request.Context(), caller, c.Param("id"), uploads)
	if err != nil {
		apihttp.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) signedURL(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	path := strings.TrimSpace(c.Query("path"))
	if path == "" {
		apihttp.WriteError(c, apperr.Validation("path is required"))
		return
	}
	url, ttl, err := h.workflow.SignedURL(c.Request.Context(), caller, c.Param("id"), path)
	if err != nil {
		apihttp.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "url": url, "expires_in": int(ttl.Seconds())})
}

func (h *Handler) designers(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	out, err := h.workflow.Designers(c.Request.Context(), caller)
	if err != nil {
		apihttp.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "designers": out})
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// openUploads opens every "files" part of the multipart form. The returned
// func closes them.
func (h *Handler) openUploads(c *gin.Context) ([]domain.Upload, func(), error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, func() {}, apperr.Validation("invalid multipart form")
	}

	headers := form.File["files"]
	uploads := make([]domain.Upload, 0, len(headers))
	opened := make([]io.Closer, 0, len(headers))
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	for _, fh := range headers {
		if fh.Size > h.maxFileSize {
			closeAll()
			return nil, func() {}, apperr.Validation(fmt.Sprintf("file %q exceeds %d bytes", fh.Filename, h.maxFileSize))
		}
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, apperr.Validation(fmt.Sprintf("cannot read file %q", fh.Filename))
		}
		opened = append(opened, f)
		uploads = append(uploads, domain.Upload{
			Name:        fh.Filename,
			ContentType: contentType(fh),
			Size:        fh.Size,
			Body:        f,
		})
	}
	return uploads, closeAll, nil
}

func contentType(fh *multipart.FileHeader) string {
	if ct := fh.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
