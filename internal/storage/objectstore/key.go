package objectstore

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ProjectFileKey builds the bucket key for a file attached to a project:
// <project_id>/<random><ext>. The original file name is not kept.
func ProjectFileKey(projectID, fileName string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(fileName)))
	return projectID + "/" + uuid.NewString() + ext
}
