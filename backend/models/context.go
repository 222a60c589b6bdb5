package models

import (
	"strconv"
	"strings"
)

type ContextLevel int

const (
	LevelSystem   ContextLevel = 10
	LevelCategory ContextLevel = 40
	LevelCourse   ContextLevel = 50
	LevelModule   ContextLevel = 70
)

// Context is a node of the permission tree. Path holds the ids from the
// root down to the node itself, e.g. "/1/4/27".
type Context struct {
	ID         uint         `gorm:"primaryKey"`
	Level      ContextLevel `gorm:"index:idx_context_instance"`
	InstanceID uint         `gorm:"index:idx_context_instance"`
	Path       string
}

// ParentIDs returns the ids of all ancestors, root first, optionally
// followed by the context's own id.
func (c Context) ParentIDs(includeSelf bool) []uint {
	var ids []uint
	for _, part := range strings.Split(strings.Trim(c.Path, "/"), "/") {
		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil || uint(id) == c.ID {
			continue
		}
		ids = append(ids, uint(id))
	}
	if includeSelf {
		ids = append(ids, c.ID)
	}
	return ids
}
