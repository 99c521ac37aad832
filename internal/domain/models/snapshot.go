package models

import (
	"errors"
	"time"
)

// ErrSnapshotNotFound is returned when a project has no stored snapshot.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// ProjectSnapshot is a saved project document as stored by the repositories.
type ProjectSnapshot struct {
	ProjectCode string    `bson:"project_code" json:"project_code"`
	Title       string    `bson:"title" json:"title"`
	Total       string    `bson:"total" json:"total"`
	Format      string    `bson:"format" json:"format"`
	Payload     []byte    `bson:"payload" json:"-"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}
