package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Photo represents the metadata of an uploaded photograph stored in the database.
// StorageKey and ThumbnailKey point at objects in the bucket; StorageKey is
// immutable after creation and ThumbnailKey is only set when a thumbnail was
// actually stored.
type Photo struct {
	ID               uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	Title            string                      `gorm:"not null" json:"title"`
	Tags             datatypes.JSONSlice[string] `json:"tags"`
	StorageKey       string                      `gorm:"uniqueIndex;not null" json:"storage_key"`
	ThumbnailKey     *string                     `json:"thumbnail_key,omitempty"`
	OriginalFilename string                      `json:"original_filename"`
	ContentType      string                      `json:"content_type"`
	Size             int64                       `json:"size"`
	OwnerID          uuid.UUID                   `gorm:"type:uuid;index;not null" json:"owner_id"`
	CreatedAt        time.Time                   `json:"created_at"`
}
