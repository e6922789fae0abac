package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the principal on whose behalf photos are created and mutated.
// Registration and credential handling live outside this service; rows here
// are materialized from verified token claims so ownership can be enforced
// and cascaded.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Photos []Photo `json:"photos,omitempty" gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
}
