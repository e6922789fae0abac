package repository

import (
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"photo-service/internal/models"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// PhotoFilter narrows and pages a photo listing. Tag filtering is exact set
// membership, not substring matching. Owner is the optional hardening path
// for per-owner visibility and is nil on the default listing surface.
type PhotoFilter struct {
	Tag    string
	Owner  *uuid.UUID
	Limit  int
	Offset int
}

// PhotoRepository defines metadata persistence for photos. Each write runs in
// its own transaction; the uniqueness of StorageKey is enforced by the
// database, not by application logic.
type PhotoRepository interface {
	Create(photo *models.Photo) error
	GetByID(id uuid.UUID) (*models.Photo, error)
	List(filter PhotoFilter) ([]models.Photo, int64, error)
	ListByOwner(ownerID uuid.UUID) ([]models.Photo, error)
	Update(photo *models.Photo) error
	Delete(id uuid.UUID) error
}

// PhotoRepositoryImpl provides methods to interact with the Photo model in the database.
type PhotoRepositoryImpl struct {
	db *gorm.DB
}

// NewPhotoRepository creates a new PhotoRepositoryImpl instance with the provided GORM database connection.
func NewPhotoRepository(db *gorm.DB) *PhotoRepositoryImpl {
	return &PhotoRepositoryImpl{db: db}
}

// Create inserts a new Photo in its own transaction.
func (r *PhotoRepositoryImpl) Create(photo *models.Photo) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(photo).Error
	})
}

// GetByID retrieves a Photo by its ID from the database.
func (r *PhotoRepositoryImpl) GetByID(id uuid.UUID) (*models.Photo, error) {
	var photo models.Photo
	err := r.db.First(&photo, "id = ?", id).Error
	return &photo, err
}

// List retrieves a page of Photos matching the filter, most recent first,
// together with the total count of matching rows irrespective of the page
// window. Ties on created_at are broken by id for a deterministic order.
func (r *PhotoRepositoryImpl) List(filter PhotoFilter) ([]models.Photo, int64, error) {
	limit, offset := NormalizePage(filter.Limit, filter.Offset)

	query := r.db.Model(&models.Photo{})
	if filter.Tag != "" {
		query = tagContains(query, filter.Tag)
	}
	if filter.Owner != nil {
		query = query.Where("owner_id = ?", *filter.Owner)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var photos []models.Photo
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&photos).Error
	return photos, total, err
}

// ListByOwner retrieves every Photo owned by the given user.
func (r *PhotoRepositoryImpl) ListByOwner(ownerID uuid.UUID) ([]models.Photo, error) {
	var photos []models.Photo
	err := r.db.Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&photos).Error
	return photos, err
}

// Update saves an existing Photo in its own transaction.
func (r *PhotoRepositoryImpl) Update(photo *models.Photo) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Save(photo).Error
	})
}

// Delete removes a Photo by its ID in its own transaction.
func (r *PhotoRepositoryImpl) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Delete(&models.Photo{}, "id = ?", id).Error
	})
}

// NormalizePage clamps limit to [1,MaxPageLimit] (defaulting to
// DefaultPageLimit) and offset to >= 0.
func NormalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// tagContains filters rows whose tag set contains tag. Tags are stored as a
// JSON array; Postgres uses jsonb containment, other dialects fall back to
// json_each.
func tagContains(query *gorm.DB, tag string) *gorm.DB {
	switch query.Dialector.Name() {
	case "postgres":
		member, _ := json.Marshal([]string{tag})
		return query.Where("tags @> ?", string(member))
	default:
		return query.Where("EXISTS (SELECT 1 FROM json_each(photos.tags) WHERE json_each.value = ?)", tag)
	}
}
