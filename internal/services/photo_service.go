package services

import (
	"bytes"
	"context"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"photo-service/internal/models"
	"photo-service/internal/repository"
	"photo-service/internal/storage"
	"photo-service/internal/thumbnail"
	"photo-service/internal/utils"
)

// ThumbKeyPrefix namespaces derived thumbnails inside the flat bucket.
const ThumbKeyPrefix = "thumb_"

// PhotoService coordinates the object store and the metadata store across the
// photo lifecycle. Writes are ordered (objects before metadata on create,
// objects before metadata on delete) and compensated rather than wrapped in a
// distributed transaction.
type PhotoService struct {
	Repo       repository.PhotoRepository
	Users      repository.UserRepository
	Store      storage.ObjectStore
	URLs       *URLCache
	Metrics    *utils.Metrics
	PresignTTL time.Duration

	ThumbMaxWidth  int
	ThumbMaxHeight int
}

// NewPhotoService creates a PhotoService with the given collaborators.
func NewPhotoService(repo repository.PhotoRepository, users repository.UserRepository, store storage.ObjectStore, urls *URLCache, metrics *utils.Metrics, presignTTL time.Duration, thumbMaxWidth, thumbMaxHeight int) *PhotoService {
	return &PhotoService{
		Repo:           repo,
		Users:          users,
		Store:          store,
		URLs:           urls,
		Metrics:        metrics,
		PresignTTL:     presignTTL,
		ThumbMaxWidth:  thumbMaxWidth,
		ThumbMaxHeight: thumbMaxHeight,
	}
}

// PhotoView is a Photo with its capability URLs resolved. A nil URL means the
// object could not be resolved (or, for the thumbnail, does not exist).
type PhotoView struct {
	models.Photo
	ImageURL     *string `json:"image_url"`
	ThumbnailURL *string `json:"thumbnail_url"`
}

// PhotoUpdate carries a partial metadata update. Nil fields are left
// untouched; storage keys cannot be changed through this path.
type PhotoUpdate struct {
	Title *string
	Tags  *[]string
}

// UploadPhoto stores the original bytes, derives and stores a bounded
// thumbnail when the input is a decodable image, and commits one metadata row.
// The storage key is random; the client-supplied filename is never used as a
// key. If the metadata commit fails the stored objects are removed best-effort.
func (s *PhotoService) UploadPhoto(ctx context.Context, owner models.User, data []byte, filename, contentType string) (*models.Photo, error) {
	if owner.ID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if err := s.Users.Ensure(&owner); err != nil {
		return nil, errors.Wrap(err, "ensuring owner row")
	}

	photoID := uuid.New()
	storageKey := photoID.String() + strings.ToLower(filepath.Ext(filename))

	start := time.Now()
	if err := s.Store.Put(ctx, storageKey, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		s.Metrics.RecordUpload("failed", 0)
		return nil, errors.Wrapf(ErrStorageWrite, "storing original %s: %v", storageKey, err)
	}
	s.Metrics.ObserveStorageLatency("put_original", time.Since(start).Milliseconds())

	// Derive and store the thumbnail. A non-image upload or a failed thumbnail
	// write degrades to a missing thumbnail, never a failed upload.
	var thumbKey *string
	thumbData, err := thumbnail.Derive(data, s.ThumbMaxWidth, s.ThumbMaxHeight)
	switch {
	case errors.Is(err, thumbnail.ErrNotAnImage):
		log.Printf("Upload %s is not a decodable image, skipping thumbnail", storageKey)
		s.Metrics.IncThumbnailFailure()
	case err != nil:
		log.Printf("Thumbnail derivation failed for %s: %v", storageKey, err)
		s.Metrics.IncThumbnailFailure()
	default:
		key := ThumbKeyPrefix + storageKey
		start = time.Now()
		if err := s.Store.Put(ctx, key, bytes.NewReader(thumbData), int64(len(thumbData)), "image/jpeg"); err != nil {
			log.Printf("Failed to store thumbnail %s, continuing without one: %v", key, err)
			s.Metrics.IncThumbnailFailure()
		} else {
			s.Metrics.ObserveStorageLatency("put_thumbnail", time.Since(start).Milliseconds())
			thumbKey = &key
		}
	}

	title := filename
	if title == "" {
		title = storageKey
	}
	photo := &models.Photo{
		ID:               photoID,
		Title:            title,
		Tags:             []string{},
		StorageKey:       storageKey,
		ThumbnailKey:     thumbKey,
		OriginalFilename: filename,
		ContentType:      contentType,
		Size:             int64(len(data)),
		OwnerID:          owner.ID,
		CreatedAt:        time.Now(),
	}
	if err := s.Repo.Create(photo); err != nil {
		s.compensateUpload(ctx, storageKey, thumbKey)
		s.Metrics.RecordUpload("failed", 0)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			log.Printf("CONSISTENCY WARNING: duplicate storage key %s, key generation must be investigated", storageKey)
			return nil, errors.Wrapf(ErrDuplicateKey, "key %s", storageKey)
		}
		return nil, errors.Wrap(err, "failed to save metadata to database")
	}

	if thumbKey != nil {
		s.Metrics.RecordUpload("ok", photo.Size)
	} else {
		s.Metrics.RecordUpload("no_thumbnail", photo.Size)
	}
	return photo, nil
}

// compensateUpload removes the objects stored during a failed upload. Removal
// failures leave a transient orphan object and are logged for operator
// remediation; there is no shared transaction to roll back.
func (s *PhotoService) compensateUpload(ctx context.Context, storageKey string, thumbKey *string) {
	if err := s.Store.Remove(ctx, storageKey); err != nil {
		log.Printf("CONSISTENCY WARNING: orphaned object %s could not be removed: %v", storageKey, err)
		s.Metrics.IncConsistencyWarning()
	}
	if thumbKey != nil {
		if err := s.Store.Remove(ctx, *thumbKey); err != nil {
			log.Printf("CONSISTENCY WARNING: orphaned thumbnail %s could not be removed: %v", *thumbKey, err)
			s.Metrics.IncConsistencyWarning()
		}
	}
}

// ListPhotos returns a page of photos with capability URLs resolved, plus the
// total count matching the filter. A presign failure on one item nulls that
// item's URL and does not abort the listing.
func (s *PhotoService) ListPhotos(ctx context.Context, filter repository.PhotoFilter) ([]PhotoView, int64, error) {
	photos, total, err := s.Repo.List(filter)
	if err != nil {
		return nil, 0, errors.Wrap(err, "listing photos")
	}

	views := make([]PhotoView, 0, len(photos))
	for _, photo := range photos {
		views = append(views, s.resolveView(ctx, photo))
	}
	return views, total, nil
}

// GetPhoto returns one photo with capability URLs resolved.
func (s *PhotoService) GetPhoto(ctx context.Context, id uuid.UUID) (*PhotoView, error) {
	photo, err := s.Repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "fetching photo")
	}
	view := s.resolveView(ctx, *photo)
	return &view, nil
}

// UpdatePhoto applies a partial title/tags update after checking ownership.
// Storage keys are immutable; replacing an image requires a new upload.
func (s *PhotoService) UpdatePhoto(ctx context.Context, principal uuid.UUID, id uuid.UUID, update PhotoUpdate) (*models.Photo, error) {
	photo, err := s.authorize(principal, id)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		photo.Title = *update.Title
	}
	if update.Tags != nil {
		photo.Tags = *update.Tags
	}
	if err := s.Repo.Update(photo); err != nil {
		return nil, errors.Wrap(err, "updating photo metadata")
	}
	return photo, nil
}

// DeletePhoto removes the backing objects and then the metadata row. If the
// original object cannot be removed the row is left untouched and the caller
// may retry; a failed thumbnail removal is only a warning because the row
// must not keep pointing at a removed original.
func (s *PhotoService) DeletePhoto(ctx context.Context, principal uuid.UUID, id uuid.UUID) error {
	photo, err := s.authorize(principal, id)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := s.Store.Remove(ctx, photo.StorageKey); err != nil {
		return errors.Wrapf(ErrStorageDelete, "removing original %s: %v", photo.StorageKey, err)
	}
	s.Metrics.ObserveStorageLatency("remove_original", time.Since(start).Milliseconds())
	s.URLs.Invalidate(photo.StorageKey)

	if photo.ThumbnailKey != nil {
		if err := s.Store.Remove(ctx, *photo.ThumbnailKey); err != nil {
			log.Printf("CONSISTENCY WARNING: thumbnail %s left behind after delete: %v", *photo.ThumbnailKey, err)
			s.Metrics.IncConsistencyWarning()
		}
		s.URLs.Invalidate(*photo.ThumbnailKey)
	}

	if err := s.Repo.Delete(id); err != nil {
		log.Printf("CONSISTENCY WARNING: objects for photo %s removed but row deletion failed: %v", id, err)
		s.Metrics.IncConsistencyWarning()
		return errors.Wrap(err, "deleting photo metadata")
	}
	return nil
}

// CascadeDeleteOwner deletes every photo owned by the user through the
// regular delete sequence, then the user row itself.
func (s *PhotoService) CascadeDeleteOwner(ctx context.Context, ownerID uuid.UUID) error {
	if ownerID == uuid.Nil {
		return ErrUnauthenticated
	}
	photos, err := s.Repo.ListByOwner(ownerID)
	if err != nil {
		return errors.Wrap(err, "listing owned photos")
	}
	for _, photo := range photos {
		if err := s.DeletePhoto(ctx, ownerID, photo.ID); err != nil {
			return errors.Wrapf(err, "cascading delete of photo %s", photo.ID)
		}
	}
	return s.Users.Delete(ownerID)
}

// authorize loads the photo and checks the principal owns it.
func (s *PhotoService) authorize(principal uuid.UUID, id uuid.UUID) (*models.Photo, error) {
	if principal == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	photo, err := s.Repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "fetching photo")
	}
	if photo.OwnerID != principal {
		return nil, ErrForbidden
	}
	return photo, nil
}

// resolveView attaches capability URLs to a photo, serving repeat requests
// from the URL cache.
func (s *PhotoService) resolveView(ctx context.Context, photo models.Photo) PhotoView {
	view := PhotoView{Photo: photo}
	view.ImageURL = s.resolveURL(ctx, photo.StorageKey)
	if photo.ThumbnailKey != nil {
		view.ThumbnailURL = s.resolveURL(ctx, *photo.ThumbnailKey)
	}
	return view
}

func (s *PhotoService) resolveURL(ctx context.Context, key string) *string {
	if cached, ok := s.URLs.Get(key); ok {
		s.Metrics.IncPresignCacheHit()
		resolved := cached.String()
		return &resolved
	}
	s.Metrics.IncPresignCacheMiss()

	signed, err := s.Store.PresignedGet(ctx, key, s.PresignTTL)
	if err != nil {
		log.Printf("Failed to presign %s: %v", key, err)
		return nil
	}
	s.URLs.Put(key, signed)
	resolved := signed.String()
	return &resolved
}
