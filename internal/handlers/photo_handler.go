package handlers

import (
	"io"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"photo-service/internal/auth"
	"photo-service/internal/models"
	"photo-service/internal/repository"
	"photo-service/internal/services"
)

const InvalidUuidError = "invalid UUID"
const PhotoNotFoundError = "photo not found"

// PhotoHandler defines handlers for managing photo resources.
type PhotoHandler struct {
	Service *services.PhotoService
}

// NewPhotoHandler creates a new PhotoHandler with the given PhotoService.
func NewPhotoHandler(service *services.PhotoService) *PhotoHandler {
	return &PhotoHandler{Service: service}
}

// principal builds the authenticated user from request locals.
func principal(c *fiber.Ctx) models.User {
	return models.User{
		ID:    auth.PrincipalID(c),
		Email: auth.PrincipalEmail(c),
	}
}

// respondError maps coordinator errors to client-visible status codes.
// Storage failures stay a generic 500; internal detail goes to the log only.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": true, "message": PhotoNotFoundError,
		})
	case errors.Is(err, services.ErrUnauthenticated):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": true, "message": "authentication required",
		})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": true, "message": "not the owner of this photo",
		})
	case errors.Is(err, services.ErrStorageWrite), errors.Is(err, services.ErrStorageDelete), errors.Is(err, services.ErrDuplicateKey):
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": true, "message": "storage operation failed",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": true, "message": "internal error",
		})
	}
}

// UploadPhoto handles POST /photos/upload to store a new photo.
// @Summary Upload a photo
// @Description Stores the original image, derives a bounded thumbnail and commits the metadata
// @Tags photos
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image file"
// @Security BearerAuth
// @Success 201 {object} models.Photo "Photo successfully created"
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Failure 401 {object} map[string]interface{} "Unauthenticated"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /photos/upload [post]
func (h *PhotoHandler) UploadPhoto(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		log.Printf("Failed to read file: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "failed to read file: " + err.Error(),
		})
	}
	log.Printf("Processing photo upload: %s (%d bytes) from %s", fileHeader.Filename, fileHeader.Size, c.IP())

	src, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "failed to open file",
		})
	}
	data, err := io.ReadAll(src)
	src.Close()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "failed to read file",
		})
	}

	contentType := fileHeader.Header.Get(fiber.HeaderContentType)
	photo, err := h.Service.UploadPhoto(c.Context(), principal(c), data, fileHeader.Filename, contentType)
	if err != nil {
		log.Printf("Photo upload failed: %v", err)
		return respondError(c, err)
	}

	log.Printf("Successfully created photo: ID=%s, Key=%s", photo.ID, photo.StorageKey)
	return c.Status(fiber.StatusCreated).JSON(photo)
}

// UploadArchive handles POST /photos/upload-archive to ingest every image in an archive.
// @Summary Upload an archive of photos
// @Description Extracts a zip/tar archive and ingests each contained image as its own photo
// @Tags photos
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Archive file (.zip, .tar, .gz)"
// @Security BearerAuth
// @Success 201 {array} models.Photo "Created photos"
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Failure 401 {object} map[string]interface{} "Unauthenticated"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /photos/upload-archive [post]
func (h *PhotoHandler) UploadArchive(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "failed to read file: " + err.Error(),
		})
	}
	log.Printf("Processing archive upload: %s (%d bytes) from %s", fileHeader.Filename, fileHeader.Size, c.IP())

	src, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "failed to open file",
		})
	}
	data, err := io.ReadAll(src)
	src.Close()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "failed to read file",
		})
	}

	photos, err := h.Service.UploadArchive(c.Context(), principal(c), data, fileHeader.Filename)
	if err != nil {
		log.Printf("Archive upload failed: %v", err)
		if len(photos) > 0 {
			// Entries before the failure stayed committed.
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": true, "message": "archive partially ingested", "created": photos,
			})
		}
		if errors.Is(err, services.ErrStorageWrite) || errors.Is(err, services.ErrDuplicateKey) {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": err.Error(),
		})
	}

	log.Printf("Successfully ingested %d photos from archive %s", len(photos), fileHeader.Filename)
	return c.Status(fiber.StatusCreated).JSON(photos)
}

// ListPhotos handles GET /photos to retrieve a filtered, paginated listing.
// @Summary List photos
// @Description Lists photos most recent first with resolved capability URLs
// @Tags photos
// @Accept json
// @Produce json
// @Param limit query int false "Page size (1-100, default 20)"
// @Param offset query int false "Page offset (default 0)"
// @Param tag query string false "Only photos whose tag set contains this tag"
// @Success 200 {object} map[string]interface{} "Paged listing"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /photos [get]
func (h *PhotoHandler) ListPhotos(c *fiber.Ctx) error {
	filter := repository.PhotoFilter{
		Tag:    c.Query("tag"),
		Limit:  c.QueryInt("limit"),
		Offset: c.QueryInt("offset"),
	}

	items, total, err := h.Service.ListPhotos(c.Context(), filter)
	if err != nil {
		log.Printf("Error listing photos: %v", err)
		return respondError(c, err)
	}
	log.Printf("Successfully listed %d of %d photos", len(items), total)
	return c.JSON(fiber.Map{
		"items": items,
		"total": total,
	})
}

// GetPhoto handles GET /photos/:id to retrieve a single photo with URLs.
// @Summary Get a photo by ID
// @Description Get one photo's metadata with resolved capability URLs
// @Tags photos
// @Accept json
// @Produce json
// @Param id path string true "Photo ID"
// @Success 200 {object} services.PhotoView "Photo found"
// @Failure 400 {object} map[string]interface{} "Invalid UUID"
// @Failure 404 {object} map[string]interface{} "Photo not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /photos/{id} [get]
func (h *PhotoHandler) GetPhoto(c *fiber.Ctx) error {
	idStr := c.Params("id")
	photoID, err := uuid.Parse(idStr)
	if err != nil {
		log.Printf("Invalid UUID format: %s - Error: %v", idStr, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": InvalidUuidError,
		})
	}

	photo, err := h.Service.GetPhoto(c.Context(), photoID)
	if err != nil {
		log.Printf("Error fetching photo: ID=%s, Error=%v", photoID, err)
		return respondError(c, err)
	}
	return c.JSON(photo)
}

// UpdatePhoto handles PATCH /photos/:id for partial title/tags updates.
// @Summary Update a photo's metadata
// @Description Partially updates title and tags; storage keys are immutable
// @Tags photos
// @Accept json
// @Produce json
// @Param id path string true "Photo ID"
// @Param body body services.PhotoUpdate true "Fields to update"
// @Security BearerAuth
// @Success 200 {object} models.Photo "Updated photo"
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Failure 403 {object} map[string]interface{} "Forbidden"
// @Failure 404 {object} map[string]interface{} "Photo not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /photos/{id} [patch]
func (h *PhotoHandler) UpdatePhoto(c *fiber.Ctx) error {
	idStr := c.Params("id")
	photoID, err := uuid.Parse(idStr)
	if err != nil {
		log.Printf("Invalid UUID format for update: %s - Error: %v", idStr, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": InvalidUuidError,
		})
	}

	var body struct {
		Title *string   `json:"title"`
		Tags  *[]string `json:"tags"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "invalid request body",
		})
	}
	if body.Title != nil && *body.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "title must not be empty",
		})
	}

	photo, err := h.Service.UpdatePhoto(c.Context(), auth.PrincipalID(c), photoID, services.PhotoUpdate{
		Title: body.Title,
		Tags:  body.Tags,
	})
	if err != nil {
		log.Printf("Error updating photo: ID=%s, Error=%v", photoID, err)
		return respondError(c, err)
	}
	log.Printf("Successfully updated photo: ID=%s", photoID)
	return c.JSON(photo)
}

// DeletePhoto handles DELETE /photos/:id to remove a photo.
// @Summary Delete a photo
// @Description Removes the stored objects and then the metadata row
// @Tags photos
// @Accept json
// @Produce json
// @Param id path string true "Photo ID"
// @Security BearerAuth
// @Success 204 "No Content"
// @Failure 400 {object} map[string]interface{} "Invalid UUID"
// @Failure 403 {object} map[string]interface{} "Forbidden"
// @Failure 404 {object} map[string]interface{} "Photo not found"
// @Failure 500 {object} map[string]interface{} "Storage delete failed; retryable"
// @Router /photos/{id} [delete]
func (h *PhotoHandler) DeletePhoto(c *fiber.Ctx) error {
	idStr := c.Params("id")
	photoID, err := uuid.Parse(idStr)
	if err != nil {
		log.Printf("Invalid UUID format for delete: %s - Error: %v", idStr, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": InvalidUuidError,
		})
	}

	if err := h.Service.DeletePhoto(c.Context(), auth.PrincipalID(c), photoID); err != nil {
		log.Printf("Error deleting photo: ID=%s, Error=%v", photoID, err)
		return respondError(c, err)
	}
	log.Printf("Successfully deleted photo: ID=%s", photoID)
	return c.SendStatus(fiber.StatusNoContent)
}
