package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"photo-service/internal/auth"
	"photo-service/internal/services"
)

// UserHandler defines handlers for principal lifecycle operations.
type UserHandler struct {
	Service *services.PhotoService
}

// NewUserHandler creates a new UserHandler with the given PhotoService.
func NewUserHandler(service *services.PhotoService) *UserHandler {
	return &UserHandler{Service: service}
}

// DeleteAccount handles DELETE /users/me. Deleting a principal cascades to
// every owned photo and its backing objects.
// @Summary Delete the authenticated user
// @Description Removes the user, all owned photos and their stored objects
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 204 "No Content"
// @Failure 401 {object} map[string]interface{} "Unauthenticated"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /users/me [delete]
func (h *UserHandler) DeleteAccount(c *fiber.Ctx) error {
	ownerID := auth.PrincipalID(c)
	log.Printf("Cascade deleting account %s", ownerID)

	if err := h.Service.CascadeDeleteOwner(c.Context(), ownerID); err != nil {
		log.Printf("Error cascade deleting account %s: %v", ownerID, err)
		return respondError(c, err)
	}
	log.Printf("Successfully deleted account %s", ownerID)
	return c.SendStatus(fiber.StatusNoContent)
}
