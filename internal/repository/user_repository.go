package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"photo-service/internal/models"
)

// UserRepository persists principals. Rows are materialized lazily from
// verified token claims; the token issuer itself lives outside this service.
type UserRepository interface {
	Ensure(user *models.User) error
	GetByID(id uuid.UUID) (*models.User, error)
	Delete(id uuid.UUID) error
}

// UserRepositoryImpl provides methods to interact with the User model in the database.
type UserRepositoryImpl struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepositoryImpl instance with the provided GORM database connection.
func NewUserRepository(db *gorm.DB) *UserRepositoryImpl {
	return &UserRepositoryImpl{db: db}
}

// Ensure inserts the user if no row with that ID exists yet.
func (r *UserRepositoryImpl) Ensure(user *models.User) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(user).Error
}

// GetByID retrieves a User by its ID from the database.
func (r *UserRepositoryImpl) GetByID(id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, "id = ?", id).Error
	return &user, err
}

// Delete removes a User row. Owned photo rows and their backing objects must
// already have been removed through the coordinator's cascade.
func (r *UserRepositoryImpl) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Delete(&models.User{}, "id = ?", id).Error
	})
}
