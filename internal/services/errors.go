package services

import "github.com/pkg/errors"

// Sentinel errors separating expected conditions from storage I/O failures.
// Handlers map these to status codes; wrapped causes stay out of responses.
var (
	// ErrNotFound means the referenced photo does not exist.
	ErrNotFound = errors.New("photo not found")

	// ErrUnauthenticated means no principal was supplied for an operation
	// that requires one.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrForbidden means the principal is not the owner of the target photo.
	ErrForbidden = errors.New("principal does not own this photo")

	// ErrStorageWrite means the object store rejected a write. Nothing was
	// committed to the database.
	ErrStorageWrite = errors.New("object storage write failed")

	// ErrStorageDelete means the object store rejected the removal of the
	// original object. The metadata row was left untouched so the caller can
	// retry.
	ErrStorageDelete = errors.New("object storage delete failed")

	// ErrDuplicateKey means a generated storage key collided with an existing
	// row. Keys are random, so this signals a key-generation defect and is
	// never retried with the same key.
	ErrDuplicateKey = errors.New("storage key already exists")
)
