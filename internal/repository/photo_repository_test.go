package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"photo-service/internal/models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Photo{}))
	return db
}

func testUser(t *testing.T, db *gorm.DB) models.User {
	t.Helper()
	user := models.User{ID: uuid.New(), Email: uuid.NewString() + "@example.com"}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func testPhoto(owner uuid.UUID, createdAt time.Time, tags ...string) models.Photo {
	id := uuid.New()
	if tags == nil {
		tags = []string{}
	}
	return models.Photo{
		ID:               id,
		Title:            "photo " + id.String()[:8],
		Tags:             tags,
		StorageKey:       id.String() + ".jpg",
		OriginalFilename: "upload.jpg",
		ContentType:      "image/jpeg",
		Size:             1024,
		OwnerID:          owner,
		CreatedAt:        createdAt,
	}
}

func TestPhotoRepositoryCreate(t *testing.T) {
	db := testDB(t)
	repo := NewPhotoRepository(db)
	owner := testUser(t, db)

	t.Run("create and fetch round trip", func(t *testing.T) {
		photo := testPhoto(owner.ID, time.Now())
		thumb := "thumb_" + photo.StorageKey
		photo.ThumbnailKey = &thumb
		require.NoError(t, repo.Create(&photo))

		got, err := repo.GetByID(photo.ID)
		require.NoError(t, err)
		assert.Equal(t, photo.StorageKey, got.StorageKey)
		require.NotNil(t, got.ThumbnailKey)
		assert.Equal(t, thumb, *got.ThumbnailKey)
	})

	t.Run("duplicate storage key is rejected by the database", func(t *testing.T) {
		first := testPhoto(owner.ID, time.Now())
		require.NoError(t, repo.Create(&first))

		second := testPhoto(owner.ID, time.Now())
		second.StorageKey = first.StorageKey
		err := repo.Create(&second)
		require.Error(t, err)
		assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	})

	t.Run("missing photo returns record not found", func(t *testing.T) {
		_, err := repo.GetByID(uuid.New())
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestPhotoRepositoryList(t *testing.T) {
	t.Run("pages cover the ordered set without duplicates or gaps", func(t *testing.T) {
		db := testDB(t)
		repo := NewPhotoRepository(db)
		owner := testUser(t, db)

		base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
		for i := 0; i < 25; i++ {
			photo := testPhoto(owner.ID, base.Add(time.Duration(i)*time.Minute))
			require.NoError(t, repo.Create(&photo))
		}

		seen := make(map[uuid.UUID]bool)
		var ordered []models.Photo
		for offset := 0; ; offset += 10 {
			page, total, err := repo.List(PhotoFilter{Limit: 10, Offset: offset})
			require.NoError(t, err)
			assert.EqualValues(t, 25, total)
			if len(page) == 0 {
				break
			}
			for _, photo := range page {
				assert.False(t, seen[photo.ID], "photo %s returned twice", photo.ID)
				seen[photo.ID] = true
			}
			ordered = append(ordered, page...)
		}
		require.Len(t, ordered, 25)
		for i := 1; i < len(ordered); i++ {
			assert.False(t, ordered[i].CreatedAt.After(ordered[i-1].CreatedAt),
				"listing must be most recent first")
		}
	})

	t.Run("created_at ties break by id descending", func(t *testing.T) {
		db := testDB(t)
		repo := NewPhotoRepository(db)
		owner := testUser(t, db)

		at := time.Date(2026, 2, 2, 8, 0, 0, 0, time.UTC)
		for i := 0; i < 5; i++ {
			photo := testPhoto(owner.ID, at)
			require.NoError(t, repo.Create(&photo))
		}
		page, _, err := repo.List(PhotoFilter{Limit: 5})
		require.NoError(t, err)
		require.Len(t, page, 5)
		for i := 1; i < len(page); i++ {
			assert.Greater(t, page[i-1].ID.String(), page[i].ID.String())
		}
	})

	t.Run("tag filter is exact membership", func(t *testing.T) {
		db := testDB(t)
		repo := NewPhotoRepository(db)
		owner := testUser(t, db)

		match := testPhoto(owner.ID, time.Now(), "x", "y")
		require.NoError(t, repo.Create(&match))
		prefix := testPhoto(owner.ID, time.Now(), "xy")
		require.NoError(t, repo.Create(&prefix))
		substring := testPhoto(owner.ID, time.Now(), "ax")
		require.NoError(t, repo.Create(&substring))
		empty := testPhoto(owner.ID, time.Now())
		require.NoError(t, repo.Create(&empty))

		page, total, err := repo.List(PhotoFilter{Tag: "x"})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, page, 1)
		assert.Equal(t, match.ID, page[0].ID)
	})

	t.Run("total ignores the page window", func(t *testing.T) {
		db := testDB(t)
		repo := NewPhotoRepository(db)
		owner := testUser(t, db)

		for i := 0; i < 7; i++ {
			photo := testPhoto(owner.ID, time.Now(), "keep")
			require.NoError(t, repo.Create(&photo))
		}
		page, total, err := repo.List(PhotoFilter{Tag: "keep", Limit: 2, Offset: 4})
		require.NoError(t, err)
		assert.EqualValues(t, 7, total)
		assert.Len(t, page, 2)
	})

	t.Run("owner filter scopes the listing", func(t *testing.T) {
		db := testDB(t)
		repo := NewPhotoRepository(db)
		alice := testUser(t, db)
		bob := testUser(t, db)

		mine := testPhoto(alice.ID, time.Now())
		require.NoError(t, repo.Create(&mine))
		theirs := testPhoto(bob.ID, time.Now())
		require.NoError(t, repo.Create(&theirs))

		page, total, err := repo.List(PhotoFilter{Owner: &alice.ID})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, page, 1)
		assert.Equal(t, mine.ID, page[0].ID)
	})
}

func TestPhotoRepositoryUpdateDelete(t *testing.T) {
	db := testDB(t)
	repo := NewPhotoRepository(db)
	owner := testUser(t, db)

	photo := testPhoto(owner.ID, time.Now())
	require.NoError(t, repo.Create(&photo))

	photo.Title = "renamed"
	photo.Tags = []string{"a"}
	require.NoError(t, repo.Update(&photo))

	got, err := repo.GetByID(photo.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)
	assert.Equal(t, []string{"a"}, []string(got.Tags))

	require.NoError(t, repo.Delete(photo.ID))
	_, err = repo.GetByID(photo.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository(t *testing.T) {
	db := testDB(t)
	users := NewUserRepository(db)

	user := models.User{ID: uuid.New(), Email: "carol@example.com"}
	require.NoError(t, users.Ensure(&user))
	// Ensure is idempotent for the same principal.
	require.NoError(t, users.Ensure(&models.User{ID: user.ID, Email: user.Email}))

	got, err := users.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "carol@example.com", got.Email)

	require.NoError(t, users.Delete(user.ID))
	_, err = users.GetByID(user.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestNormalizePage(t *testing.T) {
	cases := []struct {
		name               string
		limit, offset      int
		expLimit, expOffset int
	}{
		{"defaults", 0, 0, DefaultPageLimit, 0},
		{"negative limit", -5, 0, DefaultPageLimit, 0},
		{"clamped to max", 500, 0, MaxPageLimit, 0},
		{"upper bound kept", 100, 0, 100, 0},
		{"negative offset", 10, -3, 10, 0},
		{"passthrough", 42, 7, 42, 7},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			limit, offset := NormalizePage(tc.limit, tc.offset)
			if limit != tc.expLimit || offset != tc.expOffset {
				t.Fatalf("NormalizePage(%d,%d) = (%d,%d), want (%d,%d)",
					tc.limit, tc.offset, limit, offset, tc.expLimit, tc.expOffset)
			}
		})
	}
}
