package services

import (
	"context"
	"io"
	"io/fs"
	"log"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/mholt/archives"
	"github.com/pkg/errors"

	"photo-service/internal/models"
)

// isImageExtension reports whether a file extension is a supported photo format.
func isImageExtension(ext string) bool {
	images := map[string]bool{
		".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	}
	return images[ext]
}

// shouldIgnoreFile checks if a file should be ignored (system files, hidden files, etc.)
func shouldIgnoreFile(filename string) bool {
	if strings.HasPrefix(filename, "._") {
		return true
	}
	if strings.HasPrefix(filename, ".") {
		return true
	}
	if strings.ToLower(filename) == "thumbs.db" {
		return true
	}
	return filename == "" || strings.HasSuffix(filename, "/")
}

// UploadArchive ingests every image inside a zip/tar archive as its own
// photo through the regular upload sequence. Non-image entries are skipped.
// Photos ingested before a failing entry stay committed; the error reports
// the entry that failed.
func (s *PhotoService) UploadArchive(ctx context.Context, owner models.User, data []byte, filename string) ([]*models.Photo, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".zip" && ext != ".tar" && ext != ".gz" && ext != ".tgz" {
		return nil, errors.Errorf("unsupported archive format: %s", ext)
	}

	// archives opens by path, so the upload goes through a temp file.
	tempArchive, err := os.CreateTemp("", "photo-archive-*"+ext)
	if err != nil {
		return nil, errors.Wrap(err, "could not create temporary file for archive")
	}
	tempPath := tempArchive.Name()
	defer os.Remove(tempPath)
	if _, err := tempArchive.Write(data); err != nil {
		tempArchive.Close()
		return nil, errors.Wrap(err, "failed to write uploaded archive")
	}
	tempArchive.Close()

	fsys, err := archives.FileSystem(ctx, tempPath, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open archive")
	}

	var photos []*models.Photo
	err = fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := filepath.Base(path)
		if shouldIgnoreFile(name) {
			return nil
		}
		entryExt := strings.ToLower(filepath.Ext(name))
		if !isImageExtension(entryExt) {
			log.Printf("Skipping non-image archive entry %s", path)
			return nil
		}

		reader, err := fsys.Open(path)
		if err != nil {
			return errors.Wrapf(err, "opening archive entry %s", path)
		}
		raw, err := io.ReadAll(reader)
		reader.Close()
		if err != nil {
			return errors.Wrapf(err, "reading archive entry %s", path)
		}

		contentType := mime.TypeByExtension(entryExt)
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		photo, err := s.UploadPhoto(ctx, owner, raw, name, contentType)
		if err != nil {
			return errors.Wrapf(err, "ingesting archive entry %s", path)
		}
		photos = append(photos, photo)
		return nil
	})
	if err != nil {
		return photos, err
	}
	if len(photos) == 0 {
		return nil, errors.New("no image files found in archive")
	}
	return photos, nil
}
