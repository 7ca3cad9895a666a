package db

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	storage_go "github.com/supabase-community/storage-go"

	"github.com/lucianomirandaGherzoni/api-crud-berlini/config"
	m "github.com/lucianomirandaGherzoni/api-crud-berlini/models"
)

// objectStore is the slice of the storage backend the image lifecycle needs.
// It exists so tests can substitute a fake without a network.
type objectStore interface {
	Upload(path string, data io.Reader, contentType string) error
	Remove(path string) error
	PublicURL(path string) string
}

type supabaseStore struct {
	client *storage_go.Client
	bucket string
}

func newSupabaseStore(cfg config.Config) *supabaseStore {
	return &supabaseStore{
		client: storage_go.NewClient(cfg.SupabaseURL+"/storage/v1", cfg.ServiceKey, nil),
		bucket: cfg.Bucket,
	}
}

func (s *supabaseStore) Upload(path string, data io.Reader, contentType string) error {
	upsert := false
	_, err := s.client.UploadFile(s.bucket, path, data, storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	return err
}

func (s *supabaseStore) Remove(path string) error {
	_, err := s.client.RemoveFile(s.bucket, []string{path})
	return err
}

func (s *supabaseStore) PublicURL(path string) string {
	return s.client.GetPublicUrl(s.bucket, path).SignedURL
}

// imageKey builds a collision-resistant object key that keeps the uploaded
// file's extension: "<unix-millis>-<random-token><ext>".
func imageKey(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString(), ext)
}

// UploadImage stores the blob under a fresh key in the configured bucket,
// never overwriting an existing object, and returns its public URL.
func (s *DBService) UploadImage(data []byte, originalName, contentType string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("no image data provided")
	}
	key := imageKey(originalName)
	if err := s.store.Upload(key, bytes.NewReader(data), contentType); err != nil {
		return "", fmt.Errorf("upload image %s: %w", key, err)
	}
	url := s.store.PublicURL(key)
	if url == "" {
		return "", fmt.Errorf("resolve public URL for %s", key)
	}
	return url, nil
}

// DeleteImage removes the blob a previously issued URL points at. The result
// says what actually happened; backend failures are reported in the result
// and logged, not raised, so row deletion can proceed with an orphaned blob
// at worst.
func (s *DBService) DeleteImage(url string) m.ImageDeleteResult {
	if url == "" {
		return m.ImageDeleteSkipped
	}
	path, ok := bucketPath(url, s.bucket)
	if !ok {
		log.Printf("Image URL %q does not reference bucket %q, skipping delete", url, s.bucket)
		return m.ImageDeleteSkipped
	}
	if err := s.store.Remove(path); err != nil {
		log.Printf("Failed to delete image %s: %v", path, err)
		return m.ImageDeleteFailed
	}
	return m.ImageDeleted
}

// bucketPath extracts the bucket-relative object path from a public URL by
// locating the bucket name as a path segment.
func bucketPath(url, bucket string) (string, bool) {
	marker := "/" + bucket + "/"
	idx := strings.Index(url, marker)
	if idx < 0 {
		return "", false
	}
	path := url[idx+len(marker):]
	if path == "" {
		return "", false
	}
	return path, true
}
