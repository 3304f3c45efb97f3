package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/kendall-kelly/cnc-shop-api/utils"
)

// DesignFileStore keeps the cutting files (DXF, SVG, PDF...) attached to orders.
type DesignFileStore interface {
	// Upload validates and stores a design file for an order, returning its key.
	Upload(ctx context.Context, orderID uint, fileHeader *multipart.FileHeader) (string, error)

	// URL returns a link the dashboard can download the file from.
	URL(ctx context.Context, key string) (string, error)

	// Delete removes a stored file. Deleting an empty key is a no-op.
	Delete(ctx context.Context, key string) error
}

// S3DesignStore stores design files in S3 under designs/order-<id>/.
type S3DesignStore struct {
	s3 S3Interface
}

// NewS3DesignStore creates a design file store backed by s3.
func NewS3DesignStore(s3 S3Interface) *S3DesignStore {
	return &S3DesignStore{s3: s3}
}

func (s *S3DesignStore) Upload(ctx context.Context, orderID uint, fileHeader *multipart.FileHeader) (string, error) {
	if err := utils.ValidateDesignFile(fileHeader); err != nil {
		return "", err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	key := fmt.Sprintf("designs/order-%d/%s", orderID, designObjectName(fileHeader.Filename))
	if err := s.s3.PutObject(ctx, key, file, utils.DesignContentType(fileHeader.Filename)); err != nil {
		return "", fmt.Errorf("failed to upload design file: %w", err)
	}
	return key, nil
}

func (s *S3DesignStore) URL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}
	url, err := s.s3.GetPresignedURL(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to generate design file URL: %w", err)
	}
	return url, nil
}

func (s *S3DesignStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	if err := s.s3.DeleteObject(ctx, key); err != nil {
		return fmt.Errorf("failed to delete design file: %w", err)
	}
	return nil
}

// LocalDesignStore writes design files into a directory served by the API.
type LocalDesignStore struct {
	dir string
}

// NewLocalDesignStore creates a design file store rooted at dir.
func NewLocalDesignStore(dir string) *LocalDesignStore {
	return &LocalDesignStore{dir: dir}
}

func (l *LocalDesignStore) Upload(ctx context.Context, orderID uint, fileHeader *multipart.FileHeader) (string, error) {
	if err := utils.ValidateDesignFile(fileHeader); err != nil {
		return "", err
	}

	name := fmt.Sprintf("order-%d_%s", orderID, designObjectName(fileHeader.Filename))
	if err := utils.SaveUploadedFile(fileHeader, l.dir, name); err != nil {
		return "", err
	}
	return name, nil
}

func (l *LocalDesignStore) URL(ctx context.Context, key string) (string, error) {
	return utils.GetUploadURL(key), nil
}

func (l *LocalDesignStore) Delete(ctx context.Context, key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) {
		return nil
	}
	if err := os.Remove(filepath.Join(l.dir, key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete design file: %w", err)
	}
	return nil
}

// designObjectName prefixes the client's file name with a short random id so
// re-uploads of the same name never collide.
func designObjectName(filename string) string {
	return uuid.NewString()[:8] + "_" + utils.SafeFilename(filename)
}
