package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
)

const (
	// MaxDesignFileSize is 25MB in bytes
	MaxDesignFileSize = 25 * 1024 * 1024
)

var (
	// UploadDir is where design files are kept when no bucket is configured.
	// Tests point it at a temp dir.
	UploadDir = "./uploads"

	// designContentTypes maps accepted design file extensions to the content
	// type they are served with.
	designContentTypes = map[string]string{
		".dxf":  "image/vnd.dxf",
		".svg":  "image/svg+xml",
		".pdf":  "application/pdf",
		".png":  "image/png",
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
	}
)

// FileUploadError represents a file upload validation error
type FileUploadError struct {
	Code    string
	Message string
}

func (e *FileUploadError) Error() string {
	return e.Message
}

// DesignContentType returns the content type for a design file name, or ""
// when the extension is not accepted.
func DesignContentType(filename string) string {
	return designContentTypes[strings.ToLower(filepath.Ext(filename))]
}

// ValidateDesignFile checks the size and extension of an uploaded design file.
func ValidateDesignFile(fileHeader *multipart.FileHeader) error {
	if fileHeader.Size > MaxDesignFileSize {
		return &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", MaxDesignFileSize/(1024*1024)),
		}
	}

	if DesignContentType(fileHeader.Filename) == "" {
		return &FileUploadError{
			Code:    "INVALID_FILE_FORMAT",
			Message: "Only DXF, SVG, PDF, PNG and JPEG design files are allowed",
		}
	}

	return nil
}

// SaveUploadedFile copies the uploaded file into uploadDir under filename.
func SaveUploadedFile(fileHeader *multipart.FileHeader, uploadDir, filename string) (err error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(uploadDir, filename))
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer func() {
		if closeErr := dst.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close destination file: %w", closeErr)
		}
	}()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}
	return nil
}

// SafeFilename strips any directory part and characters that would not
// survive as a single URL path segment.
func SafeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}

// GetUploadURL returns the API path that serves a locally stored file.
func GetUploadURL(filename string) string {
	if filename == "" {
		return ""
	}
	return fmt.Sprintf("/api/v1/uploads/%s", filename)
}
