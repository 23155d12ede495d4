package utils

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/disintegration/imaging"
)

const (
	// Base directory for storing uploaded files
	uploadBaseDir = "uploads"
	// Base URL for serving files
	baseURL = "/uploads"
	// Maximum file size (10MB)
	maxFileSize = 10 * 1024 * 1024
)

// Allowed image extensions
var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".svg":  true,
}

// cleanFilename removes any potentially dangerous characters from the filename
func cleanFilename(filename string) string {
	// Remove any path components
	filename = filepath.Base(filename)
	// Remove any non-alphanumeric characters except for dots and hyphens
	reg := regexp.MustCompile(`[^a-zA-Z0-9.-]`)
	return reg.ReplaceAllString(filename, "")
}

// ValidateFileType checks if the file extension is allowed for the given media type
func ValidateFileType(filename, mediaType string) error {
	ext := strings.ToLower(filepath.Ext(filename))

	switch mediaType {
	case "image":
		if !allowedImageExts[ext] {
			return fmt.Errorf("unsupported image format. Allowed formats: jpg, jpeg, png, gif, svg")
		}
	default:
		return fmt.Errorf("invalid media type. Must be 'image'")
	}
	return nil
}

// InitializeStorage creates necessary directories for file storage
func InitializeStorage() error {
	// Create main uploads directory
	if err := os.MkdirAll(uploadBaseDir, 0755); err != nil {
		return fmt.Errorf("failed to create uploads directory: %v", err)
	}

	// Create subdirectories
	dirs := []string{
		filepath.Join(uploadBaseDir, "logos"),
		filepath.Join(uploadBaseDir, "documents"),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}
	}

	return nil
}

// UploadFileToPath saves a file to a specific subdirectory and returns the URL
func UploadFileToPath(fileData []byte, filename string, mediaType string, subDir string) (string, error) {
	// Validate file size
	if len(fileData) > maxFileSize {
		return "", fmt.Errorf("file too large. Maximum size is %d bytes", maxFileSize)
	}

	// Clean and validate filename
	cleanName := cleanFilename(filename)
	if err := ValidateFileType(cleanName, mediaType); err != nil {
		return "", err
	}

	// Create full path for the file in the specified subdirectory
	fullPath := filepath.Join(uploadBaseDir, subDir, cleanName)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %v", filepath.Dir(fullPath), err)
	}

	// Write the file with restricted permissions
	if err := os.WriteFile(fullPath, fileData, 0644); err != nil {
		return "", fmt.Errorf("failed to write file %s: %v", fullPath, err)
	}

	// Generate URL (relative to the server) - subDir should not include "uploads/"
	cleanSubDir := strings.TrimPrefix(subDir, "uploads/")
	url := fmt.Sprintf("%s/%s/%s", baseURL, cleanSubDir, cleanName)
	return url, nil
}

// ResizeImage decodes image data and resizes it to the given max width while
// maintaining aspect ratio, returning JPEG bytes
func ResizeImage(data []byte, maxWidth int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %v", err)
	}

	resized := imaging.Resize(img, maxWidth, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %v", err)
	}

	return buf.Bytes(), nil
}
