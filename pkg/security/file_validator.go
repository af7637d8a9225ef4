package security

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"sort"
	"strings"

	"talent-marketplace/internal/domain"
)

// FileValidationResult contains the result of file validation
type FileValidationResult struct {
	Valid        bool
	Extension    string
	DetectedMIME string
	Error        string
}

// Magic byte signatures keyed by lowercase extension
var magicBytes = map[string][][]byte{
	".jpg":  {{0xFF, 0xD8, 0xFF}},
	".jpeg": {{0xFF, 0xD8, 0xFF}},
	".png":  {{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	".gif":  {{0x47, 0x49, 0x46, 0x38, 0x37, 0x61}, {0x47, 0x49, 0x46, 0x38, 0x39, 0x61}},
	".webp": {{0x52, 0x49, 0x46, 0x46}}, // RIFF
	".pdf":  {{0x25, 0x50, 0x44, 0x46}}, // %PDF
}

// Per-purpose whitelist: extension -> MIME types accepted for it.
// application/octet-stream is never accepted.
var purposeTypes = map[domain.UploadPurpose]map[string][]string{
	domain.PurposeCV: {
		".pdf": {"application/pdf"},
	},
	domain.PurposeAvatar: imageTypes,
	domain.PurposeLogo:   imageTypes,
}

var imageTypes = map[string][]string{
	".jpg":  {"image/jpeg"},
	".jpeg": {"image/jpeg"},
	".png":  {"image/png"},
	".gif":  {"image/gif"},
	".webp": {"image/webp"},
}

// ValidateFile performs 3-layer file validation for an upload purpose:
// 1. Extension whitelist check
// 2. Magic byte verification (content matches extension)
// 3. MIME type whitelist, sniffed from content
func ValidateFile(purpose domain.UploadPurpose, filename string, data []byte) FileValidationResult {
	detected := http.DetectContentType(data)
	result := FileValidationResult{DetectedMIME: detected}

	allowed, ok := purposeTypes[purpose]
	if !ok {
		result.Error = "unknown upload purpose: " + string(purpose)
		return result
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		result.Error = "file has no extension"
		return result
	}
	result.Extension = ext

	// Layer 1
	mimes, ok := allowed[ext]
	if !ok {
		result.Error = fmt.Sprintf("file extension not allowed: %s (allowed: %s)", ext, strings.Join(AllowedExtensions(purpose), ", "))
		return result
	}

	// Layer 2
	if !validateMagicBytes(ext, data) {
		result.Error = "file content does not match extension"
		return result
	}

	// Layer 3
	if !contains(mimes, detected) {
		result.Error = "MIME type not allowed: " + detected
		return result
	}

	result.Valid = true
	return result
}

func validateMagicBytes(ext string, data []byte) bool {
	if len(data) < 4 {
		return false
	}
	for _, sig := range magicBytes[ext] {
		if len(data) >= len(sig) && bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}

// ValidateFileExtension checks only the extension (for quick pre-validation)
func ValidateFileExtension(purpose domain.UploadPurpose, filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return errors.New("file has no extension")
	}
	if _, ok := purposeTypes[purpose][ext]; !ok {
		return errors.New("file extension not allowed: " + ext)
	}
	return nil
}

// AllowedExtensions returns the sorted extensions accepted for a purpose.
func AllowedExtensions(purpose domain.UploadPurpose) []string {
	extensions := make([]string, 0, len(purposeTypes[purpose]))
	for ext := range purposeTypes[purpose] {
		extensions = append(extensions, ext)
	}
	sort.Strings(extensions)
	return extensions
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
