package errors

import (
	"math"
	"strings"
	"unicode"
)

// MaxContentSize bounds frame sizes accepted from scenes and HTTP requests.
const MaxContentSize = 4096

// ValidatePath validates an image path referenced by a scene file.
// It prevents path traversal out of the scene's directory.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative to the scene)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateContentSize checks a frame or content size for rendering.
// Zero is allowed and renders nothing; negative, non-finite and oversized
// values are rejected.
func ValidateContentSize(size float64) error {
	if math.IsNaN(size) || math.IsInf(size, 0) {
		return New(ErrCodeInvalidSize, "size must be a finite number")
	}
	if size < 0 {
		return New(ErrCodeInvalidSize, "size cannot be negative: %v", size)
	}
	if size > MaxContentSize {
		return New(ErrCodeInvalidSize, "size too large: %v (max %d)", size, MaxContentSize)
	}
	return nil
}

// ValidateGap checks a gap fraction read from user input.
// The composition clamps silently; scenes and requests are stricter.
func ValidateGap(gap float64) error {
	if math.IsNaN(gap) || gap < 0 || gap > 1 {
		return New(ErrCodeInvalidInput, "gap must be between 0 and 1, got %v", gap)
	}
	return nil
}
