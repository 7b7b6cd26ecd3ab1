package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateImageName validates an image file name before it is used as an
// archive entry under images/.
//
// The rules are conservative:
//   - No empty names
//   - Maximum length of 255 characters
//   - No control characters or null bytes
//   - No path separators or traversal sequences
//   - No hidden files
func ValidateImageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "image name cannot be empty")
	}

	if len(name) > 255 {
		return New(ErrCodeInvalidName, "image name too long (max 255 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "image name contains invalid control characters")
		}
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidName, "image name cannot contain path separators")
	}

	if name == ".." || strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidName, "image name cannot be a hidden file")
	}

	return nil
}

// hexColorRegex matches #rgb and #rrggbb colors as produced by HTML color inputs.
var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidateColor validates an answer label color.
func ValidateColor(color string) error {
	if !hexColorRegex.MatchString(color) {
		return New(ErrCodeInvalidInput, "invalid color %q (expected #rgb or #rrggbb)", color)
	}
	return nil
}

// ValidateFontSize validates a label font size in source pixels.
func ValidateFontSize(size int) error {
	const maxSize = 1000
	if size <= 0 || size > maxSize {
		return New(ErrCodeInvalidInput, "font size must be between 1 and %d, got %d", maxSize, size)
	}
	return nil
}
