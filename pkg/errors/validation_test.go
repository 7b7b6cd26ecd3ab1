package errors

import (
	"testing"
)

func TestValidateImageName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid png", "cat.png", false},
		{"valid with spaces", "my holiday.jpg", false},
		{"valid unicode", "café.webp", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"path traversal", "../cat.png", true},
		{"subdirectory", "images/cat.png", true},
		{"backslash", "images\\cat.png", true},
		{"hidden", ".cat.png", true},
		{"dotdot", "..", true},
		{"control char", "cat\x01.png", true},
		{"null byte", "cat\x00.png", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateImageName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateImageName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidName) {
				t.Errorf("expected INVALID_NAME, got %v", err)
			}
		})
	}
}

func TestValidateColor(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"#ffffff", false},
		{"#FFF", false},
		{"#1a2B3c", false},
		{"ffffff", true},
		{"#ffff", true},
		{"#gggggg", true},
		{"", true},
		{"red", true},
	}

	for _, tt := range tests {
		err := ValidateColor(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateColor(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestValidateFontSize(t *testing.T) {
	for _, size := range []int{1, 72, 1000} {
		if err := ValidateFontSize(size); err != nil {
			t.Errorf("ValidateFontSize(%d) = %v", size, err)
		}
	}
	for _, size := range []int{0, -5, 1001} {
		if err := ValidateFontSize(size); err == nil {
			t.Errorf("ValidateFontSize(%d) should fail", size)
		}
	}
}
