package errors

import (
	"math"
	"testing"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "avatars/ana.png", false},
		{"valid nested", "team/2024/bo.jpg", false},
		{"valid filename only", "me.webp", false},
		{"valid with dots", "v1.2/cy.png", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 600)), true},
		{"absolute path", "/etc/passwd", true},
		{"path traversal", "../../../etc/passwd", true},
		{"path traversal middle", "foo/../bar", true},
		{"null byte", "foo\x00bar", true},
		{"backslash", "foo\\bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidatePath(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateContentSize(t *testing.T) {
	tests := []struct {
		name    string
		size    float64
		wantErr bool
	}{
		{"zero", 0, false},
		{"typical", 256, false},
		{"max", MaxContentSize, false},
		{"negative", -1, true},
		{"too large", MaxContentSize + 1, true},
		{"nan", math.NaN(), true},
		{"inf", math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateContentSize(tt.size)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateContentSize(%v) error = %v, wantErr %v", tt.size, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidSize) {
				t.Errorf("ValidateContentSize(%v) returned wrong error code: %v", tt.size, err)
			}
		})
	}
}

func TestValidateGap(t *testing.T) {
	for _, g := range []float64{0, 0.25, 1} {
		if err := ValidateGap(g); err != nil {
			t.Errorf("ValidateGap(%v) = %v, want nil", g, err)
		}
	}
	for _, g := range []float64{-0.1, 1.5, math.NaN()} {
		if err := ValidateGap(g); err == nil {
			t.Errorf("ValidateGap(%v) = nil, want error", g)
		}
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput,
		ErrCodeInvalidFormat,
		ErrCodeInvalidFit,
		ErrCodeInvalidScene,
		ErrCodeInvalidPath,
		ErrCodeInvalidSize,
		ErrCodeNotFound,
		ErrCodeFileNotFound,
		ErrCodeCapacityExceeded,
		ErrCodeIndexOutOfRange,
		ErrCodeInternal,
		ErrCodeUnsupported,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
