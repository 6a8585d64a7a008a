package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"valid", "alice_42", false},
		{"too short", "ab", true},
		{"too long", strings.Repeat("a", 31), true},
		{"invalid chars", "alice!", true},
		{"spaces", "alice smith", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", "CorrectHorse9battery", false},
		{"too short", "Short1pass", true},
		{"too long", strings.Repeat("Aa1", 50), true},
		{"no uppercase", "correcthorse9battery", true},
		{"no lowercase", "CORRECTHORSE9BATTERY", true},
		{"no digit", "CorrectHorseBattery", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
