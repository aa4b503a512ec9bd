package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatTimeLeft(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		expiresAt time.Time
		want      string
	}{
		{"full window", now.Add(7 * 24 * time.Hour), "7d 0h left"},
		{"days and hours", now.Add(2*24*time.Hour + 5*time.Hour), "2d 5h left"},
		{"under a day", now.Add(23 * time.Hour), "23h left"},
		{"under an hour", now.Add(30 * time.Minute), "0h left"},
		{"exactly expired", now, "expired"},
		{"long expired", now.Add(-48 * time.Hour), "expired"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTimeLeft(tt.expiresAt, now))
		})
	}
}
