package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/schema-gap/internal/model"
)

func TestFormatRunsList(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	runs := []model.RunSummary{
		{
			ID:            "abc12345-6789-0000-0000-000000000000",
			Target:        "https://ours.example/product",
			Status:        model.RunStatusComplete,
			Competitors:   2,
			Keys:          14,
			Opportunities: 3,
			CreatedAt:     now,
		},
		{
			ID:        "def12345-6789-0000-0000-000000000000",
			Target:    "https://ours.example/a/very/long/path/that/goes/on/and/on",
			Status:    model.RunStatusPartial,
			Warnings:  1,
			CreatedAt: now.Add(-time.Hour),
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	output := buf.String()
	assert.Contains(t, output, "ID")
	assert.Contains(t, output, "TARGET")
	assert.Contains(t, output, "GAPS")
	assert.Contains(t, output, "abc12345")
	assert.NotContains(t, output, "abc12345-6789")
	assert.Contains(t, output, "https://ours.example/product")
	assert.Contains(t, output, "complete")
	assert.Contains(t, output, "partial")
	assert.Contains(t, output, "...")
	assert.Contains(t, output, "2025-06-15 10:30")
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "abc12345", truncateID("abc12345-6789"))
	assert.Equal(t, "short", truncateID("short"))
	assert.Equal(t, "", truncateID(""))
}
