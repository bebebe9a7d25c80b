// Copyright (c) 2026 Handraise. All rights reserved.

package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/handraise/handraise/pkg/slug"
)

/*
TestFrom checks the slug transformation pipeline.
*/
func TestFrom(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "Riverside Food Bank", "riverside-food-bank"},
		{"punctuation", "Green City Cleanup!", "green-city-cleanup"},
		{"accents", "Café Société", "cafe-societe"},
		{"multiple_spaces", "Beach   Day  2026", "beach-day-2026"},
		{"leading_trailing", "  --Trail Crew--  ", "trail-crew"},
		{"already_slug", "trail-crew", "trail-crew"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slug.From(tt.input))
		})
	}
}
