package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseBreadcrumb(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected []string
	}{
		{name: "simple path", path: "campaign/act-1/scene-3", expected: []string{"campaign", "act-1", "scene-3"}},
		{name: "empty string", path: "", expected: []string{}},
		{name: "only slashes", path: "///", expected: []string{}},
		{name: "empty segments skipped", path: "a//b", expected: []string{"a", "b"}},
		{name: "leading and trailing slashes", path: "/a/b/", expected: []string{"a", "b"}},
		{name: "encoded segment", path: "camp%2Faign/scene", expected: []string{"camp/aign", "scene"}},
		{name: "encoded space", path: "act%20one", expected: []string{"act one"}},
		{name: "invalid encoding kept raw", path: "bad%zz/ok", expected: []string{"bad%zz", "ok"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseBreadcrumb(tt.path))
		})
	}
}

func TestJoinBreadcrumb(t *testing.T) {
	tests := []struct {
		name     string
		segments []string
		expected string
	}{
		{name: "simple segments", segments: []string{"campaign", "act-1"}, expected: "campaign/act-1"},
		{name: "empty slice", segments: []string{}, expected: ""},
		{name: "empty segments skipped", segments: []string{"a", "", "b"}, expected: "a/b"},
		{name: "slash in segment escaped", segments: []string{"camp/aign", "scene"}, expected: "camp%2Faign/scene"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, JoinBreadcrumb(tt.segments))
		})
	}
}

func TestBreadcrumbRoundTrip(t *testing.T) {
	segments := []string{"my campaign", "act/one", "scene-3"}
	assert.Equal(t, segments, ParseBreadcrumb(JoinBreadcrumb(segments)))
}
