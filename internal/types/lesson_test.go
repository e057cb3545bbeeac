package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLessonKey(t *testing.T) {
	lesson := &LessonInfo{Track: "html-css", Slug: "01-html-basics"}
	assert.Equal(t, "html-css/01-html-basics", lesson.Key())
}

func TestLinkIsRelative(t *testing.T) {
	tests := []struct {
		target string
		want   bool
	}{
		{"./02-css-basics.md", true},
		{"images/diagram.png", true},
		{"../react/01-components.md", true},
		{"", false},
		{"#section", false},
		{"https://developer.mozilla.org", false},
		{"http://localhost:8080", false},
		{"mailto:someone@example.com", false},
		{"tel:+15551234567", false},
	}

	for _, tt := range tests {
		link := LinkInfo{Target: tt.target}
		assert.Equal(t, tt.want, link.IsRelative(), "target %q", tt.target)
	}
}
