package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Paris ", "paris"},
		{"NAPOLEON", "napoleon"},
		{"New   York\tCity", "new york city"},
		{"ＰＡＲＩＳ", "paris"},
		{"Straße", "strasse"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "Normalize(%q)", tt.in)
	}
}

func TestSet(t *testing.T) {
	got := Set([]string{"Napoleon", " napoleon ", "", "Bonaparte"})
	assert.Equal(t, []string{"napoleon", "bonaparte"}, got)
}
