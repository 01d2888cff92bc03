package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribeVersion(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"(devel)", "(devel) (development build)"},
		{"v1.2.3", "v1.2.3"},
		{"v1.3.0-rc.1", "v1.3.0-rc.1 (pre-release rc.1)"},
		{"v0.4.0", "v0.4.0 (unstable)"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, describeVersion(tt.in))
		})
	}
}
