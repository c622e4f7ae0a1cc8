package transactions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWireDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2024-01-02T03:04", "2024-01-02T03:04:00", true},
		{" 2024-01-02T03:04:05 ", "2024-01-02T03:04:05", true},
		{"2024-01-02", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := wireDate(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}
