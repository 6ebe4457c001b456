package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePhoneNumber(t *testing.T) {
	cases := []struct {
		phone string
		valid bool
	}{
		{"09137901844", true},
		{"+989137901844", true},
		{"0913 790 1844", true},
		{"0913-790-1844", true},
		{"12345", false},
		{"", false},
		{"not-a-number", false},
		{"+98913790184412345", false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.valid, ValidatePhoneNumber(tc.phone), "phone %q", tc.phone)
	}
}

func TestNormalizePhoneNumber(t *testing.T) {
	assert.Equal(t, "09137901844", NormalizePhoneNumber(" 0913 790-1844 "))
}
