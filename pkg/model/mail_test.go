package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/engramhq/engram/pkg/model"
)

func TestDeriveCompany(t *testing.T) {
	testCases := []struct {
		name     string
		sender   string
		expected string
	}{
		{
			name:     "subdomain is dropped",
			sender:   "a@mail.acme.co.uk",
			expected: "acme",
		},
		{
			name:     "plain two-label domain",
			sender:   "a@acme.com",
			expected: "acme",
		},
		{
			name:     "two labels keep the first",
			sender:   "a@sub.io",
			expected: "sub",
		},
		{
			name:     "display name with angle brackets",
			sender:   "Jane <jane@mail.acme.co.uk>",
			expected: "acme",
		},
		{
			name:     "uppercase domain is lowercased",
			sender:   "a@ACME.COM",
			expected: "acme",
		},
		{
			name:     "not an email",
			sender:   "not-an-email",
			expected: "",
		},
		{
			name:     "trailing at sign",
			sender:   "broken@",
			expected: "",
		},
		{
			name:     "empty sender",
			sender:   "",
			expected: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gt.Equal(t, model.DeriveCompany(tc.sender), tc.expected)
		})
	}
}
