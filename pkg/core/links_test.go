package core

import (
	"testing"

	"github.com/emberstone/vitrine/pkg/hub"
	"github.com/stretchr/testify/assert"
)

func TestResolveLink(t *testing.T) {
	plugin := hub.Plugin{
		Name:          "warp-gates",
		Author:        hub.Contributor{Login: "bob"},
		DefaultBranch: "main",
	}

	tests := []struct {
		desc     string
		plugin   hub.Plugin
		ref      string
		expected string
	}{
		{
			desc:     "relative path",
			plugin:   plugin,
			ref:      "docs/setup.md",
			expected: "https://raw.githubusercontent.com/bob/warp-gates/main/docs/setup.md",
		},
		{
			desc:     "relative path with dot segments",
			plugin:   plugin,
			ref:      "./img/logo.png",
			expected: "https://raw.githubusercontent.com/bob/warp-gates/main/img/logo.png",
		},
		{
			desc:     "absolute URL passes through",
			plugin:   plugin,
			ref:      "https://example.com/img.png",
			expected: "https://example.com/img.png",
		},
		{
			desc:     "protocol-relative URL passes through",
			plugin:   plugin,
			ref:      "//example.com/img.png",
			expected: "//example.com/img.png",
		},
		{
			desc:     "in-page anchor passes through",
			plugin:   plugin,
			ref:      "#installation",
			expected: "#installation",
		},
		{
			desc:     "empty ref",
			plugin:   plugin,
			ref:      "",
			expected: "",
		},
		{
			desc:     "unknown default branch falls back to HEAD",
			plugin:   hub.Plugin{Name: "warp-gates", Author: hub.Contributor{Login: "bob"}},
			ref:      "logo.png",
			expected: "https://raw.githubusercontent.com/bob/warp-gates/HEAD/logo.png",
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.desc, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, test.expected, ResolveLink(test.plugin, test.ref))
		})
	}
}
