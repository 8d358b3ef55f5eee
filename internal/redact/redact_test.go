package redact

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreview(t *testing.T) {
	assert.Equal(t, "abc...", Preview("abc", 10))
	assert.Equal(t, "abcde...", Preview("abcdefgh", 5))

	long := strings.Repeat("x", 250)
	p := Preview(long, ScriptPreviewLen)
	assert.Len(t, p, ScriptPreviewLen+3)
	assert.True(t, strings.HasSuffix(p, "..."))
}

func TestPreview_KeepsRunesWhole(t *testing.T) {
	assert.Equal(t, "héé...", Preview("hééllo", 3))
}

func TestMask(t *testing.T) {
	cases := map[string]string{
		"password=hunter2":                     "password=********",
		"const api_key: 'abc123'":              "const api_key: '********'",
		"Authorization: Bearer abc.def.ghi":    "Authorization: Bearer ********",
		"nothing sensitive here":               "nothing sensitive here",
		`{"client_secret":"xyz","user":"bob"}`: `{"client_secret":"********","user":"bob"}`,
	}
	for in, want := range cases {
		assert.Equal(t, want, Mask(in), "input %q", in)
	}
}

func TestApply_ReportsChange(t *testing.T) {
	_, changed := Apply("token=abc", Assignments)
	assert.True(t, changed)
	_, changed = Apply("plain", Assignments)
	assert.False(t, changed)
}
