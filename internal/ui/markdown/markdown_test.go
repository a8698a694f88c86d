package markdown

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

func TestNew(t *testing.T) {
	for _, style := range []string{"", "dark", "light"} {
		r, err := New(60, style)
		require.NoError(t, err, "style %q", style)
		require.Equal(t, 60, r.Width())
	}
}

func TestRender_Terms(t *testing.T) {
	r, err := New(80, "dark")
	require.NoError(t, err)

	out, err := r.Render(Terms())
	require.NoError(t, err)
	plain := stripANSI(out)
	require.Contains(t, plain, "Terms and Conditions")
	require.Contains(t, plain, "16 years old")
	require.NotRegexp(t, `\n$`, out)
}

func TestRender_Wraps(t *testing.T) {
	r, err := New(20, "light")
	require.NoError(t, err)

	out, err := r.Render("one two three four five six seven eight nine ten")
	require.NoError(t, err)
	require.Contains(t, stripANSI(out), "\n")
}
