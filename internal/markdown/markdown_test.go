package markdown

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRender_Basic(t *testing.T) {
	out, err := Render("Data from the **OverFast API**.", Options{})
	require.NoError(t, err)
	require.Equal(t, "<p>Data from the <strong>OverFast API</strong>.</p>\n", string(out))
}

func TestRender_BlankIsEmpty(t *testing.T) {
	out, err := Render("  \n", Options{})
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestRender_DropsRawHTML(t *testing.T) {
	out, err := Render("hi <script>alert(1)</script>", Options{})
	require.NoError(t, err)
	require.NotContains(t, string(out), "<script>")
}

func TestRender_GFMTable(t *testing.T) {
	out, err := Render("| a | b |\n|---|---|\n| 1 | 2 |\n", Options{GFM: true})
	require.NoError(t, err)
	require.Contains(t, string(out), "<table>")
}

func TestLinks(t *testing.T) {
	links := Links("See [docs](https://example.test/docs) and ![logo](logo.png) or <https://auto.test>.", Options{})
	require.Equal(t, []string{"https://example.test/docs", "logo.png", "https://auto.test"}, links)
}
