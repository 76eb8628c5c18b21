package core

import (
	"bytes"
	"html/template"
	"strings"
	"testing"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgo(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "", Ago(0, now))
	assert.Equal(t, "3 hours ago", Ago(now.Add(-3*time.Hour).Unix(), now))
}

func TestMarkdownSanitizes(t *testing.T) {
	out := string(Markdown(bluemonday.UGCPolicy(), "**bold** <script>alert(1)</script>"))
	assert.Contains(t, out, "<strong>bold</strong>")
	assert.NotContains(t, out, "<script>")
}

func TestLinkDomain(t *testing.T) {
	assert.Equal(t, "go.dev", LinkDomain("https://pkg.go.dev/net/http"))
	assert.Equal(t, "bbc.co.uk", LinkDomain("https://www.news.bbc.co.uk/x"))
	assert.Equal(t, "127.0.0.1", LinkDomain("http://127.0.0.1:8080/"))
	assert.Equal(t, "", LinkDomain("not a url"))
	assert.Equal(t, "", LinkDomain(""))
}

func TestFuncsInTemplate(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tmpl, err := template.New("t").Funcs(Funcs(Deps{Now: func() time.Time { return now }})).
		Parse(`{{ .T | ago }}|{{ .Link | linkDomain }}|{{ .Title | upper }}|{{ markdown .Body }}`)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tmpl.Execute(&buf, map[string]any{
		"T":     now.Add(-2 * time.Minute).Unix(),
		"Link":  "https://go.dev/blog",
		"Title": "hello",
		"Body":  "_hi_",
	}))
	parts := strings.Split(buf.String(), "|")
	require.Len(t, parts, 4)
	assert.Equal(t, "2 minutes ago", parts[0])
	assert.Equal(t, "go.dev", parts[1])
	assert.Equal(t, "HELLO", parts[2])
	assert.Contains(t, parts[3], "<em>hi</em>")
}
