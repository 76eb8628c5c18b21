package httpx

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domainauth "github.com/gutp/discux/internal/domain/auth"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRenderer(t *testing.T) *TemplateRenderer {
	t.Helper()
	r, err := NewTemplateRenderer(TemplateRendererConfig{
		TemplateFS: os.DirFS(TemplatePathFromTest),
		Now:        func() time.Time { return fixedNow },
		Logger:     discardLogger(),
	})
	require.NoError(t, err)
	return r
}

func rawArray(t *testing.T, body string) []json.RawMessage {
	t.Helper()
	var out []json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	return out
}

// errorSignalOf extracts action and err_info from an error-page redirect.
func errorSignalOf(t *testing.T, resp *http.Response) (string, string) {
	t.Helper()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	require.Equal(t, RouteError, loc.Path)
	q := loc.Query()
	return q.Get("action"), q.Get("err_info")
}

func withIdentity(r *http.Request, subject string) *http.Request {
	return r.WithContext(WithIdentity(r.Context(), domainauth.Authenticated(subject)))
}
