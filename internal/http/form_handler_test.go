package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gutp/discux/internal/domain/content"
	apperrors "github.com/gutp/discux/internal/errors"
	"github.com/gutp/discux/internal/service"
)

type fakeWriter struct {
	calls    []string
	subject  string
	article  service.ArticleInput
	subspace service.SubspaceInput
	comment  service.CommentInput
	err      error
}

func (f *fakeWriter) record(call string) { f.calls = append(f.calls, call) }

func (f *fakeWriter) CreateArticle(_ context.Context, subjectID string, in service.ArticleInput) (content.Post, error) {
	f.record("CreateArticle")
	f.subject, f.article = subjectID, in
	return content.Post{ID: "p-new"}, f.err
}

func (f *fakeWriter) UpdateArticle(_ context.Context, id string, in service.ArticleInput) (content.Post, error) {
	f.record("UpdateArticle:" + id)
	f.article = in
	return content.Post{}, f.err
}

func (f *fakeWriter) DeleteArticle(_ context.Context, id string) (string, error) {
	f.record("DeleteArticle:" + id)
	return "s1", f.err
}

func (f *fakeWriter) CreateSubspace(_ context.Context, subjectID string, in service.SubspaceInput) (content.Subspace, error) {
	f.record("CreateSubspace")
	f.subject, f.subspace = subjectID, in
	return content.Subspace{ID: "s-new"}, f.err
}

func (f *fakeWriter) DeleteSubspace(_ context.Context, id string) error {
	f.record("DeleteSubspace:" + id)
	return f.err
}

func (f *fakeWriter) CreateComment(_ context.Context, subjectID string, in service.CommentInput) (content.Comment, error) {
	f.record("CreateComment")
	f.subject, f.comment = subjectID, in
	return content.Comment{ID: "c-new"}, f.err
}

func (f *fakeWriter) DeleteComment(_ context.Context, id string) (string, error) {
	f.record("DeleteComment:" + id)
	return "p1", f.err
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func newFormHandlers(w *fakeWriter) *FormHandlers {
	return &FormHandlers{Content: w, Decoder: NewFormDecoder(), Errors: ErrorRedirector{Logger: discardLogger()}}
}

func TestFormHandlers_CreateArticle(t *testing.T) {
	w := &fakeWriter{}
	h := newFormHandlers(w)

	req := withIdentity(postForm("/article/create", url.Values{
		"subspace_id": {"s1"},
		"title":       {"Hello"},
		"content":     {"Body"},
		"extlink":     {"https://go.dev"},
		"is_public":   {"true"},
		"submit":      {"Save"},
	}), "u1")
	rec := httptest.NewRecorder()
	h.CreateArticle(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/article?id=p-new", rec.Header().Get("Location"))
	assert.Equal(t, "u1", w.subject)
	assert.Equal(t, service.ArticleInput{
		SubspaceID: "s1",
		Title:      "Hello",
		Content:    "Body",
		ExtLink:    "https://go.dev",
		IsPublic:   true,
	}, w.article)
}

func TestFormHandlers_RequireSignedIn(t *testing.T) {
	w := &fakeWriter{}
	h := newFormHandlers(w)

	handlers := map[string]http.HandlerFunc{
		"/article/create":  h.CreateArticle,
		"/article/edit":    h.EditArticle,
		"/article/delete":  h.DeleteArticle,
		"/subspace/create": h.CreateSubspace,
		"/subspace/delete": h.DeleteSubspace,
		"/comment/create":  h.CreateComment,
		"/comment/delete":  h.DeleteComment,
	}
	for path, handler := range handlers {
		t.Run(path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler(rec, postForm(path, url.Values{"id": {"x"}}))
			_, reason := errorSignalOf(t, rec.Result())
			assert.Equal(t, "You need to sign in first.", reason)
		})
	}
	assert.Empty(t, w.calls)
}

func TestFormHandlers_DeleteMissingID(t *testing.T) {
	w := &fakeWriter{}
	h := newFormHandlers(w)

	rec := httptest.NewRecorder()
	h.DeleteSubspace(rec, withIdentity(postForm("/subspace/delete", url.Values{}), "u1"))

	action, reason := errorSignalOf(t, rec.Result())
	assert.Equal(t, "Delete subspace", action)
	assert.Equal(t, "Missing id.", reason)
	assert.Empty(t, w.calls)
}

func TestFormHandlers_DeleteRedirects(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		handler func(h *FormHandlers) http.HandlerFunc
		want    string
		call    string
	}{
		{"article", "/article/delete", func(h *FormHandlers) http.HandlerFunc { return h.DeleteArticle }, "/subspace?id=s1", "DeleteArticle:a1"},
		{"subspace", "/subspace/delete", func(h *FormHandlers) http.HandlerFunc { return h.DeleteSubspace }, "/", "DeleteSubspace:a1"},
		{"comment", "/comment/delete", func(h *FormHandlers) http.HandlerFunc { return h.DeleteComment }, "/article?id=p1", "DeleteComment:a1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &fakeWriter{}
			rec := httptest.NewRecorder()
			tt.handler(newFormHandlers(w))(rec, withIdentity(postForm(tt.path, url.Values{"id": {"a1"}}), "u1"))
			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, tt.want, rec.Header().Get("Location"))
			assert.Equal(t, []string{tt.call}, w.calls)
		})
	}
}

func TestFormHandlers_ServiceErrorSignals(t *testing.T) {
	w := &fakeWriter{err: apperrors.Conflict("Intend to delete subspace: s1", "This subspace has article attached, could not be deleted!")}
	h := newFormHandlers(w)

	rec := httptest.NewRecorder()
	h.DeleteSubspace(rec, withIdentity(postForm("/subspace/delete", url.Values{"id": {"s1"}}), "u1"))

	action, reason := errorSignalOf(t, rec.Result())
	assert.Equal(t, "Intend to delete subspace: s1", action)
	assert.Equal(t, "This subspace has article attached, could not be deleted!", reason)
}

func TestFormHandlers_CreateComment(t *testing.T) {
	w := &fakeWriter{}
	h := newFormHandlers(w)

	rec := httptest.NewRecorder()
	h.CreateComment(rec, withIdentity(postForm("/comment/create", url.Values{"post_id": {"p1"}, "content": {"+1"}}), "u7"))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/article?id=p1", rec.Header().Get("Location"))
	assert.Equal(t, "u7", w.subject)
	assert.Equal(t, service.CommentInput{PostID: "p1", Content: "+1"}, w.comment)
}

func TestFormHandlers_EditKeepsFormID(t *testing.T) {
	w := &fakeWriter{}
	h := newFormHandlers(w)

	rec := httptest.NewRecorder()
	h.EditArticle(rec, withIdentity(postForm("/article/edit", url.Values{"id": {"p9"}, "title": {"T"}, "content": {"C"}}), "u1"))

	require.Equal(t, []string{"UpdateArticle:p9"}, w.calls)
	assert.Equal(t, "/article?id=p9", rec.Header().Get("Location"))
	assert.False(t, w.article.IsPublic)
}

func TestFormHandlers_InvalidValue(t *testing.T) {
	w := &fakeWriter{}
	h := newFormHandlers(w)

	rec := httptest.NewRecorder()
	h.CreateSubspace(rec, withIdentity(postForm("/subspace/create", url.Values{"title": {"T"}, "is_public": {"maybe"}}), "u1"))

	action, reason := errorSignalOf(t, rec.Result())
	assert.Equal(t, "Create subspace", action)
	assert.Equal(t, "The form contains invalid values.", reason)
	assert.Empty(t, w.calls)
}
