package httpx

import (
	"context"
	"net/http"

	"github.com/gutp/discux/internal/domain/content"
	apperrors "github.com/gutp/discux/internal/errors"
	"github.com/gutp/discux/internal/service"
)

// PageReader builds the read-side view models.
type PageReader interface {
	Index(ctx context.Context) (service.IndexView, error)
	Article(ctx context.Context, id string) (service.ArticleView, error)
	Subspace(ctx context.Context, id string) (service.SubspaceView, error)
	Account(ctx context.Context, subjectID string) (content.User, error)
	ArticleCreateForm(ctx context.Context, subspaceID string) (content.Subspace, error)
	ArticleEditForm(ctx context.Context, id string) (content.Post, error)
	ArticleDeleteConfirm(ctx context.Context, id string) (content.Post, error)
	SubspaceDeleteConfirm(ctx context.Context, id string) (content.Subspace, error)
	CommentCreateForm(ctx context.Context, postID string) (content.Post, error)
	CommentDeleteConfirm(ctx context.Context, id string) (content.Comment, error)
}

// PageHandlers serves the read-only pages and the forms in front of write operations.
type PageHandlers struct {
	Pages    PageReader
	Renderer *TemplateRenderer
	Errors   ErrorRedirector
}

// articleFormView feeds article_form for both create and edit.
type articleFormView struct {
	Mode     FormMode
	Subspace content.Subspace
	Post     content.Post
}

// commentFormView feeds comment_form.
type commentFormView struct {
	Post content.Post
}

// subspaceFormView feeds subspace_form.
type subspaceFormView struct {
	Mode FormMode
}

// confirmView feeds confirm_delete.
type confirmView struct {
	Kind   string
	ID     string
	Title  string
	Action string
	Back   string
}

// Index lists subspaces.
// GET /.
func (h *PageHandlers) Index(w http.ResponseWriter, r *http.Request) {
	view, err := h.Pages.Index(r.Context())
	if err != nil {
		h.Errors.Redirect(w, r, err)
		return
	}
	h.Renderer.Render(w, r, PageIndex, NewPageData(r, "Home", view))
}

// Article shows a post with its comments.
// GET /article?id=<id>.
func (h *PageHandlers) Article(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r, "id", "Query article")
	if err != nil {
		h.Errors.Redirect(w, r, err)
		return
	}
	view, err := h.Pages.Article(r.Context(), id)
	if err != nil {
		h.Errors.Redirect(w, r, err)
		return
	}
	h.Renderer.Render(w, r, PageArticle, NewPageData(r, view.Post.Title, view))
}

// Subspace shows a subspace with its posts.
// GET /subspace?id=<id>.
func (h *PageHandlers) Subspace(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r, "id", "Query subspace")
	if err != nil {
		h.Errors.Redirect(w, r, err)
		return
	}
	view, err := h.Pages.Subspace(r.Context(), id)
	if err != nil {
		h.Errors.Redirect(w, r, err)
		return
	}
	h.Renderer.Render(w, r, PageSubspace, NewPageData(r, view.Subspace.Title, view))
}

// Account shows the signed-in user. Anonymous callers are sent to sign in.
// GET /user/account.
func (h *PageHandlers) Account(w http.ResponseWriter, r *http.Request) {
	subject, ok := IdentityFromContext(r.Context()).SubjectID()
	if !ok {
		http.Redirect(w, r, RouteLogin, http.StatusFound)
		return
	}
	user, err := h.Pages.Account(r.Context(), subject)
	if err != nil {
		h.Errors.Redirect(w, r, err)
		return
	}
	h.Renderer.Render(w, r, PageAccount, NewPageData(r, "Account", user))
}

// ArticleCreate shows the new-article form.
// GET /article/create?subspace_id=<id>.
func (h *PageHandlers) ArticleCreate(w http.ResponseWriter, r *http.Request) {
	const action = "Create article"
	if _, err := requireSubject(r, action); err != nil {
		h.Errors.Redirect(w, r, err)
		return
	}
	sid, err := queryID(r, "subspace_id", action)
	if err != nil {
		h.Errors.Redirect(w, r, err)
		return
	}
	sub, err := h.Pages.ArticleCreateForm(r.Context(), sid)
	if err != nil {
		h.Errors.Redirect(w, r, err)
		return
	}
	h.Renderer.Render(w, r, PageArticleForm, NewPageData(r, "New article", articleFormView{
		Mode:     FormModeCreate,
		Subspace: sub,
	}))
}

// ArticleEdit shows the edit form.
// GET /article/edit?id=<id>.
func (h *PageHandlers) ArticleEdit(w http.ResponseWriter, r *http.Request) {
	const action = "Edit article"
	if _, err := requireSubject(r, action); err != nil {
		h.Errors.Redirect(w, r, err)
		return
	}
	id, err := queryID(r, "id", action)
	if err != nil {
		h.Errors.Redirect(w, r, err)
		return
	}
	post, err := h.Pages.ArticleEditForm(r.Context(), id)
	if err != nil {
		h.Errors.Redirect(w, r, err)
		return
	}
	h.Renderer.Render(w, r, PageArticleForm, NewPageData(r, "Edit article", articleFormView{
		Mode: FormModeEdit,
		Post: post,
	}))
}

// ArticleDelete asks for confirmation. Articles with comments are refused here.
// GET /article/delete?id=<id>.
func (h *PageHandlers) ArticleDelete(w http.ResponseWriter, r *http.Request) {
	const action = "Delete article"
	if _, err := requireSubject(r, action); err != nil {
		h.Errors.Redirect(w, r, err)
		return
	}
	id, err := queryID(r, "id", action)
	if err != nil {
		h.Errors.Redirect(w, r, err)
		return
	}
	post, err := h.Pages.ArticleDeleteConfirm(r.Context(), id)
	if err != nil {
		h.Errors.Redirect(w, r, err)
		return
	}
	h.Renderer.Render(w, r, PageConfirmDelete, NewPageData(r, "Delete article", confirmView{
		Kind:   "article",
		ID:     post.ID,
		Title:  post.Title,
		Action: "/article/delete",
		Back:   "/article?id=" + post.ID,
	}))
}

// SubspaceCreate shows the new-subspace form.
// GET /subspace/create.
func (h *PageHandlers) SubspaceCreate(w http.ResponseWriter, r *http.Request) {
	if _, err := requireSubject(r, "Create subspace"); err != nil {
		h.Errors.Redirect(w, r, err)
		return
	}
	h.Renderer.Render(w, r, PageSubspaceForm, NewPageData(r, "New subspace", subspaceFormView{Mode: FormModeCreate}))
}

// SubspaceDelete asks for confirmation. Subspaces with posts are refused here.
// GET /subspace/delete?id=<id>.
func (h *PageHandlers) SubspaceDelete(w http.ResponseWriter, r *http.Request) {
	const action = "Delete subspace"
	if _, err := requireSubject(r, action); err != nil {
		h.Errors.Redirect(w, r, err)
		return
	}
	id, err := queryID(r, "id", action)
	if err != nil {
		h.Errors.Redirect(w, r, err)
		return
	}
	sub, err := h.Pages.SubspaceDeleteConfirm(r.Context(), id)
	if err != nil {
		h.Errors.Redirect(w, r, err)
		return
	}
	h.Renderer.Render(w, r, PageConfirmDelete, NewPageData(r, "Delete subspace", confirmView{
		Kind:   "subspace",
		ID:     sub.ID,
		Title:  sub.Title,
		Action: "/subspace/delete",
		Back:   "/subspace?id=" + sub.ID,
	}))
}

// CommentCreate shows the reply form.
// GET /comment/create?post_id=<id>.
func (h *PageHandlers) CommentCreate(w http.ResponseWriter, r *http.Request) {
	const action = "Comment on article"
	if _, err := requireSubject(r, action); err != nil {
		h.Errors.Redirect(w, r, err)
		return
	}
	pid, err := queryID(r, "post_id", action)
	if err != nil {
		h.Errors.Redirect(w, r, err)
		return
	}
	post, err := h.Pages.CommentCreateForm(r.Context(), pid)
	if err != nil {
		h.Errors.Redirect(w, r, err)
		return
	}
	h.Renderer.Render(w, r, PageCommentForm, NewPageData(r, "Reply", commentFormView{Post: post}))
}

// CommentDelete asks for confirmation.
// GET /comment/delete?id=<id>.
func (h *PageHandlers) CommentDelete(w http.ResponseWriter, r *http.Request) {
	const action = "Delete comment"
	if _, err := requireSubject(r, action); err != nil {
		h.Errors.Redirect(w, r, err)
		return
	}
	id, err := queryID(r, "id", action)
	if err != nil {
		h.Errors.Redirect(w, r, err)
		return
	}
	c, err := h.Pages.CommentDeleteConfirm(r.Context(), id)
	if err != nil {
		h.Errors.Redirect(w, r, err)
		return
	}
	h.Renderer.Render(w, r, PageConfirmDelete, NewPageData(r, "Delete comment", confirmView{
		Kind:   "comment",
		ID:     c.ID,
		Title:  truncate(c.Content, 80),
		Action: "/comment/delete",
		Back:   "/article?id=" + c.PostID,
	}))
}

// NotFound reports unknown routes through the error page.
func (h *PageHandlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.Errors.Redirect(w, r, apperrors.NotFound("Open page: "+r.URL.Path, "Page not found."))
}

// queryID reads a required id query parameter.
func queryID(r *http.Request, name, action string) (string, error) {
	id := r.URL.Query().Get(name)
	if id == "" {
		return "", apperrors.ValidationField(name, action, "Missing "+name+".")
	}
	return id, nil
}

// requireSubject returns the caller's subject or an AuthRequired error.
func requireSubject(r *http.Request, action string) (string, error) {
	subject, ok := IdentityFromContext(r.Context()).SubjectID()
	if !ok {
		return "", apperrors.AuthRequired(action, "You need to sign in first.")
	}
	return subject, nil
}

func truncate(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[:n]) + "…"
}
