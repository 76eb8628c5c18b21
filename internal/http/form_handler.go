package httpx

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gorilla/schema"

	"github.com/gutp/discux/internal/domain/content"
	apperrors "github.com/gutp/discux/internal/errors"
	"github.com/gutp/discux/internal/service"
)

// ContentWriter performs the write operations behind the forms.
type ContentWriter interface {
	CreateArticle(ctx context.Context, subjectID string, in service.ArticleInput) (content.Post, error)
	UpdateArticle(ctx context.Context, id string, in service.ArticleInput) (content.Post, error)
	DeleteArticle(ctx context.Context, id string) (string, error)
	CreateSubspace(ctx context.Context, subjectID string, in service.SubspaceInput) (content.Subspace, error)
	DeleteSubspace(ctx context.Context, id string) error
	CreateComment(ctx context.Context, subjectID string, in service.CommentInput) (content.Comment, error)
	DeleteComment(ctx context.Context, id string) (string, error)
}

// NewFormDecoder returns the shared form decoder. Unknown keys such as the
// submit button are ignored.
func NewFormDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.SetAliasTag("form")
	d.IgnoreUnknownKeys(true)
	return d
}

type articleForm struct {
	ID         string `form:"id"`
	SubspaceID string `form:"subspace_id"`
	Title      string `form:"title"`
	Content    string `form:"content"`
	ExtLink    string `form:"extlink"`
	IsPublic   bool   `form:"is_public"`
}

func (f articleForm) input() service.ArticleInput {
	return service.ArticleInput{
		SubspaceID: f.SubspaceID,
		Title:      f.Title,
		Content:    f.Content,
		ExtLink:    f.ExtLink,
		IsPublic:   f.IsPublic,
	}
}

type subspaceForm struct {
	Title       string `form:"title"`
	Description string `form:"description"`
	Banner      string `form:"banner"`
	IsPublic    bool   `form:"is_public"`
}

type commentForm struct {
	PostID  string `form:"post_id"`
	Content string `form:"content"`
}

type idForm struct {
	ID string `form:"id"`
}

// FormHandlers handles the POST side of every form.
type FormHandlers struct {
	Content ContentWriter
	Decoder *schema.Decoder
	Errors  ErrorRedirector
}

// bind parses the request body into dst and requires a signed-in caller.
func (h *FormHandlers) bind(r *http.Request, action string, dst any) (string, error) {
	subject, err := requireSubject(r, action)
	if err != nil {
		return "", err
	}
	if err := r.ParseForm(); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeValidation, action, "The form could not be read.")
	}
	if err := h.Decoder.Decode(dst, r.PostForm); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeValidation, action, "The form contains invalid values.")
	}
	return subject, nil
}

func (h *FormHandlers) finish(w http.ResponseWriter, r *http.Request, err error, to string) {
	if err != nil {
		h.Errors.Redirect(w, r, err)
		return
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// CreateArticle handles POST /article/create.
func (h *FormHandlers) CreateArticle(w http.ResponseWriter, r *http.Request) {
	var f articleForm
	subject, err := h.bind(r, "Create article", &f)
	if err != nil {
		h.finish(w, r, err, "")
		return
	}
	post, err := h.Content.CreateArticle(r.Context(), subject, f.input())
	h.finish(w, r, err, pathWithID("/article", "id", post.ID))
}

// EditArticle handles POST /article/edit.
func (h *FormHandlers) EditArticle(w http.ResponseWriter, r *http.Request) {
	var f articleForm
	if _, err := h.bind(r, "Edit article", &f); err != nil {
		h.finish(w, r, err, "")
		return
	}
	if f.ID == "" {
		h.finish(w, r, apperrors.ValidationField("id", "Edit article", "Missing id."), "")
		return
	}
	post, err := h.Content.UpdateArticle(r.Context(), f.ID, f.input())
	id := post.ID
	if id == "" {
		id = f.ID
	}
	h.finish(w, r, err, pathWithID("/article", "id", id))
}

// DeleteArticle handles POST /article/delete.
func (h *FormHandlers) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	var f idForm
	if _, err := h.bind(r, "Delete article", &f); err != nil {
		h.finish(w, r, err, "")
		return
	}
	if f.ID == "" {
		h.finish(w, r, apperrors.ValidationField("id", "Delete article", "Missing id."), "")
		return
	}
	subspaceID, err := h.Content.DeleteArticle(r.Context(), f.ID)
	to := RouteHome
	if subspaceID != "" {
		to = pathWithID("/subspace", "id", subspaceID)
	}
	h.finish(w, r, err, to)
}

// CreateSubspace handles POST /subspace/create.
func (h *FormHandlers) CreateSubspace(w http.ResponseWriter, r *http.Request) {
	var f subspaceForm
	subject, err := h.bind(r, "Create subspace", &f)
	if err != nil {
		h.finish(w, r, err, "")
		return
	}
	sub, err := h.Content.CreateSubspace(r.Context(), subject, service.SubspaceInput{
		Title:       f.Title,
		Description: f.Description,
		Banner:      f.Banner,
		IsPublic:    f.IsPublic,
	})
	h.finish(w, r, err, pathWithID("/subspace", "id", sub.ID))
}

// DeleteSubspace handles POST /subspace/delete.
func (h *FormHandlers) DeleteSubspace(w http.ResponseWriter, r *http.Request) {
	var f idForm
	if _, err := h.bind(r, "Delete subspace", &f); err != nil {
		h.finish(w, r, err, "")
		return
	}
	if f.ID == "" {
		h.finish(w, r, apperrors.ValidationField("id", "Delete subspace", "Missing id."), "")
		return
	}
	h.finish(w, r, h.Content.DeleteSubspace(r.Context(), f.ID), RouteHome)
}

// CreateComment handles POST /comment/create.
func (h *FormHandlers) CreateComment(w http.ResponseWriter, r *http.Request) {
	var f commentForm
	subject, err := h.bind(r, "Comment on article", &f)
	if err != nil {
		h.finish(w, r, err, "")
		return
	}
	_, err = h.Content.CreateComment(r.Context(), subject, service.CommentInput{PostID: f.PostID, Content: f.Content})
	h.finish(w, r, err, pathWithID("/article", "id", f.PostID))
}

// DeleteComment handles POST /comment/delete.
func (h *FormHandlers) DeleteComment(w http.ResponseWriter, r *http.Request) {
	var f idForm
	if _, err := h.bind(r, "Delete comment", &f); err != nil {
		h.finish(w, r, err, "")
		return
	}
	if f.ID == "" {
		h.finish(w, r, apperrors.ValidationField("id", "Delete comment", "Missing id."), "")
		return
	}
	postID, err := h.Content.DeleteComment(r.Context(), f.ID)
	h.finish(w, r, err, pathWithID("/article", "id", postID))
}

func pathWithID(path, key, id string) string {
	if id == "" {
		return path
	}
	return path + "?" + url.Values{key: {id}}.Encode()
}
