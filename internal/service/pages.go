package service

import (
	"context"
	"net/url"

	"github.com/gutp/discux/internal/adapters/contentapi"
	"github.com/gutp/discux/internal/compose"
	"github.com/gutp/discux/internal/domain/content"
	apperrors "github.com/gutp/discux/internal/errors"
	"github.com/gutp/discux/internal/ports"
)

// PageServiceOptions groups dependencies for PageService.
type PageServiceOptions struct {
	Composer *compose.Composer
	Content  ports.ContentClient
}

// PageService builds the read-side view models. Each page is a declared
// composition; pages guarding a delete also check for dependents.
type PageService struct {
	composer *compose.Composer
	content  ports.ContentClient
}

// NewPageService constructs a PageService.
func NewPageService(opts PageServiceOptions) *PageService {
	return &PageService{composer: opts.Composer, content: opts.Content}
}

// IndexView lists every subspace.
type IndexView struct {
	Subspaces []content.Subspace
}

// ArticleView is a post with its discussion and context.
type ArticleView struct {
	Post     content.Post
	Comments []content.Comment
	Subspace content.Subspace
	Author   content.User
}

// SubspaceView is a subspace with its posts.
type SubspaceView struct {
	Subspace content.Subspace
	Posts    []content.Post
}

func indexPage() compose.Page {
	return compose.Page{Name: "index", Specs: []compose.FetchSpec{
		compose.Many[content.Subspace]("subspaces", pathSubspaceList, nil),
	}}
}

func articlePage(id string) compose.Page {
	return compose.Page{Name: "article", Specs: []compose.FetchSpec{
		requiredPost(id),
		compose.Many[content.Comment]("comments", pathCommentsByPost, nil).
			After("post", map[string]string{"post_id": "id"}),
		compose.One[content.Subspace]("subspace", pathSubspace, nil).
			After("post", map[string]string{"id": "subspace_id"}),
		compose.One[content.User]("author", pathUser, nil).
			After("post", map[string]string{"id": "author_id"}),
	}}
}

func subspacePage(id string) compose.Page {
	return compose.Page{Name: "subspace", Specs: []compose.FetchSpec{
		requiredSubspace(id),
		compose.Many[content.Post]("posts", pathPostsBySubspace, nil).
			After("subspace", map[string]string{"subspace_id": "id"}),
	}}
}

func requiredPost(id string) compose.FetchSpec {
	return compose.One[content.Post]("post", pathPost, url.Values{"id": {id}}).
		Require(actionQueryArticle(id), reasonArticleMissing)
}

func requiredSubspace(id string) compose.FetchSpec {
	return compose.One[content.Subspace]("subspace", pathSubspace, url.Values{"id": {id}}).
		Require(actionQuerySubspace(id), reasonSubspaceMissing)
}

func requiredComment(id string) compose.FetchSpec {
	return compose.One[content.Comment]("comment", pathComment, url.Values{"id": {id}}).
		Require(actionQueryComment(id), reasonCommentMissing)
}

func requiredUser(id string) compose.FetchSpec {
	return compose.One[content.User]("user", pathUser, url.Values{"id": {id}}).
		Require(actionQueryUser(id), reasonUserMissing)
}

// single composes a page made of one REQUIRED slot and returns its value.
func single[T any](ctx context.Context, c *compose.Composer, name string, spec compose.FetchSpec) (T, error) {
	res, err := c.Compose(ctx, compose.Page{Name: name, Specs: []compose.FetchSpec{spec}})
	if err != nil {
		var zero T
		return zero, err
	}
	return compose.Get[T](res, spec.Slot), nil
}

// Index lists subspaces. A failing subspace list renders as empty.
func (s *PageService) Index(ctx context.Context) (IndexView, error) {
	res, err := s.composer.Compose(ctx, indexPage())
	if err != nil {
		return IndexView{}, err
	}
	return IndexView{Subspaces: compose.Get[[]content.Subspace](res, "subspaces")}, nil
}

// Article loads a post; comments, subspace and author are best effort.
func (s *PageService) Article(ctx context.Context, id string) (ArticleView, error) {
	res, err := s.composer.Compose(ctx, articlePage(id))
	if err != nil {
		return ArticleView{}, err
	}
	return ArticleView{
		Post:     compose.Get[content.Post](res, "post"),
		Comments: compose.Get[[]content.Comment](res, "comments"),
		Subspace: compose.Get[content.Subspace](res, "subspace"),
		Author:   compose.Get[content.User](res, "author"),
	}, nil
}

// Subspace loads a subspace and its posts.
func (s *PageService) Subspace(ctx context.Context, id string) (SubspaceView, error) {
	res, err := s.composer.Compose(ctx, subspacePage(id))
	if err != nil {
		return SubspaceView{}, err
	}
	return SubspaceView{
		Subspace: compose.Get[content.Subspace](res, "subspace"),
		Posts:    compose.Get[[]content.Post](res, "posts"),
	}, nil
}

// Account loads the signed-in user's record.
func (s *PageService) Account(ctx context.Context, subjectID string) (content.User, error) {
	return single[content.User](ctx, s.composer, "account", requiredUser(subjectID))
}

// ArticleCreateForm loads the subspace a new article goes into.
func (s *PageService) ArticleCreateForm(ctx context.Context, subspaceID string) (content.Subspace, error) {
	return single[content.Subspace](ctx, s.composer, "article_create", requiredSubspace(subspaceID))
}

// ArticleEditForm loads the article being edited.
func (s *PageService) ArticleEditForm(ctx context.Context, id string) (content.Post, error) {
	return single[content.Post](ctx, s.composer, "article_edit", requiredPost(id))
}

// ArticleDeleteConfirm loads the article and refuses when comments exist.
func (s *PageService) ArticleDeleteConfirm(ctx context.Context, id string) (content.Post, error) {
	post, err := single[content.Post](ctx, s.composer, "article_delete", requiredPost(id))
	if err != nil {
		return content.Post{}, err
	}
	if err := ensureNoComments(ctx, s.content, id); err != nil {
		return content.Post{}, err
	}
	return post, nil
}

// SubspaceDeleteConfirm loads the subspace and refuses when posts exist.
func (s *PageService) SubspaceDeleteConfirm(ctx context.Context, id string) (content.Subspace, error) {
	sub, err := single[content.Subspace](ctx, s.composer, "subspace_delete", requiredSubspace(id))
	if err != nil {
		return content.Subspace{}, err
	}
	if err := ensureNoPosts(ctx, s.content, id); err != nil {
		return content.Subspace{}, err
	}
	return sub, nil
}

// CommentCreateForm loads the article being replied to.
func (s *PageService) CommentCreateForm(ctx context.Context, postID string) (content.Post, error) {
	return single[content.Post](ctx, s.composer, "comment_create", requiredPost(postID))
}

// CommentDeleteConfirm loads the comment being deleted.
func (s *PageService) CommentDeleteConfirm(ctx context.Context, id string) (content.Comment, error) {
	return single[content.Comment](ctx, s.composer, "comment_delete", requiredComment(id))
}

// ensureNoComments returns a Conflict when post id has comments. A failed
// lookup is an upstream error, never "no comments".
func ensureNoComments(ctx context.Context, c ports.ContentClient, id string) error {
	comments, err := contentapi.List[content.Comment](ctx, c, pathCommentsByPost, url.Values{"post_id": {id}})
	if err != nil {
		return apperrors.Upstream(err, "Intend to delete article: "+id, compose.ReasonUpstream)
	}
	if len(comments) > 0 {
		return apperrors.Conflict("Intend to delete article: "+id, reasonArticleHasReply)
	}
	return nil
}

// ensureNoPosts returns a Conflict when subspace id has posts.
func ensureNoPosts(ctx context.Context, c ports.ContentClient, id string) error {
	posts, err := contentapi.List[content.Post](ctx, c, pathPostsBySubspace, url.Values{"subspace_id": {id}})
	if err != nil {
		return apperrors.Upstream(err, "Intend to delete subspace: "+id, compose.ReasonUpstream)
	}
	if len(posts) > 0 {
		return apperrors.Conflict("Intend to delete subspace: "+id, reasonSubspaceHasPost)
	}
	return nil
}
