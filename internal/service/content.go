package service

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"

	"github.com/gutp/discux/internal/adapters/contentapi"
	"github.com/gutp/discux/internal/compose"
	"github.com/gutp/discux/internal/domain/content"
	apperrors "github.com/gutp/discux/internal/errors"
	"github.com/gutp/discux/internal/ports"
)

var errEmptyAnswer = errors.New("content api returned an empty array")

// ContentServiceOptions groups dependencies for ContentService.
type ContentServiceOptions struct {
	Content    ports.ContentClient
	AppID      string
	Profession string
	Logger     *slog.Logger
}

// ContentService performs the write operations behind the forms.
type ContentService struct {
	content    ports.ContentClient
	appID      string
	profession string
	logger     *slog.Logger
}

// NewContentService constructs a ContentService.
func NewContentService(opts ContentServiceOptions) *ContentService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ContentService{
		content:    opts.Content,
		appID:      opts.AppID,
		profession: opts.Profession,
		logger:     logger.With("component", "content"),
	}
}

// ArticleInput is the editable part of a post.
type ArticleInput struct {
	SubspaceID string
	Title      string
	Content    string
	ExtLink    string
	IsPublic   bool
}

func (in ArticleInput) validate(action string) error {
	if strings.TrimSpace(in.Title) == "" {
		return apperrors.ValidationField("title", action, "Title is required.")
	}
	if strings.TrimSpace(in.Content) == "" {
		return apperrors.ValidationField("content", action, "Content is required.")
	}
	return nil
}

// SubspaceInput is the editable part of a subspace.
type SubspaceInput struct {
	Title       string
	Description string
	Banner      string
	IsPublic    bool
}

// CommentInput is a reply to a post.
type CommentInput struct {
	PostID  string
	Content string
}

type postCreateBody struct {
	Title          string `json:"title"`
	Content        string `json:"content"`
	AuthorID       string `json:"author_id"`
	AuthorNickname string `json:"author_nickname"`
	SubspaceID     string `json:"subspace_id"`
	ExtLink        string `json:"extlink"`
	Profession     string `json:"profession"`
	AppID          string `json:"appid"`
	IsPublic       bool   `json:"is_public"`
}

type postUpdateBody struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	ExtLink  string `json:"extlink"`
	IsPublic bool   `json:"is_public"`
}

type subspaceCreateBody struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Banner      string `json:"banner"`
	OwnerID     string `json:"owner_id"`
	Profession  string `json:"profession"`
	AppID       string `json:"appid"`
	IsPublic    bool   `json:"is_public"`
}

type commentCreateBody struct {
	Content        string `json:"content"`
	PostID         string `json:"post_id"`
	AuthorID       string `json:"author_id"`
	AuthorNickname string `json:"author_nickname"`
}

type idBody struct {
	ID string `json:"id"`
}

// CreateArticle posts a new article authored by subjectID.
func (s *ContentService) CreateArticle(ctx context.Context, subjectID string, in ArticleInput) (content.Post, error) {
	action := "Create article in subspace: " + in.SubspaceID
	if in.SubspaceID == "" {
		return content.Post{}, apperrors.ValidationField("subspace_id", action, "Subspace is required.")
	}
	if err := in.validate(action); err != nil {
		return content.Post{}, err
	}

	author, err := s.lookupUser(ctx, subjectID)
	if err != nil {
		return content.Post{}, err
	}

	body := postCreateBody{
		Title:          strings.TrimSpace(in.Title),
		Content:        in.Content,
		AuthorID:       author.ID,
		AuthorNickname: author.Nickname,
		SubspaceID:     in.SubspaceID,
		ExtLink:        strings.TrimSpace(in.ExtLink),
		Profession:     s.profession,
		AppID:          s.appID,
		IsPublic:       in.IsPublic,
	}
	return submit[content.Post](ctx, s.content, pathPostCreate, body, action, "Failed to create the article.")
}

// UpdateArticle replaces the editable fields of article id.
func (s *ContentService) UpdateArticle(ctx context.Context, id string, in ArticleInput) (content.Post, error) {
	action := "Edit article: " + id
	if err := in.validate(action); err != nil {
		return content.Post{}, err
	}
	body := postUpdateBody{
		ID:       id,
		Title:    strings.TrimSpace(in.Title),
		Content:  in.Content,
		ExtLink:  strings.TrimSpace(in.ExtLink),
		IsPublic: in.IsPublic,
	}
	return submit[content.Post](ctx, s.content, pathPostUpdate, body, action, "Failed to update the article.")
}

// DeleteArticle removes article id unless it has comments and returns its
// subspace id. No delete is sent when the dependent check fails.
func (s *ContentService) DeleteArticle(ctx context.Context, id string) (string, error) {
	post, err := lookupRequired[content.Post](ctx, s.content, pathPost, id, actionQueryArticle(id), reasonArticleMissing)
	if err != nil {
		return "", err
	}
	if err := ensureNoComments(ctx, s.content, id); err != nil {
		return "", err
	}
	if _, err := s.content.Post(ctx, pathPostDelete, idBody{ID: id}); err != nil {
		return "", apperrors.Upstream(err, "Delete article: "+id, "Failed to delete the article.")
	}
	s.logger.InfoContext(ctx, "article deleted", "post_id", id, "subspace_id", post.SubspaceID)
	return post.SubspaceID, nil
}

// CreateSubspace creates a subspace owned by subjectID.
func (s *ContentService) CreateSubspace(ctx context.Context, subjectID string, in SubspaceInput) (content.Subspace, error) {
	action := "Create subspace"
	if strings.TrimSpace(in.Title) == "" {
		return content.Subspace{}, apperrors.ValidationField("title", action, "Title is required.")
	}
	body := subspaceCreateBody{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Banner:      strings.TrimSpace(in.Banner),
		OwnerID:     subjectID,
		Profession:  s.profession,
		AppID:       s.appID,
		IsPublic:    in.IsPublic,
	}
	return submit[content.Subspace](ctx, s.content, pathSubspaceCreate, body, action, "Failed to create the subspace.")
}

// DeleteSubspace removes subspace id unless it has posts.
func (s *ContentService) DeleteSubspace(ctx context.Context, id string) error {
	if _, err := lookupRequired[content.Subspace](ctx, s.content, pathSubspace, id, actionQuerySubspace(id), reasonSubspaceMissing); err != nil {
		return err
	}
	if err := ensureNoPosts(ctx, s.content, id); err != nil {
		return err
	}
	if _, err := s.content.Post(ctx, pathSubspaceDelete, idBody{ID: id}); err != nil {
		return apperrors.Upstream(err, "Delete subspace: "+id, "Failed to delete the subspace.")
	}
	s.logger.InfoContext(ctx, "subspace deleted", "subspace_id", id)
	return nil
}

// CreateComment replies to a post as subjectID.
func (s *ContentService) CreateComment(ctx context.Context, subjectID string, in CommentInput) (content.Comment, error) {
	action := "Comment on article: " + in.PostID
	if in.PostID == "" {
		return content.Comment{}, apperrors.ValidationField("post_id", action, "Article is required.")
	}
	if strings.TrimSpace(in.Content) == "" {
		return content.Comment{}, apperrors.ValidationField("content", action, "Content is required.")
	}

	author, err := s.lookupUser(ctx, subjectID)
	if err != nil {
		return content.Comment{}, err
	}
	body := commentCreateBody{
		Content:        in.Content,
		PostID:         in.PostID,
		AuthorID:       author.ID,
		AuthorNickname: author.Nickname,
	}
	return submit[content.Comment](ctx, s.content, pathCommentCreate, body, action, "Failed to create the comment.")
}

// DeleteComment removes comment id and returns the post it belonged to.
func (s *ContentService) DeleteComment(ctx context.Context, id string) (string, error) {
	comment, err := lookupRequired[content.Comment](ctx, s.content, pathComment, id, actionQueryComment(id), reasonCommentMissing)
	if err != nil {
		return "", err
	}
	if _, err := s.content.Post(ctx, pathCommentDelete, idBody{ID: id}); err != nil {
		return "", apperrors.Upstream(err, "Delete comment: "+id, "Failed to delete the comment.")
	}
	return comment.PostID, nil
}

func (s *ContentService) lookupUser(ctx context.Context, subjectID string) (content.User, error) {
	return lookupRequired[content.User](ctx, s.content, pathUser, subjectID, actionQueryUser(subjectID), reasonUserMissing)
}

// lookupRequired fetches the entity at path?id= and maps absence to NotFound.
func lookupRequired[T any](ctx context.Context, c ports.ContentClient, path, id, action, reason string) (T, error) {
	v, found, err := contentapi.Lookup[T](ctx, c, path, url.Values{"id": {id}})
	if err != nil {
		return v, apperrors.Upstream(err, action, compose.ReasonUpstream)
	}
	if !found {
		return v, apperrors.NotFound(action, reason)
	}
	return v, nil
}

// submit posts body and requires the answer to carry the written entity.
func submit[T any](ctx context.Context, c ports.ContentClient, path string, body any, action, reason string) (T, error) {
	v, found, err := contentapi.Submit[T](ctx, c, path, body)
	if err != nil {
		return v, apperrors.Upstream(err, action, reason)
	}
	if !found {
		return v, apperrors.Wrap(errEmptyAnswer, apperrors.ErrCodeUpstream, action, reason)
	}
	return v, nil
}
