package service

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	apperrors "github.com/gutp/discux/internal/errors"
	"github.com/gutp/discux/internal/mocks"
)

func newContentService(t *testing.T) (*ContentService, *mocks.MockContentClient) {
	t.Helper()
	client := mocks.NewMockContentClient(gomock.NewController(t))
	svc := NewContentService(ContentServiceOptions{Content: client, AppID: "discux", Profession: "forum"})
	return svc, client
}

func TestContentService_DeleteSubspaceWithPostsIsConflict(t *testing.T) {
	svc, client := newContentService(t)
	client.EXPECT().Get(gomock.Any(), "/v1/subspace", url.Values{"id": {"s1"}}).
		Return(rawArray(t, `[{"id":"s1"}]`), nil)
	client.EXPECT().Get(gomock.Any(), "/v1/post/list_by_subspace", url.Values{"subspace_id": {"s1"}}).
		Return(rawArray(t, `[{"id":"p1","subspace_id":"s1"}]`), nil)
	// Any Post call, including /v1/subspace/delete, fails the test.

	err := svc.DeleteSubspace(context.Background(), "s1")
	require.True(t, apperrors.IsConflict(err))

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	action, reason := appErr.ErrorSignal()
	assert.Equal(t, "Intend to delete subspace: s1", action)
	assert.Equal(t, "This subspace has article attached, could not be deleted!", reason)
}

func TestContentService_DeleteSubspaceLookupFailureNeverDeletes(t *testing.T) {
	svc, client := newContentService(t)
	client.EXPECT().Get(gomock.Any(), "/v1/subspace", gomock.Any()).Return(rawArray(t, `[{"id":"s1"}]`), nil)
	client.EXPECT().Get(gomock.Any(), "/v1/post/list_by_subspace", gomock.Any()).Return(nil, errors.New("timeout"))

	err := svc.DeleteSubspace(context.Background(), "s1")
	require.True(t, apperrors.IsUpstream(err))
}

func TestContentService_DeleteSubspace(t *testing.T) {
	svc, client := newContentService(t)
	gomock.InOrder(
		client.EXPECT().Get(gomock.Any(), "/v1/subspace", gomock.Any()).Return(rawArray(t, `[{"id":"s1"}]`), nil),
		client.EXPECT().Get(gomock.Any(), "/v1/post/list_by_subspace", gomock.Any()).Return(rawArray(t, `[]`), nil),
		client.EXPECT().Post(gomock.Any(), "/v1/subspace/delete", idBody{ID: "s1"}).Return(rawArray(t, `[{"id":"s1"}]`), nil),
	)

	require.NoError(t, svc.DeleteSubspace(context.Background(), "s1"))
}

func TestContentService_DeleteSubspaceMissing(t *testing.T) {
	svc, client := newContentService(t)
	client.EXPECT().Get(gomock.Any(), "/v1/subspace", gomock.Any()).Return(rawArray(t, `[]`), nil)

	err := svc.DeleteSubspace(context.Background(), "s1")
	require.True(t, apperrors.IsNotFound(err))
}

func TestContentService_DeleteArticleWithCommentsIsConflict(t *testing.T) {
	svc, client := newContentService(t)
	client.EXPECT().Get(gomock.Any(), "/v1/post", gomock.Any()).Return(rawArray(t, `[{"id":"p1","subspace_id":"s1"}]`), nil)
	client.EXPECT().Get(gomock.Any(), "/v1/comment/list_by_post", url.Values{"post_id": {"p1"}}).
		Return(rawArray(t, `[{"id":"c1"}]`), nil)

	_, err := svc.DeleteArticle(context.Background(), "p1")
	require.True(t, apperrors.IsConflict(err))
}

func TestContentService_DeleteArticle(t *testing.T) {
	svc, client := newContentService(t)
	client.EXPECT().Get(gomock.Any(), "/v1/post", gomock.Any()).Return(rawArray(t, `[{"id":"p1","subspace_id":"s1"}]`), nil)
	client.EXPECT().Get(gomock.Any(), "/v1/comment/list_by_post", gomock.Any()).Return(rawArray(t, `[]`), nil)
	client.EXPECT().Post(gomock.Any(), "/v1/post/delete", idBody{ID: "p1"}).Return(rawArray(t, `[]`), nil)

	subspaceID, err := svc.DeleteArticle(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "s1", subspaceID)
}

func TestContentService_CreateArticle(t *testing.T) {
	svc, client := newContentService(t)
	client.EXPECT().Get(gomock.Any(), "/v1/user", url.Values{"id": {"u1"}}).
		Return(rawArray(t, `[{"id":"u1","nickname":"gopher"}]`), nil)
	client.EXPECT().Post(gomock.Any(), "/v1/post/create", postCreateBody{
		Title:          "Hello",
		Content:        "world",
		AuthorID:       "u1",
		AuthorNickname: "gopher",
		SubspaceID:     "s1",
		ExtLink:        "https://go.dev",
		Profession:     "forum",
		AppID:          "discux",
		IsPublic:       true,
	}).Return(rawArray(t, `[{"id":"p9","subspace_id":"s1"}]`), nil)

	post, err := svc.CreateArticle(context.Background(), "u1", ArticleInput{
		SubspaceID: "s1",
		Title:      " Hello ",
		Content:    "world",
		ExtLink:    "https://go.dev",
		IsPublic:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, "p9", post.ID)
}

func TestContentService_CreateArticleValidation(t *testing.T) {
	svc, _ := newContentService(t)

	_, err := svc.CreateArticle(context.Background(), "u1", ArticleInput{SubspaceID: "s1", Content: "x"})
	require.True(t, apperrors.IsValidation(err))
	assert.Equal(t, "title", apperrors.GetField(err))

	_, err = svc.CreateArticle(context.Background(), "u1", ArticleInput{Title: "t", Content: "x"})
	require.True(t, apperrors.IsValidation(err))
}

func TestContentService_CreateCommentUnknownAuthor(t *testing.T) {
	svc, client := newContentService(t)
	client.EXPECT().Get(gomock.Any(), "/v1/user", gomock.Any()).Return(rawArray(t, `[]`), nil)

	_, err := svc.CreateComment(context.Background(), "ghost", CommentInput{PostID: "p1", Content: "hi"})
	require.True(t, apperrors.IsNotFound(err))
}

func TestContentService_CreateCommentEmptyAnswerIsUpstream(t *testing.T) {
	svc, client := newContentService(t)
	client.EXPECT().Get(gomock.Any(), "/v1/user", gomock.Any()).Return(rawArray(t, `[{"id":"u1","nickname":"n"}]`), nil)
	client.EXPECT().Post(gomock.Any(), "/v1/comment/create", commentCreateBody{
		Content: "hi", PostID: "p1", AuthorID: "u1", AuthorNickname: "n",
	}).Return(rawArray(t, `[]`), nil)

	_, err := svc.CreateComment(context.Background(), "u1", CommentInput{PostID: "p1", Content: "hi"})
	require.True(t, apperrors.IsUpstream(err))
	assert.ErrorIs(t, err, errEmptyAnswer)
}

func TestContentService_CreateSubspace(t *testing.T) {
	svc, client := newContentService(t)
	client.EXPECT().Post(gomock.Any(), "/v1/subspace/create", subspaceCreateBody{
		Title: "Go", Description: "all things go", OwnerID: "u1", Profession: "forum", AppID: "discux", IsPublic: true,
	}).Return(rawArray(t, `[{"id":"s2","title":"Go"}]`), nil)

	sub, err := svc.CreateSubspace(context.Background(), "u1", SubspaceInput{Title: "Go", Description: "all things go", IsPublic: true})
	require.NoError(t, err)
	assert.Equal(t, "s2", sub.ID)
}

func TestContentService_UpdateAndDeleteComment(t *testing.T) {
	svc, client := newContentService(t)
	client.EXPECT().Post(gomock.Any(), "/v1/post/update", postUpdateBody{ID: "p1", Title: "T", Content: "C"}).
		Return(rawArray(t, `[{"id":"p1"}]`), nil)
	client.EXPECT().Get(gomock.Any(), "/v1/comment", url.Values{"id": {"c1"}}).
		Return(rawArray(t, `[{"id":"c1","post_id":"p1"}]`), nil)
	client.EXPECT().Post(gomock.Any(), "/v1/comment/delete", idBody{ID: "c1"}).Return(nil, nil)

	post, err := svc.UpdateArticle(context.Background(), "p1", ArticleInput{Title: "T", Content: "C"})
	require.NoError(t, err)
	assert.Equal(t, "p1", post.ID)

	postID, err := svc.DeleteComment(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "p1", postID)
}
