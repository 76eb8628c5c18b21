package service

// Content API endpoints.
const (
	pathSubspace        = "/v1/subspace"
	pathSubspaceList    = "/v1/subspace/list"
	pathSubspaceCreate  = "/v1/subspace/create"
	pathSubspaceDelete  = "/v1/subspace/delete"
	pathPost            = "/v1/post"
	pathPostsBySubspace = "/v1/post/list_by_subspace"
	pathPostCreate      = "/v1/post/create"
	pathPostUpdate      = "/v1/post/update"
	pathPostDelete      = "/v1/post/delete"
	pathComment         = "/v1/comment"
	pathCommentsByPost  = "/v1/comment/list_by_post"
	pathCommentCreate   = "/v1/comment/create"
	pathCommentDelete   = "/v1/comment/delete"
	pathUser            = "/v1/user"
)

// User-facing reasons shared by pages and write operations.
const (
	reasonArticleMissing  = "Article doesn't exist!"
	reasonSubspaceMissing = "No this subspace."
	reasonCommentMissing  = "Comment doesn't exist!"
	reasonUserMissing     = "User doesn't exist!"
	reasonArticleHasReply = "Article has comments attached, could not be deleted!"
	reasonSubspaceHasPost = "This subspace has article attached, could not be deleted!"
)

func actionQueryArticle(id string) string  { return "Query article: " + id }
func actionQuerySubspace(id string) string { return "Query subspace: " + id }
func actionQueryComment(id string) string  { return "Query comment: " + id }
func actionQueryUser(id string) string     { return "Query user: " + id }
