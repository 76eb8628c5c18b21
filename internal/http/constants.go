package httpx

import "time"

// Template names rendered by the page handlers.
const (
	PageIndex         = "index"
	PageArticle       = "article"
	PageSubspace      = "subspace"
	PageAccount       = "account"
	PageLogin         = "login"
	PageError         = "error"
	PageArticleForm   = "article_form"
	PageSubspaceForm  = "subspace_form"
	PageCommentForm   = "comment_form"
	PageConfirmDelete = "confirm_delete"
)

// Template paths used for loading templates in tests and production.
const (
	TemplatePathFromRoot = "frontend/templates"       // From project root
	TemplatePathFromTest = "../../frontend/templates" // From internal/http test files
)

// Routes that other routes redirect to.
const (
	RouteHome      = "/"
	RouteError     = "/error"
	RouteLogin     = "/user/login"
	RouteAuthBegin = "/auth/login"
	RouteCallback  = "/auth/callback"
)

const (
	oauthStateCookie = "oauth_state"
	oauthStateMaxAge = 10 * time.Minute
)

// FormMode represents the mode of a form (create or edit).
type FormMode string

const (
	// FormModeEdit indicates the form is in edit mode.
	FormModeEdit FormMode = "edit"
	// FormModeCreate indicates the form is in create mode.
	FormModeCreate FormMode = "create"
)
