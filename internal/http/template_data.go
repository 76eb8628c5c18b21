package httpx

import (
	"net/http"

	domainauth "github.com/gutp/discux/internal/domain/auth"
)

// PageData is the value every page template receives.
type PageData struct {
	Title     string
	Identity  domainauth.Identity
	SubjectID string
	SignedIn  bool
	RequestID string
	// Data is the page-specific view model.
	Data any
}

// NewPageData wraps data with the request identity.
func NewPageData(r *http.Request, title string, data any) PageData {
	id := IdentityFromContext(r.Context())
	subject, ok := id.SubjectID()
	return PageData{
		Title:     title,
		Identity:  id,
		SubjectID: subject,
		SignedIn:  ok,
		RequestID: RequestIDFromContext(r.Context()),
		Data:      data,
	}
}
