package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	apperrors "github.com/gutp/discux/internal/errors"
)

// ErrorSignaler is implemented by every error that can be shown to the user.
// AppError, compose.SlotError and service.LoginError all satisfy it.
type ErrorSignaler interface {
	ErrorSignal() (action, reason string)
}

const (
	unknownAction = "Handle request"
	unknownReason = "Unknown"
)

// Signal returns the (action, reason) pair for err. Errors that do not carry
// one are reported as Unknown under fallbackAction.
func Signal(err error, fallbackAction string) (string, string) {
	var s ErrorSignaler
	if errors.As(err, &s) {
		action, reason := s.ErrorSignal()
		if action == "" {
			action = fallbackAction
		}
		if reason == "" {
			reason = unknownReason
		}
		return action, reason
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fallbackAction, "The request timed out, please try again later."
	}
	if fallbackAction == "" {
		fallbackAction = unknownAction
	}
	return fallbackAction, unknownReason
}

// ErrorURL builds the error-display route carrying action and reason as
// URL-encoded query parameters.
func ErrorURL(action, reason string) string {
	q := url.Values{}
	q.Set("action", action)
	q.Set("err_info", reason)
	return RouteError + "?" + q.Encode()
}

// ErrorRedirector converts terminal failures into redirects to the error page.
type ErrorRedirector struct {
	Logger *slog.Logger
}

func (e ErrorRedirector) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// Redirect logs err and sends the browser to the error page. It is the only
// way failures reach the user.
func (e ErrorRedirector) Redirect(w http.ResponseWriter, r *http.Request, err error) {
	action, reason := Signal(err, unknownAction+": "+r.URL.Path)
	e.logger().WarnContext(r.Context(), "request failed",
		slog.String("action", action),
		slog.String("reason", reason),
		slog.String("code", string(apperrors.GetCode(err))),
		slog.String("request_id", RequestIDFromContext(r.Context())),
		slog.Any("error", err),
	)
	http.Redirect(w, r, ErrorURL(action, reason), http.StatusSeeOther)
}

// errorPageData is the view model of the error page.
type errorPageData struct {
	Action string
	Reason string
}

// ErrorPage renders the static error page from the action and err_info query parameters.
func ErrorPage(renderer *TemplateRenderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		data := errorPageData{Action: q.Get("action"), Reason: q.Get("err_info")}
		renderer.Render(w, r, PageError, NewPageData(r, "Error", data))
	}
}
