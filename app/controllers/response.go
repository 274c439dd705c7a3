package controllers

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/rs/zerolog"

	"postboard/app/repositories"
	"postboard/app/services"
)

// View names reported under the "template" key.
const (
	TemplateIndex      = "posts/index.html"
	TemplateGroupList  = "posts/group_list.html"
	TemplateProfile    = "posts/profile.html"
	TemplatePostDetail = "posts/post_detail.html"
	TemplateCreatePost = "posts/create_post.html"
	TemplateGroups     = "posts/groups.html"
)

// ViewContext is the JSON body of a page: named values plus the template
// that would render them.
type ViewContext map[string]interface{}

// ErrorPayload is the error envelope returned for every failed request.
type ErrorPayload struct {
	Error       string                `json:"error"`
	Message     string                `json:"message,omitempty"`
	FieldErrors []services.FieldError `json:"field_errors,omitempty"`
}

// MapError converts a domain or storage error into an HTTP status and payload.
func MapError(err error) (int, ErrorPayload) {
	if err == nil {
		return http.StatusOK, ErrorPayload{Error: "ok"}
	}

	if errors.Is(err, services.ErrInvalidInput) {
		return http.StatusBadRequest, ErrorPayload{
			Error:       "invalid_input",
			Message:     "one or more fields are invalid",
			FieldErrors: services.FieldErrors(err),
		}
	}

	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return http.StatusNotFound, ErrorPayload{Error: "not_found"}
	case errors.Is(err, repositories.ErrAlreadyExists):
		return http.StatusConflict, ErrorPayload{Error: "already_exists"}
	case errors.Is(err, repositories.ErrConflict):
		return http.StatusConflict, ErrorPayload{Error: "conflict"}
	default:
		return http.StatusInternalServerError, ErrorPayload{Error: "internal_error"}
	}
}

func sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// sendError maps err and writes it; server-side failures are logged.
func sendError(w http.ResponseWriter, r *http.Request, log zerolog.Logger, err error) {
	status, payload := MapError(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	sendJSON(w, status, payload)
}

func render(w http.ResponseWriter, status int, template string, ctx ViewContext) {
	ctx["template"] = template
	sendJSON(w, status, ctx)
}

// isJSON reports whether the request body is JSON rather than form data.
func isJSON(r *http.Request) bool {
	ct, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && ct == "application/json"
}

// pageParam returns the raw "page" query value, or nil when it is absent.
// A repeated parameter resolves to its last value.
func pageParam(r *http.Request) *string {
	values, ok := r.URL.Query()["page"]
	if !ok || len(values) == 0 {
		return nil
	}
	raw := values[len(values)-1]
	return &raw
}
