package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"postboard/app/models"
	"postboard/app/services"
)

// GroupController lists and creates groups.
type GroupController struct {
	groups *services.GroupService
	log    zerolog.Logger
}

func NewGroupController(groups *services.GroupService, logger zerolog.Logger) *GroupController {
	return &GroupController{
		groups: groups,
		log:    logger.With().Str("component", "controller").Str("controller", "group").Logger(),
	}
}

// Index lists every group.
func (gc *GroupController) Index(w http.ResponseWriter, r *http.Request) {
	groups, err := gc.groups.ListGroups(r.Context())
	if err != nil {
		sendError(w, r, gc.log, err)
		return
	}
	render(w, http.StatusOK, TemplateGroups, ViewContext{"groups": groups})
}

// Create accepts {"title", "slug", "description"} as JSON or form values.
func (gc *GroupController) Create(w http.ResponseWriter, r *http.Request) {
	var in models.Group
	if isJSON(r) {
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			sendError(w, r, gc.log, invalidBody(err))
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			sendError(w, r, gc.log, invalidBody(err))
			return
		}
		in.Title = r.PostForm.Get("title")
		in.Slug = r.PostForm.Get("slug")
		in.Description = r.PostForm.Get("description")
	}

	group, err := gc.groups.CreateGroup(r.Context(), in)
	if err != nil {
		sendError(w, r, gc.log, err)
		return
	}
	sendJSON(w, http.StatusCreated, group)
}

// AuthorController registers authors.
type AuthorController struct {
	authors *services.AuthorService
	log     zerolog.Logger
}

func NewAuthorController(authors *services.AuthorService, logger zerolog.Logger) *AuthorController {
	return &AuthorController{
		authors: authors,
		log:     logger.With().Str("component", "controller").Str("controller", "author").Logger(),
	}
}

// Create accepts {"username"} as JSON or a form value.
func (ac *AuthorController) Create(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
	}
	if isJSON(r) {
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			sendError(w, r, ac.log, invalidBody(err))
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			sendError(w, r, ac.log, invalidBody(err))
			return
		}
		in.Username = r.PostForm.Get("username")
	}

	author, err := ac.authors.CreateAuthor(r.Context(), in.Username)
	if err != nil {
		sendError(w, r, ac.log, err)
		return
	}
	sendJSON(w, http.StatusCreated, author)
}
