package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"postboard/app/models"
	"postboard/app/pagination"
	"postboard/app/services"
)

// PostController serves the listing pages and post authoring.
type PostController struct {
	services *services.Services
	pageSize int
	log      zerolog.Logger
}

// NewPostController creates a new PostController. pageSize below 1 falls
// back to pagination.DefaultPageSize.
func NewPostController(svc *services.Services, pageSize int, logger zerolog.Logger) *PostController {
	if pageSize < 1 {
		pageSize = pagination.DefaultPageSize
	}
	return &PostController{
		services: svc,
		pageSize: pageSize,
		log:      logger.With().Str("component", "controller").Str("controller", "post").Logger(),
	}
}

func (pc *PostController) paginate(r *http.Request, posts []*models.Post) pagination.Page[*models.Post] {
	return pagination.Paginate(posts, pageParam(r), pc.pageSize)
}

// Index lists every post.
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	posts, err := pc.services.Listing.ListAll(r.Context())
	if err != nil {
		sendError(w, r, pc.log, err)
		return
	}
	render(w, http.StatusOK, TemplateIndex, ViewContext{
		"page_obj": pc.paginate(r, posts),
	})
}

// GroupPosts lists the posts of the group named by the slug path variable.
func (pc *PostController) GroupPosts(w http.ResponseWriter, r *http.Request) {
	group, posts, err := pc.services.Listing.ListByGroup(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		sendError(w, r, pc.log, err)
		return
	}
	render(w, http.StatusOK, TemplateGroupList, ViewContext{
		"group":    group,
		"page_obj": pc.paginate(r, posts),
	})
}

// Profile lists the posts of the author named by the username path variable.
func (pc *PostController) Profile(w http.ResponseWriter, r *http.Request) {
	author, posts, count, err := pc.services.Listing.ListByAuthor(r.Context(), mux.Vars(r)["username"])
	if err != nil {
		sendError(w, r, pc.log, err)
		return
	}
	render(w, http.StatusOK, TemplateProfile, ViewContext{
		"author":     author,
		"post_count": count,
		"page_obj":   pc.paginate(r, posts),
	})
}

// Show handles displaying a single post
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		sendJSON(w, http.StatusBadRequest, ErrorPayload{Error: "invalid_input", Message: "invalid post id"})
		return
	}

	detail, err := pc.services.Posts.GetPost(r.Context(), id)
	if err != nil {
		sendError(w, r, pc.log, err)
		return
	}
	render(w, http.StatusOK, TemplatePostDetail, ViewContext{
		"post":       detail.Post,
		"author":     detail.Author,
		"post_count": detail.PostCount,
	})
}

// New describes the empty post form.
func (pc *PostController) New(w http.ResponseWriter, r *http.Request) {
	form, err := pc.form(r, nil)
	if err != nil {
		sendError(w, r, pc.log, err)
		return
	}
	render(w, http.StatusOK, TemplateCreatePost, ViewContext{"form": form})
}

// Create handles creating a new post. A form submission is redirected to
// the author's profile; a JSON submission gets the stored post back.
func (pc *PostController) Create(w http.ResponseWriter, r *http.Request) {
	in, err := decodePostInput(r)
	if err != nil {
		sendError(w, r, pc.log, err)
		return
	}

	post, err := pc.services.Posts.CreatePost(r.Context(), in)
	if err != nil {
		sendError(w, r, pc.log, err)
		return
	}

	if isJSON(r) {
		sendJSON(w, http.StatusCreated, post)
		return
	}
	http.Redirect(w, r, ProfileURL(strings.TrimSpace(in.Author)), http.StatusSeeOther)
}

// EditForm describes the edit form prefilled with the post.
func (pc *PostController) EditForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		sendJSON(w, http.StatusBadRequest, ErrorPayload{Error: "invalid_input", Message: "invalid post id"})
		return
	}
	detail, err := pc.services.Posts.GetPost(r.Context(), id)
	if err != nil {
		sendError(w, r, pc.log, err)
		return
	}
	form, err := pc.form(r, detail.Post)
	if err != nil {
		sendError(w, r, pc.log, err)
		return
	}
	render(w, http.StatusOK, TemplateCreatePost, ViewContext{
		"form":    form,
		"post":    detail.Post,
		"is_edit": true,
	})
}

// Edit handles editing an existing post. A form submission is redirected
// to the post detail; a JSON submission gets the updated post back.
func (pc *PostController) Edit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		sendJSON(w, http.StatusBadRequest, ErrorPayload{Error: "invalid_input", Message: "invalid post id"})
		return
	}
	in, err := decodePostInput(r)
	if err != nil {
		sendError(w, r, pc.log, err)
		return
	}

	post, err := pc.services.Posts.UpdatePost(r.Context(), id, in)
	if err != nil {
		sendError(w, r, pc.log, err)
		return
	}

	if isJSON(r) {
		sendJSON(w, http.StatusOK, post)
		return
	}
	http.Redirect(w, r, PostURL(post.ID), http.StatusSeeOther)
}

// FormField describes one input of the post form.
type FormField struct {
	Name     string       `json:"name"`
	Type     string       `json:"type"`
	Required bool         `json:"required"`
	Value    interface{}  `json:"value,omitempty"`
	Choices  []FormChoice `json:"choices,omitempty"`
}

// FormChoice is one option of a choice field.
type FormChoice struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

// Form is the post form descriptor.
type Form struct {
	Fields []FormField `json:"fields"`
}

func (pc *PostController) form(r *http.Request, post *models.Post) (Form, error) {
	groups, err := pc.services.Groups.ListGroups(r.Context())
	if err != nil {
		return Form{}, err
	}
	choices := make([]FormChoice, 0, len(groups))
	for _, g := range groups {
		choices = append(choices, FormChoice{Value: g.ID, Label: g.Title})
	}

	text := FormField{Name: "text", Type: "char", Required: true}
	group := FormField{Name: "group", Type: "choice", Choices: choices}
	if post != nil {
		text.Value = post.Text
		if post.GroupID != nil {
			group.Value = *post.GroupID
		}
	}
	return Form{Fields: []FormField{text, group}}, nil
}

// decodePostInput reads a PostInput from a JSON body or from form values.
func decodePostInput(r *http.Request) (services.PostInput, error) {
	var in services.PostInput
	if isJSON(r) {
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			return in, invalidBody(err)
		}
		return in, nil
	}

	if err := r.ParseForm(); err != nil {
		return in, invalidBody(err)
	}
	in.Author = r.PostForm.Get("author")
	in.Text = r.PostForm.Get("text")
	if raw := strings.TrimSpace(r.PostForm.Get("group")); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return in, services.NewInvalidInput(services.FieldError{Field: "group", Message: "must be a number"})
		}
		in.GroupID = &id
	}
	return in, nil
}

func invalidBody(err error) error {
	return services.NewInvalidInput(services.FieldError{Field: "body", Message: err.Error()})
}

// ProfileURL is the profile page of username.
func ProfileURL(username string) string {
	return "/profile/" + url.PathEscape(username) + "/"
}

// PostURL is the detail page of post id.
func PostURL(id int) string {
	return fmt.Sprintf("/posts/%d/", id)
}
