package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"blog/app/models"
	"blog/app/repositories"
	"blog/app/services"
	"blog/app/views"

	"github.com/gorilla/mux"
)

const adminPostsPath = "/admin/posts"

// AdminListPage is the data handed to the admin list template
type AdminListPage struct {
	Posts           []*models.Post
	Filter          repositories.ListParams
	PublishedFilter string
	Hierarchy       []HierarchyLink
	ClearDateURL    string
}

// HierarchyLink is one entry of the created-date drill-down
type HierarchyLink struct {
	Label string
	URL   string
	Count int
}

// AdminFormPage is the data handed to the admin create/edit template
type AdminFormPage struct {
	Post   *models.Post
	Action string
	Errors map[string]string
}

// AdminController serves the post administration pages
type AdminController struct {
	postService *services.PostService
	templates   Renderer
	notFound    http.Handler
	logger      *slog.Logger
}

// NewAdminController creates a new AdminController
func NewAdminController(postService *services.PostService, templates Renderer, notFound http.Handler, logger *slog.Logger) *AdminController {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &AdminController{
		postService: postService,
		templates:   templates,
		notFound:    notFound,
		logger:      logger,
	}
}

// Index lists posts with the published, created-date and search filters
func (ac *AdminController) Index(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	params, publishedFilter := parseListParams(query)

	posts, err := ac.postService.ListPosts(r.Context(), params)
	if err != nil {
		serverError(w, r, ac.logger, err)
		return
	}
	hierarchy, err := ac.postService.DateHierarchy(r.Context(), params)
	if err != nil {
		serverError(w, r, ac.logger, err)
		return
	}

	render(w, r, ac.logger, ac.templates, http.StatusOK, views.PageAdminList, AdminListPage{
		Posts:           posts,
		Filter:          params,
		PublishedFilter: publishedFilter,
		Hierarchy:       hierarchyLinks(query, hierarchy),
		ClearDateURL:    listURL(withoutDate(query)),
	})
}

// New displays the empty post form
func (ac *AdminController) New(w http.ResponseWriter, r *http.Request) {
	ac.renderForm(w, r, http.StatusOK, &models.Post{}, nil)
}

// Create stores a post submitted from the form
func (ac *AdminController) Create(w http.ResponseWriter, r *http.Request) {
	post, err := postFromForm(r)
	if err != nil {
		sendError(w, r, http.StatusBadRequest, "bad_request", "Failed to parse form")
		return
	}

	if err := ac.postService.CreatePost(r.Context(), post); err != nil {
		ac.handleWriteError(w, r, post, err)
		return
	}

	ac.logger.Info("post created", "post_id", post.ID, "slug", post.Slug)
	http.Redirect(w, r, adminPostsPath, http.StatusSeeOther)
}

// Edit displays the form for an existing post
func (ac *AdminController) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		ac.notFound.ServeHTTP(w, r)
		return
	}

	post, err := ac.postService.GetPost(r.Context(), id)
	if errors.Is(err, repositories.ErrNotFound) {
		ac.notFound.ServeHTTP(w, r)
		return
	}
	if err != nil {
		serverError(w, r, ac.logger, err)
		return
	}

	ac.renderForm(w, r, http.StatusOK, post, nil)
}

// Update saves changes to an existing post
func (ac *AdminController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		ac.notFound.ServeHTTP(w, r)
		return
	}

	post, err := postFromForm(r)
	if err != nil {
		sendError(w, r, http.StatusBadRequest, "bad_request", "Failed to parse form")
		return
	}
	post.ID = id

	err = ac.postService.UpdatePost(r.Context(), post)
	if errors.Is(err, repositories.ErrNotFound) {
		ac.notFound.ServeHTTP(w, r)
		return
	}
	if err != nil {
		ac.handleWriteError(w, r, post, err)
		return
	}

	ac.logger.Info("post updated", "post_id", post.ID, "slug", post.Slug)
	http.Redirect(w, r, adminPostsPath, http.StatusSeeOther)
}

// Delete removes a post
func (ac *AdminController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		ac.notFound.ServeHTTP(w, r)
		return
	}

	err := ac.postService.DeletePost(r.Context(), id)
	if errors.Is(err, repositories.ErrNotFound) {
		ac.notFound.ServeHTTP(w, r)
		return
	}
	if err != nil {
		serverError(w, r, ac.logger, err)
		return
	}

	ac.logger.Info("post deleted", "post_id", id)
	http.Redirect(w, r, adminPostsPath, http.StatusSeeOther)
}

// RedirectToPosts sends /admin to the post list
func (ac *AdminController) RedirectToPosts(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, adminPostsPath, http.StatusFound)
}

func (ac *AdminController) handleWriteError(w http.ResponseWriter, r *http.Request, post *models.Post, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidPost):
		ac.renderForm(w, r, http.StatusUnprocessableEntity, post, models.FieldErrors(err))
	case errors.Is(err, repositories.ErrSlugExists):
		ac.renderForm(w, r, http.StatusConflict, post, map[string]string{"slug": "is already used by another post"})
	default:
		serverError(w, r, ac.logger, err)
	}
}

func (ac *AdminController) renderForm(w http.ResponseWriter, r *http.Request, status int, post *models.Post, fieldErrors map[string]string) {
	action := adminPostsPath
	if post.ID > 0 {
		action = adminPostsPath + "/" + strconv.Itoa(post.ID)
	}
	if fieldErrors == nil {
		fieldErrors = map[string]string{}
	}
	render(w, r, ac.logger, ac.templates, status, views.PageAdminForm, AdminFormPage{
		Post:   post,
		Action: action,
		Errors: fieldErrors,
	})
}

func postID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

func postFromForm(r *http.Request) (*models.Post, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	return &models.Post{
		Title:     strings.TrimSpace(r.PostFormValue("title")),
		Slug:      strings.TrimSpace(r.PostFormValue("slug")),
		Author:    strings.TrimSpace(r.PostFormValue("author")),
		Content:   r.PostFormValue("content"),
		Published: formBool(r.PostFormValue("published")),
	}, nil
}

func formBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// parseListParams reads the admin list filters. Malformed numbers are
// ignored rather than rejected.
func parseListParams(q url.Values) (repositories.ListParams, string) {
	var params repositories.ListParams
	publishedFilter := ""
	switch strings.ToLower(q.Get("published")) {
	case "1", "true", "yes":
		published := true
		params.Published = &published
		publishedFilter = "1"
	case "0", "false", "no":
		published := false
		params.Published = &published
		publishedFilter = "0"
	}
	params.Year = positiveInt(q.Get("year"))
	if params.Year > 0 {
		params.Month = positiveInt(q.Get("month"))
		if params.Month > 0 {
			params.Day = positiveInt(q.Get("day"))
		}
	}
	params.Search = strings.TrimSpace(q.Get("q"))
	return params, publishedFilter
}

func positiveInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func withoutDate(q url.Values) url.Values {
	out := url.Values{}
	for k, v := range q {
		switch k {
		case "year", "month", "day":
			continue
		}
		out[k] = v
	}
	return out
}

func hierarchyLinks(q url.Values, h *services.DateHierarchy) []HierarchyLink {
	links := make([]HierarchyLink, 0, len(h.Buckets))
	for _, b := range h.Buckets {
		v := withoutDate(q)
		v.Set("year", strconv.Itoa(b.Year))
		if b.Month > 0 {
			v.Set("month", strconv.Itoa(b.Month))
		}
		if b.Day > 0 {
			v.Set("day", strconv.Itoa(b.Day))
		}
		links = append(links, HierarchyLink{Label: b.Label, URL: listURL(v), Count: b.Count})
	}
	return links
}

func listURL(q url.Values) string {
	if len(q) == 0 {
		return adminPostsPath
	}
	return adminPostsPath + "?" + q.Encode()
}
