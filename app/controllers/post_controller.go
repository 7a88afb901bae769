package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"blog/app/models"
	"blog/app/repositories"
	"blog/app/services"
	"blog/app/views"

	"github.com/gorilla/mux"
)

// DefaultIndexLimit is the number of posts shown on the home page
const DefaultIndexLimit = 5

// IndexPage is the data handed to the index template
type IndexPage struct {
	Posts []*models.Post
}

// ShowPage is the data handed to the post template
type ShowPage struct {
	Post *models.Post
}

// PostController handles the public blog pages
type PostController struct {
	postService *services.PostService
	templates   Renderer
	notFound    http.Handler
	logger      *slog.Logger
	indexLimit  int
}

// NewPostController creates a new PostController. A limit below one falls
// back to DefaultIndexLimit.
func NewPostController(postService *services.PostService, templates Renderer, notFound http.Handler, logger *slog.Logger, indexLimit int) *PostController {
	if indexLimit < 1 {
		indexLimit = DefaultIndexLimit
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &PostController{
		postService: postService,
		templates:   templates,
		notFound:    notFound,
		logger:      logger,
		indexLimit:  indexLimit,
	}
}

// Index lists the most recent published posts
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	posts, err := pc.postService.ListRecentPublished(r.Context(), pc.indexLimit)
	if err != nil {
		serverError(w, r, pc.logger, err)
		return
	}

	if wantsJSON(r) {
		sendJSON(w, http.StatusOK, map[string]any{"posts": posts})
		return
	}
	render(w, r, pc.logger, pc.templates, http.StatusOK, views.PageIndex, IndexPage{Posts: posts})
}

// Show displays a single published post by slug
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	post, err := pc.postService.GetPublishedBySlug(r.Context(), slug)
	if errors.Is(err, repositories.ErrNotFound) {
		pc.notFound.ServeHTTP(w, r)
		return
	}
	if err != nil {
		serverError(w, r, pc.logger, err)
		return
	}

	if wantsJSON(r) {
		sendJSON(w, http.StatusOK, post)
		return
	}
	render(w, r, pc.logger, pc.templates, http.StatusOK, views.PageShow, ShowPage{Post: post})
}
