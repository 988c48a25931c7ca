package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cursova/cursova-api/internal/models"
	"github.com/cursova/cursova-api/internal/service"
	appErrors "github.com/cursova/cursova-api/pkg/errors"
	"github.com/cursova/cursova-api/pkg/response"
)

// BlogHandler exposes public blog endpoints.
type BlogHandler struct {
	blog *service.BlogService
}

// NewBlogHandler constructs BlogHandler.
func NewBlogHandler(blog *service.BlogService) *BlogHandler {
	return &BlogHandler{blog: blog}
}

// List godoc
// @Summary List published blog posts
// @Tags Blog
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param category query string false "Category slug"
// @Param featured query bool false "Featured only"
// @Success 200 {object} response.Envelope
// @Router /blog [get]
func (h *BlogHandler) List(c *gin.Context) {
	var filter models.BlogFilter
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "10")); err == nil {
		filter.Limit = limit
	}
	filter.Category = c.Query("category")
	if featured := c.Query("featured"); featured != "" {
		if value, err := strconv.ParseBool(featured); err == nil {
			filter.Featured = &value
		}
	}

	page, err := h.blog.ListPublished(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, page.Posts, &page.Pagination)
}

// Get godoc
// @Summary Get a published post by slug
// @Tags Blog
// @Produce json
// @Param slug path string true "Post slug"
// @Success 200 {object} response.Envelope
// @Router /blog/{slug} [get]
func (h *BlogHandler) Get(c *gin.Context) {
	post, err := h.blog.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, post, nil)
}

// Categories godoc
// @Summary List blog categories
// @Tags Blog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /blog/categories [get]
func (h *BlogHandler) Categories(c *gin.Context) {
	categories, err := h.blog.ListCategories(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, categories, nil)
}

// CreatePost godoc
// @Summary Publish a blog post
// @Tags Blog
// @Accept json
// @Produce json
// @Param payload body service.BlogPostInput true "Post payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /blog [post]
func (h *BlogHandler) CreatePost(c *gin.Context) {
	var input service.BlogPostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	post, err := h.blog.CreatePost(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, post)
}
