package handlers

import (
	"strconv"

	"zhiyi-cms/helper"
	"zhiyi-cms/models"
	"zhiyi-cms/reader"
	"zhiyi-cms/services"

	"github.com/gin-gonic/gin"
)

type ArticleHandler struct {
	articleService services.ArticleService
	Helper         *helper.HTTPHelper
}

func NewArticleHandler(articleService services.ArticleService, h *helper.HTTPHelper) *ArticleHandler {
	return &ArticleHandler{articleService: articleService, Helper: h}
}

// Public

func (h *ArticleHandler) GetPublicArticles(c *gin.Context) {
	articles, err := h.articleService.ListPublished(c.Request.Context())
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Articles loaded", articles)
}

func (h *ArticleHandler) GetPublicArticle(c *gin.Context) {
	article, err := h.articleService.GetByID(c.Request.Context(), c.Param("id"), false)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Article loaded", article)
}

// GetReadingView renders the article with translation visibility applied.
// ?translations=show|hide sets every flag, then each ?toggle=<position> flips one.
func (h *ArticleHandler) GetReadingView(c *gin.Context) {
	var toggles []int
	for _, raw := range c.QueryArray("toggle") {
		position, err := strconv.Atoi(raw)
		if err != nil {
			h.Helper.SendBadRequest(c, "toggle must be a paragraph position", h.Helper.EmptyJsonMap())
			return
		}
		toggles = append(toggles, position)
	}

	mode := c.Query("translations")
	if mode != "" && mode != "show" && mode != "hide" {
		h.Helper.SendBadRequest(c, "translations must be show or hide", h.Helper.EmptyJsonMap())
		return
	}

	article, err := h.articleService.GetByID(c.Request.Context(), c.Param("id"), false)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	visibility := reader.NewVisibility(article)
	if mode != "" {
		visibility.SetAll(mode == "show")
	}
	for _, position := range toggles {
		visibility.ToggleOne(position)
	}

	h.Helper.SendSuccess(c, "Article loaded", visibility.Render(article))
}

func (h *ArticleHandler) GetCategoryArticles(c *gin.Context) {
	articles, err := h.articleService.ListByCategory(c.Request.Context(), c.Param("category"))
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Articles loaded", articles)
}

func (h *ArticleHandler) SearchPublic(c *gin.Context) {
	articles, err := h.articleService.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Search completed", articles)
}

// Admin

func (h *ArticleHandler) GetArticles(c *gin.Context) {
	var params models.ArticleListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.Helper.SendBadRequest(c, "Invalid query", err.Error())
		return
	}

	articles, err := h.articleService.ListAll(c.Request.Context(), params)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Articles loaded", articles)
}

func (h *ArticleHandler) SearchArticles(c *gin.Context) {
	articles, err := h.articleService.SearchAll(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Search completed", articles)
}

func (h *ArticleHandler) GetArticle(c *gin.Context) {
	article, err := h.articleService.GetByID(c.Request.Context(), c.Param("id"), true)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Article loaded", article)
}

func (h *ArticleHandler) CreateArticle(c *gin.Context) {
	var req models.CreateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Invalid request body", err.Error())
		return
	}

	article, err := h.articleService.Create(c.Request.Context(), req)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendCreated(c, "Article created", article)
}

func (h *ArticleHandler) UpdateArticle(c *gin.Context) {
	var req models.UpdateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Invalid request body", err.Error())
		return
	}

	article, err := h.articleService.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Article updated", article)
}

func (h *ArticleHandler) DeleteArticle(c *gin.Context) {
	if err := h.articleService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Article deleted", h.Helper.EmptyJsonMap())
}

func (h *ArticleHandler) GetDashboard(c *gin.Context) {
	stats, err := h.articleService.Dashboard(c.Request.Context())
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Dashboard loaded", stats)
}
