package handlers

import (
	"errors"

	"zhiyi-cms/editor"
	"zhiyi-cms/generation"
	"zhiyi-cms/helper"
	"zhiyi-cms/services"

	"github.com/gin-gonic/gin"
)

type DraftHandler struct {
	store          *editor.Store
	articleService services.ArticleService
	generator      editor.Generator
	Helper         *helper.HTTPHelper
}

func NewDraftHandler(store *editor.Store, articleService services.ArticleService, generator editor.Generator, h *helper.HTTPHelper) *DraftHandler {
	return &DraftHandler{
		store:          store,
		articleService: articleService,
		generator:      generator,
		Helper:         h,
	}
}

type openDraftRequest struct {
	ArticleID string `json:"article_id"`
}

// OpenDraft starts an empty draft, or one loaded from article_id.
func (h *DraftHandler) OpenDraft(c *gin.Context) {
	var req openDraftRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.Helper.SendBadRequest(c, "Invalid request body", err.Error())
			return
		}
	}

	draft := editor.New()
	if req.ArticleID != "" {
		article, err := h.articleService.GetByID(c.Request.Context(), req.ArticleID, true)
		if err != nil {
			h.Helper.SendServiceError(c, err)
			return
		}
		draft = editor.FromArticle(article)
	}

	h.store.Put(draft)
	h.Helper.SendCreated(c, "Draft opened", draft.View())
}

func (h *DraftHandler) GetDraft(c *gin.Context) {
	draft, ok := h.draft(c)
	if !ok {
		return
	}

	h.Helper.SendSuccess(c, "Draft loaded", draft.View())
}

func (h *DraftHandler) UpdateHeader(c *gin.Context) {
	draft, ok := h.draft(c)
	if !ok {
		return
	}

	var patch editor.HeaderPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.Helper.SendBadRequest(c, "Invalid request body", err.Error())
		return
	}

	if err := draft.ApplyHeader(patch); err != nil {
		h.sendError(c, err)
		return
	}
	h.Helper.SendSuccess(c, "Draft updated", draft.View())
}

func (h *DraftHandler) CloseDraft(c *gin.Context) {
	if !h.store.Delete(c.Param("draft_id")) {
		h.sendError(c, editor.ErrDraftNotFound)
		return
	}

	h.Helper.SendSuccess(c, "Draft closed", h.Helper.EmptyJsonMap())
}

func (h *DraftHandler) AppendItem(c *gin.Context) {
	draft, collection, ok := h.draftAndCollection(c)
	if !ok {
		return
	}

	itemID, err := draft.Append(collection)
	if err != nil {
		h.sendError(c, err)
		return
	}

	h.Helper.SendCreated(c, "Item added", gin.H{"item_id": itemID, "draft": draft.View()})
}

func (h *DraftHandler) UpdateItem(c *gin.Context) {
	draft, collection, ok := h.draftAndCollection(c)
	if !ok {
		return
	}

	var fields map[string]string
	if err := c.ShouldBindJSON(&fields); err != nil {
		h.Helper.SendBadRequest(c, "Invalid request body", err.Error())
		return
	}

	if err := draft.UpdateItem(collection, c.Param("item_id"), fields); err != nil {
		h.sendError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Item updated", draft.View())
}

func (h *DraftHandler) RemoveItem(c *gin.Context) {
	draft, collection, ok := h.draftAndCollection(c)
	if !ok {
		return
	}

	if err := draft.Remove(collection, c.Param("item_id")); err != nil {
		h.sendError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Item removed", draft.View())
}

// AutoFill runs one generation call for one item. Other edits on the draft are not blocked meanwhile.
func (h *DraftHandler) AutoFill(c *gin.Context) {
	draft, collection, ok := h.draftAndCollection(c)
	if !ok {
		return
	}

	result, err := draft.AutoFill(c.Request.Context(), h.generator, collection, c.Param("item_id"))
	if err != nil {
		h.sendError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Auto-fill completed", gin.H{"result": result, "draft": draft.View()})
}

// SaveDraft creates or updates the article. The draft stays open either way.
func (h *DraftHandler) SaveDraft(c *gin.Context) {
	draft, ok := h.draft(c)
	if !ok {
		return
	}

	article, err := draft.Save(c.Request.Context(), h.articleService)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Article saved", article)
}

func (h *DraftHandler) draft(c *gin.Context) (*editor.Draft, bool) {
	draft, err := h.store.Get(c.Param("draft_id"))
	if err != nil {
		h.sendError(c, err)
		return nil, false
	}
	return draft, true
}

func (h *DraftHandler) draftAndCollection(c *gin.Context) (*editor.Draft, editor.Collection, bool) {
	collection, err := editor.ParseCollection(c.Param("collection"))
	if err != nil {
		h.sendError(c, err)
		return nil, "", false
	}

	draft, ok := h.draft(c)
	if !ok {
		return nil, "", false
	}
	return draft, collection, true
}

func (h *DraftHandler) sendError(c *gin.Context, err error) {
	var genErr *generation.Error
	switch {
	case errors.As(err, &genErr):
		h.Helper.SendBadGateway(c, genErr.Message, gin.H{"kind": genErr.Kind})
	case errors.Is(err, editor.ErrDraftNotFound), errors.Is(err, editor.ErrItemNotFound):
		h.Helper.SendNotFoundError(c, err.Error(), h.Helper.EmptyJsonMap())
	case errors.Is(err, editor.ErrLastParagraph),
		errors.Is(err, editor.ErrEmptySource),
		errors.Is(err, editor.ErrUnknownCollection),
		errors.Is(err, editor.ErrUnknownField):
		h.Helper.SendBadRequest(c, err.Error(), h.Helper.EmptyJsonMap())
	default:
		h.Helper.SendServiceError(c, err)
	}
}
