package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/looplj/adminhub/internal/contexts"
	"github.com/looplj/adminhub/internal/objects"
	"github.com/looplj/adminhub/internal/server/biz"
	"github.com/looplj/adminhub/internal/storage"
)

type ItemHandlersParams struct {
	fx.In

	ItemService *biz.ItemService
}

func NewItemHandlers(params ItemHandlersParams) *ItemHandlers {
	return &ItemHandlers{
		ItemService: params.ItemService,
	}
}

// ItemHandlers serves the per-list content endpoints. Every handler passes
// the acting session through to the service gates, anonymous included.
type ItemHandlers struct {
	ItemService *biz.ItemService
}

// ItemResponse wraps one redacted item.
type ItemResponse struct {
	Item map[string]any `json:"item"`
}

// CreateItem handles POST /admin/lists/:list/items.
func (h *ItemHandlers) CreateItem(c *gin.Context) {
	ctx := c.Request.Context()

	var input map[string]any

	err := c.ShouldBindJSON(&input)
	if err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("Invalid request format"))
		return
	}

	item, err := h.ItemService.CreateItem(ctx, contexts.SessionOrAnonymous(ctx), c.Param("list"), input)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ItemResponse{Item: item})
}

// GetItem handles GET /admin/lists/:list/items/:id.
func (h *ItemHandlers) GetItem(c *gin.Context) {
	ctx := c.Request.Context()

	item, err := h.ItemService.GetItem(ctx, contexts.SessionOrAnonymous(ctx), c.Param("list"), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ItemResponse{Item: item})
}

// listReservedParams are the query keys of ListItems that are not field
// filters.
var listReservedParams = map[string]bool{
	"limit": true,
	"after": true,
	"order": true,
}

// ListItems handles GET /admin/lists/:list/items. Pagination runs on the
// opaque after cursor; any query parameter beyond limit/after/order is an
// equality filter on the declared field of that name.
func (h *ItemHandlers) ListItems(c *gin.Context) {
	ctx := c.Request.Context()

	q := biz.ListQuery{
		ListKey: c.Param("list"),
		After:   c.Query("after"),
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			JSONError(c, http.StatusBadRequest, errors.New("Invalid limit"))
			return
		}

		q.Limit = limit
	}

	switch strings.ToLower(c.Query("order")) {
	case "":
	case "asc":
		q.Order = storage.OrderAsc
	case "desc":
		q.Order = storage.OrderDesc
	default:
		JSONError(c, http.StatusBadRequest, errors.New("Invalid order, expected asc or desc"))
		return
	}

	for key, values := range c.Request.URL.Query() {
		if listReservedParams[key] || len(values) == 0 {
			continue
		}

		if q.Filters == nil {
			q.Filters = make(map[string]any)
		}

		q.Filters[key] = values[0]
	}

	page, err := h.ItemService.ListItems(ctx, contexts.SessionOrAnonymous(ctx), q)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// UpdateItem handles PATCH /admin/lists/:list/items/:id.
func (h *ItemHandlers) UpdateItem(c *gin.Context) {
	ctx := c.Request.Context()

	var input map[string]any

	err := c.ShouldBindJSON(&input)
	if err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("Invalid request format"))
		return
	}

	item, err := h.ItemService.UpdateItem(ctx, contexts.SessionOrAnonymous(ctx), c.Param("list"), c.Param("id"), input)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ItemResponse{Item: item})
}

// DeleteItem handles DELETE /admin/lists/:list/items/:id.
func (h *ItemHandlers) DeleteItem(c *gin.Context) {
	ctx := c.Request.Context()

	item, err := h.ItemService.DeleteItem(ctx, contexts.SessionOrAnonymous(ctx), c.Param("list"), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ItemResponse{Item: item})
}

// BulkUpdateRequest is the body of a bulk update.
type BulkUpdateRequest struct {
	Items []biz.BulkUpdate `json:"items" binding:"required"`
}

// BulkUpdateEntry is the wire outcome for one entry of a bulk update.
type BulkUpdateEntry struct {
	ID    string         `json:"id"`
	Item  map[string]any `json:"item,omitempty"`
	Error *objects.Error `json:"error,omitempty"`
}

// BulkUpdateResponse aggregates the per-entry outcomes.
type BulkUpdateResponse struct {
	Results []BulkUpdateEntry `json:"results"`
}

// BulkUpdateItems handles PATCH /admin/lists/:list/items. A list-level
// denial or a predicate fault rejects the whole batch; everything else is
// reported per entry.
func (h *ItemHandlers) BulkUpdateItems(c *gin.Context) {
	ctx := c.Request.Context()

	var req BulkUpdateRequest

	err := c.ShouldBindJSON(&req)
	if err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("Invalid request format"))
		return
	}

	results, err := h.ItemService.BulkUpdateItems(ctx, contexts.SessionOrAnonymous(ctx), c.Param("list"), req.Items)
	if err != nil {
		RespondError(c, err)
		return
	}

	resp := BulkUpdateResponse{Results: make([]BulkUpdateEntry, len(results))}

	for i, result := range results {
		entry := BulkUpdateEntry{ID: result.ID, Item: result.Item}

		if result.Err != nil {
			_, payload := classifyError(result.Err)
			entry.Error = &payload
		}

		resp.Results[i] = entry
	}

	c.JSON(http.StatusOK, resp)
}
