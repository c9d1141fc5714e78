package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/looplj/adminhub/internal/access"
	"github.com/looplj/adminhub/internal/admin"
	"github.com/looplj/adminhub/internal/contexts"
	"github.com/looplj/adminhub/internal/server/biz"
)

type MetaHandlersParams struct {
	fx.In

	MetaService *biz.MetaService
}

func NewMetaHandlers(params MetaHandlersParams) *MetaHandlers {
	return &MetaHandlers{
		MetaService: params.MetaService,
	}
}

// MetaHandlers serves the presentation metadata the admin client renders
// from.
type MetaHandlers struct {
	MetaService *biz.MetaService
}

// MetaResponse lists every list visible to the acting session.
type MetaResponse struct {
	Lists []admin.ListMeta `json:"lists"`
}

// ListMetaResponse wraps the metadata of one list.
type ListMetaResponse struct {
	List admin.ListMeta `json:"list"`
}

// ItemModesResponse wraps the per-field item view modes of one item.
type ItemModesResponse struct {
	Modes map[string]access.FieldMode `json:"modes"`
}

// GetMeta handles GET /admin/meta.
func (h *MetaHandlers) GetMeta(c *gin.Context) {
	ctx := c.Request.Context()

	metas, err := h.MetaService.VisibleLists(ctx, contexts.SessionOrAnonymous(ctx))
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, MetaResponse{Lists: metas})
}

// GetListMeta handles GET /admin/meta/:list.
func (h *MetaHandlers) GetListMeta(c *gin.Context) {
	ctx := c.Request.Context()

	meta, err := h.MetaService.ListMeta(ctx, contexts.SessionOrAnonymous(ctx), c.Param("list"))
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListMetaResponse{List: meta})
}

// GetItemModes handles GET /admin/meta/:list/items/:id. Update forms use it
// to refine the generic list meta against the stored item.
func (h *MetaHandlers) GetItemModes(c *gin.Context) {
	ctx := c.Request.Context()

	modes, err := h.MetaService.ItemModes(ctx, contexts.SessionOrAnonymous(ctx), c.Param("list"), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ItemModesResponse{Modes: modes})
}

// GetJSONSchema handles GET /admin/meta/:list/jsonschema. The response body
// is the JSON Schema document itself.
func (h *MetaHandlers) GetJSONSchema(c *gin.Context) {
	ctx := c.Request.Context()

	doc, err := h.MetaService.JSONSchema(ctx, contexts.SessionOrAnonymous(ctx), c.Param("list"))
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}
