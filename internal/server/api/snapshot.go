package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/looplj/adminhub/internal/server/snapshot"
)

type SnapshotHandlersParams struct {
	fx.In

	SnapshotService *snapshot.SnapshotService
}

func NewSnapshotHandlers(params SnapshotHandlersParams) *SnapshotHandlers {
	return &SnapshotHandlers{
		SnapshotService: params.SnapshotService,
	}
}

type SnapshotHandlers struct {
	SnapshotService *snapshot.SnapshotService
}

type SnapshotResponse struct {
	Snapshot *snapshot.Manifest `json:"snapshot"`
}

type SnapshotListResponse struct {
	Snapshots []*snapshot.Manifest `json:"snapshots"`
}

type RestoreRequest struct {
	File             string   `json:"file" binding:"required"`
	ConflictStrategy string   `json:"conflictStrategy"`
	Lists            []string `json:"lists"`
}

// CreateSnapshot handles POST /admin/snapshots, admin only. It exports the
// whole store into a fresh archive and reports what was written.
func (h *SnapshotHandlers) CreateSnapshot(c *gin.Context) {
	manifest, err := h.SnapshotService.RunSnapshotNow(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SnapshotResponse{Snapshot: manifest})
}

// ListSnapshots handles GET /admin/snapshots, admin only.
func (h *SnapshotHandlers) ListSnapshots(c *gin.Context) {
	manifests, err := h.SnapshotService.ListSnapshots(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SnapshotListResponse{Snapshots: manifests})
}

// RestoreSnapshot handles POST /admin/snapshots/restore, admin only. The
// archive must already sit in the snapshot directory; its manifest is
// verified before anything is written back.
func (h *SnapshotHandlers) RestoreSnapshot(c *gin.Context) {
	var req RestoreRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, err)
		return
	}

	strategy := snapshot.ConflictStrategy(req.ConflictStrategy)

	switch strategy {
	case "", snapshot.ConflictStrategySkip, snapshot.ConflictStrategyOverwrite, snapshot.ConflictStrategyError:
	default:
		JSONError(c, http.StatusBadRequest, errInvalidConflictStrategy)
		return
	}

	err := h.SnapshotService.RestoreFromFile(c.Request.Context(), req.File, snapshot.RestoreOptions{
		ConflictStrategy: strategy,
		Lists:            req.Lists,
	})
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "restored", "file": req.File})
}
