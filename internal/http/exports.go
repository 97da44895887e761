package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"task-tracker/internal/service"
)

type ExportResponse struct {
	Key       string `json:"key"`
	Location  string `json:"location"`
	URL       string `json:"url,omitempty"`
	Size      int64  `json:"size"`
	CreatedAt string `json:"createdAt,omitempty"`
}

func (h *Handler) exportTasks(c *gin.Context) {
	id, _ := IdentityFrom(c)

	exp, err := h.exports.Export(c.Request.Context(), id.UserID)
	if err != nil {
		h.exportError(c, err, "Failed to export tasks")
		return
	}
	c.JSON(http.StatusCreated, exportToResponse(*exp))
}

func (h *Handler) listExports(c *gin.Context) {
	id, _ := IdentityFrom(c)

	exports, err := h.exports.ListExports(c.Request.Context(), id.UserID)
	if err != nil {
		h.exportError(c, err, "Failed to list exports")
		return
	}

	resp := make([]ExportResponse, len(exports))
	for i := range exports {
		resp[i] = exportToResponse(exports[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) exportError(c *gin.Context, err error, internalMsg string) {
	if errors.Is(err, service.ErrStorageUnavailable) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	h.log(c).WithError(err).Error(internalMsg)
	c.JSON(http.StatusInternalServerError, gin.H{"error": internalMsg})
}

func exportToResponse(exp service.Export) ExportResponse {
	resp := ExportResponse{
		Key:      exp.Key,
		Location: exp.Location,
		URL:      exp.URL,
		Size:     exp.Size,
	}
	if !exp.CreatedAt.IsZero() {
		resp.CreatedAt = exp.CreatedAt.UTC().Format(isoMillis)
	}
	return resp
}
