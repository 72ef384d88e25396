package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	standardsrepo "github.com/strivekit/strivekit-backend/internal/data/repos/standards"
	"github.com/strivekit/strivekit-backend/internal/http/response"
	"github.com/strivekit/strivekit-backend/internal/pkg/dbctx"
	"github.com/strivekit/strivekit-backend/internal/pkg/logger"
)

// StandardsHandler exposes the reference catalog, mainly so admins can review
// and verify discovered entries.
type StandardsHandler struct {
	standards standardsrepo.StandardRepo
	log       *logger.Logger
}

func NewStandardsHandler(standards standardsrepo.StandardRepo, baseLog *logger.Logger) *StandardsHandler {
	return &StandardsHandler{
		standards: standards,
		log:       baseLog.With("handler", "StandardsHandler"),
	}
}

func (h *StandardsHandler) List(c *gin.Context) {
	dbc := dbctx.Context{Ctx: c.Request.Context()}

	onlyUnverified := c.Query("unverified") == "1"
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	rows, err := h.standards.List(dbc, onlyUnverified, limit)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "standards_lookup_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"standards": rows})
}

// Verify flips the admin-verification flag on a discovered standard.
func (h *StandardsHandler) Verify(c *gin.Context) {
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_standard_id", err)
		return
	}

	var body struct {
		Verified *bool `json:"verified"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Verified == nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", fmt.Errorf("verified (bool) required"))
		return
	}

	row, err := h.standards.GetByID(dbc, id)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "standard_lookup_failed", err)
		return
	}
	if row == nil {
		response.RespondError(c, http.StatusNotFound, "standard_not_found", fmt.Errorf("standard not found"))
		return
	}
	if err := h.standards.SetVerified(dbc, id, *body.Verified); err != nil {
		response.RespondError(c, http.StatusInternalServerError, "verify_failed", err)
		return
	}
	row.VerifiedByAdmin = *body.Verified
	response.RespondOK(c, gin.H{"standard": row})
}
