package handlers

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"sufganiot/internal/services"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AdminHandler struct {
	svc *services.Services
}

func NewAdminHandler(svc *services.Services) *AdminHandler {
	return &AdminHandler{svc: svc}
}

type coupleRequest struct {
	CoupleName string `json:"coupleName"`
}

// ListCouples GET /api/admin/couples
func (h *AdminHandler) ListCouples(c *gin.Context) {
	couples, err := h.svc.Couples.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, couples)
}

// CreateCouple POST /api/admin/couples
func (h *AdminHandler) CreateCouple(c *gin.Context) {
	var req coupleRequest
	if !bindJSON(c, &req) {
		return
	}
	couple, err := h.svc.Couples.Create(c.Request.Context(), req.CoupleName)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, couple)
}

// UpdateCouple PUT /api/admin/couples/:id
func (h *AdminHandler) UpdateCouple(c *gin.Context) {
	var req coupleRequest
	if !bindJSON(c, &req) {
		return
	}
	couple, err := h.svc.Couples.Update(c.Request.Context(), c.Param("id"), req.CoupleName)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, couple)
}

// DeleteCouple DELETE /api/admin/couples/:id
func (h *AdminHandler) DeleteCouple(c *gin.Context) {
	if err := h.svc.Couples.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	okMessage(c, "Couple deleted", nil)
}

// RegenerateCode POST /api/admin/couples/:id/regenerate-code
func (h *AdminHandler) RegenerateCode(c *gin.Context) {
	couple, err := h.svc.Couples.RegenerateCode(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, couple)
}

// ListSufganiot GET /api/admin/sufganiot
func (h *AdminHandler) ListSufganiot(c *gin.Context) {
	entries, err := h.svc.Sufganiot.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, entries)
}

// CreateSufgania POST /api/admin/sufganiot
func (h *AdminHandler) CreateSufgania(c *gin.Context) {
	var req services.SufganiaInput
	if !bindJSON(c, &req) {
		return
	}
	entry, err := h.svc.Sufganiot.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, entry)
}

// UpdateSufgania PUT /api/admin/sufganiot/:id
func (h *AdminHandler) UpdateSufgania(c *gin.Context) {
	var req services.SufganiaInput
	if !bindJSON(c, &req) {
		return
	}
	entry, err := h.svc.Sufganiot.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, entry)
}

// DeleteSufgania DELETE /api/admin/sufganiot/:id
func (h *AdminHandler) DeleteSufgania(c *gin.Context) {
	if err := h.svc.Sufganiot.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	okMessage(c, "Sufgania deleted", nil)
}

// Results GET /api/admin/results 不受发布状态限制
func (h *AdminHandler) Results(c *gin.Context) {
	results, err := h.svc.Rankings.Results(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, results)
}

// ExportResults GET /api/admin/results/export
func (h *AdminHandler) ExportResults(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.svc.Rankings.ExportResults(c.Request.Context(), &buf); err != nil {
		respondError(c, err)
		return
	}
	filename := "sufganiot-results-" + time.Now().Format("2006-01-02") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// Comments GET /api/admin/comments
func (h *AdminHandler) Comments(c *gin.Context) {
	comments, err := h.svc.Comments.All(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, comments)
}

// Settings GET /api/admin/settings
func (h *AdminHandler) Settings(c *gin.Context) {
	settings, err := h.svc.Settings.Get(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, settings)
}

func (h *AdminHandler) OpenVoting(c *gin.Context) {
	settings, err := h.svc.Settings.OpenVoting(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	okMessage(c, "Voting opened", settings)
}

func (h *AdminHandler) CloseVoting(c *gin.Context) {
	settings, err := h.svc.Settings.CloseVoting(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	okMessage(c, "Voting closed", settings)
}

// SetVotingEndTime POST /api/admin/voting/end-time {votingEndsAt: RFC3339 | null}
func (h *AdminHandler) SetVotingEndTime(c *gin.Context) {
	var req struct {
		VotingEndsAt *time.Time `json:"votingEndsAt"`
	}
	if !bindJSON(c, &req) {
		return
	}
	settings, err := h.svc.Settings.SetVotingEndsAt(c.Request.Context(), req.VotingEndsAt)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, settings)
}

// PublishChecks GET /api/admin/results/checks
func (h *AdminHandler) PublishChecks(c *gin.Context) {
	report, err := h.svc.Settings.PublishChecks(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, report)
}

// PublishResults POST /api/admin/results/publish[?force=true]
// 存在阻断问题时拒绝发布，force 跳过检查
func (h *AdminHandler) PublishResults(c *gin.Context) {
	ctx := c.Request.Context()
	if force, _ := strconv.ParseBool(c.Query("force")); !force {
		report, err := h.svc.Settings.PublishChecks(ctx)
		if err != nil {
			respondError(c, err)
			return
		}
		if !report.CanPublish {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error":   "Results cannot be published yet",
				"data":    report,
			})
			return
		}
	}

	settings, err := h.svc.Settings.PublishResults(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	okMessage(c, "Results published", settings)
}

func (h *AdminHandler) UnpublishResults(c *gin.Context) {
	settings, err := h.svc.Settings.UnpublishResults(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	okMessage(c, "Results unpublished", settings)
}

// Activities GET /api/admin/activities?limit=20
func (h *AdminHandler) Activities(c *gin.Context) {
	limit := services.DefaultActivityLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > services.MaxActivityLimit {
			fail(c, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	activities, err := h.svc.Activity.Recent(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, activities)
}
