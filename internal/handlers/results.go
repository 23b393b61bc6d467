package handlers

import (
	"net/http"

	"sufganiot/internal/services"

	"github.com/gin-gonic/gin"
)

// ResultsHandler 公开结果：JSON 接口 + 服务端渲染的看板/相册页面
type ResultsHandler struct {
	settings  *services.SettingsService
	rankings  *services.RankingService
	sufganiot *services.SufganiaService
}

func NewResultsHandler(svc *services.Services) *ResultsHandler {
	return &ResultsHandler{settings: svc.Settings, rankings: svc.Rankings, sufganiot: svc.Sufganiot}
}

func (h *ResultsHandler) published(c *gin.Context) (bool, error) {
	settings, err := h.settings.Get(c.Request.Context())
	if err != nil {
		return false, err
	}
	return settings.ResultsPublished, nil
}

// Results GET /api/results 发布前返回 403
func (h *ResultsHandler) Results(c *gin.Context) {
	published, err := h.published(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if !published {
		fail(c, http.StatusForbidden, "Results have not been published yet")
		return
	}

	results, err := h.rankings.Results(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, results)
}

// Gallery GET /api/results/gallery
func (h *ResultsHandler) Gallery(c *gin.Context) {
	items, err := h.sufganiot.Gallery(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, items)
}

// Board GET /board 排行榜页面
func (h *ResultsHandler) Board(c *gin.Context) {
	published, err := h.published(c)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}
	if !published {
		Render(c, http.StatusOK, "pending.html", gin.H{"Title": "Results coming soon"})
		return
	}

	results, err := h.rankings.Results(c.Request.Context())
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}
	Render(c, http.StatusOK, "board.html", gin.H{
		"Title":            "Leaderboard",
		"Rankings":         results.Rankings,
		"CategoryRankings": results.CategoryRankings,
		"Statistics":       results.Statistics,
	})
}

// GalleryPage GET /gallery
func (h *ResultsHandler) GalleryPage(c *gin.Context) {
	items, err := h.sufganiot.Gallery(c.Request.Context())
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}
	Render(c, http.StatusOK, "gallery.html", gin.H{"Title": "Gallery", "Items": items})
}

// RenderError 简单错误页
func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "error.html", gin.H{"Title": "Error", "Error": message})
}
