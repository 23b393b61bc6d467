package handlers

import (
	"net/http"

	"sufganiot/internal/middleware"
	"sufganiot/internal/models"
	"sufganiot/internal/services"

	"github.com/gin-gonic/gin"
)

type VotingHandler struct {
	settings  *services.SettingsService
	voting    *services.VotingService
	comments  *services.CommentService
	sufganiot *services.SufganiaService
}

func NewVotingHandler(svc *services.Services) *VotingHandler {
	return &VotingHandler{
		settings:  svc.Settings,
		voting:    svc.Voting,
		comments:  svc.Comments,
		sufganiot: svc.Sufganiot,
	}
}

// Status GET /api/voting/status（公开）
func (h *VotingHandler) Status(c *gin.Context) {
	settings, err := h.settings.Get(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{
		"votingOpen":       settings.VotingOpen,
		"votingEndsAt":     settings.VotingEndsAt,
		"resultsPublished": settings.ResultsPublished,
	})
}

// Sufganiot GET /api/voting/sufganiot 可投票作品（不含自己的）
func (h *VotingHandler) Sufganiot(c *gin.Context) {
	p := middleware.CurrentPrincipal(c)
	entries, err := h.voting.VotableEntries(c.Request.Context(), p.CoupleID)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, entries)
}

// MyVotes GET /api/voting/my-votes
func (h *VotingHandler) MyVotes(c *gin.Context) {
	p := middleware.CurrentPrincipal(c)
	votes, err := h.voting.MyVotes(c.Request.Context(), p.CoupleID)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, votes)
}

// SubmitRankings POST /api/voting/rankings {category, rankings:[{sufganiaId, rank}]}
func (h *VotingHandler) SubmitRankings(c *gin.Context) {
	var req struct {
		Category models.Category         `json:"category"`
		Rankings []services.RankingInput `json:"rankings"`
	}
	if !bindJSON(c, &req) {
		return
	}

	p := middleware.CurrentPrincipal(c)
	votes, err := h.voting.SubmitCategoryRanking(c.Request.Context(), p.CoupleID, req.Category, req.Rankings)
	if err != nil {
		respondError(c, err)
		return
	}
	okMessage(c, "Rankings saved", votes)
}

// SubmitComment POST /api/voting/comments {sufganiaId, commentText}
func (h *VotingHandler) SubmitComment(c *gin.Context) {
	var req struct {
		SufganiaID  string `json:"sufganiaId"`
		CommentText string `json:"commentText"`
	}
	if !bindJSON(c, &req) {
		return
	}

	p := middleware.CurrentPrincipal(c)
	comment, created, err := h.comments.SubmitComment(c.Request.Context(), p.CoupleID, req.SufganiaID, req.CommentText)
	if err != nil {
		respondError(c, err)
		return
	}
	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}
	ok(c, code, comment)
}

// EntryComments GET /api/voting/sufganiot/:id/comments 不返回投票者身份
func (h *VotingHandler) EntryComments(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if _, err := h.sufganiot.Get(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	comments, err := h.comments.ForSufgania(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, comments)
}
