package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mightystreet/pixel-painter/internal/service"
)

// StatsHandler 画布统计处理器
type StatsHandler struct {
	statsService service.StatsService
}

// NewStatsHandler 创建画布统计处理器
func NewStatsHandler(statsService service.StatsService) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
	}
}

// Leaderboard 落子排行榜
func (h *StatsHandler) Leaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	entries, err := h.statsService.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "LEADERBOARD_FAILED",
			Message: "查询排行榜失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}

// RecentActivity 最近落子活动流
func (h *StatsHandler) RecentActivity(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	entries, err := h.statsService.RecentActivity(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "ACTIVITY_FAILED",
			Message: "查询活动流失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"activity": entries})
}

// Overview 画布总览
func (h *StatsHandler) Overview(c *gin.Context) {
	overview, err := h.statsService.Overview(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "OVERVIEW_FAILED",
			Message: "查询总览失败",
		})
		return
	}

	c.JSON(http.StatusOK, overview)
}
