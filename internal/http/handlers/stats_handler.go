package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/freelance-market/internal/dto"
	"github.com/ignatzorin/freelance-market/internal/http/handlers/common"
	"github.com/ignatzorin/freelance-market/internal/models"
	"github.com/ignatzorin/freelance-market/internal/service"
)

// statsCacheTTL — время жизни кеша агрегатов дашборда. Небольшое запаздывание
// цифр допустимо.
const statsCacheTTL = 30 * time.Second

// StatsHandler отдаёт агрегаты для дашборда в зависимости от роли.
type StatsHandler struct {
	projects  *service.ProjectService
	proposals *service.ProposalService
	cache     *service.CacheService
}

// NewStatsHandler создаёт хэндлер.
func NewStatsHandler(projects *service.ProjectService, proposals *service.ProposalService, cache *service.CacheService) *StatsHandler {
	return &StatsHandler{projects: projects, proposals: proposals, cache: cache}
}

// DashboardStats обрабатывает GET /api/dashboard/stats.
func (h *StatsHandler) DashboardStats(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	role, err := common.CurrentUserRole(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	// ?refresh=true сбрасывает кеш и пересчитывает агрегаты
	if c.Query("refresh") == "true" {
		h.cache.InvalidateUser(userID)
	}

	switch role {
	case models.RoleClient:
		response, err := h.cache.GetOrSet(c.Request.Context(), service.StatsCacheKey(userID, role), statsCacheTTL, func() (interface{}, error) {
			stats, err := h.projects.GetClientStats(c.Request.Context(), userID)
			if err != nil {
				return nil, err
			}
			return dto.ClientStatsResponse{
				ActiveProjects:    stats.Active,
				CompletedProjects: stats.Completed,
				TotalProjects:     stats.Total,
				TotalBudget:       stats.TotalBudget,
			}, nil
		})
		if err != nil {
			common.RespondAppError(c, err)
			return
		}
		c.JSON(http.StatusOK, response)

	case models.RoleFreelancer:
		response, err := h.cache.GetOrSet(c.Request.Context(), service.StatsCacheKey(userID, role), statsCacheTTL, func() (interface{}, error) {
			assignments, err := h.projects.GetFreelancerStats(c.Request.Context(), userID)
			if err != nil {
				return nil, err
			}
			proposals, err := h.proposals.GetFreelancerStats(c.Request.Context(), userID)
			if err != nil {
				return nil, err
			}
			return dto.FreelancerStatsResponse{
				ActiveAssignments:    assignments.Active,
				CompletedAssignments: assignments.Completed,
				PendingProposals:     proposals.Pending,
				TotalProposals:       proposals.Total,
				TotalEarned:          assignments.TotalEarned,
			}, nil
		})
		if err != nil {
			common.RespondAppError(c, err)
			return
		}
		c.JSON(http.StatusOK, response)

	default:
		common.RespondBadRequest(c, "статистика доступна только клиентам и фрилансерам")
	}
}
