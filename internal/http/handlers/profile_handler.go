package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/freelance-market/internal/dto"
	"github.com/ignatzorin/freelance-market/internal/http/handlers/common"
	"github.com/ignatzorin/freelance-market/internal/service"
)

// ProfileHandler обслуживает маршруты профиля и каталога фрилансеров.
type ProfileHandler struct {
	users *service.UserService
}

// NewProfileHandler создаёт хэндлер.
func NewProfileHandler(users *service.UserService) *ProfileHandler {
	return &ProfileHandler{users: users}
}

// GetMyProfile обрабатывает GET /api/profile.
func (h *ProfileHandler) GetMyProfile(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	user, err := h.users.GetProfile(c.Request.Context(), userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// GetProfile обрабатывает GET /api/profile/:id - публичный профиль пользователя.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	user, err := h.users.GetProfile(c.Request.Context(), id)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, user.Public())
}

// UpdateProfile обрабатывает PUT /api/profile.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.UpdateProfileRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), service.UpdateProfileInput{
		UserID:           userID,
		Name:             req.Name,
		Bio:              req.Bio,
		HourlyRate:       req.HourlyRate,
		Skills:           req.Skills,
		Location:         req.Location,
		AvailableForHire: req.AvailableForHire,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// ListFreelancers обрабатывает GET /api/freelancers.
func (h *ProfileHandler) ListFreelancers(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	freelancers, total, err := h.users.ListFreelancers(c.Request.Context(), limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": freelancers,
		"pagination": dto.Pagination{
			Total:   total,
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+limit < total,
		},
	})
}
