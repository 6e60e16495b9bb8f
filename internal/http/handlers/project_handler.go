package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/freelance-market/internal/dto"
	"github.com/ignatzorin/freelance-market/internal/http/handlers/common"
	"github.com/ignatzorin/freelance-market/internal/models"
	"github.com/ignatzorin/freelance-market/internal/repository"
	"github.com/ignatzorin/freelance-market/internal/service"
)

// ProjectHandler обслуживает маршруты проектов.
type ProjectHandler struct {
	projects *service.ProjectService
}

// NewProjectHandler создаёт хэндлер.
func NewProjectHandler(projects *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// Create обрабатывает POST /api/projects.
func (h *ProjectHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.CreateProjectRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	deadline, err := req.ParseDeadline()
	if err != nil {
		common.RespondBadRequest(c, "deadline_at должен быть в формате RFC3339")
		return
	}

	attachmentIDs, err := req.ParseAttachmentIDs()
	if err != nil {
		common.RespondBadRequest(c, "attachment_ids содержит невалидный UUID")
		return
	}

	project, err := h.projects.Create(c.Request.Context(), service.CreateProjectInput{
		ClientID:      userID,
		Title:         req.Title,
		Description:   req.Description,
		Budget:        req.Budget,
		Category:      req.Category,
		Skills:        req.Skills,
		DeadlineAt:    deadline,
		Status:        req.Status,
		AttachmentIDs: attachmentIDs,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, project)
}

// List обрабатывает GET /api/projects с фильтрацией и пагинацией.
func (h *ProjectHandler) List(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	params := repository.ListFilterParams{
		Status:    c.Query("status"),
		Search:    c.Query("search"),
		Category:  c.Query("category"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
		Limit:     limit,
		Offset:    offset,
	}

	if raw := c.Query("skills"); raw != "" {
		for _, skill := range strings.Split(raw, ",") {
			if s := strings.TrimSpace(skill); s != "" {
				params.Skills = append(params.Skills, s)
			}
		}
	}
	if raw := c.Query("budget_min"); raw != "" {
		min, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			common.RespondBadRequest(c, "budget_min должен быть числом")
			return
		}
		params.BudgetMin = &min
	}
	if raw := c.Query("budget_max"); raw != "" {
		max, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			common.RespondBadRequest(c, "budget_max должен быть числом")
			return
		}
		params.BudgetMax = &max
	}

	result, err := h.projects.List(c.Request.Context(), params)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PaginatedProjectsResponse{
		Data: result.Projects,
		Pagination: dto.Pagination{
			Total:   result.Total,
			Limit:   result.Limit,
			Offset:  result.Offset,
			HasMore: result.HasMore,
		},
	})
}

// Get обрабатывает GET /api/projects/:id.
func (h *ProjectHandler) Get(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	project, err := h.projects.Get(c.Request.Context(), id)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, project)
}

// ListMy обрабатывает GET /api/projects/my - проекты текущего клиента.
func (h *ProjectHandler) ListMy(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	projects, err := h.projects.ListMy(c.Request.Context(), userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, projects)
}

// ListAssignments обрабатывает GET /api/projects/assignments - проекты,
// где текущий фрилансер выбран исполнителем.
func (h *ProjectHandler) ListAssignments(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	projects, err := h.projects.ListAssignments(c.Request.Context(), userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, projects)
}

// Update обрабатывает PUT /api/projects/:id.
func (h *ProjectHandler) Update(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.UpdateProjectRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	deadline, err := req.ParseDeadline()
	if err != nil {
		common.RespondBadRequest(c, "deadline_at должен быть в формате RFC3339")
		return
	}

	attachmentIDs, err := req.ParseAttachmentIDs()
	if err != nil {
		common.RespondBadRequest(c, "attachment_ids содержит невалидный UUID")
		return
	}

	project, err := h.projects.Update(c.Request.Context(), service.UpdateProjectInput{
		ProjectID:     id,
		ClientID:      userID,
		Title:         req.Title,
		Description:   req.Description,
		Budget:        req.Budget,
		Category:      req.Category,
		Skills:        req.Skills,
		DeadlineAt:    deadline,
		Status:        req.Status,
		AttachmentIDs: attachmentIDs,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, project)
}

// Complete обрабатывает PUT /api/projects/:id/complete.
func (h *ProjectHandler) Complete(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	project, err := h.projects.Complete(c.Request.Context(), id, userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, project)
}

// Cancel обрабатывает PUT /api/projects/:id/cancel.
func (h *ProjectHandler) Cancel(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	// Тело опционально: отмена без причины допустима
	var req dto.CancelProjectRequest
	_ = c.ShouldBindJSON(&req)

	project, err := h.projects.Cancel(c.Request.Context(), id, userID, req.Reason)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, project)
}

// SetAutoAccept обрабатывает PUT /api/projects/:id/auto-accept.
func (h *ProjectHandler) SetAutoAccept(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.AutoAcceptRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.projects.SetAutoAccept(c.Request.Context(), id, userID, req.Enabled); err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":             "настройка автоприёма обновлена",
		"auto_accept_enabled": req.Enabled,
	})
}

// SubmitWork обрабатывает POST /api/projects/:id/submit - сдача работы исполнителем.
func (h *ProjectHandler) SubmitWork(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.SubmitWorkRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	submission, err := h.projects.SubmitWork(c.Request.Context(), id, userID, req.Deliverables, req.Comment)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, submission)
}

// ListSubmissions обрабатывает GET /api/projects/:id/submissions.
func (h *ProjectHandler) ListSubmissions(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	submissions, err := h.projects.ListSubmissions(c.Request.Context(), id, userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, submissions)
}

// Delete обрабатывает DELETE /api/projects/:id.
func (h *ProjectHandler) Delete(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.projects.Delete(c.Request.Context(), id, userID); err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// shortProjectInfo собирает краткую карточку проекта для вложенных ответов.
func shortProjectInfo(project *models.Project) *dto.ProjectShortInfo {
	if project == nil {
		return nil
	}
	return &dto.ProjectShortInfo{
		ID:          project.ID,
		Title:       project.Title,
		Description: project.Description,
		Budget:      project.Budget,
		Status:      string(project.Status),
		ClientID:    project.ClientID,
	}
}
