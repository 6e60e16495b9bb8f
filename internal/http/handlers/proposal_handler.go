package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/freelance-market/internal/dto"
	"github.com/ignatzorin/freelance-market/internal/http/handlers/common"
	"github.com/ignatzorin/freelance-market/internal/models"
	"github.com/ignatzorin/freelance-market/internal/service"
)

// ProposalHandler обслуживает маршруты предложений.
type ProposalHandler struct {
	proposals *service.ProposalService
}

// NewProposalHandler создаёт хэндлер.
func NewProposalHandler(proposals *service.ProposalService) *ProposalHandler {
	return &ProposalHandler{proposals: proposals}
}

// Submit обрабатывает POST /api/proposals.
func (h *ProposalHandler) Submit(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.SubmitProposalRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	projectID, err := req.ParseProjectID()
	if err != nil {
		common.RespondBadRequest(c, "project_id должен быть валидным UUID")
		return
	}

	in := service.SubmitProposalInput{
		ProjectID:    projectID,
		FreelancerID: userID,
		CoverLetter:  req.CoverLetter,
		BidAmount:    req.BidAmount,
	}
	if req.EstimatedDuration != nil {
		value := req.EstimatedDuration.Value
		in.DurationValue = &value
		in.DurationUnit = req.EstimatedDuration.Unit
	}

	proposal, err := h.proposals.Submit(c.Request.Context(), in)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, proposal)
}

// ListMy обрабатывает GET /api/proposals/my - предложения текущего фрилансера.
func (h *ProposalHandler) ListMy(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	proposals, projects, err := h.proposals.ListMy(c.Request.Context(), userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	response := make([]dto.ProposalWithProjectResponse, 0, len(proposals))
	for i := range proposals {
		proposal := proposals[i]
		response = append(response, dto.ProposalWithProjectResponse{
			Proposal: &proposal,
			Project:  shortProjectInfo(projects[proposal.ProjectID]),
		})
	}

	c.JSON(http.StatusOK, response)
}

// ListByProject обрабатывает GET /api/proposals/project/:projectId.
// Доступно только владельцу проекта.
func (h *ProposalHandler) ListByProject(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	projectID, err := common.ParseUUIDParam(c, "projectId")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	proposals, err := h.proposals.ListByProject(c.Request.Context(), projectID, userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, proposals)
}

// UpdateStatus обрабатывает PUT /api/proposals/:id/status.
// Принятие проходит атомарно: конкурирующие предложения отклоняются,
// проект переходит в работу.
func (h *ProposalHandler) UpdateStatus(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	proposalID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.UpdateProposalStatusRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	accepted, rejected, err := h.proposals.UpdateStatus(c.Request.Context(), service.UpdateStatusInput{
		ProposalID:  proposalID,
		ActorID:     userID,
		Status:      models.ProposalStatus(req.Status),
		ClientNotes: req.ClientNotes,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	if accepted != nil {
		c.JSON(http.StatusOK, dto.UpdateProposalStatusResponse{
			Proposal: accepted.Proposal,
			Project:  shortProjectInfo(accepted.Project),
		})
		return
	}

	c.JSON(http.StatusOK, dto.UpdateProposalStatusResponse{Proposal: rejected})
}

// EvaluateAutoAccept обрабатывает POST /api/projects/:id/auto-accept/evaluate.
// Явный запуск политики владельцем, например после включения флага на проекте
// с уже поданными предложениями. Идемпотентен.
func (h *ProposalHandler) EvaluateAutoAccept(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	projectID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	accepted, err := h.proposals.EvaluateAutoAccept(c.Request.Context(), projectID, userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	if accepted == nil {
		c.JSON(http.StatusOK, dto.AutoAcceptResponse{Message: "условия автоприёма не выполнены"})
		return
	}

	c.JSON(http.StatusOK, dto.AutoAcceptResponse{Triggered: true, Proposal: accepted})
}
