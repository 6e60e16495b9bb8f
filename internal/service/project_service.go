package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-market/internal/logger"
	"github.com/ignatzorin/freelance-market/internal/models"
	"github.com/ignatzorin/freelance-market/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-market/internal/repository"
	"github.com/ignatzorin/freelance-market/internal/validation"
)

// ProjectStore описывает взаимодействие сервиса с хранилищем проектов.
type ProjectStore interface {
	Create(ctx context.Context, project *models.Project, attachmentIDs []uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	GetByIDWithAttachments(ctx context.Context, id uuid.UUID) (*models.Project, []models.MediaAttachment, error)
	Update(ctx context.Context, project *models.Project, attachmentIDs []uuid.UUID) error
	List(ctx context.Context, params repository.ListFilterParams) (*repository.ListResult, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Project, error)
	ListByHiredFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]models.Project, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.ProjectStatus) error
	Cancel(ctx context.Context, id uuid.UUID, from models.ProjectStatus, reason *string) error
	SetAutoAccept(ctx context.Context, id uuid.UUID, clientID uuid.UUID, enabled bool) error
	Delete(ctx context.Context, id uuid.UUID, clientID uuid.UUID) error
	GetClientStats(ctx context.Context, clientID uuid.UUID) (*models.ClientProjectStats, error)
	GetFreelancerStats(ctx context.Context, freelancerID uuid.UUID) (*models.FreelancerAssignmentStats, error)
}

// ProjectUserStore описывает зависимости от хранилища пользователей.
type ProjectUserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetPublicByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.PublicUser, error)
	IncrementCompletedProjects(ctx context.Context, userID uuid.UUID) error
}

// SubmissionStore описывает хранилище сдач работ.
type SubmissionStore interface {
	Create(ctx context.Context, submission *models.ProjectSubmission) error
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.ProjectSubmission, error)
}

// ProjectNotifier доставляет уведомления участникам проекта.
type ProjectNotifier interface {
	Notify(ctx context.Context, userID uuid.UUID, event string, data interface{})
}

// ProjectService содержит бизнес-логику жизненного цикла проектов.
type ProjectService struct {
	repo        ProjectStore
	users       ProjectUserStore
	submissions SubmissionStore
	notifier    ProjectNotifier
}

// NewProjectService создаёт новый сервис проектов.
func NewProjectService(repo ProjectStore, users ProjectUserStore, submissions SubmissionStore, notifier ProjectNotifier) *ProjectService {
	return &ProjectService{
		repo:        repo,
		users:       users,
		submissions: submissions,
		notifier:    notifier,
	}
}

// CreateProjectInput описывает входные данные создания проекта.
type CreateProjectInput struct {
	ClientID      uuid.UUID
	Title         string
	Description   string
	Budget        float64
	Category      string
	Skills        []string
	DeadlineAt    *time.Time
	Status        string
	AttachmentIDs []uuid.UUID
}

// Create публикует новый проект от имени клиента.
func (s *ProjectService) Create(ctx context.Context, in CreateProjectInput) (*models.Project, error) {
	client, err := s.users.GetByID(ctx, in.ClientID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, err
	}
	if !client.CanCreateProjects() {
		return nil, apperror.ErrUserNotAuthorized
	}

	if err := validateProjectInput(in.Title, in.Description, in.Budget, in.Category, in.Skills); err != nil {
		return nil, err
	}

	status := models.ProjectStatusOpen
	if in.Status != "" {
		status = models.ProjectStatus(in.Status)
		if status != models.ProjectStatusDraft && status != models.ProjectStatusOpen {
			return nil, apperror.New(apperror.ErrCodeValidation, "новый проект может быть только draft или open")
		}
	}

	project := &models.Project{
		ClientID:    in.ClientID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Budget:      in.Budget,
		Category:    strings.TrimSpace(in.Category),
		Skills:      in.Skills,
		DeadlineAt:  in.DeadlineAt,
		Status:      status,
	}
	if project.Skills == nil {
		project.Skills = []string{}
	}

	if err := s.repo.Create(ctx, project, in.AttachmentIDs); err != nil {
		return nil, err
	}

	return project, nil
}

// Get возвращает проект с вложениями и публичными профилями участников.
func (s *ProjectService) Get(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	project, attachments, err := s.repo.GetByIDWithAttachments(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, apperror.ErrProjectNotFound
		}
		return nil, err
	}
	project.Attachments = attachments

	ids := []uuid.UUID{project.ClientID}
	if project.HiredFreelancerID != nil {
		ids = append(ids, *project.HiredFreelancerID)
	}

	profiles, err := s.users.GetPublicByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if client, ok := profiles[project.ClientID]; ok {
		project.Client = &client
	}
	if project.HiredFreelancerID != nil {
		if freelancer, ok := profiles[*project.HiredFreelancerID]; ok {
			project.HiredFreelancer = &freelancer
		}
	}

	return project, nil
}

// List возвращает открытые проекты с фильтрацией и пагинацией.
func (s *ProjectService) List(ctx context.Context, params repository.ListFilterParams) (*repository.ListResult, error) {
	return s.repo.List(ctx, params)
}

// ListMy возвращает проекты клиента.
func (s *ProjectService) ListMy(ctx context.Context, clientID uuid.UUID) ([]models.Project, error) {
	return s.repo.ListByClient(ctx, clientID)
}

// ListAssignments возвращает проекты, где пользователь выбран исполнителем.
func (s *ProjectService) ListAssignments(ctx context.Context, freelancerID uuid.UUID) ([]models.Project, error) {
	return s.repo.ListByHiredFreelancer(ctx, freelancerID)
}

// UpdateProjectInput описывает частичное обновление проекта.
type UpdateProjectInput struct {
	ProjectID     uuid.UUID
	ClientID      uuid.UUID
	Title         *string
	Description   *string
	Budget        *float64
	Category      *string
	Skills        []string
	DeadlineAt    *time.Time
	Status        *string
	AttachmentIDs []uuid.UUID
}

// Update изменяет проект владельца. Редактирование разрешено, пока исполнитель
// не выбран; смена статуса проходит через таблицу переходов.
func (s *ProjectService) Update(ctx context.Context, in UpdateProjectInput) (*models.Project, error) {
	project, err := s.getOwned(ctx, in.ProjectID, in.ClientID)
	if err != nil {
		return nil, err
	}

	if project.HasHiredFreelancer() {
		return nil, apperror.ErrAlreadyHired
	}
	if project.Status != models.ProjectStatusDraft && project.Status != models.ProjectStatusOpen {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "проект нельзя редактировать в текущем статусе")
	}

	if in.Title != nil {
		project.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		project.Description = strings.TrimSpace(*in.Description)
	}
	if in.Budget != nil {
		project.Budget = *in.Budget
	}
	if in.Category != nil {
		project.Category = strings.TrimSpace(*in.Category)
	}
	if in.Skills != nil {
		project.Skills = in.Skills
	}
	if in.DeadlineAt != nil {
		project.DeadlineAt = in.DeadlineAt
	}

	if err := validateProjectInput(project.Title, project.Description, project.Budget, project.Category, project.Skills); err != nil {
		return nil, err
	}

	if in.Status != nil {
		next := models.ProjectStatus(*in.Status)
		if !next.IsValid() {
			return nil, apperror.New(apperror.ErrCodeValidation, "неизвестный статус проекта")
		}
		if next != project.Status {
			if !project.Status.CanTransitionTo(next) {
				return nil, apperror.NewInvalidProjectState(string(project.Status), string(next))
			}
			// Через Update проходят только draft -> open и -> cancelled;
			// наём исполнителя идёт через принятие предложения.
			if next == models.ProjectStatusInProgress {
				return nil, apperror.New(apperror.ErrCodeBadRequest, "перевод в in_progress выполняется принятием предложения")
			}
			project.Status = next
		}
	}

	if err := s.repo.Update(ctx, project, in.AttachmentIDs); err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, apperror.ErrProjectNotFound
		}
		return nil, err
	}

	return project, nil
}

// Complete переводит проект в completed и засчитывает его исполнителю.
func (s *ProjectService) Complete(ctx context.Context, projectID, actorID uuid.UUID) (*models.Project, error) {
	project, err := s.getOwned(ctx, projectID, actorID)
	if err != nil {
		return nil, err
	}

	if !project.Status.CanTransitionTo(models.ProjectStatusCompleted) {
		return nil, apperror.NewInvalidProjectState(string(project.Status), string(models.ProjectStatusCompleted))
	}

	if err := s.repo.UpdateStatus(ctx, projectID, project.Status, models.ProjectStatusCompleted); err != nil {
		if errors.Is(err, repository.ErrProjectStateChanged) {
			return nil, apperror.New(apperror.ErrCodeConflict, "статус проекта изменился, обновите страницу")
		}
		return nil, err
	}

	if project.HiredFreelancerID != nil {
		if err := s.users.IncrementCompletedProjects(ctx, *project.HiredFreelancerID); err != nil {
			logger.Log.WithFields(map[string]interface{}{
				"project_id":    projectID,
				"freelancer_id": *project.HiredFreelancerID,
				"error":         err.Error(),
			}).Warn("project service: не удалось обновить счётчик завершённых проектов")
		}

		s.notifier.Notify(ctx, *project.HiredFreelancerID, "project.completed", map[string]interface{}{
			"project_id": projectID,
			"title":      project.Title,
		})
	}

	return s.repo.GetByID(ctx, projectID)
}

// Cancel отменяет проект с опциональной причиной.
func (s *ProjectService) Cancel(ctx context.Context, projectID, actorID uuid.UUID, reason *string) (*models.Project, error) {
	project, err := s.getOwned(ctx, projectID, actorID)
	if err != nil {
		return nil, err
	}

	if err := validation.ValidateCancellationReason(reason); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	if !project.Status.CanTransitionTo(models.ProjectStatusCancelled) {
		return nil, apperror.NewInvalidProjectState(string(project.Status), string(models.ProjectStatusCancelled))
	}

	if err := s.repo.Cancel(ctx, projectID, project.Status, reason); err != nil {
		if errors.Is(err, repository.ErrProjectStateChanged) {
			return nil, apperror.New(apperror.ErrCodeConflict, "статус проекта изменился, обновите страницу")
		}
		return nil, err
	}

	if project.HiredFreelancerID != nil {
		s.notifier.Notify(ctx, *project.HiredFreelancerID, "project.cancelled", map[string]interface{}{
			"project_id": projectID,
			"title":      project.Title,
		})
	}

	return s.repo.GetByID(ctx, projectID)
}

// SetAutoAccept включает или выключает автоприём предложений.
func (s *ProjectService) SetAutoAccept(ctx context.Context, projectID, actorID uuid.UUID, enabled bool) error {
	project, err := s.getOwned(ctx, projectID, actorID)
	if err != nil {
		return err
	}

	// В запрос подставляется владелец проекта, а не действующий
	// пользователь: администратор проходит проверку выше.
	if err := s.repo.SetAutoAccept(ctx, projectID, project.ClientID, enabled); err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return apperror.ErrProjectNotFound
		}
		return err
	}

	return nil
}

// SubmitWork фиксирует сдачу работы выбранным исполнителем. Статус проекта
// не меняется: завершение подтверждает клиент через Complete.
func (s *ProjectService) SubmitWork(ctx context.Context, projectID, freelancerID uuid.UUID, deliverables []string, comment string) (*models.ProjectSubmission, error) {
	project, err := s.repo.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, apperror.ErrProjectNotFound
		}
		return nil, err
	}

	if project.HiredFreelancerID == nil || *project.HiredFreelancerID != freelancerID {
		return nil, apperror.ErrUserNotAuthorized
	}
	if project.Status != models.ProjectStatusInProgress {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "сдать работу можно только по проекту в работе")
	}

	cleaned := make([]string, 0, len(deliverables))
	for _, d := range deliverables {
		if trimmed := strings.TrimSpace(d); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	comment = strings.TrimSpace(comment)
	if len(cleaned) == 0 {
		// Пустая сдача бессмысленна: нужны либо материалы, либо комментарий
		if err := validation.ValidateNonEmpty("комментарий", comment); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	}

	submission := &models.ProjectSubmission{
		ProjectID:    projectID,
		FreelancerID: freelancerID,
		Deliverables: cleaned,
	}
	if comment != "" {
		submission.Comment = &comment
	}

	if err := s.submissions.Create(ctx, submission); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, project.ClientID, "project.work_submitted", map[string]interface{}{
		"project_id":    projectID,
		"title":         project.Title,
		"submission_id": submission.ID,
	})

	return submission, nil
}

// ListSubmissions возвращает сдачи по проекту. Доступно клиенту проекта,
// выбранному исполнителю и администратору.
func (s *ProjectService) ListSubmissions(ctx context.Context, projectID, actorID uuid.UUID) ([]models.ProjectSubmission, error) {
	project, err := s.repo.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, apperror.ErrProjectNotFound
		}
		return nil, err
	}

	allowed := project.IsOwnedBy(actorID) ||
		(project.HiredFreelancerID != nil && *project.HiredFreelancerID == actorID)
	if !allowed {
		actor, err := s.users.GetByID(ctx, actorID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return nil, apperror.ErrUserNotAuthorized
			}
			return nil, err
		}
		if !actor.IsAdmin() {
			return nil, apperror.ErrUserNotAuthorized
		}
	}

	return s.submissions.ListByProject(ctx, projectID)
}

// Delete удаляет проект. Разрешено только до выбора исполнителя.
func (s *ProjectService) Delete(ctx context.Context, projectID, actorID uuid.UUID) error {
	project, err := s.getOwned(ctx, projectID, actorID)
	if err != nil {
		return err
	}

	if project.HasHiredFreelancer() {
		return apperror.New(apperror.ErrCodeBadRequest, "нельзя удалить проект с выбранным исполнителем")
	}

	if err := s.repo.Delete(ctx, projectID, project.ClientID); err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return apperror.ErrProjectNotFound
		}
		return err
	}

	return nil
}

// GetClientStats возвращает агрегаты по проектам клиента.
func (s *ProjectService) GetClientStats(ctx context.Context, clientID uuid.UUID) (*models.ClientProjectStats, error) {
	return s.repo.GetClientStats(ctx, clientID)
}

// GetFreelancerStats возвращает агрегаты по назначениям фрилансера.
func (s *ProjectService) GetFreelancerStats(ctx context.Context, freelancerID uuid.UUID) (*models.FreelancerAssignmentStats, error) {
	return s.repo.GetFreelancerStats(ctx, freelancerID)
}

// getOwned загружает проект и проверяет, что действует владелец
// либо администратор.
func (s *ProjectService) getOwned(ctx context.Context, projectID, actorID uuid.UUID) (*models.Project, error) {
	project, err := s.repo.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, apperror.ErrProjectNotFound
		}
		return nil, err
	}

	if project.IsOwnedBy(actorID) {
		return project, nil
	}

	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrNotProjectOwner
		}
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, apperror.ErrNotProjectOwner
	}

	return project, nil
}

// validateProjectInput проверяет общие поля проекта.
func validateProjectInput(title, description string, budget float64, category string, skills []string) error {
	if err := validation.ValidateProjectTitle(title); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateProjectDescription(description); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateBudget(budget); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateCategory(category); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateSkills(skills); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	return nil
}
