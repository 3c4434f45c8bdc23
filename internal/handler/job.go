package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sumire/fixhub/internal/domain"
	"github.com/sumire/fixhub/internal/service"
)

// JobHandler handles job lifecycle endpoints.
type JobHandler struct {
	jobs *service.JobService
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(jobs *service.JobService) *JobHandler {
	return &JobHandler{jobs: jobs}
}

type createJobRequest struct {
	Title             string   `json:"title" validate:"required"`
	Description       string   `json:"description" validate:"required"`
	Categories        []string `json:"categories" validate:"required,min=1,max=2"`
	Urgency           string   `json:"urgency" validate:"required"`
	UseDefaultAddress bool     `json:"use_default_address"`
	Street            string   `json:"street"`
	PostalCode        string   `json:"postal_code"`
	AttachImage       bool     `json:"attach_image"`
}

// Create registers a new job posting.
func (h *JobHandler) Create(c echo.Context) error {
	userID, err := GetUserID(c)
	if err != nil {
		return err
	}

	var req createJobRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	job, err := h.jobs.Create(c.Request().Context(), userID, service.CreateJobParams{
		Title:             req.Title,
		Description:       req.Description,
		Categories:        req.Categories,
		Urgency:           domain.Urgency(req.Urgency),
		UseDefaultAddress: req.UseDefaultAddress,
		Street:            req.Street,
		PostalCode:        req.PostalCode,
		AttachImage:       req.AttachImage,
	})
	if err != nil {
		return err
	}

	return JSON(c, http.StatusCreated, job)
}

// Get returns a single job by ID.
func (h *JobHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	job, err := h.jobs.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return JSON(c, http.StatusOK, job)
}

// List returns the authenticated client's jobs.
func (h *JobHandler) List(c echo.Context) error {
	userID, err := GetUserID(c)
	if err != nil {
		return err
	}

	jobs, err := h.jobs.ListForClient(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return JSON(c, http.StatusOK, jobs)
}

// ListOpen returns open jobs, optionally filtered by category.
func (h *JobHandler) ListOpen(c echo.Context) error {
	jobs, err := h.jobs.ListOpen(c.Request().Context(), c.QueryParam("category"))
	if err != nil {
		return err
	}

	return JSON(c, http.StatusOK, jobs)
}

// ListAssigned returns jobs assigned to the authenticated professional.
func (h *JobHandler) ListAssigned(c echo.Context) error {
	userID, err := GetUserID(c)
	if err != nil {
		return err
	}

	jobs, err := h.jobs.ListForProfessional(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return JSON(c, http.StatusOK, jobs)
}

// Close closes a job on the client's request.
func (h *JobHandler) Close(c echo.Context) error {
	return h.transition(c, domain.EventClientClosed)
}

// Reopen reopens a closed or completed job.
func (h *JobHandler) Reopen(c echo.Context) error {
	return h.transition(c, domain.EventClientReopened)
}

// Complete marks an in-progress job as completed by the professional.
func (h *JobHandler) Complete(c echo.Context) error {
	return h.transition(c, domain.EventProfessionalCompleted)
}

func (h *JobHandler) transition(c echo.Context, event domain.JobEvent) error {
	userID, err := GetUserID(c)
	if err != nil {
		return err
	}

	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	job, err := h.jobs.Transition(c.Request().Context(), id, event, userID)
	if err != nil {
		return err
	}

	return JSON(c, http.StatusOK, job)
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s", domain.ErrInvalidInput, name)
	}
	return id, nil
}
