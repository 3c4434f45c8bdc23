package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sumire/fixhub/internal/domain"
	"github.com/sumire/fixhub/internal/service"
)

// ReviewHandler handles job review endpoints.
type ReviewHandler struct {
	reviews *service.ReviewService
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviews *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

type attachReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// Attach records the client's review on a finished job.
func (h *ReviewHandler) Attach(c echo.Context) error {
	userID, err := GetUserID(c)
	if err != nil {
		return err
	}

	jobID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req attachReviewRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	review, err := h.reviews.Attach(c.Request().Context(), jobID, userID, req.Rating, req.Comment)
	if err != nil {
		return err
	}

	return JSON(c, http.StatusCreated, review)
}

// ForJob returns the review attached to a job, if any.
func (h *ReviewHandler) ForJob(c echo.Context) error {
	jobID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	review, err := h.reviews.ForJob(c.Request().Context(), jobID)
	if err != nil {
		return err
	}

	return JSON(c, http.StatusOK, review)
}
