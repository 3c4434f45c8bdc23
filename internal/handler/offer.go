package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sumire/fixhub/internal/domain"
	"github.com/sumire/fixhub/internal/service"
)

// OfferHandler handles offer negotiation endpoints.
type OfferHandler struct {
	offers *service.OfferService
}

// NewOfferHandler creates a new OfferHandler.
func NewOfferHandler(offers *service.OfferService) *OfferHandler {
	return &OfferHandler{offers: offers}
}

type submitOfferRequest struct {
	PriceCents int64  `json:"price_cents" validate:"required,gt=0"`
	Terms      string `json:"terms" validate:"required"`
}

// Submit places a new offer on a job.
func (h *OfferHandler) Submit(c echo.Context) error {
	userID, err := GetUserID(c)
	if err != nil {
		return err
	}

	jobID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req submitOfferRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	offer, err := h.offers.Submit(c.Request().Context(), jobID, userID, req.PriceCents, req.Terms)
	if err != nil {
		return err
	}

	return JSON(c, http.StatusCreated, offer)
}

// ListByJob returns the offers visible to the caller on a job.
func (h *OfferHandler) ListByJob(c echo.Context) error {
	userID, err := GetUserID(c)
	if err != nil {
		return err
	}

	jobID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	offers, err := h.offers.ListByJob(c.Request().Context(), jobID, userID)
	if err != nil {
		return err
	}

	return JSON(c, http.StatusOK, offers)
}

// Accept accepts an offer and assigns the job to its professional.
func (h *OfferHandler) Accept(c echo.Context) error {
	userID, err := GetUserID(c)
	if err != nil {
		return err
	}

	offerID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	acc, err := h.offers.Accept(c.Request().Context(), offerID, userID)
	if err != nil {
		return err
	}

	return JSON(c, http.StatusOK, map[string]any{
		"offer": acc.Offer,
		"job":   acc.Job,
	})
}

// Reject declines a pending offer.
func (h *OfferHandler) Reject(c echo.Context) error {
	userID, err := GetUserID(c)
	if err != nil {
		return err
	}

	offerID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	offer, err := h.offers.Reject(c.Request().Context(), offerID, userID)
	if err != nil {
		return err
	}

	return JSON(c, http.StatusOK, offer)
}
