package reservations

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"eventbook/internal/shared/middleware"
	"eventbook/internal/shared/utils/response"
)

type Controller interface {
	CreateReservation(c *gin.Context)
	CancelReservation(c *gin.Context)
	GetMyReservations(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) CreateReservation(c *gin.Context) {
	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	detail, err := ctrl.service.Reserve(c.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrEventNotFound):
			response.RespondJSON(c, "error", http.StatusNotFound, "Event not found", nil, nil)
		case errors.Is(err, ErrEventSoldOut):
			response.RespondJSON(c, "error", http.StatusBadRequest, "Event is fully booked", nil, nil)
		default:
			response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to create reservation", nil, nil)
		}
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Reservation created successfully", detail, nil)
}

func (ctrl *controller) CancelReservation(c *gin.Context) {
	reservationID, err := parseReservationID(c)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid reservation ID", nil, err.Error())
		return
	}

	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	reservation, err := ctrl.service.Cancel(c.Request.Context(), userID, reservationID)
	if err != nil {
		switch {
		case errors.Is(err, ErrReservationNotFound):
			response.RespondJSON(c, "error", http.StatusNotFound, "Reservation not found", nil, nil)
		case errors.Is(err, ErrNotOwner):
			response.RespondJSON(c, "error", http.StatusForbidden, "You can only cancel your own reservations", nil, nil)
		case errors.Is(err, ErrAlreadyCancelled):
			response.RespondJSON(c, "error", http.StatusBadRequest, "Reservation is already cancelled", nil, nil)
		default:
			response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to cancel reservation", nil, nil)
		}
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Reservation cancelled successfully", reservation, nil)
}

func (ctrl *controller) GetMyReservations(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	list, err := ctrl.service.ListMine(c.Request.Context(), userID)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Reservations retrieved successfully", list, nil)
}

func parseReservationID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
