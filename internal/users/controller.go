package users

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"eventbook/internal/shared/utils/response"
)

type Controller interface {
	GetAllUsers(c *gin.Context)
	GetUser(c *gin.Context)
	UpdateUser(c *gin.Context)
	DeleteUser(c *gin.Context)
}

type controller struct {
	service  Service
	validate *validator.Validate
}

func NewController(service Service) Controller {
	return &controller{
		service:  service,
		validate: validator.New(),
	}
}

func (ctrl *controller) GetAllUsers(c *gin.Context) {
	list, err := ctrl.service.GetAllUsers(c.Request.Context())
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Users retrieved successfully", list, nil)
}

func (ctrl *controller) GetUser(c *gin.Context) {
	userID, err := parseUserID(c)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid user ID", nil, err.Error())
		return
	}

	user, err := ctrl.service.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, ErrUserNotFound) {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "User retrieved successfully", user, nil)
}

func (ctrl *controller) UpdateUser(c *gin.Context) {
	userID, err := parseUserID(c)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid user ID", nil, err.Error())
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	if err := ctrl.validate.Struct(req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	user, err := ctrl.service.UpdateUser(c.Request.Context(), userID, req)
	if err != nil {
		statusCode := http.StatusBadRequest
		if errors.Is(err, ErrUserNotFound) {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "User updated successfully", user, nil)
}

func (ctrl *controller) DeleteUser(c *gin.Context) {
	userID, err := parseUserID(c)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid user ID", nil, err.Error())
		return
	}

	if err := ctrl.service.DeleteUser(c.Request.Context(), userID); err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, ErrUserNotFound) {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "User deleted successfully", nil, nil)
}

func parseUserID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
