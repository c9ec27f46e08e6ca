package children

import (
	"errors"
	"net/http"

	"carebaby/internal/shared/middleware"
	"carebaby/internal/shared/utils/response"
	"carebaby/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Controller interface {
	CreateChild(c *gin.Context)
	GetChild(c *gin.Context)
}

type controller struct {
	service  Service
	validate *validator.Validate
	log      *logger.Logger
}

func NewController(service Service, log *logger.Logger) Controller {
	if log == nil {
		log = logger.GetDefault()
	}
	return &controller{
		service:  service,
		validate: validator.New(),
		log:      log,
	}
}

func (ctrl *controller) CreateChild(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == "" {
		response.RespondError(c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	var req CreateChildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := ctrl.validate.Struct(req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}

	child, err := ctrl.service.CreateChild(c.Request.Context(), userID, req)
	if err != nil {
		ctrl.log.WithUserID(userID).LogHTTPError(c, err, http.StatusInternalServerError)
		response.RespondError(c, http.StatusInternalServerError, "Failed to create child", nil)
		return
	}

	response.RespondSuccess(c, http.StatusCreated, "Child created successfully", child)
}

func (ctrl *controller) GetChild(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == "" {
		response.RespondError(c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	child, err := ctrl.service.GetChild(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			response.RespondError(c, statusErr.HTTPStatus(), statusErr.Error(), nil)
			return
		}
		ctrl.log.WithUserID(userID).LogHTTPError(c, err, http.StatusInternalServerError)
		response.RespondError(c, http.StatusInternalServerError, "Failed to load child", nil)
		return
	}

	response.RespondSuccess(c, http.StatusOK, "Child retrieved successfully", child)
}
