package tags

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"carebaby/internal/shared/middleware"
	"carebaby/internal/shared/utils/response"
	"carebaby/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ChildGuard confirms the caller owns a child and returns its id
type ChildGuard interface {
	AssertOwned(ctx context.Context, childID, userID string) (uuid.UUID, error)
}

type Controller interface {
	// Child tags
	GetChildTags(c *gin.Context)
	ReplaceChildTags(c *gin.Context)

	// Suggestions and browsing
	SuggestTags(c *gin.Context)
	GetActiveTags(c *gin.Context)
	GetTagBySlug(c *gin.Context)

	// Admin
	SetTagActive(c *gin.Context)
}

type controller struct {
	service  Service
	guard    ChildGuard
	validate *validator.Validate
	log      *logger.Logger
}

func NewController(service Service, guard ChildGuard, log *logger.Logger) Controller {
	if log == nil {
		log = logger.GetDefault()
	}
	return &controller{
		service:  service,
		guard:    guard,
		validate: validator.New(),
		log:      log,
	}
}

// ownedChild resolves the :id param for the authenticated caller, writing the error response itself
func (ctrl *controller) ownedChild(c *gin.Context) (uuid.UUID, bool) {
	userID := middleware.UserID(c)
	if userID == "" {
		response.RespondError(c, http.StatusUnauthorized, "User not authenticated", nil)
		return uuid.Nil, false
	}

	childID, err := ctrl.guard.AssertOwned(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		ctrl.respondGuardError(c, userID, err)
		return uuid.Nil, false
	}
	return childID, true
}

func (ctrl *controller) respondGuardError(c *gin.Context, userID string, err error) {
	var coded interface{ HTTPStatus() int }
	if errors.As(err, &coded) {
		response.RespondError(c, coded.HTTPStatus(), err.Error(), nil)
		return
	}
	ctrl.log.WithUserID(userID).LogHTTPError(c, err, http.StatusInternalServerError)
	response.RespondError(c, http.StatusInternalServerError, "Failed to load child", nil)
}

// Child tags

func (ctrl *controller) GetChildTags(c *gin.Context) {
	childID, ok := ctrl.ownedChild(c)
	if !ok {
		return
	}

	tags, err := ctrl.service.GetChildTags(c.Request.Context(), childID)
	if err != nil {
		ctrl.log.WithUserID(middleware.UserID(c)).LogHTTPError(c, err, http.StatusInternalServerError)
		response.RespondError(c, http.StatusInternalServerError, "Failed to load child tags", nil)
		return
	}

	response.RespondSuccess(c, http.StatusOK, "Child tags retrieved successfully", ChildTagsResponse{
		ChildID:     childID.String(),
		Tags:        tags,
		Suggestions: []TagOut{},
	})
}

func (ctrl *controller) ReplaceChildTags(c *gin.Context) {
	childID, ok := ctrl.ownedChild(c)
	if !ok {
		return
	}

	var req ReplaceChildTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := ctrl.validate.Struct(req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}

	tags, err := ctrl.service.ReplaceChildTags(c.Request.Context(), childID, req.Tags)
	if err != nil {
		ctrl.log.WithUserID(middleware.UserID(c)).LogHTTPError(c, err, http.StatusInternalServerError)
		response.RespondError(c, http.StatusInternalServerError, "Failed to update child tags", nil)
		return
	}

	response.RespondSuccess(c, http.StatusOK, "Child tags updated successfully", ChildTagsResponse{
		ChildID:     childID.String(),
		Tags:        tags,
		Suggestions: []TagOut{},
	})
}

// Suggestions and browsing

func (ctrl *controller) SuggestTags(c *gin.Context) {
	var query SuggestQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondError(c, http.StatusBadRequest, "Invalid query parameters", err.Error())
		return
	}

	limit := DefaultSuggestLimit
	if query.Limit != "" {
		parsed, err := strconv.Atoi(query.Limit)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "Invalid limit", nil)
			return
		}
		limit = parsed
	}

	results, err := ctrl.service.SuggestTags(c.Request.Context(), query.Q, limit)
	if err != nil {
		if errors.Is(err, ErrInvalidQuery) {
			response.RespondError(c, http.StatusBadRequest, "Invalid query", nil)
			return
		}
		ctrl.log.LogHTTPError(c, err, http.StatusInternalServerError)
		response.RespondError(c, http.StatusInternalServerError, "Failed to suggest tags", nil)
		return
	}
	if results == nil {
		results = []TagOut{}
	}

	response.RespondSuccess(c, http.StatusOK, "Suggestions retrieved successfully", SuggestResponse{
		Query:   query.Q,
		Results: results,
	})
}

func (ctrl *controller) GetActiveTags(c *gin.Context) {
	tags, err := ctrl.service.GetActiveTags(c.Request.Context())
	if err != nil {
		ctrl.log.LogHTTPError(c, err, http.StatusInternalServerError)
		response.RespondError(c, http.StatusInternalServerError, "Failed to load tags", nil)
		return
	}

	response.RespondSuccess(c, http.StatusOK, "Active tags retrieved successfully", tags)
}

func (ctrl *controller) GetTagBySlug(c *gin.Context) {
	slug := c.Param("slug")
	if slug == "" {
		response.RespondError(c, http.StatusBadRequest, "Tag slug is required", nil)
		return
	}

	tag, err := ctrl.service.GetTagBySlug(c.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, ErrTagNotFound) {
			response.RespondError(c, http.StatusNotFound, err.Error(), nil)
			return
		}
		ctrl.log.LogHTTPError(c, err, http.StatusInternalServerError)
		response.RespondError(c, http.StatusInternalServerError, "Failed to load tag", nil)
		return
	}

	response.RespondSuccess(c, http.StatusOK, "Tag retrieved successfully", tag)
}

// Admin

func (ctrl *controller) SetTagActive(c *gin.Context) {
	tagID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "Invalid tag ID", err.Error())
		return
	}

	var req SetTagActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := ctrl.validate.Struct(req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}

	tag, err := ctrl.service.SetTagActive(c.Request.Context(), tagID, *req.IsActive)
	if err != nil {
		if errors.Is(err, ErrTagNotFound) {
			response.RespondError(c, http.StatusNotFound, err.Error(), nil)
			return
		}
		ctrl.log.LogHTTPError(c, err, http.StatusInternalServerError)
		response.RespondError(c, http.StatusInternalServerError, "Failed to update tag", nil)
		return
	}

	response.RespondSuccess(c, http.StatusOK, "Tag updated successfully", tag)
}
