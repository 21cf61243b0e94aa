package controller

import (
	"strconv"

	"venueplanner/core/constants"
	"venueplanner/core/controller"
	"venueplanner/core/errors"
	"venueplanner/core/params"
	"venueplanner/core/utils"
	"venueplanner/modules/notification/dto"
	"venueplanner/modules/notification/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// NotificationController handles notification HTTP requests
type NotificationController struct {
	controller.BaseController
	NotificationService service.NotificationServiceInterface
}

// NewNotificationController creates a new controller
func NewNotificationController(svc service.NotificationServiceInterface) *NotificationController {
	return &NotificationController{
		BaseController:      controller.NewBaseController(),
		NotificationService: svc,
	}
}

func (c *NotificationController) getUserIDFromContext(ctx echo.Context) (uuid.UUID, error) {
	tokenData := ctx.Get(constants.ContextTokenData)
	if tokenData == nil {
		return uuid.Nil, errors.NewAppError(errors.ErrUnauthorized, "User not authenticated", nil)
	}
	claims, ok := tokenData.(*utils.TokenClaims)
	if !ok {
		return uuid.Nil, errors.NewAppError(errors.ErrUnauthorized, "Invalid token data", nil)
	}
	return claims.UserID, nil
}

// GetMyNotifications handles GET /notifications
// @Summary List my notifications
// @Tags Notifications
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} entity.PaginatedNotificationEntity
// @Router /private/notifications [get]
func (c *NotificationController) GetMyNotifications(ctx echo.Context) error {
	userID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	page, _ := strconv.Atoi(ctx.QueryParam("page"))
	pageSize, _ := strconv.Atoi(ctx.QueryParam("page_size"))
	qp := params.NewQueryParams(page, pageSize)

	result, appErr := c.NotificationService.GetMyNotifications(ctx.Request().Context(), userID, qp)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Success")
}

// MarkAsRead handles POST /notifications/read
// @Summary Mark notifications as read
// @Tags Notifications
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.MarkReadRequest true "Notification IDs"
// @Success 200 {object} map[string]string
// @Router /private/notifications/read [post]
func (c *NotificationController) MarkAsRead(ctx echo.Context) error {
	userID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	var req dto.MarkReadRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}
	if err := ctx.Validate(&req); err != nil {
		return err
	}

	if appErr := c.NotificationService.MarkAsRead(ctx.Request().Context(), userID, req.IDs); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, nil, "Marked as read")
}

// MarkAllAsRead handles POST /notifications/read-all
// @Summary Mark all notifications as read
// @Tags Notifications
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]string
// @Router /private/notifications/read-all [post]
func (c *NotificationController) MarkAllAsRead(ctx echo.Context) error {
	userID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	if appErr := c.NotificationService.MarkAllAsRead(ctx.Request().Context(), userID); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, nil, "Marked all as read")
}

// CountUnread handles GET /notifications/unread-count
// @Summary Unread notification count
// @Tags Notifications
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.UnreadCountResponse
// @Router /private/notifications/unread-count [get]
func (c *NotificationController) CountUnread(ctx echo.Context) error {
	userID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	count, appErr := c.NotificationService.CountUnread(ctx.Request().Context(), userID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, dto.UnreadCountResponse{Count: count}, "Success")
}
