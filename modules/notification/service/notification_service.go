package service

import (
	"context"
	"fmt"
	"time"

	"venueplanner/core/cache"
	"venueplanner/core/constants"
	coreEntity "venueplanner/core/entity"
	apperrors "venueplanner/core/errors"
	"venueplanner/core/logger"
	"venueplanner/core/params"
	eventEntity "venueplanner/modules/event/entity"
	eventRepository "venueplanner/modules/event/repository"
	"venueplanner/modules/notification/entity"
	"venueplanner/modules/notification/repository"

	"github.com/google/uuid"
)

// NotificationService fans lifecycle changes out to participants and serves
// the notification inbox
type NotificationService struct {
	repo      repository.NotificationRepositoryInterface
	eventRepo eventRepository.EventRepositoryInterface
	cache     cache.Cache
}

// NotificationServiceInterface defines the service contract
type NotificationServiceInterface interface {
	GetMyNotifications(ctx context.Context, userID uuid.UUID, qp params.QueryParams) (*entity.PaginatedNotificationEntity, *apperrors.AppError)
	MarkAsRead(ctx context.Context, userID uuid.UUID, ids []string) *apperrors.AppError
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) *apperrors.AppError
	CountUnread(ctx context.Context, userID uuid.UUID) (int, *apperrors.AppError)
}

// NewNotificationService creates a new notification service
func NewNotificationService(repo repository.NotificationRepositoryInterface, eventRepo eventRepository.EventRepositoryInterface, c cache.Cache) *NotificationService {
	return &NotificationService{
		repo:      repo,
		eventRepo: eventRepo,
		cache:     c,
	}
}

// GetMyNotifications pages through the user's inbox, newest first
func (s *NotificationService) GetMyNotifications(ctx context.Context, userID uuid.UUID, qp params.QueryParams) (*entity.PaginatedNotificationEntity, *apperrors.AppError) {
	result, err := s.repo.GetByUserID(ctx, userID, qp)
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrInternalServer, "Failed to get notifications", err)
	}
	return result, nil
}

// MarkAsRead marks the given notifications read, scoped to the user
func (s *NotificationService) MarkAsRead(ctx context.Context, userID uuid.UUID, ids []string) *apperrors.AppError {
	if err := s.repo.MarkAsRead(ctx, userID, ids); err != nil {
		return apperrors.NewAppError(apperrors.ErrInternalServer, "Failed to mark notifications as read", err)
	}
	return nil
}

// MarkAllAsRead clears the user's unread set
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) *apperrors.AppError {
	if err := s.repo.MarkAllAsRead(ctx, userID); err != nil {
		return apperrors.NewAppError(apperrors.ErrInternalServer, "Failed to mark notifications as read", err)
	}
	return nil
}

// CountUnread returns the unread badge count
func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int, *apperrors.AppError) {
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, apperrors.NewAppError(apperrors.ErrInternalServer, "Failed to count notifications", err)
	}
	return count, nil
}

// statusMessage maps a transition onto the inbox copy shown to participants
func statusMessage(title string, newStatus eventEntity.EventStatus) (string, string, string) {
	switch newStatus {
	case eventEntity.StatusVoting:
		return "Voting is open", fmt.Sprintf("Venue voting for %q has started", title), entity.TypeVotingOpened
	case eventEntity.StatusConfirmed:
		return "Event confirmed", fmt.Sprintf("%q is confirmed, see you there", title), entity.TypeEventConfirmed
	case eventEntity.StatusCancelled:
		return "Event cancelled", fmt.Sprintf("%q has been cancelled", title), entity.TypeEventCancelled
	default:
		return "Event updated", fmt.Sprintf("%q moved to %s", title, newStatus), entity.TypeStatusChanged
	}
}

// OnEventStatusChanged implements the event status listener: every committed
// transition produces one inbox entry per participant and a pub/sub message
// for connected clients. Failures only log; notifications never block a
// transition that already committed.
func (s *NotificationService) OnEventStatusChanged(ctx context.Context, eventID uuid.UUID, oldStatus, newStatus eventEntity.EventStatus) {
	ev, err := s.eventRepo.GetEventByID(ctx, eventID)
	if err != nil || ev == nil {
		logger.Error("NotificationService:OnEventStatusChanged load event", err)
		return
	}

	participants, err := s.eventRepo.GetParticipantsByEventID(ctx, eventID)
	if err != nil {
		logger.Error("NotificationService:OnEventStatusChanged participants", err)
		return
	}

	title, message, notifType := statusMessage(ev.Title, newStatus)
	now := time.Now()

	for _, p := range participants {
		notif := &entity.Notification{
			UserID:  p.UserID,
			Title:   title,
			Message: message,
			Type:    notifType,
			Data: entity.JSONB{
				"event_id":   eventID.String(),
				"old_status": string(oldStatus),
				"new_status": string(newStatus),
			},
			IsRead: false,
			BaseEntity: coreEntity.BaseEntity{
				CreatedAt: now,
				UpdatedAt: now,
			},
		}
		if err := s.repo.Create(ctx, notif); err != nil {
			logger.Error("NotificationService:OnEventStatusChanged create",
				"user_id", p.UserID.String(),
				"error", err)
		}
	}

	payload := map[string]string{
		"event_id":   eventID.String(),
		"old_status": string(oldStatus),
		"new_status": string(newStatus),
	}
	if err := s.cache.Publish(ctx, constants.ChannelEventStatusChanged, payload); err != nil {
		logger.Warn("NotificationService:OnEventStatusChanged publish", "error", err)
	}

	logger.Info("NotificationService:OnEventStatusChanged",
		"event_id", eventID.String(),
		"new_status", string(newStatus),
		"recipients", len(participants))
}
