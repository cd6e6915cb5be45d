package service

import (
	"encoding/json"
	"fmt"

	"go-printshop-ws/internal/model"
	"go-printshop-ws/internal/repository"
	"go-printshop-ws/internal/ws"

	"github.com/google/uuid"
)

type NotificationService interface {
	CompletionNotifier
	MessageDeclinedUser(jobID uint, message string) error
	BroadcastToActive(subject, message string) (int, error)
	ListForUser(userID uuid.UUID) ([]model.Notification, error)
	UnreadCount(userID uuid.UUID) (int64, error)
	MarkRead(notifID uint) error
	MarkAllRead(userID uuid.UUID) error
	ClearForUser(userID uuid.UUID) error
}

type notificationService struct {
	notifRepo repository.NotificationRepository
	userRepo  repository.UserRepository
	jobRepo   repository.PrintJobRepository
	wsHub     *ws.Hub
}

func NewNotificationService(
	notifRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	jobRepo repository.PrintJobRepository,
	hub *ws.Hub,
) NotificationService {
	return &notificationService{
		notifRepo: notifRepo,
		userRepo:  userRepo,
		jobRepo:   jobRepo,
		wsHub:     hub,
	}
}

// NotifyJobCompleted enqueues the "ready for pickup" notice for the job's
// owner. Runs after the job transaction has committed; the caller treats a
// failure here as log-only.
func (s *notificationService) NotifyJobCompleted(job *model.PrintJob) error {
	fileName := fmt.Sprintf("File %d", job.FileID)
	if job.File != nil {
		fileName = job.File.FileName
	}

	userID := job.UserID
	notification := &model.Notification{
		UserID:  &userID,
		Subject: "Print Job Completed",
		Message: fmt.Sprintf("Your file ('%s') is now printed and is ready for pickup.", fileName),
		Status:  model.NotifUnread,
	}
	if err := s.notifRepo.Create(notification); err != nil {
		return err
	}

	s.push(notification)
	return nil
}

// MessageDeclinedUser sends the decline reason to the job's owner.
// Only Declined jobs can be messaged this way.
func (s *notificationService) MessageDeclinedUser(jobID uint, message string) error {
	if message == "" {
		return validationErrf("a message is required")
	}

	job, err := s.jobRepo.FindByID(jobID)
	if err != nil {
		return resourceErrf("print job %d not found", jobID)
	}
	if job.Status != model.StatusDeclined {
		return stateErrf("only Declined jobs can be messaged; status is '%s'", job.Status)
	}

	userID := job.UserID
	notification := &model.Notification{
		UserID:  &userID,
		Subject: "Declined Request Notice",
		Message: message,
		Status:  model.NotifUnread,
	}
	if err := s.notifRepo.Create(notification); err != nil {
		return err
	}

	s.push(notification)
	return nil
}

// BroadcastToActive fans a notice out to every active account and returns
// how many were addressed.
func (s *notificationService) BroadcastToActive(subject, message string) (int, error) {
	if subject == "" || message == "" {
		return 0, validationErrf("subject and message are required")
	}

	ids, err := s.userRepo.FindActiveIDs()
	if err != nil {
		return 0, err
	}

	for _, id := range ids {
		userID := id
		notification := &model.Notification{
			UserID:  &userID,
			Subject: subject,
			Message: message,
			Status:  model.NotifUnread,
		}
		if err := s.notifRepo.Create(notification); err != nil {
			return 0, err
		}
		s.push(notification)
	}

	return len(ids), nil
}

func (s *notificationService) ListForUser(userID uuid.UUID) ([]model.Notification, error) {
	return s.notifRepo.FindByUser(userID)
}

func (s *notificationService) UnreadCount(userID uuid.UUID) (int64, error) {
	return s.notifRepo.CountUnread(userID)
}

func (s *notificationService) MarkRead(notifID uint) error {
	return s.notifRepo.MarkRead(notifID)
}

func (s *notificationService) MarkAllRead(userID uuid.UUID) error {
	return s.notifRepo.MarkAllRead(userID)
}

// ClearForUser empties the user's notification list. Broadcast rows
// (null user_id) are shared and stay.
func (s *notificationService) ClearForUser(userID uuid.UUID) error {
	return s.notifRepo.DeleteByUser(userID)
}

// push mirrors a stored notification onto the websocket so an open client
// sees it without polling. Fire-and-forget.
func (s *notificationService) push(n *model.Notification) {
	if s.wsHub == nil || n.UserID == nil {
		return
	}

	go func() {
		payload := map[string]interface{}{
			"type": "notification",
			"notification": map[string]interface{}{
				"notif_id":   n.NotifID,
				"subject":    n.Subject,
				"message":    n.Message,
				"status":     n.Status,
				"created_at": n.CreatedAt,
			},
		}
		msg, _ := json.Marshal(payload)
		s.wsHub.SendToUser(n.UserID.String(), msg)
	}()
}
