package repository

import (
	"go-printshop-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(n *model.Notification) error
	FindByUser(userID uuid.UUID) ([]model.Notification, error)
	CountUnread(userID uuid.UUID) (int64, error)
	MarkRead(id uint) error
	MarkAllRead(userID uuid.UUID) error
	DeleteByUser(userID uuid.UUID) error
}

type notificationRepo struct {
	db *gorm.DB
}

func NewNotificationRepo(db *gorm.DB) NotificationRepository {
	return &notificationRepo{db}
}

func (r *notificationRepo) Create(n *model.Notification) error {
	return r.db.Create(n).Error
}

// FindByUser returns the user's notices plus global broadcasts (NULL user_id)
func (r *notificationRepo) FindByUser(userID uuid.UUID) ([]model.Notification, error) {
	var notifications []model.Notification
	err := r.db.
		Where("user_id = ? OR user_id IS NULL", userID).
		Order("created_at DESC").
		Find(&notifications).Error
	return notifications, err
}

func (r *notificationRepo) CountUnread(userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.Notification{}).
		Where("(user_id = ? OR user_id IS NULL) AND status = ?", userID, model.NotifUnread).
		Count(&count).Error
	return count, err
}

func (r *notificationRepo) MarkRead(id uint) error {
	return r.db.Model(&model.Notification{}).
		Where("notif_id = ?", id).
		Update("status", model.NotifRead).Error
}

func (r *notificationRepo) MarkAllRead(userID uuid.UUID) error {
	return r.db.Model(&model.Notification{}).
		Where("(user_id = ? OR user_id IS NULL) AND status = ?", userID, model.NotifUnread).
		Update("status", model.NotifRead).Error
}

func (r *notificationRepo) DeleteByUser(userID uuid.UUID) error {
	return r.db.Delete(&model.Notification{}, "user_id = ?", userID).Error
}
