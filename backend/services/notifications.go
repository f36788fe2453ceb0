package services

import (
	"context"

	"coursehub/backend/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Notify appends one entry to a user's notification feed. Pass a transaction
// as db to make the notification part of a larger write.
func Notify(ctx context.Context, db *gorm.DB, userID uint, message, kind string) (*models.Notification, error) {
	if kind == "" {
		kind = models.NotificationInfo
	}
	n := &models.Notification{
		UserID:  userID,
		Message: message,
		Type:    kind,
	}
	if err := db.WithContext(ctx).Create(n).Error; err != nil {
		return nil, errors.Wrap(err, "create notification")
	}
	return n, nil
}
