package mysql

import (
	"context"

	"gorm.io/gorm"

	notifDomain "lendflow-backend/internal/domain/notification"
)

type NotificationRepository struct{ db *gorm.DB }

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *notifDomain.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *NotificationRepository) ListByUserID(ctx context.Context, userID string, unreadOnly bool) ([]notifDomain.Notification, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("`read` = ?", false)
	}
	var out []notifDomain.Notification
	res := q.Order("created_at DESC, id DESC").Find(&out)
	return out, res.Error
}

func (r *NotificationRepository) MarkRead(ctx context.Context, userID string, id uint64) error {
	res := r.db.WithContext(ctx).
		Model(&notifDomain.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
