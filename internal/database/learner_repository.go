package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/tutorcore/internal/store"
	"github.com/example/tutorcore/pkg/models"
)

var (
	ErrLearnerNotFound = errors.New("database: learner not found")
	ErrInvalidHour     = errors.New("database: notification hour must be 0-23")
)

const learnerColumns = `id, chat_id, course_name, notification_enabled, notification_hour, created_at, updated_at`

// LearnerRepository handles reminder subscriptions
type LearnerRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// Create subscribes a chat to a course, or updates the existing
// subscription. l is refreshed from the stored row.
func (r *LearnerRepository) Create(ctx context.Context, l *models.Learner) error {
	if err := store.CheckCourseName(l.Course); err != nil {
		return err
	}
	if err := checkHour(l.NotificationHour); err != nil {
		return err
	}

	now := r.now().UTC()
	query := r.db.Rebind(`
		INSERT INTO learners (
			chat_id, course_name, notification_enabled, notification_hour, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (chat_id, course_name) DO UPDATE SET
			notification_enabled = excluded.notification_enabled,
			notification_hour = excluded.notification_hour,
			updated_at = excluded.updated_at
	`)
	_, err := r.db.ExecContext(ctx, query,
		l.ChatID,
		l.Course,
		l.NotificationEnabled,
		l.NotificationHour,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create learner: %w", err)
	}

	stored, err := r.Get(ctx, l.ChatID, l.Course)
	if err != nil {
		return err
	}
	*l = stored
	return nil
}

// Get returns the subscription of chatID to course
func (r *LearnerRepository) Get(ctx context.Context, chatID int64, course string) (models.Learner, error) {
	var l models.Learner
	query := r.db.Rebind("SELECT " + learnerColumns + " FROM learners WHERE chat_id = ? AND course_name = ?")
	err := r.db.GetContext(ctx, &l, query, chatID, course)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Learner{}, fmt.Errorf("%w: chat %d, course %s", ErrLearnerNotFound, chatID, course)
	}
	if err != nil {
		return models.Learner{}, fmt.Errorf("failed to get learner: %w", err)
	}
	return l, nil
}

// GetLearnersForNotification returns enabled subscriptions for hour
func (r *LearnerRepository) GetLearnersForNotification(ctx context.Context, hour int) ([]models.Learner, error) {
	query := r.db.Rebind("SELECT " + learnerColumns + " FROM learners WHERE notification_enabled = ? AND notification_hour = ? ORDER BY id")
	var learners []models.Learner
	if err := r.db.SelectContext(ctx, &learners, query, true, hour); err != nil {
		return nil, fmt.Errorf("failed to get learners for notification: %w", err)
	}
	return learners, nil
}

// SetNotification changes the reminder settings of a subscription
func (r *LearnerRepository) SetNotification(ctx context.Context, chatID int64, course string, enabled bool, hour int) error {
	if err := checkHour(hour); err != nil {
		return err
	}
	query := r.db.Rebind(`
		UPDATE learners SET
			notification_enabled = ?,
			notification_hour = ?,
			updated_at = ?
		WHERE chat_id = ? AND course_name = ?
	`)
	res, err := r.db.ExecContext(ctx, query, enabled, hour, r.now().UTC(), chatID, course)
	if err != nil {
		return fmt.Errorf("failed to update learner: %w", err)
	}
	return expectRow(res, chatID, course)
}

// Delete removes a subscription
func (r *LearnerRepository) Delete(ctx context.Context, chatID int64, course string) error {
	query := r.db.Rebind("DELETE FROM learners WHERE chat_id = ? AND course_name = ?")
	res, err := r.db.ExecContext(ctx, query, chatID, course)
	if err != nil {
		return fmt.Errorf("failed to delete learner: %w", err)
	}
	return expectRow(res, chatID, course)
}

func expectRow(res sql.Result, chatID int64, course string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: chat %d, course %s", ErrLearnerNotFound, chatID, course)
	}
	return nil
}

func checkHour(h int) error {
	if h < 0 || h > 23 {
		return fmt.Errorf("%w: %d", ErrInvalidHour, h)
	}
	return nil
}
