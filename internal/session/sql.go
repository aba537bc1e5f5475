package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hospital-portal/internal/models"
)

// SQLStore keeps sessions in the portal_sessions table.
type SQLStore struct {
	db     *gorm.DB
	maxAge time.Duration
	now    func() time.Time
}

// NewSQLStore creates a store. maxAge bounds sessions whose token has no expiry.
func NewSQLStore(db *gorm.DB, maxAge time.Duration) *SQLStore {
	return &SQLStore{db: db, maxAge: maxAge, now: time.Now}
}

func (s *SQLStore) Load(ctx context.Context, id string) (*Session, error) {
	var rec models.SessionRecord
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session: load: %w", err)
	}
	if !rec.ExpiresAt.IsZero() && rec.ExpiresAt.Before(s.now()) {
		if err := s.Delete(ctx, id); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", ErrExpired, id)
	}

	sess := &Session{ID: rec.ID, Token: rec.Token, CreatedAt: rec.CreatedAt}
	if err := json.Unmarshal([]byte(rec.UserData), &sess.User); err != nil {
		return nil, fmt.Errorf("session: decode user: %w", err)
	}
	return sess, nil
}

func (s *SQLStore) Save(ctx context.Context, sess *Session) error {
	user, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("session: encode user: %w", err)
	}

	created := sess.CreatedAt
	if created.IsZero() {
		created = s.now()
	}
	expires := created.Add(s.maxAge)
	if exp, err := sess.ExpiresAt(); err == nil && !exp.IsZero() {
		expires = exp
	}

	rec := models.SessionRecord{
		BaseModel: models.BaseModel{ID: sess.ID, CreatedAt: created},
		UserID:    sess.User.ID,
		Role:      sess.User.Role,
		UserData:  string(user),
		Token:     sess.Token,
		ExpiresAt: expires,
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("session: save: %w", err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.SessionRecord{}).Error; err != nil {
		return fmt.Errorf("session: delete: %w", err)
	}
	return nil
}

func (s *SQLStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&models.SessionRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("session: purge: %w", res.Error)
	}
	return res.RowsAffected, nil
}
