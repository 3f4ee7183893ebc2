package store

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"estatehub/internal/apperr"
	"estatehub/internal/models"
)

// Store is the tenant-scoped data accessor. Every read and write takes the
// organization id and injects it into the query predicate; there is no
// unscoped variant for tenant data, so a caller cannot forget the filter.
// A row id from another organization comes back as not-found, never as an
// existence leak.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// WithContext binds the request context to the underlying session.
func (s *Store) WithContext(ctx context.Context) *Store {
	return &Store{db: s.db.WithContext(ctx)}
}

// Transaction runs fn against a transactional store. Any error rolls the
// whole unit back; cascade deletes rely on this.
func (s *Store) Transaction(fn func(tx *Store) error) error {
	return s.db.Transaction(func(txdb *gorm.DB) error {
		return fn(&Store{db: txdb})
	})
}

// First loads one row by id within the organization.
func First[T any](s *Store, orgID, id int64) (*T, error) {
	var out T
	err := s.db.Where("org_id = ? AND id = ?", orgID, id).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &out, nil
}

// List loads rows within the organization, with an optional extra predicate.
func List[T any](s *Store, orgID int64, conds ...any) ([]T, error) {
	q := s.db.Where("org_id = ?", orgID).Order("id")
	if len(conds) > 0 {
		q = q.Where(conds[0], conds[1:]...)
	}
	var out []T
	if err := q.Find(&out).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

// Count counts rows within the organization matching the predicate.
func Count[T any](s *Store, orgID int64, conds ...any) (int64, error) {
	q := s.db.Model(new(T)).Where("org_id = ?", orgID)
	if len(conds) > 0 {
		q = q.Where(conds[0], conds[1:]...)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, apperr.Internal(err)
	}
	return n, nil
}

// Create inserts a row. The caller sets OrgID from the principal before the
// call; org id is immutable after creation.
func (s *Store) Create(v any) error {
	if err := s.db.Create(v).Error; err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// Update applies fields to one row by id within the organization. A missing
// or foreign row is not-found.
func Update[T any](s *Store, orgID, id int64, fields map[string]any) error {
	res := s.db.Model(new(T)).Where("org_id = ? AND id = ?", orgID, id).Updates(fields)
	if res.Error != nil {
		return apperr.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// UpdateIf applies fields to one row by id within the organization, but only
// while the extra condition still holds. Returns the number of rows touched
// so callers can tell an entity that moved on from one that is gone.
func UpdateIf[T any](s *Store, orgID, id int64, fields map[string]any, cond string, args ...any) (int64, error) {
	res := s.db.Model(new(T)).
		Where("org_id = ? AND id = ?", orgID, id).
		Where(cond, args...).
		Updates(fields)
	if res.Error != nil {
		return 0, apperr.Internal(res.Error)
	}
	return res.RowsAffected, nil
}

// Delete removes one row by id within the organization.
func Delete[T any](s *Store, orgID, id int64) error {
	res := s.db.Where("org_id = ? AND id = ?", orgID, id).Delete(new(T))
	if res.Error != nil {
		return apperr.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// DeleteWhere removes all rows matching the predicate within the
// organization. Zero rows is fine; dependents may simply not exist.
func DeleteWhere[T any](s *Store, orgID int64, query string, args ...any) error {
	q := s.db.Where("org_id = ?", orgID).Where(query, args...)
	if err := q.Delete(new(T)).Error; err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// Pluck collects one column within the organization.
func Pluck[T any](s *Store, orgID int64, column string, dest *[]int64, conds ...any) error {
	q := s.db.Model(new(T)).Where("org_id = ?", orgID)
	if len(conds) > 0 {
		q = q.Where(conds[0], conds[1:]...)
	}
	if err := q.Pluck(column, dest).Error; err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// FindInvite looks an invite up by its opaque token. This is the one
// deliberate cross-tenant lookup: redemption happens before any principal
// exists, and the token itself is the secret.
func (s *Store) FindInvite(token string, out *models.InviteToken) error {
	err := s.db.Where("token = ?", token).First(out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.ErrNotFound
	}
	if err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// Audit writes an audit row best-effort. Audit failures are logged and never
// fail the mutation they describe.
func (s *Store) Audit(entry *models.AuditLog) {
	if err := s.db.Create(entry).Error; err != nil {
		log.Error().Err(err).Str("action", entry.Action).Msg("audit write failed")
	}
}
