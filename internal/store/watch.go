package store

import (
	"estatehub/internal/apperr"
	"estatehub/internal/models"
)

// Watch subscribes a user to an entity. Re-watching is a no-op success; the
// unique (entity_type, entity_id, user_id) index backs this up under
// concurrent calls.
func (s *Store) Watch(orgID int64, et models.EntityType, entityID, userID int64) error {
	w := models.Watch{OrgID: orgID, EntityType: et, EntityID: entityID, UserID: userID}
	err := s.db.
		Where("org_id = ? AND entity_type = ? AND entity_id = ? AND user_id = ?", orgID, et, entityID, userID).
		FirstOrCreate(&w).Error
	if err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// Unwatch removes a subscription. Removing an absent watcher is a no-op
// success.
func (s *Store) Unwatch(orgID int64, et models.EntityType, entityID, userID int64) error {
	err := s.db.
		Where("org_id = ? AND entity_type = ? AND entity_id = ? AND user_id = ?", orgID, et, entityID, userID).
		Delete(&models.Watch{}).Error
	if err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// Watchers returns the current watcher set of one entity.
func (s *Store) Watchers(orgID int64, et models.EntityType, entityID int64) ([]int64, error) {
	var ids []int64
	err := s.db.Model(&models.Watch{}).
		Where("org_id = ? AND entity_type = ? AND entity_id = ?", orgID, et, entityID).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return ids, nil
}

// ClearWatches drops all subscriptions of one entity (used inside delete
// transactions).
func (s *Store) ClearWatches(orgID int64, et models.EntityType, entityID int64) error {
	err := s.db.
		Where("org_id = ? AND entity_type = ? AND entity_id = ?", orgID, et, entityID).
		Delete(&models.Watch{}).Error
	if err != nil {
		return apperr.Internal(err)
	}
	return nil
}
