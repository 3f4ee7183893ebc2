package notify

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"estatehub/internal/models"
)

// Event describes one entity change worth telling watchers about.
type Event struct {
	OrgID      int64
	ActorID    int64
	EntityType models.EntityType
	EntityID   int64
	Type       string
	Title      string
	Message    string
	Metadata   map[string]any
}

// Dispatcher fans an event out to the entity's watchers, one Notification
// row per recipient. It is strictly best-effort: it runs only after the
// triggering mutation committed, and no failure escapes its boundary.
type Dispatcher struct {
	db   *gorm.DB
	log  zerolog.Logger
	feed *Feed
}

func NewDispatcher(db *gorm.DB, log zerolog.Logger, feed *Feed) *Dispatcher {
	return &Dispatcher{db: db, log: log, feed: feed}
}

// Notify resolves the entity's watcher set at call time and delivers to
// everyone except the actor.
func (d *Dispatcher) Notify(ctx context.Context, ev Event) {
	defer d.absorb(ev)

	var recipients []int64
	err := d.db.WithContext(ctx).Model(&models.Watch{}).
		Where("org_id = ? AND entity_type = ? AND entity_id = ?", ev.OrgID, ev.EntityType, ev.EntityID).
		Pluck("user_id", &recipients).Error
	if err != nil {
		d.log.Error().Err(err).
			Str("entity_type", string(ev.EntityType)).
			Int64("entity_id", ev.EntityID).
			Msg("watcher resolution failed")
		return
	}

	d.deliver(ctx, recipients, ev)
}

// NotifyUsers delivers to an explicit recipient set. Delete flows use this:
// the service captures the watchers inside the delete transaction, before
// the watch rows go away.
func (d *Dispatcher) NotifyUsers(ctx context.Context, recipients []int64, ev Event) {
	defer d.absorb(ev)
	d.deliver(ctx, recipients, ev)
}

func (d *Dispatcher) deliver(ctx context.Context, recipients []int64, ev Event) {
	var meta datatypes.JSON
	if len(ev.Metadata) > 0 {
		if b, err := json.Marshal(ev.Metadata); err == nil {
			meta = datatypes.JSON(b)
		}
	}

	for _, uid := range recipients {
		if uid == ev.ActorID {
			continue
		}
		n := models.Notification{
			OrgID:       ev.OrgID,
			RecipientID: uid,
			Type:        ev.Type,
			Title:       ev.Title,
			Message:     ev.Message,
			EntityType:  ev.EntityType,
			EntityID:    ev.EntityID,
			Metadata:    meta,
		}
		if err := d.db.WithContext(ctx).Create(&n).Error; err != nil {
			d.log.Error().Err(err).
				Int64("recipient", uid).
				Str("type", ev.Type).
				Msg("notification create failed")
			continue
		}
		if d.feed != nil {
			d.feed.Push(uid, &n)
		}
	}
}

// absorb keeps any panic from the dispatch path out of the caller; a
// secondary concern must never fail a primary mutation.
func (d *Dispatcher) absorb(ev Event) {
	if r := recover(); r != nil {
		d.log.Error().
			Interface("panic", r).
			Str("type", ev.Type).
			Msg("notification dispatch panicked")
	}
}
