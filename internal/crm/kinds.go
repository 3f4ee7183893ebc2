package crm

import (
	"estatehub/internal/models"
	"estatehub/internal/store"
)

// kindSpec declares, per entity kind, the permission resource it falls
// under, whether it can be watched, and how to probe for its existence
// inside an organization. Services dispatch through this table instead of
// inspecting types at runtime.
type kindSpec struct {
	resource  string
	watchable bool
	exists    func(s *store.Store, orgID, id int64) error
}

func existsIn[T any]() func(*store.Store, int64, int64) error {
	return func(s *store.Store, orgID, id int64) error {
		_, err := store.First[T](s, orgID, id)
		return err
	}
}

var kinds = map[models.EntityType]kindSpec{
	models.EntityClient:     {resource: "clients", watchable: true, exists: existsIn[models.Client]()},
	models.EntityEstateFile: {resource: "files", watchable: true, exists: existsIn[models.EstateFile]()},
	models.EntitySection:    {resource: "tasks", watchable: false, exists: existsIn[models.Section]()},
	models.EntityTask:       {resource: "tasks", watchable: true, exists: existsIn[models.Task]()},
	models.EntityFeedback:   {resource: "feedback", watchable: true, exists: existsIn[models.Feedback]()},
	models.EntityConnection: {resource: "connections", watchable: false, exists: existsIn[models.Connection]()},
	models.EntityUser:       {resource: "users", watchable: false, exists: existsIn[models.User]()},
}

// eventType names a notification like "client.deleted".
func eventType(et models.EntityType, verb string) string {
	return string(et) + "." + verb
}
