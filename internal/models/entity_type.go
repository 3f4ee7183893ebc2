package models

// EntityType names a watchable or notifiable entity kind. The string values
// are stored in watch and notification rows and appear in event type names.
type EntityType string

const (
	EntityClient     EntityType = "client"
	EntityEstateFile EntityType = "estate_file"
	EntitySection    EntityType = "section"
	EntityTask       EntityType = "task"
	EntityFeedback   EntityType = "feedback"
	EntityConnection EntityType = "connection"
	EntityUser       EntityType = "user"
)
