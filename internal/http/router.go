package httpserver

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"estatehub/internal/auth"
	"estatehub/internal/crm"
	"estatehub/internal/http/handlers"
	"estatehub/internal/models"
	"estatehub/internal/notify"
	"estatehub/internal/rbac"
	"estatehub/internal/store"
)

func NewRouter(db *gorm.DB, jwtSecret string) *gin.Engine {
	r := gin.Default()

	st := store.New(db)
	feed := notify.NewFeed()
	dispatcher := notify.NewDispatcher(db, log.With().Str("component", "notify").Logger(), feed)

	clients := crm.NewClients(st, dispatcher)
	files := crm.NewEstateFiles(st, dispatcher)
	tasks := crm.NewTasks(st, dispatcher)
	feedback := crm.NewFeedbacks(st, dispatcher)
	connections := crm.NewConnections(st, dispatcher)
	users := crm.NewUsers(st, dispatcher)
	watches := crm.NewWatches(st)
	notifications := crm.NewNotifications(st)

	// Public routes
	r.POST("/api/v1/auth/login", handlers.LoginHandler(db, jwtSecret))
	r.POST("/api/v1/auth/register", handlers.RegisterHandler(users))
	r.GET("/logout", handlers.LogoutHandler())

	authMW := auth.JWT(db, jwtSecret)

	api := r.Group("/api/v1", authMW)
	{
		api.GET("/me", handlers.MeHandler())

		// Clients
		api.GET("/clients", handlers.Require(rbac.Key("clients", "read")), handlers.ListClients(clients))
		api.POST("/clients", handlers.Require(rbac.Key("clients", "write")), handlers.CreateClient(clients, st))
		api.GET("/clients/:id", handlers.Require(rbac.Key("clients", "read")), handlers.GetClient(clients))
		api.PUT("/clients/:id", handlers.Require(rbac.Key("clients", "write")), handlers.UpdateClient(clients, st))
		api.DELETE("/clients/:id", handlers.Require(rbac.Key("clients", "write")), handlers.DeleteClient(clients, st))
		api.POST("/clients/:id/watch", handlers.WatchEntity(watches, st, models.EntityClient))
		api.DELETE("/clients/:id/watch", handlers.UnwatchEntity(watches, st, models.EntityClient))

		// Estate files
		api.GET("/files", handlers.Require(rbac.Key("files", "read")), handlers.ListEstateFiles(files))
		api.POST("/files", handlers.Require(rbac.Key("files", "write")), handlers.CreateEstateFile(files, st))
		api.GET("/files/:id", handlers.Require(rbac.Key("files", "read")), handlers.GetEstateFile(files))
		api.PUT("/files/:id", handlers.Require(rbac.Key("files", "write")), handlers.UpdateEstateFile(files, st))
		api.POST("/files/:id/status", handlers.Require(rbac.Key("files", "write")), handlers.UpdateEstateFileStatus(files, st))
		api.DELETE("/files/:id", handlers.Require(rbac.Key("files", "write")), handlers.DeleteEstateFile(files, st))
		api.POST("/files/:id/watch", handlers.WatchEntity(watches, st, models.EntityEstateFile))
		api.DELETE("/files/:id/watch", handlers.UnwatchEntity(watches, st, models.EntityEstateFile))

		// Sections and tasks
		api.GET("/files/:id/sections", handlers.Require(rbac.Key("tasks", "read")), handlers.ListSections(tasks))
		api.POST("/files/:id/sections", handlers.Require(rbac.Key("tasks", "write")), handlers.CreateSection(tasks, st))
		api.DELETE("/sections/:id", handlers.Require(rbac.Key("tasks", "write")), handlers.DeleteSection(tasks, st))
		api.GET("/sections/:id/tasks", handlers.Require(rbac.Key("tasks", "read")), handlers.ListTasks(tasks))
		api.POST("/sections/:id/tasks", handlers.Require(rbac.Key("tasks", "write")), handlers.CreateTask(tasks, st))
		api.POST("/tasks/:id/status", handlers.Require(rbac.Key("tasks", "write")), handlers.UpdateTaskStatus(tasks, st))
		api.DELETE("/tasks/:id", handlers.DeleteTask(tasks, st)) // ownership rule runs in the service
		api.GET("/tasks/:id/comments", handlers.Require(rbac.Key("tasks", "read")), handlers.ListComments(tasks))
		api.POST("/tasks/:id/comments", handlers.Require(rbac.Key("tasks", "write")), handlers.CreateComment(tasks, st))
		api.POST("/tasks/:id/watch", handlers.WatchEntity(watches, st, models.EntityTask))
		api.DELETE("/tasks/:id/watch", handlers.UnwatchEntity(watches, st, models.EntityTask))

		// Feedback
		api.GET("/feedback", handlers.Require(rbac.Key("feedback", "read")), handlers.ListFeedback(feedback))
		api.POST("/feedback", handlers.Require(rbac.Key("feedback", "write")), handlers.CreateFeedback(feedback, st))
		api.POST("/feedback/:id/resolve", handlers.Require(rbac.Key("feedback", "write")), handlers.ResolveFeedback(feedback, st))
		api.POST("/feedback/:id/watch", handlers.WatchEntity(watches, st, models.EntityFeedback))
		api.DELETE("/feedback/:id/watch", handlers.UnwatchEntity(watches, st, models.EntityFeedback))

		// Connections
		api.GET("/connections", handlers.Require(rbac.Key("connections", "manage")), handlers.ListConnections(connections))
		api.POST("/connections", handlers.Require(rbac.Key("connections", "manage")), handlers.RequestConnection(connections, st))
		api.POST("/connections/:id/accept", handlers.AcceptConnection(connections, st))
		api.POST("/connections/:id/reject", handlers.RejectConnection(connections, st))

		// Users (administration)
		api.GET("/users", handlers.Require(rbac.Key("users", "read")), handlers.ListUsers(users))
		api.POST("/users", handlers.RequireAdmin(), handlers.CreateUser(users, st))
		api.POST("/users/:id/activate", handlers.RequireAdmin(), handlers.ActivateUser(users, st))
		api.POST("/users/:id/deactivate", handlers.RequireAdmin(), handlers.DeactivateUser(users, st))
		api.POST("/users/:id/roles", handlers.RequireAdmin(), handlers.AssignRoles(users, st))
		api.POST("/users/sync", handlers.RequireAdmin(), handlers.SyncUser(users, st))
		api.POST("/users/invites", handlers.RequireAdmin(), handlers.CreateInvite(users, st))

		// Notifications
		api.GET("/notifications", handlers.ListNotifications(notifications))
		api.POST("/notifications/:id/read", handlers.MarkNotificationRead(notifications))
		api.GET("/ws/notifications", handlers.NotificationsWS(feed))

		// Audit trail
		api.GET("/audit", handlers.Require(rbac.Key("audit", "read")), handlers.ListAudit(db))
	}

	return r
}
