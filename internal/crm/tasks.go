package crm

import (
	"context"
	"strings"
	"time"

	"estatehub/internal/apperr"
	"estatehub/internal/auth"
	"estatehub/internal/models"
	"estatehub/internal/notify"
	"estatehub/internal/rbac"
	"estatehub/internal/store"
)

// Tasks covers sections, the tasks inside them, and task comments.
type Tasks struct {
	st    *store.Store
	notif *notify.Dispatcher
}

func NewTasks(st *store.Store, notif *notify.Dispatcher) *Tasks {
	return &Tasks{st: st, notif: notif}
}

type SectionInput struct {
	Title    string `json:"title"`
	Position int    `json:"position"`
}

type TaskInput struct {
	Title      string     `json:"title"`
	AssigneeID *int64     `json:"assignee_id"`
	DueAt      *time.Time `json:"due_at"`
}

func validTaskStatus(s models.TaskStatus) bool {
	switch s {
	case models.TaskOpen, models.TaskInProgress, models.TaskDone:
		return true
	}
	return false
}

func (s *Tasks) CreateSection(ctx context.Context, p auth.Principal, fileID int64, in SectionInput) (*models.Section, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.Validation("title", "required")
	}
	if d := rbac.Check(p, rbac.Key("tasks", "write")); !d.Allowed {
		return nil, apperr.Forbidden(d.Reason)
	}

	st := s.st.WithContext(ctx)
	if _, err := store.First[models.EstateFile](st, p.OrgID, fileID); err != nil {
		return nil, err
	}

	section := &models.Section{
		OrgID:    p.OrgID,
		FileID:   fileID,
		Title:    title,
		Position: in.Position,
	}
	if err := st.Create(section); err != nil {
		return nil, err
	}

	s.notif.Notify(ctx, notify.Event{
		OrgID:      p.OrgID,
		ActorID:    p.UserID,
		EntityType: models.EntityEstateFile,
		EntityID:   fileID,
		Type:       eventType(models.EntitySection, "created"),
		Title:      "Section added",
		Message:    title,
	})
	return section, nil
}

// DeleteSection removes the section, all of its tasks, those tasks' comments
// and watch rows, atomically. Watchers of the parent file are told once.
func (s *Tasks) DeleteSection(ctx context.Context, p auth.Principal, id int64) error {
	if d := rbac.Check(p, rbac.Key("tasks", "write")); !d.Allowed {
		return apperr.Forbidden(d.Reason)
	}

	st := s.st.WithContext(ctx)
	section, err := store.First[models.Section](st, p.OrgID, id)
	if err != nil {
		return err
	}

	err = st.Transaction(func(tx *store.Store) error {
		var taskIDs []int64
		if err := store.Pluck[models.Task](tx, p.OrgID, "id", &taskIDs, "section_id = ?", id); err != nil {
			return err
		}
		if len(taskIDs) > 0 {
			if err := store.DeleteWhere[models.Comment](tx, p.OrgID, "task_id IN ?", taskIDs); err != nil {
				return err
			}
			if err := store.DeleteWhere[models.Watch](tx, p.OrgID, "entity_type = ? AND entity_id IN ?", models.EntityTask, taskIDs); err != nil {
				return err
			}
			if err := store.DeleteWhere[models.Task](tx, p.OrgID, "id IN ?", taskIDs); err != nil {
				return err
			}
		}
		return store.Delete[models.Section](tx, p.OrgID, id)
	})
	if err != nil {
		return err
	}

	s.notif.Notify(ctx, notify.Event{
		OrgID:      p.OrgID,
		ActorID:    p.UserID,
		EntityType: models.EntityEstateFile,
		EntityID:   section.FileID,
		Type:       eventType(models.EntitySection, "deleted"),
		Title:      "Section removed",
		Message:    section.Title,
	})
	return nil
}

func (s *Tasks) CreateTask(ctx context.Context, p auth.Principal, sectionID int64, in TaskInput) (*models.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.Validation("title", "required")
	}
	if d := rbac.Check(p, rbac.Key("tasks", "write")); !d.Allowed {
		return nil, apperr.Forbidden(d.Reason)
	}

	st := s.st.WithContext(ctx)
	section, err := store.First[models.Section](st, p.OrgID, sectionID)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		OrgID:      p.OrgID,
		SectionID:  sectionID,
		CreatorID:  p.UserID,
		AssigneeID: in.AssigneeID,
		Title:      title,
		Status:     models.TaskOpen,
		DueAt:      in.DueAt,
	}
	if err := st.Create(task); err != nil {
		return nil, err
	}

	s.notif.Notify(ctx, notify.Event{
		OrgID:      p.OrgID,
		ActorID:    p.UserID,
		EntityType: models.EntityEstateFile,
		EntityID:   section.FileID,
		Type:       eventType(models.EntityTask, "created"),
		Title:      "Task added",
		Message:    title,
	})
	return task, nil
}

// UpdateStatus transitions the task. Setting the current status again is an
// accepted no-op.
func (s *Tasks) UpdateStatus(ctx context.Context, p auth.Principal, id int64, status string) (*models.Task, error) {
	next := models.TaskStatus(status)
	if !validTaskStatus(next) {
		return nil, apperr.Validation("status", "unknown value")
	}
	if d := rbac.Check(p, rbac.Key("tasks", "write")); !d.Allowed {
		return nil, apperr.Forbidden(d.Reason)
	}

	st := s.st.WithContext(ctx)
	task, err := store.First[models.Task](st, p.OrgID, id)
	if err != nil {
		return nil, err
	}
	if task.Status == next {
		return task, nil
	}

	prev := task.Status
	if err := store.Update[models.Task](st, p.OrgID, id, map[string]any{"status": next}); err != nil {
		return nil, err
	}
	task.Status = next

	s.notif.Notify(ctx, notify.Event{
		OrgID:      p.OrgID,
		ActorID:    p.UserID,
		EntityType: models.EntityTask,
		EntityID:   id,
		Type:       eventType(models.EntityTask, "status_changed"),
		Title:      "Task status changed",
		Message:    task.Title,
		Metadata:   map[string]any{"from": prev, "to": next},
	})
	return task, nil
}

// DeleteTask is ownership-scoped: non-admins need tasks:delete and must have
// created the task themselves.
func (s *Tasks) DeleteTask(ctx context.Context, p auth.Principal, id int64) error {
	st := s.st.WithContext(ctx)
	task, err := store.First[models.Task](st, p.OrgID, id)
	if err != nil {
		return err
	}
	if d := rbac.CheckOwned(p, rbac.Key("tasks", "delete"), task.CreatorID); !d.Allowed {
		return apperr.Forbidden(d.Reason)
	}

	var recipients []int64
	err = st.Transaction(func(tx *store.Store) error {
		var err error
		recipients, err = tx.Watchers(p.OrgID, models.EntityTask, id)
		if err != nil {
			return err
		}
		if err := store.DeleteWhere[models.Comment](tx, p.OrgID, "task_id = ?", id); err != nil {
			return err
		}
		if err := tx.ClearWatches(p.OrgID, models.EntityTask, id); err != nil {
			return err
		}
		return store.Delete[models.Task](tx, p.OrgID, id)
	})
	if err != nil {
		return err
	}

	s.notif.NotifyUsers(ctx, recipients, notify.Event{
		OrgID:      p.OrgID,
		ActorID:    p.UserID,
		EntityType: models.EntityTask,
		EntityID:   id,
		Type:       eventType(models.EntityTask, "deleted"),
		Title:      "Task removed",
		Message:    task.Title,
	})
	return nil
}

func (s *Tasks) CreateComment(ctx context.Context, p auth.Principal, taskID int64, body string) (*models.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperr.Validation("body", "required")
	}
	if d := rbac.Check(p, rbac.Key("tasks", "write")); !d.Allowed {
		return nil, apperr.Forbidden(d.Reason)
	}

	st := s.st.WithContext(ctx)
	task, err := store.First[models.Task](st, p.OrgID, taskID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		OrgID:    p.OrgID,
		TaskID:   taskID,
		AuthorID: p.UserID,
		Body:     body,
	}
	if err := st.Create(comment); err != nil {
		return nil, err
	}

	s.notif.Notify(ctx, notify.Event{
		OrgID:      p.OrgID,
		ActorID:    p.UserID,
		EntityType: models.EntityTask,
		EntityID:   taskID,
		Type:       eventType(models.EntityTask, "commented"),
		Title:      "New comment",
		Message:    task.Title,
	})
	return comment, nil
}

func (s *Tasks) ListSections(ctx context.Context, p auth.Principal, fileID int64) ([]models.Section, error) {
	if d := rbac.Check(p, rbac.Key("tasks", "read")); !d.Allowed {
		return nil, apperr.Forbidden(d.Reason)
	}
	return store.List[models.Section](s.st.WithContext(ctx), p.OrgID, "file_id = ?", fileID)
}

func (s *Tasks) ListTasks(ctx context.Context, p auth.Principal, sectionID int64) ([]models.Task, error) {
	if d := rbac.Check(p, rbac.Key("tasks", "read")); !d.Allowed {
		return nil, apperr.Forbidden(d.Reason)
	}
	return store.List[models.Task](s.st.WithContext(ctx), p.OrgID, "section_id = ?", sectionID)
}

func (s *Tasks) ListComments(ctx context.Context, p auth.Principal, taskID int64) ([]models.Comment, error) {
	if d := rbac.Check(p, rbac.Key("tasks", "read")); !d.Allowed {
		return nil, apperr.Forbidden(d.Reason)
	}
	return store.List[models.Comment](s.st.WithContext(ctx), p.OrgID, "task_id = ?", taskID)
}
