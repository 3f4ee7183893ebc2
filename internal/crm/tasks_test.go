package crm_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estatehub/internal/apperr"
	"estatehub/internal/auth"
	"estatehub/internal/crm"
	"estatehub/internal/models"
	"estatehub/internal/rbac"
	"estatehub/internal/store"
	"estatehub/internal/testutil"
)

// buildBoard seeds one estate file with one section and two tasks, each task
// carrying a comment, and returns the pieces.
func buildBoard(t *testing.T, f *fixture, p auth.Principal) (*models.EstateFile, *models.Section, []*models.Task) {
	t.Helper()
	ctx := context.Background()

	file, err := f.files.Create(ctx, p, crm.EstateFileInput{Address: "12 Harbor Lane"})
	require.NoError(t, err)

	section, err := f.tasks.CreateSection(ctx, p, file.ID, crm.SectionInput{Title: "Listing prep"})
	require.NoError(t, err)

	var tasks []*models.Task
	for _, title := range []string{"Order photos", "Schedule staging"} {
		task, err := f.tasks.CreateTask(ctx, p, section.ID, crm.TaskInput{Title: title})
		require.NoError(t, err)
		_, err = f.tasks.CreateComment(ctx, p, task.ID, "on it")
		require.NoError(t, err)
		tasks = append(tasks, task)
	}
	return file, section, tasks
}

func TestDeleteSectionCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := testutil.Principal(1, 1, false, "files:read", "files:write", "tasks:read", "tasks:write")

	_, section, tasks := buildBoard(t, f, p)

	// a watcher on one of the tasks; its row must go too
	watcher := testutil.Principal(5, 1, false, "tasks:read")
	require.NoError(t, f.watches.Watch(ctx, watcher, models.EntityTask, tasks[0].ID))

	require.NoError(t, f.tasks.DeleteSection(ctx, p, section.ID))

	remaining, err := store.List[models.Task](f.st, 1, "section_id = ?", section.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	comments, err := store.List[models.Comment](f.st, 1)
	require.NoError(t, err)
	assert.Empty(t, comments)

	ids, err := f.st.Watchers(1, models.EntityTask, tasks[0].ID)
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = store.First[models.Section](f.st, 1, section.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeleteTaskOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	creator := testutil.Principal(1, 1, false, "files:write", "tasks:write", "tasks:delete")
	other := testutil.Principal(2, 1, false, "tasks:delete")
	powerless := testutil.Principal(3, 1, false)
	admin := testutil.Principal(4, 1, true)

	_, _, tasks := buildBoard(t, f, creator)

	var pe *apperr.PermissionError

	err := f.tasks.DeleteTask(ctx, other, tasks[0].ID)
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, rbac.ReasonNotOwner, pe.Reason)

	err = f.tasks.DeleteTask(ctx, powerless, tasks[0].ID)
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, rbac.ReasonMissingPermission, pe.Reason)

	// denied deletes leave the row in place
	_, err = store.First[models.Task](f.st, 1, tasks[0].ID)
	require.NoError(t, err)

	require.NoError(t, f.tasks.DeleteTask(ctx, creator, tasks[0].ID))
	require.NoError(t, f.tasks.DeleteTask(ctx, admin, tasks[1].ID))

	left, err := store.Count[models.Task](f.st, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 0, left)
}

func TestTaskStatusTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := testutil.Principal(1, 1, false, "files:write", "tasks:read", "tasks:write")

	_, _, tasks := buildBoard(t, f, p)
	task := tasks[0]

	_, err := f.tasks.UpdateStatus(ctx, p, task.ID, "nonsense")
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "status", ve.Field)

	updated, err := f.tasks.UpdateStatus(ctx, p, task.ID, string(models.TaskDone))
	require.NoError(t, err)
	assert.Equal(t, models.TaskDone, updated.Status)

	// same status again is an accepted no-op
	again, err := f.tasks.UpdateStatus(ctx, p, task.ID, string(models.TaskDone))
	require.NoError(t, err)
	assert.Equal(t, models.TaskDone, again.Status)
}

func TestEstateFileDeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := testutil.Principal(1, 1, false, "files:read", "files:write", "tasks:write", "feedback:write")

	file, section, _ := buildBoard(t, f, p)

	fb, err := crm.NewFeedbacks(f.st, f.dispat).Create(ctx, p, crm.FeedbackInput{FileID: file.ID, Rating: 4, Body: "bright rooms"})
	require.NoError(t, err)

	require.NoError(t, f.files.Delete(ctx, p, file.ID))

	for _, probe := range []struct {
		name  string
		check func() error
	}{
		{"file", func() error { _, err := store.First[models.EstateFile](f.st, 1, file.ID); return err }},
		{"section", func() error { _, err := store.First[models.Section](f.st, 1, section.ID); return err }},
		{"feedback", func() error { _, err := store.First[models.Feedback](f.st, 1, fb.ID); return err }},
	} {
		assert.ErrorIs(t, probe.check(), apperr.ErrNotFound, probe.name)
	}

	tasksLeft, err := store.Count[models.Task](f.st, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 0, tasksLeft)

	commentsLeft, err := store.Count[models.Comment](f.st, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 0, commentsLeft)
}
