package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/quickremind/quickremind/internal/database"
	"github.com/quickremind/quickremind/internal/models"
)

type ReminderRepository struct {
	db *database.DB
}

func NewReminderRepository(db *database.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

const reminderColumns = `reminder_id, user_id, title, due_at, category, destination,
	 calendar_item_id, calendar_container_id, tasks_item_id, tasks_container_id, created_at`

// Upsert inserts the reminder or, when the id already exists, replaces every
// mutable column including the external back-references.
func (r *ReminderRepository) Upsert(ctx context.Context, reminder *models.Reminder) error {
	calItem, calContainer := refColumns(reminder.Calendar)
	taskItem, taskContainer := refColumns(reminder.Tasks)
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO reminders (reminder_id, user_id, title, due_at, category, destination,
		     calendar_item_id, calendar_container_id, tasks_item_id, tasks_container_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (reminder_id) DO UPDATE SET
		     title = EXCLUDED.title,
		     due_at = EXCLUDED.due_at,
		     category = EXCLUDED.category,
		     destination = EXCLUDED.destination,
		     calendar_item_id = EXCLUDED.calendar_item_id,
		     calendar_container_id = EXCLUDED.calendar_container_id,
		     tasks_item_id = EXCLUDED.tasks_item_id,
		     tasks_container_id = EXCLUDED.tasks_container_id`,
		reminder.ID, reminder.UserID, reminder.Title, reminder.Date, reminder.Category,
		string(reminder.Destination), calItem, calContainer, taskItem, taskContainer,
		reminder.CreatedAt,
	)
	return err
}

func (r *ReminderRepository) GetByID(ctx context.Context, id uuid.UUID, userID int64) (*models.Reminder, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT `+reminderColumns+` FROM reminders WHERE reminder_id = $1 AND user_id = $2`,
		id, userID,
	)
	return scanReminder(row)
}

func (r *ReminderRepository) GetByUserID(ctx context.Context, userID int64) ([]*models.Reminder, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+reminderColumns+` FROM reminders WHERE user_id = $1 ORDER BY due_at ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReminders(rows)
}

// GetAfter returns every reminder due after the given instant, across all
// users. A zero time returns everything.
func (r *ReminderRepository) GetAfter(ctx context.Context, after time.Time) ([]*models.Reminder, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+reminderColumns+` FROM reminders WHERE due_at > $1 ORDER BY due_at ASC`,
		after,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReminders(rows)
}

func (r *ReminderRepository) Delete(ctx context.Context, id uuid.UUID, userID int64) error {
	_, err := r.db.Pool.Exec(ctx,
		`DELETE FROM reminders WHERE reminder_id = $1 AND user_id = $2`,
		id, userID,
	)
	return err
}

// RenameCategory moves every reminder of the user from one category name to
// another.
func (r *ReminderRepository) RenameCategory(ctx context.Context, userID int64, from, to string) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE reminders SET category = $1 WHERE user_id = $2 AND category = $3`,
		to, userID, from,
	)
	return err
}

func refColumns(ref *models.BackRef) (item, container *string) {
	if ref == nil {
		return nil, nil
	}
	return &ref.ItemID, &ref.ContainerID
}

func refFromColumns(item, container *string) *models.BackRef {
	if item == nil || container == nil {
		return nil
	}
	return &models.BackRef{ItemID: *item, ContainerID: *container}
}

func scanReminder(row pgx.Row) (*models.Reminder, error) {
	reminder := &models.Reminder{}
	var dest string
	var calItem, calContainer, taskItem, taskContainer *string
	if err := row.Scan(&reminder.ID, &reminder.UserID, &reminder.Title, &reminder.Date,
		&reminder.Category, &dest, &calItem, &calContainer, &taskItem, &taskContainer,
		&reminder.CreatedAt); err != nil {
		return nil, err
	}
	reminder.Destination = models.ParseDestination(dest)
	reminder.Calendar = refFromColumns(calItem, calContainer)
	reminder.Tasks = refFromColumns(taskItem, taskContainer)
	return reminder, nil
}

func scanReminders(rows pgx.Rows) ([]*models.Reminder, error) {
	var reminders []*models.Reminder
	for rows.Next() {
		reminder, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, reminder)
	}
	return reminders, rows.Err()
}
