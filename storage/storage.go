package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/huiyuanXP/time-block-scheduler/domain"
)

// Sentinel errors surfaced to the API layer.
var (
	// ErrNotFound indicates an update or read matched no row owned by the
	// requesting user.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateUsername indicates a registration collided with an
	// existing username.
	ErrDuplicateUsername = errors.New("username already exists")
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT UNIQUE NOT NULL,
	password_hash TEXT NOT NULL,
	current_task_name TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS tasks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	date TEXT NOT NULL,
	progress INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL DEFAULT (datetime('now')),
	FOREIGN KEY (user_id) REFERENCES users (id)
);

CREATE TABLE IF NOT EXISTS time_stickers (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	content TEXT NOT NULL DEFAULT '',
	week_start TEXT NOT NULL,
	is_expired INTEGER NOT NULL DEFAULT 0,
	position_type TEXT NOT NULL CHECK(position_type IN ('pending', 'scheduled')) DEFAULT 'pending',
	scheduled_date TEXT,
	scheduled_time TEXT,
	view_type TEXT CHECK(view_type IN ('week', 'day')),
	created_at TEXT NOT NULL DEFAULT (datetime('now')),
	FOREIGN KEY (user_id) REFERENCES users (id)
);

CREATE INDEX IF NOT EXISTS idx_tasks_user_date ON tasks(user_id, date);
CREATE INDEX IF NOT EXISTS idx_stickers_user_week ON time_stickers(user_id, week_start);
CREATE INDEX IF NOT EXISTS idx_stickers_scheduled ON time_stickers(position_type, scheduled_date);
`

// Storage persists users, tasks and time stickers in a sqlite database.
type Storage struct {
	db *sql.DB
}

// Open opens (creating if necessary) the sqlite database at path and
// bootstraps the schema.
func Open(path string) (*Storage, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")
	_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", (5 * time.Second).Milliseconds()))

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Storage{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateUser inserts a new account and returns its identifier.
func (s *Storage) CreateUser(ctx context.Context, username, passwordHash string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash) VALUES (?, ?)`,
		username, passwordHash,
	)
	if err != nil {
		// modernc.org/sqlite surfaces constraint violations as flat strings.
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return 0, ErrDuplicateUsername
		}
		return 0, err
	}
	return res.LastInsertId()
}

// UserByUsername fetches an account by its unique username.
func (s *Storage) UserByUsername(ctx context.Context, username string) (domain.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, current_task_name FROM users WHERE username = ?`,
		username,
	))
}

// UserByID fetches an account by identifier.
func (s *Storage) UserByID(ctx context.Context, id int64) (domain.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, current_task_name FROM users WHERE id = ?`,
		id,
	))
}

func (s *Storage) scanUser(row *sql.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CurrentTaskName)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, ErrNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// AllUsers returns every account ordered by username.
func (s *Storage) AllUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, username, password_hash, current_task_name FROM users ORDER BY username`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CurrentTaskName); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// SetTaskName updates the user's current task name label.
func (s *Storage) SetTaskName(ctx context.Context, userID int64, name string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET current_task_name = ? WHERE id = ?`,
		name, userID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// CreateTask inserts a dated task and returns its identifier.
func (s *Storage) CreateTask(ctx context.Context, t domain.Task) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (user_id, title, description, date) VALUES (?, ?, ?, ?)`,
		t.UserID, t.Title, t.Description, t.Date,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// TasksForRange returns the user's tasks with date in [start, end) ordered by
// date.
func (s *Storage) TasksForRange(ctx context.Context, userID int64, start, end string) ([]domain.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, title, description, date, progress
		 FROM tasks
		 WHERE user_id = ? AND date >= ? AND date < ?
		 ORDER BY date, id`,
		userID, start, end,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Date, &t.Progress); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// UpdateTaskProgress writes a (pre-clamped) progress value for the user's
// task. Returns ErrNotFound when the task is absent or owned by someone else.
func (s *Storage) UpdateTaskProgress(ctx context.Context, userID, taskID int64, progress int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET progress = ? WHERE id = ? AND user_id = ?`,
		progress, taskID, userID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// CreateStickerBatch creates count pending stickers for (user, weekStart)
// unless any sticker already exists for that pair. The batch is inserted in a
// single transaction so a failure leaves no half-populated week. It reports
// whether stickers were created.
func (s *Storage) CreateStickerBatch(ctx context.Context, userID int64, weekStart string, count int) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var existing int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM time_stickers WHERE user_id = ? AND week_start = ?`,
		userID, weekStart,
	).Scan(&existing)
	if err != nil {
		return false, err
	}
	if existing > 0 {
		return false, nil
	}

	for i := 0; i < count; i++ {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO time_stickers (user_id, week_start) VALUES (?, ?)`,
			userID, weekStart,
		); err != nil {
			return false, err
		}
	}
	return true, tx.Commit()
}

const stickerColumns = `id, user_id, content, week_start, is_expired, position_type,
	scheduled_date, scheduled_time, view_type`

// Stickers lists the user's stickers. With weekStart set the result is that
// week's stickers in creation order; otherwise all weeks, newest week first.
func (s *Storage) Stickers(ctx context.Context, userID int64, weekStart string) ([]domain.Sticker, error) {
	var rows *sql.Rows
	var err error
	if weekStart != "" {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+stickerColumns+` FROM time_stickers
			 WHERE user_id = ? AND week_start = ?
			 ORDER BY id`,
			userID, weekStart,
		)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+stickerColumns+` FROM time_stickers
			 WHERE user_id = ?
			 ORDER BY week_start DESC, id`,
			userID,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stickers := []domain.Sticker{}
	for rows.Next() {
		st, err := scanSticker(rows)
		if err != nil {
			return nil, err
		}
		stickers = append(stickers, st)
	}
	return stickers, rows.Err()
}

func scanSticker(rows *sql.Rows) (domain.Sticker, error) {
	var st domain.Sticker
	var date, clock, view sql.NullString
	err := rows.Scan(&st.ID, &st.UserID, &st.Content, &st.WeekStart, &st.IsExpired,
		&st.PositionType, &date, &clock, &view)
	if err != nil {
		return domain.Sticker{}, err
	}
	if date.Valid {
		st.ScheduledDate = &date.String
	}
	if clock.Valid {
		st.ScheduledTime = &clock.String
	}
	if view.Valid {
		st.ViewType = &view.String
	}
	return st, nil
}

// UpdateSticker applies the present fields of upd to the user's sticker.
// Moving the sticker back to pending also nulls its scheduled date and time.
// Returns ErrNotFound when the sticker is absent or owned by someone else.
func (s *Storage) UpdateSticker(ctx context.Context, userID, stickerID int64, upd domain.StickerUpdate) error {
	if upd.Empty() {
		return nil
	}

	set := make([]string, 0, 6)
	args := make([]any, 0, 8)
	if upd.Content != nil {
		set = append(set, "content = ?")
		args = append(args, *upd.Content)
	}
	if upd.PositionType != nil {
		set = append(set, "position_type = ?")
		args = append(args, *upd.PositionType)
	}
	if upd.ClearsPlacement() {
		set = append(set, "scheduled_date = NULL", "scheduled_time = NULL")
	} else {
		if upd.ScheduledDate != nil {
			set = append(set, "scheduled_date = ?")
			args = append(args, *upd.ScheduledDate)
		}
		if upd.ScheduledTime != nil {
			set = append(set, "scheduled_time = ?")
			args = append(args, *upd.ScheduledTime)
		}
	}
	if upd.ViewType != nil {
		set = append(set, "view_type = ?")
		args = append(args, *upd.ViewType)
	}
	if upd.IsExpired != nil {
		set = append(set, "is_expired = ?")
		args = append(args, *upd.IsExpired)
	}

	args = append(args, stickerID, userID)
	res, err := s.db.ExecContext(ctx,
		`UPDATE time_stickers SET `+strings.Join(set, ", ")+` WHERE id = ? AND user_id = ?`,
		args...,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// SharedStickers returns all users' scheduled stickers annotated with owner
// username and task name. With weekStart set the result is filtered to that
// week and ordered by username then creation; otherwise newest week first.
func (s *Storage) SharedStickers(ctx context.Context, weekStart string) ([]domain.SharedSticker, error) {
	const cols = `ts.id, ts.user_id, ts.content, ts.week_start, ts.is_expired, ts.position_type,
		ts.scheduled_date, ts.scheduled_time, ts.view_type, u.username, u.current_task_name`
	var rows *sql.Rows
	var err error
	if weekStart != "" {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+cols+`
			 FROM time_stickers ts JOIN users u ON ts.user_id = u.id
			 WHERE ts.week_start = ? AND ts.position_type = 'scheduled'
			 ORDER BY u.username, ts.id`,
			weekStart,
		)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+cols+`
			 FROM time_stickers ts JOIN users u ON ts.user_id = u.id
			 WHERE ts.position_type = 'scheduled'
			 ORDER BY ts.week_start DESC, u.username, ts.id`,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectShared(rows)
}

// ScheduledInRange returns all users' scheduled stickers with scheduled_date
// in [start, end), the raw material for daily work-hour summaries.
func (s *Storage) ScheduledInRange(ctx context.Context, start, end string) ([]domain.SharedSticker, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ts.id, ts.user_id, ts.content, ts.week_start, ts.is_expired, ts.position_type,
			ts.scheduled_date, ts.scheduled_time, ts.view_type, u.username, u.current_task_name
		 FROM time_stickers ts JOIN users u ON ts.user_id = u.id
		 WHERE ts.position_type = 'scheduled' AND ts.scheduled_date >= ? AND ts.scheduled_date < ?
		 ORDER BY ts.scheduled_date, u.username, ts.id`,
		start, end,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectShared(rows)
}

func collectShared(rows *sql.Rows) ([]domain.SharedSticker, error) {
	stickers := []domain.SharedSticker{}
	for rows.Next() {
		var st domain.SharedSticker
		var date, clock, view sql.NullString
		var taskName string
		err := rows.Scan(&st.ID, &st.UserID, &st.Content, &st.WeekStart, &st.IsExpired,
			&st.PositionType, &date, &clock, &view, &st.Username, &taskName)
		if err != nil {
			return nil, err
		}
		if date.Valid {
			st.ScheduledDate = &date.String
		}
		if clock.Valid {
			st.ScheduledTime = &clock.String
		}
		if view.Valid {
			st.ViewType = &view.String
		}
		st.TaskName = (domain.User{CurrentTaskName: taskName}).DisplayTaskName()
		stickers = append(stickers, st)
	}
	return stickers, rows.Err()
}

// ExpireStickersBefore marks stickers of weeks preceding weekStart as expired
// and returns the number of stickers swept.
func (s *Storage) ExpireStickersBefore(ctx context.Context, weekStart string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE time_stickers SET is_expired = 1 WHERE week_start < ? AND is_expired = 0`,
		weekStart,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
