package api

import (
	"context"
	"net/http"

	"github.com/huiyuanXP/time-block-scheduler/domain"
)

// Storage abstracts persistence for handlers.
type Storage interface {
	Ping(ctx context.Context) error

	CreateUser(ctx context.Context, username, passwordHash string) (int64, error)
	UserByUsername(ctx context.Context, username string) (domain.User, error)
	UserByID(ctx context.Context, id int64) (domain.User, error)
	AllUsers(ctx context.Context) ([]domain.User, error)
	SetTaskName(ctx context.Context, userID int64, name string) error

	CreateTask(ctx context.Context, t domain.Task) (int64, error)
	TasksForRange(ctx context.Context, userID int64, start, end string) ([]domain.Task, error)
	UpdateTaskProgress(ctx context.Context, userID, taskID int64, progress int) error

	CreateStickerBatch(ctx context.Context, userID int64, weekStart string, count int) (bool, error)
	Stickers(ctx context.Context, userID int64, weekStart string) ([]domain.Sticker, error)
	UpdateSticker(ctx context.Context, userID, stickerID int64, upd domain.StickerUpdate) error

	SharedStickers(ctx context.Context, weekStart string) ([]domain.SharedSticker, error)
	ScheduledInRange(ctx context.Context, start, end string) ([]domain.SharedSticker, error)
}

// Authenticator mints and verifies session cookies.
type Authenticator interface {
	// UserID extracts the authenticated user from the request, returning an
	// error when no valid session is present.
	UserID(r *http.Request) (int64, error)
	// Issue returns a session cookie for the given user.
	Issue(userID int64) (*http.Cookie, error)
	// Clear returns a cookie that removes the session.
	Clear() *http.Cookie
}
