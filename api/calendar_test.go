package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"

	"github.com/huiyuanXP/time-block-scheduler/domain"
)

func testLogger() *log.Logger {
	logger := log.New()
	logger.SetLevel(log.PanicLevel)
	return logger
}

func TestSharedCalendarUnauthenticated(t *testing.T) {
	c, rec := newContext(t, http.MethodGet, "/api/time-stickers/all", "")
	if err := getSharedCalendar(&mockStore{}, noSession(), testLogger())(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 got %d", rec.Code)
	}
}

func TestSharedCalendarInvalidWeek(t *testing.T) {
	c, rec := newContext(t, http.MethodGet, "/api/time-stickers/all?week_start=tuesday", "")
	if err := getSharedCalendar(&mockStore{}, authedUser(), testLogger())(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 got %d", rec.Code)
	}
}

func TestSharedCalendar(t *testing.T) {
	date := "2024-06-04"
	store := &mockStore{shared: []domain.SharedSticker{
		{
			Sticker: domain.Sticker{
				ID:            1,
				UserID:        2,
				WeekStart:     "2024-06-03",
				PositionType:  domain.PositionScheduled,
				ScheduledDate: &date,
			},
			Username: "alice",
			TaskName: "Thesis",
		},
	}}

	c, rec := newContext(t, http.MethodGet, "/api/time-stickers/all?week_start=2024-06-03", "")
	if err := getSharedCalendar(store, authedUser(), testLogger())(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if store.lastSharedWeek != "2024-06-03" {
		t.Fatalf("expected week filter forwarded, got %q", store.lastSharedWeek)
	}

	var got []domain.SharedSticker
	if err := sonic.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 sticker got %d", len(got))
	}
	if got[0].Username != "alice" || got[0].TaskName != "Thesis" {
		t.Fatalf("owner annotation missing: %+v", got[0])
	}
}

func TestSharedCalendarStorageError(t *testing.T) {
	store := &mockStore{sharedErr: errors.New("db gone")}
	c, rec := newContext(t, http.MethodGet, "/api/time-stickers/all", "")
	if err := getSharedCalendar(store, authedUser(), testLogger())(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500 got %d", rec.Code)
	}
}

func TestDailyWorkHours(t *testing.T) {
	d1, d2 := "2024-06-04", "2024-06-05"
	mk := func(id, userID int64, username, task string, date *string) domain.SharedSticker {
		return domain.SharedSticker{
			Sticker: domain.Sticker{
				ID:            id,
				UserID:        userID,
				WeekStart:     "2024-06-03",
				PositionType:  domain.PositionScheduled,
				ScheduledDate: date,
			},
			Username: username,
			TaskName: task,
		}
	}
	store := &mockStore{scheduled: []domain.SharedSticker{
		mk(1, 1, "alice", "Thesis", &d1),
		mk(2, 1, "alice", "Thesis", &d1),
		mk(3, 2, "bob", "Work", &d1),
		mk(4, 2, "bob", "Work", &d2),
	}}

	c, rec := newContext(t, http.MethodGet, "/api/daily-work-hours/all?year=2024&month=6", "")
	if err := getDailyWorkHours(store, authedUser())(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if store.lastScheduledStart != "2024-06-01" || store.lastScheduledEnd != "2024-07-01" {
		t.Fatalf("expected June range, got [%s, %s)", store.lastScheduledStart, store.lastScheduledEnd)
	}

	var got map[string][]domain.WorkHours
	if err := sonic.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 days got %d", len(got))
	}
	day := got["2024-06-04"]
	if len(day) != 2 {
		t.Fatalf("expected 2 entries for 2024-06-04 got %d", len(day))
	}
	if day[0].Username != "alice" || day[0].Hours != 2 || day[0].Display != "2:00" {
		t.Fatalf("unexpected first entry: %+v", day[0])
	}
	if day[1].Username != "bob" || day[1].Hours != 1 {
		t.Fatalf("unexpected second entry: %+v", day[1])
	}
}

func TestDailyWorkHoursInvalidMonth(t *testing.T) {
	c, rec := newContext(t, http.MethodGet, "/api/daily-work-hours/all?month=42", "")
	if err := getDailyWorkHours(&mockStore{}, authedUser())(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 got %d", rec.Code)
	}
}
