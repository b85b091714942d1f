package domain

import (
	"reflect"
	"testing"
)

func scheduledSticker(userID int64, username, taskName, date string) SharedSticker {
	d := date
	return SharedSticker{
		Sticker: Sticker{
			UserID:        userID,
			PositionType:  PositionScheduled,
			ScheduledDate: &d,
		},
		Username: username,
		TaskName: taskName,
	}
}

func TestDailyWorkHoursCountsAndSorts(t *testing.T) {
	stickers := []SharedSticker{
		scheduledSticker(2, "victor", "Review", "2024-06-04"),
		scheduledSticker(1, "alice", "Work", "2024-06-04"),
		scheduledSticker(1, "alice", "Work", "2024-06-04"),
		scheduledSticker(1, "alice", "Work", "2024-06-04"),
		scheduledSticker(2, "victor", "Review", "2024-06-04"),
	}

	got := DailyWorkHours(stickers)
	want := map[string][]WorkHours{
		"2024-06-04": {
			{UserID: 1, Username: "alice", TaskName: "Work", Hours: 3, Minutes: 0, Display: "3:00"},
			{UserID: 2, Username: "victor", TaskName: "Review", Hours: 2, Minutes: 0, Display: "2:00"},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected summary: %#v", got)
	}
}

func TestDailyWorkHoursSplitsDates(t *testing.T) {
	stickers := []SharedSticker{
		scheduledSticker(1, "alice", "Work", "2024-06-03"),
		scheduledSticker(1, "alice", "Work", "2024-06-04"),
	}
	got := DailyWorkHours(stickers)
	if len(got) != 2 {
		t.Fatalf("expected 2 dates, got %d", len(got))
	}
	for _, date := range []string{"2024-06-03", "2024-06-04"} {
		entries := got[date]
		if len(entries) != 1 || entries[0].Hours != 1 || entries[0].Display != "1:00" {
			t.Fatalf("unexpected entries for %s: %#v", date, entries)
		}
	}
}

func TestDailyWorkHoursSkipsUnplaced(t *testing.T) {
	date := "2024-06-03"
	stickers := []SharedSticker{
		{Sticker: Sticker{UserID: 1, PositionType: PositionPending}, Username: "alice"},
		{Sticker: Sticker{UserID: 1, PositionType: PositionScheduled}, Username: "alice"},
		scheduledSticker(1, "alice", "Work", date),
	}
	got := DailyWorkHours(stickers)
	if len(got) != 1 || len(got[date]) != 1 || got[date][0].Hours != 1 {
		t.Fatalf("expected a single one-hour entry, got %#v", got)
	}
}
