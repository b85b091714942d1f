package domain

import "fmt"

// Placement states of a time sticker.
const (
	PositionPending   = "pending"
	PositionScheduled = "scheduled"
)

// Calendar views a sticker may be pinned to.
const (
	ViewWeek = "week"
	ViewDay  = "day"
)

// Sticker is one hour-block of schedulable time, bucketed by the Monday of its
// week. A scheduled sticker carries the date and time it was placed at.
type Sticker struct {
	ID            int64   `json:"id"`
	UserID        int64   `json:"user_id"`
	Content       string  `json:"content"`
	WeekStart     string  `json:"week_start"`
	IsExpired     bool    `json:"is_expired"`
	PositionType  string  `json:"position_type"`
	ScheduledDate *string `json:"scheduled_date"`
	ScheduledTime *string `json:"scheduled_time"`
	ViewType      *string `json:"view_type"`
}

// SharedSticker annotates a sticker with its owner for cross-user views.
type SharedSticker struct {
	Sticker
	Username string `json:"username"`
	TaskName string `json:"task_name"`
}

// StickerUpdate is a partial update: nil fields are left unchanged.
type StickerUpdate struct {
	Content       *string `json:"content"`
	PositionType  *string `json:"position_type"`
	ScheduledDate *string `json:"scheduled_date"`
	ScheduledTime *string `json:"scheduled_time"`
	ViewType      *string `json:"view_type"`
	IsExpired     *bool   `json:"is_expired"`
}

// Empty reports whether the update names no fields.
func (u StickerUpdate) Empty() bool {
	return u.Content == nil && u.PositionType == nil && u.ScheduledDate == nil &&
		u.ScheduledTime == nil && u.ViewType == nil && u.IsExpired == nil
}

// ClearsPlacement reports whether applying the update must null out the
// scheduled date and time. Moving a sticker back to the pending pool always
// clears its slot so stale placement never lingers.
func (u StickerUpdate) ClearsPlacement() bool {
	return u.PositionType != nil && *u.PositionType == PositionPending
}

// Validate enforces the placement invariants: position and view values must be
// known, scheduled placement requires a date, and date/time fields must parse.
func (u StickerUpdate) Validate() error {
	if u.PositionType != nil {
		switch *u.PositionType {
		case PositionPending:
		case PositionScheduled:
			if u.ScheduledDate == nil || *u.ScheduledDate == "" {
				return fmt.Errorf("scheduled position requires a scheduled_date")
			}
		default:
			return fmt.Errorf("invalid position_type %q", *u.PositionType)
		}
	}
	if u.ViewType != nil && *u.ViewType != ViewWeek && *u.ViewType != ViewDay {
		return fmt.Errorf("invalid view_type %q", *u.ViewType)
	}
	if u.ScheduledDate != nil && *u.ScheduledDate != "" && !ValidDate(*u.ScheduledDate) {
		return fmt.Errorf("invalid scheduled_date %q", *u.ScheduledDate)
	}
	if u.ScheduledTime != nil && *u.ScheduledTime != "" && !ValidClock(*u.ScheduledTime) {
		return fmt.Errorf("invalid scheduled_time %q", *u.ScheduledTime)
	}
	return nil
}
