package domain

// Task is a dated task with a completion percentage.
type Task struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"-"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Progress    int    `json:"progress"`
}

// ClampProgress bounds a progress value to [0, 100].
func ClampProgress(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
