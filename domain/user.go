package domain

// DefaultTaskName is shown in cross-user views for users who never set a
// current task name.
const DefaultTaskName = "Work"

// User is an account record. The password hash never leaves the storage and
// identity layers.
type User struct {
	ID              int64  `json:"id"`
	Username        string `json:"username"`
	PasswordHash    string `json:"-"`
	CurrentTaskName string `json:"current_task_name"`
}

// DisplayTaskName returns the user's current task name, falling back to
// DefaultTaskName when unset.
func (u User) DisplayTaskName() string {
	if u.CurrentTaskName == "" {
		return DefaultTaskName
	}
	return u.CurrentTaskName
}
