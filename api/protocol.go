package api

// Request bodies are capped before decoding.
const requestBodyMaxSize = 64 * 1024 // 64 KiB

type errorResponse struct {
	Error string `json:"error"`
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"user_id"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type userResponse struct {
	UserID          int64  `json:"user_id"`
	Authenticated   bool   `json:"authenticated"`
	Username        string `json:"username"`
	CurrentTaskName string `json:"current_task_name"`
}

type taskNameRequest struct {
	TaskName string `json:"task_name"`
}

type taskNameResponse struct {
	Message  string `json:"message"`
	TaskName string `json:"task_name"`
}

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

type taskCreatedResponse struct {
	Message string `json:"message"`
	TaskID  int64  `json:"task_id"`
}

type progressRequest struct {
	Progress int `json:"progress"`
}

type progressResponse struct {
	Message  string `json:"message"`
	Progress int    `json:"progress"`
}

type createStickersRequest struct {
	WeekStart string `json:"week_start"`
	Count     int    `json:"count"`
}

type stickersCreatedResponse struct {
	Message   string `json:"message"`
	Count     int    `json:"count"`
	WeekStart string `json:"week_start"`
}

type rosterEntry struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	TaskName string `json:"current_task_name"`
}
