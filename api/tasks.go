package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/huiyuanXP/time-block-scheduler/domain"
	"github.com/huiyuanXP/time-block-scheduler/storage"
)

func createTask(store Storage, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := auth.UserID(c.Request())
		if err != nil {
			return unauthenticated(c)
		}
		var req createTaskRequest
		if err := decodeBody(c, &req); err != nil {
			return badRequest(c, "invalid body")
		}
		if req.Title == "" || req.Date == "" {
			return badRequest(c, "title and date required")
		}
		if !domain.ValidDate(req.Date) {
			return badRequest(c, "invalid date")
		}

		taskID, err := store.CreateTask(c.Request().Context(), domain.Task{
			UserID:      userID,
			Title:       req.Title,
			Description: req.Description,
			Date:        req.Date,
		})
		if err != nil {
			return internalError(c, err)
		}
		return c.JSON(http.StatusOK, taskCreatedResponse{Message: "task created", TaskID: taskID})
	}
}

func getTasks(store Storage, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := auth.UserID(c.Request())
		if err != nil {
			return unauthenticated(c)
		}
		year, month, err := yearMonthParams(c)
		if err != nil {
			return badRequest(c, err.Error())
		}

		start, end := domain.MonthRange(year, month)
		tasks, err := store.TasksForRange(c.Request().Context(), userID, start, end)
		if err != nil {
			return internalError(c, err)
		}
		return c.JSON(http.StatusOK, tasks)
	}
}

func updateProgress(store Storage, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := auth.UserID(c.Request())
		if err != nil {
			return unauthenticated(c)
		}
		taskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || taskID <= 0 {
			return badRequest(c, "invalid task id")
		}
		var req progressRequest
		if err := decodeBody(c, &req); err != nil {
			return badRequest(c, "invalid body")
		}

		progress := domain.ClampProgress(req.Progress)
		if err := store.UpdateTaskProgress(c.Request().Context(), userID, taskID, progress); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return c.JSON(http.StatusNotFound, errorResponse{Error: "task not found"})
			}
			return internalError(c, err)
		}
		return c.JSON(http.StatusOK, progressResponse{Message: "progress updated", Progress: progress})
	}
}

// yearMonthParams reads the year/month query parameters, defaulting to the
// current month.
func yearMonthParams(c echo.Context) (int, int, error) {
	now := time.Now()
	year, month := now.Year(), int(now.Month())

	if v := c.QueryParam("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return 0, 0, errors.New("invalid year")
		}
		year = n
	}
	if v := c.QueryParam("month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 12 {
			return 0, 0, errors.New("invalid month")
		}
		month = n
	}
	return year, month, nil
}
