package api

import (
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, store Storage, auth Authenticator, logger *log.Logger, loginRate rate.Limit) {
	e.POST("/api/register", register(store, auth))
	e.POST("/api/login", login(store, auth), loginLimiter(loginRate))
	e.POST("/api/logout", logout(auth))
	e.GET("/api/user", getUser(store, auth))
	e.PUT("/api/user/task-name", updateTaskName(store, auth))

	e.GET("/api/tasks", getTasks(store, auth))
	e.POST("/api/tasks", createTask(store, auth))
	e.PUT("/api/tasks/:id/progress", updateProgress(store, auth))

	e.GET("/api/time-stickers", getStickers(store, auth))
	e.POST("/api/time-stickers", createStickers(store, auth))
	e.PUT("/api/time-stickers/:id", updateSticker(store, auth))

	e.GET("/api/time-stickers/all", getSharedCalendar(store, auth, logger))
	e.GET("/api/users/all", getAllUsers(store, auth))
	e.GET("/api/daily-work-hours/all", getDailyWorkHours(store, auth))

	e.GET("/healthz", healthz(store))
}

func healthz(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := store.Ping(c.Request().Context()); err != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	}
}

// loginLimiter throttles credential guessing per client IP.
func loginLimiter(r rate.Limit) echo.MiddlewareFunc {
	return middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(r))
}

func decodeBody(c echo.Context, v any) error {
	lr := io.LimitReader(c.Request().Body, requestBodyMaxSize)
	dec := sonic.ConfigStd.NewDecoder(lr)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func unauthenticated(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, errorResponse{Error: "not authenticated"})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
}

func internalError(c echo.Context, err error) error {
	c.Logger().Error(err)
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
}
