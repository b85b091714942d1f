package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/huiyuanXP/time-block-scheduler/storage"
)

func register(store Storage, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req credentialsRequest
		if err := decodeBody(c, &req); err != nil {
			return badRequest(c, "invalid body")
		}
		if req.Username == "" || req.Password == "" {
			return badRequest(c, "username and password required")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return internalError(c, err)
		}

		userID, err := store.CreateUser(c.Request().Context(), req.Username, string(hash))
		if err != nil {
			if errors.Is(err, storage.ErrDuplicateUsername) {
				return c.JSON(http.StatusConflict, errorResponse{Error: "username already exists"})
			}
			return internalError(c, err)
		}

		ck, err := auth.Issue(userID)
		if err != nil {
			return internalError(c, err)
		}
		c.SetCookie(ck)
		return c.JSON(http.StatusOK, sessionResponse{Message: "user created successfully", UserID: userID})
	}
}

func login(store Storage, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req credentialsRequest
		if err := decodeBody(c, &req); err != nil {
			return badRequest(c, "invalid body")
		}

		// Unknown username and wrong password answer identically.
		user, err := store.UserByUsername(c.Request().Context(), req.Username)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
			}
			return internalError(c, err)
		}
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
		}

		ck, err := auth.Issue(user.ID)
		if err != nil {
			return internalError(c, err)
		}
		c.SetCookie(ck)
		return c.JSON(http.StatusOK, sessionResponse{Message: "login successful", UserID: user.ID})
	}
}

func logout(auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.SetCookie(auth.Clear())
		return c.JSON(http.StatusOK, messageResponse{Message: "logged out successfully"})
	}
}

func getUser(store Storage, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := auth.UserID(c.Request())
		if err != nil {
			return unauthenticated(c)
		}
		user, err := store.UserByID(c.Request().Context(), userID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				// Valid token for a user the database no longer knows.
				return unauthenticated(c)
			}
			return internalError(c, err)
		}
		return c.JSON(http.StatusOK, userResponse{
			UserID:          user.ID,
			Authenticated:   true,
			Username:        user.Username,
			CurrentTaskName: user.CurrentTaskName,
		})
	}
}

func updateTaskName(store Storage, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := auth.UserID(c.Request())
		if err != nil {
			return unauthenticated(c)
		}
		var req taskNameRequest
		if err := decodeBody(c, &req); err != nil {
			return badRequest(c, "invalid body")
		}
		if err := store.SetTaskName(c.Request().Context(), userID, req.TaskName); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return unauthenticated(c)
			}
			return internalError(c, err)
		}
		return c.JSON(http.StatusOK, taskNameResponse{Message: "task name updated", TaskName: req.TaskName})
	}
}

func getAllUsers(store Storage, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := auth.UserID(c.Request()); err != nil {
			return unauthenticated(c)
		}
		users, err := store.AllUsers(c.Request().Context())
		if err != nil {
			return internalError(c, err)
		}
		roster := make([]rosterEntry, 0, len(users))
		for _, u := range users {
			roster = append(roster, rosterEntry{
				ID:       u.ID,
				Username: u.Username,
				TaskName: u.DisplayTaskName(),
			})
		}
		return c.JSON(http.StatusOK, roster)
	}
}
