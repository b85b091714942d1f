package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/huiyuanXP/time-block-scheduler/domain"
	"github.com/huiyuanXP/time-block-scheduler/storage"
)

// defaultBatchCount is the number of stickers minted for a fresh week.
const defaultBatchCount = 12

func createStickers(store Storage, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := auth.UserID(c.Request())
		if err != nil {
			return unauthenticated(c)
		}
		var req createStickersRequest
		if err := decodeBody(c, &req); err != nil {
			return badRequest(c, "invalid body")
		}
		if req.WeekStart == "" || !domain.ValidDate(req.WeekStart) {
			return badRequest(c, "valid week_start required")
		}
		if req.Count < 0 {
			return badRequest(c, "invalid count")
		}
		count := req.Count
		if count == 0 {
			count = defaultBatchCount
		}

		// The response reports the requested count whether or not the week
		// already had stickers; callers cannot detect the no-op from it.
		if _, err := store.CreateStickerBatch(c.Request().Context(), userID, req.WeekStart, count); err != nil {
			return internalError(c, err)
		}
		return c.JSON(http.StatusOK, stickersCreatedResponse{
			Message:   fmt.Sprintf("created %d stickers for week %s", count, req.WeekStart),
			Count:     count,
			WeekStart: req.WeekStart,
		})
	}
}

func getStickers(store Storage, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := auth.UserID(c.Request())
		if err != nil {
			return unauthenticated(c)
		}
		weekStart := c.QueryParam("week_start")
		if weekStart != "" && !domain.ValidDate(weekStart) {
			return badRequest(c, "invalid week_start")
		}

		stickers, err := store.Stickers(c.Request().Context(), userID, weekStart)
		if err != nil {
			return internalError(c, err)
		}
		return c.JSON(http.StatusOK, stickers)
	}
}

func updateSticker(store Storage, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := auth.UserID(c.Request())
		if err != nil {
			return unauthenticated(c)
		}
		stickerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || stickerID <= 0 {
			return badRequest(c, "invalid sticker id")
		}
		var upd domain.StickerUpdate
		if err := decodeBody(c, &upd); err != nil {
			return badRequest(c, "invalid body")
		}

		// An empty update succeeds without touching storage.
		if upd.Empty() {
			return c.JSON(http.StatusOK, messageResponse{Message: "sticker updated"})
		}
		if err := upd.Validate(); err != nil {
			return badRequest(c, err.Error())
		}

		if err := store.UpdateSticker(c.Request().Context(), userID, stickerID, upd); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return c.JSON(http.StatusNotFound, errorResponse{Error: "sticker not found"})
			}
			return internalError(c, err)
		}
		return c.JSON(http.StatusOK, messageResponse{Message: "sticker updated"})
	}
}
