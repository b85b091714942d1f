package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/huiyuanXP/time-block-scheduler/domain"
)

func getSharedCalendar(store Storage, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		metrics := newCalendarRequestMetrics(logger)
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		authStart := time.Now()
		_, authErr := auth.UserID(c.Request())
		metrics.ObserveAuth(time.Since(authStart))
		if authErr != nil {
			metrics.SetErrorStage("auth")
			err = unauthenticated(c)
			return err
		}

		weekStart := c.QueryParam("week_start")
		if weekStart != "" && !domain.ValidDate(weekStart) {
			metrics.SetErrorStage("invalid_week_start")
			err = badRequest(c, "invalid week_start")
			return err
		}
		metrics.SetWeekFilter(weekStart != "")

		fetchStart := time.Now()
		stickers, fetchErr := store.SharedStickers(c.Request().Context(), weekStart)
		metrics.ObserveFetch(time.Since(fetchStart))
		if fetchErr != nil {
			metrics.SetErrorStage("storage")
			err = internalError(c, fetchErr)
			return err
		}
		metrics.SetStickersReturned(len(stickers))

		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, stickers)
		metrics.ObserveEncode(time.Since(encodeStart))
		if err != nil {
			metrics.SetErrorStage("encode_response")
		}
		return err
	}
}

func getDailyWorkHours(store Storage, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := auth.UserID(c.Request()); err != nil {
			return unauthenticated(c)
		}
		year, month, err := yearMonthParams(c)
		if err != nil {
			return badRequest(c, err.Error())
		}

		start, end := domain.MonthRange(year, month)
		stickers, err := store.ScheduledInRange(c.Request().Context(), start, end)
		if err != nil {
			return internalError(c, err)
		}
		return c.JSON(http.StatusOK, domain.DailyWorkHours(stickers))
	}
}
