package api

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// calendarRequestMetrics times the stages of a shared-calendar read, the
// hottest cross-user path, and emits one structured log line per request.
type calendarRequestMetrics struct {
	logger           *log.Logger
	start            time.Time
	authDuration     time.Duration
	fetchDuration    time.Duration
	encodeDuration   time.Duration
	weekFilter       bool
	stickersReturned int
	errorStage       string
}

func newCalendarRequestMetrics(logger *log.Logger) *calendarRequestMetrics {
	return &calendarRequestMetrics{
		logger: logger,
		start:  time.Now(),
	}
}

func (m *calendarRequestMetrics) ObserveAuth(duration time.Duration) {
	if duration <= 0 {
		return
	}
	m.authDuration = duration
}

func (m *calendarRequestMetrics) ObserveFetch(duration time.Duration) {
	if duration <= 0 {
		return
	}
	m.fetchDuration = duration
}

func (m *calendarRequestMetrics) ObserveEncode(duration time.Duration) {
	if duration <= 0 {
		return
	}
	m.encodeDuration = duration
}

func (m *calendarRequestMetrics) SetWeekFilter(filtered bool) {
	m.weekFilter = filtered
}

func (m *calendarRequestMetrics) SetStickersReturned(count int) {
	if count < 0 {
		count = 0
	}
	m.stickersReturned = count
}

func (m *calendarRequestMetrics) SetErrorStage(stage string) {
	if stage == "" {
		return
	}
	m.errorStage = stage
}

func (m *calendarRequestMetrics) Log(status int, err error) {
	if m == nil || m.logger == nil {
		return
	}

	fields := log.Fields{
		"route":             "/api/time-stickers/all",
		"status":            status,
		"total_ms":          durationToMillis(time.Since(m.start)),
		"week_filter":       m.weekFilter,
		"stickers_returned": m.stickersReturned,
	}

	if m.authDuration > 0 {
		fields["auth_ms"] = durationToMillis(m.authDuration)
	}
	if m.fetchDuration > 0 {
		fields["fetch_ms"] = durationToMillis(m.fetchDuration)
	}
	if m.encodeDuration > 0 {
		fields["encode_ms"] = durationToMillis(m.encodeDuration)
	}
	if m.errorStage != "" {
		fields["error_stage"] = m.errorStage
	}
	if err != nil {
		fields["error"] = err.Error()
	}

	m.logger.WithFields(fields).Info("calendar.request.metrics")
}

func durationToMillis(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}
