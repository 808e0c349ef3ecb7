package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/DEBABRATA1331/eyeq-iop-tracker/internal/model"
)

var ErrIOPRequired = errors.New("iop is required")

const (
	// dashboardWindow is how many recent readings feed the charts.
	dashboardWindow    = 10
	defaultHistoryDays = 7

	dateLayout      = "2006-01-02"
	timeLabelLayout = "15:04"
)

// ReadingStore is the time-series contract the readings service needs.
type ReadingStore interface {
	Insert(ctx context.Context, reading *model.Reading) error
	Latest(ctx context.Context, userID string, limit int) ([]model.Reading, error)
	Range(ctx context.Context, userID string, startEpoch, endEpoch int64) ([]model.Reading, error)
}

// ReadingsService handles device ingest and the read models behind the
// dashboard, history and report views.
type ReadingsService struct {
	store     ReadingStore
	directory UserDirectory

	now func() time.Time
}

// NewReadingsService creates a new ReadingsService.
func NewReadingsService(store ReadingStore, directory UserDirectory) *ReadingsService {
	return &ReadingsService{
		store:     store,
		directory: directory,
		now:       time.Now,
	}
}

// Ingest validates and appends a device reading. The email must belong to an
// existing user; iop is required. Malformed numeric fields are treated as
// absent but logged so data-quality problems stay visible.
func (s *ReadingsService) Ingest(ctx context.Context, req model.IngestRequest) (model.ReadingResponse, error) {
	if NormalizeEmail(req.Email) == "" {
		return model.ReadingResponse{}, ErrEmailRequired
	}

	logMalformed(req)

	if !req.IOP.Valid {
		return model.ReadingResponse{}, ErrIOPRequired
	}

	user, err := s.directory.FindByEmail(ctx, req.Email)
	if err != nil {
		return model.ReadingResponse{}, err
	}

	reading := &model.Reading{
		UserID:     user.ID,
		IOP:        req.IOP.Ptr(),
		BlueLight:  req.BlueLight.Ptr(),
		ScreenTime: req.ScreenTime.Ptr(),
		BlinkRate:  req.BlinkRate.Ptr(),
		DeviceID:   req.DeviceID,
	}

	if err := s.store.Insert(ctx, reading); err != nil {
		return model.ReadingResponse{}, storeError(err)
	}

	return toReadingResponse(*reading), nil
}

// Dashboard returns the latest reading with its alerts and chart series over
// the recent window for the given account email.
func (s *ReadingsService) Dashboard(ctx context.Context, email string) (model.DashboardResponse, error) {
	user, err := s.directory.FindByEmail(ctx, email)
	if err != nil {
		return model.DashboardResponse{}, err
	}

	rows, err := s.store.Latest(ctx, user.ID, dashboardWindow)
	if err != nil {
		return model.DashboardResponse{}, storeError(err)
	}

	latest := latestOf(rows)

	return model.DashboardResponse{
		Latest:     toOptionalResponse(latest),
		Alerts:     EvaluateAlerts(latest),
		IOP:        buildSeries(rows, func(r model.Reading) *float64 { return r.IOP }),
		BlueLight:  buildSeries(rows, func(r model.Reading) *float64 { return r.BlueLight }),
		ScreenTime: buildSeries(rows, func(r model.Reading) *float64 { return r.ScreenTime }),
	}, nil
}

// History returns the readings recorded in [start, end], newest first. Dates
// are day-granular; missing or unparseable bounds fall back to the last
// seven days ending now.
func (s *ReadingsService) History(ctx context.Context, email, start, end string) (model.HistoryResponse, error) {
	user, err := s.directory.FindByEmail(ctx, email)
	if err != nil {
		return model.HistoryResponse{}, err
	}

	now := s.now().UTC()
	startDate := now.AddDate(0, 0, -defaultHistoryDays)
	endDate := now

	if start != "" {
		if t, err := time.Parse(dateLayout, start); err == nil {
			startDate = t
		} else {
			slog.Warn("invalid history start date, using default window", "start", start)
		}
	}
	if end != "" {
		if t, err := time.Parse(dateLayout, end); err == nil {
			endDate = t
		} else {
			slog.Warn("invalid history end date, using default window", "end", end)
		}
	}

	rows, err := s.store.Range(ctx, user.ID, startDate.Unix(), endDate.Unix())
	if err != nil {
		return model.HistoryResponse{}, storeError(err)
	}

	return model.HistoryResponse{
		Logs:  toReadingResponses(rows),
		Start: startDate.Format(dateLayout),
		End:   endDate.Format(dateLayout),
	}, nil
}

// Report returns the latest reading, its alerts and the IOP series for the
// printable report view.
func (s *ReadingsService) Report(ctx context.Context, email string) (model.ReportResponse, error) {
	user, err := s.directory.FindByEmail(ctx, email)
	if err != nil {
		return model.ReportResponse{}, err
	}

	rows, err := s.store.Latest(ctx, user.ID, dashboardWindow)
	if err != nil {
		return model.ReportResponse{}, storeError(err)
	}

	latest := latestOf(rows)

	return model.ReportResponse{
		Latest: toOptionalResponse(latest),
		Alerts: EvaluateAlerts(latest),
		IOP:    buildSeries(rows, func(r model.Reading) *float64 { return r.IOP }),
	}, nil
}

// LatestReading returns the single newest reading for email, or nil when the
// user has no readings yet.
func (s *ReadingsService) LatestReading(ctx context.Context, email string) (*model.ReadingResponse, error) {
	user, err := s.directory.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	rows, err := s.store.Latest(ctx, user.ID, 1)
	if err != nil {
		return nil, storeError(err)
	}

	return toOptionalResponse(latestOf(rows)), nil
}

// latestOf picks the newest reading from an ascending window.
func latestOf(rows []model.Reading) *model.Reading {
	if len(rows) == 0 {
		return nil
	}
	return &rows[len(rows)-1]
}

func buildSeries(rows []model.Reading, pick func(model.Reading) *float64) model.Series {
	series := model.Series{
		Values:     make([]*float64, 0, len(rows)),
		Timestamps: make([]string, 0, len(rows)),
	}
	for _, r := range rows {
		series.Values = append(series.Values, pick(r))
		series.Timestamps = append(series.Timestamps, r.RecordedAt.UTC().Format(timeLabelLayout))
	}
	return series
}

func toReadingResponse(r model.Reading) model.ReadingResponse {
	return model.ReadingResponse{
		ID:             r.ID,
		UserID:         r.UserID,
		IOP:            r.IOP,
		BlueLight:      r.BlueLight,
		ScreenTime:     r.ScreenTime,
		BlinkRate:      r.BlinkRate,
		DeviceID:       r.DeviceID,
		TimestampISO:   r.RecordedAt.UTC().Format(time.RFC3339),
		TimestampEpoch: r.RecordedEpoch,
	}
}

func toReadingResponses(rows []model.Reading) []model.ReadingResponse {
	out := make([]model.ReadingResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, toReadingResponse(r))
	}
	return out
}

func toOptionalResponse(r *model.Reading) *model.ReadingResponse {
	if r == nil {
		return nil
	}
	resp := toReadingResponse(*r)
	return &resp
}

func logMalformed(req model.IngestRequest) {
	fields := map[string]model.JSONFloat{
		"iop":         req.IOP,
		"blue_light":  req.BlueLight,
		"screen_time": req.ScreenTime,
		"blink_rate":  req.BlinkRate,
	}
	for name, f := range fields {
		if f.Malformed {
			slog.Warn("ignoring malformed numeric field on ingest", "field", name, "email", NormalizeEmail(req.Email))
		}
	}
}
