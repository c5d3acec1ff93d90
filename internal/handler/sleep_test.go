package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/alexandruivv/sleep-app/internal/apperror"
	"github.com/alexandruivv/sleep-app/internal/handler"
	"github.com/alexandruivv/sleep-app/internal/middleware"
	"github.com/alexandruivv/sleep-app/internal/model"
	"github.com/alexandruivv/sleep-app/internal/service"
)

// MockSleepLogService captures calls and returns canned results, so the
// tests exercise only HTTP parsing and status mapping.
type MockSleepLogService struct {
	CapturedUserID uuid.UUID
	CapturedInput  service.CreateSleepLogInput

	ReturnEntry    *model.SleepEntry
	ReturnAverages *service.SleepLogAverages
	ReturnErr      error
}

func (m *MockSleepLogService) CreateLastNightLog(_ context.Context, userID uuid.UUID, input service.CreateSleepLogInput) (*model.SleepEntry, error) {
	m.CapturedUserID = userID
	m.CapturedInput = input
	if m.ReturnErr != nil {
		return nil, m.ReturnErr
	}
	return m.ReturnEntry, nil
}

func (m *MockSleepLogService) GetLastNightLog(_ context.Context, userID uuid.UUID) (*model.SleepEntry, error) {
	m.CapturedUserID = userID
	if m.ReturnErr != nil {
		return nil, m.ReturnErr
	}
	return m.ReturnEntry, nil
}

func (m *MockSleepLogService) GetLast30DayAverages(_ context.Context, userID uuid.UUID) (*service.SleepLogAverages, error) {
	m.CapturedUserID = userID
	if m.ReturnErr != nil {
		return nil, m.ReturnErr
	}
	return m.ReturnAverages, nil
}

var testLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

var testUserID = uuid.MustParse("11111111-1111-1111-1111-111111111111")

// withUserID simulates the UserID middleware so handlers can be tested in
// isolation from the router.
func withUserID(req *http.Request, id uuid.UUID) *http.Request {
	req.Header.Set(middleware.UserIDHeader, id.String())
	rr := httptest.NewRecorder()
	var out *http.Request
	middleware.UserID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		out = r
	})).ServeHTTP(rr, req)
	return out
}

func testEntry() *model.SleepEntry {
	return &model.SleepEntry{
		ID:                    "d0v1qbq0h4vbcv3e6aaa",
		UserID:                testUserID,
		SleepDate:             time.Date(2026, time.February, 11, 0, 0, 0, 0, time.UTC),
		TimeInBedStart:        time.Date(2026, time.February, 10, 22, 0, 0, 0, time.UTC),
		TimeInBedEnd:          time.Date(2026, time.February, 11, 6, 0, 0, 0, time.UTC),
		TotalTimeInBedMinutes: 480,
		MorningFeeling:        model.FeelingGood,
	}
}

func TestSleepLogHandler_HandleCreate(t *testing.T) {
	t.Run("valid creation", func(t *testing.T) {
		mockSvc := &MockSleepLogService{ReturnEntry: testEntry()}
		h := handler.NewSleepLogHandler(mockSvc, testLogger)

		reqBody := `{
			"timeInBedStart": "2026-02-10T22:00:00Z",
			"timeInBedEnd": "2026-02-11T06:00:00Z",
			"morningFeeling": "GOOD"
		}`
		req := withUserID(httptest.NewRequest(http.MethodPost, "/sleep-log", bytes.NewBufferString(reqBody)), testUserID)
		rr := httptest.NewRecorder()

		h.HandleCreate(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var res handler.SleepLogResponse
		err := json.NewDecoder(rr.Body).Decode(&res)
		assert.NoError(t, err)
		assert.Equal(t, "2026-02-11", res.SleepDate)
		assert.Equal(t, 480, res.TotalTimeInBedMinutes)
		assert.Equal(t, model.FeelingGood, res.MorningFeeling)

		assert.Equal(t, testUserID, mockSvc.CapturedUserID)
		assert.Equal(t, model.FeelingGood, mockSvc.CapturedInput.MorningFeeling)
		assert.True(t, mockSvc.CapturedInput.TimeInBedStart.Equal(
			time.Date(2026, time.February, 10, 22, 0, 0, 0, time.UTC)))
	})

	t.Run("invalid JSON body", func(t *testing.T) {
		h := handler.NewSleepLogHandler(&MockSleepLogService{}, testLogger)

		req := withUserID(httptest.NewRequest(http.MethodPost, "/sleep-log", bytes.NewBufferString(`{"timeInBedStart":`)), testUserID)
		rr := httptest.NewRecorder()

		h.HandleCreate(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("missing timestamps", func(t *testing.T) {
		h := handler.NewSleepLogHandler(&MockSleepLogService{}, testLogger)

		req := withUserID(httptest.NewRequest(http.MethodPost, "/sleep-log", bytes.NewBufferString(`{"morningFeeling":"GOOD"}`)), testUserID)
		rr := httptest.NewRecorder()

		h.HandleCreate(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)

		var res handler.ErrorResponse
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.Equal(t, "validation_error", res.Error)
	})

	t.Run("unknown feeling", func(t *testing.T) {
		h := handler.NewSleepLogHandler(&MockSleepLogService{}, testLogger)

		reqBody := `{
			"timeInBedStart": "2026-02-10T22:00:00Z",
			"timeInBedEnd": "2026-02-11T06:00:00Z",
			"morningFeeling": "AMAZING"
		}`
		req := withUserID(httptest.NewRequest(http.MethodPost, "/sleep-log", bytes.NewBufferString(reqBody)), testUserID)
		rr := httptest.NewRecorder()

		h.HandleCreate(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("duplicate day maps to 409", func(t *testing.T) {
		mockSvc := &MockSleepLogService{ReturnErr: apperror.Conflict("sleep log already exists for today")}
		h := handler.NewSleepLogHandler(mockSvc, testLogger)

		reqBody := `{
			"timeInBedStart": "2026-02-10T22:00:00Z",
			"timeInBedEnd": "2026-02-11T06:00:00Z",
			"morningFeeling": "GOOD"
		}`
		req := withUserID(httptest.NewRequest(http.MethodPost, "/sleep-log", bytes.NewBufferString(reqBody)), testUserID)
		rr := httptest.NewRecorder()

		h.HandleCreate(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)

		var res handler.ErrorResponse
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.Equal(t, "conflict", res.Error)
	})

	t.Run("service validation maps to 400", func(t *testing.T) {
		mockSvc := &MockSleepLogService{ReturnErr: apperror.ValidationFailed("timeInBedEnd", "timeInBedEnd must be after timeInBedStart")}
		h := handler.NewSleepLogHandler(mockSvc, testLogger)

		reqBody := `{
			"timeInBedStart": "2026-02-11T06:00:00Z",
			"timeInBedEnd": "2026-02-10T22:00:00Z",
			"morningFeeling": "GOOD"
		}`
		req := withUserID(httptest.NewRequest(http.MethodPost, "/sleep-log", bytes.NewBufferString(reqBody)), testUserID)
		rr := httptest.NewRecorder()

		h.HandleCreate(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("no user id in context", func(t *testing.T) {
		h := handler.NewSleepLogHandler(&MockSleepLogService{}, testLogger)

		req := httptest.NewRequest(http.MethodPost, "/sleep-log", bytes.NewBufferString(`{}`))
		rr := httptest.NewRecorder()

		h.HandleCreate(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestSleepLogHandler_HandleGetLastNight(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		mockSvc := &MockSleepLogService{ReturnEntry: testEntry()}
		h := handler.NewSleepLogHandler(mockSvc, testLogger)

		req := withUserID(httptest.NewRequest(http.MethodGet, "/sleep-log", nil), testUserID)
		rr := httptest.NewRecorder()

		h.HandleGetLastNight(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var res handler.SleepLogResponse
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.Equal(t, "d0v1qbq0h4vbcv3e6aaa", res.ID)
		assert.Equal(t, "2026-02-11", res.SleepDate)
	})

	t.Run("not found maps to 404", func(t *testing.T) {
		mockSvc := &MockSleepLogService{ReturnErr: apperror.NotFound("sleep log not found")}
		h := handler.NewSleepLogHandler(mockSvc, testLogger)

		req := withUserID(httptest.NewRequest(http.MethodGet, "/sleep-log", nil), testUserID)
		rr := httptest.NewRecorder()

		h.HandleGetLastNight(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestSleepLogHandler_HandleAverages(t *testing.T) {
	t.Run("report returned", func(t *testing.T) {
		mockSvc := &MockSleepLogService{ReturnAverages: &service.SleepLogAverages{
			RangeStart:                  time.Date(2026, time.January, 12, 0, 0, 0, 0, time.UTC),
			RangeEnd:                    time.Date(2026, time.February, 11, 0, 0, 0, 0, time.UTC),
			AverageTimeInBedMinutes:     450,
			AverageTimeUserGetsInBed:    service.ClockTime{Hour: 22, Minute: 40},
			AverageTimeUserGetsOutOfBed: service.ClockTime{Hour: 6, Minute: 10},
			MorningFeelingFrequencies: map[model.MorningFeeling]service.FeelingFrequency{
				model.FeelingGood: {Count: 3, Percentage: 50.00},
				model.FeelingOK:   {Count: 1, Percentage: 16.67},
				model.FeelingBad:  {Count: 2, Percentage: 33.33},
			},
		}}
		h := handler.NewSleepLogHandler(mockSvc, testLogger)

		req := withUserID(httptest.NewRequest(http.MethodGet, "/sleep-log/averages/last-30-days", nil), testUserID)
		rr := httptest.NewRecorder()

		h.HandleAverages(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var res map[string]json.RawMessage
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
		assert.JSONEq(t, `"22:40:00"`, string(res["averageTimeUserGetsInBed"]))
		assert.JSONEq(t, `"06:10:00"`, string(res["averageTimeUserGetsOutOfBed"]))
		assert.JSONEq(t, `"2026-01-12"`, string(res["rangeStart"]))
		assert.JSONEq(t, `"2026-02-11"`, string(res["rangeEnd"]))
		assert.JSONEq(t, `450`, string(res["averageTimeInBedMinutes"]))

		var freqs map[string]service.FeelingFrequency
		assert.NoError(t, json.Unmarshal(res["morningFeelingFrequencies"], &freqs))
		assert.Equal(t, 3, freqs["GOOD"].Count)
		assert.InDelta(t, 16.67, freqs["OK"].Percentage, 0.001)
	})

	t.Run("empty window maps to 404", func(t *testing.T) {
		mockSvc := &MockSleepLogService{ReturnErr: apperror.NotFound("no sleep logs found for user in the last 30 days")}
		h := handler.NewSleepLogHandler(mockSvc, testLogger)

		req := withUserID(httptest.NewRequest(http.MethodGet, "/sleep-log/averages/last-30-days", nil), testUserID)
		rr := httptest.NewRecorder()

		h.HandleAverages(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
