package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/alexandruivv/sleep-app/internal/middleware"
	"github.com/alexandruivv/sleep-app/internal/model"
	"github.com/alexandruivv/sleep-app/internal/service"
)

// SleepLogService is the slice of the service layer the HTTP handlers need.
// Declaring it here (at the point of use) lets tests swap in a mock without
// touching the real service.
type SleepLogService interface {
	CreateLastNightLog(ctx context.Context, userID uuid.UUID, input service.CreateSleepLogInput) (*model.SleepEntry, error)
	GetLastNightLog(ctx context.Context, userID uuid.UUID) (*model.SleepEntry, error)
	GetLast30DayAverages(ctx context.Context, userID uuid.UUID) (*service.SleepLogAverages, error)
}

// SleepLogHandler exposes the sleep log operations over HTTP.
type SleepLogHandler struct {
	svc      SleepLogService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewSleepLogHandler creates a new SleepLogHandler.
func NewSleepLogHandler(svc SleepLogService, logger *slog.Logger) *SleepLogHandler {
	return &SleepLogHandler{
		svc:      svc,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// CreateSleepLogRequest is the creation payload.
//
// The timestamps are pointers so that "field missing" is distinguishable
// from "zero time" — `required` then rejects absent fields cleanly. The
// interval policy (not-in-future, not-before-yesterday) is business logic
// and lives in the service, not in struct tags.
type CreateSleepLogRequest struct {
	TimeInBedStart *time.Time           `json:"timeInBedStart" validate:"required"`
	TimeInBedEnd   *time.Time           `json:"timeInBedEnd" validate:"required"`
	MorningFeeling model.MorningFeeling `json:"morningFeeling" validate:"required,oneof=GOOD OK BAD"`
}

// SleepLogResponse is the wire form of one sleep entry. The sleep date is
// rendered as a plain calendar date; audit timestamps are internal and not
// exposed.
type SleepLogResponse struct {
	ID                    string               `json:"id"`
	SleepDate             string               `json:"sleepDate"`
	TimeInBedStart        time.Time            `json:"timeInBedStart"`
	TimeInBedEnd          time.Time            `json:"timeInBedEnd"`
	TotalTimeInBedMinutes int                  `json:"totalTimeInBedMinutes"`
	MorningFeeling        model.MorningFeeling `json:"morningFeeling"`
}

func toSleepLogResponse(e *model.SleepEntry) SleepLogResponse {
	return SleepLogResponse{
		ID:                    e.ID,
		SleepDate:             e.SleepDate.Format(time.DateOnly),
		TimeInBedStart:        e.TimeInBedStart,
		TimeInBedEnd:          e.TimeInBedEnd,
		TotalTimeInBedMinutes: e.TotalTimeInBedMinutes,
		MorningFeeling:        e.MorningFeeling,
	}
}

// SleepLogAveragesResponse is the wire form of the 30-day report.
type SleepLogAveragesResponse struct {
	RangeStart                  string                                            `json:"rangeStart"`
	RangeEnd                    string                                            `json:"rangeEnd"`
	AverageTimeInBedMinutes     int                                               `json:"averageTimeInBedMinutes"`
	AverageTimeUserGetsInBed    service.ClockTime                                 `json:"averageTimeUserGetsInBed"`
	AverageTimeUserGetsOutOfBed service.ClockTime                                 `json:"averageTimeUserGetsOutOfBed"`
	MorningFeelingFrequencies   map[model.MorningFeeling]service.FeelingFrequency `json:"morningFeelingFrequencies"`
}

// HandleCreate records last night's sleep for the current user.
//
// HTTP: POST /sleep-log
// REQUEST BODY: {"timeInBedStart": "...", "timeInBedEnd": "...", "morningFeeling": "GOOD"}
//
// 201 with the created entry; 400 on malformed/invalid input; 409 when a
// log already exists for today.
func (h *SleepLogHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "missing " + middleware.UserIDHeader + " header",
		})
		return
	}

	var req CreateSleepLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid sleep log JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	// Struct-tag validation covers required-ness and enum membership; the
	// service re-checks business rules for non-HTTP callers.
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: validationMessage(err),
		})
		return
	}

	entry, err := h.svc.CreateLastNightLog(r.Context(), userID, service.CreateSleepLogInput{
		TimeInBedStart: *req.TimeInBedStart,
		TimeInBedEnd:   *req.TimeInBedEnd,
		MorningFeeling: req.MorningFeeling,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toSleepLogResponse(entry))
}

// HandleGetLastNight returns today's sleep log for the current user.
//
// HTTP: GET /sleep-log
// 200 with the entry; 404 if the user has not logged today.
func (h *SleepLogHandler) HandleGetLastNight(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "missing " + middleware.UserIDHeader + " header",
		})
		return
	}

	entry, err := h.svc.GetLastNightLog(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSleepLogResponse(entry))
}

// HandleAverages returns the rolling 30-day averages report.
//
// HTTP: GET /sleep-log/averages/last-30-days
// 200 with the report; 404 when the window holds no entries.
func (h *SleepLogHandler) HandleAverages(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "missing " + middleware.UserIDHeader + " header",
		})
		return
	}

	report, err := h.svc.GetLast30DayAverages(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SleepLogAveragesResponse{
		RangeStart:                  report.RangeStart.Format(time.DateOnly),
		RangeEnd:                    report.RangeEnd.Format(time.DateOnly),
		AverageTimeInBedMinutes:     report.AverageTimeInBedMinutes,
		AverageTimeUserGetsInBed:    report.AverageTimeUserGetsInBed,
		AverageTimeUserGetsOutOfBed: report.AverageTimeUserGetsOutOfBed,
		MorningFeelingFrequencies:   report.MorningFeelingFrequencies,
	})
}

// validationMessage turns the first struct-tag violation into a message in
// the same register as the service's own validation errors.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return jsonFieldName(fe.StructField()) + " is required"
		case "oneof":
			return jsonFieldName(fe.StructField()) + " must be one of " + fe.Param()
		}
		return jsonFieldName(fe.StructField()) + " is invalid"
	}
	return "invalid request body"
}

// jsonFieldName converts a struct field name to its lowerCamel JSON form,
// which is how every field in this API is tagged.
func jsonFieldName(field string) string {
	if field == "" {
		return field
	}
	runes := []rune(field)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}
