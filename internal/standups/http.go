// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package standups

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/standup/internal/platform/middleware"
	requestutil "github.com/taibuivan/standup/internal/platform/request"
	"github.com/taibuivan/standup/internal/platform/respond"
	"github.com/taibuivan/standup/internal/platform/validate"
)

// msgInvalidDate is the field error for a malformed date.
const msgInvalidDate = "Must be a date in YYYY-MM-DD format"

// Handler implements the HTTP layer for standups.
type Handler struct {
	standupService *Service
}

// NewHandler constructs a new standups [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{standupService: service}
}

// Routes returns a [chi.Router] configured with the standups domain's endpoints.
//
// # Security
//
// Every route requires a login and only ever touches the caller's own notes.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Post("/", handler.createStandup)
	router.Get("/by-date/{date}", handler.listByDate)
	router.Get("/by-days/{days}", handler.listByDays)

	return router
}

// listResponse wraps a list of notes.
type listResponse struct {
	Standups []*Standup `json:"standups"`
}

// createStandupRequest defines the expected JSON payload for a new note.
type createStandupRequest struct {
	Content string  `json:"content"`
	Date    *string `json:"date"`
}

/*
POST /api/v1/standups.

Request:
  - body: createStandupRequest (date is optional, defaults to today)

Response:
  - 201: Standup
  - 400: Validation or future date
  - 401: Not authenticated
  - 409: A note already exists for that day
*/
func (handler *Handler) createStandup(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createStandupRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	var day Day
	if input.Date != nil && *input.Date != "" {
		day, err = ParseDay(*input.Date)
		if err != nil {
			respond.Error(writer, request, validate.RequiredError(FieldDate, msgInvalidDate))
			return
		}
	}

	standup, err := handler.standupService.Create(request.Context(), userID, CreateInput{
		Content: input.Content,
		Date:    day,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, standup)
}

/*
GET /api/v1/standups/by-date/{date}.

Response:
  - 200: {"standups": []Standup}
  - 400: date is not YYYY-MM-DD
*/
func (handler *Handler) listByDate(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	day, err := ParseDay(requestutil.Param(request, FieldDate))
	if err != nil {
		respond.Error(writer, request, validate.RequiredError(FieldDate, msgInvalidDate))
		return
	}

	standups, err := handler.standupService.ByDate(request.Context(), userID, day)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, listResponse{Standups: standups})
}

/*
GET /api/v1/standups/by-days/{days}?v=true.

Description: Lists notes from the last N days. With v=true the notes are
returned as plain text, one "- content" line each.

Response:
  - 200: {"standups": []Standup} or text/plain
  - 400: days is not an integer in range, or v is not a boolean
*/
func (handler *Handler) listByDays(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	days, err := strconv.Atoi(requestutil.Param(request, FieldDays))
	if err != nil {
		respond.Error(writer, request, validate.RequiredError(FieldDays, "Must be an integer"))
		return
	}

	plain := false
	if raw := request.URL.Query().Get("v"); raw != "" {
		plain, err = strconv.ParseBool(raw)
		if err != nil {
			respond.Error(writer, request, validate.RequiredError("v", "Must be a boolean"))
			return
		}
	}

	standups, err := handler.standupService.SinceDays(request.Context(), userID, days)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if plain {
		respond.Text(writer, RenderPlain(standups))
		return
	}

	respond.OK(writer, listResponse{Standups: standups})
}
