// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"errors"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/standup/internal/platform/middleware"
	requestutil "github.com/taibuivan/standup/internal/platform/request"
	"github.com/taibuivan/standup/internal/platform/respond"
	"github.com/taibuivan/standup/internal/platform/validate"
)

// maxFormBytes caps the login form body.
const maxFormBytes = 64 << 10

// Handler implements the login endpoint.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with the login route.
//
// # Endpoints
//   - POST / : Authenticates and returns a bearer token.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", handler.login)

	return router
}

// loginRequest accepts either the OAuth2 "username" field or "email".
type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (input loginRequest) identifier() string {
	if input.Email != "" {
		return input.Email
	}
	return input.Username
}

/*
POST /api/v1/login.

Description: Exchanges credentials for an access token. Accepts the OAuth2
password form (username, password) or the same fields as JSON.

Response:
  - 200: Token (not enveloped, matching the OAuth2 token response)
  - 400: Missing fields or unreadable body
  - 403: Invalid Credentials
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	// ── 1. Payload Extraction ──
	input, err := readCredentials(writer, request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 2. Validation ──
	validator := &validate.Validator{}
	validator.Required("username", input.identifier())
	validator.Required("password", input.Password)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 3. Execution ──
	token, err := handler.authService.Login(request.Context(), input.identifier(), input.Password)
	if err != nil {
		respond.Error(writer, request, middleware.AuthError(err))
		return
	}

	respond.JSON(writer, http.StatusOK, token)
}

// readCredentials decodes a form or JSON body depending on Content-Type.
func readCredentials(writer http.ResponseWriter, request *http.Request) (loginRequest, error) {
	var input loginRequest

	mediaType, _, _ := mime.ParseMediaType(request.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		request.Body = http.MaxBytesReader(writer, request.Body, maxFormBytes)
		if err := request.ParseMultipartForm(maxFormBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return input, validate.ErrInvalidForm
		}
		input.Username = request.PostFormValue("username")
		input.Email = request.PostFormValue("email")
		input.Password = request.PostFormValue("password")
		return input, nil
	default:
		err := requestutil.DecodeJSON(writer, request, &input)
		return input, err
	}
}
