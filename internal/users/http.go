// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package users

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/standup/internal/platform/middleware"
	requestutil "github.com/taibuivan/standup/internal/platform/request"
	"github.com/taibuivan/standup/internal/platform/respond"
	"github.com/taibuivan/standup/internal/platform/sec"
	"github.com/taibuivan/standup/internal/platform/validate"
)

// Handler implements the HTTP layer for account management.
type Handler struct {
	userService *Service
}

// NewHandler constructs a new users [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{userService: service}
}

// Routes returns a [chi.Router] configured with the users domain's endpoints.
//
// # Security
//
// Reads are public. Updates require a login and are limited to the caller's
// own account. Registration and deletion require the Admin role.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public directory
	router.Get("/", handler.listUsers)
	router.Get("/{id}", handler.getUser)

	// Self-service
	router.With(middleware.RequireAuth).Put("/{id}", handler.updateUser)

	// Administration
	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))
		admin.Post("/", handler.registerUser)
		admin.Delete("/{id}", handler.deleteUser)
	})

	return router
}

// # Public Endpoints

/*
GET /api/v1/users.

Response:
  - 200: []User
*/
func (handler *Handler) listUsers(writer http.ResponseWriter, request *http.Request) {
	users, err := handler.userService.List(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, users)
}

/*
GET /api/v1/users/{id}.

Response:
  - 200: User
  - 400: id is not a positive integer
  - 404: ErrNotFound
*/
func (handler *Handler) getUser(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.Int64Param(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.userService.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// # Self-service Endpoints

// updateUserRequest defines the expected JSON payload for account updates.
type updateUserRequest struct {
	Email           *string `json:"email"`
	Password        *string `json:"password"`
	CurrentPassword string  `json:"current_password"`
}

/*
PUT /api/v1/users/{id}.

Description: Changes the caller's email and/or password.

Request:
  - body: updateUserRequest

Response:
  - 200: User: The updated account
  - 400: Validation or incorrect current password
  - 401: Not authenticated
  - 403: Target is not the caller
  - 404: ErrNotFound
  - 409: Email already registered
*/
func (handler *Handler) updateUser(writer http.ResponseWriter, request *http.Request) {
	callerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	id, err := requestutil.Int64Param(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateUserRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.userService.Update(request.Context(), callerID, id, UpdateInput{
		Email:           input.Email,
		Password:        input.Password,
		CurrentPassword: input.CurrentPassword,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// # Admin Endpoints

// registerUserRequest defines the expected JSON payload for registration.
type registerUserRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role,omitempty" validate:"omitempty,oneof=User Admin"`
}

/*
POST /api/v1/users.

Request:
  - body: registerUserRequest

Response:
  - 201: User: The created account
  - 400: Validation
  - 401/403: Not an admin
  - 409: Email already registered
*/
func (handler *Handler) registerUser(writer http.ResponseWriter, request *http.Request) {
	var input registerUserRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := validate.Struct(input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.userService.Register(request.Context(), RegisterInput{
		Email:    input.Email,
		Password: input.Password,
		Role:     sec.Role(input.Role),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

/*
DELETE /api/v1/users/{id}.

Response:
  - 204: No Content
  - 401/403: Not an admin
  - 404: ErrNotFound
*/
func (handler *Handler) deleteUser(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.Int64Param(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.userService.Delete(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
