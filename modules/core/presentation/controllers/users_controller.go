package controllers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/irrigodev/irrigationdesign/modules/core/domain/access"
	"github.com/irrigodev/irrigationdesign/modules/core/presentation/controllers/dtos"
	"github.com/irrigodev/irrigationdesign/modules/core/services"
	"github.com/irrigodev/irrigationdesign/pkg/application"
	"github.com/irrigodev/irrigationdesign/pkg/composables"
	"github.com/irrigodev/irrigationdesign/pkg/httpapi"
)

type UsersController struct {
	users       *services.UserService
	authMW      mux.MiddlewareFunc
	pageSize    int
	maxPageSize int
}

func NewUsersController(users *services.UserService, authMW mux.MiddlewareFunc, pageSize, maxPageSize int) application.Controller {
	return &UsersController{
		users:       users,
		authMW:      authMW,
		pageSize:    pageSize,
		maxPageSize: maxPageSize,
	}
}

func (c *UsersController) Key() string {
	return "/api/users"
}

func (c *UsersController) Register(r *mux.Router) {
	s := r.PathPrefix("/api/users").Subrouter()
	s.Use(c.authMW)
	s.HandleFunc("", c.list).Methods(http.MethodGet)
	s.HandleFunc("", c.create).Methods(http.MethodPost)
	s.HandleFunc("/me", c.me).Methods(http.MethodGet)
	s.HandleFunc("/dealers", c.dealers).Methods(http.MethodGet)
	s.HandleFunc("/{id}", c.get).Methods(http.MethodGet)
	s.HandleFunc("/{id}", c.update).Methods(http.MethodPatch)
	s.HandleFunc("/{id}", c.delete).Methods(http.MethodDelete)
	s.HandleFunc("/{id}/set-dealer", c.setDealer).Methods(http.MethodPost)
	s.HandleFunc("/{id}/change-password", c.changePassword).Methods(http.MethodPost)
}

func (c *UsersController) pagination(r *http.Request) (limit, offset int) {
	limit = c.pageSize
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = min(v, c.maxPageSize)
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

func parseUUIDParam(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	return id, err == nil
}

func parseUUIDQuery(r *http.Request, name string) *uuid.UUID {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}

func (c *UsersController) list(w http.ResponseWriter, r *http.Request) {
	caller, err := composables.UseUser(r.Context())
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
		return
	}
	limit, offset := c.pagination(r)
	params := services.ListUsersParams{
		FactoryID: parseUUIDQuery(r, "factory"),
		DealerID:  parseUUIDQuery(r, "dealer"),
		Search:    r.URL.Query().Get("search"),
		Limit:     limit,
		Offset:    offset,
	}
	if raw := r.URL.Query().Get("role"); raw != "" {
		role, err := access.ParseRole(raw)
		if err != nil {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "unknown role filter")
			return
		}
		params.Role = &role
	}
	users, total, err := c.users.List(r.Context(), caller, params)
	if err != nil {
		_ = httpapi.WriteFailure(w, err)
		return
	}
	items := make([]dtos.UserResponse, 0, len(users))
	for _, u := range users {
		items = append(items, dtos.ToUserResponse(u))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, dtos.ListResponse[dtos.UserResponse]{Items: items, Total: total})
}

func (c *UsersController) dealers(w http.ResponseWriter, r *http.Request) {
	caller, err := composables.UseUser(r.Context())
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
		return
	}
	limit, offset := c.pagination(r)
	users, total, err := c.users.Dealers(r.Context(), caller, limit, offset)
	if err != nil {
		_ = httpapi.WriteFailure(w, err)
		return
	}
	items := make([]dtos.UserResponse, 0, len(users))
	for _, u := range users {
		items = append(items, dtos.ToUserResponse(u))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, dtos.ListResponse[dtos.UserResponse]{Items: items, Total: total})
}

func (c *UsersController) me(w http.ResponseWriter, r *http.Request) {
	caller, err := composables.UseUser(r.Context())
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, dtos.ToUserResponse(caller))
}

func (c *UsersController) get(w http.ResponseWriter, r *http.Request) {
	caller, err := composables.UseUser(r.Context())
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
		return
	}
	id, ok := parseUUIDParam(r, "id")
	if !ok {
		_ = httpapi.WriteError(w, http.StatusNotFound, "NOT_FOUND", "user not found")
		return
	}
	u, err := c.users.GetByID(r.Context(), caller, id)
	if err != nil {
		_ = httpapi.WriteFailure(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, dtos.ToUserResponse(u))
}

func (c *UsersController) create(w http.ResponseWriter, r *http.Request) {
	caller, err := composables.UseUser(r.Context())
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
		return
	}
	var req dtos.CreateUserRequest
	if err := httpapi.DecodeJSON(r, &req); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed JSON body")
		return
	}
	draft, err := req.ToEntity()
	if err != nil {
		_ = httpapi.WriteFailure(w, err)
		return
	}
	created, err := c.users.Create(r.Context(), caller, draft)
	if err != nil {
		_ = httpapi.WriteFailure(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, dtos.ToUserResponse(created))
}

func (c *UsersController) update(w http.ResponseWriter, r *http.Request) {
	caller, err := composables.UseUser(r.Context())
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
		return
	}
	id, ok := parseUUIDParam(r, "id")
	if !ok {
		_ = httpapi.WriteError(w, http.StatusNotFound, "NOT_FOUND", "user not found")
		return
	}
	current, err := c.users.GetByID(r.Context(), caller, id)
	if err != nil {
		_ = httpapi.WriteFailure(w, err)
		return
	}
	var req dtos.UpdateUserRequest
	if err := httpapi.DecodeJSON(r, &req); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed JSON body")
		return
	}
	draft, err := req.Apply(current)
	if err != nil {
		_ = httpapi.WriteFailure(w, err)
		return
	}
	updated, err := c.users.Update(r.Context(), caller, current, draft)
	if err != nil {
		_ = httpapi.WriteFailure(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, dtos.ToUserResponse(updated))
}

func (c *UsersController) delete(w http.ResponseWriter, r *http.Request) {
	caller, err := composables.UseUser(r.Context())
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
		return
	}
	id, ok := parseUUIDParam(r, "id")
	if !ok {
		_ = httpapi.WriteError(w, http.StatusNotFound, "NOT_FOUND", "user not found")
		return
	}
	if err := c.users.Delete(r.Context(), caller, id); err != nil {
		_ = httpapi.WriteFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *UsersController) setDealer(w http.ResponseWriter, r *http.Request) {
	caller, err := composables.UseUser(r.Context())
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
		return
	}
	id, ok := parseUUIDParam(r, "id")
	if !ok {
		_ = httpapi.WriteError(w, http.StatusNotFound, "NOT_FOUND", "user not found")
		return
	}
	var req dtos.SetDealerRequest
	if err := httpapi.DecodeJSON(r, &req); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed JSON body")
		return
	}
	updated, err := c.users.SetDealer(r.Context(), caller, id, req.DealerID)
	if err != nil {
		_ = httpapi.WriteFailure(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, dtos.ToUserResponse(updated))
}

func (c *UsersController) changePassword(w http.ResponseWriter, r *http.Request) {
	caller, err := composables.UseUser(r.Context())
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
		return
	}
	id, ok := parseUUIDParam(r, "id")
	if !ok {
		_ = httpapi.WriteError(w, http.StatusNotFound, "NOT_FOUND", "user not found")
		return
	}
	var req dtos.ChangePasswordRequest
	if err := httpapi.DecodeJSON(r, &req); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed JSON body")
		return
	}
	if err := c.users.ChangePassword(r.Context(), caller, id, req.OldPassword, req.NewPassword); err != nil {
		_ = httpapi.WriteFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
