package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/irrigodev/irrigationdesign/modules/core/presentation/controllers/dtos"
	"github.com/irrigodev/irrigationdesign/modules/core/services"
	"github.com/irrigodev/irrigationdesign/pkg/application"
	"github.com/irrigodev/irrigationdesign/pkg/httpapi"
)

type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) application.Controller {
	return &AuthController{auth: auth}
}

func (c *AuthController) Key() string {
	return "/api/auth"
}

func (c *AuthController) Register(r *mux.Router) {
	s := r.PathPrefix("/api/auth").Subrouter()
	s.HandleFunc("/login", c.login).Methods(http.MethodPost)
}

func (c *AuthController) login(w http.ResponseWriter, r *http.Request) {
	var req dtos.LoginRequest
	if err := httpapi.DecodeJSON(r, &req); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed JSON body")
		return
	}
	if req.Username == "" || req.Password == "" {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "username and password are required")
		return
	}
	token, u, err := c.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		_ = httpapi.WriteFailure(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, dtos.LoginResponse{
		Token: token,
		User:  dtos.ToUserResponse(u),
	})
}
