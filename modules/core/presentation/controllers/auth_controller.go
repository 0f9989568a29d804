package controllers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/stafflink/backoffice/modules/core/services"
	"github.com/stafflink/backoffice/modules/core/domain/aggregates/user"
	"github.com/stafflink/backoffice/pkg/application"
	"github.com/stafflink/backoffice/pkg/configuration"
	"github.com/stafflink/backoffice/pkg/constants"
	"github.com/stafflink/backoffice/pkg/composables"
	"github.com/stafflink/backoffice/pkg/httpapi"
	"github.com/stafflink/backoffice/pkg/middleware"
	"github.com/stafflink/backoffice/pkg/serrors"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type AuthController struct {
	app      application.Application
	basePath string
}

func NewAuthController(app application.Application) application.Controller {
	return &AuthController{
		app:      app,
		basePath: "/api/auth",
	}
}

func (c *AuthController) Key() string {
	return c.basePath
}

func (c *AuthController) Register(r *mux.Router) {
	conf := configuration.Use()
	router := r.PathPrefix(c.basePath).Subrouter()

	loginHandler := http.Handler(http.HandlerFunc(c.login))
	if conf.RateLimit.Enabled {
		loginHandler = middleware.LoginRateLimit(conf.RateLimit.LoginPerMin, middleware.NewStore(conf))(loginHandler)
	}
	router.Handle("/login", middleware.RequireTenant(c.app)(loginHandler)).Methods(http.MethodPost)

	authenticated := router.NewRoute().Subrouter()
	authenticated.Use(middleware.RequireAuthorization())
	authenticated.HandleFunc("/me", c.me).Methods(http.MethodGet)
	authenticated.HandleFunc("/change-password", c.changePassword).Methods(http.MethodPost)
}

func (c *AuthController) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := constants.Validate.Struct(&req); err != nil {
		_ = httpapi.WriteValidationError(w, serrors.ProcessValidatorErrors(err.(validator.ValidationErrors)))
		return
	}

	authService := c.app.Service(services.AuthService{}).(*services.AuthService)
	u, token, err := authService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, &loginResponse{
		Token: token,
		User:  toUserResponse(u),
	})
}

func (c *AuthController) me(w http.ResponseWriter, r *http.Request) {
	u, err := composables.UseUser(r.Context())
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusUnauthorized, "AUTH_REQUIRED", "authentication required", nil)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

func (c *AuthController) changePassword(w http.ResponseWriter, r *http.Request) {
	var dto user.ChangePasswordDTO
	if !decodeJSON(w, r, &dto) {
		return
	}
	authService := c.app.Service(services.AuthService{}).(*services.AuthService)
	if err := authService.ChangePassword(r.Context(), &dto); err != nil {
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusNoContent, nil)
}
