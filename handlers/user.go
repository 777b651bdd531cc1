package handlers

import (
	"log/slog"
	"net/http"

	"task-manager/middlewares"
	"task-manager/models"
	"task-manager/services"
	"task-manager/utils"
)

type UserHandler struct {
	Users  *services.CredentialStore
	Tokens *services.TokenService
	Logger *slog.Logger
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Age      *int   `json:"age"`
}

type AuthRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Age      *int    `json:"age"`
}

// AuthResponse pairs the public user with a freshly issued token.
type AuthResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Signup godoc
// @Summary      Register a new account
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        user  body  signupRequest  true  "Account details"
// @Success      201  {object}  AuthResponse
// @Failure      400  {object}  map[string]string
// @Router       /users [post]
func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Logger, err)
		return
	}

	user, err := h.Users.Register(r.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Age:      req.Age,
	})
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	token, err := h.Tokens.Issue(r.Context(), user.ID)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	h.Logger.Info("user registered", slog.String("user_id", user.ID.String()))
	utils.WriteJSON(w, http.StatusCreated, AuthResponse{User: user, Token: token})
}

// Login godoc
// @Summary      Exchange email and password for a token
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        credentials  body  AuthRequest  true  "Credentials"
// @Success      200  {object}  AuthResponse
// @Failure      400  {object}  map[string]string
// @Router       /users/login [post]
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req AuthRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Logger, err)
		return
	}

	user, err := h.Users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	token, err := h.Tokens.Issue(r.Context(), user.ID)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, AuthResponse{User: user, Token: token})
}

// Logout godoc
// @Summary      Revoke the token used for this request
// @Tags         users
// @Security     BearerAuth
// @Success      200
// @Router       /users/logout [post]
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user := middlewares.CurrentUser(r)
	if err := h.Tokens.Revoke(r.Context(), user.ID, middlewares.CurrentToken(r)); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// LogoutAll godoc
// @Summary      Revoke every token of the caller
// @Tags         users
// @Security     BearerAuth
// @Success      200
// @Router       /users/logoutall [post]
func (h *UserHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	user := middlewares.CurrentUser(r)
	if err := h.Tokens.RevokeAll(r.Context(), user.ID); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// GetProfile godoc
// @Summary      Read the caller's profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.User
// @Router       /users/me [get]
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, middlewares.CurrentUser(r))
}

// UpdateProfile godoc
// @Summary      Change name, email, password or age
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        user  body  updateUserRequest  true  "Fields to change"
// @Success      201  {object}  models.User
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /users/me [patch]
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := decodePatch(r, models.UserUpdateFields, &req); err != nil {
		writeError(w, h.Logger, err)
		return
	}

	user := middlewares.CurrentUser(r)
	updated, err := h.Users.UpdateProfile(r.Context(), user.ID, models.UserPatch{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Age:      req.Age,
	})
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, updated)
}

// DeleteAccount godoc
// @Summary      Delete the caller's account and all of their tasks
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.User
// @Router       /users/me [delete]
func (h *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	user := middlewares.CurrentUser(r)
	deleted, err := h.Users.DeleteAccount(r.Context(), user.ID)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	h.Logger.Info("user deleted", slog.String("user_id", deleted.ID.String()))
	utils.WriteJSON(w, http.StatusOK, deleted)
}
