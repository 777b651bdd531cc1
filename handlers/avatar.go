package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"task-manager/middlewares"
	"task-manager/models"
	"task-manager/services"
	"task-manager/utils"
)

// multipartOverhead leaves room for boundaries and headers around the file.
const multipartOverhead = 64 << 10

type AvatarHandler struct {
	Users     *services.CredentialStore
	Processor *services.AvatarProcessor
	MaxBytes  int64
	Logger    *slog.Logger
}

// UploadAvatar godoc
// @Summary      Upload an avatar (jpg, jpeg, png, bmp or gif)
// @Tags         avatar
// @Accept       multipart/form-data
// @Security     BearerAuth
// @Param        avatar  formData  file  true  "Image"
// @Success      200
// @Failure      400  {object}  map[string]string
// @Router       /users/me/avatar [post]
func (h *AvatarHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > h.MaxBytes+multipartOverhead {
		utils.WriteError(w, http.StatusBadRequest, "File too large")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.MaxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.WriteError(w, http.StatusBadRequest, "File too large")
			return
		}
		utils.WriteError(w, http.StatusBadRequest, "Unable to parse form")
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Avatar not provided")
		return
	}
	defer file.Close()

	if header.Size > h.MaxBytes {
		utils.WriteError(w, http.StatusBadRequest, "File too large")
		return
	}
	if err := services.CheckFilename(header.Filename); err != nil {
		writeError(w, h.Logger, err)
		return
	}

	png, err := h.Processor.Process(file)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	user := middlewares.CurrentUser(r)
	if err := h.Users.SetAvatar(r.Context(), user.ID, png); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// DeleteAvatar godoc
// @Summary      Remove the caller's avatar
// @Tags         avatar
// @Security     BearerAuth
// @Success      200
// @Router       /users/me/avatar [delete]
func (h *AvatarHandler) DeleteAvatar(w http.ResponseWriter, r *http.Request) {
	user := middlewares.CurrentUser(r)
	if err := h.Users.ClearAvatar(r.Context(), user.ID); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func writeAvatar(w http.ResponseWriter, png []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// GetMyAvatar godoc
// @Summary      Fetch the caller's avatar
// @Tags         avatar
// @Produce      png
// @Security     BearerAuth
// @Success      200  {file}  binary
// @Failure      404  {object}  map[string]string
// @Router       /users/me/avatar [get]
func (h *AvatarHandler) GetMyAvatar(w http.ResponseWriter, r *http.Request) {
	user := middlewares.CurrentUser(r)
	if !user.HasAvatar() {
		utils.WriteError(w, http.StatusNotFound, "Avatar not found")
		return
	}
	writeAvatar(w, user.Avatar)
}

// GetUserAvatar godoc
// @Summary      Fetch any user's avatar
// @Tags         avatar
// @Produce      png
// @Param        id  path  string  true  "User ID"
// @Success      200  {file}  binary
// @Failure      404  {object}  map[string]string
// @Router       /users/{id}/avatar [get]
func (h *AvatarHandler) GetUserAvatar(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.WriteError(w, http.StatusNotFound, "User avatar not found")
		return
	}

	png, err := h.Users.Avatar(r.Context(), id)
	if errors.Is(err, models.ErrNotFound) {
		utils.WriteError(w, http.StatusNotFound, "User avatar not found")
		return
	}
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeAvatar(w, png)
}
