package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"slices"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"task-manager/models"
	"task-manager/utils"
)

const maxJSONBody = 1 << 20

// writeError maps the error taxonomy onto status codes. Anything it does not
// recognise is logged and reported as 500 without details.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		utils.WriteError(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, models.ErrUnableToLogin):
		utils.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrUnauthenticated):
		utils.WriteError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, models.ErrForbiddenUpdate):
		utils.WriteError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, models.ErrNotFound):
		utils.WriteError(w, http.StatusNotFound, "Not found")
	default:
		logger.Error("request failed", slog.String("error", err.Error()))
		utils.WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func badRequest(msg string) error {
	return &models.ValidationError{Message: msg}
}

func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxJSONBody+1))
	if err != nil {
		return nil, badRequest("Invalid request body")
	}
	if len(body) > maxJSONBody {
		return nil, badRequest("Request body too large")
	}
	return body, nil
}

func decodeJSON(r *http.Request, v any) error {
	body, err := readBody(r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return badRequest("Invalid JSON body")
	}
	return nil
}

// decodePatch accepts a JSON object whose keys are all in allowed and
// decodes it into v. Any other key rejects the whole update. An empty body
// is an empty update.
func decodePatch(r *http.Request, allowed []string, v any) error {
	body, err := readBody(r)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return badRequest("Invalid JSON body")
	}
	for key := range fields {
		if !slices.Contains(allowed, key) {
			return models.ErrForbiddenUpdate
		}
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(v); err != nil {
		return badRequest("Invalid field value")
	}
	return nil
}

// pathID reads the {id} route variable. A malformed id cannot name an
// existing record, so it is reported as not found.
func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		return uuid.Nil, models.ErrNotFound
	}
	return id, nil
}
