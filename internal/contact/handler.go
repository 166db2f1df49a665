package contact

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mkovalchuk/contacts-api/internal/auth"
	"github.com/mkovalchuk/contacts-api/internal/httputil"
	"github.com/mkovalchuk/contacts-api/internal/logging"
)

const (
	defaultListLimit = 10
	maxListLimit     = 100
	birthdayLayout   = "2006-01-02"
)

// Store is the persistence surface the handlers need
type Store interface {
	Get(ctx context.Context, ownerID, id int64) (*Contact, error)
	List(ctx context.Context, ownerID int64, skip, limit int) ([]*Contact, error)
	Create(ctx context.Context, ownerID int64, params CreateParams) (*Contact, error)
	Update(ctx context.Context, ownerID, id int64, params UpdateParams) (*Contact, error)
	Delete(ctx context.Context, ownerID, id int64) (*Contact, error)
}

// Handler contains HTTP handlers for the contacts resource
type Handler struct {
	store  Store
	logger *logging.Logger
}

func NewHandler(store Store, logger *logging.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

type createRequest struct {
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	Email          string  `json:"email"`
	Phone          *string `json:"phone"`
	Birthday       *string `json:"birthday"`
	AdditionalData *string `json:"additional_data"`
}

type updateRequest struct {
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
	Email          *string `json:"email"`
	Phone          *string `json:"phone"`
	Birthday       *string `json:"birthday"`
	AdditionalData *string `json:"additional_data"`
}

type contactResponse struct {
	ID             int64   `json:"id"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	Email          string  `json:"email"`
	Phone          *string `json:"phone,omitempty"`
	Birthday       *string `json:"birthday,omitempty"`
	AdditionalData *string `json:"additional_data,omitempty"`
}

func toResponse(c *Contact) contactResponse {
	resp := contactResponse{
		ID:             c.ID,
		FirstName:      c.FirstName,
		LastName:       c.LastName,
		Email:          c.Email,
		Phone:          c.Phone,
		AdditionalData: c.AdditionalData,
	}
	if c.Birthday != nil {
		b := c.Birthday.Format(birthdayLayout)
		resp.Birthday = &b
	}
	return resp
}

// List handles GET /contacts?skip=&limit=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	ownerID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	skip := queryInt(r, "skip", 0)

	// A non-positive limit would make the store return the whole table, so
	// clamp into [1, maxListLimit] with the default for anything unusable.
	limit := queryInt(r, "limit", defaultListLimit)
	if limit < 1 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	contacts, err := h.store.List(r.Context(), ownerID, skip, limit)
	if err != nil {
		logger.Error("failed to list contacts", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list contacts", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	resp := make([]contactResponse, 0, len(contacts))
	for _, c := range contacts {
		resp = append(resp, toResponse(c))
	}
	httputil.RespondJSON(w, resp, http.StatusOK)
}

// Create handles POST /contacts
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	ownerID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if req.FirstName == "" || req.LastName == "" {
		httputil.RespondErrorWithCode(w, "first_name and last_name are required", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		httputil.RespondErrorWithCode(w, "invalid contact email", httputil.CodeInvalidEmailFormat, http.StatusBadRequest)
		return
	}

	birthday, err := parseBirthday(req.Birthday)
	if err != nil {
		httputil.RespondErrorWithCode(w, "birthday must be formatted as YYYY-MM-DD", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	created, err := h.store.Create(r.Context(), ownerID, CreateParams{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		Birthday:       birthday,
		AdditionalData: req.AdditionalData,
	})
	if err != nil {
		logger.Error("failed to create contact", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to create contact", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("contact created", "contact_id", created.ID)
	httputil.RespondJSON(w, toResponse(created), http.StatusCreated)
}

// Get handles GET /contacts/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	ownerID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	id, err := pathID(r)
	if err != nil {
		httputil.RespondErrorWithCode(w, "invalid contact id", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	found, err := h.store.Get(r.Context(), ownerID, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "contact not found", httputil.CodeContactNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to get contact", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to get contact", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, toResponse(found), http.StatusOK)
}

// Update handles PATCH /contacts/{id}. Only fields present in the body are
// written; everything else stays untouched.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	ownerID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	id, err := pathID(r)
	if err != nil {
		httputil.RespondErrorWithCode(w, "invalid contact id", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if req.Email != nil {
		if _, err := mail.ParseAddress(*req.Email); err != nil {
			httputil.RespondErrorWithCode(w, "invalid contact email", httputil.CodeInvalidEmailFormat, http.StatusBadRequest)
			return
		}
	}

	birthday, err := parseBirthday(req.Birthday)
	if err != nil {
		httputil.RespondErrorWithCode(w, "birthday must be formatted as YYYY-MM-DD", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	params := UpdateParams{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		Birthday:       birthday,
		AdditionalData: req.AdditionalData,
	}

	// An empty patch changes nothing, so skip the write and return the
	// stored row as-is
	if params.IsEmpty() {
		found, err := h.store.Get(r.Context(), ownerID, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				httputil.RespondErrorWithCode(w, "contact not found", httputil.CodeContactNotFound, http.StatusNotFound)
				return
			}
			logger.Error("failed to get contact", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to update contact", httputil.CodeInternalError, http.StatusInternalServerError)
			return
		}
		httputil.RespondJSON(w, toResponse(found), http.StatusOK)
		return
	}

	updated, err := h.store.Update(r.Context(), ownerID, id, params)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "contact not found", httputil.CodeContactNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to update contact", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to update contact", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, toResponse(updated), http.StatusOK)
}

// Delete handles DELETE /contacts/{id} and returns the deleted contact
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	ownerID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	id, err := pathID(r)
	if err != nil {
		httputil.RespondErrorWithCode(w, "invalid contact id", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	deleted, err := h.store.Delete(r.Context(), ownerID, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "contact not found", httputil.CodeContactNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to delete contact", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to delete contact", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("contact deleted", "contact_id", deleted.ID)
	httputil.RespondJSON(w, toResponse(deleted), http.StatusOK)
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func queryInt(r *http.Request, key string, defaultValue int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return defaultValue
	}
	return n
}

func parseBirthday(raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	t, err := time.Parse(birthdayLayout, *raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
