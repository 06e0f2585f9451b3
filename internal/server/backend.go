package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-signup/internal/logger"
	"github.com/goliatone/go-signup/pkg/contract"
	"github.com/goliatone/go-signup/pkg/model"
	"github.com/goliatone/go-signup/pkg/transport"
	"github.com/goliatone/go-signup/pkg/validation"
)

const maxBodyBytes = 1 << 16

// Backend is an in-memory registration API. It accepts the documented JSON
// payload, checks it against the contract and the validation schema and
// remembers usernames for the lifetime of the process.
type Backend struct {
	doc       *openapi3.T
	validator *validation.Validator
	logger    logger.Logger

	mu    sync.Mutex
	users map[string]model.FormInput
}

// NewBackend builds a Backend serving doc.
func NewBackend(doc *openapi3.T, v *validation.Validator, log logger.Logger) *Backend {
	if log == nil {
		log = logger.NewNop()
	}
	return &Backend{
		doc:       doc,
		validator: v,
		logger:    log,
		users:     make(map[string]model.FormInput),
	}
}

// Users reports how many accounts were created.
func (b *Backend) Users() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.users)
}

func (b *Backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, transport.Envelope{Message: "could not read request body"})
		return
	}

	var input model.FormInput
	if err := json.Unmarshal(raw, &input); err != nil {
		writeJSON(w, http.StatusBadRequest, transport.Envelope{Message: "request body must be a JSON object"})
		return
	}

	fieldErrors := make(map[string][]string)
	if err := contract.CheckBody(r.Context(), b.doc, raw); err != nil {
		for key, messages := range contract.FieldErrors(err) {
			fieldErrors[key] = append(fieldErrors[key], messages...)
		}
	}
	if b.validator != nil {
		for field, msg := range b.validator.Validate(input) {
			fieldErrors[field] = append([]string{msg}, fieldErrors[field]...)
		}
	}
	if len(fieldErrors) > 0 {
		b.logger.Debug("rejected registration", "fields", len(fieldErrors))
		writeJSON(w, http.StatusUnprocessableEntity, transport.Envelope{
			Message: "validation failed",
			Errors:  fieldErrors,
		})
		return
	}

	key := strings.ToLower(input.Username)
	b.mu.Lock()
	_, taken := b.users[key]
	if !taken {
		b.users[key] = input
	}
	b.mu.Unlock()

	if taken {
		writeJSON(w, http.StatusConflict, transport.Envelope{
			Message: "username already registered",
			Errors:  map[string][]string{model.FieldUsername: {"Username already taken"}},
		})
		return
	}

	b.logger.Info("user registered", "username", input.Username)
	writeJSON(w, http.StatusCreated, transport.Envelope{Message: "user created"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
