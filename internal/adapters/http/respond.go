package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"clubify/internal/application/apperr"
	"clubify/internal/domain/civil"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	// Report JSON field names in validation messages.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode_response", "error", err)
	}
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func forbidden(w http.ResponseWriter) {
	writeErrorMessage(w, http.StatusForbidden, "Forbidden")
}

func notFound(w http.ResponseWriter, what string) {
	writeErrorMessage(w, http.StatusNotFound, what+" not found")
}

// internalError logs err and responds with a generic 500.
func internalError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal_error",
		"request_id", chimw.GetReqID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
		"error", err.Error(),
	)
	writeErrorMessage(w, http.StatusInternalServerError, "internal server error")
}

// writeError maps an operation error to its HTTP response.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, apperr.ErrUnauthenticated):
		writeErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, apperr.ErrForbidden):
		forbidden(w)
	case errors.Is(err, apperr.ErrValidation):
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperr.ErrNotFound):
		writeErrorMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, apperr.ErrConflict):
		writeErrorMessage(w, http.StatusConflict, err.Error())
	default:
		internalError(w, r, err)
	}
}

// decodeJSON strictly decodes the body into v and runs struct validation.
// Any failure is reported as a validation error.
func decodeJSON(r *http.Request, v any) error {
	return decodeRequest(r, v, false)
}

// decodeOptionalJSON is decodeJSON for endpoints where an empty body means
// the zero request.
func decodeOptionalJSON(r *http.Request, v any) error {
	return decodeRequest(r, v, true)
}

func decodeRequest(r *http.Request, v any, optional bool) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if !errors.Is(err, io.EOF) {
			return apperr.Validation("invalid request body: " + err.Error())
		}
		if !optional {
			return apperr.Validation("request body is required")
		}
	}
	if err := validate.Struct(v); err != nil {
		return apperr.Validation(validationMessage(err))
	}
	return nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "gte", "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "lte", "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must match %s", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

// queryInt reads an optional integer query parameter.
func queryInt(r *http.Request, key string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Validation(key + " must be a number")
	}
	return n, nil
}

func civilToday() string {
	return civil.Format(clock())
}
