package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/brgy-egov/assets-api/internal/domain"
)

const (
	codeMethodNotAllowed   = "method_not_allowed"
	codeNotFound           = "not_found"
	codeInvalidRequestBody = "invalid_request_body"
	codeInvalidID          = "invalid_id"
	codeInvalidDate        = "invalid_date"
	codeInvalidQuantity    = "invalid_quantity"
	codeInvalidAmount      = "invalid_amount"
	codeRequesterRequired  = "requester_required"
	codeEmptyCart          = "empty_cart"
	codeDuplicateLine      = "duplicate_line"
	codeDateNotOpen        = "date_not_open"
	codeCapacityExceeded   = "capacity_exceeded"
	codeAssetNotFound      = "asset_not_found"
	codeRequestNotFound    = "request_not_found"
	codeInvalidTransition  = "invalid_transition"
	codeAmountMismatch     = "amount_mismatch"
	codeAlreadyPaid        = "already_paid"
	codeUnauthorized       = "unauthorized"
	codeForbidden          = "forbidden"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeDomainError maps the shared domain errors every handler can surface.
// Handler-specific errors are mapped at the call site before falling through
// to this.
func writeDomainError(w http.ResponseWriter, err error) {
	var (
		dateErr     *domain.DateNotOpenError
		dupErr      *domain.DuplicateLineError
		capErr      *domain.CapacityError
		transErr    *domain.InvalidTransitionError
		mismatchErr *domain.AmountMismatchError
	)
	switch {
	case errors.Is(err, domain.ErrAssetNotFound):
		writeError(w, http.StatusNotFound, codeAssetNotFound, err.Error())
	case errors.Is(err, domain.ErrRequestNotFound):
		writeError(w, http.StatusNotFound, codeRequestNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case errors.Is(err, domain.ErrInvalidDate):
		writeError(w, http.StatusBadRequest, codeInvalidDate, err.Error())
	case errors.Is(err, domain.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, codeInvalidQuantity, err.Error())
	case errors.Is(err, domain.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, codeInvalidAmount, err.Error())
	case errors.Is(err, domain.ErrRequesterRequired):
		writeError(w, http.StatusBadRequest, codeRequesterRequired, err.Error())
	case errors.Is(err, domain.ErrEmptyCart):
		writeError(w, http.StatusBadRequest, codeEmptyCart, err.Error())
	case errors.Is(err, domain.ErrAlreadyPaid):
		writeError(w, http.StatusConflict, codeAlreadyPaid, err.Error())
	case errors.As(err, &dateErr):
		writeError(w, http.StatusUnprocessableEntity, codeDateNotOpen, err.Error())
	case errors.As(err, &dupErr):
		writeError(w, http.StatusBadRequest, codeDuplicateLine, err.Error())
	case errors.As(err, &capErr):
		writeError(w, http.StatusConflict, codeCapacityExceeded, err.Error())
	case errors.As(err, &transErr):
		writeError(w, http.StatusConflict, codeInvalidTransition, err.Error())
	case errors.As(err, &mismatchErr):
		writeError(w, http.StatusUnprocessableEntity, codeAmountMismatch, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
