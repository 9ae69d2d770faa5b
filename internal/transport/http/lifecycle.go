package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brgy-egov/assets-api/internal/auth"
	"github.com/brgy-egov/assets-api/internal/domain"
)

// RequestLifecycle is the minimal interface needed for the review and
// fulfillment endpoints.
type RequestLifecycle interface {
	Approve(ctx context.Context, requestID string) (domain.AssetRequest, error)
	Deny(ctx context.Context, requestID string) (domain.AssetRequest, error)
	Cancel(ctx context.Context, requestID string) (domain.AssetRequest, error)
	Complete(ctx context.Context, requestID string) (domain.AssetRequest, error)
	Delete(ctx context.Context, requestID string) error
}

// HandleApproveRequest returns an HTTP handler for approving a request.
func HandleApproveRequest(svc RequestLifecycle) http.HandlerFunc {
	return transitionHandler(func(ctx context.Context, svc RequestLifecycle, id string) (domain.AssetRequest, error) {
		return svc.Approve(ctx, id)
	}, svc)
}

// HandleDenyRequest returns an HTTP handler for denying a request.
func HandleDenyRequest(svc RequestLifecycle) http.HandlerFunc {
	return transitionHandler(func(ctx context.Context, svc RequestLifecycle, id string) (domain.AssetRequest, error) {
		return svc.Deny(ctx, id)
	}, svc)
}

// HandleCancelRequest returns an HTTP handler for cancelling a request.
// Staff and admins may cancel anything; other callers only their own.
func HandleCancelRequest(svc RequestLifecycle, reader RequestReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		if claims := auth.ClaimsFromContext(r.Context()); claims != nil &&
			claims.Role != auth.RoleStaff && claims.Role != auth.RoleAdmin {
			req, err := reader.GetRequest(r.Context(), id)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			if req.RequesterID != claims.Subject {
				writeError(w, http.StatusForbidden, codeForbidden, "not your request")
				return
			}
		}

		req, err := svc.Cancel(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(requestResponseFrom(req))
	}
}

// HandleCompleteRequest returns an HTTP handler for completing a paid request.
func HandleCompleteRequest(svc RequestLifecycle) http.HandlerFunc {
	return transitionHandler(func(ctx context.Context, svc RequestLifecycle, id string) (domain.AssetRequest, error) {
		return svc.Complete(ctx, id)
	}, svc)
}

// HandleDeleteRequest returns an HTTP handler for hard-deleting a request.
func HandleDeleteRequest(svc RequestLifecycle) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func transitionHandler(fn func(context.Context, RequestLifecycle, string) (domain.AssetRequest, error), svc RequestLifecycle) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := fn(r.Context(), svc, chi.URLParam(r, "id"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(requestResponseFrom(req))
	}
}
