package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/DEBABRATA1331/eyeq-iop-tracker/internal/middleware"
	"github.com/DEBABRATA1331/eyeq-iop-tracker/internal/model"
	"github.com/DEBABRATA1331/eyeq-iop-tracker/internal/service"
)

// AuthHandler handles HTTP requests for the OTP login flow.
type AuthHandler struct {
	auth      *service.AuthService
	directory service.UserDirectory
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService, directory service.UserDirectory) *AuthHandler {
	return &AuthHandler{auth: auth, directory: directory}
}

// HandleLogin handles POST /api/v1/auth/login requests. On success an OTP is
// mailed to the address; the response never contains the code.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB

	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err.Error() == "http: request body too large" {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse("request body too large"))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body"))
		return
	}

	if err := h.auth.Issue(r.Context(), sess, req.Email, req.Name); err != nil {
		switch {
		case errors.Is(err, service.ErrEmailRequired):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		case errors.Is(err, service.ErrMailDispatch):
			writeJSON(w, http.StatusBadGateway, errorResponse("failed to send otp, try again later"))
		case errors.Is(err, service.ErrStoreUnavailable):
			writeJSON(w, http.StatusServiceUnavailable, errorResponse("store unavailable"))
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"message": "otp sent to your email"})
}

// HandleVerify handles POST /api/v1/auth/verify requests.
func (h *AuthHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB

	var req model.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body"))
		return
	}
	if req.Code == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse("code is required"))
		return
	}

	user, err := h.auth.Verify(r.Context(), sess, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExpiredOTP), errors.Is(err, service.ErrIncorrectOTP):
			writeJSON(w, http.StatusUnauthorized, errorResponse(err.Error()))
		case errors.Is(err, service.ErrStoreUnavailable):
			writeJSON(w, http.StatusServiceUnavailable, errorResponse("store unavailable"))
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	writeJSON(w, http.StatusOK, model.AuthResponse{
		Message: "login successful",
		User:    toUserResponse(user),
	})
}

// HandleResend handles POST /api/v1/auth/resend requests. The new code
// supersedes the previous one.
func (h *AuthHandler) HandleResend(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	if err := h.auth.Resend(r.Context(), sess); err != nil {
		switch {
		case errors.Is(err, service.ErrSessionExpired):
			writeJSON(w, http.StatusUnauthorized, errorResponse(err.Error()))
		case errors.Is(err, service.ErrMailDispatch):
			writeJSON(w, http.StatusBadGateway, errorResponse("failed to resend otp, try again later"))
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"message": "otp resent to your email"})
}

// HandleLogout handles POST /api/v1/auth/logout requests.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := middleware.SessionFromContext(r.Context()); ok {
		h.auth.Logout(sess)
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// HandleMe handles GET /api/v1/auth/me requests.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	user, err := h.directory.FindByEmail(r.Context(), sess.Email)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func toUserResponse(u *model.User) model.UserResponse {
	return model.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func errorResponse(msg string) map[string]string {
	return map[string]string{"error": msg}
}
