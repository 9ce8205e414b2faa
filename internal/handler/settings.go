package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/crewdesk-dev/shift-planner/backend/internal/domain"
)

// verifyCurrentPassword gates self-service credential changes: the caller
// must prove the current password before a new hash is written.
func verifyCurrentPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return &domain.ForbiddenError{Message: "current password is incorrect"}
		}
		return err
	}
	return nil
}

func (h *Handler) UpdateMyProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name" validate:"required,min=2"`
		Username string `json:"username" validate:"required,min=3"`
		Email    string `json:"email" validate:"required,email"`
		Timezone string `json:"timezone" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	me := r.Context().Value(MyInfoCtx).(*domain.User)

	me.Name = req.Name
	me.Username = req.Username
	me.Email = req.Email
	me.Timezone = req.Timezone

	if err := h.repository.UpdateUserProfile(me); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "users_username_key":
				h.badRequest(w, r, errors.New("username already exists"))
			case "users_email_key":
				h.badRequest(w, r, errors.New("email already exists"))
			default:
				h.internalServerError(w, r, err)
			}
		case errors.Is(err, sql.ErrNoRows):
			h.conflict(w, r, "profile was modified concurrently, fetch and retry")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "profile updated", me)
}

func (h *Handler) UpdateMyPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPassword string `json:"currentPassword" validate:"required,min=6"`
		NewPassword     string `json:"newPassword" validate:"required,min=8"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	me := r.Context().Value(MyInfoCtx).(*domain.User)

	if err := verifyCurrentPassword(me.PasswordHash, req.CurrentPassword); err != nil {
		h.domainError(w, r, err)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	me.PasswordHash = string(hashedPassword)
	if err := h.repository.UpdateUser(me); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.conflict(w, r, "profile was modified concurrently, fetch and retry")
		} else {
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "password changed", nil)
}
