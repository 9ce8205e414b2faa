package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/crewdesk-dev/shift-planner/backend/internal/domain"
	"github.com/crewdesk-dev/shift-planner/backend/internal/repository"
	"github.com/crewdesk-dev/shift-planner/backend/internal/utils"
)

func (h *Handler) GetAllUserInfo(w http.ResponseWriter, r *http.Request) {
	users, err := h.repository.GetAllUsers()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "users fetched", users)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username       string   `json:"username" validate:"required"`
		Name           string   `json:"name" validate:"required"`
		Email          string   `json:"email" validate:"required,email"`
		Role           string   `json:"role" validate:"required,oneof=ADMIN EMPLOYEE"`
		Timezone       string   `json:"timezone"`
		EmploymentType string   `json:"employmentType" validate:"omitempty,oneof=FULL_TIME PART_TIME CONTRACT"`
		Skills         []string `json:"skills"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// New accounts start INVITED with a generated password; the password is
	// returned once in this response so the admin can hand it over.
	password := utils.GenerateRandomPassword(h.config.NewUser.PasswordLength)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if req.Timezone == "" {
		req.Timezone = "UTC"
	}
	if req.EmploymentType == "" {
		req.EmploymentType = string(domain.EmploymentTypeFullTime)
	}
	if req.Skills == nil {
		req.Skills = []string{}
	}

	user := &domain.User{
		Username:       req.Username,
		PasswordHash:   string(hashedPassword),
		Name:           req.Name,
		Email:          req.Email,
		Role:           domain.Role(req.Role),
		Status:         domain.UserStatusInvited,
		Timezone:       req.Timezone,
		EmploymentType: domain.EmploymentType(req.EmploymentType),
		Skills:         req.Skills,
	}

	if err := h.repository.CreateUser(user); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch {
			case pgErr.ConstraintName == "users_username_key":
				h.badRequest(w, r, errors.New("username already exists"))
			case pgErr.ConstraintName == "users_email_key":
				h.badRequest(w, r, errors.New("email already exists"))
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "user created", map[string]any{
		"user":            user,
		"initialPassword": password,
	})
}

func (h *Handler) GetUserInfo(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)
	h.successResponse(w, r, "user fetched", user)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name           *string   `json:"name"`
		Email          *string   `json:"email" validate:"omitempty,email"`
		Role           *string   `json:"role" validate:"omitempty,oneof=ADMIN EMPLOYEE"`
		Status         *string   `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE INVITED"`
		Timezone       *string   `json:"timezone"`
		EmploymentType *string   `json:"employmentType" validate:"omitempty,oneof=FULL_TIME PART_TIME CONTRACT"`
		Skills         *[]string `json:"skills"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	user := r.Context().Value(UserInfoCtx).(*domain.User)

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Role != nil {
		user.Role = domain.Role(*req.Role)
	}
	if req.Status != nil {
		user.Status = domain.UserStatus(*req.Status)
	}
	if req.Timezone != nil {
		user.Timezone = *req.Timezone
	}
	if req.EmploymentType != nil {
		user.EmploymentType = domain.EmploymentType(*req.EmploymentType)
	}
	if req.Skills != nil {
		user.Skills = *req.Skills
	}

	if err := h.repository.UpdateUser(user); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch {
			case pgErr.ConstraintName == "users_email_key":
				h.badRequest(w, r, errors.New("email already exists"))
			case pgErr.ConstraintName == "users_username_key":
				h.badRequest(w, r, errors.New("username already exists"))
			default:
				h.internalServerError(w, r, err)
			}
		case errors.Is(err, sql.ErrNoRows):
			h.conflict(w, r, "user was modified concurrently, fetch and retry")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "user updated", user)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)

	if err := h.repository.DeleteUser(user.ID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.notFound(w, r, "user not found")
		case repository.IsForeignKeyViolation(err):
			h.conflict(w, r, "user still has dependent records, retry")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "user deleted", nil)
}

func (h *Handler) UpdateUserPassword(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)

	var req struct {
		Password string `json:"password" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	user.PasswordHash = string(hashedPassword)
	if err := h.repository.UpdateUser(user); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.conflict(w, r, "user was modified concurrently, fetch and retry")
		} else {
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "password updated", nil)
}
