package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/redis/go-redis/v9"

	"github.com/crewdesk-dev/shift-planner/backend/internal/config"
	"github.com/crewdesk-dev/shift-planner/backend/internal/domain"
	"github.com/crewdesk-dev/shift-planner/backend/internal/repository"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	translator  ut.Translator
	redisClient *redis.Client

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		redisClient: rdb,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.requestID)
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.With(h.auth, h.myInfo).Get("/me", h.GetMyInfo)
	})

	// Everything below requires a signed-in user.
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/users", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.CreateUser)
			r.Get("/", h.GetAllUserInfo) // the whole team may browse the directory
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.userInfo)
				r.Get("/", h.GetUserInfo)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/", h.UpdateUser)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Delete("/", h.DeleteUser)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/password", h.UpdateUserPassword)
			})
		})

		r.Route("/settings", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Patch("/profile", h.UpdateMyProfile)
			r.Patch("/password", h.UpdateMyPassword)
		})

		r.Route("/shifts", func(r chi.Router) {
			r.With(h.myInfo).Get("/", h.ListShifts)
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.CreateShift)
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/recommendations", h.RecommendAssignees)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.shiftInfo)
				r.Get("/", h.GetShift)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/", h.UpdateShift)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Delete("/", h.DeleteShift)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/assignments", h.AddShiftAssignment)
			})
		})

		r.Route("/unavailability", func(r chi.Router) {
			r.With(h.myInfo).Get("/", h.ListUnavailability)
			r.With(h.myInfo).Post("/", h.CreateUnavailability)
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Get("/pending", h.ListPendingUnavailability)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.unavailabilityRequest)
				r.With(h.myInfo).Get("/", h.GetUnavailability)
				r.With(h.myInfo).Patch("/", h.UpdateUnavailability)
				r.With(h.myInfo).Post("/cancel", h.CancelUnavailability)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin}), h.myInfo).Post("/begin-review", h.BeginUnavailabilityReview)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin}), h.myInfo).Post("/review", h.ReviewUnavailability)
			})
		})
	})
}
