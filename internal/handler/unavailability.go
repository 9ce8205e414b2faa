package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/crewdesk-dev/shift-planner/backend/internal/domain"
	"github.com/crewdesk-dev/shift-planner/backend/internal/repository"
)

func (h *Handler) CreateUnavailability(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date          string  `json:"date" validate:"required,datetime=2006-01-02"`
		Slot          string  `json:"slot" validate:"required"`
		Reason        *string `json:"reason"`
		AttachmentURL *string `json:"attachmentURL" validate:"omitempty,url"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	slot, err := domain.ParseShiftSlot(req.Slot)
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	date, err := time.ParseInLocation(dateLayout, req.Date, time.UTC)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	me := r.Context().Value(MyInfoCtx).(*domain.User)

	request := &domain.UnavailabilityRequest{
		UserID:        me.ID,
		Date:          date,
		Slot:          slot,
		Reason:        req.Reason,
		AttachmentURL: req.AttachmentURL,
	}

	if err := h.repository.CreateUnavailabilityRequest(request); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "unavailability request created", request)
}

func (h *Handler) ListUnavailability(w http.ResponseWriter, r *http.Request) {
	filter := repository.UnavailabilityFilter{}
	query := r.URL.Query()

	if raw := query.Get("slot"); raw != "" {
		slot, err := domain.ParseShiftSlot(raw)
		if err != nil {
			h.domainError(w, r, err)
			return
		}
		filter.Slot = &slot
	}
	if raw := query.Get("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			status, err := domain.ParseRequestStatus(strings.TrimSpace(part))
			if err != nil {
				h.domainError(w, r, err)
				return
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}
	if raw := query.Get("from"); raw != "" {
		from, err := time.ParseInLocation(dateLayout, raw, time.UTC)
		if err != nil {
			h.badRequest(w, r, err)
			return
		}
		filter.From = &from
	}
	if raw := query.Get("to"); raw != "" {
		to, err := time.ParseInLocation(dateLayout, raw, time.UTC)
		if err != nil {
			h.badRequest(w, r, err)
			return
		}
		filter.To = &to
	}
	if raw := query.Get("search"); raw != "" {
		filter.Search = &raw
	}

	me := r.Context().Value(MyInfoCtx).(*domain.User)
	if me.Role == domain.RoleAdmin {
		if raw := query.Get("userID"); raw != "" {
			userID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				h.badRequest(w, r, err)
				return
			}
			filter.UserID = &userID
		}
	} else {
		// Employees only see their own requests.
		filter.UserID = &me.ID
	}

	requests, err := h.repository.ListUnavailabilityRequests(filter)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "unavailability requests fetched", requests)
}

// ListPendingUnavailability is the reviewer's work queue: every request still
// awaiting a verdict.
func (h *Handler) ListPendingUnavailability(w http.ResponseWriter, r *http.Request) {
	filter := repository.UnavailabilityFilter{
		Statuses: []domain.RequestStatus{domain.RequestStatusOpen, domain.RequestStatusUnderReview},
	}

	requests, err := h.repository.ListUnavailabilityRequests(filter)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "pending unavailability requests fetched", requests)
}

func (h *Handler) GetUnavailability(w http.ResponseWriter, r *http.Request) {
	request := r.Context().Value(UnavailabilityReqCtx).(*domain.UnavailabilityRequest)

	me := r.Context().Value(MyInfoCtx).(*domain.User)
	if me.Role != domain.RoleAdmin && request.UserID != me.ID {
		h.forbidden(w, r, "only the owner may view this request")
		return
	}

	h.successResponse(w, r, "unavailability request fetched", request)
}

func (h *Handler) UpdateUnavailability(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date   *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
		Slot   *string `json:"slot"`
		Reason *string `json:"reason"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	request := r.Context().Value(UnavailabilityReqCtx).(*domain.UnavailabilityRequest)
	me := r.Context().Value(MyInfoCtx).(*domain.User)

	if err := request.CanSelfEdit(me.ID); err != nil {
		h.domainError(w, r, err)
		return
	}

	if req.Date != nil {
		date, err := time.ParseInLocation(dateLayout, *req.Date, time.UTC)
		if err != nil {
			h.badRequest(w, r, err)
			return
		}
		request.Date = date
	}
	if req.Slot != nil {
		slot, err := domain.ParseShiftSlot(*req.Slot)
		if err != nil {
			h.domainError(w, r, err)
			return
		}
		request.Slot = slot
	}
	if req.Reason != nil {
		request.Reason = req.Reason
	}

	if err := h.repository.UpdateUnavailabilityRequestOwnerFields(request); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// The loader found the row, so a missed conditional update means
			// the status or version moved underneath the caller.
			h.conflict(w, r, "request was modified concurrently, fetch and retry")
		} else {
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "unavailability request updated", request)
}

func (h *Handler) CancelUnavailability(w http.ResponseWriter, r *http.Request) {
	request := r.Context().Value(UnavailabilityReqCtx).(*domain.UnavailabilityRequest)
	me := r.Context().Value(MyInfoCtx).(*domain.User)

	if err := request.CanSelfEdit(me.ID); err != nil {
		h.domainError(w, r, err)
		return
	}

	if err := h.repository.CancelUnavailabilityRequest(request); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.conflict(w, r, "request was modified concurrently, fetch and retry")
		} else {
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "unavailability request cancelled", request)
}

func (h *Handler) BeginUnavailabilityReview(w http.ResponseWriter, r *http.Request) {
	request := r.Context().Value(UnavailabilityReqCtx).(*domain.UnavailabilityRequest)

	if !request.Status.CanTransitionTo(domain.RequestStatusUnderReview) {
		h.conflict(w, r, "only an OPEN request can be taken under review")
		return
	}

	if err := h.repository.BeginUnavailabilityReview(request); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.conflict(w, r, "request was modified concurrently, fetch and retry")
		} else {
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "unavailability request taken under review", request)
}

func (h *Handler) ReviewUnavailability(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string  `json:"status" validate:"required,oneof=APPROVED DECLINED"`
		Note   *string `json:"note"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	request := r.Context().Value(UnavailabilityReqCtx).(*domain.UnavailabilityRequest)
	me := r.Context().Value(MyInfoCtx).(*domain.User)

	status := domain.RequestStatus(req.Status)
	if err := domain.ValidateReview(status, req.Note); err != nil {
		h.domainError(w, r, err)
		return
	}
	if !request.Status.CanTransitionTo(status) {
		h.conflict(w, r, "request has already been resolved")
		return
	}

	if err := h.repository.ReviewUnavailabilityRequest(request, me.ID, status, req.Note); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.conflict(w, r, "request was modified concurrently, fetch and retry")
		} else {
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "unavailability request reviewed", request)
}
