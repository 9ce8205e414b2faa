package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/crewdesk-dev/shift-planner/backend/internal/domain"
	"github.com/crewdesk-dev/shift-planner/backend/internal/repository"
	"github.com/crewdesk-dev/shift-planner/backend/internal/scheduler"
)

const dateLayout = "2006-01-02"

// schedulingSnapshot loads everything the evaluator and engine need for one
// target date: the user roster, the assignment records covering the lookback
// window through the day after the target, and that date's requests.
func (h *Handler) schedulingSnapshot(date time.Time) ([]*domain.User, []domain.ShiftAssignmentRecord, []*domain.UnavailabilityRequest, error) {
	users, err := h.repository.GetAllUsers()
	if err != nil {
		return nil, nil, nil, err
	}

	from := date.AddDate(0, 0, -scheduler.LookbackDays)
	to := date.AddDate(0, 0, 1)
	records, err := h.repository.GetAssignmentRecordsBetween(from, to)
	if err != nil {
		return nil, nil, nil, err
	}

	requests, err := h.repository.GetUnavailabilityRequestsByDate(date)
	if err != nil {
		return nil, nil, nil, err
	}

	return users, records, requests, nil
}

// assignmentWarnings evaluates a prospective assignee against the target
// window. Conflicts on direct assignment are advisory, never blocking; the
// admin can still push the assignment through.
func (h *Handler) assignmentWarnings(userID int64, date time.Time, slot domain.ShiftSlot) ([]string, error) {
	windowStart, windowEnd, err := domain.SlotWindow(date, slot)
	if err != nil {
		return nil, err
	}

	users, records, requests, err := h.schedulingSnapshot(date)
	if err != nil {
		return nil, err
	}

	evaluator := scheduler.NewEvaluator(users, records, requests)
	signals, err := evaluator.Evaluate(userID, windowStart, windowEnd, slot)
	if err != nil {
		return nil, err
	}

	warnings := make([]string, 0, 3)
	if signals.Busy {
		warnings = append(warnings, "assignee already holds an overlapping shift")
	}
	if signals.Unavailable {
		warnings = append(warnings, "assignee has an unavailability request for this slot")
	}
	if signals.SameDayLoad > 0 {
		warnings = append(warnings, fmt.Sprintf("assignee already has %d shift(s) on this date", signals.SameDayLoad))
	}

	return warnings, nil
}

func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date       string  `json:"date" validate:"required,datetime=2006-01-02"`
		Slot       string  `json:"slot" validate:"required"`
		Status     string  `json:"status"`
		Notes      *string `json:"notes"`
		AssigneeID *int64  `json:"assigneeID"`
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

	status := domain.ShiftStatusDraft
	if req.Status != "" {
		if status, err = domain.ParseShiftStatus(req.Status); err != nil {
			h.domainError(w, r, err)
			return
		}
		if status == domain.ShiftStatusCancelled {
			h.badRequest(w, r, errors.New("a shift cannot be created as CANCELLED"))
			return
		}
	}

	date, err := time.ParseInLocation(dateLayout, req.Date, time.UTC)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	// The window is always derived from (date, slot); callers never supply
	// start/end instants directly.
	start, end, err := domain.SlotWindow(date, slot)
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	warnings := make([]string, 0)
	if req.AssigneeID != nil {
		if _, err := h.repository.GetUserByID(*req.AssigneeID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				h.badRequest(w, r, errors.New("assignee does not exist"))
			} else {
				h.internalServerError(w, r, err)
			}
			return
		}

		if warnings, err = h.assignmentWarnings(*req.AssigneeID, date, slot); err != nil {
			h.domainError(w, r, err)
			return
		}
	}

	shift := &domain.Shift{
		Slot:   slot,
		Start:  start,
		End:    end,
		Status: status,
		Notes:  req.Notes,
	}

	if err := h.repository.CreateShift(shift, req.AssigneeID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "shift created", map[string]any{
		"shift":    shift,
		"warnings": warnings,
	})
}

func (h *Handler) GetShift(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)
	h.successResponse(w, r, "shift fetched", shift)
}

func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	filter := repository.ShiftFilter{}
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
			status, err := domain.ParseShiftStatus(strings.TrimSpace(part))
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
		// Inclusive date bound: any shift starting on that calendar day.
		end := to.AddDate(0, 0, 1)
		filter.To = &end
	}

	me := r.Context().Value(MyInfoCtx).(*domain.User)
	if me.Role == domain.RoleAdmin {
		if raw := query.Get("assigneeID"); raw != "" {
			assigneeID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				h.badRequest(w, r, err)
				return
			}
			filter.AssigneeID = &assigneeID
		}
	} else {
		// Employees only ever see the shifts they are assigned to.
		filter.AssigneeID = &me.ID
	}

	shifts, err := h.repository.ListShifts(filter)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "shifts fetched", shifts)
}

func (h *Handler) UpdateShift(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date       *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
		Slot       *string `json:"slot"`
		Status     *string `json:"status"`
		Notes      *string `json:"notes"`
		AssigneeID *int64  `json:"assigneeID"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	if req.Status != nil {
		next, err := domain.ParseShiftStatus(*req.Status)
		if err != nil {
			h.domainError(w, r, err)
			return
		}
		if !shift.Status.CanTransitionTo(next) {
			h.conflict(w, r, fmt.Sprintf("shift cannot move from %s to %s", shift.Status, next))
			return
		}
		shift.Status = next
	}

	if req.Slot != nil {
		slot, err := domain.ParseShiftSlot(*req.Slot)
		if err != nil {
			h.domainError(w, r, err)
			return
		}
		shift.Slot = slot
	}

	date := shift.Start.Truncate(24 * time.Hour)
	if req.Date != nil {
		parsed, err := time.ParseInLocation(dateLayout, *req.Date, time.UTC)
		if err != nil {
			h.badRequest(w, r, err)
			return
		}
		date = parsed
	}

	// Whenever date or slot moved, the window is recomputed from scratch.
	start, end, err := domain.SlotWindow(date, shift.Slot)
	if err != nil {
		h.domainError(w, r, err)
		return
	}
	shift.Start = start
	shift.End = end

	if req.Notes != nil {
		shift.Notes = req.Notes
	}

	warnings := make([]string, 0)
	if req.AssigneeID != nil {
		if _, err := h.repository.GetUserByID(*req.AssigneeID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				h.badRequest(w, r, errors.New("assignee does not exist"))
			} else {
				h.internalServerError(w, r, err)
			}
			return
		}

		if warnings, err = h.assignmentWarnings(*req.AssigneeID, date, shift.Slot); err != nil {
			h.domainError(w, r, err)
			return
		}
	}

	removed, err := h.repository.UpdateShift(shift, req.AssigneeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.conflict(w, r, "shift was modified concurrently, fetch and retry")
		} else {
			h.internalServerError(w, r, err)
		}
		return
	}

	// Supplying an assignee replaces every existing assignment, including
	// BACKUP and SHADOW rows; list what the replace discarded.
	for _, assignment := range removed {
		if assignment.Role == domain.AssignmentRolePrimary {
			continue
		}
		warnings = append(warnings, fmt.Sprintf("replaced existing %s assignment for user %d", assignment.Role, assignment.UserID))
	}

	h.successResponse(w, r, "shift updated", map[string]any{
		"shift":    shift,
		"warnings": warnings,
	})
}

func (h *Handler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	if err := h.repository.DeleteShift(shift.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.notFound(w, r, "shift not found")
		} else {
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "shift deleted", nil)
}

func (h *Handler) AddShiftAssignment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID int64   `json:"userID" validate:"required"`
		Role   string  `json:"role" validate:"required,oneof=BACKUP SHADOW"`
		Notes  *string `json:"notes"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	if _, err := h.repository.GetUserByID(req.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.badRequest(w, r, errors.New("assignee does not exist"))
		} else {
			h.internalServerError(w, r, err)
		}
		return
	}

	for _, existing := range shift.Assignments {
		if existing.UserID == req.UserID {
			h.conflict(w, r, "user is already assigned to this shift")
			return
		}
	}

	assignment := &domain.ShiftAssignment{
		ShiftID: shift.ID,
		UserID:  req.UserID,
		Role:    domain.AssignmentRole(req.Role),
		Notes:   req.Notes,
	}

	if err := h.repository.AddShiftAssignment(assignment); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "assignment added", assignment)
}

// cachedRecommendation returns the cached result for key, or nil on a miss,
// an unreachable cache, or a corrupt entry. The cache never blocks a
// recommendation: every failure degrades to recomputation.
func (h *Handler) cachedRecommendation(ctx context.Context, key string) *scheduler.Recommendation {
	cached, err := h.redisClient.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("recommendation cache read failed", "key", key, "error", err)
		}
		return nil
	}

	recommendation := &scheduler.Recommendation{}
	if err := json.Unmarshal([]byte(cached), recommendation); err != nil {
		slog.Warn("discarding corrupt recommendation cache entry", "key", key, "error", err)
		return nil
	}

	return recommendation
}

func (h *Handler) RecommendAssignees(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date string `json:"date" validate:"required,datetime=2006-01-02"`
		Slot string `json:"slot" validate:"required"`
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

	cacheKey := fmt.Sprintf("recommend_%s_%s", req.Date, slot)

	redisCtx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.Redis.OperationTimeout)*time.Second)
	defer cancel()

	if recommendation := h.cachedRecommendation(redisCtx, cacheKey); recommendation != nil {
		h.successResponse(w, r, "recommendations fetched", recommendation)
		return
	}

	users, records, requests, err := h.schedulingSnapshot(date)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	engine := scheduler.NewEngine(users, records, requests)
	recommendation, err := engine.Recommend(date, slot)
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	if payload, err := json.Marshal(recommendation); err == nil {
		ttl := time.Duration(h.config.Redis.RecommendationTTL) * time.Second
		if err := h.redisClient.Set(redisCtx, cacheKey, payload, ttl).Err(); err != nil {
			// Caching is best-effort; a failed write only costs recomputation.
			slog.Warn("failed to cache recommendation", "key", cacheKey, "requestID", requestIDFromContext(r.Context()), "error", err)
		}
	}

	h.successResponse(w, r, "recommendations fetched", recommendation)
}
