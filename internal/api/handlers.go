// Package api exposes HTTP handlers for the club service.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"example.com/club/internal/assistant"
	"example.com/club/internal/auth"
	"example.com/club/internal/domain"
)

// Handler coordinates HTTP requests with the domain services.
type Handler struct {
	registry   *domain.Registry
	ledger     *domain.Ledger
	aggregator *domain.Aggregator
	standings  *domain.Standings
	assistant  *assistant.Service
}

// NewHandler builds a Handler.
func NewHandler(registry *domain.Registry, ledger *domain.Ledger, aggregator *domain.Aggregator, standings *domain.Standings, assist *assistant.Service) *Handler {
	return &Handler{
		registry:   registry,
		ledger:     ledger,
		aggregator: aggregator,
		standings:  standings,
		assistant:  assist,
	}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/activities", h.activities)
	mux.HandleFunc("/v1/activities/", h.activitySubtree)
	mux.HandleFunc("/v1/checkins/", h.checkInSubtree)
	mux.HandleFunc("/v1/users/ranking", h.ranking)
	mux.HandleFunc("/v1/assistant/history", h.assistantHistory)
	mux.HandleFunc("/v1/assistant/messages", h.assistantMessage)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) activities(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listActivities(w, r)
	case http.MethodPost:
		h.createActivity(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

// activitySubtree dispatches /v1/activities/{id} and its child resources.
func (h *Handler) activitySubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/activities/")
	id, child, _ := strings.Cut(rest, "/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing activity id")
		return
	}

	switch child {
	case "":
		switch r.Method {
		case http.MethodGet:
			h.getActivity(w, r, id)
		case http.MethodPut:
			h.updateActivity(w, r, id)
		case http.MethodDelete:
			h.deleteActivity(w, r, id)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		}
	case "participants":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
			return
		}
		h.listParticipants(w, r, id)
	case "checkins":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
			return
		}
		h.submitCheckIn(w, r, id)
	default:
		writeError(w, http.StatusNotFound, "not_found", "unknown resource")
	}
}

// checkInSubtree dispatches /v1/checkins/{id}/review.
func (h *Handler) checkInSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/checkins/")
	id, child, _ := strings.Cut(rest, "/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing check-in id")
		return
	}
	if child != "review" {
		writeError(w, http.StatusNotFound, "not_found", "unknown resource")
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	h.reviewCheckIn(w, r, id)
}

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	activities, err := h.registry.ListActivities(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	views := make([]ActivityView, 0, len(activities))
	for _, a := range activities {
		views = append(views, toActivityView(a))
	}
	writeJSON(w, http.StatusOK, ListActivitiesResponse{Activities: views})
}

func (h *Handler) getActivity(w http.ResponseWriter, r *http.Request, id string) {
	activity, err := h.registry.GetActivity(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toActivityView(*activity))
}

func (h *Handler) createActivity(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}

	var req CreateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	activity, err := h.registry.CreateActivity(r.Context(), req.ToInput())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toActivityView(*activity))
}

func (h *Handler) updateActivity(w http.ResponseWriter, r *http.Request, id string) {
	if !requireAdmin(w, r) {
		return
	}

	var req UpdateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	activity, err := h.registry.UpdateActivity(r.Context(), id, req.Patch)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toActivityView(*activity))
}

func (h *Handler) deleteActivity(w http.ResponseWriter, r *http.Request, id string) {
	if !requireAdmin(w, r) {
		return
	}

	deleted, err := h.registry.DeleteActivity(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := DeleteActivityResponse{Message: "activity deleted"}
	resp.Deleted.ActivityID = deleted.ID
	resp.Deleted.Title = deleted.Title
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) listParticipants(w http.ResponseWriter, r *http.Request, id string) {
	if !requireAdmin(w, r) {
		return
	}

	report, err := h.aggregator.ListParticipants(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toParticipantsResponse(*report))
}

func (h *Handler) submitCheckIn(w http.ResponseWriter, r *http.Request, activityID string) {
	claims, ok := requireMember(w, r)
	if !ok {
		return
	}

	var req SubmitCheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	checkIn, err := h.ledger.SubmitCheckIn(r.Context(), claims.Subject, activityID, req.Evidence)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCheckInView(*checkIn))
}

func (h *Handler) reviewCheckIn(w http.ResponseWriter, r *http.Request, checkInID string) {
	if !requireAdmin(w, r) {
		return
	}

	var req ReviewCheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	checkIn, receipt, err := h.ledger.ReviewCheckIn(r.Context(), checkInID, domain.CheckInStatus(req.Decision))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := ReviewCheckInResponse{CheckIn: toCheckInView(*checkIn)}
	if receipt != nil {
		resp.Reward = &RewardView{
			UserID:     receipt.UserID,
			Gems:       receipt.Gems,
			NewBalance: receipt.NewBalance,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ranking(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	standings, err := h.standings.Top(r.Context(), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	views := make([]StandingView, 0, len(standings))
	for _, s := range standings {
		views = append(views, StandingView{
			UserID:     s.UserID,
			Username:   s.Username,
			Avatar:     s.Avatar,
			GemBalance: s.GemBalance,
		})
	}
	writeJSON(w, http.StatusOK, RankingResponse{Standings: views})
}

func (h *Handler) assistantHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if _, ok := requireMember(w, r); !ok {
		return
	}

	turns := h.assistant.History(r.Context())
	resp := AssistantHistoryResponse{Messages: make([]AssistantTurn, 0, len(turns))}
	for _, t := range turns {
		resp.Messages = append(resp.Messages, AssistantTurn{Role: t.Role, Text: t.Text})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) assistantMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if _, ok := requireMember(w, r); !ok {
		return
	}

	var req AssistantMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	reply, err := h.assistant.Reply(r.Context(), req.Message, req.ToTurns())
	if err != nil {
		if errors.Is(err, assistant.ErrUnavailable) {
			writeError(w, http.StatusBadGateway, "assistant_unavailable", "assistant is unavailable")
			return
		}
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AssistantMessageResponse{Reply: reply})
}

// requireAdmin checks the caller holds the admin scope, writing the error
// response itself when not.
func requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return false
	}
	if !claims.IsAdmin() {
		writeError(w, http.StatusForbidden, "forbidden", "scope "+auth.ScopeAdmin+" required")
		return false
	}
	return true
}

// requireMember checks the caller holds the member scope (admins qualify),
// writing the error response itself when not.
func requireMember(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return nil, false
	}
	if !claims.IsMember() {
		writeError(w, http.StatusForbidden, "forbidden", "scope "+auth.ScopeMember+" required")
		return nil, false
	}
	return claims, true
}

// writeDomainError maps domain errors onto HTTP statuses. Unrecognized errors
// are logged and reported without internal detail.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsValidation(err):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, domain.ErrActivityNotFound), errors.Is(err, domain.ErrCheckInNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrDuplicateCheckIn), errors.Is(err, domain.ErrActivityHasCheckIns):
		writeError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, domain.ErrCheckInClosed):
		writeError(w, http.StatusPreconditionFailed, "precondition_failed", err.Error())
	case errors.Is(err, domain.ErrAlreadyDecided), errors.Is(err, domain.ErrInvalidStatusTransition):
		writeError(w, http.StatusConflict, "invalid_transition", err.Error())
	default:
		logrus.WithError(err).Error("request failed")
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
