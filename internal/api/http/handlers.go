package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"groupkeeper-backend/internal/domain"
	"groupkeeper-backend/internal/service"

	"github.com/gorilla/mux"
)

const maxBodyBytes = 64 << 10

type Handler struct {
	keys       service.KeyService
	redemption service.RedemptionService
	membership service.MembershipService
	session    service.SessionService
}

func NewHandler(keys service.KeyService, redemption service.RedemptionService, membership service.MembershipService, session service.SessionService) *Handler {
	return &Handler{
		keys:       keys,
		redemption: redemption,
		membership: membership,
		session:    session,
	}
}

type redeemRequest struct {
	Code     string `json:"code"`
	Username string `json:"username"`
}

type setRankRequest struct {
	Rank string `json:"rank"`
}

type generateRequest struct {
	Count  int `json:"count"`
	Length int `json:"length,omitempty"`
}

func decodeBody(r *http.Request, v any) error {
	body := io.LimitReader(r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", domain.ErrInvalidArgument, err)
	}
	return nil
}

func (h *Handler) Redeem(w http.ResponseWriter, r *http.Request) {
	var req redeemRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.redemption.Redeem(r.Context(), req.Code, req.Username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, res)
}

func (h *Handler) Promote(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, domain.DirectionUp)
}

func (h *Handler) Demote(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, domain.DirectionDown)
}

func (h *Handler) adjust(w http.ResponseWriter, r *http.Request, direction domain.Direction) {
	change, err := h.membership.AdjustRank(r.Context(), mux.Vars(r)["username"], direction)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, change)
}

func (h *Handler) SetRank(w http.ResponseWriter, r *http.Request) {
	var req setRankRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	change, err := h.membership.SetRank(r.Context(), mux.Vars(r)["username"], req.Rank)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, change)
}

func (h *Handler) MemberInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.membership.MemberInfo(r.Context(), mux.Vars(r)["username"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, info)
}

func (h *Handler) Kick(w http.ResponseWriter, r *http.Request) {
	user, err := h.membership.Kick(r.Context(), mux.Vars(r)["username"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, map[string]any{"user": user})
}

func (h *Handler) GenerateKeys(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	codes, err := h.keys.Generate(r.Context(), req.Count, req.Length)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, map[string]any{"codes": codes, "count": len(codes)})
}

func (h *Handler) ListKeys(w http.ResponseWriter, r *http.Request) {
	codes, err := h.keys.ListActive(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, map[string]any{"codes": codes, "count": len(codes)})
}

func (h *Handler) WipeKeys(w http.ResponseWriter, r *http.Request) {
	n, err := h.keys.Wipe(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, map[string]any{"removed": n})
}

// Healthz reports process liveness plus the last platform session check. The
// process stays healthy when the session is invalid.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	status := h.session.Status()
	state := "ok"
	if status.Checked && !status.Valid {
		state = "degraded"
	}
	writeOK(w, map[string]any{"status": state, "session": status})
}
