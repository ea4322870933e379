package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"example.com/loupgarou/internal/room"
	"example.com/loupgarou/internal/token"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

const qrSize = 320

type RoomDirectory interface {
	Count() int
	Info(code string) (room.Snapshot, error)
}

type RoleLookup interface {
	Lookup(ctx context.Context, token string) (token.View, error)
}

type Handler struct {
	Rooms   RoomDirectory
	Tokens  RoleLookup
	Version string
	// BaseURL overrides the scheme and host of invitation links.
	BaseURL string
	Now     func() time.Time
	Log     *slog.Logger
}

type StatusResponse struct {
	Status      string    `json:"status"`
	ActiveRooms int       `json:"activeRooms"`
	Timestamp   time.Time `json:"timestamp"`
}

func (h *Handler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/role/:token", h.Role)
	router.GET("/api/status", h.Status)
	router.GET("/api/rooms/:code/qr", h.InviteQR)
	router.GET("/healthz", h.Healthz)
	router.GET("/version", h.ShowVersion)
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *Handler) log() *slog.Logger {
	if h.Log != nil {
		return h.Log
	}
	return slog.Default()
}

// Role resolves a role token to its view.
func (h *Handler) Role(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	w.Header().Set("Cache-Control", "no-store")

	v, err := h.Tokens.Lookup(r.Context(), ps.ByName("token"))
	if errors.Is(err, token.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "Token not found")
		return
	}
	if err != nil {
		h.log().Error("lookup token", "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to load role")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, StatusResponse{
		Status:      "online",
		ActiveRooms: h.Rooms.Count(),
		Timestamp:   h.now().UTC(),
	})
}

// InviteQR renders a PNG QR code of the link that joins the room.
func (h *Handler) InviteQR(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	snap, err := h.Rooms.Info(ps.ByName("code"))
	if errors.Is(err, room.ErrRoomNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "room not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "failed to load room")
		return
	}

	link := h.inviteURL(r, snap.Code)
	png, err := qrcode.Encode(link, qrcode.Medium, qrSize)
	if err != nil {
		h.log().Error("qr encode", "room", snap.Code, "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "qr generation failed")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(png)
}

func (h *Handler) inviteURL(r *http.Request, code string) string {
	base := strings.TrimRight(h.BaseURL, "/")
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto, ok := forwardedProto(r); ok {
			scheme = proto
		}
		base = scheme + "://" + r.Host
	}
	return base + "/?room=" + url.QueryEscape(code)
}

// forwardedProto reads the first X-Forwarded-Proto hop; only http and https count.
func forwardedProto(r *http.Request) (string, bool) {
	v := r.Header.Get("X-Forwarded-Proto")
	if i := strings.IndexByte(v, ','); i >= 0 {
		v = v[:i]
	}
	switch p := strings.ToLower(strings.TrimSpace(v)); p {
	case "http", "https":
		return p, true
	}
	return "", false
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ShowVersion(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]string{"version": h.Version})
}
