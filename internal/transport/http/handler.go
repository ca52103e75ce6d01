package http

import (
	"context"
	"net/http"

	"github.com/tonsky/tonsky.me/internal/domain"
	"github.com/tonsky/tonsky.me/internal/page"
)

// Source is the page as seen by the diagnostics endpoints.
type Source interface {
	Roster(ctx context.Context) ([]domain.PeerRecord, error)
	Cursors(ctx context.Context) ([]domain.CursorSample, error)
	Status(ctx context.Context) (page.Status, error)
}

type Handler struct {
	src Source
}

func NewHandler(src Source) *Handler {
	return &Handler{src: src}
}

type PeerItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Animal      string `json:"animal"`
	Flag        string `json:"flag,omitempty"`
	CountryCode string `json:"country_code"`
	Visible     bool   `json:"visible"`
	Self        bool   `json:"self,omitempty"`
	TimeJoined  int64  `json:"time_joined"`
}

type CursorItem struct {
	ID       int64  `json:"id"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Platform string `json:"platform,omitempty"`
	Epoch    uint64 `json:"epoch"`
}

// GET /healthz
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// GET /status
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	st, err := h.src.Status(r.Context())
	if err != nil {
		fail(r.Context(), w, err)
		return
	}
	ok(r.Context(), w, st)
}

// GET /roster
func (h *Handler) Roster(w http.ResponseWriter, r *http.Request) {
	peers, err := h.src.Roster(r.Context())
	if err != nil {
		fail(r.Context(), w, err)
		return
	}

	items := make([]PeerItem, 0, len(peers))
	for _, p := range peers {
		flag, _ := domain.FlagEmoji(p.CountryCode)
		items = append(items, PeerItem{
			ID:          p.ID,
			Title:       domain.Title(p),
			Animal:      domain.AnimalFor(p.ID).Emoji,
			Flag:        flag,
			CountryCode: p.CountryCode,
			Visible:     p.Visible,
			Self:        p.Self,
			TimeJoined:  p.TimeJoined,
		})
	}
	ok(r.Context(), w, items)
}

// GET /cursors
func (h *Handler) Cursors(w http.ResponseWriter, r *http.Request) {
	samples, err := h.src.Cursors(r.Context())
	if err != nil {
		fail(r.Context(), w, err)
		return
	}

	items := make([]CursorItem, 0, len(samples))
	for _, s := range samples {
		items = append(items, CursorItem{
			ID:       s.ID,
			X:        s.X,
			Y:        s.Y,
			Platform: string(s.Platform),
			Epoch:    s.Epoch,
		})
	}
	ok(r.Context(), w, items)
}
