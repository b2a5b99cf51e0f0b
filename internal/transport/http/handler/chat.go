package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nutribridge-api/internal/application/chat"
)

type chatMessageRequest struct {
	Text string `json:"text"`
}

// ChatHandler serves the advisory chat widget.
type ChatHandler struct {
	svc chat.Service
}

func NewChatHandler(svc chat.Service) *ChatHandler { return &ChatHandler{svc: svc} }

func (h *ChatHandler) Start(w http.ResponseWriter, r *http.Request) {
	reply, err := h.svc.Start(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, reply)
}

func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req chatMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	reply, err := h.svc.Send(r.Context(), chi.URLParam(r, "id"), req.Text)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if reply.Messages == nil {
		reply.Messages = []chat.Message{}
	}
	writeJSON(w, http.StatusOK, reply)
}

func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *ChatHandler) End(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.End(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "session ended"})
}
