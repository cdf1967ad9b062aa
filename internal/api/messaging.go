package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/matheus3301/fleetchat/internal/conversation"
	"github.com/matheus3301/fleetchat/internal/model"
	"github.com/matheus3301/fleetchat/internal/store"
	"go.uber.org/zap"
)

type sendRequest struct {
	Content          string   `json:"content"`
	RecipientUserIDs []string `json:"recipientUserIds"`
	RecipientEmails  []string `json:"recipientEmails"`
	ConversationID   string   `json:"conversationId"`
	GroupID          string   `json:"groupId"`
	ContentKind      string   `json:"contentKind"`
}

type sendResponse struct {
	MessageID string          `json:"messageId"`
	SentAt    model.Timestamp `json:"sentAt"`
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	uid := userFrom(r.Context())
	if uid == "" {
		respondError(w, http.StatusUnauthorized, UserHeader+" header is required")
		return
	}
	var req sendRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		respondError(w, http.StatusBadRequest, "content is required")
		return
	}
	// A group conversation key is enough to address the group.
	if req.GroupID == "" {
		if gid, ok := conversation.GroupIDOf(req.ConversationID); ok {
			req.GroupID = gid
		}
	}

	m, err := h.store.CreateMessage(r.Context(), store.NewMessage{
		SenderID:         uid,
		Content:          req.Content,
		ContentKind:      req.ContentKind,
		RecipientUserIDs: req.RecipientUserIDs,
		RecipientEmails:  req.RecipientEmails,
		ConversationID:   req.ConversationID,
		GroupID:          req.GroupID,
		EchoToSender:     h.echo,
	})
	switch {
	case errors.Is(err, store.ErrNoRecipients), errors.Is(err, store.ErrNoConversation),
		errors.Is(err, conversation.ErrAmbiguousID):
		respondError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, store.ErrNotMember):
		respondError(w, http.StatusForbidden, err.Error())
		return
	case errors.Is(err, store.ErrGroupNotFound):
		respondError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		h.logger.Error("create message failed", zap.Error(err), zap.String("sender", uid))
		respondError(w, http.StatusInternalServerError, "send failed")
		return
	}

	if req.ConversationID != "" && req.ConversationID != m.ConversationID {
		h.logger.Warn("client conversation id differs from stored key",
			zap.String("client", req.ConversationID), zap.String("stored", m.ConversationID))
	}
	respondJSON(w, http.StatusOK, sendResponse{MessageID: m.ID, SentAt: m.Record().SentAt})
}

type messagesResponse struct {
	Messages []model.Record `json:"messages"`
}

func records(msgs []store.Message) messagesResponse {
	out := make([]model.Record, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Record())
	}
	return messagesResponse{Messages: out}
}

func (h *Handler) handlePull(w http.ResponseWriter, r *http.Request) {
	uid := userFrom(r.Context())
	if uid == "" {
		respondError(w, http.StatusUnauthorized, UserHeader+" header is required")
		return
	}
	var req struct {
		Limit int `json:"limit"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	msgs, err := h.store.PullInbox(r.Context(), uid, req.Limit)
	if err != nil {
		h.logger.Error("pull inbox failed", zap.Error(err), zap.String("user_id", uid))
		respondError(w, http.StatusInternalServerError, "pull failed")
		return
	}
	respondJSON(w, http.StatusOK, records(msgs))
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	convID := chi.URLParam(r, "conversationID")
	var req struct {
		UserID   string `json:"userId"`
		Page     int    `json:"page"`
		PageSize int    `json:"pageSize"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	uid := userFrom(r.Context())
	if uid == "" {
		uid = strings.TrimSpace(req.UserID)
		if err := conversation.ValidateParticipantID(uid); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if uid == "" {
		respondError(w, http.StatusUnauthorized, "userId is required")
		return
	}

	allowed, err := h.canRead(r, convID, uid)
	if err != nil {
		h.logger.Error("history access check failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "history failed")
		return
	}
	if !allowed {
		respondError(w, http.StatusForbidden, "not a participant of "+convID)
		return
	}

	msgs, err := h.store.History(r.Context(), convID, req.Page, req.PageSize)
	if err != nil {
		h.logger.Error("history failed", zap.Error(err), zap.String("conversation_id", convID))
		respondError(w, http.StatusInternalServerError, "history failed")
		return
	}
	respondJSON(w, http.StatusOK, records(msgs))
}

func (h *Handler) canRead(r *http.Request, convID, uid string) (bool, error) {
	if gid, ok := conversation.GroupIDOf(convID); ok {
		return h.store.IsMember(r.Context(), gid, uid)
	}
	return conversation.HasDirectParticipant(convID, uid), nil
}

func (h *Handler) handleGroup(w http.ResponseWriter, r *http.Request) {
	gid := chi.URLParam(r, "groupID")
	uid := userFrom(r.Context())
	if uid == "" {
		respondError(w, http.StatusUnauthorized, "userId is required")
		return
	}

	g, err := h.store.GetGroup(r.Context(), gid)
	if err != nil {
		h.logger.Error("get group failed", zap.Error(err), zap.String("group_id", gid))
		respondError(w, http.StatusInternalServerError, "group lookup failed")
		return
	}
	if g == nil {
		respondError(w, http.StatusNotFound, "group not found")
		return
	}
	isMember := false
	for _, m := range g.Members {
		if m.UserID == uid {
			isMember = true
			break
		}
	}
	if !isMember {
		respondError(w, http.StatusForbidden, "not a member of "+gid)
		return
	}
	respondJSON(w, http.StatusOK, g)
}

func (h *Handler) handleContacts(w http.ResponseWriter, r *http.Request) {
	uid := userFrom(r.Context())
	if uid == "" {
		respondError(w, http.StatusUnauthorized, UserHeader+" header is required")
		return
	}
	contacts, err := h.store.ListContacts(r.Context(), uid)
	if err != nil {
		h.logger.Error("list contacts failed", zap.Error(err), zap.String("user_id", uid))
		respondError(w, http.StatusInternalServerError, "contacts failed")
		return
	}
	respondJSON(w, http.StatusOK, contacts)
}
