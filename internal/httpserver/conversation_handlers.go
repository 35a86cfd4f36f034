package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"dmchat/internal/domain"
	"dmchat/internal/service"
)

func handleListConversations(convSvc *service.ConversationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		currentUser := CurrentUser(r)
		if currentUser == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		convs, err := convSvc.ListForUser(r.Context(), currentUser.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		if convs == nil {
			convs = []*domain.Conversation{}
		}
		writeJSON(w, http.StatusOK, convs)
	}
}

// handleOpenConversation is the select-conversation entry point: it loads
// the thread, marks the partner's messages as read, and returns the
// refreshed conversation list in one response.
func handleOpenConversation(convSvc *service.ConversationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		currentUser := CurrentUser(r)
		if currentUser == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		partnerID := chi.URLParam(r, "partnerID")
		if partnerID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid partner id"})
			return
		}
		view, err := convSvc.Open(r.Context(), currentUser.ID, partnerID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func handleMarkConversationRead(convSvc *service.ConversationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		currentUser := CurrentUser(r)
		if currentUser == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		partnerID := chi.URLParam(r, "partnerID")
		if partnerID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid partner id"})
			return
		}
		marked, err := convSvc.MarkRead(r.Context(), currentUser.ID, partnerID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int64{"marked_read": marked})
	}
}
