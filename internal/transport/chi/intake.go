package chi

import (
	"encoding/json"
	"net/http"
)

type draftReplyRequest struct {
	Ticket string `json:"ticket"`
}

type draftReplyResponse struct {
	Reply      string                 `json:"reply"`
	Candidates []searchResultResponse `json:"candidates"`
}

// DraftReply handles POST /api/v1/intake/draft-reply. Internal endpoint for
// the ticketing workflow; requires an editor key.
func (s *Server) DraftReply(w http.ResponseWriter, r *http.Request) {
	if !s.auth.IsEditor(r) {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req draftReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	draft, err := s.intake.DraftReply(r.Context(), req.Ticket)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := draftReplyResponse{
		Reply:      draft.Reply,
		Candidates: make([]searchResultResponse, len(draft.Candidates)),
	}
	for i, c := range draft.Candidates {
		resp.Candidates[i] = searchResultResponse{
			ArticleID:  c.ArticleID,
			Title:      c.Title,
			Content:    c.Content,
			Similarity: c.Similarity,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
