package server

import (
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/xonecas/starnote/internal/format"
)

type formatRequest struct {
	Text   string `json:"text"`
	Cursor *int   `json:"cursor,omitempty"`
	Kind   string `json:"kind,omitempty"`
}

type formatResponse struct {
	HTML   string          `json:"html"`
	Plain  string          `json:"plain"`
	Within map[string]bool `json:"within,omitempty"`
}

// handleFormat renders raw text. With a cursor it also reports which
// formats surround it, or only the requested kind when one is given.
func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	var req formatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	resp := formatResponse{
		HTML:  format.FormatText(req.Text),
		Plain: format.StripFormatting(req.Text),
	}

	if req.Cursor != nil {
		kinds := format.Kinds
		if req.Kind != "" {
			k, err := format.ParseKind(req.Kind)
			if err != nil {
				writeMessage(w, http.StatusBadRequest, err.Error())
				return
			}
			kinds = []format.Kind{k}
		}
		resp.Within = make(map[string]bool, len(kinds))
		for _, k := range kinds {
			resp.Within[k.String()] = format.IsWithinFormatting(req.Text, *req.Cursor, k)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

type editRequest struct {
	Text   string `json:"text"`
	Cursor int    `json:"cursor"`
	Kind   string `json:"kind,omitempty"`
}

// handleEnter applies the list continuation rules for an Enter key press.
func (s *Server) handleEnter(w http.ResponseWriter, r *http.Request) {
	var req editRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	writeJSON(w, http.StatusOK, format.ContinueList(req.Text, req.Cursor))
}

// handleApply runs a toolbar action against the text.
func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	var req editRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	k, err := format.ParseKind(req.Kind)
	if err != nil {
		log.Debug().Str("kind", req.Kind).Msg("rejected format kind")
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, format.ApplyFormat(req.Text, req.Cursor, k))
}
