package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"timeless-mapper/internal/db"
)

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.HistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	records := s.db.GetHistory(limit)
	if records == nil {
		records = []db.AnalysisRecord{}
	}
	writeJSON(w, records)
}

func (s *Server) handleGetHistoryByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, 400, "invalid id")
		return
	}
	rec := s.db.GetHistoryByID(id)
	if rec == nil {
		writeError(w, 404, "not found")
		return
	}
	writeJSON(w, map[string]interface{}{
		"record": rec,
		"nodes":  s.db.GetAnalysisNodes(id),
	})
}

func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, 400, "invalid id")
		return
	}
	if err := s.db.DeleteHistory(id); err != nil {
		writeError(w, 500, err.Error())
		return
	}
	writeJSON(w, map[string]string{"status": "deleted"})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OlderThanDays int `json:"older_than_days"`
	}
	// An empty body clears everything.
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, 400, "invalid json")
			return
		}
	}
	if req.OlderThanDays < 0 {
		writeError(w, 400, "older_than_days must be >= 0")
		return
	}
	deleted, err := s.db.ClearHistory(req.OlderThanDays)
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	log.Printf("[API] Cleared %d history records older than %d days", deleted, req.OlderThanDays)
	writeJSON(w, map[string]interface{}{"deleted": deleted})
}

func (s *Server) handleGetSavedSeeds(w http.ResponseWriter, r *http.Request) {
	seeds := s.db.ListSavedSeeds()
	if seeds == nil {
		seeds = []db.SavedSeed{}
	}
	writeJSON(w, seeds)
}

func (s *Server) handleAddSavedSeed(w http.ResponseWriter, r *http.Request) {
	var req db.SavedSeed
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "invalid json")
		return
	}
	if req.SocketID == 0 || req.Faction == "" {
		writeError(w, 400, "socket_id and faction are required")
		return
	}
	if data, _ := s.current(); data != nil {
		if _, ok := data.Tree.Node(req.SocketID); !ok {
			writeError(w, 404, "socket not found")
			return
		}
	}
	id, inserted := s.db.AddSavedSeed(req)
	if !inserted {
		writeError(w, 409, "seed already saved")
		return
	}
	req.ID = id
	writeJSON(w, req)
}

func (s *Server) handleUpdateSavedSeed(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, 400, "invalid id")
		return
	}
	var req struct {
		Note string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "invalid json")
		return
	}
	if !s.db.UpdateSavedSeedNote(id, req.Note) {
		writeError(w, 404, "not found")
		return
	}
	writeJSON(w, map[string]string{"status": "updated"})
}

func (s *Server) handleDeleteSavedSeed(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, 400, "invalid id")
		return
	}
	s.db.DeleteSavedSeed(id)
	writeJSON(w, map[string]string{"status": "deleted"})
}
