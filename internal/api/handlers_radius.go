package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"timeless-mapper/internal/apperr"
	"timeless-mapper/internal/graph"
	"timeless-mapper/internal/jewel"
)

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	data, _ := s.current()
	status := map[string]interface{}{
		"ready": s.isReady(),
	}
	if data != nil {
		status["nodes"] = data.Tree.Len()
		status["sockets"] = len(data.Tree.JewelSockets())
		status["notables"] = data.Weights.Len()
		status["total_weight"] = data.Weights.TotalWeight()
	}
	writeJSON(w, status)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.cfg)
}

func (s *Server) handleFactions(w http.ResponseWriter, r *http.Request) {
	type factionInfo struct {
		Name     string `json:"name"`
		Keystone string `json:"keystone"`
	}
	data, _ := s.current()
	var out []factionInfo
	for _, f := range jewel.Factions() {
		info := factionInfo{Name: f}
		if data != nil {
			info.Keystone = data.Weights.Keystone(f)
		}
		out = append(out, info)
	}
	writeJSON(w, map[string]interface{}{
		"factions": out,
		"aliases":  jewel.FactionAliases(),
	})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if s.loader == nil {
		writeError(w, http.StatusServiceUnavailable, "reload is not configured")
		return
	}
	data, err := s.loader.Load(r.Context())
	if err != nil {
		log.Printf("[API] Reload error: %v", err)
		writeAppError(w, err)
		return
	}
	s.SetData(data)
	log.Printf("[API] Reference data reloaded: %d nodes", data.Tree.Len())
	writeJSON(w, map[string]interface{}{"status": "ok", "nodes": data.Tree.Len()})
}

func (s *Server) handleSockets(w http.ResponseWriter, r *http.Request) {
	data, _ := s.current()
	sockets := data.Tree.JewelSockets()
	if sockets == nil {
		sockets = []*graph.Node{}
	}
	writeJSON(w, sockets)
}

func (s *Server) handleSocketRadius(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "invalid socket id")
		return
	}
	radius, err := s.radiusQuery(r)
	if err != nil {
		writeAppError(w, err)
		return
	}
	data, _ := s.current()
	a, err := data.Tree.AnalyzeSocketRadius(id, radius)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, a)
}

func (s *Server) handleRadiusAll(w http.ResponseWriter, r *http.Request) {
	radius, err := s.radiusQuery(r)
	if err != nil {
		writeAppError(w, err)
		return
	}
	data, _ := s.current()
	all, err := data.Tree.AnalyzeAllSockets(radius)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, all)
}

type bestSocketRequest struct {
	Notables   []string `json:"notables"`
	Radius     *float64 `json:"radius"`
	RadiusName string   `json:"radius_name"`
}

func (s *Server) handleBestSocket(w http.ResponseWriter, r *http.Request) {
	var req bestSocketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "invalid json")
		return
	}
	radius, err := s.resolveRadius(req.RadiusName, req.Radius)
	if err != nil {
		writeAppError(w, err)
		return
	}
	_, scanner := s.current()
	res, err := scanner.BestSocket(r.Context(), req.Notables, radius)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, res)
}

func (s *Server) handleTreePath(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err1 := strconv.Atoi(q.Get("from"))
	to, err2 := strconv.Atoi(q.Get("to"))
	if err1 != nil || err2 != nil {
		writeError(w, 400, "from and to must be node ids")
		return
	}
	data, _ := s.current()
	for _, id := range []int{from, to} {
		if _, ok := data.Tree.Node(id); !ok {
			writeAppError(w, apperr.NotFoundf("node %d not found", id))
			return
		}
	}
	writeJSON(w, map[string]int{
		"from": from,
		"to":   to,
		"hops": data.Tree.ShortestPath(from, to),
	})
}

