package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"timeless-mapper/internal/engine"
	"timeless-mapper/internal/jewel"
)

type seedRequest struct {
	SocketID   int      `json:"socket_id"`
	Seed       uint32   `json:"seed"`
	Faction    string   `json:"faction"`
	Radius     *float64 `json:"radius"`
	RadiusName string   `json:"radius_name"`
}

func (s *Server) handleSeedAnalyze(w http.ResponseWriter, r *http.Request) {
	var req seedRequest
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
	start := time.Now()
	a, err := scanner.Analyze(r.Context(), req.SocketID, req.Seed, req.Faction, radius)
	if err != nil {
		writeAppError(w, err)
		return
	}
	durationMs := time.Since(start).Milliseconds()

	var historyID int64
	if s.db != nil {
		historyID, err = s.db.InsertAnalysis(requestID(r), a, durationMs)
		if err != nil {
			log.Printf("[API] Failed to save analysis history: %v", err)
		}
	}
	log.Printf("[API] Analyze: socket=%d seed=%d faction=%s radius=%.0f -> %d nodes in %dms",
		req.SocketID, req.Seed, a.Faction, radius, len(a.TransformedNodes), durationMs)

	writeJSON(w, map[string]interface{}{
		"analysis":   a,
		"history_id": historyID,
	})
}

type compareRequest struct {
	SocketID   int      `json:"socket_id"`
	Seeds      []uint32 `json:"seeds"`
	Faction    string   `json:"faction"`
	Radius     *float64 `json:"radius"`
	RadiusName string   `json:"radius_name"`
}

func (s *Server) handleSeedCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "invalid json")
		return
	}
	if len(req.Seeds) == 0 {
		writeError(w, 400, "seeds must not be empty")
		return
	}
	radius, err := s.resolveRadius(req.RadiusName, req.Radius)
	if err != nil {
		writeAppError(w, err)
		return
	}
	_, scanner := s.current()
	results, err := scanner.Compare(r.Context(), req.SocketID, req.Seeds, req.Faction, radius)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, results)
}

func (s *Server) handleSeedDistribution(w http.ResponseWriter, r *http.Request) {
	var req seedRequest
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
	dist, err := scanner.Distribution(r.Context(), req.SocketID, req.Seed, req.Faction, radius)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, dist)
}

type searchRequest struct {
	SocketID      int     `json:"socket_id"`
	TargetNotable string  `json:"target_notable"`
	TargetNodeID  int     `json:"target_node_id"`
	Faction       string  `json:"faction"`
	MinSeed       *uint32 `json:"min_seed"`
	MaxSeed       *uint32 `json:"max_seed"`
	MaxResults    int     `json:"max_results"`
}

func (s *Server) parseSearch(req searchRequest) jewel.SeedSearch {
	search := jewel.SeedSearch{
		SocketID:      req.SocketID,
		TargetNotable: req.TargetNotable,
		TargetNodeID:  req.TargetNodeID,
		Faction:       req.Faction,
		MinSeed:       s.cfg.SeedMin,
		MaxSeed:       s.cfg.SeedMax,
		MaxResults:    engine.EffectiveMaxResults(req.MaxResults, s.cfg.MaxResults),
	}
	if req.MinSeed != nil {
		search.MinSeed = *req.MinSeed
	}
	if req.MaxSeed != nil {
		search.MaxSeed = *req.MaxSeed
	}
	return search
}

// handleSeedSearch streams NDJSON: progress lines while shards complete,
// then a single result or error line.
func (s *Server) handleSeedSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "invalid json")
		return
	}
	search := s.parseSearch(req)

	_, scanner := s.current()
	// Argument errors are reported with a status code before streaming starts.
	if err := scanner.Mapper.ValidateSearch(search); err != nil {
		writeAppError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, 500, "streaming not supported")
		return
	}

	log.Printf("[API] Seed search starting: socket=%d node=%d notable=%q faction=%s seeds=%d-%d",
		search.SocketID, search.TargetNodeID, search.TargetNotable, search.Faction, search.MinSeed, search.MaxSeed)
	startTime := time.Now()

	seeds, err := scanner.FindSeeds(r.Context(), search, func(msg string) {
		line, _ := json.Marshal(map[string]string{"type": "progress", "message": msg})
		fmt.Fprintf(w, "%s\n", line)
		flusher.Flush()
	})
	if err != nil {
		log.Printf("[API] Seed search error: %v", err)
		line, _ := json.Marshal(map[string]string{"type": "error", "message": err.Error()})
		fmt.Fprintf(w, "%s\n", line)
		flusher.Flush()
		return
	}
	if seeds == nil {
		seeds = []uint32{}
	}

	durationMs := time.Since(startTime).Milliseconds()
	log.Printf("[API] Seed search complete: %d seeds in %dms", len(seeds), durationMs)

	line, _ := json.Marshal(map[string]interface{}{
		"type":        "result",
		"seeds":       seeds,
		"count":       len(seeds),
		"duration_ms": durationMs,
	})
	fmt.Fprintf(w, "%s\n", line)
	flusher.Flush()
}
