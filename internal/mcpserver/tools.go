package mcpserver

import (
	"context"
	"sort"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"timeless-mapper/internal/apperr"
	"timeless-mapper/internal/config"
	"timeless-mapper/internal/engine"
	"timeless-mapper/internal/graph"
	"timeless-mapper/internal/jewel"
)

// resolveRadius picks a radius: a preset name wins over an explicit value,
// and the configured default applies when both are empty.
func resolveRadius(cfg *config.Config, name string, value *float64) (float64, error) {
	if name != "" {
		r, ok := graph.RadiusByName(name)
		if !ok {
			return 0, apperr.InvalidArgumentf("unknown radius %q", name)
		}
		return r, nil
	}
	if value != nil {
		return *value, nil
	}
	return cfg.DefaultRadius, nil
}

// SocketsInput is empty; jewel_sockets takes no arguments.
type SocketsInput struct{}

// SocketInfo describes one jewel socket.
type SocketInfo struct {
	ID int     `json:"id" jsonschema:"passive node id of the socket"`
	X  float64 `json:"x" jsonschema:"x coordinate"`
	Y  float64 `json:"y" jsonschema:"y coordinate"`
}

// SocketsResult lists the jewel sockets.
type SocketsResult struct {
	Sockets []SocketInfo `json:"sockets" jsonschema:"jewel sockets ordered by id"`
}

// SocketsTool defines the jewel_sockets tool.
func SocketsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "jewel_sockets",
		Description: "Lists every jewel socket in the passive tree with its coordinates.",
	}
}

// SocketsHandler lists jewel sockets.
func SocketsHandler(scanner *engine.Scanner) mcp.ToolHandlerFor[SocketsInput, SocketsResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ SocketsInput) (*mcp.CallToolResult, SocketsResult, error) {
		result := SocketsResult{Sockets: []SocketInfo{}}
		for _, s := range scanner.Tree().JewelSockets() {
			result.Sockets = append(result.Sockets, SocketInfo{ID: s.ID, X: s.X, Y: s.Y})
		}
		return nil, result, nil
	}
}

// SocketRadiusInput is the jewel_socket_radius input.
type SocketRadiusInput struct {
	SocketID   int      `json:"socket_id" jsonschema:"jewel socket node id"`
	Radius     *float64 `json:"radius,omitempty" jsonschema:"radius in tree units, default from config"`
	RadiusName string   `json:"radius_name,omitempty" jsonschema:"preset name: small, medium, large or very large"`
}

// SocketRadiusResult summarizes the passives around a socket.
type SocketRadiusResult struct {
	SocketID      int      `json:"socket_id" jsonschema:"jewel socket node id"`
	Radius        float64  `json:"radius" jsonschema:"radius used"`
	RadiusName    string   `json:"radius_name" jsonschema:"preset name or Custom"`
	Keystones     int      `json:"keystones" jsonschema:"keystones in radius"`
	Notables      int      `json:"notables" jsonschema:"notables in radius"`
	Smalls        int      `json:"smalls" jsonschema:"small passives in radius"`
	NotableNames  []string `json:"notable_names" jsonschema:"notable names, nearest first"`
	KeystoneNames []string `json:"keystone_names" jsonschema:"keystone names, nearest first"`
}

// SocketRadiusTool defines the jewel_socket_radius tool.
func SocketRadiusTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "jewel_socket_radius",
		Description: "Counts the keystones, notables and small passives within a radius of a jewel socket.",
	}
}

// SocketRadiusHandler analyzes one socket's radius.
func SocketRadiusHandler(scanner *engine.Scanner, cfg *config.Config) mcp.ToolHandlerFor[SocketRadiusInput, SocketRadiusResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SocketRadiusInput) (*mcp.CallToolResult, SocketRadiusResult, error) {
		radius, err := resolveRadius(cfg, input.RadiusName, input.Radius)
		if err != nil {
			return nil, SocketRadiusResult{}, err
		}
		a, err := scanner.Tree().AnalyzeSocketRadius(input.SocketID, radius)
		if err != nil {
			return nil, SocketRadiusResult{}, err
		}
		return nil, SocketRadiusResult{
			SocketID:      a.Socket.ID,
			Radius:        a.Radius,
			RadiusName:    a.RadiusName,
			Keystones:     a.Keystones,
			Notables:      a.Notables,
			Smalls:        a.Smalls,
			NotableNames:  a.NotableNames,
			KeystoneNames: a.KeystoneNames,
		}, nil
	}
}

// SeedInput identifies one seed at one socket.
type SeedInput struct {
	SocketID   int      `json:"socket_id" jsonschema:"jewel socket node id"`
	Seed       uint32   `json:"seed" jsonschema:"jewel seed"`
	Faction    string   `json:"faction" jsonschema:"conqueror: Amanamu, Ulaman, Kurgal, Tacati or Doryani"`
	Radius     *float64 `json:"radius,omitempty" jsonschema:"radius in tree units, default from config"`
	RadiusName string   `json:"radius_name,omitempty" jsonschema:"preset name: small, medium, large or very large"`
}

// NodeResult is one transformed passive.
type NodeResult struct {
	NodeID       int     `json:"node_id" jsonschema:"original passive node id"`
	OriginalName string  `json:"original_name" jsonschema:"original passive name"`
	OriginalType string  `json:"original_type" jsonschema:"keystone, notable or small"`
	NewName      string  `json:"new_name" jsonschema:"name after transformation"`
	NewID        string  `json:"new_id" jsonschema:"id of the replacement passive"`
	Distance     float64 `json:"distance" jsonschema:"distance from the socket"`
	Hops         int     `json:"hops" jsonschema:"edges from the socket, -1 if unreachable"`
	Tribute      int     `json:"tribute" jsonschema:"tribute granted by a small passive"`
}

// AnalyzeResult is the outcome of one seed at one socket.
type AnalyzeResult struct {
	SocketID         int          `json:"socket_id" jsonschema:"jewel socket node id"`
	Seed             uint32       `json:"seed" jsonschema:"jewel seed"`
	Faction          string       `json:"faction" jsonschema:"canonical conqueror name"`
	Keystone         string       `json:"keystone" jsonschema:"keystone granted by the faction"`
	Radius           float64      `json:"radius" jsonschema:"radius used"`
	RadiusName       string       `json:"radius_name" jsonschema:"preset name or Custom"`
	TotalTribute     int          `json:"total_tribute" jsonschema:"sum of tribute over small passives"`
	NotableCount     int          `json:"notable_count" jsonschema:"transformed notables"`
	SmallCount       int          `json:"small_count" jsonschema:"transformed small passives"`
	KeystoneReplaced bool         `json:"keystone_replaced" jsonschema:"whether a keystone was in radius"`
	Nodes            []NodeResult `json:"nodes,omitempty" jsonschema:"transformed passives, nearest first"`
}

func analyzeResult(a *jewel.SeedAnalysis, withNodes bool) AnalyzeResult {
	out := AnalyzeResult{
		Seed:             a.Seed,
		Faction:          a.Faction,
		Keystone:         a.Keystone,
		Radius:           a.Radius,
		RadiusName:       a.RadiusName,
		TotalTribute:     a.TotalTribute,
		NotableCount:     a.NotableCount,
		SmallCount:       a.SmallCount,
		KeystoneReplaced: a.KeystoneReplaced,
	}
	if a.Socket != nil {
		out.SocketID = a.Socket.ID
	}
	if !withNodes {
		return out
	}
	out.Nodes = make([]NodeResult, 0, len(a.TransformedNodes))
	for _, n := range a.TransformedNodes {
		out.Nodes = append(out.Nodes, NodeResult{
			NodeID:       n.OriginalNodeID,
			OriginalName: n.OriginalName,
			OriginalType: string(n.OriginalKind),
			NewName:      n.NewName,
			NewID:        n.NewID,
			Distance:     n.Distance,
			Hops:         n.Hops,
			Tribute:      n.TributeValue,
		})
	}
	return out
}

// AnalyzeTool defines the timeless_seed_analyze tool.
func AnalyzeTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "timeless_seed_analyze",
		Description: "Applies a Timeless Jewel seed at a socket and returns every transformed passive.",
	}
}

// AnalyzeHandler analyzes one seed.
func AnalyzeHandler(scanner *engine.Scanner, cfg *config.Config) mcp.ToolHandlerFor[SeedInput, AnalyzeResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SeedInput) (*mcp.CallToolResult, AnalyzeResult, error) {
		radius, err := resolveRadius(cfg, input.RadiusName, input.Radius)
		if err != nil {
			return nil, AnalyzeResult{}, err
		}
		a, err := scanner.Analyze(ctx, input.SocketID, input.Seed, input.Faction, radius)
		if err != nil {
			return nil, AnalyzeResult{}, err
		}
		return nil, analyzeResult(a, true), nil
	}
}

// CompareInput is the timeless_seed_compare input.
type CompareInput struct {
	SocketID   int      `json:"socket_id" jsonschema:"jewel socket node id"`
	Seeds      []uint32 `json:"seeds" jsonschema:"seeds to compare"`
	Faction    string   `json:"faction" jsonschema:"conqueror name"`
	Radius     *float64 `json:"radius,omitempty" jsonschema:"radius in tree units, default from config"`
	RadiusName string   `json:"radius_name,omitempty" jsonschema:"preset name: small, medium, large or very large"`
}

// CompareResult holds one summary per seed, in input order.
type CompareResult struct {
	Results []AnalyzeResult `json:"results" jsonschema:"per-seed summaries in input order"`
}

// CompareTool defines the timeless_seed_compare tool.
func CompareTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "timeless_seed_compare",
		Description: "Summarizes several seeds at the same socket for side-by-side comparison.",
	}
}

// CompareHandler compares seeds.
func CompareHandler(scanner *engine.Scanner, cfg *config.Config) mcp.ToolHandlerFor[CompareInput, CompareResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CompareInput) (*mcp.CallToolResult, CompareResult, error) {
		if len(input.Seeds) == 0 {
			return nil, CompareResult{}, apperr.InvalidArgumentf("seeds must not be empty")
		}
		radius, err := resolveRadius(cfg, input.RadiusName, input.Radius)
		if err != nil {
			return nil, CompareResult{}, err
		}
		all, err := scanner.Compare(ctx, input.SocketID, input.Seeds, input.Faction, radius)
		if err != nil {
			return nil, CompareResult{}, err
		}
		result := CompareResult{Results: make([]AnalyzeResult, 0, len(all))}
		for _, a := range all {
			result.Results = append(result.Results, analyzeResult(a, false))
		}
		return nil, result, nil
	}
}

// SearchInput is the timeless_seed_search input.
type SearchInput struct {
	SocketID      int     `json:"socket_id" jsonschema:"jewel socket node id"`
	TargetNodeID  int     `json:"target_node_id" jsonschema:"notable passive that must be transformed"`
	TargetNotable string  `json:"target_notable" jsonschema:"replacement notable name wanted at the target node"`
	Faction       string  `json:"faction" jsonschema:"conqueror name"`
	MinSeed       *uint32 `json:"min_seed,omitempty" jsonschema:"first seed to try, defaults to the configured minimum"`
	MaxSeed       *uint32 `json:"max_seed,omitempty" jsonschema:"last seed to try, defaults to the configured maximum"`
	MaxResults    int     `json:"max_results,omitempty" jsonschema:"maximum seeds to return, default 10"`
}

// SearchResult lists matching seeds in ascending order.
type SearchResult struct {
	Seeds []uint32 `json:"seeds" jsonschema:"matching seeds, ascending"`
	Count int      `json:"count" jsonschema:"number of seeds returned"`
}

// SearchTool defines the timeless_seed_search tool.
func SearchTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "timeless_seed_search",
		Description: "Finds seeds that turn a given notable into the requested replacement notable.",
	}
}

// SearchHandler searches a seed range.
func SearchHandler(scanner *engine.Scanner, cfg *config.Config) mcp.ToolHandlerFor[SearchInput, SearchResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchResult, error) {
		search := jewel.SeedSearch{
			SocketID:      input.SocketID,
			TargetNotable: input.TargetNotable,
			TargetNodeID:  input.TargetNodeID,
			Faction:       input.Faction,
			MinSeed:       cfg.SeedMin,
			MaxSeed:       cfg.SeedMax,
			MaxResults:    engine.EffectiveMaxResults(input.MaxResults, cfg.MaxResults),
		}
		if input.MinSeed != nil {
			search.MinSeed = *input.MinSeed
		}
		if input.MaxSeed != nil {
			search.MaxSeed = *input.MaxSeed
		}
		seeds, err := scanner.FindSeeds(ctx, search, nil)
		if err != nil {
			return nil, SearchResult{}, err
		}
		if seeds == nil {
			seeds = []uint32{}
		}
		return nil, SearchResult{Seeds: seeds, Count: len(seeds)}, nil
	}
}

// NotableCount is one entry of a distribution.
type NotableCount struct {
	Name  string `json:"name" jsonschema:"replacement notable name"`
	Count int    `json:"count" jsonschema:"times it appears"`
}

// DistributionResult counts replacement notables, most frequent first.
type DistributionResult struct {
	Notables []NotableCount `json:"notables" jsonschema:"replacement notables, most frequent first"`
}

// DistributionTool defines the timeless_seed_distribution tool.
func DistributionTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "timeless_seed_distribution",
		Description: "Counts how often each replacement notable appears for one seed at one socket.",
	}
}

// DistributionHandler counts replacement notables.
func DistributionHandler(scanner *engine.Scanner, cfg *config.Config) mcp.ToolHandlerFor[SeedInput, DistributionResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SeedInput) (*mcp.CallToolResult, DistributionResult, error) {
		radius, err := resolveRadius(cfg, input.RadiusName, input.Radius)
		if err != nil {
			return nil, DistributionResult{}, err
		}
		dist, err := scanner.Distribution(ctx, input.SocketID, input.Seed, input.Faction, radius)
		if err != nil {
			return nil, DistributionResult{}, err
		}
		result := DistributionResult{Notables: make([]NotableCount, 0, len(dist))}
		for name, n := range dist {
			result.Notables = append(result.Notables, NotableCount{Name: name, Count: n})
		}
		sort.Slice(result.Notables, func(i, j int) bool {
			a, b := result.Notables[i], result.Notables[j]
			if a.Count != b.Count {
				return a.Count > b.Count
			}
			return a.Name < b.Name
		})
		return nil, result, nil
	}
}
