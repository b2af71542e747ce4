package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/ironsheep/maze-zone-mcp/internal/analysis"
	"github.com/ironsheep/maze-zone-mcp/internal/config"
	"github.com/ironsheep/maze-zone-mcp/internal/frames"
	"github.com/ironsheep/maze-zone-mcp/internal/geometry"
	"github.com/ironsheep/maze-zone-mcp/internal/occupancy"
	"github.com/ironsheep/maze-zone-mcp/internal/render"
	"github.com/ironsheep/maze-zone-mcp/internal/tracking"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "maze_analyze", "maze_session_step").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Infow("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Resolves the experiment (config file, preset or inline regions)
//  3. Loads frames from cache as needed
//  4. Calls into geometry, tracking, analysis or render
//  5. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Region Operations
	case "maze_region_contains":
		return s.handleRegionContains(args)
	case "maze_region_mask":
		return s.handleRegionMask(args)

	// Localization
	case "maze_locate":
		return s.handleLocate(args)

	// Batch Analysis
	case "maze_analyze":
		return s.handleAnalyze(ctx, args)

	// Sessions
	case "maze_session_start":
		return s.handleSessionStart(args)
	case "maze_session_step":
		return s.handleSessionStep(args)
	case "maze_session_records":
		return s.handleSessionRecords(args)
	case "maze_session_close":
		return s.handleSessionClose(args)

	// Rendering
	case "maze_render_overlay":
		return s.handleRenderOverlay(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// unmarshalArgs decodes tool arguments; absent arguments decode as {}.
func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// === Experiment Resolution ===

// experimentArgs selects the experiment a tool works on. A config file or a
// preset provides the base; inline regions and detector settings override it.
type experimentArgs struct {
	Config   string          `json:"config"`
	Preset   string          `json:"preset"`
	Regions  []geometry.Spec `json:"regions"`
	Detector json.RawMessage `json:"detector"`
}

// base loads the config file or preset, or the defaults when neither is set.
func (a experimentArgs) base() (*config.Config, error) {
	switch {
	case a.Config != "" && a.Preset != "":
		return nil, errors.New("give either config or preset, not both")
	case a.Config != "":
		return config.Load(a.Config)
	case a.Preset != "":
		return config.Preset(a.Preset)
	default:
		return config.DefaultConfig(), nil
	}
}

// resolve builds and validates the full experiment configuration.
func (a experimentArgs) resolve() (*config.Config, error) {
	cfg, err := a.base()
	if err != nil {
		return nil, err
	}
	if len(a.Regions) > 0 {
		cfg.Regions = a.Regions
	}
	if len(a.Detector) > 0 {
		if err := json.Unmarshal(a.Detector, &cfg.Detector); err != nil {
			return nil, fmt.Errorf("invalid detector settings: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// detector builds only the detector settings, and the regions when any are
// configured.
func (a experimentArgs) detector() (tracking.Config, *geometry.RegionSet, error) {
	cfg, err := a.base()
	if err != nil {
		return tracking.Config{}, nil, err
	}
	if len(a.Regions) > 0 {
		cfg.Regions = a.Regions
	}

	det := cfg.Detector
	if len(a.Detector) > 0 {
		if err := json.Unmarshal(a.Detector, &det); err != nil {
			return tracking.Config{}, nil, fmt.Errorf("invalid detector settings: %w", err)
		}
	}
	if err := det.Validate(); err != nil {
		return tracking.Config{}, nil, fmt.Errorf("invalid detector settings: %w", err)
	}

	if len(cfg.Regions) == 0 {
		return det, nil, nil
	}
	set, err := cfg.RegionSet()
	if err != nil {
		return tracking.Config{}, nil, err
	}
	return det, set, nil
}

// === Region Operation Handlers ===

type regionContainsArgs struct {
	experimentArgs
	Points [][2]float64 `json:"points"`
}

type pointMembership struct {
	X       float64         `json:"x"`
	Y       float64         `json:"y"`
	Inside  []string        `json:"inside"`
	Regions map[string]bool `json:"regions"`
}

type regionContainsResult struct {
	Regions []string          `json:"regions"`
	Points  []pointMembership `json:"points"`
}

func (s *Server) handleRegionContains(args json.RawMessage) (interface{}, error) {
	var a regionContainsArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if len(a.Points) == 0 {
		return nil, errors.New("points must not be empty")
	}
	cfg, err := a.resolve()
	if err != nil {
		return nil, err
	}
	set, err := cfg.RegionSet()
	if err != nil {
		return nil, err
	}

	result := &regionContainsResult{
		Regions: set.IDs(),
		Points:  make([]pointMembership, 0, len(a.Points)),
	}
	for _, xy := range a.Points {
		p := geometry.Pt(xy[0], xy[1])
		m := pointMembership{
			X:       p.X,
			Y:       p.Y,
			Inside:  set.ContainingIDs(p),
			Regions: make(map[string]bool, set.Len()),
		}
		for _, r := range set.Regions() {
			m.Regions[r.ID()] = r.Contains(p)
		}
		result.Points = append(result.Points, m)
	}
	return result, nil
}

type regionMaskArgs struct {
	experimentArgs
	RegionID string  `json:"region_id"`
	Path     string  `json:"path"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Scale    float64 `json:"scale"`
}

type regionMaskResult struct {
	RegionID string `json:"region_id"`
	Pixels   int    `json:"pixels"`
	Bounds   [4]int `json:"bounds"`
	// Frame describes the image the canvas was taken from, when a path was given.
	Frame *frames.Info `json:"frame,omitempty"`
	*render.ImageResult
}

func (s *Server) handleRegionMask(args json.RawMessage) (interface{}, error) {
	var a regionMaskArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	cfg, err := a.resolve()
	if err != nil {
		return nil, err
	}
	set, err := cfg.RegionSet()
	if err != nil {
		return nil, err
	}

	var region geometry.Region
	switch {
	case a.RegionID != "":
		r, ok := set.Get(a.RegionID)
		if !ok {
			return nil, fmt.Errorf("unknown region: %q (have %v)", a.RegionID, set.IDs())
		}
		region = r
	case set.Len() == 1:
		region = set.Regions()[0]
	default:
		return nil, fmt.Errorf("region_id is required when %d regions are defined", set.Len())
	}

	var (
		canvas image.Rectangle
		info   *frames.Info
	)
	switch {
	case a.Path != "":
		info, err = frames.LoadInfo(s.cache, a.Path)
		if err != nil {
			return nil, err
		}
		canvas = image.Rect(0, 0, info.Width, info.Height)
	case a.Width > 0 && a.Height > 0:
		canvas = image.Rect(0, 0, a.Width, a.Height)
	default:
		return nil, errors.New("give a frame path or a positive width and height")
	}

	mask := region.Mask(canvas)
	pixels := 0
	for _, v := range mask.Pix {
		if v != 0 {
			pixels++
		}
	}

	encoded, err := render.Encode(render.MaskImage(mask, color.White), a.Scale)
	if err != nil {
		return nil, err
	}
	b := region.Bounds()
	return &regionMaskResult{
		RegionID:    region.ID(),
		Pixels:      pixels,
		Bounds:      [4]int{b.Min.X, b.Min.Y, b.Max.X, b.Max.Y},
		Frame:       info,
		ImageResult: encoded,
	}, nil
}

// === Localization Handlers ===

type locateArgs struct {
	experimentArgs
	Paths      []string `json:"paths"`
	ReturnMask bool     `json:"return_mask"`
}

type locateFrame struct {
	Index    int             `json:"index"`
	Path     string          `json:"path"`
	Position *geometry.Point `json:"position"`
	Area     float64         `json:"area"`
	Contours int             `json:"contours"`
	Fallback bool            `json:"fallback"`
	Inside   []string        `json:"inside,omitempty"`
}

type locateResult struct {
	Frames    []locateFrame       `json:"frames"`
	Found     int                 `json:"found"`
	FinalMask *render.ImageResult `json:"final_mask,omitempty"`
}

func (s *Server) handleLocate(args json.RawMessage) (interface{}, error) {
	var a locateArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if len(a.Paths) < 2 {
		return nil, errors.New("at least two frame paths are required: the first one seeds the background")
	}
	det, set, err := a.detector()
	if err != nil {
		return nil, err
	}

	loc := tracking.NewLocalizer(det, s.logger)
	result := &locateResult{Frames: make([]locateFrame, 0, len(a.Paths))}
	var last tracking.Detection

	for i, path := range a.Paths {
		gray, err := s.cache.LoadGray(path)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		// Frames are visited once; keep the cache for single images.
		s.cache.Evict(path)

		last = loc.Locate(gray)
		f := locateFrame{
			Index:    i,
			Path:     path,
			Position: last.Position,
			Area:     last.Area,
			Contours: last.Contours,
			Fallback: last.Fallback,
		}
		if last.Found() {
			result.Found++
			if set != nil {
				f.Inside = set.ContainingIDs(*last.Position)
			}
		}
		result.Frames = append(result.Frames, f)
	}

	if a.ReturnMask && last.Mask != nil {
		encoded, err := render.Encode(render.MaskImage(last.Mask, color.White), 1)
		if err != nil {
			return nil, err
		}
		result.FinalMask = encoded
	}
	return result, nil
}

// === Batch Analysis Handlers ===

type analyzeArgs struct {
	experimentArgs
	FramesDir  string  `json:"frames_dir"`
	Pattern    string  `json:"pattern"`
	FPS        float64 `json:"fps"`
	Trace      bool    `json:"trace"`
	OverlayDir string  `json:"overlay_dir"`
}

func (s *Server) handleAnalyze(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a analyzeArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	cfg, err := a.resolve()
	if err != nil {
		return nil, err
	}
	if a.FramesDir != "" {
		cfg.Frames.Dir = a.FramesDir
	}
	if a.Pattern != "" {
		cfg.Frames.Pattern = a.Pattern
	}
	if a.FPS > 0 {
		cfg.Frames.FPS = a.FPS
	}
	if cfg.Frames.Dir == "" {
		return nil, errors.New("frames_dir is required")
	}

	return analysis.RunConfig(ctx, cfg, analysis.Options{
		Trace:      a.Trace,
		OverlayDir: a.OverlayDir,
		Logger:     s.logger,
	})
}

// === Session Handlers ===

type sessionStartArgs struct {
	experimentArgs
	FPS float64 `json:"fps"`
}

type sessionStartResult struct {
	SessionID string   `json:"session_id"`
	Regions   []string `json:"regions"`
	FPS       float64  `json:"fps"`
}

func (s *Server) handleSessionStart(args json.RawMessage) (interface{}, error) {
	var a sessionStartArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	cfg, err := a.resolve()
	if err != nil {
		return nil, err
	}
	if a.FPS > 0 {
		cfg.Frames.FPS = a.FPS
	}
	set, err := cfg.RegionSet()
	if err != nil {
		return nil, err
	}
	style, err := cfg.Style()
	if err != nil {
		return nil, err
	}

	e := &sessionEntry{
		session: analysis.NewSession(set, cfg.Detector, s.logger),
		fps:     cfg.Frames.FPS,
		style:   style,
	}
	if err := s.addSession(e); err != nil {
		return nil, err
	}
	s.logger.Infow("session started", "session", e.session.ID(), "regions", set.IDs())

	return &sessionStartResult{
		SessionID: e.session.ID(),
		Regions:   set.IDs(),
		FPS:       e.fps,
	}, nil
}

type sessionStepArgs struct {
	SessionID string   `json:"session_id"`
	Path      string   `json:"path"`
	Time      *float64 `json:"time"`
}

type sessionStepResult struct {
	analysis.StepResult
	Records map[string]occupancy.Record `json:"records"`
}

func (s *Server) handleSessionStep(args json.RawMessage) (interface{}, error) {
	var a sessionStepArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	e, err := s.getSession(a.SessionID)
	if err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}

	t := e.nextTime()
	if a.Time != nil {
		t = *a.Time
	}
	if e.session.Frames() > 0 && t < e.session.LastTime() {
		return nil, fmt.Errorf("time %g is earlier than the previous frame (%g)", t, e.session.LastTime())
	}

	gray, err := s.cache.LoadGray(a.Path)
	if err != nil {
		return nil, err
	}
	s.cache.Evict(a.Path)

	res := e.session.Step(gray, t)
	return &sessionStepResult{
		StepResult: res,
		Records:    e.session.Records(),
	}, nil
}

type sessionArgs struct {
	SessionID string `json:"session_id"`
}

type sessionRecordsResult struct {
	SessionID string                      `json:"session_id"`
	Frames    int                         `json:"frames"`
	Misses    int                         `json:"misses"`
	Fallbacks int                         `json:"fallbacks"`
	Time      float64                     `json:"time"`
	Distance  float64                     `json:"distance_pixels"`
	Records   map[string]occupancy.Status `json:"records"`
	Summaries []occupancy.Summary         `json:"summaries"`
	Visits    []occupancy.Visit           `json:"visits"`
	Closed    bool                        `json:"closed,omitempty"`
}

func sessionRecords(e *sessionEntry) *sessionRecordsResult {
	sess := e.session
	return &sessionRecordsResult{
		SessionID: sess.ID(),
		Frames:    sess.Frames(),
		Misses:    sess.Misses(),
		Fallbacks: sess.Fallbacks(),
		Time:      sess.LastTime(),
		Distance:  sess.Distance(),
		Records:   sess.Snapshot(),
		Summaries: sess.Summaries(),
		Visits:    sess.Visits(),
	}
}

func (s *Server) handleSessionRecords(args json.RawMessage) (interface{}, error) {
	var a sessionArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	e, err := s.getSession(a.SessionID)
	if err != nil {
		return nil, err
	}
	return sessionRecords(e), nil
}

func (s *Server) handleSessionClose(args json.RawMessage) (interface{}, error) {
	var a sessionArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	e, err := s.removeSession(a.SessionID)
	if err != nil {
		return nil, err
	}
	s.logger.Infow("session closed", "session", a.SessionID, "frames", e.session.Frames())

	result := sessionRecords(e)
	result.Closed = true
	return result, nil
}

// === Rendering Handlers ===

type renderOverlayArgs struct {
	experimentArgs
	Path       string   `json:"path"`
	SessionID  string   `json:"session_id"`
	X          *float64 `json:"x"`
	Y          *float64 `json:"y"`
	Inside     []string `json:"inside"`
	Scale      float64  `json:"scale"`
	Grid       int      `json:"grid_spacing"`
	OutputPath string   `json:"output_path"`
}

type renderOverlayResult struct {
	Inside    []string `json:"inside"`
	SavedPath string   `json:"saved_path,omitempty"`
	*render.ImageResult
}

func (s *Server) handleRenderOverlay(args json.RawMessage) (interface{}, error) {
	var a renderOverlayArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	if (a.X == nil) != (a.Y == nil) {
		return nil, errors.New("give both x and y, or neither")
	}

	var (
		set    *geometry.RegionSet
		style  render.Style
		inside map[string]bool
		pos    *geometry.Point
	)
	if a.X != nil {
		p := geometry.Pt(*a.X, *a.Y)
		pos = &p
	}

	if a.SessionID != "" {
		e, err := s.getSession(a.SessionID)
		if err != nil {
			return nil, err
		}
		set = e.session.Regions()
		style = e.style
		inside = e.insideMap()
		if pos == nil {
			pos = e.session.LastPosition()
		}
	} else {
		cfg, err := a.resolve()
		if err != nil {
			return nil, err
		}
		if set, err = cfg.RegionSet(); err != nil {
			return nil, err
		}
		if style, err = cfg.Style(); err != nil {
			return nil, err
		}
		inside = make(map[string]bool)
		switch {
		case a.Inside != nil:
			for _, id := range a.Inside {
				if _, ok := set.Get(id); !ok {
					return nil, fmt.Errorf("unknown region: %q", id)
				}
				inside[id] = true
			}
		case pos != nil:
			for _, id := range set.ContainingIDs(*pos) {
				inside[id] = true
			}
		}
	}

	if a.Grid > 0 {
		style.GridSpacing = a.Grid
	}

	frame, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	img := render.Overlay(frame, set, inside, pos, style)

	result := &renderOverlayResult{Inside: []string{}}
	for _, id := range set.IDs() {
		if inside[id] {
			result.Inside = append(result.Inside, id)
		}
	}
	if a.OutputPath != "" {
		if err := render.Save(img, a.OutputPath); err != nil {
			return nil, err
		}
		result.SavedPath = a.OutputPath
	}
	if result.ImageResult, err = render.Encode(img, a.Scale); err != nil {
		return nil, err
	}
	return result, nil
}
