package server

import "github.com/ironsheep/maze-zone-mcp/internal/config"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// regionSpecSchema describes one entry of a "regions" argument.
var regionSpecSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"id": map[string]interface{}{
			"type":        "string",
			"description": "Unique region identifier",
		},
		"shape": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"polygon", "circle", "rectangle"},
			"description": "Region shape. Inferred from the other fields when omitted",
		},
		"points": map[string]interface{}{
			"type":        "array",
			"items":       map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "number"}},
			"description": "Polygon vertices as [x, y] pairs, at least 3",
		},
		"center": map[string]interface{}{
			"type":        "array",
			"items":       map[string]interface{}{"type": "number"},
			"description": "Circle center as [x, y]",
		},
		"radius": map[string]interface{}{
			"type":        "number",
			"description": "Circle radius in pixels",
		},
		"rect": map[string]interface{}{
			"type":        "array",
			"items":       map[string]interface{}{"type": "integer"},
			"description": "Rectangle as [x1, y1, x2, y2], x2 and y2 exclusive",
		},
	},
	"required": []string{"id"},
}

// experimentProperties returns the arguments shared by every tool that
// needs regions or detector settings, merged with extra.
func experimentProperties(extra map[string]interface{}) map[string]interface{} {
	props := map[string]interface{}{
		"config": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to an experiment configuration JSON file",
		},
		"preset": map[string]interface{}{
			"type":        "string",
			"enum":        config.PresetNames(),
			"description": "Built-in experiment configuration (instead of config)",
		},
		"regions": map[string]interface{}{
			"type":        "array",
			"items":       regionSpecSchema,
			"description": "Zones to track. Replaces the regions of config or preset",
		},
		"detector": map[string]interface{}{
			"type":        "object",
			"description": "Detector overrides: min_area, noise_floor, kernel_size, close_gaps, dilate_iterations, background{learning_rate, variance_threshold, min_difference, initial_variance, min_variance}",
		},
	}
	for k, v := range extra {
		props[k] = v
	}
	return props
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Region Operations
		{
			Name:        "maze_region_contains",
			Description: "Test which zones contain each of the given points. Points on a zone's edge count as inside.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": experimentProperties(map[string]interface{}{
					"points": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "number"}},
						"description": "Points to test as [x, y] pairs",
					},
				}),
				"required": []string{"points"},
			},
		},
		{
			Name:        "maze_region_mask",
			Description: "Rasterize one zone into a binary mask (white inside) and return it as base64-encoded PNG with its pixel count. When a frame path is given, the frame's size and format are reported too.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": experimentProperties(map[string]interface{}{
					"region_id": map[string]interface{}{
						"type":        "string",
						"description": "Zone to rasterize. Optional when only one zone is defined",
					},
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to a frame; the mask takes its size",
					},
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Mask width when no path is given",
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Mask height when no path is given",
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor for the returned image. Default 1.0",
						"default":     1.0,
					},
				}),
			},
		},

		// Localization
		{
			Name:        "maze_locate",
			Description: "Locate the moving animal in a sequence of frames by background subtraction. The first frame only seeds the background; later frames report the animal's centroid or null when it was not found.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": experimentProperties(map[string]interface{}{
					"paths": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Absolute paths to the frames, in recording order (at least 2)",
					},
					"return_mask": map[string]interface{}{
						"type":        "boolean",
						"description": "Also return the cleaned foreground mask of the last frame",
						"default":     false,
					},
				}),
				"required": []string{"paths"},
			},
		},

		// Batch Analysis
		{
			Name:        "maze_analyze",
			Description: "Run zone tracking over a whole directory of exported frames and return per-zone occupancy: time spent, entry count, visit statistics and transition events.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": experimentProperties(map[string]interface{}{
					"frames_dir": map[string]interface{}{
						"type":        "string",
						"description": "Directory holding the frames. Required unless the config sets frames.dir",
					},
					"pattern": map[string]interface{}{
						"type":        "string",
						"description": "Glob selecting frame files (default *.png)",
						"default":     "*.png",
					},
					"fps": map[string]interface{}{
						"type":        "number",
						"description": "Recording frame rate; frame i is at time i/fps (default 30)",
						"default":     30,
					},
					"trace": map[string]interface{}{
						"type":        "boolean",
						"description": "Include the per-frame position trace",
						"default":     false,
					},
					"overlay_dir": map[string]interface{}{
						"type":        "string",
						"description": "Directory to write one debug overlay PNG per frame",
					},
				}),
			},
		},

		// Sessions
		{
			Name:        "maze_session_start",
			Description: "Start an incremental tracking session. Feed frames one at a time with maze_session_step.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": experimentProperties(map[string]interface{}{
					"fps": map[string]interface{}{
						"type":        "number",
						"description": "Frame rate used to time frames stepped without an explicit time (default 30)",
						"default":     30,
					},
				}),
			},
		},
		{
			Name:        "maze_session_step",
			Description: "Process the next frame of a session and return the detection, the zones containing it and the updated occupancy records.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": map[string]interface{}{
						"type":        "string",
						"description": "Session returned by maze_session_start",
					},
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the frame image",
					},
					"time": map[string]interface{}{
						"type":        "number",
						"description": "Frame time in seconds. Defaults to frame index / fps; must not go backwards",
					},
				},
				"required": []string{"session_id", "path"},
			},
		},
		{
			Name:        "maze_session_records",
			Description: "Get a session's occupancy records, visit log and per-zone visit statistics.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": map[string]interface{}{
						"type":        "string",
						"description": "Session returned by maze_session_start",
					},
				},
				"required": []string{"session_id"},
			},
		},
		{
			Name:        "maze_session_close",
			Description: "Close a session and return its final occupancy records.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": map[string]interface{}{
						"type":        "string",
						"description": "Session returned by maze_session_start",
					},
				},
				"required": []string{"session_id"},
			},
		},

		// Rendering
		{
			Name:        "maze_render_overlay",
			Description: "Draw the zones over a frame, red when occupied and green otherwise, with a hit box around the animal. Returns base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": experimentProperties(map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the frame image",
					},
					"session_id": map[string]interface{}{
						"type":        "string",
						"description": "Draw the zones, occupancy and last position of this session",
					},
					"x": map[string]interface{}{
						"type":        "number",
						"description": "Animal X coordinate for the hit box",
					},
					"y": map[string]interface{}{
						"type":        "number",
						"description": "Animal Y coordinate for the hit box",
					},
					"inside": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Zones to draw as occupied. Defaults to the zones containing (x, y)",
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor. Default 1.0",
						"default":     1.0,
					},
					"grid_spacing": map[string]interface{}{
						"type":        "integer",
						"description": "Draw a labelled coordinate grid every N pixels, useful for reading zone vertices off a frame",
					},
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Also save the overlay to this path",
					},
				}),
				"required": []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
