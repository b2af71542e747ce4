// Package server implements the MCP (Model Context Protocol) server for maze
// zone tracking.
//
// This package provides a JSON-RPC 2.0 server that exposes the zone tracker
// through the MCP protocol, so an MCP client can define zones on a maze,
// locate the animal in recorded frames and read back how long it spent in
// each zone.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Region Operations:
//   - maze_region_contains: Which zones contain each point
//   - maze_region_mask: Rasterize a zone to a PNG mask
//
// Localization:
//   - maze_locate: Background-subtraction centroid over a list of frames
//
// Batch Analysis:
//   - maze_analyze: Occupancy report for a whole frame directory
//
// Sessions:
//   - maze_session_start: Open an incremental tracking session
//   - maze_session_step: Feed one frame
//   - maze_session_records: Read records, visits and statistics
//   - maze_session_close: Close and return the final records
//
// Rendering:
//   - maze_render_overlay: Zones and hit box drawn over a frame
//
// # Experiments
//
// Tools that need zones accept a configuration file path ("config"), a
// built-in preset ("preset") or inline region specs ("regions"). Inline
// regions replace those of the config or preset, and "detector" overrides
// individual detector settings.
//
// # Sessions
//
// A session owns one background model and one occupancy engine. Frames must
// be stepped in recording order; the background model depends on every
// frame before the current one. Sessions live until closed or until the
// server exits.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// A frame in which the animal is not found is not an error: the detection
// reports a null position and occupancy is left unchanged.
//
// # Usage
//
// The server is typically started by an MCP client:
//
//	srv := server.New(logger)
//	if err := srv.Run(ctx); err != nil {
//	    logger.Fatal(err)
//	}
package server
