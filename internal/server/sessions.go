package server

import (
	"fmt"

	"github.com/ironsheep/maze-zone-mcp/internal/analysis"
	"github.com/ironsheep/maze-zone-mcp/internal/frames"
	"github.com/ironsheep/maze-zone-mcp/internal/render"
)

// maxSessions bounds the number of open tracking sessions.
const maxSessions = 64

// sessionEntry is an open tracking session and what the server needs to
// render it.
type sessionEntry struct {
	session *analysis.Session
	fps     float64
	style   render.Style
}

// nextTime returns the timestamp of the session's next frame.
func (e *sessionEntry) nextTime() float64 {
	return frames.Timestamp(e.session.Frames(), e.fps)
}

// insideMap reports the current occupancy of every region.
func (e *sessionEntry) insideMap() map[string]bool {
	inside := make(map[string]bool)
	for id, rec := range e.session.Records() {
		inside[id] = rec.Inside
	}
	return inside
}

func (s *Server) addSession(e *sessionEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.sessions) >= maxSessions {
		return fmt.Errorf("too many open sessions (max %d); close one with maze_session_close", maxSessions)
	}
	s.sessions[e.session.ID()] = e
	return nil
}

func (s *Server) getSession(id string) (*sessionEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("unknown session: %q", id)
	}
	return e, nil
}

func (s *Server) removeSession(id string) (*sessionEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("unknown session: %q", id)
	}
	delete(s.sessions, id)
	return e, nil
}
