package mockapi

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Error bodies come in the three shapes real backends use:
//
//	{"detail": "..."}                      general failure
//	{"message": "..."}                     flat message
//	{"fields": {"email": ["..."]}}         structured field errors
//	{"price": ["..."]}                     flat field map

// writeJSON writes v with the given status.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("write response", zap.Error(err))
	}
}

// writeDetail writes a {"detail"} error.
func (s *Server) writeDetail(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, map[string]string{"detail": detail})
}

// writeMessage writes a flat {"message"} error.
func (s *Server) writeMessage(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"message": message})
}

// writeFields writes structured field errors.
func (s *Server) writeFields(w http.ResponseWriter, fields map[string][]string) {
	s.writeJSON(w, http.StatusBadRequest, map[string]any{"fields": fields})
}

// writeFlatFields writes field errors as a top-level map.
func (s *Server) writeFlatFields(w http.ResponseWriter, fields map[string][]string) {
	s.writeJSON(w, http.StatusBadRequest, fields)
}
