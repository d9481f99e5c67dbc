package http

import (
	"encoding/json"
	"net/http"

	"bilancio/internal/services"
)

// writeJSON serializes v with the given status. Encoding failures are only
// possible for unserializable payloads, which the result envelope never
// carries, so they are logged and the connection is left to the client.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

// respond writes a service result envelope. Domain failures keep HTTP 200;
// the envelope's success flag is the outcome channel.
func (s *Server) respond(w http.ResponseWriter, res services.Result) {
	s.writeJSON(w, http.StatusOK, res)
}

// badRequest writes a failure envelope with a 400 for requests broken at
// the transport level (unreadable body, malformed query values).
func (s *Server) badRequest(w http.ResponseWriter, message string) {
	s.writeJSON(w, http.StatusBadRequest, services.Fail(message))
}

// decodeBody decodes a JSON request body into dst, reporting malformed
// payloads to the client. The bool tells the handler whether to proceed.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.badRequest(w, "invalid request body")
		return false
	}
	return true
}
