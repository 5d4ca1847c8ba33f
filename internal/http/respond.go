// Package http has the shared transport helpers: the console's JSON
// response envelope and tolerant request decoding.
package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

// Response is the console's API envelope, matching what the web frontend
// consumes: status ok|error, human message, payload.
type Response struct {
	Status string `json:"status"`
	Msg    string `json:"msg"`
	Data   any    `json:"data,omitempty"`
}

// WriteOK writes a status=ok envelope with data.
func WriteOK(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, Response{Status: "ok", Data: data})
}

// WriteErrorMsg writes a status=error envelope with the given HTTP status
// and user-facing message.
func WriteErrorMsg(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, Response{Status: "error", Msg: msg})
}

// WriteJSON writes any value as a JSON response.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ReadJSON decodes the request body into v. Tolerant of unknown fields;
// body capped at 1MB. Returns false after writing the error response.
func ReadJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	if !strings.Contains(ct, "application/json") {
		WriteErrorMsg(w, http.StatusBadRequest, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil && err != io.EOF {
		WriteErrorMsg(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}
