// Package iojson writes command output and errors as indented JSON.
package iojson

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Error is the shape of every error printed with --json.
type Error struct {
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// fallback builds an Error by hand for when marshaling itself fails, which
// means a value that cannot be encoded was passed in.
func fallback(msg string, err error) string {
	m, _ := json.Marshal(msg)
	e, _ := json.Marshal(err.Error())
	return fmt.Sprintf(`{"message":%s,"data":{"json_error":%s}}`, m, e)
}

func encode(w io.Writer, obj any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(obj)
}

// WriteWith encodes obj to w. If obj cannot be encoded a JSON Error describing
// the failure is written to ew instead.
func WriteWith(w io.Writer, ew io.Writer, obj any) error {
	if _, err := json.Marshal(obj); err != nil {
		_, werr := fmt.Fprintln(ew, fallback("error marshaling in iojson.Write", err))
		return werr
	}
	return encode(w, obj)
}

// Write calls WriteWith with [os.Stdout] and [os.Stderr].
func Write(obj any) error {
	return WriteWith(os.Stdout, os.Stderr, obj)
}

// WriteErrorTo writes msg and data to w as a JSON Error.
func WriteErrorTo(w io.Writer, msg string, data map[string]any) error {
	resp := Error{Message: msg, Data: data}
	if _, err := json.Marshal(resp); err != nil {
		_, werr := fmt.Fprintln(w, fallback(msg, err))
		return werr
	}
	return encode(w, resp)
}

// WriteError writes msg and data to [os.Stderr] as a JSON Error.
func WriteError(msg string, data map[string]any) error {
	return WriteErrorTo(os.Stderr, msg, data)
}
