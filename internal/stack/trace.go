package stack

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Trace encodings.
const (
	FormatJSON    = "json"
	FormatMsgpack = "msgpack"
)

// ErrUnknownFormat is returned for a trace encoding other than json or msgpack.
var ErrUnknownFormat = errors.New("unknown trace format")

// FormatForPath picks the trace encoding from a file extension, defaulting to
// JSON.
func FormatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".msgpack", ".mpk", ".mp":
		return FormatMsgpack
	default:
		return FormatJSON
	}
}

// DecodeTrace reads a list of frames, innermost first. Fields other than
// file, line, function and class are ignored, so a JSON-encoded PHP
// debug_backtrace() can be passed as is.
func DecodeTrace(r io.Reader, format string) ([]Frame, error) {
	var frames []Frame
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&frames); err != nil {
			return nil, fmt.Errorf("decoding json trace: %w", err)
		}
	case FormatMsgpack:
		if err := msgpack.NewDecoder(r).Decode(&frames); err != nil {
			return nil, fmt.Errorf("decoding msgpack trace: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return frames, nil
}

// EncodeTrace writes frames in the given encoding.
func EncodeTrace(w io.Writer, format string, frames []Frame) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(frames); err != nil {
			return fmt.Errorf("encoding json trace: %w", err)
		}
	case FormatMsgpack:
		if err := msgpack.NewEncoder(w).Encode(frames); err != nil {
			return fmt.Errorf("encoding msgpack trace: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return nil
}
