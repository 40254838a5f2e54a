package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
)

// ByteCount is a size in bytes decoded from probe JSON. Approximate
// sizes come out of bitrate-times-duration arithmetic and are emitted
// as floats, so decoding accepts both integer and float forms; null
// means "unknown" and decodes to zero.
type ByteCount int64

func (b *ByteCount) UnmarshalJSON(data []byte) error {
	s := string(bytes.TrimSpace(data))
	if s == "null" {
		*b = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("byte count %q: %v", s, err)
	}
	*b = ByteCount(f)
	return nil
}

// Metadata is what a dry-run probe reports about a source. Size fields
// are estimates and frequently absent (live or adaptive content); zero
// means "unknown".
type Metadata struct {
	Title          string    `json:"title"`
	Filesize       ByteCount `json:"filesize"`
	FilesizeApprox ByteCount `json:"filesize_approx"`

	// RequestedFormats is populated when the selector resolved to
	// separate video and audio streams that will be merged.
	RequestedFormats []StreamInfo `json:"requested_formats"`
}

// StreamInfo carries the per-stream size estimates of a split
// video/audio selection.
type StreamInfo struct {
	Filesize       ByteCount `json:"filesize"`
	FilesizeApprox ByteCount `json:"filesize_approx"`
}

// EstimatedStreamsSize sums the best available estimate of each requested
// stream. Zero when nothing was reported.
func (m *Metadata) EstimatedStreamsSize() int64 {
	var total int64
	for _, f := range m.RequestedFormats {
		if f.Filesize > 0 {
			total += int64(f.Filesize)
		} else if f.FilesizeApprox > 0 {
			total += int64(f.FilesizeApprox)
		}
	}
	return total
}

// Progress is one transfer progress sample parsed from the engine's
// output.
type Progress struct {
	Percent float64
	Total   string // human-readable total, e.g. "120.5MiB"
	Speed   string // e.g. "3.2MiB/s"
	ETA     string // e.g. "00:42"
}

// ProgressFunc receives progress samples during Fetch. May be nil.
type ProgressFunc func(Progress)

// Engine abstracts the external extraction/transcoding tool. The
// selector is an opaque format-selector string; the engine owns its
// syntax and its internal fragment-level retry policy.
type Engine interface {
	// Probe extracts metadata without transferring any media bytes.
	// Failures are reported as errors wrapping ErrProbeFailed.
	Probe(ctx context.Context, url, selector, cookieFile string) (*Metadata, error)

	// Fetch performs the real transfer into dir, remuxing if the
	// engine was built merge-capable. Failures are reported as
	// *TransferError.
	Fetch(ctx context.Context, url, selector, dir, cookieFile string, onProgress ProgressFunc) error
}

// ErrProbeFailed marks a metadata probe that could not complete:
// unsupported selector, unreachable source, or any extraction error.
// Callers treat it as recoverable and move on to the next candidate.
var ErrProbeFailed = errors.New("probe failed")

// TransferError is a real download or remux failure, carrying the
// engine's diagnostic output.
type TransferError struct {
	Diag string
	Err  error
}

func (e *TransferError) Error() string {
	if e.Diag != "" {
		return fmt.Sprintf("transfer failed: %s", e.Diag)
	}
	return fmt.Sprintf("transfer failed: %v", e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }
