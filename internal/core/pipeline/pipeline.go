package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/telefetch/telefetch/internal/core/engine"
	"github.com/telefetch/telefetch/internal/core/format"
)

// Request describes one media acquisition. Immutable once built.
type Request struct {
	URL          string
	Tier         format.Tier
	MergeCapable bool

	// CookieData is an optional Netscape cookie blob written into the
	// working directory and forwarded to the engine.
	CookieData string
}

// Result is the acquired artifact handed to the delivery callback.
// The file lives inside the request's working directory and is removed
// when Acquire returns, so delivery must not retain the path.
type Result struct {
	Path  string
	Size  int64
	Title string
}

// ErrNoArtifact means the transfer reported success but no media file
// showed up in the working directory: a post-processing defect, not a
// network failure.
var ErrNoArtifact = errors.New("no media file found after transfer")

// TooLargeError means the actual transferred file exceeds the ceiling
// even after ladder selection. Not a crash: the caller relays sizes to
// the user.
type TooLargeError struct {
	Size    int64
	Ceiling int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("file is %d bytes, over the %d byte limit", e.Size, e.Ceiling)
}

// DeliverFunc receives the resolved artifact while the working
// directory still exists.
type DeliverFunc func(Result) error

// Pipeline turns a request into a delivered, size-admissible file.
type Pipeline struct {
	Engine  engine.Engine
	Ceiling int64

	// TempRoot is where working directories are created; empty means
	// the OS default.
	TempRoot string

	// OnProgress, when set, receives transfer progress samples.
	OnProgress engine.ProgressFunc
}

// Acquire probes the format ladder in order, transfers the first
// admissible candidate (or the last rung as a last resort), resolves
// the artifact and hands it to deliver. The working directory is
// removed on every exit path, success or failure.
func (p *Pipeline) Acquire(ctx context.Context, req Request, deliver DeliverFunc) error {
	dir, err := os.MkdirTemp(p.TempRoot, "dl_")
	if err != nil {
		return fmt.Errorf("create working directory: %w", err)
	}
	defer os.RemoveAll(dir)

	cookieFile := ""
	if req.CookieData != "" {
		cookieFile = filepath.Join(dir, "cookies.txt")
		if err := os.WriteFile(cookieFile, []byte(req.CookieData), 0600); err != nil {
			return fmt.Errorf("write cookie file: %w", err)
		}
	}

	ladder := format.Ladder(req.Tier, req.MergeCapable)
	chosen, title := p.selectCandidate(ctx, req.URL, ladder, cookieFile)
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := p.Engine.Fetch(ctx, req.URL, chosen.Selector(), dir, cookieFile, p.OnProgress); err != nil {
		return err
	}

	path, size, err := resolveArtifact(dir)
	if err != nil {
		return err
	}

	// The binding admission decision: probe-time estimates were
	// optimistic, the real byte count is not.
	if size > p.Ceiling {
		return &TooLargeError{Size: size, Ceiling: p.Ceiling}
	}

	if title == "" {
		title = "video"
	}
	return deliver(Result{Path: path, Size: size, Title: title})
}

// selectCandidate walks the ladder: probe failures and size rejections
// both move on to the next rung, and a fully exhausted ladder still
// yields the last rung so a transfer is always attempted.
func (p *Pipeline) selectCandidate(ctx context.Context, url string, ladder []format.Candidate, cookieFile string) (format.Candidate, string) {
	title := ""
	for _, cand := range ladder {
		meta, err := p.Engine.Probe(ctx, url, cand.Selector(), cookieFile)
		if err != nil {
			if ctx.Err() != nil {
				return cand, title
			}
			log.Printf("[pipeline] probe rung %d failed: %v", cand.Rank, err)
			continue
		}
		if title == "" {
			title = meta.Title
		}
		if admit(meta, p.Ceiling) {
			return cand, title
		}
		log.Printf("[pipeline] rung %d over size ceiling, trying next", cand.Rank)
	}
	return ladder[len(ladder)-1], title
}
