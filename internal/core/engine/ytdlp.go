package engine

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

const (
	// DefaultBin is the extraction tool looked up on PATH.
	DefaultBin = "yt-dlp"

	// userAgent is sent with every engine request; some sites serve
	// degraded formats to unknown clients.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/124.0 Safari/537.36"

	// outputTemplate keeps titles short enough for every filesystem.
	outputTemplate = "%(title).80s-%(id)s.%(ext)s"
)

// progressRe matches yt-dlp's "--newline" progress lines:
//   [download]  42.3% of ~120.50MiB at 3.21MiB/s ETA 00:42
var progressRe = regexp.MustCompile(`\[download\]\s+(\d+\.?\d*)%\s+of\s+~?\s*(\S+)\s+at\s+(\S+)\s+ETA\s+(\S+)`)

// YTDLP drives the yt-dlp binary as the extraction engine.
type YTDLP struct {
	// Bin is the binary to execute; empty means DefaultBin.
	Bin string

	// MergeCapable enables split-stream selections with a post-transfer
	// remux into mp4. Requires ffmpeg next to the binary.
	MergeCapable bool
}

// NewYTDLP returns an engine around the yt-dlp binary on PATH.
func NewYTDLP(mergeCapable bool) *YTDLP {
	return &YTDLP{MergeCapable: mergeCapable}
}

// Available reports whether the extraction binary is on PATH.
func Available() bool {
	_, err := exec.LookPath(DefaultBin)
	return err == nil
}

// FFmpegAvailable reports whether ffmpeg is installed, which decides
// whether split-stream ladders can be used at all.
func FFmpegAvailable() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

func (y *YTDLP) bin() string {
	if y.Bin != "" {
		return y.Bin
	}
	return DefaultBin
}

// commonArgs are shared between probe and fetch so both phases see the
// same source behavior. Playlists are always disabled; fragment retry
// is the engine's own bounded policy.
func (y *YTDLP) commonArgs(selector, cookieFile string) []string {
	args := []string{
		"--no-playlist",
		"--no-check-certificates",
		"--retries", "3",
		"--concurrent-fragments", "4",
		"--user-agent", userAgent,
		"-f", selector,
	}
	if y.MergeCapable {
		args = append(args, "--merge-output-format", "mp4")
	}
	if cookieFile != "" {
		args = append(args, "--cookies", cookieFile)
	}
	return args
}

// Probe runs the engine in metadata-only mode for one selector.
func (y *YTDLP) Probe(ctx context.Context, url, selector, cookieFile string) (*Metadata, error) {
	args := append(y.commonArgs(selector, cookieFile),
		"--simulate",
		"--dump-single-json",
		url,
	)

	cmd := exec.CommandContext(ctx, y.bin(), args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s", ErrProbeFailed, diagLine(stderr.String(), err))
	}

	meta := &Metadata{}
	if err := json.Unmarshal(stdout.Bytes(), meta); err != nil {
		return nil, fmt.Errorf("%w: unreadable metadata: %v", ErrProbeFailed, err)
	}
	return meta, nil
}

// Fetch performs the real transfer into dir, streaming progress
// samples to onProgress as they appear on stdout.
func (y *YTDLP) Fetch(ctx context.Context, url, selector, dir, cookieFile string, onProgress ProgressFunc) error {
	args := append(y.commonArgs(selector, cookieFile),
		"--newline",
		"-o", filepath.Join(dir, outputTemplate),
		url,
	)

	cmd := exec.CommandContext(ctx, y.bin(), args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &TransferError{Err: err}
	}
	if err := cmd.Start(); err != nil {
		return &TransferError{Err: err}
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if p, ok := parseProgressLine(scanner.Text()); ok && onProgress != nil {
			onProgress(p)
		}
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Printf("[engine] fetch failed: %v", err)
		return &TransferError{Diag: diagLine(stderr.String(), err), Err: err}
	}
	return nil
}

// parseProgressLine extracts one progress sample from an engine output
// line.
func parseProgressLine(line string) (Progress, bool) {
	m := progressRe.FindStringSubmatch(line)
	if m == nil {
		return Progress{}, false
	}
	pct, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Progress{}, false
	}
	return Progress{Percent: pct, Total: m[2], Speed: m[3], ETA: m[4]}, true
}

// diagLine condenses the engine's stderr into a single user-facing
// diagnostic, preferring its ERROR lines.
func diagLine(stderr string, fallback error) string {
	var last string
	for _, line := range strings.Split(stderr, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "ERROR:") {
			return strings.TrimSpace(strings.TrimPrefix(line, "ERROR:"))
		}
		last = line
	}
	if last != "" {
		return last
	}
	return fallback.Error()
}
