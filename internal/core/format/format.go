package format

import (
	"fmt"
	"strings"
)

// Tier is a per-chat quality preference ceiling.
type Tier int

const (
	TierLow    Tier = iota // up to 360p
	TierMedium             // up to 480p
	TierHigh               // up to 720p
)

// ladderHeights are all height ceilings the ladder can step through,
// highest first.
var ladderHeights = []int{720, 480, 360}

// Height returns the pixel-height ceiling for the tier.
func (t Tier) Height() int {
	switch t {
	case TierHigh:
		return 720
	case TierMedium:
		return 480
	default:
		return 360
	}
}

func (t Tier) String() string {
	return fmt.Sprintf("%dp", t.Height())
}

// ParseTier parses a user-supplied quality string like "480" or "720p".
func ParseTier(s string) (Tier, error) {
	switch strings.TrimSuffix(strings.TrimSpace(strings.ToLower(s)), "p") {
	case "360":
		return TierLow, nil
	case "480":
		return TierMedium, nil
	case "720":
		return TierHigh, nil
	}
	return TierLow, fmt.Errorf("unknown quality %q (choose 360, 480 or 720)", s)
}

// DefaultTier is the preference used for chats that never ran /quality.
// 720p only makes sense when separate streams can be merged afterwards.
func DefaultTier(mergeCapable bool) Tier {
	if mergeCapable {
		return TierHigh
	}
	return TierMedium
}

// Candidate is one rung of the format ladder: a structured descriptor
// from which the engine's opaque selector string is derived only at
// the call boundary.
type Candidate struct {
	// Height is the pixel-height ceiling; 0 means unconstrained
	// ("best available, any container").
	Height int

	// Split requests separate best-video/best-audio streams to be
	// merged after transfer. Only set when merging is available.
	Split bool

	// Rank is the candidate's position in the ladder, 0 = most
	// preferred.
	Rank int
}

// Selector renders the extraction engine's format-selector string.
// The chains mirror well-known yt-dlp selector syntax: each candidate
// already carries its own soft fallbacks so that "format not
// available" errors stay rare.
func (c Candidate) Selector() string {
	if c.Split {
		if c.Height == 0 {
			return "b/best"
		}
		return fmt.Sprintf("bv*[ext=mp4][height<=%d]+ba[ext=m4a]/bv*+ba/b[ext=mp4][height<=%d]/b/best", c.Height, c.Height)
	}
	if c.Height == 0 {
		return "best"
	}
	return fmt.Sprintf("best[ext=mp4][height<=%d]/best[height<=%d]/best", c.Height, c.Height)
}

// Ladder builds the ordered fallback chain for one acquisition:
// strictly descending quality ceilings starting at the tier's height,
// terminated by the unconstrained last-resort candidate. Merge-capable
// ladders request split streams; otherwise every candidate asks for a
// single already-muxed file.
func Ladder(tier Tier, mergeCapable bool) []Candidate {
	var out []Candidate
	for _, h := range ladderHeights {
		if h > tier.Height() {
			continue
		}
		out = append(out, Candidate{Height: h, Split: mergeCapable, Rank: len(out)})
	}
	out = append(out, Candidate{Split: mergeCapable, Rank: len(out)})
	return out
}

// HumanBytes renders a byte count for user-facing messages.
func HumanBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
