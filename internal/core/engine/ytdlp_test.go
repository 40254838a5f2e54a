package engine

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestCommonArgs(t *testing.T) {
	tests := []struct {
		name       string
		merge      bool
		cookieFile string
		want       []string
		absent     []string
	}{
		{
			name:   "merge capable adds remux format",
			merge:  true,
			want:   []string{"--merge-output-format", "mp4", "--no-playlist"},
			absent: []string{"--cookies"},
		},
		{
			name:   "single file mode omits remux",
			merge:  false,
			absent: []string{"--merge-output-format"},
		},
		{
			name:       "cookie file forwarded",
			cookieFile: "/tmp/cookies.txt",
			want:       []string{"--cookies", "/tmp/cookies.txt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			y := &YTDLP{MergeCapable: tt.merge}
			args := y.commonArgs("best", tt.cookieFile)
			joined := " " + strings.Join(args, " ") + " "
			for _, w := range tt.want {
				if !strings.Contains(joined, " "+w+" ") {
					t.Errorf("args %v missing %q", args, w)
				}
			}
			for _, a := range tt.absent {
				if strings.Contains(joined, " "+a+" ") {
					t.Errorf("args %v should not contain %q", args, a)
				}
			}
		})
	}
}

func TestCommonArgsSelectorIsOpaque(t *testing.T) {
	y := NewYTDLP(true)
	sel := "bv*[ext=mp4][height<=720]+ba[ext=m4a]/b/best"
	args := y.commonArgs(sel, "")
	for i, a := range args {
		if a == "-f" {
			if args[i+1] != sel {
				t.Fatalf("selector mangled: %q", args[i+1])
			}
			return
		}
	}
	t.Fatal("no -f flag in args")
}

func TestParseProgressLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		ok   bool
		pct  float64
	}{
		{
			name: "regular progress line",
			line: "[download]  42.3% of 120.50MiB at 3.21MiB/s ETA 00:42",
			ok:   true,
			pct:  42.3,
		},
		{
			name: "approximate total",
			line: "[download] 100% of ~1.10GiB at 10.00MiB/s ETA 00:00",
			ok:   true,
			pct:  100,
		},
		{
			name: "destination line is not progress",
			line: "[download] Destination: /tmp/dl_x/clip.mp4",
			ok:   false,
		},
		{
			name: "merger output",
			line: "[Merger] Merging formats into \"out.mp4\"",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := parseProgressLine(tt.line)
			if ok != tt.ok {
				t.Fatalf("parseProgressLine(%q) ok = %v; want %v", tt.line, ok, tt.ok)
			}
			if ok && p.Percent != tt.pct {
				t.Errorf("percent = %v; want %v", p.Percent, tt.pct)
			}
		})
	}
}

func TestDiagLine(t *testing.T) {
	tests := []struct {
		name   string
		stderr string
		want   string
	}{
		{
			name:   "prefers ERROR line",
			stderr: "WARNING: throttled\nERROR: Requested format is not available\n",
			want:   "Requested format is not available",
		},
		{
			name:   "falls back to last line",
			stderr: "something odd\nconnection reset\n",
			want:   "connection reset",
		},
		{
			name:   "empty stderr uses the exec error",
			stderr: "",
			want:   "exit status 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := diagLine(tt.stderr, errExit1{})
			if got != tt.want {
				t.Errorf("diagLine = %q; want %q", got, tt.want)
			}
		})
	}
}

type errExit1 struct{}

func (errExit1) Error() string { return "exit status 1" }

func TestMetadataEstimatedStreamsSize(t *testing.T) {
	m := &Metadata{RequestedFormats: []StreamInfo{
		{Filesize: 1000},
		{FilesizeApprox: 500},
		{}, // unknown stream contributes nothing
	}}
	if got := m.EstimatedStreamsSize(); got != 1500 {
		t.Errorf("EstimatedStreamsSize = %d; want 1500", got)
	}
}

func TestMetadataDecodesFloatSizes(t *testing.T) {
	// Approximate sizes are bitrate-times-duration products and come
	// back as floats; integer and null forms appear alongside them.
	payload := `{
		"title": "clip",
		"filesize": null,
		"filesize_approx": 2147483648.7,
		"requested_formats": [
			{"filesize": 1000000, "filesize_approx": null},
			{"filesize": null, "filesize_approx": 2500000.4}
		]
	}`

	var m Metadata
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if m.Filesize != 0 {
		t.Errorf("Filesize = %d; want 0", m.Filesize)
	}
	if m.FilesizeApprox != 2147483648 {
		t.Errorf("FilesizeApprox = %d; want 2147483648", m.FilesizeApprox)
	}
	if got := m.EstimatedStreamsSize(); got != 3500000 {
		t.Errorf("EstimatedStreamsSize = %d; want 3500000", got)
	}
}

func TestByteCountRejectsGarbage(t *testing.T) {
	var b ByteCount
	if err := json.Unmarshal([]byte(`"12MB"`), &b); err == nil {
		t.Error("expected error for non-numeric byte count")
	}
}
