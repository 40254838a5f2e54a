package bot

import (
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/telefetch/telefetch/internal/core/format"
	"github.com/telefetch/telefetch/internal/core/i18n"
)

type memStore struct {
	prefs map[int64]format.Tier
}

func (m *memStore) Get(chatID int64) (format.Tier, bool) {
	t, ok := m.prefs[chatID]
	return t, ok
}

func (m *memStore) Set(chatID int64, t format.Tier) {
	m.prefs[chatID] = t
}

func newTestBot(merge bool) (*Bot, *fakeSender, *memStore) {
	fs := &fakeSender{}
	ms := &memStore{prefs: map[int64]format.Tier{}}
	return &Bot{
		out:          fs,
		store:        ms,
		t:            i18n.T("en"),
		mergeCapable: merge,
	}, fs, ms
}

func lastText(t *testing.T, fs *fakeSender) string {
	t.Helper()
	if len(fs.sent) == 0 {
		t.Fatal("nothing sent")
	}
	msg, ok := fs.sent[len(fs.sent)-1].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("last send is %T; want MessageConfig", fs.sent[len(fs.sent)-1])
	}
	return msg.Text
}

func TestHandleQualitySaves(t *testing.T) {
	b, fs, ms := newTestBot(true)

	b.handleQuality(5, "480")

	if tier, ok := ms.prefs[5]; !ok || tier != format.TierMedium {
		t.Errorf("stored tier = %v, %v; want TierMedium", tier, ok)
	}
	if got := lastText(t, fs); !strings.Contains(got, "480p") {
		t.Errorf("confirmation = %q", got)
	}
}

func TestHandleQualityRejectsInvalid(t *testing.T) {
	b, fs, ms := newTestBot(true)

	b.handleQuality(5, "1080")

	if len(ms.prefs) != 0 {
		t.Error("invalid quality must not be stored")
	}
	if got := lastText(t, fs); !strings.Contains(got, "360") {
		t.Errorf("rejection message = %q", got)
	}
}

func TestHandleQuality720NeedsMerge(t *testing.T) {
	b, fs, ms := newTestBot(false)

	b.handleQuality(5, "720")

	if len(ms.prefs) != 0 {
		t.Error("720p must not be stored in single-file mode")
	}
	if got := lastText(t, fs); got != b.t.Bot.QualityNeedsMerge {
		t.Errorf("message = %q", got)
	}
}

func TestHandleQualityNoArgsShowsCurrent(t *testing.T) {
	b, fs, _ := newTestBot(true)

	b.handleQuality(5, "  ")

	if got := lastText(t, fs); !strings.Contains(got, "720p") {
		t.Errorf("usage message %q should show the default tier", got)
	}
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		name   string
		merge  bool
		stored map[int64]format.Tier
		want   format.Tier
	}{
		{name: "stored preference wins", merge: true, stored: map[int64]format.Tier{1: format.TierLow}, want: format.TierLow},
		{name: "default with merge", merge: true, want: format.TierHigh},
		{name: "default without merge", merge: false, want: format.TierMedium},
		{name: "stored high downgraded without merge", merge: false, stored: map[int64]format.Tier{1: format.TierHigh}, want: format.TierMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, _, ms := newTestBot(tt.merge)
			for id, tier := range tt.stored {
				ms.prefs[id] = tier
			}
			if got := b.tierFor(1); got != tt.want {
				t.Errorf("tierFor = %v; want %v", got, tt.want)
			}
		})
	}
}
