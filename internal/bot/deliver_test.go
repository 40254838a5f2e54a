package bot

import (
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// fakeSender scripts per-call outcomes and records what was sent.
type fakeSender struct {
	errs []error // outcome per call, nil = success
	sent []tgbotapi.Chattable
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	i := len(f.sent) - 1
	if i < len(f.errs) {
		return tgbotapi.Message{}, f.errs[i]
	}
	return tgbotapi.Message{}, nil
}

func TestDeliverFileRichModeFirst(t *testing.T) {
	fs := &fakeSender{}
	if err := deliverFile(fs, 7, "/tmp/a.mp4", "title"); err != nil {
		t.Fatalf("deliverFile: %v", err)
	}
	if len(fs.sent) != 1 {
		t.Fatalf("sent %d messages; want 1", len(fs.sent))
	}
	v, ok := fs.sent[0].(tgbotapi.VideoConfig)
	if !ok {
		t.Fatalf("first send is %T; want VideoConfig", fs.sent[0])
	}
	if !v.SupportsStreaming || v.Caption != "title" {
		t.Errorf("video config = %+v", v)
	}
}

func TestDeliverFileFallsBackToDocumentOnce(t *testing.T) {
	fs := &fakeSender{errs: []error{errors.New("entity too large")}}
	if err := deliverFile(fs, 7, "/tmp/a.mp4", "title"); err != nil {
		t.Fatalf("deliverFile: %v", err)
	}
	if len(fs.sent) != 2 {
		t.Fatalf("sent %d messages; want video then document", len(fs.sent))
	}
	if _, ok := fs.sent[1].(tgbotapi.DocumentConfig); !ok {
		t.Fatalf("fallback send is %T; want DocumentConfig", fs.sent[1])
	}
}

func TestDeliverFileBothModesFail(t *testing.T) {
	fs := &fakeSender{errs: []error{errors.New("a"), errors.New("b")}}
	if err := deliverFile(fs, 7, "/tmp/a.mp4", "t"); err == nil {
		t.Fatal("want error when both modes fail")
	}
	if len(fs.sent) != 2 {
		t.Errorf("sent %d messages; the generic mode must be tried exactly once", len(fs.sent))
	}
}
