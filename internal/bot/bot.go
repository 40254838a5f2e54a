// Package bot is the Telegram transport: it turns incoming links into
// acquisition requests and delivers the resulting files back to the
// chat.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/telefetch/telefetch/internal/core/engine"
	"github.com/telefetch/telefetch/internal/core/format"
	"github.com/telefetch/telefetch/internal/core/i18n"
	"github.com/telefetch/telefetch/internal/core/linkscan"
	"github.com/telefetch/telefetch/internal/core/pipeline"
	"github.com/telefetch/telefetch/internal/core/store"
)

// sender is the slice of the Telegram API the bot needs for output;
// narrowed so handlers can be exercised with a fake in tests.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Options wires the bot's collaborators.
type Options struct {
	Token        string
	Engine       engine.Engine
	Store        store.Store
	Ceiling      int64
	MergeCapable bool
	IGSessionID  string
	Lang         string
	TempRoot     string
}

// Bot runs the long-polling update loop and one blocking worker per
// acquisition request.
type Bot struct {
	api          *tgbotapi.BotAPI
	out          sender
	pipe         *pipeline.Pipeline
	store        store.Store
	t            *i18n.Translations
	mergeCapable bool
	igSessionID  string
}

// New connects to the Bot API and assembles the pipeline.
func New(opts Options) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(opts.Token)
	if err != nil {
		return nil, fmt.Errorf("connect to bot api: %w", err)
	}
	log.Printf("[bot] authorized as @%s", api.Self.UserName)

	return &Bot{
		api: api,
		out: api,
		pipe: &pipeline.Pipeline{
			Engine:   opts.Engine,
			Ceiling:  opts.Ceiling,
			TempRoot: opts.TempRoot,
		},
		store:        opts.Store,
		t:            i18n.T(opts.Lang),
		mergeCapable: opts.MergeCapable,
		igSessionID:  opts.IGSessionID,
	}, nil
}

// Run polls for updates until ctx is cancelled. Each message with
// links spawns its own worker goroutine so slow transfers never stall
// other chats.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			msg := update.Message
			if msg == nil || msg.Text == "" {
				continue
			}
			if msg.IsCommand() {
				b.handleCommand(msg)
				continue
			}
			go b.handleLinks(ctx, msg)
		}
	}
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start", "help":
		b.sendWelcome(msg.Chat.ID)
	case "quality":
		b.handleQuality(msg.Chat.ID, msg.CommandArguments())
	}
}

func (b *Bot) sendWelcome(chatID int64) {
	mode := b.t.Bot.ModeSingle
	if b.mergeCapable {
		mode = b.t.Bot.ModeMerge
	}
	lines := []string{
		b.t.Bot.Welcome,
		b.t.Bot.SupportedSites,
		mode,
		fmt.Sprintf(b.t.Bot.CurrentQuality, b.tierFor(chatID)),
		b.t.Bot.QualityHint,
	}
	b.reply(chatID, strings.Join(lines, "\n"))
}

func (b *Bot) handleQuality(chatID int64, args string) {
	args = strings.TrimSpace(args)
	if args == "" {
		b.reply(chatID, fmt.Sprintf(b.t.Bot.QualityUsage, b.tierFor(chatID)))
		return
	}

	tier, err := format.ParseTier(strings.Fields(args)[0])
	if err != nil {
		b.reply(chatID, b.t.Bot.QualityInvalid)
		return
	}
	if tier == format.TierHigh && !b.mergeCapable {
		b.reply(chatID, b.t.Bot.QualityNeedsMerge)
		return
	}

	b.store.Set(chatID, tier)
	b.reply(chatID, fmt.Sprintf(b.t.Bot.QualitySaved, tier))
}

// handleLinks processes every supported link in a message, in order.
func (b *Bot) handleLinks(ctx context.Context, msg *tgbotapi.Message) {
	var urls []string
	for _, u := range linkscan.FindURLs(msg.Text) {
		if linkscan.Supported(u) {
			urls = append(urls, u)
		}
	}
	if len(urls) == 0 {
		b.reply(msg.Chat.ID, b.t.Bot.SendLink)
		return
	}
	for _, u := range urls {
		b.fetchAndSend(ctx, msg.Chat.ID, u)
	}
}

// fetchAndSend runs one acquisition end to end and reports the outcome
// in the chat. Probe-level failures never reach here; everything that
// does is a single user-facing message.
func (b *Bot) fetchAndSend(ctx context.Context, chatID int64, url string) {
	tier := b.tierFor(chatID)

	status, statusErr := b.out.Send(tgbotapi.NewMessage(chatID, fmt.Sprintf(b.t.Bot.Downloading, url, tier)))
	editStatus := func(text string) {
		if statusErr != nil {
			return
		}
		if _, err := b.out.Send(tgbotapi.NewEditMessageText(chatID, status.MessageID, text)); err != nil {
			log.Printf("[bot] status edit failed: %v", err)
		}
	}

	req := pipeline.Request{
		URL:          url,
		Tier:         tier,
		MergeCapable: b.mergeCapable,
	}
	if b.igSessionID != "" && linkscan.IsInstagram(url) {
		req.CookieData = pipeline.InstagramSessionCookie(b.igSessionID)
	}

	err := b.pipe.Acquire(ctx, req, func(res pipeline.Result) error {
		editStatus(b.t.Bot.Uploading)
		return deliverFile(b.out, chatID, res.Path, res.Title)
	})

	var tle *pipeline.TooLargeError
	var te *engine.TransferError
	switch {
	case err == nil:
		editStatus(b.t.Bot.Done)
	case errors.As(err, &tle):
		editStatus(fmt.Sprintf(b.t.Bot.TooLarge, format.HumanBytes(tle.Size), format.HumanBytes(tle.Ceiling)))
	case errors.Is(err, pipeline.ErrNoArtifact):
		b.reply(chatID, b.t.Bot.NoArtifact)
	case errors.As(err, &te):
		b.reply(chatID, fmt.Sprintf(b.t.Bot.DownloadError, te.Diag))
	case errors.Is(err, context.Canceled):
		log.Printf("[bot] request for %s cancelled", url)
	default:
		b.reply(chatID, fmt.Sprintf(b.t.Bot.GenericError, err))
	}
}

func (b *Bot) tierFor(chatID int64) format.Tier {
	if tier, ok := b.store.Get(chatID); ok {
		if tier == format.TierHigh && !b.mergeCapable {
			return format.DefaultTier(false)
		}
		return tier
	}
	return format.DefaultTier(b.mergeCapable)
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.out.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Printf("[bot] send failed: %v", err)
	}
}
