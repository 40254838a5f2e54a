package bot

import (
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// deliverFile uploads the artifact as a streamable video first; if
// that mode fails for any reason it retries exactly once as a plain
// document before reporting failure.
func deliverFile(s sender, chatID int64, path, caption string) error {
	video := tgbotapi.NewVideo(chatID, tgbotapi.FilePath(path))
	video.Caption = caption
	video.SupportsStreaming = true
	if _, err := s.Send(video); err == nil {
		return nil
	} else {
		log.Printf("[bot] video delivery failed, retrying as document: %v", err)
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	doc.Caption = caption
	if _, err := s.Send(doc); err != nil {
		return fmt.Errorf("document delivery failed: %w", err)
	}
	return nil
}
