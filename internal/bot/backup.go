package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"budgetbot/internal/dialog"
	"budgetbot/internal/log"
)

// sendBackup ships the raw database file into the chat.
func (b *Bot) sendBackup(ctx context.Context, chatID int64) {
	path := b.store.DBPath()
	if _, err := os.Stat(path); err != nil {
		b.logger.ErrorContext(ctx, "backup file missing",
			log.FieldChatID, chatID, log.FieldError, err)
		b.sendPlain(chatID, "There is no database to back up yet.")
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	doc.Caption = "Database backup. Send it back with /restore to roll back to this state."
	b.send(doc)

	b.logger.InfoContext(ctx, "backup sent", log.FieldChatID, chatID)
}

// startRestore arms the restore flow; the next document in the chat
// replaces the database.
func (b *Bot) startRestore(chatID int64) {
	b.dialogs.Set(chatID, dialog.State{Action: dialog.ActionWaitingRestoreFile})
	b.sendPlain(chatID, "Send the backup file as a document. This REPLACES the current database. Send CANCEL to abort.")
}

// handleDocument consumes a document only when a restore is pending for the
// chat; anything else is ignored. The pending state is cleared no matter
// how the restore ends.
func (b *Bot) handleDocument(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	state, ok := b.dialogs.Get(chatID)
	if !ok || state.Action != dialog.ActionWaitingRestoreFile {
		return
	}
	b.dialogs.Clear(chatID)

	if err := b.restoreFromDocument(ctx, msg.Document); err != nil {
		b.logger.ErrorContext(ctx, "restore failed",
			log.FieldChatID, chatID, log.FieldError, err)
		b.sendPlain(chatID, "Restore failed, the previous database is still in place.")
		return
	}

	b.logger.InfoContext(ctx, "database restored", log.FieldChatID, chatID)
	b.sendPlain(chatID, "Database restored.")
}

func (b *Bot) restoreFromDocument(ctx context.Context, doc *tgbotapi.Document) error {
	url, err := b.api.GetFileDirectURL(doc.FileID)
	if err != nil {
		return fmt.Errorf("resolve file url: %w", err)
	}

	tmp, err := b.downloadToTemp(ctx, url)
	if err != nil {
		return err
	}
	defer os.Remove(tmp)

	return b.store.Restore(tmp)
}

func (b *Bot) downloadToTemp(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build download request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download backup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download backup: unexpected status %s", resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(b.store.DBPath()), "restore-*.db")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write backup: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return tmp.Name(), nil
}
