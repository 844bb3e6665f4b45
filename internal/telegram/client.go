// Package telegram pushes dashboard alerts and answers slash commands over
// the Bot API. Credentials come from the environment; without them every
// entry point degrades to a logged no-op so the dashboard runs without a bot.
package telegram

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"os"
)

const apiBase = "https://api.telegram.org/bot"

// creds reads the bot token and the one authorized chat from the environment.
func creds() (token, chatID string, ok bool) {
	token = os.Getenv("TELEGRAM_BOT_TOKEN")
	chatID = os.Getenv("TELEGRAM_CHAT_ID")
	return token, chatID, token != "" && chatID != ""
}

// Notify sends a Markdown message to the configured chat.
func Notify(text string) {
	token, chatID, ok := creds()
	if !ok {
		log.Println("Warning: Telegram credentials missing, skipping notification")
		return
	}

	body, _ := json.Marshal(map[string]string{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "Markdown",
	})

	resp, err := http.Post(apiBase+token+"/sendMessage", "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("Telegram send failed: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("Telegram send rejected: %s", resp.Status)
	}
}
