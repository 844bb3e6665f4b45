package telegram

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// update carries the fields of a Telegram Update the listener acts on.
type update struct {
	UpdateID int `json:"update_id"`
	Message  struct {
		Text string `json:"text"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
		From struct {
			Username string `json:"username"`
		} `json:"from"`
	} `json:"message"`
}

type pollResponse struct {
	Ok          bool     `json:"ok"`
	Result      []update `json:"result"`
	Description string   `json:"description"`
	ErrorCode   int      `json:"error_code"`
}

// CommandHandler processes a /command and returns the reply text.
type CommandHandler func(command string) string

const pollRetryDelay = 5 * time.Second

// StartListener long-polls getUpdates and feeds /commands to handler. It
// blocks, so run it in a goroutine. Only the configured chat gets replies;
// messages from any other chat are logged and left unanswered.
func StartListener(handler CommandHandler) {
	token, chatIDStr, ok := creds()
	if !ok {
		log.Println("Telegram listener: credentials missing, disabled")
		return
	}
	chatID, _ := strconv.ParseInt(chatIDStr, 10, 64)

	log.Println("Telegram listener: started")

	offset := 0
	for {
		updates, err := fetchUpdates(token, offset)
		if err != nil {
			log.Printf("Telegram listener: %v", err)
			time.Sleep(pollRetryDelay)
			continue
		}
		for _, u := range updates {
			offset = u.UpdateID + 1
			dispatch(u, chatID, handler)
		}
	}
}

// fetchUpdates does one long-poll round against getUpdates.
func fetchUpdates(token string, offset int) ([]update, error) {
	url := fmt.Sprintf("%s%s/getUpdates?offset=%d&timeout=60", apiBase, token, offset)
	resp, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out pollResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode getUpdates: %w", err)
	}
	if !out.Ok {
		return nil, fmt.Errorf("getUpdates: %s (code %d)", out.Description, out.ErrorCode)
	}
	return out.Result, nil
}

func dispatch(u update, authChatID int64, handler CommandHandler) {
	if u.Message.Chat.ID != authChatID {
		log.Printf("Telegram listener: ignoring chat %d (@%s): %s",
			u.Message.Chat.ID, u.Message.From.Username, u.Message.Text)
		return
	}
	text := strings.TrimSpace(u.Message.Text)
	if !strings.HasPrefix(text, "/") {
		return
	}
	log.Printf("Telegram listener: command %s", text)
	Notify(handler(text))
}
