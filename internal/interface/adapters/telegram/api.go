package telegramadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultBaseURL = "https://api.telegram.org"

type botAPI struct {
	http    *http.Client
	baseURL string
	token   string
}

func newBotAPI(httpClient *http.Client, baseURL, token string) *botAPI {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	return &botAPI{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
	}
}

type update struct {
	UpdateID          int64      `json:"update_id"`
	Message           *tgMessage `json:"message,omitempty"`
	EditedMessage     *tgMessage `json:"edited_message,omitempty"`
	ChannelPost       *tgMessage `json:"channel_post,omitempty"`
	EditedChannelPost *tgMessage `json:"edited_channel_post,omitempty"`
}

type tgMessage struct {
	MessageID int64   `json:"message_id"`
	Date      int64   `json:"date,omitempty"`
	Chat      *tgChat `json:"chat,omitempty"`
	From      *tgUser `json:"from,omitempty"`
	Text      string  `json:"text,omitempty"`
	Caption   string  `json:"caption,omitempty"`
}

type tgChat struct {
	ID       int64  `json:"id"`
	Type     string `json:"type,omitempty"` // private|group|supergroup|channel
	Title    string `json:"title,omitempty"`
	Username string `json:"username,omitempty"`
}

type tgUser struct {
	ID       int64  `json:"id"`
	IsBot    bool   `json:"is_bot,omitempty"`
	Username string `json:"username,omitempty"`
}

type envelope struct {
	OK          bool            `json:"ok"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Description string          `json:"description,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
}

// RequestError is a non-ok Bot API reply.
type RequestError struct {
	Method      string
	StatusCode  int
	ErrorCode   int
	Description string
}

func (e *RequestError) Error() string {
	desc := e.Description
	if desc == "" {
		desc = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("telegram %s: http %d: %s", e.Method, e.StatusCode, desc)
}

// isFatal reports whether retrying cannot help: the token was rejected.
func isFatal(err error) bool {
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		return false
	}
	return reqErr.StatusCode == http.StatusUnauthorized || reqErr.StatusCode == http.StatusNotFound
}

// call posts payload as JSON to method and decodes the result field into out.
func (api *botAPI) call(ctx context.Context, method string, payload any, out any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/bot%s/%s", api.baseURL, api.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := api.http.Do(req)
	if err != nil {
		return err
	}
	raw, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	var env envelope
	_ = json.Unmarshal(raw, &env)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.OK {
		return &RequestError{
			Method:      method,
			StatusCode:  resp.StatusCode,
			ErrorCode:   env.ErrorCode,
			Description: env.Description,
		}
	}
	if out == nil || len(env.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("telegram %s: decode result: %w", method, err)
	}
	return nil
}

func (api *botAPI) getMe(ctx context.Context) (*tgUser, error) {
	var me tgUser
	if err := api.call(ctx, "getMe", struct{}{}, &me); err != nil {
		return nil, err
	}
	return &me, nil
}

// getUpdates long-polls for updates after offset and returns the next offset.
func (api *botAPI) getUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]update, int64, error) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	secs := int(timeout.Seconds())
	if secs < 1 {
		secs = 1
	}
	payload := map[string]any{
		"timeout":         secs,
		"allowed_updates": []string{"message", "channel_post"},
	}
	if offset > 0 {
		payload["offset"] = offset
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout+5*time.Second)
	defer cancel()

	var updates []update
	if err := api.call(reqCtx, "getUpdates", payload, &updates); err != nil {
		return nil, offset, err
	}
	next := offset
	for _, u := range updates {
		if u.UpdateID >= next {
			next = u.UpdateID + 1
		}
	}
	return updates, next, nil
}

// getChat accepts a numeric id or an "@username".
func (api *botAPI) getChat(ctx context.Context, chatID any) (*tgChat, error) {
	var chat tgChat
	if err := api.call(ctx, "getChat", map[string]any{"chat_id": chatID}, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

func (api *botAPI) sendMessage(ctx context.Context, chatID int64, text string) error {
	return api.call(ctx, "sendMessage", map[string]any{
		"chat_id":                  chatID,
		"text":                     text,
		"disable_web_page_preview": true,
	}, nil)
}

func (api *botAPI) forwardMessage(ctx context.Context, toChatID, fromChatID, messageID int64) error {
	return api.call(ctx, "forwardMessage", map[string]any{
		"chat_id":      toChatID,
		"from_chat_id": fromChatID,
		"message_id":   messageID,
	}, nil)
}
