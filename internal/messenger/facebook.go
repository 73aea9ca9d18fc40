package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const graphBaseURL = "https://graph.facebook.com/v18.0"

// Sender pushes replies back to a messaging platform.
type Sender interface {
	SendText(ctx context.Context, accessToken, recipientID, text string) error
}

// FacebookSender talks to the Messenger Send API with a page access token.
type FacebookSender struct {
	httpClient *http.Client
	baseURL    string
}

func NewFacebookSender() *FacebookSender {
	return &FacebookSender{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    graphBaseURL,
	}
}

// NewFacebookSenderWithBase is for tests pointing at a local server.
func NewFacebookSenderWithBase(baseURL string) *FacebookSender {
	s := NewFacebookSender()
	s.baseURL = baseURL
	return s
}

type sendRequest struct {
	Recipient     sendRecipient `json:"recipient"`
	Message       sendMessage   `json:"message"`
	MessagingType string        `json:"messaging_type"`
}

type sendRecipient struct {
	ID string `json:"id"`
}

type sendMessage struct {
	Text string `json:"text"`
}

func (s *FacebookSender) SendText(ctx context.Context, accessToken, recipientID, text string) error {
	body, err := json.Marshal(sendRequest{
		Recipient:     sendRecipient{ID: recipientID},
		Message:       sendMessage{Text: text},
		MessagingType: "RESPONSE",
	})
	if err != nil {
		return fmt.Errorf("messenger: marshal send request: %w", err)
	}

	endpoint := s.baseURL + "/me/messages?access_token=" + url.QueryEscape(accessToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("messenger: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("messenger: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("messenger: send API status %d: %s", resp.StatusCode, string(snippet))
	}
	return nil
}
