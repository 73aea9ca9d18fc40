package messenger_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elzaeemwork/autoreply-backend/internal/messenger"
)

func TestSendTextPostsToSendAPI(t *testing.T) {
	var got struct {
		Recipient struct {
			ID string `json:"id"`
		} `json:"recipient"`
		Message struct {
			Text string `json:"text"`
		} `json:"message"`
		MessagingType string `json:"messaging_type"`
	}
	var gotToken string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/me/messages" {
			t.Errorf("path = %q", r.URL.Path)
		}
		gotToken = r.URL.Query().Get("access_token")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := messenger.NewFacebookSenderWithBase(srv.URL)
	if err := s.SendText(context.Background(), "page-token", "psid-1", "هلا بيك"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotToken != "page-token" {
		t.Fatalf("access_token = %q", gotToken)
	}
	if got.Recipient.ID != "psid-1" || got.Message.Text != "هلا بيك" {
		t.Fatalf("payload = %+v", got)
	}
	if got.MessagingType != "RESPONSE" {
		t.Fatalf("messaging_type = %q", got.MessagingType)
	}
}

func TestSendTextSurfacesAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"Invalid OAuth access token"}}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	s := messenger.NewFacebookSenderWithBase(srv.URL)
	err := s.SendText(context.Background(), "bad-token", "psid-1", "test")
	if err == nil {
		t.Fatal("expected error on 400 response")
	}
}
