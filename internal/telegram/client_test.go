package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClientWithHTTP(server.URL+"/bot", "test-token", server.Client())
}

func TestSendMessageFlags(t *testing.T) {
	var gotPath string
	var gotBody map[string]interface{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":99,"chat":{"id":5,"type":"private"}}}`))
	})

	msg, err := client.SendMessage(context.Background(), 5, "hallo")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if msg.MessageID != 99 {
		t.Errorf("message id = %d", msg.MessageID)
	}
	if !strings.HasSuffix(gotPath, "/bottest-token/sendMessage") {
		t.Errorf("path = %q", gotPath)
	}
	if gotBody["parse_mode"] != "HTML" {
		t.Errorf("parse_mode = %v", gotBody["parse_mode"])
	}
	if gotBody["disable_web_page_preview"] != true {
		t.Errorf("disable_web_page_preview = %v", gotBody["disable_web_page_preview"])
	}
	if _, present := gotBody["reply_markup"]; present {
		t.Error("plain SendMessage should not carry reply_markup")
	}
}

func TestSendMessageWithKeyboard(t *testing.T) {
	var gotBody struct {
		ReplyMarkup *InlineKeyboardMarkup `json:"reply_markup"`
	}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"chat":{"id":5,"type":"private"}}}`))
	})

	keyboard := [][]InlineKeyboardButton{
		{{Text: "✅ Done", CallbackData: "status done 42"}},
	}
	if _, err := client.SendMessageWithKeyboard(context.Background(), 5, "x", keyboard); err != nil {
		t.Fatalf("SendMessageWithKeyboard: %v", err)
	}
	if gotBody.ReplyMarkup == nil || len(gotBody.ReplyMarkup.InlineKeyboard) != 1 {
		t.Fatalf("reply markup = %+v", gotBody.ReplyMarkup)
	}
	if got := gotBody.ReplyMarkup.InlineKeyboard[0][0].CallbackData; got != "status done 42" {
		t.Errorf("callback data = %q", got)
	}
}

func TestEditMessageWithKeyboard(t *testing.T) {
	var gotPath string
	var gotBody map[string]interface{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"ok":true,"result":true}`))
	})

	err := client.EditMessageWithKeyboard(context.Background(), 5, 99, "bijgewerkt", nil)
	if err != nil {
		t.Fatalf("EditMessageWithKeyboard: %v", err)
	}
	if !strings.HasSuffix(gotPath, "/editMessageText") {
		t.Errorf("path = %q", gotPath)
	}
	if gotBody["message_id"] != float64(99) {
		t.Errorf("message_id = %v", gotBody["message_id"])
	}
}

func TestAnswerCallback(t *testing.T) {
	var gotBody map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"ok":true,"result":true}`))
	})

	if err := client.AnswerCallback(context.Background(), "cb-1"); err != nil {
		t.Fatalf("AnswerCallback: %v", err)
	}
	if gotBody["callback_query_id"] != "cb-1" {
		t.Errorf("callback_query_id = %q", gotBody["callback_query_id"])
	}
}

func TestGetUpdatesError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false,"error_code":401,"description":"Unauthorized"}`))
	})

	if _, err := client.GetUpdates(context.Background(), 0, 0); err == nil {
		t.Error("GetUpdates should surface API errors")
	} else if !strings.Contains(err.Error(), "Unauthorized") {
		t.Errorf("error %v missing API description", err)
	}
}

func TestGetUpdatesDecodesCallback(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true,"result":[
			{"update_id":7,"callback_query":{"id":"cb","from":{"id":1,"first_name":"A"},
			 "message":{"message_id":3,"chat":{"id":-100,"type":"group","title":"Promo"}},
			 "data":"status done 42"}}]}`))
	})

	updates, err := client.GetUpdates(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("GetUpdates: %v", err)
	}
	if len(updates) != 1 || updates[0].CallbackQuery == nil {
		t.Fatalf("updates = %+v", updates)
	}
	cb := updates[0].CallbackQuery
	if cb.Data != "status done 42" || cb.Message.Chat.Title != "Promo" {
		t.Errorf("callback = %+v", cb)
	}
	if cb.Message.Chat.IsPrivate() {
		t.Error("group chat reported as private")
	}
}
