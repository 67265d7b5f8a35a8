package service

import (
	"context"
	"testing"
)

func TestBuildMessage_CollapseKeys(t *testing.T) {
	tests := []struct {
		name     string
		data     map[string]string
		collapse string
	}{
		{"missed call collapses", map[string]string{"type": "MISSED_CALL", "session_id": "4"}, "call"},
		{"interest collapses", map[string]string{"type": "INTEREST_RECEIVED"}, "interest"},
		{"payment does not collapse", map[string]string{"type": "PAYMENT_CONFIRMED"}, ""},
		{"no type does not collapse", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := buildMessage("tok", "Title", "Body", tt.data)
			if msg.Android.CollapseKey != tt.collapse {
				t.Fatalf("android collapse key = %q, want %q", msg.Android.CollapseKey, tt.collapse)
			}
			if tt.collapse == "" {
				if len(msg.APNS.Headers) != 0 {
					t.Fatalf("unexpected APNS headers: %v", msg.APNS.Headers)
				}
				return
			}
			if got := msg.APNS.Headers["apns-collapse-id"]; got != tt.collapse {
				t.Fatalf("apns-collapse-id = %q, want %q", got, tt.collapse)
			}
		})
	}
}

func TestBuildMessage_AlwaysHighPriority(t *testing.T) {
	msg := buildMessage("tok", "Title", "Body", nil)
	if msg.Android.Priority != "high" {
		t.Fatalf("android priority = %q, want high", msg.Android.Priority)
	}
	if msg.Token != "tok" || msg.Notification.Title != "Title" {
		t.Fatal("token and notification payload must carry through")
	}
}

func TestFCMSend_NilSafe(t *testing.T) {
	var s *FCMService
	if err := s.Send(context.Background(), "tok", "t", "b", nil); err != nil {
		t.Fatalf("nil service send: %v", err)
	}
}
