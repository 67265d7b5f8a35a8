package service

import (
	"context"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FCMService sends push notifications via Firebase Cloud Messaging.
type FCMService struct {
	client *messaging.Client
}

// NewFCMService creates an FCM service. Returns nil if Firebase is not configured;
// all send paths are nil-safe.
func NewFCMService(serviceAccountPath string) *FCMService {
	if serviceAccountPath == "" {
		return nil
	}
	ctx := context.Background()
	opt := option.WithCredentialsFile(serviceAccountPath)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		log.Printf("[FCM] Failed to init Firebase app: %v", err)
		return nil
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		log.Printf("[FCM] Failed to get Messaging client: %v", err)
		return nil
	}
	return &FCMService{client: client}
}

// collapseKeys maps notification types to FCM collapse keys so that a burst of
// events of the same kind replaces earlier undelivered pushes instead of
// stacking up on a phone that was offline.
var collapseKeys = map[string]string{
	"MISSED_CALL":       "call",
	"INTEREST_RECEIVED": "interest",
	"INTEREST_ACCEPTED": "interest",
}

func buildMessage(token, title, body string, data map[string]string) *messaging.Message {
	android := &messaging.AndroidConfig{
		Priority: "high",
		Notification: &messaging.AndroidNotification{
			Sound: "default",
		},
	}
	apns := &messaging.APNSConfig{
		Payload: &messaging.APNSPayload{
			Aps: &messaging.Aps{
				Sound: "default",
			},
		},
	}
	if key, ok := collapseKeys[data["type"]]; ok {
		android.CollapseKey = key
		apns.Headers = map[string]string{"apns-collapse-id": key}
	}
	return &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data:    data,
		Android: android,
		APNS:    apns,
	}
}

// Send sends a push notification to the given FCM token.
func (s *FCMService) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	if s == nil || token == "" {
		return nil
	}
	_, err := s.client.Send(ctx, buildMessage(token, title, body, data))
	if err != nil {
		log.Printf("[FCM] send failed: %v", err)
	}
	return err
}
