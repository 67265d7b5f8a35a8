package service

import (
	"context"
	"encoding/json"
	"fmt"

	"rishta/internal/models"
	"rishta/internal/repository"
)

type NotificationService struct {
	repo     *repository.NotificationRepository
	userRepo *repository.UserRepository
	fcm      *FCMService
}

func NewNotificationService(repo *repository.NotificationRepository, userRepo *repository.UserRepository, fcm *FCMService) *NotificationService {
	return &NotificationService{repo: repo, userRepo: userRepo, fcm: fcm}
}

func (s *NotificationService) Notify(userID uint, notifType, title, body string, data map[string]interface{}) error {
	var dataJSON string
	if data != nil {
		b, _ := json.Marshal(data)
		dataJSON = string(b)
	}
	err := s.repo.Create(&models.Notification{
		UserID: userID,
		Type:   notifType,
		Title:  title,
		Body:   body,
		Data:   dataJSON,
	})
	if err != nil {
		return err
	}
	s.sendPush(userID, notifType, title, body, data)
	return nil
}

func (s *NotificationService) sendPush(userID uint, notifType, title, body string, data map[string]interface{}) {
	if s.fcm == nil || s.userRepo == nil {
		return
	}
	u, err := s.userRepo.GetByID(userID)
	if err != nil || u == nil || u.FCMToken == "" {
		return
	}
	push := make(map[string]string, len(data)+1)
	for k, v := range data {
		push[k] = fmt.Sprintf("%v", v)
	}
	push["type"] = notifType
	_ = s.fcm.Send(context.Background(), u.FCMToken, title, body, push)
}

func (s *NotificationService) NotifyInterestReceived(toUserID uint, interestID uint, fromName string) error {
	return s.Notify(toUserID, "INTEREST_RECEIVED", "New interest",
		fromName+" has expressed interest in your profile",
		map[string]interface{}{"interest_id": interestID})
}

func (s *NotificationService) NotifyInterestAccepted(fromUserID uint, otherName string) error {
	return s.Notify(fromUserID, "INTEREST_ACCEPTED", "It's a match",
		otherName+" accepted your interest. You can now call each other.",
		nil)
}

func (s *NotificationService) NotifyProfileApproved(userID uint) error {
	return s.Notify(userID, "PROFILE_APPROVED", "Profile approved",
		"Your profile is live and will appear in search results.", nil)
}

func (s *NotificationService) NotifyProfileRejected(userID uint, reason string) error {
	body := "Your profile was not approved."
	if reason != "" {
		body = "Your profile was not approved: " + reason
	}
	return s.Notify(userID, "PROFILE_REJECTED", "Profile rejected", body, nil)
}

func (s *NotificationService) NotifyPaymentConfirmed(userID uint, credits int64, reference string) error {
	return s.Notify(userID, "PAYMENT_CONFIRMED", "Payment confirmed",
		fmt.Sprintf("%d call credits have been added to your account.", credits),
		map[string]interface{}{"credits": credits, "reference": reference})
}

func (s *NotificationService) NotifyMissedCall(userID uint, callerName string, sessionID uint) error {
	return s.Notify(userID, "MISSED_CALL", "Missed call",
		callerName+" tried to call you",
		map[string]interface{}{"session_id": sessionID})
}
