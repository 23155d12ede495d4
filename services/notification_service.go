package services

import (
	"context"
	"fmt"
	"log"
	"os"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"gopkg.in/gomail.v2"

	"github.com/resellerhub/resellerhub_backend/config"
	"github.com/resellerhub/resellerhub_backend/models"
	"github.com/resellerhub/resellerhub_backend/utils"
	"github.com/resellerhub/resellerhub_backend/websocket"
)

// NotificationService dispatches commission lifecycle notifications: an
// in-app notification row, a websocket push for connected clients, and an
// email for transitions the reseller must hear about. All dispatch is
// best-effort; failures are logged and never returned to the caller.
type NotificationService struct {
	DB  *mongo.Client
	Hub *websocket.Hub
}

func NewNotificationService(db *mongo.Client, hub *websocket.Hub) *NotificationService {
	return &NotificationService{DB: db, Hub: hub}
}

// NotifyCommissionEvent implements the notification side of a lifecycle
// transition. Requested events go to admins awaiting review; all other events
// go to the commission's reseller.
func (s *NotificationService) NotifyCommissionEvent(ctx context.Context, event CommissionEvent) {
	commission := event.Commission
	title, message := commissionEventText(event)

	data := map[string]interface{}{
		"commissionId": commission.ID.Hex(),
		"amount":       commission.Amount,
		"period":       commission.Period,
	}
	if commission.RejectionReason != "" {
		data["rejectionReason"] = commission.RejectionReason
	}
	if commission.PaymentReference != "" {
		data["paymentReference"] = commission.PaymentReference
	}
	if event.RuleName != "" {
		data["ruleName"] = event.RuleName
	}

	if event.Type == models.NotificationTypeCommissionRequested {
		s.notifyAdmins(ctx, event.Type, title, message, data)
		return
	}

	// Resolve the reseller's portal user for in-app and email delivery
	var reseller models.Reseller
	err := config.GetCollection(s.DB, "resellers").FindOne(ctx, bson.M{"_id": commission.ResellerID}).Decode(&reseller)
	if err != nil {
		log.Printf("Failed to find reseller %s for notification: %v", commission.ResellerID.Hex(), err)
		return
	}

	if err := utils.SaveNotification(s.DB, reseller.UserID, title, message, event.Type, data); err != nil {
		log.Printf("Failed to save notification for reseller %s: %v", reseller.ID.Hex(), err)
	}

	if s.Hub != nil {
		if err := s.Hub.SendToUser(reseller.UserID, websocket.Notification{
			Type:    event.Type,
			Message: message,
			Data:    data,
			UserID:  reseller.UserID.Hex(),
		}); err != nil {
			// Reseller simply isn't connected; the in-app row still lands
			log.Printf("Websocket push skipped for user %s: %v", reseller.UserID.Hex(), err)
		}
	}

	// Email dispatch is fire-and-forget; a delivery failure never blocks or
	// fails the transition
	go sendEmail(reseller.Email, title, message)
}

// notifyAdmins stores an in-app notification for every admin user
func (s *NotificationService) notifyAdmins(ctx context.Context, notifType, title, message string, data map[string]interface{}) {
	cursor, err := config.GetCollection(s.DB, "users").Find(ctx, bson.M{"userType": models.UserTypeAdmin})
	if err != nil {
		log.Printf("Failed to find admins for notification: %v", err)
		return
	}
	defer cursor.Close(ctx)

	var admins []models.User
	if err := cursor.All(ctx, &admins); err != nil {
		log.Printf("Failed to decode admins for notification: %v", err)
		return
	}

	for _, admin := range admins {
		if err := utils.SaveNotification(s.DB, admin.ID, title, message, notifType, data); err != nil {
			log.Printf("Failed to save admin notification: %v", err)
		}
		if s.Hub != nil {
			_ = s.Hub.SendToUser(admin.ID, websocket.Notification{
				Type:    notifType,
				Message: message,
				Data:    data,
				UserID:  admin.ID.Hex(),
			})
		}
	}
}

// commissionEventText builds the user-facing title and message for an event
func commissionEventText(event CommissionEvent) (string, string) {
	c := event.Commission
	switch event.Type {
	case models.NotificationTypeCommissionRequested:
		return "New Commission Request",
			fmt.Sprintf("A commission request of %.2f for period %s is awaiting review.", c.Amount, c.Period)
	case models.NotificationTypeCommissionApproved:
		if c.AutoApproved {
			return "Commission Approved",
				fmt.Sprintf("Your commission of %.2f for period %s was automatically approved (rule: %s).", c.Amount, c.Period, event.RuleName)
		}
		return "Commission Approved",
			fmt.Sprintf("Your commission of %.2f for period %s has been approved.", c.Amount, c.Period)
	case models.NotificationTypeCommissionRejected:
		return "Commission Rejected",
			fmt.Sprintf("Your commission of %.2f for period %s was rejected: %s", c.Amount, c.Period, c.RejectionReason)
	case models.NotificationTypeCommissionPaid:
		if c.PaymentReference != "" {
			return "Commission Paid",
				fmt.Sprintf("Your commission of %.2f for period %s has been paid. Payment reference: %s", c.Amount, c.Period, c.PaymentReference)
		}
		return "Commission Paid",
			fmt.Sprintf("Your commission of %.2f for period %s has been paid.", c.Amount, c.Period)
	default:
		return "Commission Update",
			fmt.Sprintf("Your commission of %.2f for period %s was updated.", c.Amount, c.Period)
	}
}

// sendEmail delivers a plain-text email over SMTP using gomail
func sendEmail(to, subject, body string) {
	if to == "" {
		return
	}

	smtpHost := os.Getenv("SMTP_HOST")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")
	smtpPort := 2525
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		fmt.Sscanf(portStr, "%d", &smtpPort)
	}
	if smtpHost == "" {
		log.Printf("SMTP_HOST not configured, skipping email to %s", to)
		return
	}

	m := gomail.NewMessage()
	m.SetHeader("From", smtpUser)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPass)
	if err := d.DialAndSend(m); err != nil {
		log.Printf("Failed to send email to %s: %v", to, err)
	}
}
