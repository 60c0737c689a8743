package enums

import "fmt"

// NotificationType names the customer-facing notification kinds the hybrid
// dispatcher understands.
type NotificationType string

const (
	NotificationTypeBookingPending   NotificationType = "pending"
	NotificationTypeBookingConfirmed NotificationType = "confirmed"
	NotificationTypeBookingCancelled NotificationType = "cancelled"
	NotificationTypeReminder         NotificationType = "reminder"
	NotificationTypePaymentRequest   NotificationType = "payment_request"
	NotificationTypePaymentCompleted NotificationType = "payment_completed"
	NotificationTypePaymentExpired   NotificationType = "payment_expired"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeBookingPending,
	NotificationTypeBookingConfirmed,
	NotificationTypeBookingCancelled,
	NotificationTypeReminder,
	NotificationTypePaymentRequest,
	NotificationTypePaymentCompleted,
	NotificationTypePaymentExpired,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// IsPayment reports whether the type belongs to the payment-link flow.
func (n NotificationType) IsPayment() bool {
	switch n {
	case NotificationTypePaymentRequest, NotificationTypePaymentCompleted, NotificationTypePaymentExpired:
		return true
	default:
		return false
	}
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}

// NotificationChannel records which delivery channel actually carried a
// notification.
type NotificationChannel string

const (
	NotificationChannelLine  NotificationChannel = "line"
	NotificationChannelEmail NotificationChannel = "email"
	NotificationChannelNone  NotificationChannel = "none"
)
