package notifications

import (
	"fmt"

	"github.com/ayuuum/HomeServiceAI-sub000/pkg/db/models"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/enums"
)

// buildMessage renders the customer-facing copy for one notification type.
// The same text goes to LINE and to the email body; the title doubles as the
// email subject and the in-app feed headline.
func buildMessage(notifType enums.NotificationType, booking *models.Booking, org *models.Organization, customerName string) (title, body string) {
	if customerName == "" {
		customerName = "お客様"
	}
	slot := fmt.Sprintf("%s %s〜", booking.SelectedDate, booking.SelectedTime)
	amount := booking.TotalPrice - booking.Discount
	if booking.FinalAmount != nil {
		amount = *booking.FinalAmount
	}

	switch notifType {
	case enums.NotificationTypeBookingPending:
		title = "ご予約リクエストを受け付けました"
		body = fmt.Sprintf("%s様\n\nご予約リクエストありがとうございます。\n内容を確認のうえ、確定のご連絡をいたします。\n\n📅 ご希望日時: %s\n💰 お見積り: %d円\n\n%s", customerName, slot, amount, org.Name)
	case enums.NotificationTypeBookingConfirmed:
		title = "ご予約が確定しました"
		body = fmt.Sprintf("%s様\n\nご予約が確定しました。当日お伺いいたします。\n\n📅 日時: %s\n💰 料金: %d円\n\n%s", customerName, slot, amount, org.Name)
	case enums.NotificationTypeBookingCancelled:
		title = "ご予約をキャンセルしました"
		body = fmt.Sprintf("%s様\n\nご予約のキャンセルを承りました。\n\n📅 日時: %s\n\nまたのご利用をお待ちしております。\n%s", customerName, slot, org.Name)
	case enums.NotificationTypeReminder:
		title = "明日のご予約のお知らせ"
		body = fmt.Sprintf("%s様\n\n明日のご予約のリマインドです。\n\n📅 日時: %s\n\nご不明点があればお気軽にご連絡ください。\n%s", customerName, slot, org.Name)
	case enums.NotificationTypePaymentRequest:
		title = "お支払いのご案内"
		body = fmt.Sprintf("%s様\n\nご予約のお支払いリンクをお送りします。\n期限内のお手続きをお願いいたします。\n\n💰 金額: %d円\n\n%s", customerName, amount, org.Name)
	case enums.NotificationTypePaymentCompleted:
		title = "お支払いが完了しました"
		body = fmt.Sprintf("%s様\n\nお支払いを確認しました。ありがとうございます。\n\n📅 日時: %s\n💰 金額: %d円\n\n%s", customerName, slot, amount, org.Name)
	case enums.NotificationTypePaymentExpired:
		title = "お支払い期限が切れました"
		body = fmt.Sprintf("%s様\n\nお支払い期限が過ぎたため、ご予約をキャンセルしました。\n再度のご予約をご希望の場合はお手数ですがお申し込みください。\n\n%s", customerName, org.Name)
	default:
		title = "お知らせ"
		body = fmt.Sprintf("%s様\n\n%sからのお知らせです。", customerName, org.Name)
	}
	return title, body
}
