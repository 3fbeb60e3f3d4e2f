package domain

import "fmt"

// Notification is a rendered push notification.
type Notification struct {
	Title string
	Body  string
}

// Transport status values as published by the ordering backend.
const (
	StatusArrivedAtOrigin = "رسیدن به مبدا"
	StatusDelivered       = "خاتمه یافته"
	StatusRejected        = "مردود"
)

// ResolveTemplate maps an (event, status) pair to its notification template
// and tenant scope. The mapping is closed: an unknown pair is a no-op, not an
// error. Interpolated fields are substituted verbatim.
func ResolveTemplate(event string, data EventData) (Notification, TenantScope, bool) {
	switch event {
	case "finding-driver":
		var vehicle, plate string
		if data.Driver != nil {
			vehicle = data.Driver.Vehicle
			plate = data.Driver.LicensePlate
		}
		return Notification{
			Title: "باربر پیدا شد",
			Body:  fmt.Sprintf("%s %s", vehicle, plate),
		}, ScopeUser, true
	case "transport-status":
		switch data.Status {
		case StatusArrivedAtOrigin:
			return Notification{
				Title: "باربر شما رسید",
				Body:  "کاربر گرامی باربر شما در مبدا منتظر است",
			}, ScopeUser, true
		case StatusDelivered:
			return Notification{
				Title: "بار تحویل داده شد",
				Body:  "کاربر گرامی بار شما با موفقیت به مقصد رسید",
			}, ScopeUser, true
		case StatusRejected:
			return Notification{
				Title: "سفارش شما رد شد",
				Body:  fmt.Sprintf("کاربر گرامی سفارش شما به دلیل %s رد شد", data.Reason),
			}, ScopeUser, true
		}
		return Notification{}, "", false
	case "order-registered":
		var number, total string
		if data.Order != nil {
			number = data.Order.Number
			total = data.Order.Total
		}
		return Notification{
			Title: "سفارش جدید ثبت شد",
			Body:  fmt.Sprintf("سفارش شماره %s به مبلغ %s ثبت شد", number, total),
		}, ScopeCorporate, true
	}
	return Notification{}, "", false
}
