package reconciler

import "strings"

// State состояние попытки оплаты.
type State string

const (
	StatePending State = "PENDING"
	StateSettled State = "SETTLED"
	StateFailed  State = "FAILED"
)

// Terminal сообщает, что состояние больше не изменится.
func (s State) Terminal() bool {
	return s == StateSettled || s == StateFailed
}

// Trigger источник сверки.
type Trigger string

const (
	TriggerPoll    Trigger = "poll"
	TriggerWebhook Trigger = "webhook"
	TriggerRetry   Trigger = "retry"
)

// ClassifyStatus переводит состояние checkout из GET /checkout/{id}.
func ClassifyStatus(state string) State {
	switch strings.ToLower(strings.TrimSpace(state)) {
	case "paid", "overpaid":
		return StateSettled
	case "failed", "cancelled", "canceled", "expired":
		return StateFailed
	default:
		return StatePending
	}
}

// ClassifyEvent переводит тип вебхука. handled == false для неизвестных типов.
func ClassifyEvent(eventType string) (state State, handled bool) {
	switch eventType {
	case "payment.success", "payment.completed", "checkout.paid", "subscription.created":
		return StateSettled, true
	case "payment.failed", "payment.cancelled":
		return StateFailed, true
	default:
		return StatePending, false
	}
}
