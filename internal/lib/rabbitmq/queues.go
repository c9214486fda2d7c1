package rabbitmq

// Exchange direct-обменник, в котором публикуются все события сервиса.
const Exchange = "satsclub"

// Очереди и ключи маршрутизации.
const (
	QueueReconcileRetry        = "reconcile.retry"
	QueueSubscriptionActivated = "subscription.activated"
)

// QueueConfig описывает очередь и её привязку к Exchange.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetQueues возвращает все очереди сервиса.
func GetQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: QueueReconcileRetry, RoutingKey: QueueReconcileRetry},
		{QueueName: QueueSubscriptionActivated, RoutingKey: QueueSubscriptionActivated},
	}
}
