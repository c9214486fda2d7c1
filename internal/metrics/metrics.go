// Package metrics счётчики Prometheus для приёма оплат.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReconcileTotal результаты сверки оплаты по источнику, состоянию и итогу.
	ReconcileTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "satsclub",
		Name:      "reconcile_total",
		Help:      "Settlement reconciliations by trigger, observed state and result.",
	}, []string{"trigger", "state", "result"})

	// WebhookTotal входящие вебхуки по итогу обработки.
	WebhookTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "satsclub",
		Name:      "webhook_total",
		Help:      "Inbound payment webhooks by outcome.",
	}, []string{"outcome"})

	// CheckoutTotal попытки создания checkout.
	CheckoutTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "satsclub",
		Name:      "checkout_total",
		Help:      "Checkout creation attempts by result.",
	}, []string{"result"})

	// EntitlementFailuresTotal оплата подтверждена, но подписка не записана.
	EntitlementFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "satsclub",
		Name:      "entitlement_failures_total",
		Help:      "Settled payments whose entitlement write failed.",
	})
)

// Значения метки result.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Значения метки outcome для вебхуков.
const (
	WebhookProcessed        = "processed"
	WebhookUnhandled        = "unhandled"
	WebhookInvalidSignature = "invalid_signature"
	WebhookMalformed        = "malformed"
	WebhookUnsigned         = "unsigned_accepted"
	WebhookError            = "error"
)
