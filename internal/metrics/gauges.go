package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// gaugeTimeout ограничение на запрос к хранилищу при сборе метрик.
const gaugeTimeout = 2 * time.Second

// StatsSource текущие значения из хранилища.
type StatsSource interface {
	CountActiveSubscribers(ctx context.Context) (int, error)
	CountContent(ctx context.Context) (int, error)
}

// RegisterStoreGauges регистрирует gauge, читающие значения из хранилища при каждом scrape.
// При ошибке хранилища отдаётся -1.
func RegisterStoreGauges(reg prometheus.Registerer, src StatsSource) error {
	gauges := []prometheus.Collector{
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "satsclub",
			Name:      "active_subscribers",
			Help:      "Users with an active subscription.",
		}, countFunc(src.CountActiveSubscribers)),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "satsclub",
			Name:      "content_items",
			Help:      "Stored content items.",
		}, countFunc(src.CountContent)),
	}
	for _, g := range gauges {
		if err := reg.Register(g); err != nil {
			return err
		}
	}
	return nil
}

func countFunc(count func(context.Context) (int, error)) func() float64 {
	return func() float64 {
		ctx, cancel := context.WithTimeout(context.Background(), gaugeTimeout)
		defer cancel()
		n, err := count(ctx)
		if err != nil {
			return -1
		}
		return float64(n)
	}
}
