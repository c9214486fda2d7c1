package metrics

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statsStub struct {
	subscribers int
	contentErr  error
}

func (s statsStub) CountActiveSubscribers(context.Context) (int, error) { return s.subscribers, nil }
func (s statsStub) CountContent(context.Context) (int, error)           { return 0, s.contentErr }

func TestRegisterStoreGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, RegisterStoreGauges(reg, statsStub{subscribers: 7, contentErr: errors.New("db down")}))

	expected := `
# HELP satsclub_active_subscribers Users with an active subscription.
# TYPE satsclub_active_subscribers gauge
satsclub_active_subscribers 7
# HELP satsclub_content_items Stored content items.
# TYPE satsclub_content_items gauge
satsclub_content_items -1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected)))

	assert.Error(t, RegisterStoreGauges(reg, statsStub{}), "duplicate registration")
}
