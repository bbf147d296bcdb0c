package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Transition("escalate", "ok")
	m.Transition("escalate", "ok")
	m.Transition("escalate", "invalid_state")
	m.EventPublished("task-escalated")
	m.SubscriberConnected()
	m.SubscriberConnected()
	m.SubscriberDisconnected()

	if got := testutil.ToFloat64(m.transitions.WithLabelValues("escalate", "ok")); got != 2 {
		t.Errorf("expected 2 ok escalations, got %v", got)
	}
	if got := testutil.ToFloat64(m.transitions.WithLabelValues("escalate", "invalid_state")); got != 1 {
		t.Errorf("expected 1 rejected escalation, got %v", got)
	}
	if got := testutil.ToFloat64(m.subscribers); got != 1 {
		t.Errorf("expected 1 subscriber, got %v", got)
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	m.Transition("close", "ok")
	m.EventPublished("task-created")
	m.PublishFailed("task-created")
	m.KPIQuery("user")
	m.SubscriberConnected()
	m.SubscriberDisconnected()
}
