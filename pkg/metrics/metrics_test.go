package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, c *Collector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestCollector(t *testing.T) {
	c := New()

	c.ObserveDiscovery(nil, 120*time.Millisecond)
	c.ObserveDiscovery(errors.New("no reachable interface"), time.Second)
	c.ObserveDiscovery(nil, 80*time.Millisecond)
	c.ObserveConnect(TargetCore, nil)
	c.ObserveConnect(TargetCloud, errors.New("refused"))
	c.ObserveMessage(DirectionOut)
	c.ObserveMessage(DirectionOut)
	c.ObserveMessage(DirectionIn)

	out := scrape(t, c)
	assert.Contains(t, out, `ggd_discovery_total{result="success"} 2`)
	assert.Contains(t, out, `ggd_discovery_total{result="failure"} 1`)
	assert.Contains(t, out, `ggd_discovery_duration_seconds_count 3`)
	assert.Contains(t, out, `ggd_connect_total{result="success",target="core"} 1`)
	assert.Contains(t, out, `ggd_connect_total{result="failure",target="cloud"} 1`)
	assert.Contains(t, out, `ggd_messages_total{direction="out"} 2`)
	assert.Contains(t, out, `ggd_messages_total{direction="in"} 1`)
}

func TestCollectorIsolated(t *testing.T) {
	a, b := New(), New()
	a.ObserveMessage(DirectionIn)

	assert.NotContains(t, scrape(t, b), `ggd_messages_total{direction="in"}`)
	assert.NotContains(t, scrape(t, a), "go_goroutines", "private registry has no runtime collectors")
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.ObserveDiscovery(nil, time.Second)
		c.ObserveConnect(TargetCore, nil)
		c.ObserveMessage(DirectionOut)
	})
}
