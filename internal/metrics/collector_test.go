package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/fluentwait/locator"
	fwtestutil "github.com/BaSui01/fluentwait/testutil"
	"github.com/BaSui01/fluentwait/testutil/mocks"
	"github.com/BaSui01/fluentwait/types"
	"github.com/BaSui01/fluentwait/wait"
)

// =============================================================================
// 🧪 Collector 测试
// =============================================================================

func newTestCollector(t *testing.T) (*Collector, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewCollector("test", reg, zap.NewNop()), reg
}

func TestNewCollector(t *testing.T) {
	c, _ := newTestCollector(t)

	assert.NotNil(t, c.pollsTotal)
	assert.NotNil(t, c.pollDuration)
	assert.NotNil(t, c.waitsTotal)
	assert.NotNil(t, c.waitDuration)
	assert.NotNil(t, c.waitAttempts)
	assert.NotNil(t, c.findErrors)
}

func TestNewCollector_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector("dup", reg, nil)
	assert.Panics(t, func() { NewCollector("dup", reg, nil) })
}

func TestCollector_ObservePoll(t *testing.T) {
	c, _ := newTestCollector(t)

	c.ObservePoll("Selector css=#a", 2*time.Millisecond, nil)
	c.ObservePoll("Selector css=#a", 3*time.Millisecond, types.NotFound("css=#a"))
	c.ObservePoll("Selector css=#a", 3*time.Millisecond, types.NotFound("css=#a"))
	c.ObservePoll("Selector css=#a", time.Millisecond, errors.New("plain"))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.pollsTotal.WithLabelValues("ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.pollsTotal.WithLabelValues("element_not_found")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.findErrors.WithLabelValues("element_not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.findErrors.WithLabelValues("unknown")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.pollDuration))
}

func TestCollector_ObserveWait(t *testing.T) {
	c, _ := newTestCollector(t)

	c.ObserveWait("d", wait.OutcomeSuccess, 100*time.Millisecond, 3)
	c.ObserveWait("d", wait.OutcomeTimeout, 5*time.Second, 10)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.waitsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.waitsTotal.WithLabelValues("timeout")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.waitsTotal.WithLabelValues("error")))
	assert.Equal(t, 2, testutil.CollectAndCount(c.waitDuration))
}

func TestCollector_AsWaitObserver(t *testing.T) {
	ctx := fwtestutil.TestContext(t)
	c, reg := newTestCollector(t)

	loc := locator.ByCSS("#late")
	s := mocks.NewMockSearch().WithElements(loc, mocks.NewFakeElement("div"))
	s.PushResult(nil, types.NewError(types.ErrDriverError, "flaky"))

	w := wait.New(s, wait.WithObserver(c)).
		AtMost(time.Second).
		PollingEvery(5 * time.Millisecond).
		Ignoring(types.ErrDriverError)
	require.NoError(t, w.Until(loc).IsPresent(ctx))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.waitsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.findErrors.WithLabelValues("driver_error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.pollsTotal.WithLabelValues("ok")))

	// textfile 输出
	path := filepath.Join(t.TempDir(), "fluentwait.prom")
	require.NoError(t, prometheus.WriteToTextfile(path, reg))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `test_waits_total{outcome="success"} 1`)
}
