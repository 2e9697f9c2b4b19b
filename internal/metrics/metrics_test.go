package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/goshape"
	"github.com/reoring/goshape/source"
)

func TestCollector_Observe(t *testing.T) {
	registry := prometheus.NewRegistry()
	c := NewCollector(registry)

	_, verr := goshape.Validate(goshape.Int, "x")
	require.Error(t, verr)

	c.Observe("entries", time.Millisecond, nil)
	c.Observe("entries", time.Millisecond, nil)
	c.Observe("entries", 2*time.Millisecond, verr)
	c.Observe("entries", time.Millisecond, &source.Error{Issue: source.Issue{Code: source.CodeDuplicateKey}})
	c.Observe("commands", time.Millisecond, errors.New("open: no such file"))

	assert.Equal(t, 2.0, testutil.ToFloat64(c.total.WithLabelValues("entries", ResultValid)))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.total.WithLabelValues("entries", ResultInvalid)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.total.WithLabelValues("commands", ResultError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.failures.WithLabelValues("entries", goshape.CodeInvalidType)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.failures.WithLabelValues("entries", source.CodeDuplicateKey)))
	assert.Equal(t, 2, testutil.CollectAndCount(c.duration))
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector(nil)
	c.Observe("entries", time.Millisecond, nil)

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `goshape_validations_total{result="valid",schema="entries"} 1`)
}
