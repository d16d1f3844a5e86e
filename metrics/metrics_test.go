package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersAndHandler(t *testing.T) {
	before := testutil.ToFloat64(Reveals.WithLabelValues("safe"))
	Reveals.WithLabelValues("safe").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(Reveals.WithLabelValues("safe")))

	SessionsCreated.WithLabelValues("easy", "classic").Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "wordweeper_reveals_total")
	assert.Contains(t, string(body), `wordweeper_sessions_created_total{difficulty="easy",mode="classic"}`)
}
