package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Records(t *testing.T) {
	c := NewCollector("forever_us")

	c.RecordDocumentSave(true, 2*time.Millisecond)
	c.RecordDocumentSave(false, time.Millisecond)
	c.RecordDocumentSave(false, time.Millisecond)
	c.RecordMemoryAdded()
	c.RecordMemoryDeleted()
	c.RecordImageProcessed(true)
	c.RecordHTTPRequest("GET", "/api/v1/days", 200, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.DocumentSaves.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.DocumentSaves.WithLabelValues("failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.MemoriesAdded))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.MemoriesDeleted))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ImagesProcessed.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.HTTPRequests.WithLabelValues("GET", "/api/v1/days", "200")))
}

func TestCollector_SeparateRegistries(t *testing.T) {
	a := NewCollector("forever_us")
	b := NewCollector("forever_us")

	a.RecordMemoryAdded()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.MemoriesAdded))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.MemoriesAdded))
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector("forever_us")
	c.RecordMemoryAdded()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "forever_us_memories_added_total 1")
}
