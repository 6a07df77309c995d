package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInstrument(t *testing.T) {
	m := New()
	h := m.Instrument(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	for i := 0; i < 3; i++ {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}

	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("get", "418")); got != 3 {
		t.Errorf("expected 3 requests, got %v", got)
	}
}

func TestHandlerExposesDomainCounters(t *testing.T) {
	m := New()
	m.BillsCreated.Inc()
	m.ReceiptsRejected.WithLabelValues("extension").Inc()
	m.RPCErrors.WithLabelValues("/billed.v1.BillService/ListBills", "not_found").Inc()

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(w.Body)

	for _, want := range []string{
		"billed_bills_created_total 1",
		`billed_receipts_rejected_total{reason="extension"} 1`,
		"billed_rpc_errors_total",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
