package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	checkStartedTotal   atomic.Uint64
	checkCompletedTotal atomic.Uint64
	checkFailedTotal    atomic.Uint64

	checkFailures     = newLabeledCounter()
	extractionMethods = newLabeledCounter()
	checkBands        = newLabeledCounter()

	checkDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
	llmDuration   = newHistogram([]float64{250, 500, 1000, 2000, 5000, 10000, 20000, 30000})
)

// IncCheckStarted increments the started counter.
func IncCheckStarted() {
	checkStartedTotal.Add(1)
}

// IncCheckCompleted counts a completed check under its band level.
func IncCheckCompleted(band string) {
	checkCompletedTotal.Add(1)
	checkBands.Inc(band)
}

// IncCheckFailed counts a failed check under its error code.
func IncCheckFailed(code string) {
	checkFailedTotal.Add(1)
	checkFailures.Inc(code)
}

// IncExtraction counts which extraction path produced text.
func IncExtraction(method string) {
	extractionMethods.Inc(method)
}

// ObserveCheckDurationMs records an end-to-end check duration in milliseconds.
func ObserveCheckDurationMs(value float64) {
	checkDuration.Observe(max(value, 0))
}

// ObserveLLMDurationMs records the time spent waiting on the model.
func ObserveLLMDurationMs(value float64) {
	llmDuration.Observe(max(value, 0))
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "check_started_total", "Total checks started", checkStartedTotal.Load())
	writeCounter(&buf, "check_completed_total", "Total checks completed", checkCompletedTotal.Load())
	writeCounter(&buf, "check_failed_total", "Total checks failed", checkFailedTotal.Load())
	writeLabeled(&buf, "check_failures_by_code_total", "Failed checks by error code", "code", checkFailures.Snapshot())
	writeLabeled(&buf, "check_bands_total", "Completed checks by AI usage band", "band", checkBands.Snapshot())
	writeLabeled(&buf, "extraction_method_total", "Successful extractions by method", "method", extractionMethods.Snapshot())
	writeHistogram(&buf, "check_duration_ms", "Check duration in milliseconds", checkDuration.Snapshot())
	writeHistogram(&buf, "llm_duration_ms", "LLM call duration in milliseconds", llmDuration.Snapshot())
	return buf.String()
}

type labeledCounter struct {
	mu     sync.Mutex
	values map[string]uint64
}

func newLabeledCounter() *labeledCounter {
	return &labeledCounter{values: make(map[string]uint64)}
}

func (l *labeledCounter) Inc(label string) {
	if label == "" {
		label = "unknown"
	}
	l.mu.Lock()
	l.values[label]++
	l.mu.Unlock()
}

func (l *labeledCounter) Snapshot() map[string]uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]uint64, len(l.values))
	for k, v := range l.values {
		out[k] = v
	}
	return out
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe stores value in the first bucket that holds it; cumulative counts
// are computed at render time.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			break
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeLabeled(buf *bytes.Buffer, name, help, label string, values map[string]uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(buf, "%s{%s=%q} %d\n", name, label, k, values[k])
	}
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
