package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "vinyldns_batch_sample"

// Recorder collects the metrics of a single run on its own registry.
type Recorder struct {
	registry         *prometheus.Registry
	remoteCalls      *prometheus.CounterVec
	pollEvaluations  *prometheus.CounterVec
	batchSubmissions *prometheus.CounterVec
	phaseDuration    *prometheus.HistogramVec
	runResult        *prometheus.GaugeVec
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		remoteCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_calls_total",
			Help:      "VinylDNS API calls by operation and HTTP status code.",
		}, []string{"op", "code"}),
		pollEvaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_evaluations_total",
			Help:      "Status checks made while waiting, by target.",
		}, []string{"target"}),
		batchSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_submissions_total",
			Help:      "Batch changes submitted, by phase.",
		}, []string{"phase"}),
		phaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "phase_duration_seconds",
			Help:      "Time spent in each phase.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"phase", "result"}),
		runResult: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_success",
			Help:      "1 if the last run finished without error, 0 otherwise.",
		}, []string{"command"}),
	}
	r.registry.MustRegister(r.remoteCalls, r.pollEvaluations, r.batchSubmissions, r.phaseDuration, r.runResult)
	return r
}

// ObserveRemoteCall matches the vinyldns client observer signature. Transport
// failures are counted under code "error".
func (r *Recorder) ObserveRemoteCall(op string, status int, err error) {
	code := strconv.Itoa(status)
	if err != nil && status == 0 {
		code = "error"
	}
	r.remoteCalls.WithLabelValues(op, code).Inc()
}

func (r *Recorder) PollEvaluated(target string) {
	r.pollEvaluations.WithLabelValues(target).Inc()
}

func (r *Recorder) BatchSubmitted(phase string) {
	r.batchSubmissions.WithLabelValues(phase).Inc()
}

func (r *Recorder) ObservePhase(phase string, d time.Duration, err error) {
	r.phaseDuration.WithLabelValues(phase, result(err)).Observe(d.Seconds())
}

func (r *Recorder) RunFinished(command string, err error) {
	v := 1.0
	if err != nil {
		v = 0
	}
	r.runResult.WithLabelValues(command).Set(v)
}

// WriteTextfile writes the registry in text exposition format, for the node
// exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
