package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	chatRequestsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cloudboard_chat_requests_total",
			Help: "Total number of chat invocations.",
		},
	)
	chatSQLExtractedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cloudboard_chat_sql_extracted_total",
			Help: "Total number of chat replies containing an extractable SQL statement.",
		},
	)
	chatModelFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cloudboard_chat_model_failures_total",
			Help: "Total number of failed language-model invocations.",
		},
	)
	queryRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cloudboard_query_rejections_total",
			Help: "Total number of candidate queries rejected by the validator, by reason.",
		},
		[]string{"reason"},
	)
	queryExecutionSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cloudboard_query_execution_seconds",
			Help:    "Validated read-query execution latency.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)
	queryExecutionFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cloudboard_query_execution_failures_total",
			Help: "Total number of validated queries that failed at the data store.",
		},
	)
	liveConversations = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cloudboard_live_conversations",
			Help: "Current number of conversations held in memory.",
		},
	)
	reportExportsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cloudboard_report_exports_total",
			Help: "Total number of cost report exports written to the object store.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		chatRequestsTotal,
		chatSQLExtractedTotal,
		chatModelFailuresTotal,
		queryRejectionsTotal,
		queryExecutionSeconds,
		queryExecutionFailuresTotal,
		liveConversations,
		reportExportsTotal,
	)
}

func IncrementChatRequests() {
	chatRequestsTotal.Inc()
}

func IncrementChatSQLExtracted() {
	chatSQLExtractedTotal.Inc()
}

func IncrementChatModelFailures() {
	chatModelFailuresTotal.Inc()
}

func IncrementQueryRejections(reason string) {
	queryRejectionsTotal.WithLabelValues(reason).Inc()
}

func ObserveQueryExecution(duration time.Duration) {
	queryExecutionSeconds.Observe(duration.Seconds())
}

func IncrementQueryExecutionFailures() {
	queryExecutionFailuresTotal.Inc()
}

func SetLiveConversations(count int) {
	liveConversations.Set(float64(count))
}

func IncrementReportExports() {
	reportExportsTotal.Inc()
}
