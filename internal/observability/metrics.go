package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	domainErrors "github.com/polkiloo/earnbot/internal/domain/errors"
)

var (
	registerOnce          sync.Once
	httpDurationHistogram *prometheus.HistogramVec
	ledgerCounter         *prometheus.CounterVec
	tokenCounter          *prometheus.CounterVec
	giftCodeCounter       *prometheus.CounterVec
	withdrawalCounter     *prometheus.CounterVec
	pendingGauge          prometheus.Gauge
	shortenerCounter      *prometheus.CounterVec
	workerRunCounter      *prometheus.CounterVec
	botUpdateCounter      *prometheus.CounterVec
)

// Init registers all Prometheus collectors.
func Init() {
	registerOnce.Do(func() {
		httpDurationHistogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"})

		ledgerCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "earnbot_ledger_operations_total",
			Help: "Wallet credits and debits by outcome",
		}, []string{"operation", "outcome"})

		tokenCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "earnbot_reward_token_events_total",
			Help: "Reward token issuance and redemption outcomes",
		}, []string{"event", "outcome"})

		giftCodeCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "earnbot_gift_code_events_total",
			Help: "Gift code generation and redemption outcomes",
		}, []string{"event", "outcome"})

		withdrawalCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "earnbot_withdrawal_transitions_total",
			Help: "Withdrawal request transitions",
		}, []string{"status"})

		pendingGauge = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "earnbot_withdrawals_pending",
			Help: "Pending withdrawal requests seen by the last listing",
		})

		shortenerCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "earnbot_shortener_requests_total",
			Help: "Link shortener outcomes",
		}, []string{"result"})

		workerRunCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_runs_total",
			Help: "Background worker run outcomes",
		}, []string{"worker", "result"})

		botUpdateCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "earnbot_bot_updates_total",
			Help: "Telegram updates by handling result",
		}, []string{"result"})

		prometheus.MustRegister(
			httpDurationHistogram,
			ledgerCounter,
			tokenCounter,
			giftCodeCounter,
			withdrawalCounter,
			pendingGauge,
			shortenerCounter,
			workerRunCounter,
			botUpdateCounter,
		)
	})
}

// Outcome labels an operation result with its stable reason code.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return domainErrors.Code(err)
}

func ObserveHTTP(method, path string, status int, duration time.Duration) {
	if httpDurationHistogram == nil {
		return
	}
	httpDurationHistogram.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
}

func IncrementLedgerOperation(operation string, err error) {
	if ledgerCounter == nil {
		return
	}
	ledgerCounter.WithLabelValues(operation, Outcome(err)).Inc()
}

func IncrementTokenEvent(event string, err error) {
	if tokenCounter == nil {
		return
	}
	tokenCounter.WithLabelValues(event, Outcome(err)).Inc()
}

func IncrementGiftCodeEvent(event string, err error) {
	if giftCodeCounter == nil {
		return
	}
	giftCodeCounter.WithLabelValues(event, Outcome(err)).Inc()
}

func IncrementWithdrawalTransition(status string) {
	if withdrawalCounter == nil {
		return
	}
	withdrawalCounter.WithLabelValues(status).Inc()
}

func SetPendingWithdrawals(n int) {
	if pendingGauge == nil {
		return
	}
	pendingGauge.Set(float64(n))
}

func IncrementShortener(result string) {
	if shortenerCounter == nil {
		return
	}
	shortenerCounter.WithLabelValues(result).Inc()
}

func IncrementWorkerRun(worker, result string) {
	if workerRunCounter == nil {
		return
	}
	workerRunCounter.WithLabelValues(worker, result).Inc()
}

func IncrementBotUpdate(result string) {
	if botUpdateCounter == nil {
		return
	}
	botUpdateCounter.WithLabelValues(result).Inc()
}
