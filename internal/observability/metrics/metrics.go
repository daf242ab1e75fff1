package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "vocdash_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	pollTicks   *prometheus.CounterVec
	fetchErrors *prometheus.CounterVec

	samplesAppended prometheus.Counter
	staleDrops      prometheus.Counter

	historyLoads *prometheus.CounterVec

	deviceSwitches *prometheus.CounterVec

	alertsDelivered prometheus.Counter
)

// Init registers engine metrics. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		pollTicks = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "poll_ticks_total",
				Help: "Total polling task ticks by task id",
			},
			[]string{"task"},
		)
		fetchErrors = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "fetch_errors_total",
				Help: "Total failed upstream fetches by task id",
			},
			[]string{"task"},
		)
		samplesAppended = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "samples_appended_total",
				Help: "Total samples appended to the series buffer",
			},
		)
		staleDrops = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "stale_drops_total",
				Help: "Total fetch completions discarded for a stale generation",
			},
		)
		historyLoads = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "history_loads_total",
				Help: "Total bulk history loads by result",
			},
			[]string{"result"},
		)
		deviceSwitches = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "device_switches_total",
				Help: "Total device switch attempts by result",
			},
			[]string{"result"},
		)
		alertsDelivered = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "alerts_delivered_total",
				Help: "Total alerts delivered to the notification surface",
			},
		)

		prometheus.MustRegister(
			pollTicks,
			fetchErrors,
			samplesAppended,
			staleDrops,
			historyLoads,
			deviceSwitches,
			alertsDelivered,
		)
	})
}

// IncPollTick counts one tick of a polling task.
func IncPollTick(task string) {
	if pollTicks == nil {
		return
	}
	pollTicks.WithLabelValues(task).Inc()
}

// IncFetchError counts one failed upstream fetch.
func IncFetchError(task string) {
	if fetchErrors == nil {
		return
	}
	fetchErrors.WithLabelValues(task).Inc()
}

// IncSampleAppended counts one sample appended to the buffer.
func IncSampleAppended() {
	if samplesAppended == nil {
		return
	}
	samplesAppended.Inc()
}

// IncStaleDrop counts one completion discarded by the generation check.
func IncStaleDrop() {
	if staleDrops == nil {
		return
	}
	staleDrops.Inc()
}

// IncHistoryLoad counts one bulk history load.
func IncHistoryLoad(ok bool) {
	if historyLoads == nil {
		return
	}
	result := resultSuccess
	if !ok {
		result = resultError
	}
	historyLoads.WithLabelValues(result).Inc()
}

// IncDeviceSwitch counts one device switch attempt.
func IncDeviceSwitch(ok bool) {
	if deviceSwitches == nil {
		return
	}
	result := resultSuccess
	if !ok {
		result = resultError
	}
	deviceSwitches.WithLabelValues(result).Inc()
}

// IncAlertDelivered counts one alert handed to the notification surface.
func IncAlertDelivered() {
	if alertsDelivered == nil {
		return
	}
	alertsDelivered.Inc()
}
