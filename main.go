package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/yaml.v3"

	airquality "voc-dashboard/internal/airquality/domain"
	"voc-dashboard/internal/alerts"
	"voc-dashboard/internal/dashboard"
	"voc-dashboard/internal/devices"
	"voc-dashboard/internal/export"
	"voc-dashboard/internal/monitorapi"
	"voc-dashboard/internal/observability/metrics"
	"voc-dashboard/internal/polling"
	"voc-dashboard/internal/settings"
	telemetry "voc-dashboard/internal/telemetry/domain"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	metrics.Init()

	client, err := monitorapi.NewClient(cfg.MonitorBaseURL, cfg.RequestTimeout)
	if err != nil {
		logger.Fatalf("monitor client error: %v", err)
	}

	buffer := telemetry.NewSeriesBuffer()
	scheduler := polling.NewScheduler(logger)
	deviceCtx := devices.NewContext(client)

	controller := dashboard.NewController(
		client,
		scheduler,
		buffer,
		deviceCtx,
		&logRenderer{logger: logger},
		&logAdvisory{logger: logger},
		&logStats{logger: logger},
		logger,
	)

	ctx := context.Background()

	// Pick up the device selected in a previous session; the server keeps the
	// authoritative selection either way.
	if err := deviceCtx.Refresh(ctx); err != nil {
		logger.Printf("current device fetch error: %v", err)
	}

	gate := settings.NewGate()
	go loadSettings(ctx, client, gate, logger, cfg.SettingsRetryDelay)

	go func() {
		if err := controller.Run(ctx, gate); err != nil {
			logger.Fatalf("controller error: %v", err)
		}
	}()

	go func() {
		snapshot, err := gate.Wait(ctx)
		if err != nil {
			return
		}
		if !snapshot.Notifications {
			logger.Printf("alerts disabled by settings")
			return
		}
		channel := alerts.NewChannel(cfg.AlertWSURL, &logNotifier{logger: logger}, cfg.AlertReconnectDelay, logger)
		channel.Run(ctx)
	}()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/export/pdf", func(w http.ResponseWriter, r *http.Request) {
		payload, err := export.BuildSeriesPDF(controller.Snapshot(), controller.CurrentDevice().Name)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="air-quality.pdf"`)
		_, _ = w.Write(payload)
	})
	mux.HandleFunc("/export/xlsx", func(w http.ResponseWriter, r *http.Request) {
		payload, err := export.BuildSeriesXLSX(controller.Snapshot(), controller.CurrentDevice().Name)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="air-quality.xlsx"`)
		_, _ = w.Write(payload)
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: mux}
	logger.Printf("ops http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

// loadSettings resolves the settings gate exactly once. Until a valid
// snapshot arrives no polling task exists anywhere in the process.
func loadSettings(ctx context.Context, client *monitorapi.Client, gate *settings.Gate, logger *log.Logger, retryDelay time.Duration) {
	for {
		snapshot, err := client.Settings(ctx)
		if err == nil {
			if err = snapshot.Validate(); err == nil {
				gate.Resolve(snapshot)
				logger.Printf("settings loaded: sensor=%s averages=%s minmax=%s",
					snapshot.SensorInterval(), snapshot.AveragesInterval(), snapshot.MinMaxInterval())
				return
			}
		}
		logger.Printf("settings load error: %v", err)
		select {
		case <-ctx.Done():
			return
		case <-time.After(retryDelay):
		}
	}
}

type logRenderer struct {
	logger *log.Logger
}

func (r *logRenderer) Render(snapshot telemetry.Snapshot) {
	if latest, ok := snapshot.Latest(); ok {
		r.logger.Printf("chart: %d samples, latest voc=%.1f temp=%.1f humidity=%.1f at %s",
			snapshot.Len(), latest.VOC, latest.Temperature, latest.Humidity, latest.Timestamp)
		return
	}
	r.logger.Printf("chart: cleared")
}

type logAdvisory struct {
	logger *log.Logger
}

func (a *logAdvisory) ShowAdvisory(category airquality.Category, advice string) {
	a.logger.Printf("air quality: %s - %s", category, advice)
}

type logStats struct {
	logger *log.Logger
}

func (s *logStats) RenderAverages(averages monitorapi.Averages) {
	s.logger.Printf("averages: 24h=%.1f 72h=%.1f 7d=%.1f", averages.Avg24h, averages.Avg72h, averages.Avg7d)
}

func (s *logStats) RenderMinMax(minmax monitorapi.MinMax) {
	s.logger.Printf("minmax: 24h=[%.1f %.1f] 72h=[%.1f %.1f]", minmax.Min24h, minmax.Max24h, minmax.Min72h, minmax.Max72h)
}

type logNotifier struct {
	logger *log.Logger
}

func (n *logNotifier) Notify(message string) {
	n.logger.Printf("alert: %s", message)
}

type config struct {
	MonitorBaseURL      string        `yaml:"monitor_base_url"`
	AlertWSURL          string        `yaml:"alert_ws_url"`
	HTTPAddr            string        `yaml:"http_addr"`
	RequestTimeout      time.Duration `yaml:"request_timeout"`
	AlertReconnectDelay time.Duration `yaml:"alert_reconnect_delay"`
	SettingsRetryDelay  time.Duration `yaml:"settings_retry_delay"`
}

func loadConfig() config {
	cfg := config{
		MonitorBaseURL:      getenvDefault("MONITOR_BASE_URL", ""),
		AlertWSURL:          getenvDefault("ALERT_WS_URL", ""),
		HTTPAddr:            getenvDefault("HTTP_ADDR", ":9090"),
		RequestTimeout:      getenvDuration("REQUEST_TIMEOUT", 10*time.Second),
		AlertReconnectDelay: getenvDuration("ALERT_RECONNECT_DELAY", 5*time.Second),
		SettingsRetryDelay:  getenvDuration("SETTINGS_RETRY_DELAY", 5*time.Second),
	}

	if path := os.Getenv("ENGINE_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("config read error: %v", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("config parse error: %v", err)
		}
	}

	if cfg.MonitorBaseURL == "" {
		log.Fatal("MONITOR_BASE_URL is required")
	}
	if cfg.AlertWSURL == "" {
		cfg.AlertWSURL = deriveWSURL(cfg.MonitorBaseURL)
	}
	return cfg
}

// deriveWSURL maps the monitor base URL onto its alert websocket endpoint.
func deriveWSURL(baseURL string) string {
	ws := baseURL
	switch {
	case strings.HasPrefix(ws, "https://"):
		ws = "wss://" + strings.TrimPrefix(ws, "https://")
	case strings.HasPrefix(ws, "http://"):
		ws = "ws://" + strings.TrimPrefix(ws, "http://")
	}
	return strings.TrimRight(ws, "/") + "/ws"
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
