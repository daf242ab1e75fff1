package main

import (
	"encoding/json"
	"log"
	"math"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// fakeMonitorServer emulates the VOC monitor API for manual runs of the
// dashboard engine: synthetic sensor readings, a settings snapshot and a
// websocket alert push.
type fakeMonitorServer struct {
	start      time.Time
	tickEvery  time.Duration
	alertAbove float64
	failRate   float64
	upgrader   websocket.Upgrader
	alertCool  time.Duration

	mu           sync.Mutex
	timestamps   []string
	voc          []float64
	temperatures []float64
	humidities   []float64
	selected     device
	devices      []device
	lastAlert    time.Time
	subscribers  map[*websocket.Conn]struct{}
}

type device struct {
	ID    string `json:"id"`
	Name  string `json:"device_name"`
	Topic string `json:"topic"`
}

func main() {
	addr := getenvDefault("FAKE_MONITOR_ADDR", ":18090")
	tickMs := getenvIntDefault("FAKE_MONITOR_TICK_MS", 2000)
	alertAbove := getenvFloatDefault("FAKE_MONITOR_ALERT_ABOVE", 300)
	failRate := getenvFloatDefault("FAKE_MONITOR_FAIL_RATE", 0)

	srv := &fakeMonitorServer{
		start:      time.Now().UTC(),
		tickEvery:  time.Duration(tickMs) * time.Millisecond,
		alertAbove: alertAbove,
		failRate:   failRate,
		alertCool:  30 * time.Second,
		upgrader:   websocket.Upgrader{},
		selected:   device{ID: "1", Name: "living-room", Topic: "sensors/living-room"},
		devices: []device{
			{ID: "1", Name: "living-room", Topic: "sensors/living-room"},
			{ID: "2", Name: "bedroom", Topic: "sensors/bedroom"},
		},
		subscribers: make(map[*websocket.Conn]struct{}),
	}

	go srv.generate()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", srv.handleHealth)
	mux.HandleFunc("/data", srv.handleData)
	mux.HandleFunc("/all-data", srv.handleAllData)
	mux.HandleFunc("/avg", srv.handleAverages)
	mux.HandleFunc("/minmax", srv.handleMinMax)
	mux.HandleFunc("/get_settings", srv.handleSettings)
	mux.HandleFunc("/devices_list", srv.handleDevicesList)
	mux.HandleFunc("/select_device", srv.handleSelectDevice)
	mux.HandleFunc("/current_device", srv.handleCurrentDevice)
	mux.HandleFunc("/ws", srv.handleWS)

	log.Printf("fake monitor server listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, mux))
}

// generate appends one synthetic reading per tick and pushes an alert when
// the VOC value crosses the configured threshold.
func (s *fakeMonitorServer) generate() {
	ticker := time.NewTicker(s.tickEvery)
	defer ticker.Stop()
	for now := range ticker.C {
		elapsed := now.Sub(s.start).Seconds()
		voc := 150 + 200*math.Sin(elapsed/60) + rand.Float64()*20
		if voc < 0 {
			voc = 0
		}
		temperature := 21 + 3*math.Sin(elapsed/300) + rand.Float64()
		humidity := 45 + 10*math.Sin(elapsed/200) + rand.Float64()*2

		s.mu.Lock()
		s.timestamps = append(s.timestamps, now.UTC().Format("2006-01-02 15:04:05"))
		s.voc = append(s.voc, round1(voc))
		s.temperatures = append(s.temperatures, round1(temperature))
		s.humidities = append(s.humidities, round1(humidity))
		alert := voc > s.alertAbove && now.Sub(s.lastAlert) > s.alertCool
		if alert {
			s.lastAlert = now
		}
		s.mu.Unlock()

		if alert {
			s.broadcastAlert("VOC level is high! Consider ventilating the room.")
		}
	}
}

func (s *fakeMonitorServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *fakeMonitorServer) handleData(w http.ResponseWriter, r *http.Request) {
	if s.maybeFail(w) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.timestamps)
	if n == 0 {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "No data available"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"voc_index":   s.voc[n-1],
		"temperature": s.temperatures[n-1],
		"humidity":    s.humidities[n-1],
		"timestamp":   s.timestamps[n-1],
	})
}

func (s *fakeMonitorServer) handleAllData(w http.ResponseWriter, r *http.Request) {
	if s.maybeFail(w) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"voc_index":   s.voc,
		"temperature": s.temperatures,
		"humidity":    s.humidities,
		"timestamp":   s.timestamps,
	})
}

func (s *fakeMonitorServer) handleAverages(w http.ResponseWriter, r *http.Request) {
	if s.maybeFail(w) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	avg := mean(s.voc)
	writeJSON(w, http.StatusOK, map[string]any{
		"avg_24h": round1(avg),
		"avg_72h": round1(avg * 0.97),
		"avg_7d":  round1(avg * 0.95),
	})
}

func (s *fakeMonitorServer) handleMinMax(w http.ResponseWriter, r *http.Request) {
	if s.maybeFail(w) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.voc) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "No minmax data available"})
		return
	}
	lo, hi := extremes(s.voc)
	writeJSON(w, http.StatusOK, map[string]any{
		"min_24h": lo,
		"max_24h": hi,
		"min_72h": lo,
		"max_72h": hi,
	})
}

func (s *fakeMonitorServer) handleSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"advice1":                "Air quality is excellent, nothing to do.",
		"advice2":                "Air quality is good, keep it up.",
		"advice3":                "Consider opening a window.",
		"advice4":                "Ventilate the room.",
		"advice5":                "Ventilate now and find the source.",
		"advice6":                "Leave the room and ventilate thoroughly.",
		"fetch_sensor":           5000,
		"fetch_averages":         60000,
		"fetch_minmax":           60000,
		"notifications":          true,
		"notification_threshold": s.alertAbove,
		"cooldown":               int(s.alertCool / time.Second),
		"notification_message":   "VOC level is high!",
	})
}

func (s *fakeMonitorServer) handleDevicesList(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.devices)
}

func (s *fakeMonitorServer) handleSelectDevice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var payload device
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.ID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "invalid device"})
		return
	}
	s.mu.Lock()
	s.selected = payload
	// A new source starts a fresh series.
	s.timestamps = nil
	s.voc = nil
	s.temperatures = nil
	s.humidities = nil
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"message": "New device selected!"})
}

func (s *fakeMonitorServer) handleCurrentDevice(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"selected_device": s.selected.Name})
}

func (s *fakeMonitorServer) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.subscribers[conn] = struct{}{}
	s.mu.Unlock()

	_ = conn.WriteJSON(map[string]string{"event": "alert", "message": "Welcome! Server is connected."})

	// Drain reads to detect disconnects.
	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.subscribers, conn)
			s.mu.Unlock()
			_ = conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *fakeMonitorServer) broadcastAlert(message string) {
	s.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(s.subscribers))
	for conn := range s.subscribers {
		conns = append(conns, conn)
	}
	s.mu.Unlock()
	for _, conn := range conns {
		_ = conn.WriteJSON(map[string]string{"event": "alert", "message": message})
	}
}

func (s *fakeMonitorServer) maybeFail(w http.ResponseWriter) bool {
	if s.failRate > 0 && rand.Float64() < s.failRate {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "injected failure"})
		return true
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func extremes(values []float64) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvFloatDefault(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
