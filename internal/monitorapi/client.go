package monitorapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"voc-dashboard/internal/settings"
	telemetry "voc-dashboard/internal/telemetry/domain"
)

// Client is a minimal REST client for the VOC monitor API.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient constructs a monitor client.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("monitorapi: empty base url")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// Device identifies an upstream data source.
type Device struct {
	ID    string `json:"id"`
	Name  string `json:"device_name"`
	Topic string `json:"topic"`
}

// Averages holds rolling averages over the standard windows.
type Averages struct {
	Avg24h float64 `json:"avg_24h"`
	Avg72h float64 `json:"avg_72h"`
	Avg7d  float64 `json:"avg_7d"`
}

// MinMax holds extreme values over the standard windows.
type MinMax struct {
	Min24h float64 `json:"min_24h"`
	Max24h float64 `json:"max_24h"`
	Min72h float64 `json:"min_72h"`
	Max72h float64 `json:"max_72h"`
}

type readingPayload struct {
	VOCIndex    float64 `json:"voc_index"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Timestamp   string  `json:"timestamp"`
}

type historyPayload struct {
	VOCIndex    []float64 `json:"voc_index"`
	Temperature []float64 `json:"temperature"`
	Humidity    []float64 `json:"humidity"`
	Timestamp   []string  `json:"timestamp"`
}

type currentDevicePayload struct {
	SelectedDevice string `json:"selected_device"`
}

// StatusError reports a non-success HTTP response, carrying the server's
// message when one was provided.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("monitorapi: http %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("monitorapi: http %d", e.Status)
}

// LatestReading fetches the most recent sample.
func (c *Client) LatestReading(ctx context.Context) (telemetry.Sample, error) {
	var payload readingPayload
	if err := c.doJSON(ctx, http.MethodGet, "/data", nil, &payload); err != nil {
		return telemetry.Sample{}, err
	}
	return telemetry.Sample{
		Timestamp:   payload.Timestamp,
		VOC:         payload.VOCIndex,
		Temperature: payload.Temperature,
		Humidity:    payload.Humidity,
	}, nil
}

// AllData fetches the full historical series.
func (c *Client) AllData(ctx context.Context) (telemetry.History, error) {
	var payload historyPayload
	if err := c.doJSON(ctx, http.MethodGet, "/all-data", nil, &payload); err != nil {
		return telemetry.History{}, err
	}
	return telemetry.History{
		Timestamps:   payload.Timestamp,
		VOC:          payload.VOCIndex,
		Temperatures: payload.Temperature,
		Humidities:   payload.Humidity,
	}, nil
}

// Averages fetches rolling averages.
func (c *Client) Averages(ctx context.Context) (Averages, error) {
	var payload Averages
	if err := c.doJSON(ctx, http.MethodGet, "/avg", nil, &payload); err != nil {
		return Averages{}, err
	}
	return payload, nil
}

// MinMax fetches window extremes.
func (c *Client) MinMax(ctx context.Context) (MinMax, error) {
	var payload MinMax
	if err := c.doJSON(ctx, http.MethodGet, "/minmax", nil, &payload); err != nil {
		return MinMax{}, err
	}
	return payload, nil
}

// Settings fetches the session settings snapshot.
func (c *Client) Settings(ctx context.Context) (settings.Settings, error) {
	var payload settings.Settings
	if err := c.doJSON(ctx, http.MethodGet, "/get_settings", nil, &payload); err != nil {
		return settings.Settings{}, err
	}
	return payload, nil
}

// SelectDevice asks the server to switch the active data source.
func (c *Client) SelectDevice(ctx context.Context, device Device) error {
	if device.ID == "" {
		return errors.New("monitorapi: empty device id")
	}
	return c.doJSON(ctx, http.MethodPost, "/select_device", device, nil)
}

// CurrentDevice fetches the active data source.
func (c *Client) CurrentDevice(ctx context.Context) (Device, error) {
	var payload currentDevicePayload
	if err := c.doJSON(ctx, http.MethodGet, "/current_device", nil, &payload); err != nil {
		return Device{}, err
	}
	return Device{Name: payload.SelectedDevice}, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var reqBody *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(payload)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var serverErr struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&serverErr)
		return &StatusError{Status: resp.StatusCode, Message: serverErr.Message}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
