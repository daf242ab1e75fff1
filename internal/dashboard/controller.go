package dashboard

import (
	"context"
	"log"
	"sync"

	airquality "voc-dashboard/internal/airquality/domain"
	"voc-dashboard/internal/devices"
	"voc-dashboard/internal/monitorapi"
	"voc-dashboard/internal/observability/metrics"
	"voc-dashboard/internal/polling"
	"voc-dashboard/internal/settings"
	telemetry "voc-dashboard/internal/telemetry/domain"
)

// Mode is the viewing mode of the dashboard session.
type Mode string

const (
	// ModeLive continuously accrues incremental readings.
	ModeLive Mode = "LIVE"
	// ModeHistorical is a passive one-shot full-history view.
	ModeHistorical Mode = "HISTORICAL"
)

// Polling task ids.
const (
	TaskSensor   = "sensor"
	TaskAverages = "averages"
	TaskMinMax   = "minmax"
)

// MonitorAPI is the slice of the monitor API the controller polls.
type MonitorAPI interface {
	LatestReading(ctx context.Context) (telemetry.Sample, error)
	AllData(ctx context.Context) (telemetry.History, error)
	Averages(ctx context.Context) (monitorapi.Averages, error)
	MinMax(ctx context.Context) (monitorapi.MinMax, error)
}

// Controller owns the session state: viewing mode, pause flag, the series
// buffer and the polling tasks. All mutations happen under one mutex together
// with the generation tag, so an in-flight fetch that resolves after a
// state-invalidating transition can be recognized and discarded.
//
// The sensor task runs iff mode == LIVE && !paused. Pause and mode are
// independent fields: resuming while HISTORICAL must not revive the task.
type Controller struct {
	api      MonitorAPI
	sched    *polling.Scheduler
	buffer   *telemetry.SeriesBuffer
	devices  *devices.Context
	renderer Renderer
	advisory AdvisorySurface
	stats    StatsSurface
	logger   *log.Logger

	mu      sync.Mutex
	mode    Mode
	paused  bool
	gen     uint64
	started bool
	cfg     settings.Settings
}

// NewController constructs a controller in LIVE mode with an empty buffer.
func NewController(
	api MonitorAPI,
	sched *polling.Scheduler,
	buffer *telemetry.SeriesBuffer,
	deviceCtx *devices.Context,
	renderer Renderer,
	advisory AdvisorySurface,
	stats StatsSurface,
	logger *log.Logger,
) *Controller {
	return &Controller{
		api:      api,
		sched:    sched,
		buffer:   buffer,
		devices:  deviceCtx,
		renderer: renderer,
		advisory: advisory,
		stats:    stats,
		logger:   logger,
		mode:     ModeLive,
	}
}

// Run blocks on the settings gate, starts the three polling tasks and keeps
// them running until the context ends. No task exists before the gate
// resolves: interval values originate in the settings snapshot.
func (c *Controller) Run(ctx context.Context, gate *settings.Gate) error {
	cfg, err := gate.Wait(ctx)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	c.cfg = cfg
	c.started = true
	startSensor := c.mode == ModeLive && !c.paused
	c.mu.Unlock()

	if startSensor {
		if err := c.sched.Start(TaskSensor, cfg.SensorInterval(), c.pollSensor); err != nil {
			return err
		}
	}
	if err := c.sched.Start(TaskAverages, cfg.AveragesInterval(), c.pollAverages); err != nil {
		return err
	}
	if err := c.sched.Start(TaskMinMax, cfg.MinMaxInterval(), c.pollMinMax); err != nil {
		return err
	}

	<-ctx.Done()
	c.sched.StopAll()
	return nil
}

// ShowHistory switches LIVE -> HISTORICAL: acquisition stops, one bulk read
// replaces the buffer and the renderer shows the full history. Re-entering
// HISTORICAL is a no-op.
func (c *Controller) ShowHistory(ctx context.Context) error {
	c.mu.Lock()
	if c.mode == ModeHistorical {
		c.mu.Unlock()
		return nil
	}
	c.mode = ModeHistorical
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	c.sched.Stop(TaskSensor)

	history, err := c.api.AllData(ctx)
	if err != nil {
		metrics.IncHistoryLoad(false)
		return err
	}

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		metrics.IncStaleDrop()
		return nil
	}
	if err := c.buffer.LoadBulk(history); err != nil {
		c.mu.Unlock()
		metrics.IncHistoryLoad(false)
		return err
	}
	snapshot := c.buffer.Snapshot()
	c.mu.Unlock()

	metrics.IncHistoryLoad(true)
	c.render(snapshot)
	return nil
}

// ShowLive switches HISTORICAL -> LIVE: the buffer is cleared, the renderer
// shows an empty series and the sensor task restarts at the last-known
// interval unless paused. Re-entering LIVE is a no-op.
func (c *Controller) ShowLive() error {
	c.mu.Lock()
	if c.mode == ModeLive {
		c.mu.Unlock()
		return nil
	}
	c.mode = ModeLive
	c.gen++
	c.buffer.Reset()
	snapshot := c.buffer.Snapshot()
	resume := !c.paused && c.started
	interval := c.cfg.SensorInterval()
	c.mu.Unlock()

	c.render(snapshot)
	if resume {
		return c.sched.Restart(TaskSensor, interval, c.pollSensor)
	}
	return nil
}

// Pause stops the sensor task without touching the buffer or the mode.
// Pausing while HISTORICAL only records the flag; no sensor task exists.
func (c *Controller) Pause() {
	c.mu.Lock()
	if c.paused {
		c.mu.Unlock()
		return
	}
	c.paused = true
	stop := c.mode == ModeLive
	c.mu.Unlock()

	if stop {
		c.sched.Stop(TaskSensor)
	}
}

// Resume restarts the sensor task at the last configured interval, but only
// when LIVE; resuming while HISTORICAL restarts nothing.
func (c *Controller) Resume() error {
	c.mu.Lock()
	if !c.paused {
		c.mu.Unlock()
		return nil
	}
	c.paused = false
	resume := c.mode == ModeLive && c.started
	interval := c.cfg.SensorInterval()
	c.mu.Unlock()

	if resume {
		return c.sched.Restart(TaskSensor, interval, c.pollSensor)
	}
	return nil
}

// SwitchDevice selects a new upstream data source. On confirmation the buffer
// is invalidated and, when LIVE, the polling tasks restart against the new
// device; on failure selection and buffer are left untouched.
func (c *Controller) SwitchDevice(ctx context.Context, device monitorapi.Device) error {
	if err := c.devices.Select(ctx, device); err != nil {
		metrics.IncDeviceSwitch(false)
		return err
	}
	metrics.IncDeviceSwitch(true)

	c.mu.Lock()
	c.gen++
	c.buffer.Reset()
	snapshot := c.buffer.Snapshot()
	live := c.mode == ModeLive && c.started
	restartSensor := live && !c.paused
	cfg := c.cfg
	c.mu.Unlock()

	c.render(snapshot)
	if !live {
		// The next LIVE transition picks up the new device naturally.
		return nil
	}
	if restartSensor {
		if err := c.sched.Restart(TaskSensor, cfg.SensorInterval(), c.pollSensor); err != nil {
			return err
		}
	}
	if err := c.sched.Restart(TaskAverages, cfg.AveragesInterval(), c.pollAverages); err != nil {
		return err
	}
	return c.sched.Restart(TaskMinMax, cfg.MinMaxInterval(), c.pollMinMax)
}

// Mode returns the current viewing mode.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Paused returns the pause flag.
func (c *Controller) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// CurrentDevice returns the active upstream selection.
func (c *Controller) CurrentDevice() monitorapi.Device {
	return c.devices.Current()
}

// Snapshot returns the current series snapshot.
func (c *Controller) Snapshot() telemetry.Snapshot {
	return c.buffer.Snapshot()
}

func (c *Controller) generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// pollSensor is the sensor task action: one network read per tick. Ticks may
// overlap; completions carrying a stale generation are discarded instead of
// appended. A failed fetch is logged and skipped, the schedule is unaffected.
func (c *Controller) pollSensor(ctx context.Context) {
	metrics.IncPollTick(TaskSensor)
	gen := c.generation()

	sample, err := c.api.LatestReading(ctx)
	if err != nil {
		metrics.IncFetchError(TaskSensor)
		c.logf("sensor fetch error: %v", err)
		return
	}

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		metrics.IncStaleDrop()
		return
	}
	c.buffer.Append(sample)
	snapshot := c.buffer.Snapshot()
	cfg := c.cfg
	c.mu.Unlock()

	metrics.IncSampleAppended()
	c.render(snapshot)

	category := airquality.Classify(sample.VOC)
	if c.advisory != nil {
		c.advisory.ShowAdvisory(category, cfg.AdviceFor(category.Band()))
	}
}

func (c *Controller) pollAverages(ctx context.Context) {
	metrics.IncPollTick(TaskAverages)
	averages, err := c.api.Averages(ctx)
	if err != nil {
		metrics.IncFetchError(TaskAverages)
		c.logf("averages fetch error: %v", err)
		return
	}
	if c.stats != nil {
		c.stats.RenderAverages(averages)
	}
}

func (c *Controller) pollMinMax(ctx context.Context) {
	metrics.IncPollTick(TaskMinMax)
	minmax, err := c.api.MinMax(ctx)
	if err != nil {
		metrics.IncFetchError(TaskMinMax)
		c.logf("minmax fetch error: %v", err)
		return
	}
	if c.stats != nil {
		c.stats.RenderMinMax(minmax)
	}
}

func (c *Controller) render(snapshot telemetry.Snapshot) {
	if c.renderer != nil {
		c.renderer.Render(snapshot)
	}
}

func (c *Controller) logf(format string, args ...any) {
	if c.logger != nil {
		c.logger.Printf(format, args...)
	}
}
