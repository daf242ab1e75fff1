package telemetry

import (
	"errors"
	"sync"
)

// ErrUnevenHistory is returned when a bulk series has channels of unequal length.
var ErrUnevenHistory = errors.New("telemetry: history channels have unequal length")

// SeriesBuffer holds four parallel ordered channels (timestamp, voc,
// temperature, humidity). All four channels always have equal length; index i
// across the channels refers to the same moment.
type SeriesBuffer struct {
	mu           sync.Mutex
	timestamps   []string
	voc          []float64
	temperatures []float64
	humidities   []float64
}

// NewSeriesBuffer constructs an empty buffer.
func NewSeriesBuffer() *SeriesBuffer {
	return &SeriesBuffer{}
}

// Append pushes one sample onto all four channels.
func (b *SeriesBuffer) Append(sample Sample) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.timestamps = append(b.timestamps, sample.Timestamp)
	b.voc = append(b.voc, sample.VOC)
	b.temperatures = append(b.temperatures, sample.Temperature)
	b.humidities = append(b.humidities, sample.Humidity)
}

// Reset clears all four channels.
func (b *SeriesBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.timestamps = nil
	b.voc = nil
	b.temperatures = nil
	b.humidities = nil
}

// LoadBulk replaces all four channels with a server-supplied series. Server
// order is trusted; only channel-length equality is validated.
func (b *SeriesBuffer) LoadBulk(history History) error {
	n := len(history.Timestamps)
	if len(history.VOC) != n || len(history.Temperatures) != n || len(history.Humidities) != n {
		return ErrUnevenHistory
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.timestamps = append([]string(nil), history.Timestamps...)
	b.voc = append([]float64(nil), history.VOC...)
	b.temperatures = append([]float64(nil), history.Temperatures...)
	b.humidities = append([]float64(nil), history.Humidities...)
	return nil
}

// Snapshot returns a copy of all four channels for a renderer.
func (b *SeriesBuffer) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Snapshot{
		Timestamps:   append([]string(nil), b.timestamps...),
		VOC:          append([]float64(nil), b.voc...),
		Temperatures: append([]float64(nil), b.temperatures...),
		Humidities:   append([]float64(nil), b.humidities...),
	}
}

// Len returns the number of samples in the buffer.
func (b *SeriesBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.timestamps)
}
