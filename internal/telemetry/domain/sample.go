package telemetry

// Sample is one synchronized reading across all four channels. The timestamp
// is the server-formatted label and is treated as opaque.
type Sample struct {
	Timestamp   string
	VOC         float64
	Temperature float64
	Humidity    float64
}

// History is a server-supplied bulk series used for wholesale buffer loads.
type History struct {
	Timestamps   []string
	VOC          []float64
	Temperatures []float64
	Humidities   []float64
}

// Snapshot is a read-only copy of a series buffer handed to renderers.
// Mutating a snapshot never affects the buffer it came from.
type Snapshot struct {
	Timestamps   []string
	VOC          []float64
	Temperatures []float64
	Humidities   []float64
}

// Len returns the number of points in the snapshot.
func (s Snapshot) Len() int {
	return len(s.Timestamps)
}

// Latest returns the most recent sample in the snapshot.
func (s Snapshot) Latest() (Sample, bool) {
	n := s.Len()
	if n == 0 {
		return Sample{}, false
	}
	return Sample{
		Timestamp:   s.Timestamps[n-1],
		VOC:         s.VOC[n-1],
		Temperature: s.Temperatures[n-1],
		Humidity:    s.Humidities[n-1],
	}, true
}
