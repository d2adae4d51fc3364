package lumen

// DefaultSampleCapacity is the frame sampler window used when none is configured.
const DefaultSampleCapacity = 60

// PerformanceSample is one frame-rate measurement.
type PerformanceSample struct {
	Timestamp float64
	FrameRate float64
}

// FrameSampler is a fixed-capacity ring buffer of frame-rate samples. It is
// diagnostic state used by the eviction policy.
type FrameSampler struct {
	samples []PerformanceSample
	head    int // next write position
	count   int
}

// NewFrameSampler creates a sampler holding at most capacity samples. A
// non-positive capacity defaults to DefaultSampleCapacity.
func NewFrameSampler(capacity int) *FrameSampler {
	if capacity <= 0 {
		capacity = DefaultSampleCapacity
	}
	return &FrameSampler{samples: make([]PerformanceSample, capacity)}
}

// Record adds a sample, overwriting the oldest one when full.
func (f *FrameSampler) Record(s PerformanceSample) {
	if f.count < len(f.samples) {
		f.count++
	}
	f.samples[f.head] = s
	f.head = (f.head + 1) % len(f.samples)
}

// Average returns the mean frame rate of the held samples, or 0 when empty.
func (f *FrameSampler) Average() float64 {
	if f.count == 0 {
		return 0
	}
	// Summed fresh each call; a running sum drifts over long sessions.
	start := f.head - f.count
	if start < 0 {
		start += len(f.samples)
	}
	var sum float64
	for i := 0; i < f.count; i++ {
		sum += f.samples[(start+i)%len(f.samples)].FrameRate
	}
	return sum / float64(f.count)
}

// Len returns the number of held samples.
func (f *FrameSampler) Len() int {
	return f.count
}

// Cap returns the sampler capacity.
func (f *FrameSampler) Cap() int {
	return len(f.samples)
}

// Full reports whether the window holds Cap samples.
func (f *FrameSampler) Full() bool {
	return f.count == len(f.samples)
}

// Reset drops every sample.
func (f *FrameSampler) Reset() {
	f.head = 0
	f.count = 0
}

// Samples returns the held samples oldest first. The slice is freshly allocated.
func (f *FrameSampler) Samples() []PerformanceSample {
	out := make([]PerformanceSample, 0, f.count)
	start := f.head - f.count
	if start < 0 {
		start += len(f.samples)
	}
	for i := 0; i < f.count; i++ {
		out = append(out, f.samples[(start+i)%len(f.samples)])
	}
	return out
}
