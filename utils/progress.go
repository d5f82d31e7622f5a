package utils

import (
	"fmt"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"

	"s3fetch/internal"
)

// speedSample is one {speed, timestamp} record in a bounded ring buffer.
type speedSample struct {
	speed     float64
	timestamp time.Time
}

// segmentState is the runtime state the tracker holds for one segment:
// status, downloaded counter, retry counter and a capped ring of recent
// speed samples.
type segmentState struct {
	status     internal.SegmentStatus
	downloaded int64
	retries    int
	lastUpdate time.Time
	history    []speedSample // cap 10
}

// ETAMethod names which of the three strategies produced an ETA estimate.
type ETAMethod int

const (
	ETAUnknown ETAMethod = iota
	ETAActive
	ETAGlobal
	ETAOverall
)

func (m ETAMethod) String() string {
	switch m {
	case ETAActive:
		return "active"
	case ETAGlobal:
		return "global"
	case ETAOverall:
		return "overall"
	default:
		return "unknown"
	}
}

const (
	segmentHistoryCap = 10
	globalHistoryCap  = 30 // one window second per entry, capped at 30s worth
	activeWindow      = 5 * time.Second
	globalSampleGap   = 1 * time.Second
)

// ProgressTracker implements internal.ProgressSink: it receives per-segment
// byte-delta samples from workers, maintains per-segment and global speed
// histories, computes ETA by three methods, and drives a periodic display.
type ProgressTracker struct {
	mutex sync.RWMutex

	total       int64
	concurrency int
	startTime   time.Time

	segments []segmentState

	globalHistory    []speedSample
	lastGlobalSample time.Time
	totalDownloaded  int64
	totalRetries     int

	quiet    bool
	bar      *pb.ProgressBar
	stopDisp chan struct{}
	dispDone chan struct{}
}

// NewProgressTracker creates a tracker for concurrency segments covering a
// total of size bytes.
func NewProgressTracker(size int64, concurrency int, quiet bool) *ProgressTracker {
	now := time.Now()
	segments := make([]segmentState, concurrency)
	for i := range segments {
		segments[i] = segmentState{status: internal.StatusPending, lastUpdate: now}
	}

	t := &ProgressTracker{
		total:       size,
		concurrency: concurrency,
		startTime:   now,
		segments:    segments,
		quiet:       quiet,
		stopDisp:    make(chan struct{}),
		dispDone:    make(chan struct{}),
	}

	if !quiet {
		tmpl := `{{string . "prefix"}}{{counters . }} {{bar . }} {{percent . }} {{string . "speed"}} {{string . "instantaneous"}} {{string . "eta"}} {{string . "statuses"}} {{string . "retries"}}`
		bar := pb.ProgressBarTemplate(tmpl).Start64(size)
		bar.Set(pb.Bytes, true)
		bar.Set(pb.SIBytesPrefix, true)
		bar.Set("prefix", "Downloading: ")
		t.bar = bar
	}

	return t
}

// PrimeSegment seeds a segment's initial downloaded count and status before
// workers start, so resumed segments display correct progress from the first
// tick.
func (t *ProgressTracker) PrimeSegment(index int, downloaded int64, status internal.SegmentStatus) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.segments[index].downloaded = downloaded
	t.segments[index].status = status
	t.totalDownloaded += downloaded
}

// SetStatus implements internal.ProgressSink.
func (t *ProgressTracker) SetStatus(segmentIndex int, status internal.SegmentStatus) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.segments[segmentIndex].status = status
}

// IncrementRetry implements internal.ProgressSink.
func (t *ProgressTracker) IncrementRetry(segmentIndex int) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.segments[segmentIndex].retries++
	t.totalRetries++
}

// ReportSample implements internal.ProgressSink: records the segment's new
// downloaded total and instantaneous speed, folding the sample into both the
// per-segment and global bounded histories.
func (t *ProgressTracker) ReportSample(segmentIndex int, downloaded int64, instantaneousSpeed float64) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	now := time.Now()
	seg := &t.segments[segmentIndex]

	delta := downloaded - seg.downloaded
	seg.downloaded = downloaded
	seg.lastUpdate = now
	t.totalDownloaded += delta

	seg.history = append(seg.history, speedSample{speed: instantaneousSpeed, timestamp: now})
	if len(seg.history) > segmentHistoryCap {
		seg.history = seg.history[len(seg.history)-segmentHistoryCap:]
	}

	if now.Sub(t.lastGlobalSample) >= globalSampleGap {
		t.globalHistory = append(t.globalHistory, speedSample{speed: instantaneousSpeed, timestamp: now})
		if len(t.globalHistory) > globalHistoryCap {
			t.globalHistory = t.globalHistory[len(t.globalHistory)-globalHistoryCap:]
		}
		t.lastGlobalSample = now
	}
}

// segmentAverage is the mean of a segment's last 5 samples, or its most
// recent instantaneous sample if fewer than 5 exist.
func segmentAverage(history []speedSample) float64 {
	if len(history) == 0 {
		return 0
	}
	n := 5
	if len(history) < n {
		return history[len(history)-1].speed
	}
	var sum float64
	for _, s := range history[len(history)-n:] {
		sum += s.speed
	}
	return sum / float64(n)
}

func isActive(seg *segmentState, now time.Time) bool {
	if seg.status.IsTerminal() {
		return false
	}
	if now.Sub(seg.lastUpdate) > activeWindow {
		return false
	}
	return len(seg.history) > 0 && seg.history[len(seg.history)-1].speed > 0
}

// Snapshot is a point-in-time view of aggregate progress used by the display
// loop and by the final summary.
type Snapshot struct {
	Downloaded     int64
	Total          int64
	Percentage     float64
	ActiveCount    int
	ActiveSpeed    float64
	InstantaneousSum float64
	OverallSpeed   float64
	ETA            time.Duration
	ETAMethod      ETAMethod
	StatusCounts   map[internal.SegmentStatus]int
	TotalRetries   int
	MaxSegmentRetries int
}

// Snapshot computes the current aggregate view per the documented
// derived-quantity and ETA-selection rules.
func (t *ProgressTracker) Snapshot() Snapshot {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	now := time.Now()
	statusCounts := make(map[internal.SegmentStatus]int)
	var activeCount int
	var activeSpeedSum float64
	var instantaneousSum float64
	var maxRetries int

	for i := range t.segments {
		seg := &t.segments[i]
		statusCounts[seg.status]++
		if seg.retries > maxRetries {
			maxRetries = seg.retries
		}
		if isActive(seg, now) {
			activeCount++
			activeSpeedSum += segmentAverage(seg.history)
			instantaneousSum += seg.history[len(seg.history)-1].speed
		}
	}

	elapsed := now.Sub(t.startTime)
	overallSpeed := 0.0
	if elapsed.Seconds() > 0 {
		overallSpeed = float64(t.totalDownloaded) / elapsed.Seconds()
	}

	globalAverage := overallSpeed
	if n := len(t.globalHistory); n > 0 {
		k := 10
		if n < k {
			k = n
		}
		var sum float64
		for _, s := range t.globalHistory[n-k:] {
			sum += s.speed
		}
		globalAverage = sum / float64(k)
	}

	var percentage float64
	if t.total > 0 {
		percentage = float64(t.totalDownloaded) / float64(t.total) * 100
	}

	remaining := t.total - t.totalDownloaded
	var eta time.Duration
	var method ETAMethod
	switch {
	case activeCount >= 2 && activeSpeedSum > 0:
		eta = time.Duration(float64(remaining)/activeSpeedSum) * time.Second
		method = ETAActive
	case globalAverage > 0:
		eta = time.Duration(float64(remaining)/globalAverage) * time.Second
		method = ETAGlobal
	case overallSpeed > 0:
		eta = time.Duration(float64(remaining)/overallSpeed) * time.Second
		method = ETAOverall
	default:
		method = ETAUnknown
	}

	return Snapshot{
		Downloaded:        t.totalDownloaded,
		Total:             t.total,
		Percentage:        percentage,
		ActiveCount:       activeCount,
		ActiveSpeed:       activeSpeedSum,
		InstantaneousSum:  instantaneousSum,
		OverallSpeed:      overallSpeed,
		ETA:               eta,
		ETAMethod:         method,
		StatusCounts:      statusCounts,
		TotalRetries:      t.totalRetries,
		MaxSegmentRetries: maxRetries,
	}
}

// Start begins the 500ms display loop. No-op in quiet mode.
func (t *ProgressTracker) Start() {
	if t.quiet {
		close(t.dispDone)
		return
	}
	go func() {
		defer close(t.dispDone)
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-t.stopDisp:
				t.render()
				return
			case <-ticker.C:
				t.render()
			}
		}
	}()
}

func (t *ProgressTracker) render() {
	snap := t.Snapshot()
	t.bar.SetCurrent(snap.Downloaded)
	t.bar.Set("speed", fmt.Sprintf("%s/s (active %d/%d)", FormatBytes(int64(snap.OverallSpeed)), snap.ActiveCount, t.concurrency))
	t.bar.Set("instantaneous", fmt.Sprintf("inst %s/s", FormatBytes(int64(snap.InstantaneousSum))))
	if snap.ETAMethod == ETAUnknown {
		t.bar.Set("eta", "ETA unknown")
	} else {
		t.bar.Set("eta", fmt.Sprintf("ETA %s (%s)", snap.ETA.Round(time.Second), snap.ETAMethod))
	}
	t.bar.Set("statuses", formatStatusCounts(snap.StatusCounts))
	t.bar.Set("retries", fmt.Sprintf("retries %d (max %d)", snap.TotalRetries, snap.MaxSegmentRetries))
}

// formatStatusCounts renders the segment status breakdown the display line
// requires: counts of completed, downloading, pending and retrying segments.
func formatStatusCounts(counts map[internal.SegmentStatus]int) string {
	completed := counts[internal.StatusCompleted] + counts[internal.StatusCompletedAlreadyExists] + counts[internal.StatusCompletedResumed]
	return fmt.Sprintf("completed=%d downloading=%d pending=%d retrying=%d",
		completed, counts[internal.StatusDownloading], counts[internal.StatusPending], counts[internal.StatusRetrying])
}

// Stop halts the display loop and renders one final frame.
func (t *ProgressTracker) Stop() {
	if t.quiet {
		return
	}
	close(t.stopDisp)
	<-t.dispDone
	if t.bar != nil {
		t.bar.Finish()
	}
}
