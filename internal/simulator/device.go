package simulator

import (
	"fmt"
	"path"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tupyy/hcam-agent/pkg/camapi"
)

// Timing holds how long the simulated camera spends in each phase.
type Timing struct {
	Calibration     time.Duration
	PretriggerFill  time.Duration
	TriggerLatency  time.Duration
	PostTriggerFill time.Duration
	CancelLatency   time.Duration
	SavePerVideo    time.Duration
	SaveStopLatency time.Duration
	Truncate        time.Duration
}

func DefaultTiming() Timing {
	return Timing{
		Calibration:     2 * time.Second,
		PretriggerFill:  3 * time.Second,
		TriggerLatency:  200 * time.Millisecond,
		PostTriggerFill: 3 * time.Second,
		CancelLatency:   500 * time.Millisecond,
		SavePerVideo:    4 * time.Second,
		SaveStopLatency: 500 * time.Millisecond,
		Truncate:        1500 * time.Millisecond,
	}
}

type Options struct {
	Timing         Timing
	MaxMultishot   int
	StorageSize    uint64
	VideoSize      uint64
	StorageDir     string
	SerialNumber   string
	Flags          camapi.Flags
	StartUnstarted bool
}

func DefaultOptions() Options {
	return Options{
		Timing:       DefaultTiming(),
		MaxMultishot: 3,
		StorageSize:  64 << 30,
		VideoSize:    256 << 20,
		StorageDir:   "/mnt/sdcard",
		SerialNumber: "SIM0001",
		Flags:        camapi.FlagSDCardStorageInstalled,
	}
}

var defaultSettings = camapi.Settings{
	"iso":             400,
	"exposure":        0.002,
	"frame_rate":      60,
	"horizontal":      640,
	"vertical":        480,
	"subsample":       0,
	"duration":        10,
	"pretrigger":      50,
	"multishot_count": 1,
}

// Device is a deterministic camera. Phases are evaluated lazily against the clock
// on every request, so a manual clock fully controls its progress.
type Device struct {
	mu    sync.Mutex
	clock Clock
	opts  Options

	state      camapi.CameraState
	phaseStart time.Time

	current       camapi.Settings
	saved         camapi.Settings
	multishot     int
	activeBuffer  int
	captured      int
	buffersFull   bool
	saveIndex     int
	baseFilename  string
	pretrigLevel  int
	availableFree uint64
	files         []string

	triggerAt *time.Time
	cancelAt  *time.Time
	stopAt    *time.Time
	discard   bool

	favorites map[string]camapi.Settings
	requests  []string
}

func NewDevice(clock Clock, opts Options) *Device {
	if clock == nil {
		clock = realClock{}
	}
	if opts.MaxMultishot < 1 {
		opts.MaxMultishot = 1
	}

	d := &Device{
		clock:         clock,
		opts:          opts,
		state:         camapi.StateCalibrating,
		phaseStart:    clock.Now(),
		current:       camapi.Settings{},
		saved:         copySettings(defaultSettings),
		multishot:     1,
		activeBuffer:  1,
		availableFree: opts.StorageSize,
		favorites:     map[string]camapi.Settings{},
	}
	if opts.StartUnstarted {
		d.state = camapi.StateUnconfigured
	}
	return d
}

// State returns the current camera state.
func (d *Device) State() camapi.CameraState {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.advance()
	return d.state
}

// Requests returns every request URI the device received, in order.
func (d *Device) Requests() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.requests...)
}

// Files returns the names of the saved videos.
func (d *Device) Files() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.files...)
}

func (d *Device) record(uri string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.requests = append(d.requests, uri)
}

func (d *Device) isMultishot() bool {
	return d.multishot > 1
}

// advance moves the state machine up to the current clock time. Every transition
// starts the next phase at the time the previous one ended.
func (d *Device) advance() {
	now := d.clock.Now()
	t := d.opts.Timing

	for {
		switch d.state {
		case camapi.StateCalibrating:
			end := d.phaseStart.Add(t.Calibration)
			if now.Before(end) {
				return
			}
			d.enterRunning(end)
		case camapi.StateRunning, camapi.StateRunningPretriggerFull:
			if d.triggerAt != nil && !now.Before(*d.triggerAt) {
				d.pretrigLevel = d.pretriggerLevel(*d.triggerAt)
				d.state = camapi.StateTriggered
				d.phaseStart = *d.triggerAt
				d.triggerAt = nil
				continue
			}
			if d.state == camapi.StateRunning && !d.buffersFull && !now.Before(d.phaseStart.Add(t.PretriggerFill)) {
				d.state = camapi.StateRunningPretriggerFull
			}
			return
		case camapi.StateTriggered:
			end := d.phaseStart.Add(t.PostTriggerFill)
			if d.cancelAt != nil && !d.cancelAt.After(end) && !now.Before(*d.cancelAt) {
				at := *d.cancelAt
				d.cancelAt = nil
				// unsaved buffers are dropped
				d.captured = 0
				d.activeBuffer = 1
				d.buffersFull = false
				d.enterRunning(at)
				continue
			}
			if now.Before(end) {
				return
			}
			d.cancelAt = nil
			d.captured++
			if !d.isMultishot() {
				d.enterSaving(end)
				continue
			}
			if d.captured < d.multishot {
				d.activeBuffer = d.captured + 1
			} else {
				d.buffersFull = true
			}
			d.enterRunning(end)
		case camapi.StateSaving:
			end := d.phaseStart.Add(t.SavePerVideo)
			if d.stopAt != nil && d.stopAt.Before(end) && !now.Before(*d.stopAt) {
				d.state = camapi.StateSaveTruncating
				d.phaseStart = *d.stopAt
				d.stopAt = nil
				continue
			}
			if now.Before(end) {
				return
			}
			d.stopAt = nil
			d.storeVideo()
			if d.saveIndex < d.captured {
				d.saveIndex++
				d.phaseStart = end
				continue
			}
			d.finishSave(end)
		case camapi.StateSaveTruncating:
			end := d.phaseStart.Add(t.Truncate)
			if now.Before(end) {
				return
			}
			d.storeVideo()
			if !d.discard && d.saveIndex < d.captured {
				d.saveIndex++
				d.state = camapi.StateSaving
				d.phaseStart = end
				continue
			}
			d.finishSave(end)
		default:
			return
		}
	}
}

func (d *Device) enterRunning(at time.Time) {
	d.state = camapi.StateRunning
	d.phaseStart = at
}

func (d *Device) enterSaving(at time.Time) {
	d.state = camapi.StateSaving
	d.phaseStart = at
	d.saveIndex = 1
	d.discard = false
}

func (d *Device) finishSave(at time.Time) {
	d.captured = 0
	d.activeBuffer = 1
	d.saveIndex = 0
	d.buffersFull = false
	d.discard = false
	d.saved = copySettings(d.current)
	d.enterRunning(at)
}

func (d *Device) storeVideo() {
	base := d.baseFilename
	if base == "" {
		base = "hcam"
	}
	name := fmt.Sprintf("%s_%04d.mov", base, len(d.files)+1)
	if !path.IsAbs(name) {
		name = path.Join(d.opts.StorageDir, name)
	}
	d.files = append(d.files, name)
	if d.availableFree > d.opts.VideoSize {
		d.availableFree -= d.opts.VideoSize
	} else {
		d.availableFree = 0
	}
	zap.S().Named("simulator").Debugw("video saved", "file", name)
}

func (d *Device) pretriggerLevel(at time.Time) int {
	if d.state == camapi.StateRunningPretriggerFull {
		return 100
	}
	return percent(at.Sub(d.phaseStart), d.opts.Timing.PretriggerFill)
}

func (d *Device) level(now time.Time) int {
	t := d.opts.Timing
	switch d.state {
	case camapi.StateCalibrating:
		return percent(now.Sub(d.phaseStart), t.Calibration)
	case camapi.StateRunning:
		if d.buffersFull {
			return 0
		}
		return percent(now.Sub(d.phaseStart), t.PretriggerFill)
	case camapi.StateRunningPretriggerFull:
		return 100
	case camapi.StateTriggered:
		return percent(now.Sub(d.phaseStart), t.PostTriggerFill)
	case camapi.StateSaving:
		return percent(now.Sub(d.phaseStart), t.SavePerVideo)
	case camapi.StateSaveTruncating:
		return percent(now.Sub(d.phaseStart), t.Truncate)
	}
	return 0
}

func percent(elapsed, total time.Duration) int {
	if total <= 0 || elapsed >= total {
		return 100
	}
	if elapsed <= 0 {
		return 0
	}
	return int(elapsed * 100 / total)
}

// status builds the get_camstatus payload.
func (d *Device) status() map[string]any {
	d.advance()

	st := map[string]any{
		"state":           int(d.state),
		"level":           d.level(d.clock.Now()),
		"flags":           uint64(d.opts.Flags),
		"available_space": d.availableFree,
	}
	if !d.isMultishot() {
		return st
	}

	switch d.state {
	case camapi.StateRunning, camapi.StateRunningPretriggerFull, camapi.StateTriggered:
		st["active_buffer"] = d.activeBuffer
	case camapi.StateSaving, camapi.StateSaveTruncating:
		st["active_buffer"] = d.saveIndex
		st["captured_buffers"] = d.captured
	}
	return st
}

func (d *Device) configure(requested camapi.Settings) camapi.Settings {
	out := camapi.Settings{}
	for k, v := range requested {
		out[k] = v
	}

	for key, def := range defaultSettings {
		v, ok := requested[camapi.RequestedPrefix+key]
		if !ok || v == nil {
			v = def
			if key == "multishot_count" && ok {
				v = d.opts.MaxMultishot
			}
		}
		out[key] = v
	}

	if n, ok := out.Int("multishot_count"); ok {
		out["multishot_count"] = min(max(n, 1), d.opts.MaxMultishot)
	}
	if n, ok := out.Int("frame_rate"); ok && n > 1000 {
		out["frame_rate"] = 1000
	}

	d.current = copySettings(out)
	return out
}

func (d *Device) run(settings camapi.Settings) camapi.OperationStatus {
	d.advance()
	switch d.state {
	case camapi.StateRunning, camapi.StateRunningPretriggerFull, camapi.StateUnconfigured:
	default:
		return camapi.StatusInvalidState
	}

	if len(settings) > 0 {
		d.current = copySettings(settings)
	}
	d.multishot = 1
	if n, ok := d.current.MultishotCount(); ok && n > 1 {
		d.multishot = min(n, d.opts.MaxMultishot)
	}

	d.captured = 0
	d.activeBuffer = 1
	d.buffersFull = false
	d.triggerAt = nil
	d.enterRunning(d.clock.Now())
	return camapi.StatusOkay
}

func (d *Device) trigger(baseFilename string) camapi.OperationStatus {
	d.advance()
	if !d.state.IsRunning() || d.buffersFull || d.triggerAt != nil {
		return camapi.StatusInvalidState
	}
	d.baseFilename = baseFilename
	at := d.clock.Now().Add(d.opts.Timing.TriggerLatency)
	d.triggerAt = &at
	return camapi.StatusOkay
}

func (d *Device) cancel() camapi.OperationStatus {
	d.advance()
	if d.state != camapi.StateTriggered || d.cancelAt != nil {
		return camapi.StatusInvalidState
	}
	at := d.clock.Now().Add(d.opts.Timing.CancelLatency)
	d.cancelAt = &at
	return camapi.StatusOkay
}

func (d *Device) save() camapi.OperationStatus {
	d.advance()
	if !d.isMultishot() || !d.state.IsRunning() || d.captured == 0 || d.triggerAt != nil {
		return camapi.StatusInvalidState
	}
	d.enterSaving(d.clock.Now())
	return camapi.StatusOkay
}

func (d *Device) saveStop(discard bool) camapi.OperationStatus {
	d.advance()
	if d.state != camapi.StateSaving || d.stopAt != nil {
		return camapi.StatusInvalidState
	}
	at := d.clock.Now().Add(d.opts.Timing.SaveStopLatency)
	d.stopAt = &at
	d.discard = discard
	return camapi.StatusOkay
}

func (d *Device) fillLevel() int {
	d.advance()
	switch d.state {
	case camapi.StateRunning, camapi.StateRunningPretriggerFull:
		if d.triggerAt != nil {
			return d.pretriggerLevel(d.clock.Now())
		}
		return d.level(d.clock.Now())
	default:
		return d.pretrigLevel
	}
}

func (d *Device) favoriteIDs() []string {
	ids := make([]string, 0, len(d.favorites))
	for id := range d.favorites {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func copySettings(s camapi.Settings) camapi.Settings {
	out := make(camapi.Settings, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
