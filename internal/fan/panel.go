package fan

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fan-control-backend/internal/device"
	"fan-control-backend/internal/parse"
)

var (
	// ErrInvalidLevel is returned by SetSpeed for levels outside 1-5.
	ErrInvalidLevel = errors.New("invalid speed level")
	// ErrClosed is returned once the panel has been torn down.
	ErrClosed = errors.New("panel closed")
)

// Dispatcher delivers a speed level to the fan controller.
type Dispatcher interface {
	Dispatch(ctx context.Context, level int) error
}

// Observer is told about power, speed and error changes. Animation frames
// are not reported to it.
type Observer interface {
	StateChanged(s Snapshot)
}

// Options configures a Panel.
type Options struct {
	// BaseStep is the rotation in degrees per frame at speed level 1.
	BaseStep int
	// EaseOut is how long the icon eases back once the fan stops.
	EaseOut   time.Duration
	Scheduler FrameScheduler
	Observer  Observer
}

// Panel holds the control state of the fan: power, speed level, the icon's
// rotation angle and the last connection error.
//
// The rotation loop is a single armed Frame that re-arms itself on every
// tick while the fan is powered at a nonzero speed. Any change that breaks
// that condition, and Close, cancels it.
type Panel struct {
	mu       sync.Mutex
	power    bool
	speed    int
	rotation int
	connErr  string

	frame  Frame
	gen    uint64
	seq    uint64
	closed bool

	subs    map[int]chan Snapshot
	nextSub int

	baseStep   int
	easeOut    time.Duration
	scheduler  FrameScheduler
	observer   Observer
	dispatcher Dispatcher
}

// NewPanel creates a panel in its initial state: off, speed 0, angle 0 and
// no error.
func NewPanel(dispatcher Dispatcher, opts Options) *Panel {
	if opts.BaseStep <= 0 {
		opts.BaseStep = 4
	}
	if opts.EaseOut <= 0 {
		opts.EaseOut = 500 * time.Millisecond
	}
	if opts.Scheduler == nil {
		opts.Scheduler = NewTimerScheduler(time.Second / 60)
	}
	return &Panel{
		subs:       make(map[int]chan Snapshot),
		baseStep:   opts.BaseStep,
		easeOut:    opts.EaseOut,
		scheduler:  opts.Scheduler,
		observer:   opts.Observer,
		dispatcher: dispatcher,
	}
}

// TogglePower flips the power state. Powering on selects level 1, powering
// off selects level 0, and the new level is sent to the controller. The
// state change is applied before the command is sent and is kept whatever
// the outcome.
func (p *Panel) TogglePower(ctx context.Context) (Snapshot, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return Snapshot{}, ErrClosed
	}
	p.power = !p.power
	if p.power {
		p.speed = 1
	} else {
		p.speed = 0
	}
	level := p.speed
	snap := p.applyLocked()
	p.mu.Unlock()

	p.notify(snap)
	return p.dispatch(ctx, level), nil
}

// SetSpeed selects a level from 1 to 5, powering the fan on if it was off,
// and sends the level to the controller.
func (p *Panel) SetSpeed(ctx context.Context, level int) (Snapshot, error) {
	if level < parse.MinLevel || level > parse.MaxLevel {
		return Snapshot{}, fmt.Errorf("%w: %d", ErrInvalidLevel, level)
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return Snapshot{}, ErrClosed
	}
	p.speed = level
	if !p.power {
		p.power = true
	}
	snap := p.applyLocked()
	p.mu.Unlock()

	p.notify(snap)
	return p.dispatch(ctx, level), nil
}

// Snapshot returns the current state.
func (p *Panel) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// Subscribe returns a channel that receives the current state immediately
// and then every change and animation frame. Updates are dropped for a
// subscriber whose buffer is full. The returned func unsubscribes and
// closes the channel.
func (p *Panel) Subscribe(buffer int) (<-chan Snapshot, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Snapshot, buffer)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		close(ch)
		return ch, func() {}
	}
	id := p.nextSub
	p.nextSub++
	p.subs[id] = ch
	ch <- p.snapshotLocked()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			if c, ok := p.subs[id]; ok {
				delete(p.subs, id)
				close(c)
			}
		})
	}
}

// Close cancels the rotation loop and closes every subscription. Later
// calls to TogglePower and SetSpeed fail with ErrClosed.
func (p *Panel) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	p.syncAnimationLocked()
	for id, c := range p.subs {
		delete(p.subs, id)
		close(c)
	}
}

// applyLocked clears the previous error for the attempt about to be made,
// reconciles the rotation loop and broadcasts the new state.
func (p *Panel) applyLocked() Snapshot {
	p.connErr = ""
	p.seq++
	p.syncAnimationLocked()
	snap := p.snapshotLocked()
	p.broadcastLocked(snap)
	return snap
}

func (p *Panel) dispatch(ctx context.Context, level int) Snapshot {
	// A caller that goes away does not cancel a command already on its way.
	err := p.dispatcher.Dispatch(context.WithoutCancel(ctx), level)
	if err == nil {
		return p.Snapshot()
	}

	msg := err.Error()
	var devErr *device.DeviceError
	if errors.As(err, &devErr) {
		msg = devErr.Advisory()
	}
	p.mu.Lock()
	p.connErr = msg
	p.seq++
	snap := p.snapshotLocked()
	p.broadcastLocked(snap)
	p.mu.Unlock()

	p.notify(snap)
	return snap
}

func (p *Panel) running() bool {
	return !p.closed && p.power && p.speed > 0
}

// syncAnimationLocked arms the rotation loop when it should run and is
// idle, and cancels it when it should not run.
func (p *Panel) syncAnimationLocked() {
	switch run := p.running(); {
	case run && p.frame == nil:
		p.gen++
		gen := p.gen
		p.frame = p.scheduler.Next(func() { p.tick(gen) })
	case !run && p.frame != nil:
		p.frame.Cancel()
		p.frame = nil
		p.gen++
	}
}

func (p *Panel) tick(gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	// A timer may fire after its frame was cancelled.
	if gen != p.gen || p.frame == nil {
		return
	}
	p.frame = nil
	p.rotation = (p.rotation + p.baseStep*p.speed) % 360
	p.syncAnimationLocked()
	p.broadcastLocked(p.snapshotLocked())
}

func (p *Panel) snapshotLocked() Snapshot {
	s := Snapshot{
		Seq:             p.seq,
		Power:           p.power,
		Speed:           p.speed,
		Command:         device.CommandFor(p.speed),
		Rotation:        p.rotation,
		Running:         p.frame != nil,
		ConnectionError: p.connErr,
		Transition:      Transition{Easing: "none"},
	}
	if p.speed == 0 {
		s.Transition = Transition{Easing: "ease-out", DurationMs: p.easeOut.Milliseconds()}
	}
	return s
}

func (p *Panel) broadcastLocked(s Snapshot) {
	for _, c := range p.subs {
		select {
		case c <- s:
		default:
		}
	}
}

func (p *Panel) notify(s Snapshot) {
	if p.observer != nil {
		p.observer.StateChanged(s)
	}
}
