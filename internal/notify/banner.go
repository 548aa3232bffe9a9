package notify

import (
	"sync"
	"time"
)

type Severity string

const (
	Success Severity = "success"
	Danger  Severity = "danger"
	Warning Severity = "warning"
	Info    Severity = "info"
)

// DefaultTTL is how long a message stays up.
const DefaultTTL = 3 * time.Second

type Message struct {
	Text     string
	Severity Severity
	Visible  bool
}

// Banner is a single transient status line. A new message replaces the
// current one and restarts the dismissal timer; there is no queue.
type Banner struct {
	mu       sync.Mutex
	ttl      time.Duration
	current  Message
	timer    *time.Timer
	gen      uint64
	onChange func(Message)
}

// NewBanner returns a banner that hides messages after ttl. onChange, if
// non-nil, is called after every show and hide; it runs on the timer's
// goroutine for hides and must not call back into the banner.
func NewBanner(ttl time.Duration, onChange func(Message)) *Banner {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Banner{ttl: ttl, onChange: onChange}
}

func (b *Banner) Notify(text string, severity Severity) {
	b.mu.Lock()
	if b.timer != nil {
		b.timer.Stop()
	}
	b.gen++
	gen := b.gen
	b.current = Message{Text: text, Severity: severity, Visible: true}
	b.timer = time.AfterFunc(b.ttl, func() { b.hide(gen) })
	msg := b.current
	b.mu.Unlock()

	b.changed(msg)
}

// hide dismisses the message shown at generation gen, unless a newer
// message replaced it in the meantime.
func (b *Banner) hide(gen uint64) {
	b.mu.Lock()
	if gen != b.gen || !b.current.Visible {
		b.mu.Unlock()
		return
	}
	b.current.Visible = false
	msg := b.current
	b.mu.Unlock()

	b.changed(msg)
}

func (b *Banner) changed(msg Message) {
	if b.onChange != nil {
		b.onChange(msg)
	}
}

// Current returns the message as it stands; Visible is false once dismissed.
func (b *Banner) Current() Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// Stop cancels a pending dismissal. The current message stays as is.
func (b *Banner) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}
