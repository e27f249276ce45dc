package inspector

import (
	"fmt"
	"time"

	"github.com/go-drift/webbridge/pkg/platform"
)

// EventKind classifies a log line.
type EventKind int

const (
	EventMessage EventKind = iota
	EventNavigation
	EventError
	EventSent
	EventStatus
)

func (k EventKind) String() string {
	switch k {
	case EventMessage:
		return "recv"
	case EventNavigation:
		return "nav"
	case EventError:
		return "err"
	case EventSent:
		return "send"
	case EventStatus:
		return "info"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is one line in the inspector log.
type Event struct {
	Kind EventKind
	Text string
	Time time.Time
}

// Feed carries web view events from the UI thread into the inspector. It
// never blocks: events that do not fit in the buffer are dropped.
type Feed struct {
	ch chan Event
}

// NewFeed returns a feed buffering up to size events.
func NewFeed(size int) *Feed {
	return &Feed{ch: make(chan Event, size)}
}

func (f *Feed) push(kind EventKind, text string) {
	select {
	case f.ch <- Event{Kind: kind, Text: text, Time: time.Now()}:
	default:
	}
}

// Message records a message the page posted.
func (f *Feed) Message(message any) {
	f.push(EventMessage, fmt.Sprint(message))
}

// Navigation records a navigation state change.
func (f *Feed) Navigation(nav platform.NavigationState) {
	text := nav.URL
	if nav.Title != "" {
		text = fmt.Sprintf("%s (%s)", nav.URL, nav.Title)
	}
	if nav.Loading {
		text += " loading"
	}
	f.push(EventNavigation, text)
}

// LoadError records a failed load.
func (f *Feed) LoadError(err platform.LoadError) {
	f.push(EventError, fmt.Sprintf("%s: %s", err.URL, err.Error()))
}

// Status records a free-form status line.
func (f *Feed) Status(text string) {
	f.push(EventStatus, text)
}
