// Package status carries human-readable progress and failure messages from the
// benchmark engine to whatever displays them.
package status

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Level classifies an Event for display
type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Event is a single status message
type Event struct {
	Time    time.Time `json:"time"`
	Level   Level     `json:"level"`
	Source  string    `json:"source"`
	Path    string    `json:"path,omitempty"`
	Message string    `json:"message"`
}

// Sink receives status events. Implementations are not required to be safe
// for concurrent use; wrap them with Serialize when publishing from several goroutines.
type Sink interface {
	Publish(ev Event)
}

// SinkFunc adapts a function to Sink
type SinkFunc func(ev Event)

func (f SinkFunc) Publish(ev Event) { f(ev) }

// Discard drops every event
var Discard Sink = SinkFunc(func(Event) {})

// Info builds an info-level event
func Info(source, path, message string) Event {
	return Event{Time: time.Now(), Level: LevelInfo, Source: source, Path: path, Message: message}
}

// Error builds an error-level event
func Error(source, path, message string) Event {
	return Event{Time: time.Now(), Level: LevelError, Source: source, Path: path, Message: message}
}

type serialSink struct {
	mu   sync.Mutex
	sink Sink
}

// Serialize returns a Sink that forwards to sink while holding a mutex,
// so sink never sees concurrent Publish calls.
func Serialize(sink Sink) Sink {
	if sink == nil {
		return Discard
	}
	if s, ok := sink.(*serialSink); ok {
		return s
	}
	return &serialSink{sink: sink}
}

func (s *serialSink) Publish(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sink.Publish(ev)
}

// Multi fans every event out to each sink in order
type Multi []Sink

func (m Multi) Publish(ev Event) {
	for _, s := range m {
		if s != nil {
			s.Publish(ev)
		}
	}
}

// Log writes events to a structured logger
type Log struct {
	Logger *slog.Logger
}

func (l Log) Publish(ev Event) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}

	level := slog.LevelInfo
	if ev.Level == LevelError {
		level = slog.LevelWarn
	}
	logger.Log(context.Background(), level, ev.Message, "source", ev.Source, "path", ev.Path)
}

// Channel delivers events to a consumer-owned channel. Publish blocks while
// the channel is full.
type Channel chan<- Event

func (c Channel) Publish(ev Event) {
	c <- ev
}

// Recorder keeps every published event in memory
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

// Events returns a copy of the recorded events
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Messages returns the recorded event messages in publish order
func (r *Recorder) Messages() []string {
	events := r.Events()
	msgs := make([]string, len(events))
	for i, ev := range events {
		msgs[i] = ev.Message
	}
	return msgs
}
