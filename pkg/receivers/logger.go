package receivers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	lg "github.com/livegraph/livegraph/pkg"
	"github.com/livegraph/livegraph/pkg/conductor"
	"gopkg.in/natefinch/lumberjack.v2"
)

var errLoggerClosed = errors.New("event logger closed")

// EventLogger writes each event it receives as one line to a rotating
// log file.
type EventLogger struct {
	// EventLogger logs events via Log
	Log *log.Logger
	out io.Closer
	// kinds that are written, all others are ignored
	kinds  map[lg.EventKind]bool
	mu     sync.Mutex
	closed bool
}

// interface guard ensures EventLogger implements lg.Subscriber
var _ lg.Subscriber = &EventLogger{}

func NewEventLogger(path string, kinds ...lg.EventKind) *EventLogger {
	out := &lumberjack.Logger{
		Filename: path,
		Compress: true,
	}
	return newEventLogger(out, out, kinds)
}

func newEventLogger(w io.Writer, c io.Closer, kinds []lg.EventKind) *EventLogger {
	if len(kinds) == 0 {
		kinds = lg.EventKinds
	}
	l := &EventLogger{
		Log:   log.New(w, "", log.Ltime|log.Lmicroseconds),
		out:   c,
		kinds: make(map[lg.EventKind]bool, len(kinds)),
	}
	for _, k := range kinds {
		l.kinds[k] = true
	}
	return l
}

func (l *EventLogger) Identity() any {
	return l
}

// Implements lg.Subscriber
func (l *EventLogger) Send(ctx context.Context, e lg.Event) error {
	if !l.kinds[e.Kind] {
		return nil
	}
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return errLoggerClosed
	}
	l.Log.Printf("%s #%d: %s\n", e.Kind, e.Seq, b)
	return nil
}

func (l *EventLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return l.out.Close()
}

// Reads config and sets up any configured loggers
func SetupLoggers(cond *conductor.Conductor, svc *lg.Service, conf lg.Config) error {
	for name, c := range conf.Loggers {
		if c.Path == "" {
			return fmt.Errorf("logger %s: missing path", name)
		}
		kinds, err := lg.ParseEventKinds(c.Types)
		if err != nil {
			return fmt.Errorf("logger %s: %w", name, err)
		}
		l := NewEventLogger(c.Path, kinds...)
		svc.Subscribe(l)
		cond.Service(fmt.Sprintf("Logger %s", c.Path), sink{svc, l})
	}
	return nil
}
