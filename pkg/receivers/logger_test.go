package receivers

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	lg "github.com/livegraph/livegraph/pkg"
	"github.com/livegraph/livegraph/pkg/conductor"
)

type nopCloser struct{ closes int }

func (c *nopCloser) Close() error {
	c.closes++
	return nil
}

func TestEventLoggerFiltersKinds(t *testing.T) {
	ctx := context.Background()
	svc := lg.NewServiceFromConfig(lg.TestConfig())
	buf := &bytes.Buffer{}
	l := newEventLogger(buf, &nopCloser{}, []lg.EventKind{lg.EdgeAdded})
	svc.Subscribe(l)

	svc.AddNode(ctx, lg.StringNode("A"))
	svc.AddEdge(ctx, lg.StringNode("A"), lg.IntNode(7))
	svc.Reset(ctx)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one logged event, got %q", buf.String())
	}
	if !strings.Contains(lines[0], `edge_added #2: {"event":"edge_added","seq":2,"from":"A","to":7}`) {
		t.Fatalf("unexpected log line %q", lines[0])
	}
}

func TestEventLoggerClose(t *testing.T) {
	ctx := context.Background()
	svc := lg.NewServiceFromConfig(lg.TestConfig())
	c := &nopCloser{}
	l := newEventLogger(io.Discard, c, nil)
	svc.Subscribe(l)

	l.Close()
	l.Close()
	if c.closes != 1 {
		t.Fatalf("expected a single close, got %d", c.closes)
	}
	if err := l.Send(ctx, lg.GraphResetEvent()); err == nil {
		t.Fatalf("expected Send after Close to fail")
	}

	// the bus drops it on the next broadcast
	svc.AddNode(ctx, lg.StringNode("A"))
	if n := svc.Stats().Subscribers; n != 0 {
		t.Fatalf("closed logger still subscribed (%d subscribers)", n)
	}
}

func TestSetupLoggers(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "events.log")

	conf := lg.TestConfig()
	conf.Loggers = map[string]lg.LoggerConfig{
		"events": {Path: path, Types: []string{"ALL"}},
	}
	svc := lg.NewServiceFromConfig(conf)
	cond := conductor.NewConductor()
	if err := SetUpReceivers(cond, svc, conf); err != nil {
		t.Fatalf("SetUpReceivers: %v", err)
	}
	<-waitStarted(cond)

	svc.AddEdge(ctx, lg.StringNode("A"), lg.StringNode("B"))

	cond.Stop()
	if n := svc.Stats().Subscribers; n != 0 {
		t.Fatalf("logger still subscribed after stop (%d subscribers)", n)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading event log: %v", err)
	}
	if !strings.Contains(string(b), `"from":"A","to":"B"`) {
		t.Fatalf("event missing from log: %q", b)
	}
}

func TestSetupLoggersRejectsUnknownKind(t *testing.T) {
	conf := lg.TestConfig()
	conf.Loggers = map[string]lg.LoggerConfig{
		"bad": {Path: filepath.Join(t.TempDir(), "x.log"), Types: []string{"invoice_paid"}},
	}
	svc := lg.NewServiceFromConfig(conf)
	if err := SetUpReceivers(conductor.NewConductor(), svc, conf); err == nil {
		t.Fatalf("expected an error for an unknown event kind")
	}
	if n := svc.Stats().Subscribers; n != 0 {
		t.Fatalf("nothing should be subscribed, have %d", n)
	}
}

// waitStarted runs Start, which returns once every service is up.
func waitStarted(cond *conductor.Conductor) chan bool {
	done := make(chan bool)
	go func() {
		cond.Start()
		close(done)
	}()
	return done
}
