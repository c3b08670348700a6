// Package growth grows the live graph on its own: every interval it invents
// a node and links it from one of the existing nodes.
package growth

import (
	"context"
	"fmt"
	"log"
	"time"

	lg "github.com/livegraph/livegraph/pkg"
	"github.com/livegraph/livegraph/pkg/conductor"
)

// interface guard ensures Grower implements conductor.Service
var _ conductor.Service = &Grower{}

// Mutator is the part of lg.Service the Grower drives.
type Mutator interface {
	AddNode(ctx context.Context, n lg.NodeID) error
	AddEdge(ctx context.Context, from, to lg.NodeID) error
	Nodes() []lg.NodeID
}

type Grower struct {
	graph    Mutator
	interval time.Duration
	prefix   string
	counter  uint64
}

func NewGrower(graph Mutator, conf lg.Config) *Grower {
	return &Grower{
		graph:    graph,
		interval: conf.GrowthInterval(),
		prefix:   conf.Growth.Prefix,
	}
}

// Implements conductor.Service
func (g *Grower) Run(started, stopped chan bool, stop chan context.Context) error {
	go func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		timer := time.NewTimer(g.interval)
		defer timer.Stop()
		started <- true
		for {
			select {
			case <-stop:
				close(stopped)
				return
			case <-timer.C:
				if err := g.safeStep(ctx); err != nil {
					log.Println("Grower: iteration abandoned:", err)
				}
				timer.Reset(g.interval)
			}
		}
	}()
	return nil
}

// safeStep runs Step, turning a panic into an error so one bad iteration
// does not end the loop.
func (g *Grower) safeStep(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return g.Step(ctx)
}

// Step performs one growth iteration: add node <prefix><counter>, then link
// to it from existing node number counter%len (insertion order, excluding
// the new node), if there is one. The counter advances even if the
// iteration fails part way, so every invented node is new.
func (g *Grower) Step(ctx context.Context) error {
	n := g.counter
	defer func() { g.counter++ }()

	id := lg.StringNode(fmt.Sprintf("%s%d", g.prefix, n))
	if err := g.graph.AddNode(ctx, id); err != nil {
		return fmt.Errorf("add node %s: %w", id, err)
	}

	existing := []lg.NodeID{}
	for _, node := range g.graph.Nodes() {
		if node != id {
			existing = append(existing, node)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	from := existing[n%uint64(len(existing))]
	if err := g.graph.AddEdge(ctx, from, id); err != nil {
		return fmt.Errorf("add edge %s -> %s: %w", from, id, err)
	}
	return nil
}

// Counter is the number of iterations attempted so far.
func (g *Grower) Counter() uint64 {
	return g.counter
}
