package receivers

import (
	"context"
	"errors"
	"fmt"

	lg "github.com/livegraph/livegraph/pkg"
	"github.com/livegraph/livegraph/pkg/conductor"
)

var errPublisherClosed = errors.New("zmq publisher closed")

// Sets up standard receivers.
func SetUpReceivers(cond *conductor.Conductor, svc *lg.Service, conf lg.Config) error {
	// Set up configured loggers
	err := SetupLoggers(cond, svc, conf)
	if err != nil {
		return err
	}

	// Set up the ZMQ publisher
	if conf.ZMQ.Bind != "" {
		pub, err := NewZMQPublisher(conf.ZMQ.Bind)
		if err != nil {
			return fmt.Errorf("zmq publisher on %s: %w", conf.ZMQ.Bind, err)
		}
		svc.Subscribe(pub)
		cond.Service(fmt.Sprintf("ZMQ %s", conf.ZMQ.Bind), sink{svc, pub})
	}
	return nil
}

// sink ties a subscribed receiver to the conductor, so it is unsubscribed
// and closed on shutdown.
type sink struct {
	svc *lg.Service
	sub lg.Subscriber
}

// Implements conductor.Service
func (s sink) Run(started, stopped chan bool, stop chan context.Context) error {
	go func() {
		started <- true
		<-stop
		s.svc.Disconnect(s.sub)
		// harmless if the bus already dropped it
		s.sub.Close()
		stopped <- true
	}()
	return nil
}
