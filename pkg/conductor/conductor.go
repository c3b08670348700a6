package conductor

import (
	"context"
	"log"
	"sync"
	"time"
)

const (
	startupTimeout  time.Duration = time.Duration(5 * time.Second)
	shutdownTimeout time.Duration = time.Duration(5 * time.Second)
)

// Service is a long running part of the process. Run must return promptly:
// it starts its work in a goroutine, signals `started` once ready, and when
// a context arrives on `stop` it winds down within that context's deadline
// and signals (or closes) `stopped`.
type Service interface {
	Run(started chan bool, stopped chan bool, stop chan context.Context) error
}

type serviceState struct {
	name     string
	service  Service
	ready    chan bool
	stopped  chan bool
	shutdown chan context.Context
	running  bool
}

type Conductor struct {
	mu           sync.Mutex
	started      bool          // Have we been started yet?
	noisy        bool          // Should we log?
	startTimeout time.Duration // How long should we wait for each service to start before we die?
	stopTimeout  time.Duration // How long should we wait for each service to stop before we give up?
	shutdown     chan bool     // closed once everything has stopped, returned from Start()
	stopOnce     sync.Once
	services     []*serviceState
}

/*
Create a new conductor instance, accepts Option funcs for changing
default behaviours
*/
func NewConductor(opts ...func(*Conductor)) *Conductor {
	c := Conductor{
		startTimeout: startupTimeout,
		stopTimeout:  shutdownTimeout,
		shutdown:     make(chan bool),
		services:     []*serviceState{},
	}

	for _, optFn := range opts {
		optFn(&c)
	}
	return &c
}

/* Add a Service with a name to be started in order when Start is called */
func (c *Conductor) Service(name string, service Service) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		panic("Cannot call Conductor.Service after Conductor.Start")
	}
	c.services = append(c.services, &serviceState{
		name:     name,
		service:  service,
		ready:    make(chan bool, 1),
		stopped:  make(chan bool, 1),
		shutdown: make(chan context.Context, 1),
	})
}

/*
Start the conductor, each service is started in turn so later services
may depend on earlier ones. If one fails or times out, everything already
running is stopped. The returned channel closes when all have stopped.
*/
func (c *Conductor) Start() chan bool {
	c.mu.Lock()
	c.started = true
	c.mu.Unlock()

	for _, srv := range c.services {
		c.logf("🔧 Starting '%s'", srv.name)
		err := srv.service.Run(srv.ready, srv.stopped, srv.shutdown)
		if err != nil {
			c.logf("⚠️  '%s' exited with: %s", srv.name, err)
			go c.Stop()
			break
		}
		ok := false
		select {
		case <-time.After(c.startTimeout):
			c.logf("⚠️  timed-out during startup '%s'", srv.name)
		case <-srv.ready:
			ok = true
		}
		if !ok {
			go c.Stop()
			break
		}
		c.mu.Lock()
		srv.running = true
		c.mu.Unlock()
		c.logf(".. '%s' ok", srv.name)
	}
	return c.shutdown
}

// Stop shuts down every running service, all at once, and closes the
// channel returned by Start. Only the first call does anything.
func (c *Conductor) Stop() {
	c.stopOnce.Do(c.stop)
}

func (c *Conductor) stop() {
	ctx, cancel := context.WithTimeout(context.Background(), c.stopTimeout)
	defer cancel()

	c.mu.Lock()
	running := []*serviceState{}
	for _, s := range c.services {
		if s.running {
			running = append(running, s)
		}
	}
	c.mu.Unlock()

	wg := sync.WaitGroup{}
	wg.Add(len(running))
	done := make(chan bool)
	go func() {
		wg.Wait()
		close(done)
	}()

	for _, state := range running {
		c.logf("Requesting shutdown: %s", state.name)
		state.shutdown <- ctx
		go func(s *serviceState) {
			<-s.stopped
			c.logf("Shutdown complete: %s", s.name)
			wg.Done()
		}(state)
	}

	select {
	case <-done:
		c.logf("👋 All services stopped, goodbye!")
	case <-time.After(c.stopTimeout + time.Second):
		c.logf("Timeout exceeded waiting for services to stop, shutting down")
	}
	close(c.shutdown)
}

func (c *Conductor) logf(s string, v ...interface{}) {
	if c.noisy {
		log.Printf(s, v...)
	}
}
