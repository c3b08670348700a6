package livegraph

import (
	"fmt"
	"time"

	"github.com/jinzhu/configor"
)

type Config struct {
	WebAPI struct {
		Bind string `default:"localhost" toml:"bind"`
		Port string `default:"8000" toml:"port"`
	} `toml:"webapi"`

	Graph struct {
		// use the deduplicating edge store instead of the adjacency list
		DedupeEdges bool `default:"false" toml:"dedupe_edges"`
	} `toml:"graph"`

	Growth struct {
		Disabled bool   `default:"false" toml:"disabled"`
		Interval string `default:"10s" toml:"interval"`
		Prefix   string `default:"N" toml:"prefix"`
	} `toml:"growth"`

	Bus struct {
		// bound on a single delivery to a single subscriber
		SendTimeout string `default:"5s" toml:"send_timeout"`
	} `toml:"bus"`

	Log struct {
		// when set, the process log is also written to this rotating file
		Path string `toml:"path"`
	} `toml:"log"`

	// rotating event log files, see receivers.SetupLoggers
	Loggers map[string]LoggerConfig `toml:"loggers"`

	ZMQ struct {
		// eg. tcp://*:28330, empty disables the publisher
		Bind string `toml:"bind"`
	} `toml:"zmq"`
}

type LoggerConfig struct {
	Path  string   `toml:"path"`
	Types []string `toml:"types"`
}

// LoadConfig reads confPaths in order, then LIVEGRAPH_* environment
// overrides, filling in defaults for anything unset.
func LoadConfig(confPaths ...string) (Config, error) {
	c := Config{}
	err := configor.New(&configor.Config{ENVPrefix: "LIVEGRAPH"}).Load(&c, confPaths...)
	if err != nil {
		return c, err
	}
	return c, c.Validate()
}

func (c Config) Validate() error {
	if d, err := time.ParseDuration(c.Growth.Interval); err != nil || d <= 0 {
		return fmt.Errorf("growth.interval: invalid duration %q", c.Growth.Interval)
	}
	if d, err := time.ParseDuration(c.Bus.SendTimeout); err != nil || d <= 0 {
		return fmt.Errorf("bus.send_timeout: invalid duration %q", c.Bus.SendTimeout)
	}
	return nil
}

func (c Config) GrowthInterval() time.Duration {
	d, _ := time.ParseDuration(c.Growth.Interval)
	return d
}

func (c Config) SendTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Bus.SendTimeout)
	return d
}

// TestConfig returns a config suitable for tests: defaults, no background
// growth, short send timeout.
func TestConfig() Config {
	c, _ := LoadConfig()
	c.Growth.Disabled = true
	c.Growth.Interval = "10ms"
	c.Bus.SendTimeout = "1s"
	return c
}
