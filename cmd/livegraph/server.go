package main

import (
	"io"
	"log"
	"os"

	lg "github.com/livegraph/livegraph/pkg"
	"github.com/livegraph/livegraph/pkg/conductor"
	"github.com/livegraph/livegraph/pkg/growth"
	"github.com/livegraph/livegraph/pkg/receivers"
	"github.com/livegraph/livegraph/pkg/webapi"
	"gopkg.in/natefinch/lumberjack.v2"
)

func Server(conf lg.Config) {
	// Tee the process log to a rotating file
	if conf.Log.Path != "" {
		file := &lumberjack.Logger{
			Filename: conf.Log.Path,
			Compress: true,
		}
		defer file.Close()
		log.SetOutput(io.MultiWriter(os.Stderr, file))
	}

	c := conductor.NewConductor(
		conductor.HookSignals(),
		conductor.Noisy(),
	)

	// The graph and its subscribers
	svc := lg.NewServiceFromConfig(conf)

	// Set up all configured receivers
	err := receivers.SetUpReceivers(c, svc, conf)
	if err != nil {
		log.Fatalf("receivers: %v", err)
	}

	// Start background growth
	if !conf.Growth.Disabled {
		c.Service("Grower", growth.NewGrower(svc, conf))
	}

	// Start the Web API and event stream
	api, err := webapi.NewWebAPI(conf, svc)
	if err != nil {
		panic(err)
	}
	c.Service("Web API", api)

	<-c.Start()
}
