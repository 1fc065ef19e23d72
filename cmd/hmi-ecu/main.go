package main

import (
	"context"
	"flag"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/ecu.go/pkg/ecu/config"
	"github.com/robotalks/ecu.go/pkg/ecu/node"
)

var noShell bool

func init() {
	config.SetupFlags()
	flag.BoolVar(&noShell, "no-shell", noShell, "Relay MQTT commands only, no interactive shell.")
}

func main() {
	flag.Parse()
	defer glog.Flush()

	conf, err := config.Load()
	if err != nil {
		glog.Exitln(err)
	}
	n := node.New(conf)
	ctx, cancel := context.WithTimeout(n.Runner.Context, 10*time.Second)
	err = n.Connect(ctx)
	cancel()
	if err != nil {
		glog.Exitln(err)
	}
	hmiCh, ctlCh, err := n.Channels()
	if err != nil {
		glog.Exitln(err)
	}
	if conf.Simulate {
		if _, err = n.StartControl(ctlCh); err != nil {
			glog.Exitln(err)
		}
	}
	n.StartHMI(hmiCh, !noShell, flag.Args()...)
	if err = n.Wait(); err != nil {
		glog.Exitln(err)
	}
}
