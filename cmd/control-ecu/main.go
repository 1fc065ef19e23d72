package main

import (
	"context"
	"flag"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/ecu.go/pkg/ecu/config"
	"github.com/robotalks/ecu.go/pkg/ecu/node"
)

func init() {
	config.SetupFlags()
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
	if _, err = n.StartControl(ctlCh); err != nil {
		glog.Exitln(err)
	}
	if conf.Simulate {
		// commands come from the MQTT bridge, if any
		n.StartHMI(hmiCh, false)
	}
	glog.Infof("control node %s running", conf.NodeID)
	if err = n.Wait(); err != nil {
		glog.Exitln(err)
	}
}
