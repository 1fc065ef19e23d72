// Package node assembles the HMI and control nodes from a config.
package node

import (
	"context"
	"io"

	"github.com/golang/glog"

	"github.com/robotalks/ecu.go/pkg/ecu/config"
	"github.com/robotalks/ecu.go/pkg/ecu/control"
	"github.com/robotalks/ecu.go/pkg/ecu/events"
	"github.com/robotalks/ecu.go/pkg/ecu/hmi"
	"github.com/robotalks/ecu.go/pkg/framework"
	"github.com/robotalks/ecu.go/pkg/mqtt"
	"github.com/robotalks/ecu.go/pkg/uart"
)

// Node runs the loops of one process.
type Node struct {
	Config *config.Config
	Runner *framework.Runner
	// Queue is nil without a broker.
	Queue *mqtt.Queue

	closers []io.Closer
}

// New creates a Node which stops on SIGINT or SIGTERM.
func New(conf *config.Config) *Node {
	return &Node{Config: conf, Runner: framework.NewRunner().HandleSignals()}
}

// Connect connects the MQTT broker if configured.
func (n *Node) Connect(ctx context.Context) error {
	q, err := n.Config.ConnectQueue(ctx)
	if err != nil {
		return err
	}
	if q != nil {
		n.Queue = q
		n.closers = append(n.closers, q)
		glog.Infof("MQTT bridge on %s as %s", n.Config.MQTTBrokerURL, n.Config.NodeID)
	}
	return nil
}

// Channels opens the channels the node talks on. Without simulation,
// both are the same serial port.
func (n *Node) Channels() (hmiCh, ctlCh *uart.Channel, err error) {
	if n.Config.Simulate {
		hmiCh, ctlCh, err = n.Config.OpenSimChannels()
		if err == nil {
			n.closers = append(n.closers, hmiCh, ctlCh)
		}
		return
	}
	ch, err := n.Config.OpenChannel()
	if err != nil {
		return nil, nil, err
	}
	n.closers = append(n.closers, ch)
	return ch, ch, nil
}

// StartControl initializes the motor and starts the executor on ch.
func (n *Node) StartControl(ch *uart.Channel) (*control.Executor, error) {
	exec := control.NewExecutor(n.Config.NewMessenger(ch), n.Config.NewMotor())
	exec.Node = n.Config.NodeID
	if n.Queue != nil {
		exec.Events = &events.Publisher{Queue: n.Queue, Node: n.Config.NodeID}
	}
	if err := exec.Init(); err != nil {
		return nil, err
	}
	n.Runner.Go(exec)
	return exec, nil
}

// StartHMI starts the relay on ch. The shell is started when shell is
// true, and the node stops when the shell exits.
func (n *Node) StartHMI(ch *uart.Channel, shell bool, args ...string) *hmi.Relay {
	relay := hmi.NewRelay(n.Config.NewMessenger(ch))
	relay.Timeout = n.Config.Timeout
	relay.Retries = n.Config.Retries
	if n.Queue != nil {
		n.Runner.Go(&hmi.Bridge{Queue: n.Queue, Relay: relay, Node: n.Config.NodeID})
	}
	if shell {
		sh := hmi.NewShell(relay)
		sh.Args = args
		n.Runner.Go(framework.NamedRun(sh.Name(), framework.RunFunc(func(ctx context.Context) error {
			defer n.Runner.Stop()
			return sh.Run(ctx)
		})))
	}
	return relay
}

// Wait waits for all loops and releases the node.
func (n *Node) Wait() error {
	err := n.Runner.Wait()
	for i := len(n.closers) - 1; i >= 0; i-- {
		n.closers[i].Close()
	}
	return err
}
