package hmi

import (
	"context"
	"fmt"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/ecu.go/pkg/ecu"
	"github.com/robotalks/ecu.go/pkg/framework"
)

const relayKey = "$relay"

// Shell is the ishell backed operator console.
type Shell struct {
	Shell *ishell.Shell
	Relay *Relay
	// Args are processed as a single command instead of an interactive
	// session when not empty.
	Args []string
}

// NewShell creates a Shell.
func NewShell(relay *Relay) *Shell {
	s := &Shell{Shell: ishell.New(), Relay: relay}
	s.Shell.Set(relayKey, relay)
	s.Shell.SetPrompt("ecu > ")
	for _, cmd := range []ecu.Command{ecu.Open, ecu.Close, ecu.Stop} {
		s.Shell.AddCmd(commandCmd(cmd))
	}
	s.Shell.AddCmd(&SendCmd)
	return s
}

// Name implements framework.Named.
func (s *Shell) Name() string {
	return "shell"
}

// Run implements framework.Runnable.
func (s *Shell) Run(ctx context.Context) error {
	return framework.RunWithContextCancel(ctx, s.Shell.Close, func() error {
		if len(s.Args) > 0 {
			return s.Shell.Process(s.Args...)
		}
		s.Shell.Run()
		return nil
	})
}

func relayFrom(c *ishell.Context) *Relay {
	return c.Get(relayKey).(*Relay)
}

func commandCmd(cmd ecu.Command) *ishell.Cmd {
	name := strings.ToLower(cmd.String())
	return &ishell.Cmd{
		Name:    name,
		Aliases: []string{name[:1]},
		Help:    fmt.Sprintf("rotate the motor %s", cmd.State()),
		Func: func(c *ishell.Context) {
			if err := relayFrom(c).Do(context.Background(), cmd); err != nil {
				c.Err(err)
				return
			}
			c.Println(ecu.ReplyACK)
		},
	}
}

// SendCmd sends raw text and prints the reply.
var SendCmd = ishell.Cmd{
	Name: "send",
	Help: "TEXT",
	Func: func(c *ishell.Context) {
		if len(c.Args) < 1 {
			c.Err(fmt.Errorf("TEXT required"))
			return
		}
		reply, err := relayFrom(c).SendRaw(context.Background(), strings.Join(c.Args, " "))
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(reply)
	},
}
