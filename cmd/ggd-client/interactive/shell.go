// Package interactive provides the interactive command-line interface
// for ggd-client.
package interactive

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/ggd-protocol/ggd-go/pkg/broker"
	"github.com/ggd-protocol/ggd-go/pkg/discovery"
)

// commandTimeout bounds one shell command.
const commandTimeout = 60 * time.Second

// Client is the part of greengrass.Client the shell drives.
type Client interface {
	Publish(ctx context.Context, topic, payload string) error
	Subscribe(ctx context.Context, topic string, handler broker.Handler) error
	Unsubscribe(ctx context.Context, topics ...string) error
	Subscriptions() []string
	DiscoverAndConnect(ctx context.Context) error
	ConnectToCloud(ctx context.Context) error
	Result() *discovery.Result
	IsConnected() bool
	Endpoint() string
	Target() string
	SessionID() string
}

// Shell handles interactive mode for ggd-client.
type Shell struct {
	client Client
	rl     *readline.Instance
	out    io.Writer
}

// New creates a readline-backed shell.
func New(client Client) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "ggd> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &Shell{client: client, rl: rl, out: rl.Stdout()}, nil
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (s *Shell) Stdout() io.Writer {
	return s.out
}

// Run reads commands until quit, EOF or ctx is done.
func (s *Shell) Run(ctx context.Context, cancel context.CancelFunc) {
	defer s.rl.Close()

	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.out, "Exiting...")
			cancel()
			return
		}

		if !s.Execute(ctx, line) {
			cancel()
			return
		}
	}
}

// Execute runs one command line. It returns false when the shell should exit.
func (s *Shell) Execute(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return true
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	switch cmd {
	case "help", "?":
		s.printHelp()

	case "publish", "pub", "p":
		s.cmdPublish(ctx, args)

	case "subscribe", "sub", "s":
		s.cmdSubscribe(ctx, args)

	case "unsubscribe", "unsub":
		s.cmdUnsubscribe(ctx, args)

	case "status", "st":
		s.cmdStatus()

	case "rediscover", "discover":
		s.cmdRediscover(ctx)

	case "cloud":
		s.cmdCloud(ctx)

	case "quit", "exit", "q":
		fmt.Fprintln(s.out, "Exiting...")
		return false

	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return true
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.out, `
ggd-client Commands:
  Messaging:
    publish <topic> <message...> - Publish a text message
    subscribe <topic>            - Print messages received on topic
    unsubscribe <topic>          - Stop printing messages for topic

  Connection:
    status                       - Show discovery and connection state
    rediscover                   - Fetch a fresh document and reconnect to the core
    cloud                        - Connect to the cloud broker instead

  General:
    help                         - Show this help
    quit                         - Exit`)
}

func (s *Shell) cmdPublish(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.out, "Usage: publish <topic> <message...>")
		return
	}
	topic, payload := args[0], strings.Join(args[1:], " ")
	if err := s.client.Publish(ctx, topic, payload); err != nil {
		fmt.Fprintf(s.out, "Publish failed: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "Published %d bytes to %s\n", len(payload), topic)
}

func (s *Shell) cmdSubscribe(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: subscribe <topic>")
		return
	}
	topic := args[0]
	err := s.client.Subscribe(ctx, topic, func(t string, payload []byte) {
		fmt.Fprintf(s.out, "[MSG] %s: %s\n", t, payload)
	})
	if err != nil {
		fmt.Fprintf(s.out, "Subscribe failed: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "Subscribed to %s\n", topic)
}

func (s *Shell) cmdUnsubscribe(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: unsubscribe <topic>")
		return
	}
	if err := s.client.Unsubscribe(ctx, args[0]); err != nil {
		fmt.Fprintf(s.out, "Unsubscribe failed: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "Unsubscribed from %s\n", args[0])
}

func (s *Shell) cmdStatus() {
	fmt.Fprintf(s.out, "Session:    %s\n", s.client.SessionID())
	if r := s.client.Result(); r != nil {
		fmt.Fprintf(s.out, "Discovered: %s (interface %d, CA %d bytes)\n", r.Address(), r.Interface, r.CertificateLength)
	} else {
		fmt.Fprintln(s.out, "Discovered: -")
	}
	if s.client.IsConnected() {
		fmt.Fprintf(s.out, "Connected:  %s %s\n", s.client.Target(), s.client.Endpoint())
	} else {
		fmt.Fprintln(s.out, "Connected:  no")
	}

	subs := s.client.Subscriptions()
	sort.Strings(subs)
	fmt.Fprintf(s.out, "Subscriptions: %d\n", len(subs))
	for _, t := range subs {
		fmt.Fprintf(s.out, "  %s\n", t)
	}
}

func (s *Shell) cmdRediscover(ctx context.Context) {
	fmt.Fprintln(s.out, "Discovering...")
	if err := s.client.DiscoverAndConnect(ctx); err != nil {
		fmt.Fprintf(s.out, "Rediscovery failed: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "Connected to core %s\n", s.client.Endpoint())
}

func (s *Shell) cmdCloud(ctx context.Context) {
	if err := s.client.ConnectToCloud(ctx); err != nil {
		fmt.Fprintf(s.out, "Cloud connect failed: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "Connected to cloud %s\n", s.client.Endpoint())
}
