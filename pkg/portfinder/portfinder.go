// Package portfinder finds a free TCP port for the dev server.
//
// Candidates are probed strictly one at a time in a fixed order: the
// preferred port, then the explicit candidate list, then the range from its
// lower bound upward. A probe binds a listener and closes it immediately.
package portfinder

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// DefaultPort is probed first when a request leaves Port unset.
const DefaultPort = 3000

const maxPort = 65535

// ErrExhausted matches every *ExhaustedError.
var ErrExhausted = errors.New("no free port")

// Range is an inclusive port range.
type Range struct {
	From int
	To   int
}

func (r Range) String() string {
	return fmt.Sprintf("%d-%d", r.From, r.To)
}

// Request describes which ports to try.
type Request struct {
	// Port is probed first. Zero means DefaultPort.
	Port int
	// Ports are probed in order after Port.
	Ports []int
	// Range is scanned upward after Ports. Nil skips the scan.
	Range *Range
	// Host is the address the probe listens on. Empty means all interfaces.
	Host string
}

// ExhaustedError reports that every examined port was taken.
type ExhaustedError struct {
	Port  int
	Ports []int
	Range *Range
}

func (e *ExhaustedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "no free port found (tried %d", e.Port)
	if len(e.Ports) > 0 {
		parts := make([]string, len(e.Ports))
		for i, p := range e.Ports {
			parts[i] = strconv.Itoa(p)
		}
		fmt.Fprintf(&b, ", ports %s", strings.Join(parts, ", "))
	}
	if e.Range != nil {
		fmt.Fprintf(&b, ", range %s", e.Range)
	}
	b.WriteString(")")
	return b.String()
}

// Is lets errors.Is match any ExhaustedError against ErrExhausted.
func (e *ExhaustedError) Is(target error) bool {
	return target == ErrExhausted
}

// Prober checks whether a port can be listened on.
type Prober interface {
	Probe(ctx context.Context, host string, port int) bool
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(ctx context.Context, host string, port int) bool

// Probe calls f.
func (f ProberFunc) Probe(ctx context.Context, host string, port int) bool {
	return f(ctx, host, port)
}

// ListenProber probes by binding a TCP listener and closing it.
type ListenProber struct{}

// Probe reports whether a listener could be bound on host:port.
func (ListenProber) Probe(ctx context.Context, host string, port int) bool {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return false
	}
	_ = ln.Close()
	return true
}

type config struct {
	prober Prober
}

// Option configures Allocate.
type Option func(*config)

// WithProber replaces the listening prober.
func WithProber(p Prober) Option {
	return func(c *config) {
		c.prober = p
	}
}

// Allocate returns the first free port of req. Each port is probed at most
// once. When nothing is free it returns an *ExhaustedError.
func Allocate(ctx context.Context, req Request, opts ...Option) (int, error) {
	cfg := config{prober: ListenProber{}}
	for _, o := range opts {
		o(&cfg)
	}

	if req.Range != nil && req.Range.From > req.Range.To {
		return 0, fmt.Errorf("invalid port range %s", req.Range)
	}

	preferred := req.Port
	if preferred == 0 {
		preferred = DefaultPort
	}

	seen := make(map[int]bool)
	try := func(port int) (bool, error) {
		if port < 1 || port > maxPort || seen[port] {
			return false, nil
		}
		seen[port] = true
		if err := ctx.Err(); err != nil {
			return false, err
		}
		return cfg.prober.Probe(ctx, req.Host, port), nil
	}

	candidates := append([]int{preferred}, req.Ports...)
	for _, port := range candidates {
		ok, err := try(port)
		if err != nil {
			return 0, err
		}
		if ok {
			return port, nil
		}
	}

	if req.Range != nil {
		for port := req.Range.From; port <= req.Range.To; port++ {
			ok, err := try(port)
			if err != nil {
				return 0, err
			}
			if ok {
				return port, nil
			}
		}
	}

	return 0, &ExhaustedError{Port: preferred, Ports: append([]int(nil), req.Ports...), Range: req.Range}
}
