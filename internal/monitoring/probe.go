// internal/monitoring/probe.go - ICMP and TCP probes
package monitoring

import (
	"context"
	"net"
	"runtime"
	"strconv"
	"time"

	probing "github.com/prometheus-community/pro-bing"

	"netwatch/internal/database"
)

// PingResult is the outcome of a single reachability probe. Routine
// unreachability is expressed through the Outcome, never as an error.
type PingResult struct {
	Outcome        database.Outcome
	ResponseTimeMS *float64
	Message        string
}

// Prober executes a single reachability or port test against one address.
type Prober interface {
	Ping(ctx context.Context, address string) PingResult
	Port(ctx context.Context, address string, port int) database.Outcome
}

// NetProber probes real targets: one ICMP echo per ping, one TCP connect
// per port test. Both carry their own bounded timeout so a dead target
// cannot stall a check cycle.
type NetProber struct {
	PingTimeout time.Duration
	PortTimeout time.Duration
}

func NewNetProber(pingTimeout, portTimeout time.Duration) *NetProber {
	if pingTimeout <= 0 {
		pingTimeout = 3 * time.Second
	}
	if portTimeout <= 0 {
		portTimeout = 1 * time.Second
	}
	return &NetProber{
		PingTimeout: pingTimeout,
		PortTimeout: portTimeout,
	}
}

func (p *NetProber) Ping(ctx context.Context, address string) PingResult {
	pinger, err := probing.NewPinger(address)
	if err != nil {
		return PingResult{
			Outcome: database.OutcomeCritical,
			Message: err.Error(),
		}
	}

	pinger.Count = 1
	pinger.Timeout = p.PingTimeout
	// Unprivileged UDP-socket pings are not available on Windows.
	pinger.SetPrivileged(runtime.GOOS == "windows")

	ctx, cancel := context.WithTimeout(ctx, p.PingTimeout)
	defer cancel()

	if err := pinger.RunWithContext(ctx); err != nil {
		return PingResult{
			Outcome: database.OutcomeCritical,
			Message: err.Error(),
		}
	}

	stats := pinger.Statistics()
	if stats.PacketsRecv == 0 {
		return PingResult{
			Outcome: database.OutcomeCritical,
			Message: "no ICMP reply",
		}
	}

	rtt := float64(stats.AvgRtt.Microseconds()) / 1000.0
	return PingResult{
		Outcome:        database.OutcomeOK,
		ResponseTimeMS: &rtt,
	}
}

// Port attempts a TCP connect and closes the connection immediately.
// Every failure mode (refused, filtered, timeout) collapses to CRITICAL.
func (p *NetProber) Port(ctx context.Context, address string, port int) database.Outcome {
	dialer := net.Dialer{Timeout: p.PortTimeout}

	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(address, strconv.Itoa(port)))
	if err != nil {
		return database.OutcomeCritical
	}
	conn.Close()
	return database.OutcomeOK
}
