// internal/monitoring/probe_test.go
package monitoring

import (
	"context"
	"net"
	"testing"
	"time"

	"netwatch/internal/database"
)

func TestPortOpen(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	defer listener.Close()

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	port := listener.Addr().(*net.TCPAddr).Port
	prober := NewNetProber(time.Second, time.Second)

	if outcome := prober.Port(context.Background(), "127.0.0.1", port); outcome != database.OutcomeOK {
		t.Errorf("open port should be OK, got %s", outcome)
	}
}

func TestPortClosed(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()

	prober := NewNetProber(time.Second, time.Second)
	if outcome := prober.Port(context.Background(), "127.0.0.1", port); outcome != database.OutcomeCritical {
		t.Errorf("closed port should be CRITICAL, got %s", outcome)
	}
}

func TestPingUnresolvableHost(t *testing.T) {
	prober := NewNetProber(time.Second, time.Second)
	res := prober.Ping(context.Background(), "netwatch-does-not-exist.invalid")
	if res.Outcome != database.OutcomeCritical {
		t.Errorf("unresolvable host should be CRITICAL, got %s", res.Outcome)
	}
	if res.ResponseTimeMS != nil {
		t.Error("failed ping should carry no response time")
	}
}
