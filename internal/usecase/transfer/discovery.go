package transfer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"

	"github.com/SasaKuruppuarachchi/tcp-communication/internal/domain"
)

const (
	mdnsServiceType = "_agilogger._tcp"
	mdnsDomain      = "local."

	// DefaultScanTimeout bounds a discovery browse.
	DefaultScanTimeout = 5 * time.Second
)

// Endpoint is a sender discovered on the local network.
type Endpoint struct {
	Name string
	Host string
	Port int
}

// Address renders the endpoint as host:port for the receiver configuration.
func (e Endpoint) Address() string {
	return fmt.Sprintf("%s:%d", e.Host, e.Port)
}

// Discovery advertises and finds senders via mDNS/DNS-SD, so a receiver on
// the same network can locate the sender without exchanging addresses by
// hand.
type Discovery struct {
	logger *slog.Logger
}

// NewDiscovery creates a Discovery.
func NewDiscovery(logger *slog.Logger) *Discovery {
	return &Discovery{logger: logger}
}

// Advertise registers a sender instance on the local network. It blocks until
// ctx is cancelled; run it in a goroutine beside the sender's accept loop.
func (d *Discovery) Advertise(ctx context.Context, instance string, port int) error {
	server, err := zeroconf.Register(instance, mdnsServiceType, mdnsDomain, port,
		[]string{"role=sender"}, nil)
	if err != nil {
		return domain.NewDomainError("Discovery.Advertise", domain.ErrTransfer, err.Error())
	}

	d.logger.Info("mdns advertising", "instance", instance, "port", port)
	<-ctx.Done()
	server.Shutdown()
	return nil
}

// Scan browses for advertised senders for the given timeout and returns
// every endpoint seen.
func (d *Discovery) Scan(ctx context.Context, timeout time.Duration) ([]Endpoint, error) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, domain.NewDomainError("Discovery.Scan", domain.ErrTransfer, err.Error())
	}

	entries := make(chan *zeroconf.ServiceEntry)
	var mu sync.Mutex
	var endpoints []Endpoint
	var wg sync.WaitGroup

	scanCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for entry := range entries {
			endpoint := entryToEndpoint(entry)
			if endpoint.Host == "" {
				continue
			}
			mu.Lock()
			endpoints = append(endpoints, endpoint)
			mu.Unlock()
			d.logger.Debug("mdns discovered sender", "instance", endpoint.Name, "address", endpoint.Address())
		}
	}()

	if err := resolver.Browse(scanCtx, mdnsServiceType, mdnsDomain, entries); err != nil {
		cancel()
		wg.Wait()
		return nil, domain.NewDomainError("Discovery.Scan", domain.ErrTransfer, err.Error())
	}

	<-scanCtx.Done()
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	result := make([]Endpoint, len(endpoints))
	copy(result, endpoints)
	return result, nil
}

func entryToEndpoint(entry *zeroconf.ServiceEntry) Endpoint {
	endpoint := Endpoint{Name: entry.ServiceRecord.Instance, Port: entry.Port}
	if len(entry.AddrIPv4) > 0 {
		endpoint.Host = entry.AddrIPv4[0].String()
	} else if len(entry.AddrIPv6) > 0 {
		endpoint.Host = fmt.Sprintf("[%s]", entry.AddrIPv6[0])
	}
	return endpoint
}
