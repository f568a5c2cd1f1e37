package autostart

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"

	"github.com/SasaKuruppuarachchi/tcp-communication/internal/domain"
)

// armingStateArmed is the vehicle status value that counts as armed.
const armingStateArmed = 2

// ArmedSource produces the armed-state feed a Monitor consumes. The channel
// closes when the source shuts down.
type ArmedSource interface {
	Watch(ctx context.Context) (<-chan domain.ArmedSample, error)
}

// statusDatagram is the wire form of one vehicle status sample, as bridged
// from the flight controller onto UDP.
type statusDatagram struct {
	ArmingState int `json:"arming_state"`
}

// UDPSource listens for JSON vehicle-status datagrams on a UDP port.
type UDPSource struct {
	Address string
	Logger  *slog.Logger
}

// Watch opens the socket and decodes datagrams onto the returned channel
// until ctx is cancelled. Undecodable datagrams are logged and skipped.
func (s *UDPSource) Watch(ctx context.Context) (<-chan domain.ArmedSample, error) {
	conn, err := net.ListenPacket("udp", s.Address)
	if err != nil {
		return nil, domain.NewDomainError("UDPSource.Watch", domain.ErrInvalidConfig, err.Error())
	}

	out := make(chan domain.ArmedSample)
	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	go func() {
		defer close(out)
		defer conn.Close()
		buf := make([]byte, 512)
		for {
			n, _, err := conn.ReadFrom(buf)
			if err != nil {
				return
			}
			var msg statusDatagram
			if err := json.Unmarshal(buf[:n], &msg); err != nil {
				s.Logger.Warn("discarding undecodable status datagram", "error", err)
				continue
			}
			sample := domain.ArmedSample{
				Armed:       msg.ArmingState == armingStateArmed,
				ArmingState: msg.ArmingState,
			}
			select {
			case out <- sample:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
