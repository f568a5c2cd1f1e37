package transfer

import (
	"context"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/SasaKuruppuarachchi/tcp-communication/internal/domain"
	"github.com/SasaKuruppuarachchi/tcp-communication/internal/infra/config"
	"github.com/SasaKuruppuarachchi/tcp-communication/internal/usecase/eventbus"
)

// Receiver fetches one file from a sender and writes it into the configured
// destination directory.
type Receiver struct {
	cfg    config.TCPClientConfig
	probe  ActivityProbe
	logger *slog.Logger
	bus    domain.EventBus // optional
}

// NewReceiver creates a receiver gated by the same activity probe as the
// sender.
func NewReceiver(cfg config.TCPClientConfig, probe ActivityProbe, logger *slog.Logger, bus domain.EventBus) *Receiver {
	return &Receiver{cfg: cfg, probe: probe, logger: logger, bus: bus}
}

// Receive connects to the sender, completes the handshake, and streams the
// payload to <destination>/<fileName>. It returns the written path.
//
// The declared size only bounds the read loop: a peer that closes early
// produces a short file, not an error. The size is never validated after the
// fact.
func (r *Receiver) Receive(ctx context.Context) (string, error) {
	if r.probe != nil && r.probe() {
		return "", domain.NewDomainError("Receiver.Receive", domain.ErrTransferDisabled, "")
	}

	if err := os.MkdirAll(r.cfg.DestinationPath, 0o755); err != nil {
		return "", domain.WrapOp("Receiver.Receive", err)
	}

	address := net.JoinHostPort(r.cfg.Host, strconv.Itoa(r.cfg.Port))
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return "", domain.NewDomainError("Receiver.Receive", domain.ErrTransfer, err.Error())
	}
	defer conn.Close()

	line := make([]byte, metadataBufferSize)
	n, err := conn.Read(line)
	if err != nil {
		return "", domain.NewDomainError("Receiver.Receive", domain.ErrTransfer, err.Error())
	}
	metadata := string(line[:n])
	if strings.HasPrefix(metadata, errPrefix) {
		return "", domain.NewDomainError("Receiver.Receive", domain.ErrTransfer, metadata)
	}
	meta, err := decodeMetadata(metadata)
	if err != nil {
		return "", err
	}

	if _, err := conn.Write([]byte(ReadyToken)); err != nil {
		return "", domain.NewDomainError("Receiver.Receive", domain.ErrTransfer, err.Error())
	}

	outputPath := filepath.Join(r.cfg.DestinationPath, meta.FileName)
	file, err := os.Create(outputPath)
	if err != nil {
		return "", domain.WrapOp("Receiver.Receive", err)
	}
	defer file.Close()

	var received int64
	buf := make([]byte, ChunkSize)
	for received < meta.FileSize {
		n, err := conn.Read(buf)
		if n > 0 {
			if _, werr := file.Write(buf[:n]); werr != nil {
				return "", domain.WrapOp("Receiver.Receive", werr)
			}
			received += int64(n)
		}
		if err != nil {
			// Early close is a short read, not a failure.
			break
		}
	}

	r.logger.Info("file received", "file", meta.FileName, "bytes", received, "path", outputPath)
	if r.bus != nil {
		r.bus.Publish(ctx, eventbus.NewEvent(domain.EventTransferReceived, meta))
	}
	return outputPath, nil
}
