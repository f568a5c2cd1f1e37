package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/time/rate"

	"github.com/SasaKuruppuarachchi/tcp-communication/internal/domain"
	"github.com/SasaKuruppuarachchi/tcp-communication/internal/infra/config"
	"github.com/SasaKuruppuarachchi/tcp-communication/internal/usecase/eventbus"
)

// Sender serves the configured source file to connecting receivers. It is a
// long-lived service: the listener stays open across connections, and
// connections are handled one at a time.
type Sender struct {
	cfg    config.TCPServerConfig
	probe  ActivityProbe
	logger *slog.Logger
	bus    domain.EventBus // optional

	listener net.Listener
	limiter  *rate.Limiter // nil when unlimited
}

// NewSender creates a sender. The probe gates every Serve call: transfers are
// refused while a recording session is active.
func NewSender(cfg config.TCPServerConfig, probe ActivityProbe, logger *slog.Logger, bus domain.EventBus) *Sender {
	s := &Sender{cfg: cfg, probe: probe, logger: logger, bus: bus}
	if cfg.LimitMbps > 0 {
		bytesPerSecond := cfg.LimitMbps * 1_000_000 / 8
		s.limiter = rate.NewLimiter(rate.Limit(bytesPerSecond), ChunkSize)
	}
	return s
}

// Serve binds the listening socket and serves connections until ctx is
// cancelled. It fails with TransferDisabledError before any socket is opened
// when a recording session is active.
func (s *Sender) Serve(ctx context.Context) error {
	if s.probe != nil && s.probe() {
		return domain.NewDomainError("Sender.Serve", domain.ErrTransferDisabled, "")
	}
	if s.cfg.FilePath == "" {
		return domain.NewDomainError("Sender.Serve", domain.ErrTransfer, "no source file configured")
	}

	address := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return domain.NewDomainError("Sender.Serve", domain.ErrTransfer, err.Error())
	}
	s.listener = listener
	defer listener.Close()

	// Unblock Accept when the caller gives up.
	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	s.logger.Info("sender listening", "address", listener.Addr().String(), "file", s.cfg.FilePath)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return domain.NewDomainError("Sender.Serve", domain.ErrTransfer, err.Error())
		}
		s.handle(ctx, conn)
	}
}

// Addr returns the bound listener address, or nil before Serve has bound it.
// Useful when the configured port is 0.
func (s *Sender) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// handle runs one connection through the handshake and, on acknowledgment,
// streams the file. Errors end the connection but never the accept loop.
func (s *Sender) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	peer := conn.RemoteAddr().String()
	s.logger.Info("receiver connected", "peer", peer)

	info, err := os.Stat(s.cfg.FilePath)
	if err != nil {
		// The receiver learns about the missing file through the protocol;
		// the sender keeps listening for a retry after the operator fixes
		// the path.
		fmt.Fprintf(conn, "%s: File not found: %s", errPrefix, s.cfg.FilePath)
		s.logger.Warn("source file missing", "file", s.cfg.FilePath)
		return
	}

	meta := domain.TransferMetadata{
		FileName: filepath.Base(s.cfg.FilePath),
		FileSize: info.Size(),
	}
	if _, err := conn.Write([]byte(encodeMetadata(meta))); err != nil {
		s.logger.Warn("handshake write failed", "peer", peer, "error", err)
		return
	}

	ack := make([]byte, metadataBufferSize)
	n, err := conn.Read(ack)
	if err != nil || string(ack[:n]) != ReadyToken {
		s.logger.Warn("receiver not ready, disconnecting", "peer", peer)
		return
	}

	if err := s.stream(ctx, conn); err != nil {
		s.logger.Warn("transfer aborted", "peer", peer, "error", err)
		return
	}

	s.logger.Info("file sent", "file", meta.FileName, "bytes", meta.FileSize, "peer", peer)
	if s.bus != nil {
		s.bus.Publish(ctx, eventbus.NewEvent(domain.EventTransferSent, meta))
	}
}

func (s *Sender) stream(ctx context.Context, conn net.Conn) error {
	file, err := os.Open(s.cfg.FilePath)
	if err != nil {
		return err
	}
	defer file.Close()

	buf := make([]byte, ChunkSize)
	for {
		n, err := file.Read(buf)
		if n > 0 {
			if s.limiter != nil {
				if err := s.limiter.WaitN(ctx, n); err != nil {
					return err
				}
			}
			if _, err := conn.Write(buf[:n]); err != nil {
				return err
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}
