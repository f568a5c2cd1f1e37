// Package transfer implements the point-to-point bag transfer protocol:
// a plain-text metadata handshake ("<name>:<size>", answered by "READY")
// followed by the raw payload in fixed-size chunks. The sender is a
// long-lived listener serving one connection at a time; the receiver is a
// single-shot client. Both roles refuse to run while a recording session is
// active, since the recorder owns the disk.
package transfer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/SasaKuruppuarachchi/tcp-communication/internal/domain"
)

// ChunkSize is the payload chunk size used by both roles.
const ChunkSize = 32 * 1024

// metadataBufferSize bounds the first read on a connection; the handshake
// line is far smaller in practice.
const metadataBufferSize = 1024

// ReadyToken is the acknowledgment the receiver sends after the handshake.
const ReadyToken = "READY"

// errPrefix marks a handshake line that carries an error instead of
// metadata.
const errPrefix = "ERROR"

// ActivityProbe reports whether a recording session is currently active.
// The recorder's Manager.IsRecording satisfies it.
type ActivityProbe func() bool

// encodeMetadata renders the handshake line for a file.
func encodeMetadata(meta domain.TransferMetadata) string {
	return fmt.Sprintf("%s:%d", meta.FileName, meta.FileSize)
}

// decodeMetadata parses a handshake line back into metadata.
func decodeMetadata(line string) (domain.TransferMetadata, error) {
	idx := strings.LastIndex(line, ":")
	if idx <= 0 || idx == len(line)-1 {
		return domain.TransferMetadata{}, domain.NewDomainError("Transfer.decodeMetadata",
			domain.ErrTransfer, fmt.Sprintf("malformed metadata %q", line))
	}
	size, err := strconv.ParseInt(line[idx+1:], 10, 64)
	if err != nil || size < 0 {
		return domain.TransferMetadata{}, domain.NewDomainError("Transfer.decodeMetadata",
			domain.ErrTransfer, fmt.Sprintf("malformed file size in %q", line))
	}
	return domain.TransferMetadata{FileName: line[:idx], FileSize: size}, nil
}
