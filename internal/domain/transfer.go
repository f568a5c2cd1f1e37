package domain

// TransferMetadata is the wire-level descriptor exchanged at the start of a
// file transfer: a bare file name and its size in bytes. It is encoded as the
// single ASCII line "<name>:<size>" and consumed once by the receiver to pick
// a destination name and bound the read loop.
type TransferMetadata struct {
	FileName string
	FileSize int64
}
