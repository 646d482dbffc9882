package types

type OpCode uint16

const (
	OpCodeRRQ OpCode = iota + 1
	OpCodeWRQ
	OpCodeDATA
	OpCodeACK
	OpCodeError
	OpCodeDelete
)

type ErrCode uint16

const (
	ErrNotDefined ErrCode = iota
	ErrFileNotFound
	ErrCannotCreate
	ErrDiskFull
	ErrIllegalOp
	ErrUnknownTransferId
)

// Delete replies reuse the error frame as a status reply:
// the code field is 0 on success, 1 on failure.
const (
	DeleteOk     ErrCode = 0
	DeleteFailed ErrCode = 1
)

const (
	MaxBlocks      = 65535
	MaxPayloadSize = 512
	// 2 opcode + 2 block# + 512 payload + 1 checksum
	DatagramSize = 517
)

// PingFilename is the sentinel RRQ name answered with a single
// empty data block instead of a file transfer.
const PingFilename = "__ping__"

const (
	DefaultControlPort  = "6969"
	DefaultNumTries     = 3
	DefaultReadTimeout  = 3
	DefaultWriteTimeout = 3
)
