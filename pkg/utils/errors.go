package utils

import "errors"

var (
	ErrStartingServer        = errors.New("error: starting the udp server")
	ErrWrongOpCode           = errors.New("error: invalid operation code")
	ErrMalformedPacket       = errors.New("error: malformed packet")
	ErrChecksumMismatch      = errors.New("error: payload checksum mismatch")
	ErrDataPayloadTooBig     = errors.New("error: payload exceeds 512 bytes")
	ErrPacketMarshall        = errors.New("error: can not marshall packet")
	ErrRetriesExhausted      = errors.New("error: retries exhausted without a valid reply")
	ErrFileTooLarge          = errors.New("error: file too large to be transferred")
	ErrCanNotSetWriteTimeout = errors.New("error: can not set write timeout")
	ErrCanNotSetReadTimeout  = errors.New("error: can not set read timeout")
)
