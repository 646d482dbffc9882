package types

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/Wa4h1h/go-xftp/pkg/utils"
)

// Data carries one block of file content plus a trailing CRC-8
// byte over the payload. The checksum byte is an extension over
// plain TFTP and is verified on unmarshal.
type Data struct {
	Payload  []byte
	BlockNum uint16
	Opcode   OpCode
}

func (d *Data) MarshalBinary() ([]byte, error) {
	if len(d.Payload) > MaxPayloadSize {
		return nil, utils.ErrDataPayloadTooBig
	}

	b := new(bytes.Buffer)
	dataLen := 2 + 2 + len(d.Payload) + 1
	b.Grow(dataLen)

	if err := binary.Write(b, binary.BigEndian, &d.Opcode); err != nil {
		return nil, fmt.Errorf("error while writing opcode: %w", err)
	}

	if err := binary.Write(b, binary.BigEndian, &d.BlockNum); err != nil {
		return nil, fmt.Errorf("error while writing block#: %w", err)
	}

	if _, err := b.Write(d.Payload); err != nil {
		return nil, fmt.Errorf("error while writing payload: %w", err)
	}

	if err := b.WriteByte(Checksum(d.Payload)); err != nil {
		return nil, fmt.Errorf("error while writing checksum byte: %w", err)
	}

	return b.Bytes(), nil
}

func (d *Data) UnmarshalBinary(data []byte) error {
	// minimal frame: opcode, block#, checksum byte
	if len(data) < 5 {
		return utils.ErrMalformedPacket
	}

	b := bytes.NewBuffer(data)

	if err := binary.Read(b, binary.BigEndian, &d.Opcode); err != nil {
		return fmt.Errorf("error while reading opcode: %w", err)
	}

	if d.Opcode != OpCodeDATA {
		return utils.ErrWrongOpCode
	}

	if err := binary.Read(b, binary.BigEndian, &d.BlockNum); err != nil {
		return fmt.Errorf("error while reading block#: %w", err)
	}

	d.Payload = data[4 : len(data)-1]

	if Checksum(d.Payload) != data[len(data)-1] {
		return utils.ErrChecksumMismatch
	}

	return nil
}
