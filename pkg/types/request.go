package types

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/Wa4h1h/go-xftp/pkg/utils"
)

// Request is the frame shared by RRQ, WRQ and DELETE:
// a 2-byte opcode followed by a null terminated filename.
type Request struct {
	Filename string
	Opcode   OpCode
}

func (r *Request) MarshalBinary() ([]byte, error) {
	b := new(bytes.Buffer)
	rqLen := 2 + len(r.Filename) + 1

	b.Grow(rqLen)

	if err := binary.Write(b, binary.BigEndian, &r.Opcode); err != nil {
		return nil, fmt.Errorf("error while writing opcode: %w", err)
	}

	if _, err := b.WriteString(r.Filename); err != nil {
		return nil, fmt.Errorf("error while writing filename: %w", err)
	}

	if err := b.WriteByte(0); err != nil {
		return nil, fmt.Errorf("error while writing null byte after filename: %w", err)
	}

	return b.Bytes(), nil
}

func (r *Request) UnmarshalBinary(data []byte) error {
	var err error

	rd := bytes.NewBuffer(data)

	err = binary.Read(rd, binary.BigEndian, &r.Opcode)
	if err != nil {
		return fmt.Errorf("error while decoding opcode: %w", utils.ErrMalformedPacket)
	}

	if r.Opcode != OpCodeRRQ && r.Opcode != OpCodeWRQ && r.Opcode != OpCodeDelete {
		return utils.ErrWrongOpCode
	}

	// the scan is bounded to the received datagram: a request
	// without a terminator within it is rejected, never read past
	r.Filename, err = rd.ReadString(0)
	if err != nil {
		return fmt.Errorf("error while decoding filename: %w", utils.ErrMalformedPacket)
	}

	r.Filename = strings.TrimRight(r.Filename, string(byte(0)))

	return nil
}
