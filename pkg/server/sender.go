package server

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Wa4h1h/go-xftp/pkg/types"
	"github.com/Wa4h1h/go-xftp/pkg/utils"
)

// SendBlock frames one data block with its checksum and sends it
// until a matching ack arrives or the retry budget runs out. Any
// other datagram (wrong block#, malformed, none within the read
// timeout) consumes one attempt.
func (s *Session) SendBlock(block []byte, blockNum uint16) error {
	var ack types.Ack

	data := &types.Data{
		Opcode:   types.OpCodeDATA,
		Payload:  block,
		BlockNum: blockNum,
	}

	b, err := data.MarshalBinary()
	if err != nil {
		s.l.Error(err.Error())

		return utils.ErrPacketMarshall
	}

	buf := make([]byte, types.DatagramSize)

	for i := s.numTries; i > 0; i-- {
		if err := s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
			s.l.Errorf("error while setting write timeout: %s", err.Error())

			return utils.ErrCanNotSetWriteTimeout
		}

		if _, err := s.conn.Write(b); err != nil {
			s.l.Errorf("error while writing data packet: %s", err.Error())

			continue
		}

		if err := s.conn.SetReadDeadline(time.Now().Add(s.readTimeout)); err != nil {
			s.l.Errorf("error while setting read timeout: %s", err.Error())

			return utils.ErrCanNotSetReadTimeout
		}

		n, err := s.conn.Read(buf)
		if err != nil {
			s.l.Debugf("no ack for block# %d: %s", blockNum, err.Error())

			continue
		}

		if err := ack.UnmarshalBinary(buf[:n]); err != nil {
			s.l.Debugf("error while unmarshal ack: %s", err.Error())

			continue
		}

		if ack.BlockNum != blockNum {
			s.l.Debugf("ack block# %d != expected block# %d", ack.BlockNum, blockNum)

			continue
		}

		if s.trace {
			s.l.Debugf("received ack block#=%d", ack.BlockNum)
		}

		return nil
	}

	return utils.ErrRetriesExhausted
}

// Send streams src as checksummed data blocks, one outstanding
// block at a time. A final block shorter than 512 bytes signals
// the end; a source whose size is an exact multiple of 512 is
// terminated by one extra zero length block.
func (s *Session) Send(src io.Reader) error {
	s.blockNum = 1

	block := make([]byte, types.MaxPayloadSize)
	bytesAccum := 0

	for {
		n, err := io.ReadFull(src, block)

		switch {
		case errors.Is(err, io.EOF):
			// previous block was exactly 512 bytes: the zero
			// length block disambiguates end of stream
			n = 0
		case errors.Is(err, io.ErrUnexpectedEOF):
		case err != nil:
			return fmt.Errorf("error while reading block: %w", err)
		}

		if err := s.SendBlock(block[:n], s.blockNum); err != nil {
			return err
		}

		if s.trace {
			s.l.Debugf("sent block#=%d, sent #bytes=%d", s.blockNum, n)
		}

		bytesAccum += n

		if n < types.MaxPayloadSize {
			s.l.Debugf("sent %d blocks, sent %d bytes", s.blockNum, bytesAccum)

			return nil
		}

		s.blockNum++
	}
}

// Ping answers the __ping__ probe: a single empty data block with
// block# 1, no ack wait, no retries.
func (s *Session) Ping() error {
	data := &types.Data{
		Opcode:   types.OpCodeDATA,
		BlockNum: 1,
	}

	b, err := data.MarshalBinary()
	if err != nil {
		s.l.Error(err.Error())

		return utils.ErrPacketMarshall
	}

	if err := s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
		s.l.Errorf("error while setting write timeout: %s", err.Error())

		return utils.ErrCanNotSetWriteTimeout
	}

	if _, err := s.conn.Write(b); err != nil {
		s.l.Errorf("error while writing ping reply: %s", err.Error())

		return err
	}

	return nil
}
