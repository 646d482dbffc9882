package server

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Wa4h1h/go-xftp/pkg/types"
	"github.com/Wa4h1h/go-xftp/pkg/utils"
)

// AcknowledgeWrq confirms acceptance of a write request with
// ack block# 0 on the session endpoint.
func (s *Session) AcknowledgeWrq() error {
	ack := &types.Ack{
		Opcode:   types.OpCodeACK,
		BlockNum: 0,
	}

	b, err := ack.MarshalBinary()
	if err != nil {
		s.l.Error(err.Error())

		return utils.ErrPacketMarshall
	}

	if err := s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
		s.l.Errorf("error while setting write timeout: %s", err.Error())

		return utils.ErrCanNotSetWriteTimeout
	}

	if _, err := s.conn.Write(b); err != nil {
		s.l.Errorf("error while writing ack packet: %s", err.Error())

		return err
	}

	return nil
}

// ReceiveBlock waits for one valid data block. A frame with a bad
// checksum is discarded without an ack, forcing the peer's retry
// timer. Only block# lastAccepted+1 is written to dst; anything
// else is acked with the received block# but never written, which
// re-synchronizes a peer that missed the previous ack.
func (s *Session) ReceiveBlock(dst io.Writer) (uint16, int, error) {
	var data types.Data

	datagram := make([]byte, types.DatagramSize)

	for tries := s.numTries; tries > 0; tries-- {
		if err := s.conn.SetReadDeadline(time.Now().Add(s.readTimeout)); err != nil {
			s.l.Errorf("error while setting read timeout: %s", err.Error())

			return 0, 0, utils.ErrCanNotSetReadTimeout
		}

		n, err := s.conn.Read(datagram)
		if err != nil {
			s.l.Debugf("no data block after block# %d: %s", s.blockNum, err.Error())

			continue
		}

		if err := data.UnmarshalBinary(datagram[:n]); err != nil {
			if errors.Is(err, utils.ErrChecksumMismatch) {
				s.l.Debugf("checksum mismatch on block# %d", data.BlockNum)
			} else {
				s.l.Debugf("error while unmarshal data packet: %s", err.Error())
			}

			continue
		}

		if data.BlockNum == s.blockNum+1 {
			if _, err := dst.Write(data.Payload); err != nil {
				return 0, 0, fmt.Errorf("error while writing block to stream: %w", err)
			}

			s.blockNum = data.BlockNum
		}

		if err := s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
			s.l.Errorf("error while setting write timeout: %s", err.Error())

			return 0, 0, utils.ErrCanNotSetWriteTimeout
		}

		ack := &types.Ack{
			Opcode:   types.OpCodeACK,
			BlockNum: data.BlockNum,
		}

		b, errM := ack.MarshalBinary()
		if errM != nil {
			s.l.Error(errM.Error())

			return 0, 0, utils.ErrPacketMarshall
		}

		if _, errW := s.conn.Write(b); errW != nil {
			s.l.Errorf("error while writing ack packet: %s", errW.Error())

			continue
		}

		return data.BlockNum, len(data.Payload), nil
	}

	return 0, 0, utils.ErrRetriesExhausted
}

// Receive accepts checksummed data blocks into dst until a block
// shorter than 512 bytes ends the transfer.
func (s *Session) Receive(dst io.Writer) error {
	s.blockNum = 0

	bytesAccum := 0

	for {
		blockNum, n, err := s.ReceiveBlock(dst)
		if err != nil {
			return err
		}

		if s.trace {
			s.l.Debugf("received block#=%d, received #bytes=%d", blockNum, n)
		}

		bytesAccum += n

		if n < types.MaxPayloadSize {
			s.l.Debugf("received %d blocks, received %d bytes", blockNum, bytesAccum)

			return nil
		}
	}
}
