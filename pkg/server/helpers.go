package server

import (
	"fmt"
	"net"

	"github.com/Wa4h1h/go-xftp/pkg/types"
)

func notDefinedError() *types.Error {
	return &types.Error{
		Opcode:    types.OpCodeError,
		ErrorCode: types.ErrNotDefined,
		ErrMsg:    "not defined error",
	}
}

func sendErrorPacket(conn net.Conn, errorPacket *types.Error) error {
	b, err := errorPacket.MarshalBinary()
	if err != nil {
		return fmt.Errorf("error while marshal error packet: %w", err)
	}

	if _, err := conn.Write(b); err != nil {
		return fmt.Errorf("error while writing error packet: %w", err)
	}

	return nil
}

// sendErrorPacketTo answers on the shared control socket, used
// before any session endpoint exists for the peer.
func sendErrorPacketTo(conn net.PacketConn, addr net.Addr, errorPacket *types.Error) error {
	b, err := errorPacket.MarshalBinary()
	if err != nil {
		return fmt.Errorf("error while marshal error packet: %w", err)
	}

	if _, err := conn.WriteTo(b, addr); err != nil {
		return fmt.Errorf("error while writing error packet: %w", err)
	}

	return nil
}
