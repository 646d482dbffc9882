package server

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/Wa4h1h/go-xftp/pkg/storage"
	"github.com/Wa4h1h/go-xftp/pkg/types"
	"github.com/Wa4h1h/go-xftp/pkg/utils"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Server reads requests from the well known control port and runs
// every accepted transfer on its own ephemeral session endpoint,
// so concurrent peers never share a socket.
type Server struct {
	logger       *zap.SugaredLogger
	store        storage.Store
	conn         net.PacketConn
	port         string
	numTries     int
	readTimeout  uint
	writeTimeout uint
	trace        bool
}

func NewServer(l *zap.SugaredLogger, port string, store storage.Store,
	readTimeout uint, writeTimeout uint, numTries int, trace bool,
) *Server {
	return &Server{
		logger: l, port: port, store: store,
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
		numTries:     numTries,
		trace:        trace,
	}
}

func (s *Server) ListenAndServe() error {
	conn, err := net.ListenPacket("udp", fmt.Sprintf(":%s", s.port))
	if err != nil {
		s.logger.Error(err.Error())

		return utils.ErrStartingServer
	}

	s.conn = conn

	for {
		datagram := make([]byte, types.DatagramSize)

		n, addr, err := conn.ReadFrom(datagram)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}

			return err
		}

		// anything shorter than opcode+payload minimum carries no request
		if n < 4 {
			continue
		}

		go s.handleRequest(addr, datagram[:n])
	}
}

// Addr reports the control endpoint address, nil until
// ListenAndServe has bound it.
func (s *Server) Addr() net.Addr {
	if s.conn == nil {
		return nil
	}

	return s.conn.LocalAddr()
}

func (s *Server) Close() error {
	// nothing to release when ListenAndServe never bound
	if s.conn == nil {
		return nil
	}

	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("error while closing connection: %w", err)
	}

	return nil
}

// newSession dials the peer from a fresh OS assigned ephemeral
// port. The endpoint stays fixed to this peer for the whole
// transfer and is released with the session.
func (s *Server) newSession(addr net.Addr) (*Session, error) {
	conn, err := net.Dial("udp", addr.String())
	if err != nil {
		return nil, fmt.Errorf("error while opening session endpoint: %w", err)
	}

	return NewSession(conn, s.logger,
		time.Duration(s.readTimeout)*time.Second,
		time.Duration(s.writeTimeout)*time.Second,
		s.numTries, s.trace), nil
}

func (s *Server) handleRequest(addr net.Addr, datagram []byte) {
	var req types.Request

	if err := req.UnmarshalBinary(datagram); err != nil {
		if errors.Is(err, utils.ErrWrongOpCode) {
			illegalOp := &types.Error{
				Opcode:    types.OpCodeError,
				ErrorCode: types.ErrIllegalOp,
				ErrMsg:    "Illegal TFTP operation",
			}

			if err := sendErrorPacketTo(s.conn, addr, illegalOp); err != nil {
				s.logger.Errorf("error while responding to request: %s", err.Error())
			}

			return
		}

		s.logger.Errorf("error while reading request from %s: %s", addr.String(), err.Error())

		return
	}

	switch req.Opcode {
	case types.OpCodeRRQ:
		s.logger.Infof("rrq for file %s from %s", req.Filename, addr.String())
		s.handleRrq(addr, req.Filename)
	case types.OpCodeWRQ:
		s.logger.Infof("wrq for file %s from %s", req.Filename, addr.String())
		s.handleWrq(addr, req.Filename)
	case types.OpCodeDelete:
		s.logger.Infof("delete request for file %s from %s", req.Filename, addr.String())
		s.handleDelete(addr, req.Filename)
	}
}

func (s *Server) handleRrq(addr net.Addr, filename string) {
	if filename == types.PingFilename {
		sess, err := s.newSession(addr)
		if err != nil {
			s.logger.Error(err.Error())

			return
		}

		defer func() {
			if err := sess.Close(); err != nil {
				s.logger.Error(err.Error())
			}
		}()

		if err := sess.Ping(); err != nil {
			s.logger.Errorf("error while answering ping: %s", err.Error())
		}

		return
	}

	src, size, err := s.store.OpenRead(filename)
	if err != nil {
		errPacket := notDefinedError()

		if errors.Is(err, storage.ErrNotFound) {
			errPacket = &types.Error{
				Opcode:    types.OpCodeError,
				ErrorCode: types.ErrFileNotFound,
				ErrMsg:    "File not found",
			}
		} else {
			s.logger.Errorf("error while opening %s: %s", filename, err.Error())
		}

		if err := sendErrorPacketTo(s.conn, addr, errPacket); err != nil {
			s.logger.Errorf("error while responding to rrq: %s", err.Error())
		}

		return
	}

	// the 16-bit block space caps a transfer at 65535 full blocks
	if size > types.MaxBlocks*types.MaxPayloadSize {
		if err := src.Close(); err != nil {
			s.logger.Errorf("error while closing file: %s", err.Error())
		}

		errPacket := &types.Error{
			Opcode:    types.OpCodeError,
			ErrorCode: types.ErrNotDefined,
			ErrMsg:    "file too large to be transferred",
		}

		if err := sendErrorPacketTo(s.conn, addr, errPacket); err != nil {
			s.logger.Errorf("error while responding to rrq: %s", err.Error())
		}

		return
	}

	sess, err := s.newSession(addr)
	if err != nil {
		s.logger.Error(err.Error())

		if err := src.Close(); err != nil {
			s.logger.Errorf("error while closing file: %s", err.Error())
		}

		return
	}

	defer func() {
		if err := multierr.Append(sess.Close(), src.Close()); err != nil {
			s.logger.Errorf("error while releasing rrq session: %s", err.Error())
		}
	}()

	if err := sess.Send(src); err != nil {
		s.logger.Errorf("error while responding to rrq for %s: %s", filename, err.Error())
	}
}

func (s *Server) handleWrq(addr net.Addr, filename string) {
	dst, err := s.store.OpenWrite(filename)
	if err != nil {
		errPacket := &types.Error{
			Opcode:    types.OpCodeError,
			ErrorCode: types.ErrCannotCreate,
			ErrMsg:    "Cannot create file",
		}

		if err := sendErrorPacketTo(s.conn, addr, errPacket); err != nil {
			s.logger.Errorf("error while responding to wrq: %s", err.Error())
		}

		return
	}

	sess, err := s.newSession(addr)
	if err != nil {
		s.logger.Error(err.Error())

		if err := dst.Close(); err != nil {
			s.logger.Errorf("error while closing file: %s", err.Error())
		}

		return
	}

	defer func() {
		if err := sess.Close(); err != nil {
			s.logger.Error(err.Error())
		}
	}()

	if err := sess.AcknowledgeWrq(); err != nil {
		s.logger.Errorf("error while acknowledging wrq: %s", err.Error())

		if err := dst.Close(); err != nil {
			s.logger.Errorf("error while closing file: %s", err.Error())
		}

		return
	}

	if err := multierr.Append(sess.Receive(dst), dst.Close()); err != nil {
		s.logger.Errorf("error while responding to wrq for %s: %s", filename, err.Error())

		return
	}

	// best effort: a failed backup never rolls back the upload
	if err := s.store.Duplicate(filename); err != nil {
		s.logger.Errorf("error while creating backup of %s: %s", filename, err.Error())
	}
}

func (s *Server) handleDelete(addr net.Addr, filename string) {
	reply := &types.Error{
		Opcode:    types.OpCodeError,
		ErrorCode: types.DeleteOk,
		ErrMsg:    "File deleted successfully",
	}

	if err := s.store.Remove(filename); err != nil {
		s.logger.Errorf("error while deleting %s: %s", filename, err.Error())

		reply.ErrorCode = types.DeleteFailed
		reply.ErrMsg = "Failed to delete file"
	}

	if err := sendErrorPacketTo(s.conn, addr, reply); err != nil {
		s.logger.Errorf("error while responding to delete: %s", err.Error())
	}
}
