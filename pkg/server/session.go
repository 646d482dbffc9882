package server

import (
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session is one active transfer. It owns a dedicated UDP endpoint
// bound to a single peer; blockNum and the retry budget are the
// whole protocol state, so sessions need no locking.
type Session struct {
	conn         net.Conn
	l            *zap.SugaredLogger
	id           string
	blockNum     uint16
	numTries     int
	readTimeout  time.Duration
	writeTimeout time.Duration
	trace        bool
}

func NewSession(conn net.Conn, logger *zap.SugaredLogger,
	readTimeout time.Duration, writeTimeout time.Duration,
	numTries int, trace bool,
) *Session {
	id := uuid.NewString()

	return &Session{
		conn: conn, l: logger.With("session", id),
		id: id, readTimeout: readTimeout,
		writeTimeout: writeTimeout, numTries: numTries,
		trace: trace,
	}
}

func (s *Session) Close() error {
	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("error while closing session endpoint: %w", err)
	}

	return nil
}
