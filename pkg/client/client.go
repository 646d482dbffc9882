package client

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/Wa4h1h/go-xftp/pkg/types"
	"github.com/Wa4h1h/go-xftp/pkg/utils"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type Connector interface {
	Connect(addr string) error
	Get(filename string) error
	Put(filename string) error
	Delete(filename string) error
	Ping() error
	SetTimeout(timeout uint)
	SetTrace()
	Close() error
}

// Client speaks to the server over an unconnected socket: requests
// go to the control port, but every reply after that comes from a
// fresh ephemeral session port, which is pinned on first contact.
type Client struct {
	conn       net.PacketConn
	serverAddr net.Addr
	l          *zap.SugaredLogger
	timeout    time.Duration
	numTries   int
	trace      bool
}

func NewClient(l *zap.SugaredLogger, numTries uint) Connector {
	return &Client{
		l:        l,
		numTries: int(numTries),
		timeout:  time.Duration(types.DefaultReadTimeout) * time.Second,
	}
}

func (c *Client) SetTimeout(timeout uint) {
	c.timeout = time.Duration(timeout) * time.Second
}

func (c *Client) SetTrace() {
	c.trace = !c.trace
}

func (c *Client) Connect(addr string) error {
	serverAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return fmt.Errorf("error while resolving %s: %w", addr, err)
	}

	conn, err := net.ListenPacket("udp", ":0")
	if err != nil {
		return fmt.Errorf("error while opening local endpoint: %w", err)
	}

	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			c.l.Errorf("error while closing previous endpoint: %s", err.Error())
		}
	}

	c.conn = conn
	c.serverAddr = serverAddr

	return nil
}

func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}

	if err := c.conn.Close(); err != nil {
		return fmt.Errorf("error while closing connection: %w", err)
	}

	return nil
}

func (c *Client) ensureConnected() error {
	if c.conn == nil {
		return errors.New("error: not connected, use connect <host> <port>")
	}

	return nil
}

func (c *Client) sendRequest(opcode types.OpCode, filename string) error {
	req := &types.Request{Opcode: opcode, Filename: filename}

	b, err := req.MarshalBinary()
	if err != nil {
		c.l.Error(err.Error())

		return utils.ErrPacketMarshall
	}

	if err := c.conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return utils.ErrCanNotSetWriteTimeout
	}

	if _, err := c.conn.WriteTo(b, c.serverAddr); err != nil {
		return fmt.Errorf("error while writing request: %w", err)
	}

	return nil
}

func (c *Client) writeAck(blockNum uint16, peer net.Addr) error {
	ack := &types.Ack{Opcode: types.OpCodeACK, BlockNum: blockNum}

	b, err := ack.MarshalBinary()
	if err != nil {
		c.l.Error(err.Error())

		return utils.ErrPacketMarshall
	}

	if err := c.conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return utils.ErrCanNotSetWriteTimeout
	}

	if _, err := c.conn.WriteTo(b, peer); err != nil {
		return fmt.Errorf("error while writing ack packet: %w", err)
	}

	return nil
}

// Get downloads filename into the current directory. The transfer
// runs against the server's session port, learned from the first
// valid reply; duplicate blocks are acked but written only once.
func (c *Client) Get(filename string) error {
	if err := c.ensureConnected(); err != nil {
		return err
	}

	if err := c.sendRequest(types.OpCodeRRQ, filename); err != nil {
		return err
	}

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("error while creating %s: %w", filename, err)
	}

	received, errGet := c.receiveInto(f)

	if err := multierr.Append(errGet, f.Close()); err != nil {
		// nothing was accepted: do not leave an empty file behind
		if received == 0 {
			if errR := os.Remove(filename); errR != nil {
				c.l.Errorf("error while removing %s: %s", filename, errR.Error())
			}
		}

		return err
	}

	fmt.Printf("received %s\n", filename)

	return nil
}

func (c *Client) receiveInto(dst io.Writer) (int, error) {
	var (
		data         types.Data
		errPacket    types.Error
		peer         net.Addr
		lastAccepted uint16
		bytesAccum   int
	)

	datagram := make([]byte, types.DatagramSize)

	for {
		valid := false

		for tries := c.numTries; tries > 0; tries-- {
			if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
				return bytesAccum, utils.ErrCanNotSetReadTimeout
			}

			n, from, err := c.conn.ReadFrom(datagram)
			if err != nil {
				c.l.Debugf("no data block after block# %d: %s", lastAccepted, err.Error())

				continue
			}

			if peer != nil && from.String() != peer.String() {
				c.l.Debugf("datagram from unexpected peer %s", from.String())

				continue
			}

			if errPacket.UnmarshalBinary(datagram[:n]) == nil {
				return bytesAccum, fmt.Errorf("server error %d: %s", errPacket.ErrorCode, errPacket.ErrMsg)
			}

			if err := data.UnmarshalBinary(datagram[:n]); err != nil {
				if errors.Is(err, utils.ErrChecksumMismatch) {
					c.l.Debugf("checksum mismatch on block# %d", data.BlockNum)
				} else {
					c.l.Debugf("error while unmarshal data packet: %s", err.Error())
				}

				continue
			}

			if peer == nil {
				// first valid frame pins the session port
				peer = from
			}

			valid = true

			break
		}

		if !valid {
			return bytesAccum, utils.ErrRetriesExhausted
		}

		if data.BlockNum == lastAccepted+1 {
			if _, err := dst.Write(data.Payload); err != nil {
				return bytesAccum, fmt.Errorf("error while writing block to file: %w", err)
			}

			lastAccepted = data.BlockNum
			bytesAccum += len(data.Payload)
		}

		if err := c.writeAck(data.BlockNum, peer); err != nil {
			return bytesAccum, err
		}

		if c.trace {
			c.l.Debugf("received block#=%d, received #bytes=%d", data.BlockNum, len(data.Payload))
		}

		if len(data.Payload) < types.MaxPayloadSize {
			c.l.Debugf("received %d blocks, received %d bytes", lastAccepted, bytesAccum)

			return bytesAccum, nil
		}
	}
}

// Put uploads filename. The write request is answered with ack
// block# 0 from the session port before any data flows.
func (c *Client) Put(filename string) error {
	if err := c.ensureConnected(); err != nil {
		return err
	}

	stats, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("error while checking %s exists: %w", filename, err)
	}

	// the 16-bit block space caps a transfer at 65535 full blocks
	if stats.Size() > types.MaxBlocks*types.MaxPayloadSize {
		return utils.ErrFileTooLarge
	}

	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("error while opening %s: %w", filename, err)
	}

	errPut := c.sendFrom(f, filename)

	if err := multierr.Append(errPut, f.Close()); err != nil {
		return err
	}

	fmt.Printf("sent %s\n", filename)

	return nil
}

func (c *Client) sendFrom(src io.Reader, filename string) error {
	peer, err := c.awaitWrqAck(filename)
	if err != nil {
		return err
	}

	var blockNum uint16 = 1

	block := make([]byte, types.MaxPayloadSize)
	bytesAccum := 0

	for {
		n, err := io.ReadFull(src, block)

		switch {
		case errors.Is(err, io.EOF):
			n = 0
		case errors.Is(err, io.ErrUnexpectedEOF):
		case err != nil:
			return fmt.Errorf("error while reading block: %w", err)
		}

		if err := c.sendBlock(block[:n], blockNum, peer); err != nil {
			return err
		}

		if c.trace {
			c.l.Debugf("sent block#=%d, sent #bytes=%d", blockNum, n)
		}

		bytesAccum += n

		if n < types.MaxPayloadSize {
			c.l.Debugf("sent %d blocks, sent %d bytes", blockNum, bytesAccum)

			return nil
		}

		blockNum++
	}
}

// awaitWrqAck retransmits the write request until ack block# 0
// arrives from the server's fresh session port.
func (c *Client) awaitWrqAck(filename string) (net.Addr, error) {
	var (
		ack       types.Ack
		errPacket types.Error
	)

	datagram := make([]byte, types.DatagramSize)

	for tries := c.numTries; tries > 0; tries-- {
		if err := c.sendRequest(types.OpCodeWRQ, filename); err != nil {
			return nil, err
		}

		if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
			return nil, utils.ErrCanNotSetReadTimeout
		}

		n, from, err := c.conn.ReadFrom(datagram)
		if err != nil {
			c.l.Debugf("no ack for wrq: %s", err.Error())

			continue
		}

		if errPacket.UnmarshalBinary(datagram[:n]) == nil {
			return nil, fmt.Errorf("server error %d: %s", errPacket.ErrorCode, errPacket.ErrMsg)
		}

		if err := ack.UnmarshalBinary(datagram[:n]); err != nil {
			c.l.Debugf("error while unmarshal ack: %s", err.Error())

			continue
		}

		if ack.BlockNum != 0 {
			c.l.Debugf("ack block# %d != expected block# 0", ack.BlockNum)

			continue
		}

		return from, nil
	}

	return nil, utils.ErrRetriesExhausted
}

func (c *Client) sendBlock(block []byte, blockNum uint16, peer net.Addr) error {
	var ack types.Ack

	data := &types.Data{
		Opcode:   types.OpCodeDATA,
		Payload:  block,
		BlockNum: blockNum,
	}

	b, err := data.MarshalBinary()
	if err != nil {
		c.l.Error(err.Error())

		return utils.ErrPacketMarshall
	}

	buf := make([]byte, types.DatagramSize)

	for i := c.numTries; i > 0; i-- {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
			return utils.ErrCanNotSetWriteTimeout
		}

		if _, err := c.conn.WriteTo(b, peer); err != nil {
			c.l.Errorf("error while writing data packet: %s", err.Error())

			continue
		}

		if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
			return utils.ErrCanNotSetReadTimeout
		}

		n, _, err := c.conn.ReadFrom(buf)
		if err != nil {
			c.l.Debugf("no ack for block# %d: %s", blockNum, err.Error())

			continue
		}

		if err := ack.UnmarshalBinary(buf[:n]); err != nil {
			c.l.Debugf("error while unmarshal ack: %s", err.Error())

			continue
		}

		if ack.BlockNum != blockNum {
			c.l.Debugf("ack block# %d != expected block# %d", ack.BlockNum, blockNum)

			continue
		}

		if c.trace {
			c.l.Debugf("received ack block#=%d", ack.BlockNum)
		}

		return nil
	}

	return utils.ErrRetriesExhausted
}

// Delete asks the server to remove filename. The reply reuses the
// error frame as a status: code 0 means the file is gone.
func (c *Client) Delete(filename string) error {
	if err := c.ensureConnected(); err != nil {
		return err
	}

	if err := c.sendRequest(types.OpCodeDelete, filename); err != nil {
		return err
	}

	var reply types.Error

	datagram := make([]byte, types.DatagramSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return utils.ErrCanNotSetReadTimeout
	}

	n, _, err := c.conn.ReadFrom(datagram)
	if err != nil {
		return fmt.Errorf("error while reading delete reply: %w", err)
	}

	if err := reply.UnmarshalBinary(datagram[:n]); err != nil {
		return fmt.Errorf("error while unmarshal delete reply: %w", err)
	}

	if reply.ErrorCode != types.DeleteOk {
		return fmt.Errorf("server error %d: %s", reply.ErrorCode, reply.ErrMsg)
	}

	fmt.Printf("%s\n", reply.ErrMsg)

	return nil
}

// Ping probes server liveness with the __ping__ read request and
// expects a single empty data block back.
func (c *Client) Ping() error {
	if err := c.ensureConnected(); err != nil {
		return err
	}

	start := time.Now()

	if err := c.sendRequest(types.OpCodeRRQ, types.PingFilename); err != nil {
		return err
	}

	var data types.Data

	datagram := make([]byte, types.DatagramSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return utils.ErrCanNotSetReadTimeout
	}

	n, _, err := c.conn.ReadFrom(datagram)
	if err != nil {
		return fmt.Errorf("server is not reachable: %w", err)
	}

	if err := data.UnmarshalBinary(datagram[:n]); err != nil {
		return fmt.Errorf("unexpected ping reply: %w", err)
	}

	fmt.Printf("server is alive, rtt=%s\n", time.Since(start))

	return nil
}
