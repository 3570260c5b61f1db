package sidecar

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/AndrewLester/ntpstep/internal/logging"
	"github.com/sirupsen/logrus"
)

// ErrNoResponse wraps every failure to get a datagram back from the
// sidecar: bind, send, receive or timeout. A timeout is the only liveness
// signal the protocol has.
var ErrNoResponse = errors.New("sidecar did not respond")

type Client struct {
	Addr         string
	Timeout      time.Duration
	ProbeTimeout time.Duration

	log logrus.FieldLogger
}

func NewClient(addr string, log logrus.FieldLogger) *Client {
	if addr == "" {
		addr = DefaultAddr
	}
	return &Client{
		Addr:         addr,
		Timeout:      DefaultTimeout,
		ProbeTimeout: DefaultProbeTimeout,
		log:          logging.OrDefault(log),
	}
}

// SetTime asks the sidecar to set the clock to unixMs. A non-nil Response
// is returned whenever the sidecar answered, successful or not.
func (c *Client) SetTime(unixMs float64) (*Response, error) {
	payload, err := json.Marshal(NewRequest(unixMs))
	if err != nil {
		return nil, err
	}

	reply, err := c.roundTrip(payload, c.Timeout)
	if err != nil {
		return nil, err
	}

	var response Response
	if err := json.Unmarshal(reply, &response); err != nil {
		return nil, fmt.Errorf("decode sidecar response: %w", err)
	}
	return &response, nil
}

// Probe reports whether anything answers on the sidecar address.
func (c *Client) Probe() bool {
	payload, _ := json.Marshal(Request{})
	_, err := c.roundTrip(payload, c.ProbeTimeout)
	if err != nil {
		c.log.WithError(err).Debug("sidecar probe failed")
	}
	return err == nil
}

func (c *Client) roundTrip(payload []byte, timeout time.Duration) ([]byte, error) {
	addr, err := net.ResolveUDPAddr("udp", c.Addr)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve %s: %v", ErrNoResponse, c.Addr, err)
	}

	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("%w: bind: %v", ErrNoResponse, err)
	}
	defer conn.Close()

	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, fmt.Errorf("%w: set deadline: %v", ErrNoResponse, err)
	}

	if _, err := conn.WriteTo(payload, addr); err != nil {
		return nil, fmt.Errorf("%w: send to %s: %v", ErrNoResponse, addr, err)
	}

	buffer := make([]byte, BufferSize)
	n, _, err := conn.ReadFrom(buffer)
	if err != nil {
		return nil, fmt.Errorf("%w: receive from %s: %v", ErrNoResponse, addr, err)
	}
	return buffer[:n], nil
}
