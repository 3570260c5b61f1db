package sidecar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/AndrewLester/ntpstep/internal/logging"
	"github.com/sirupsen/logrus"
)

// Setter performs the privileged clock write on behalf of a request.
type Setter interface {
	SetTime(unixMs float64) (string, error)
}

// CodedError is implemented by setter errors that carry a stable code.
type CodedError interface {
	error
	ErrorCode() string
}

const maxReadBackoff = time.Second

type Server struct {
	Addr   string
	Setter Setter

	log   logrus.FieldLogger
	sleep func(time.Duration)
}

func NewServer(addr string, setter Setter, log logrus.FieldLogger) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	return &Server{Addr: addr, Setter: setter, log: logging.OrDefault(log), sleep: time.Sleep}
}

// ListenAndServe binds Addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	conn, err := net.ListenPacket("udp", s.Addr)
	if err != nil {
		return fmt.Errorf("can't listen on %s/udp: %w", s.Addr, err)
	}
	return s.Serve(ctx, conn)
}

// Serve answers requests on conn until ctx is done, then closes conn.
// A bad datagram gets an error response; it never stops the loop.
func (s *Server) Serve(ctx context.Context, conn net.PacketConn) error {
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()
	defer conn.Close()

	s.log.WithField("addr", conn.LocalAddr().String()).Info("sidecar listening")

	var backoff time.Duration
	packet := make([]byte, BufferSize)
	for {
		n, addr, err := conn.ReadFrom(packet)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return ctx.Err()
			}
			// Back off on repeated read errors, doubling up to maxReadBackoff.
			if backoff == 0 {
				backoff = 5 * time.Millisecond
			} else {
				backoff = min(backoff*2, maxReadBackoff)
			}
			s.log.WithError(err).WithField("retry_in", backoff).Warn("error reading sidecar request")
			s.sleep(backoff)
			continue
		}
		backoff = 0

		response := s.handle(packet[:n], addr)
		encoded, err := json.Marshal(response)
		if err != nil {
			s.log.WithError(err).Error("encode sidecar response")
			continue
		}
		if _, err := conn.WriteTo(encoded, addr); err != nil {
			s.log.WithError(err).WithField("peer", addr.String()).Warn("error writing sidecar response")
		}
	}
}

func (s *Server) handle(datagram []byte, addr net.Addr) Response {
	log := s.log.WithField("peer", addr.String())

	request, err := DecodeRequest(datagram)
	if errors.Is(err, errProbe) {
		log.Debug("sidecar probe")
		return Response{Success: false, Message: "probe acknowledged, clock untouched", Error: CodeInvalidRequest}
	}
	if err != nil {
		log.WithError(err).Warn("rejecting sidecar request")
		return Response{Success: false, Message: "invalid request", Error: CodeInvalidRequest}
	}

	unixMs := *request.UnixMs
	log = log.WithField("unix_ms", unixMs)
	log.Info("sidecar set time request")

	message, err := s.Setter.SetTime(unixMs)
	if err != nil {
		code := CodeSetTimeError
		var coded CodedError
		if errors.As(err, &coded) {
			code = coded.ErrorCode()
		}
		log.WithError(err).WithField("code", code).Warn("sidecar set time failed")
		return Response{Success: false, Message: err.Error(), Error: code}
	}

	log.Info("sidecar set time succeeded")
	return Response{Success: true, Message: message}
}
