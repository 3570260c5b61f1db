package ntp

import (
	"errors"
	"net"
	"time"

	"github.com/AndrewLester/ntpstep/internal/logging"
	"github.com/AndrewLester/ntpstep/internal/ntp"
	"github.com/sirupsen/logrus"
)

const (
	DefaultTimeout = 5 * time.Second
	MTU            = 1300
)

// Measurement is the result of one request/response exchange. All times are
// Unix milliseconds; offset and delay are derived from t1..t4.
type Measurement struct {
	Server         string  `json:"server"`
	ServerIP       string  `json:"server_ip"`
	T1             float64 `json:"t1"`
	T2             float64 `json:"t2"`
	T3             float64 `json:"t3"`
	T4             float64 `json:"t4"`
	Offset         float64 `json:"offset"`
	Delay          float64 `json:"delay"`
	Leap           uint8   `json:"leap"`
	Version        uint8   `json:"version"`
	Mode           uint8   `json:"mode"`
	Stratum        uint8   `json:"stratum"`
	Poll           int8    `json:"poll"`
	Precision      int8    `json:"precision"`
	RootDelay      float64 `json:"root_delay"`
	RootDispersion float64 `json:"root_dispersion"`
	RefID          string  `json:"ref_id"`
	RefTime        float64 `json:"ref_time"`
}

// Querier performs a single NTP exchange.
type Querier interface {
	Query(server string) (*Measurement, error)
}

// Client is an SNTP client. The zero value is not usable; use NewClient.
type Client struct {
	Port    string
	Timeout time.Duration
	DSCP    uint8 // 0 leaves the socket's TOS untouched

	// Now reads the local clock for t1 and t4.
	Now func() time.Time

	log logrus.FieldLogger
}

func NewClient(log logrus.FieldLogger) *Client {
	return &Client{
		Port:    ntp.Port,
		Timeout: DefaultTimeout,
		Now:     time.Now,
		log:     logging.OrDefault(log),
	}
}

// Offset and Delay compute the four-timestamp estimates.
func Offset(t1, t2, t3, t4 float64) float64 {
	return ((t2 - t1) + (t3 - t4)) / 2
}

func Delay(t1, t2, t3, t4 float64) float64 {
	return (t4 - t1) - (t3 - t2)
}

// Query sends one client request to server and blocks until the reply or the timeout.
func (c *Client) Query(server string) (*Measurement, error) {
	serverAddr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(server, c.Port))
	if err != nil {
		return nil, newError(CodeSendError, "resolve %s: %w", server, err)
	}

	conn, err := net.ListenPacket("udp", ":0")
	if err != nil {
		return nil, newError(CodeSocketBind, "bind udp socket: %w", err)
	}
	defer conn.Close()

	if c.DSCP != 0 {
		if err := setDSCP(conn, c.DSCP); err != nil {
			c.log.WithError(err).Warn("could not set DSCP on NTP socket")
		}
	}

	if err := conn.SetReadDeadline(time.Now().Add(c.Timeout)); err != nil {
		return nil, newError(CodeSocketTimeout, "set read deadline: %w", err)
	}

	t1, err := unixMs(c.Now())
	if err != nil {
		return nil, err
	}
	if _, err := conn.WriteTo(ntp.NewRequest(), serverAddr); err != nil {
		return nil, newError(CodeSendError, "send request to %s: %w", serverAddr, err)
	}

	response := make([]byte, MTU)
	n, peer, err := conn.ReadFrom(response)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, newError(CodeSocketTimeout, "no reply from %s within %s", serverAddr, c.Timeout)
		}
		return nil, newError(CodeRecvError, "receive reply: %w", err)
	}

	t4, err := unixMs(c.Now())
	if err != nil {
		return nil, err
	}

	packet, err := ntp.DecodePacket(response[:n])
	if err != nil {
		return nil, &Error{Code: CodeIncomplete, Err: err}
	}

	t2 := ntp.TimestampToUnixMs(packet.Rec)
	t3 := ntp.TimestampToUnixMs(packet.Xmt)

	measurement := &Measurement{
		Server:         server,
		ServerIP:       peerIP(peer),
		T1:             t1,
		T2:             t2,
		T3:             t3,
		T4:             t4,
		Offset:         Offset(t1, t2, t3, t4),
		Delay:          Delay(t1, t2, t3, t4),
		Leap:           packet.Leap,
		Version:        packet.Version,
		Mode:           uint8(packet.Mode),
		Stratum:        packet.Stratum,
		Poll:           packet.Poll,
		Precision:      packet.Precision,
		RootDelay:      ntp.ShortToMs(packet.Rootdelay),
		RootDispersion: ntp.ShortToMs(packet.Rootdisp),
		RefID:          ntp.DecodeReferenceID(packet.Refid, packet.Stratum),
		RefTime:        ntp.TimestampToUnixMs(packet.Reftime),
	}

	c.log.WithFields(logrus.Fields{
		"server":    server,
		"peer":      measurement.ServerIP,
		"offset_ms": measurement.Offset,
		"delay_ms":  measurement.Delay,
		"stratum":   measurement.Stratum,
	}).Debug("ntp reply")

	return measurement, nil
}

// Usable rejects replies whose timestamps cannot be trusted. Query still
// returns them so callers can inspect kiss codes.
func (m *Measurement) Usable() error {
	if m.Stratum == ntp.StratumKiss {
		return newError(CodeUnsynchronized, "kiss-o'-death from %s (%s)", m.Server, m.RefID)
	}
	if m.T2 <= 0 || m.T3 <= 0 {
		return newError(CodeUnsynchronized, "reply from %s has no receive or transmit timestamp", m.Server)
	}
	return nil
}

func unixMs(t time.Time) (float64, error) {
	if t.Before(time.Unix(0, 0)) {
		return 0, newError(CodeTimeError, "local clock %s is before the Unix epoch", t)
	}
	return ntp.TimeToUnixMs(t), nil
}

func peerIP(addr net.Addr) string {
	if udpAddr, ok := addr.(*net.UDPAddr); ok {
		return udpAddr.IP.String()
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
