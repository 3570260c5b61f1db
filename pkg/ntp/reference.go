package ntp

import (
	"net"
	"time"

	"github.com/AndrewLester/ntpstep/internal/ntp"
	beevik "github.com/beevik/ntp"
)

// ReferenceSample is an independent estimate from a second NTP implementation,
// used to cross-check the built-in client.
type ReferenceSample struct {
	Server  string  `json:"server"`
	Offset  float64 `json:"offset"`
	Delay   float64 `json:"delay"`
	Stratum uint8   `json:"stratum"`
	RefID   string  `json:"ref_id"`
}

type Reference struct {
	Port    string
	Timeout time.Duration
}

func NewReference() *Reference {
	return &Reference{Port: ntp.Port, Timeout: DefaultTimeout}
}

func (r *Reference) Query(server string) (*ReferenceSample, error) {
	response, err := beevik.QueryWithOptions(net.JoinHostPort(server, r.Port), beevik.QueryOptions{
		Timeout: r.Timeout,
	})
	if err != nil {
		return nil, &Error{Code: CodeRecvError, Err: err}
	}
	if err := response.Validate(); err != nil {
		return nil, &Error{Code: CodeRecvError, Err: err}
	}

	var refid [4]byte
	refid[0] = byte(response.ReferenceID >> 24)
	refid[1] = byte(response.ReferenceID >> 16)
	refid[2] = byte(response.ReferenceID >> 8)
	refid[3] = byte(response.ReferenceID)

	return &ReferenceSample{
		Server:  server,
		Offset:  durationMs(response.ClockOffset),
		Delay:   durationMs(response.RTT),
		Stratum: response.Stratum,
		RefID:   ntp.DecodeReferenceID(refid, response.Stratum),
	}, nil
}

func durationMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
