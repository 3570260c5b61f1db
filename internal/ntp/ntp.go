package ntp

type TimestampEncoded = uint64

type ShortEncoded = uint32

type Mode byte

const (
	RESERVED Mode = iota
	SYMMETRIC_ACTIVE
	SYMMETRIC_PASSIVE
	CLIENT
	SERVER
	BROADCAST_SERVER
	BROADCAST_CLIENT
	RESERVED_PRIVATE_USE
)

const (
	Port            = "123" // NTP port number
	PacketSize      = 48    // header without extension fields or MAC
	Version    byte = 3     // version sent in client requests
)

// Stratum values that carry an ASCII reference identifier instead of an address.
const (
	StratumKiss    byte = 0
	StratumPrimary byte = 1
)
