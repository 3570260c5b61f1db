package ntp

import (
	"net"

	"golang.org/x/net/ipv4"
)

// setDSCP marks outgoing datagrams with the given DiffServ code point. dscp is
// the 6-bit value; it is shifted into the upper bits of the TOS byte here.
func setDSCP(conn net.PacketConn, dscp uint8) error {
	return ipv4.NewPacketConn(conn).SetTOS(int(dscp) << 2)
}
