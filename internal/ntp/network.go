package ntp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

var ErrShortPacket = errors.New("ntp: packet shorter than 48 bytes")

type Packet struct {
	Leap    byte /* leap indicator */
	Version byte /* version number */
	Mode    Mode /* mode */
	FieldsEncoded
}

// Fields that can be read directly from the packet bytes
type FieldsEncoded struct {
	Stratum   byte             /* stratum */
	Poll      int8             /* poll interval */
	Precision int8             /* precision */
	Rootdelay ShortEncoded     /* root delay */
	Rootdisp  ShortEncoded     /* root dispersion */
	Refid     [4]byte          /* reference ID */
	Reftime   TimestampEncoded /* reference time, offset 16 */
	Org       TimestampEncoded /* origin timestamp, offset 24 */
	Rec       TimestampEncoded /* receive timestamp, offset 32 */
	Xmt       TimestampEncoded /* transmit timestamp, offset 40 */
}

// NewRequest returns the client request: LI=0, VN=3, Mode=3, every other field zero.
func NewRequest() []byte {
	return EncodePacket(Packet{Version: Version, Mode: CLIENT})
}

func EncodePacket(packet Packet) []byte {
	firstByte := (packet.Leap << 6) | ((packet.Version & 0b111) << 3) | (byte(packet.Mode) & 0b111)

	var buffer bytes.Buffer
	buffer.Grow(PacketSize)
	buffer.WriteByte(firstByte)
	binary.Write(&buffer, binary.BigEndian, &packet.FieldsEncoded)
	return buffer.Bytes()
}

// DecodePacket parses the first 48 bytes of encoded. Trailing extension fields are ignored.
func DecodePacket(encoded []byte) (*Packet, error) {
	if len(encoded) < PacketSize {
		return nil, fmt.Errorf("%w: got %d", ErrShortPacket, len(encoded))
	}

	reader := bytes.NewReader(encoded[:PacketSize])
	firstByte, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}

	fieldsEncoded := FieldsEncoded{}
	if err := binary.Read(reader, binary.BigEndian, &fieldsEncoded); err != nil {
		return nil, err
	}

	return &Packet{
		Leap:          firstByte >> 6,
		Version:       (firstByte >> 3) & 0b111,
		Mode:          Mode(firstByte & 0b111),
		FieldsEncoded: fieldsEncoded,
	}, nil
}

// DecodeReferenceID renders the refid as printable ASCII for stratum 0 and 1
// (kiss codes and reference clock names) and as a dotted quad otherwise.
func DecodeReferenceID(refid [4]byte, stratum byte) string {
	if stratum == StratumKiss || stratum == StratumPrimary {
		var b strings.Builder
		for _, c := range refid {
			if c >= 0x20 && c <= 0x7e {
				b.WriteByte(c)
			}
		}
		return strings.TrimSpace(b.String())
	}
	return fmt.Sprintf("%d.%d.%d.%d", refid[0], refid[1], refid[2], refid[3])
}
