package link

import (
	"time"

	"github.com/sigurn/crc16"
)

const (
	// MaxPacketData is the largest data a packet carries.
	MaxPacketData = 0xff

	startOfFrame byte = 0xa5
	packetHeadLen     = 3
	packetTailLen     = 2
)

var crcTable = crc16.MakeTable(crc16.CRC16_MODBUS)

// PacketSeq defines the type of packet sequence number.
type PacketSeq byte

// NewPacketSeq creates a random packet sequence number.
func NewPacketSeq() PacketSeq {
	return PacketSeq(byte(time.Now().UnixNano())).Next()
}

// Next calculates the next sequence number.
func (s PacketSeq) Next() PacketSeq {
	n := byte(s) + 1
	if n == 0 || n >= 0xf0 {
		n = 1
	}
	return PacketSeq(n)
}

// IsValid checks if it's a valid sequence number.
func (s PacketSeq) IsValid() bool {
	n := byte(s)
	return n > 0 && n < 0xf0
}

// Packet is a binary-safe message.
//
// Wire format: SOF(0xa5) seq len data... crc-lo crc-hi, where the CRC
// covers seq, len and data.
type Packet struct {
	Seq  PacketSeq
	Data []byte
}

// Encode returns encoded bytes for sending.
func (p *Packet) Encode() ([]byte, error) {
	if len(p.Data) > MaxPacketData {
		return nil, ErrPacketTooLarge
	}
	b := make([]byte, packetHeadLen+len(p.Data)+packetTailLen)
	b[0], b[1], b[2] = startOfFrame, byte(p.Seq), byte(len(p.Data))
	copy(b[packetHeadLen:], p.Data)
	crc := crc16.Checksum(b[1:packetHeadLen+len(p.Data)], crcTable)
	b[len(b)-2], b[len(b)-1] = byte(crc), byte(crc>>8)
	return b, nil
}
