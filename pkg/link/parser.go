package link

import "github.com/sigurn/crc16"

// Parser parses packet bytes received.
type Parser struct {
	// Dropped counts frames discarded since creation.
	Dropped int

	state   parseState
	frame   []byte
	dataLen int
	crcLo   byte
	lastErr error
}

// ParseResult indicates the result after one parsing step.
type ParseResult struct {
	Packet *Packet
	// Err is set when a frame is dropped.
	Err error
}

type parseState int

const (
	stateStart parseState = iota // hunting for SOF
	stateSeq                     // waiting for sequence
	stateLen                     // waiting for data length
	stateData                    // waiting for data
	stateCRCLo                   // waiting for CRC low byte
	stateCRCHi                   // waiting for CRC high byte
)

// Receiving indicates a frame is partially received.
func (p *Parser) Receiving() bool {
	return p.state != stateStart
}

// LastError returns the reason of the last dropped frame.
func (p *Parser) LastError() error {
	return p.lastErr
}

// Reset discards the partial frame.
func (p *Parser) Reset() {
	p.state, p.frame = stateStart, nil
}

// Parse consumes one byte.
func (p *Parser) Parse(b byte) (pr ParseResult) {
	switch p.state {
	case stateStart:
		if b == startOfFrame {
			p.state = stateSeq
		}
	case stateSeq:
		if !PacketSeq(b).IsValid() {
			return p.drop(ErrBadSequence)
		}
		p.frame = append(p.frame[:0], b)
		p.state = stateLen
	case stateLen:
		p.frame = append(p.frame, b)
		p.dataLen = int(b)
		if p.dataLen == 0 {
			p.state = stateCRCLo
		} else {
			p.state = stateData
		}
	case stateData:
		p.frame = append(p.frame, b)
		if len(p.frame) >= 2+p.dataLen {
			p.state = stateCRCLo
		}
	case stateCRCLo:
		p.crcLo, p.state = b, stateCRCHi
	case stateCRCHi:
		crc := uint16(p.crcLo) | uint16(b)<<8
		if crc16.Checksum(p.frame, crcTable) != crc {
			return p.drop(ErrChecksum)
		}
		pr.Packet = &Packet{Seq: PacketSeq(p.frame[0])}
		if p.dataLen > 0 {
			pr.Packet.Data = append([]byte(nil), p.frame[2:]...)
		}
		p.Reset()
	}
	return
}

func (p *Parser) drop(err error) ParseResult {
	p.Reset()
	p.Dropped++
	p.lastErr = err
	return ParseResult{Err: err}
}
