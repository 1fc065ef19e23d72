package link

import "errors"

var (
	// ErrSentinelInPayload indicates the payload contains the sentinel
	// before its end and can't be sent as text.
	ErrSentinelInPayload = errors.New("sentinel in payload")
	// ErrMessageTooLong indicates a received message exceeds the buffer.
	// The message is drained up to its sentinel and discarded.
	ErrMessageTooLong = errors.New("message too long")
	// ErrPacketTooLarge indicates the packet data exceeds MaxPacketData.
	ErrPacketTooLarge = errors.New("packet too large")
	// ErrChecksum indicates a frame failed the CRC check.
	ErrChecksum = errors.New("checksum mismatch")
	// ErrByteTooWide indicates a byte to send doesn't fit the data bits
	// of the frame and would arrive truncated.
	ErrByteTooWide = errors.New("byte wider than frame data bits")
	// ErrBadSequence indicates a frame header carries an invalid sequence.
	ErrBadSequence = errors.New("bad sequence number")
)
