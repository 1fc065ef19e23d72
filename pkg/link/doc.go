// Package link provides message framing over a byte transport.
package link

// Two framings are supported between the HMI and the Control node.
//
// Text framing is the native one: a message is plain bytes followed by
// the reserved Sentinel '#'. It carries ASCII commands only, a payload
// can't contain the sentinel.
//
// Packet framing is binary-safe: each message is prefixed with a start
// byte, a sequence number and its length, and is followed by a
// CRC-16/MODBUS checksum. A corrupted frame is dropped and the parser
// hunts for the next start byte.
