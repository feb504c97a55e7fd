package rcon

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Source RCON packet types.
const (
	packetTypeAuth         = 3
	packetTypeAuthResponse = 2
	packetTypeExecCommand  = 2
	packetTypeResponse     = 0
)

// maxPacketSize bounds a single inbound packet body. The protocol caps
// server responses at 4096 bytes; anything larger is malformed.
const maxPacketSize = 4110

// packet is one RCON frame: little-endian size prefix, request ID,
// type, NUL-terminated body, trailing NUL.
type packet struct {
	ID   int32
	Type int32
	Body string
}

// encodePacket serializes a packet including the size prefix.
func encodePacket(p packet) []byte {
	// size = id(4) + type(4) + body + 2 NUL terminators
	size := int32(4 + 4 + len(p.Body) + 2)
	buf := make([]byte, 4+size)

	binary.LittleEndian.PutUint32(buf[0:4], uint32(size))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(p.ID))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(p.Type))
	copy(buf[12:], p.Body)
	// Last two bytes stay zero: body terminator + packet terminator.

	return buf
}

// decodePacket reads exactly one packet from r.
func decodePacket(r io.Reader) (packet, error) {
	var sizeBuf [4]byte
	if _, err := io.ReadFull(r, sizeBuf[:]); err != nil {
		return packet{}, err
	}

	size := int32(binary.LittleEndian.Uint32(sizeBuf[:]))
	if size < 10 || size > maxPacketSize {
		return packet{}, fmt.Errorf("malformed packet: size %d out of bounds", size)
	}

	body := make([]byte, size)
	if _, err := io.ReadFull(r, body); err != nil {
		return packet{}, err
	}

	p := packet{
		ID:   int32(binary.LittleEndian.Uint32(body[0:4])),
		Type: int32(binary.LittleEndian.Uint32(body[4:8])),
	}

	// Strip the two trailing NULs.
	payload := body[8:]
	if len(payload) >= 2 {
		payload = payload[:len(payload)-2]
	}
	p.Body = string(payload)

	return p, nil
}
