package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// MaxFrameSize bounds the encoded envelope of a single message.
const MaxFrameSize = 64 << 10

const frameHeaderSize = 4

// Codec errors.
var (
	ErrUnknownMessageType = errors.New("unknown message type")
	ErrUnsupportedVersion = errors.New("unsupported protocol version")
	ErrFrameTooLarge      = errors.New("frame too large")
	ErrEmptyFrame         = errors.New("empty frame")
)

// envelope is the msgpack body of every frame.
type envelope struct {
	Version uint8       `msgpack:"v"`
	Type    MessageType `msgpack:"t"`
	Payload string      `msgpack:"p"`
}

// Marshal encodes m as a versioned envelope without framing.
func Marshal(m Message) ([]byte, error) {
	if !m.Type.Valid() {
		return nil, fmt.Errorf("marshal %s: %w", m.Type, ErrUnknownMessageType)
	}
	b, err := msgpack.Marshal(&envelope{Version: Version, Type: m.Type, Payload: m.Payload})
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", m.Type, err)
	}
	if len(b) > MaxFrameSize {
		return nil, fmt.Errorf("marshal %s: %w", m.Type, ErrFrameTooLarge)
	}
	return b, nil
}

// Unmarshal decodes an envelope produced by Marshal.
// An unknown type is reported with ErrUnknownMessageType after the envelope itself decoded
// cleanly, so callers can drop the message and keep reading.
func Unmarshal(b []byte) (Message, error) {
	if len(b) == 0 {
		return Message{}, ErrEmptyFrame
	}
	var e envelope
	if err := msgpack.Unmarshal(b, &e); err != nil {
		return Message{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if e.Version != Version {
		return Message{}, fmt.Errorf("envelope version %d: %w", e.Version, ErrUnsupportedVersion)
	}
	if !e.Type.Valid() {
		return Message{}, fmt.Errorf("envelope type %d: %w", uint8(e.Type), ErrUnknownMessageType)
	}
	return Message{Type: e.Type, Payload: e.Payload}, nil
}

// WriteFrame writes m to w as a 4-byte big-endian length followed by the envelope.
func WriteFrame(w io.Writer, m Message) error {
	body, err := Marshal(m)
	if err != nil {
		return err
	}
	frame := make([]byte, frameHeaderSize+len(body))
	binary.BigEndian.PutUint32(frame, uint32(len(body)))
	copy(frame[frameHeaderSize:], body)
	_, err = w.Write(frame)
	return err
}

// ReadFrame reads one length-prefixed envelope from r.
func ReadFrame(r io.Reader) (Message, error) {
	var header [frameHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return Message{}, err
	}
	n := binary.BigEndian.Uint32(header[:])
	if n == 0 {
		return Message{}, ErrEmptyFrame
	}
	if n > MaxFrameSize {
		return Message{}, fmt.Errorf("frame of %d bytes: %w", n, ErrFrameTooLarge)
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return Message{}, err
	}
	return Unmarshal(body)
}
