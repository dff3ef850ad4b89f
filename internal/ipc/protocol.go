// Package ipc carries tasks from a shell process to the re-executed child
// that runs them.
package ipc

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"

	"github.com/marcelocantos/treesh/internal/tree"
)

// Frame tags identify the type of each IPC message.
const (
	TagTask byte = 0x01 // parent→child: CBOR-encoded Task
)

// TaskFD is the descriptor on which a child receives its task.
const TaskFD = 3

// Role selects what a child does with its task node.
type Role string

const (
	RoleEval     Role = "eval"     // evaluate Node as given
	RoleSubshell Role = "subshell" // apply Node's redirections and locals, evaluate Node.Left
	RoleBuiltin  Role = "builtin"  // apply Node's redirections and locals, run the built-in Node.Argv[0]
)

// Task is the single frame a parent sends to a child.
type Task struct {
	Role      Role       `cbor:"role"`
	Node      *tree.Node `cbor:"node"`
	StatusVar string     `cbor:"status_var,omitempty"`
	HomeVar   string     `cbor:"home_var,omitempty"`
	LogLevel  string     `cbor:"log_level,omitempty"`
	RunID     string     `cbor:"run_id,omitempty"`
}

var (
	encMode = mustEncMode()
	decMode = mustDecMode()
)

func mustEncMode() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}

func mustDecMode() cbor.DecMode {
	dm, err := cbor.DecOptions{
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
	}.DecMode()
	if err != nil {
		panic(err)
	}
	return dm
}

// WriteFrame writes a tagged frame: [tag:1][len:4 big-endian][payload:len].
func WriteFrame(w io.Writer, tag byte, payload []byte) error {
	var header [5]byte
	header[0] = tag
	binary.BigEndian.PutUint32(header[1:], uint32(len(payload)))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("write frame header: %w", err)
	}
	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return fmt.Errorf("write frame payload: %w", err)
		}
	}
	return nil
}

// ReadFrame reads one tagged frame, returning the tag and payload.
func ReadFrame(r io.Reader) (byte, []byte, error) {
	var header [5]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return 0, nil, err
	}
	tag := header[0]
	length := binary.BigEndian.Uint32(header[1:])
	payload := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return 0, nil, fmt.Errorf("read frame payload: %w", err)
		}
	}
	return tag, payload, nil
}

// WriteCBOR writes a tagged frame with a CBOR-encoded payload.
func WriteCBOR(w io.Writer, tag byte, v any) error {
	data, err := encMode.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal frame: %w", err)
	}
	return WriteFrame(w, tag, data)
}

// SendTask writes t as a TagTask frame.
func SendTask(w io.Writer, t Task) error {
	return WriteCBOR(w, TagTask, t)
}

// ReceiveTask reads one TagTask frame and checks the node it carries.
func ReceiveTask(r io.Reader) (Task, error) {
	tag, payload, err := ReadFrame(r)
	if err != nil {
		return Task{}, fmt.Errorf("read task: %w", err)
	}
	if tag != TagTask {
		return Task{}, fmt.Errorf("read task: unexpected frame tag 0x%02x", tag)
	}
	var t Task
	if err := decMode.Unmarshal(payload, &t); err != nil {
		return Task{}, fmt.Errorf("unmarshal task: %w", err)
	}
	switch t.Role {
	case RoleEval, RoleSubshell, RoleBuiltin:
	default:
		return Task{}, fmt.Errorf("unknown task role %q", t.Role)
	}
	if err := t.Node.Validate(); err != nil {
		return Task{}, fmt.Errorf("task node: %w", err)
	}
	return t, nil
}
