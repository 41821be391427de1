package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/beanz-y/not-the-end/hero"
)

// Command strings as they appear on the wire.
const (
	CmdConnect     = "connect"
	CmdUpdateSheet = "update_sheet"
	CmdDrawResult  = "draw_result"
	CmdStartTest   = "start_test"
)

// ErrUnknownCommand is returned by Decode for a well-formed envelope whose
// command is not part of the schema. Dispatchers treat it as a no-op, not
// a connection failure.
var ErrUnknownCommand = errors.New("unknown command")

// Message is the closed set of wire commands. Dispatch with a type switch;
// the only non-member case a receiver can see is ErrUnknownCommand from
// Decode.
type Message interface {
	command() string
}

// Connect is the player's handshake. It registers the player in the
// narrator's roster with its current sheet.
type Connect struct {
	Command string     `json:"command"`
	Data    hero.Sheet `json:"data"`
}

// UpdateSheet propagates a live sheet edit. The roster entry is replaced
// wholesale; there is no field-level merge.
type UpdateSheet struct {
	Command string     `json:"command"`
	Data    hero.Sheet `json:"data"`
}

// DrawResult is the terminal tally of a completed test, player to narrator.
type DrawResult struct {
	Command       string `json:"command"`
	Successes     int    `json:"successes"`
	Complications int    `json:"complications"`
}

// StartTest begins a test on the player side. Danger is display-only and
// never changes the draw composition.
type StartTest struct {
	Command    string `json:"command"`
	Difficulty int    `json:"difficulty"`
	Danger     int    `json:"danger"`
}

func (*Connect) command() string     { return CmdConnect }
func (*UpdateSheet) command() string { return CmdUpdateSheet }
func (*DrawResult) command() string  { return CmdDrawResult }
func (*StartTest) command() string   { return CmdStartTest }

// NewConnect builds a connect command from a normalized sheet copy.
func NewConnect(s hero.Sheet) *Connect {
	s.Normalize()
	return &Connect{Command: CmdConnect, Data: s}
}

// NewUpdateSheet builds an update_sheet command from a normalized sheet copy.
func NewUpdateSheet(s hero.Sheet) *UpdateSheet {
	s.Normalize()
	return &UpdateSheet{Command: CmdUpdateSheet, Data: s}
}

// NewDrawResult builds a draw_result command.
func NewDrawResult(successes, complications int) *DrawResult {
	return &DrawResult{Command: CmdDrawResult, Successes: successes, Complications: complications}
}

// NewStartTest builds a start_test command.
func NewStartTest(difficulty, danger int) *StartTest {
	return &StartTest{Command: CmdStartTest, Difficulty: difficulty, Danger: danger}
}

// Envelope is the generic shape of any inbound message. The Command field
// is used for routing; Raw holds the full JSON payload.
type Envelope struct {
	Command string          `json:"command"`
	Raw     json.RawMessage `json:"-"`
}

// UnmarshalJSON captures the raw payload alongside the routing field.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	type commandOnly struct {
		Command string `json:"command"`
	}
	var c commandOnly
	if err := json.Unmarshal(data, &c); err != nil {
		return err
	}
	e.Command = c.Command
	e.Raw = json.RawMessage(data)
	return nil
}

// Decode parses one framed payload into its typed command. A payload that
// is not valid JSON, or that fails to parse as the shape its command
// requires, returns a parse error; the receiving connection must be
// aborted on such errors. Out-of-schema commands return ErrUnknownCommand.
func Decode(data []byte) (Message, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decoding envelope: %w", err)
	}

	switch env.Command {
	case CmdConnect:
		var msg Connect
		if err := json.Unmarshal(env.Raw, &msg); err != nil {
			return nil, fmt.Errorf("decoding connect: %w", err)
		}
		msg.Data.Normalize()
		return &msg, nil
	case CmdUpdateSheet:
		var msg UpdateSheet
		if err := json.Unmarshal(env.Raw, &msg); err != nil {
			return nil, fmt.Errorf("decoding update_sheet: %w", err)
		}
		msg.Data.Normalize()
		return &msg, nil
	case CmdDrawResult:
		var msg DrawResult
		if err := json.Unmarshal(env.Raw, &msg); err != nil {
			return nil, fmt.Errorf("decoding draw_result: %w", err)
		}
		return &msg, nil
	case CmdStartTest:
		var msg StartTest
		if err := json.Unmarshal(env.Raw, &msg); err != nil {
			return nil, fmt.Errorf("decoding start_test: %w", err)
		}
		return &msg, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, env.Command)
	}
}

// Encode marshals a message to its single-line wire form (no trailing
// newline; framing is the transport's job).
func Encode(msg Message) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", msg.command(), err)
	}
	return data, nil
}
