package codec

import (
	"fmt"
)

// Wire framing constants.
const (
	// MagicFirst and MagicSecond prefix every command report.
	MagicFirst  = 0x32
	MagicSecond = 0xAC

	// HeaderLen is the magic plus command ID.
	HeaderLen = 3

	// MaxCommandLen is the longest legal command report (Draw).
	MaxCommandLen = 42

	// DrawPayloadLen is the bit-packed bitmap payload of a Draw command.
	DrawPayloadLen = 39
)

// CommandID identifies a device command on the wire.
type CommandID uint8

// Command IDs implemented by the input module firmware.
const (
	CmdBrightness   CommandID = 0x00
	CmdPattern      CommandID = 0x01
	CmdBootloader   CommandID = 0x02
	CmdSleep        CommandID = 0x03
	CmdAnimate      CommandID = 0x04
	CmdPanic        CommandID = 0x05
	CmdDraw         CommandID = 0x06
	CmdStageColumn  CommandID = 0x07
	CmdFlushColumns CommandID = 0x08
	CmdVersion      CommandID = 0x20
)

// String returns the command name.
func (c CommandID) String() string {
	switch c {
	case CmdBrightness:
		return "BRIGHTNESS"
	case CmdPattern:
		return "PATTERN"
	case CmdBootloader:
		return "BOOTLOADER"
	case CmdSleep:
		return "SLEEP"
	case CmdAnimate:
		return "ANIMATE"
	case CmdPanic:
		return "PANIC"
	case CmdDraw:
		return "DRAW"
	case CmdStageColumn:
		return "STAGE_COLUMN"
	case CmdFlushColumns:
		return "FLUSH_COLUMNS"
	case CmdVersion:
		return "VERSION"
	default:
		return "UNKNOWN"
	}
}

// Command is one complete command report ready for a single transport
// write: magic prefix, command ID and payload. Commands are stateless
// values regenerated per call; they hold no resources.
type Command []byte

// newCommand assembles a command report from an ID and payload.
func newCommand(id CommandID, payload ...byte) Command {
	cmd := make(Command, HeaderLen+len(payload))
	cmd[0] = MagicFirst
	cmd[1] = MagicSecond
	cmd[2] = byte(id)
	copy(cmd[HeaderLen:], payload)
	return cmd
}

// ID returns the command identifier.
// Returns an error if the report is too short or the magic is wrong.
func (c Command) ID() (CommandID, error) {
	if len(c) < HeaderLen {
		return 0, fmt.Errorf("%w: command too short (%d bytes)", ErrMalformed, len(c))
	}
	if c[0] != MagicFirst || c[1] != MagicSecond {
		return 0, fmt.Errorf("%w: bad magic %02x%02x", ErrMalformed, c[0], c[1])
	}
	return CommandID(c[2]), nil
}

// Payload returns the command payload after the header.
// Returns nil for malformed commands.
func (c Command) Payload() []byte {
	if len(c) < HeaderLen {
		return nil
	}
	return c[HeaderLen:]
}
