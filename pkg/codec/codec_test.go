package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inputmodule/inputmodule-go/pkg/descriptor"
	"github.com/inputmodule/inputmodule-go/pkg/frame"
)

func TestEncodeFrame(t *testing.T) {
	t.Run("MatrixShape", func(t *testing.T) {
		f := frame.MustNew(MatrixWidth, MatrixHeight)
		cmds, err := EncodeFrame(f, descriptor.KindLedMatrix)
		require.NoError(t, err)

		// One stage command per column plus the flush
		require.Len(t, cmds, MatrixWidth+1)

		for x := 0; x < MatrixWidth; x++ {
			id, err := cmds[x].ID()
			require.NoError(t, err)
			assert.Equal(t, CmdStageColumn, id)
			assert.Equal(t, byte(x), cmds[x].Payload()[0])
			assert.Len(t, cmds[x].Payload(), 1+MatrixHeight)
		}

		id, err := cmds[MatrixWidth].ID()
		require.NoError(t, err)
		assert.Equal(t, CmdFlushColumns, id)
	})

	t.Run("MagicPrefix", func(t *testing.T) {
		f := frame.MustNew(MatrixWidth, MatrixHeight)
		cmds, err := EncodeFrame(f, descriptor.KindLedMatrix)
		require.NoError(t, err)

		for _, cmd := range cmds {
			assert.Equal(t, byte(MagicFirst), cmd[0])
			assert.Equal(t, byte(MagicSecond), cmd[1])
			assert.LessOrEqual(t, len(cmd), MaxCommandLen)
		}
	})

	t.Run("DimensionMismatch", func(t *testing.T) {
		f := frame.MustNew(10, MatrixHeight)
		_, err := EncodeFrame(f, descriptor.KindLedMatrix)
		assert.ErrorIs(t, err, ErrDimensionMismatch)
	})

	t.Run("UnknownKind", func(t *testing.T) {
		f := frame.MustNew(MatrixWidth, MatrixHeight)
		_, err := EncodeFrame(f, descriptor.KindOther)
		assert.ErrorIs(t, err, ErrUnknownKind)
	})

	t.Run("BacklightClamping", func(t *testing.T) {
		f := frame.MustNew(BacklightZones, 1)
		require.NoError(t, f.Set(0, 0, 250)) // above the 0-100 scale
		require.NoError(t, f.Set(1, 0, 100))
		require.NoError(t, f.Set(2, 0, 7))

		cmds, err := EncodeFrame(f, descriptor.KindKeyboardBacklight)
		require.NoError(t, err)
		require.Len(t, cmds, 1)

		payload := cmds[0].Payload()
		assert.Equal(t, byte(BacklightMaxIntensity), payload[0], "out-of-range intensity must clamp to the boundary")
		assert.Equal(t, byte(100), payload[1])
		assert.Equal(t, byte(7), payload[2])
	})

	t.Run("Deterministic", func(t *testing.T) {
		f := frame.MustNew(MatrixWidth, MatrixHeight)
		f.DrawBox(1, 1, 7, 30, 42)

		a, err := EncodeFrame(f, descriptor.KindLedMatrix)
		require.NoError(t, err)
		b, err := EncodeFrame(f, descriptor.KindLedMatrix)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})
}

func TestFrameRoundTrip(t *testing.T) {
	for _, kind := range []descriptor.Kind{descriptor.KindLedMatrix, descriptor.KindKeyboardBacklight} {
		t.Run(kind.String(), func(t *testing.T) {
			w, h, ok := GridSize(kind)
			require.True(t, ok)
			max, ok := MaxIntensity(kind)
			require.True(t, ok)

			f := frame.MustNew(w, h)
			for x := 0; x < w; x++ {
				for y := 0; y < h; y++ {
					require.NoError(t, f.Set(x, y, byte((x*31+y*7)%256)))
				}
			}

			cmds, err := EncodeFrame(f, kind)
			require.NoError(t, err)

			got, err := DecodeFrame(cmds, kind)
			require.NoError(t, err)

			// Round-trip reproduces the clamped intensities exactly
			for x := 0; x < w; x++ {
				for y := 0; y < h; y++ {
					want, _ := f.At(x, y)
					if want > max {
						want = max
					}
					v, _ := got.At(x, y)
					require.Equal(t, want, v, "pixel (%d, %d)", x, y)
				}
			}
		})
	}
}

func TestDecodeFrameMalformed(t *testing.T) {
	t.Run("MissingFlush", func(t *testing.T) {
		f := frame.MustNew(MatrixWidth, MatrixHeight)
		cmds, err := EncodeFrame(f, descriptor.KindLedMatrix)
		require.NoError(t, err)

		_, err = DecodeFrame(cmds[:len(cmds)-1], descriptor.KindLedMatrix)
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("MissingColumn", func(t *testing.T) {
		f := frame.MustNew(MatrixWidth, MatrixHeight)
		cmds, err := EncodeFrame(f, descriptor.KindLedMatrix)
		require.NoError(t, err)

		// Drop one stage command but keep the flush
		partial := append([]Command{}, cmds[1:]...)
		_, err = DecodeFrame(partial, descriptor.KindLedMatrix)
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("TruncatedPayload", func(t *testing.T) {
		bad := []Command{newCommand(CmdStageColumn, make([]byte, MatrixHeight)...)}
		_, err := DecodeFrame(bad, descriptor.KindLedMatrix)
		assert.ErrorIs(t, err, ErrMalformed)
	})
}

func TestEncodeBitmap(t *testing.T) {
	t.Run("Layout", func(t *testing.T) {
		b := frame.MustNewBitmap(MatrixWidth, MatrixHeight)
		require.NoError(t, b.Set(0, 0, true))
		require.NoError(t, b.Set(4, 0, true))
		require.NoError(t, b.Set(4, 4, true))

		cmd, err := EncodeBitmap(b, descriptor.KindLedMatrix)
		require.NoError(t, err)
		require.Len(t, cmd, HeaderLen+DrawPayloadLen)
		assert.Equal(t, MaxCommandLen, len(cmd))

		id, err := cmd.ID()
		require.NoError(t, err)
		assert.Equal(t, CmdDraw, id)

		payload := cmd.Payload()
		assert.NotZero(t, payload[0]&1, "pixel (0, 0) is bit 0")
		assert.NotZero(t, payload[17]&(1<<0), "pixel (4, 0) is bit 136")
		assert.NotZero(t, payload[17]&(1<<4), "pixel (4, 4) is bit 140")
	})

	t.Run("WrongKind", func(t *testing.T) {
		b := frame.MustNewBitmap(MatrixWidth, MatrixHeight)
		_, err := EncodeBitmap(b, descriptor.KindKeyboardBacklight)
		assert.ErrorIs(t, err, ErrUnknownKind)
	})

	t.Run("WrongShape", func(t *testing.T) {
		b := frame.MustNewBitmap(8, MatrixHeight)
		_, err := EncodeBitmap(b, descriptor.KindLedMatrix)
		assert.ErrorIs(t, err, ErrDimensionMismatch)
	})
}

func TestEncodeBrightness(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		cmd, err := EncodeBrightness(0x40)
		require.NoError(t, err)

		id, err := cmd.ID()
		require.NoError(t, err)
		assert.Equal(t, CmdBrightness, id)
		assert.Equal(t, []byte{0x40}, cmd.Payload())
	})

	t.Run("OutOfRangeNoClamp", func(t *testing.T) {
		// Brightness is a discrete global setting: no silent clamping
		for _, level := range []int{-1, 256, 1000} {
			_, err := EncodeBrightness(level)
			assert.ErrorIs(t, err, ErrOutOfRange, "level %d", level)
		}
	})

	t.Run("Boundaries", func(t *testing.T) {
		for _, level := range []int{0, 255} {
			_, err := EncodeBrightness(level)
			assert.NoError(t, err, "level %d", level)
		}
	})
}

func TestEncodePattern(t *testing.T) {
	cmd, err := EncodePattern(PatternZigZag)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x04}, cmd.Payload())

	_, err = EncodePattern(Pattern(0x55))
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestEncodePercentage(t *testing.T) {
	cmd, err := EncodePercentage(42)
	require.NoError(t, err)

	id, err := cmd.ID()
	require.NoError(t, err)
	assert.Equal(t, CmdPattern, id)
	assert.Equal(t, []byte{0x00, 42}, cmd.Payload())

	_, err = EncodePercentage(101)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = EncodePercentage(-1)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestEncodeSleep(t *testing.T) {
	assert.Equal(t, []byte{1}, EncodeSleep(true).Payload())
	assert.Equal(t, []byte{0}, EncodeSleep(false).Payload())
}

func TestStatusRoundTrip(t *testing.T) {
	statuses := []Status{
		{},
		{Brightness: 0xFF, Sleeping: true, Version: FirmwareVersion{Major: 1, Minor: 2, Patch: 3}},
		{Brightness: 25, Sleeping: false, Version: FirmwareVersion{Major: 0, Minor: 9, Patch: 0}},
	}

	for _, s := range statuses {
		got, err := DecodeStatus(EncodeStatusReport(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestDecodeStatus(t *testing.T) {
	t.Run("TrailingPaddingIgnored", func(t *testing.T) {
		report := make([]byte, 32)
		copy(report, EncodeStatusReport(Status{Brightness: 10}))

		s, err := DecodeStatus(report)
		require.NoError(t, err)
		assert.Equal(t, uint8(10), s.Brightness)
	})

	t.Run("TooShort", func(t *testing.T) {
		_, err := DecodeStatus([]byte{1, 0})
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("BadSleepFlag", func(t *testing.T) {
		_, err := DecodeStatus([]byte{10, 7, 1, 0, 0})
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := DecodeStatus(nil)
		assert.ErrorIs(t, err, ErrMalformed)
	})
}

func TestCommandID(t *testing.T) {
	t.Run("BadMagic", func(t *testing.T) {
		_, err := Command([]byte{0x00, 0x00, 0x06}).ID()
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("TooShort", func(t *testing.T) {
		_, err := Command([]byte{MagicFirst}).ID()
		assert.ErrorIs(t, err, ErrMalformed)
	})
}
