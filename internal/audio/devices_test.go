package audio

import (
	"context"
	"reflect"
	"testing"

	pulseproto "github.com/jfreymuth/pulse/proto"
	"github.com/stretchr/testify/require"
)

const missingPulse = "unix:/tmp/definitely-missing-pulse-server"

func TestSelectDeviceFromListPrimaryDefault(t *testing.T) {
	devices := []Device{
		{ID: "elgato", Description: "Elgato Wave 3 Mono", Available: true, Default: true},
		{ID: "sony", Description: "Sony WH-1000XM6", Available: true},
	}

	selection, err := selectDeviceFromList(devices, "default", "default")
	require.NoError(t, err)
	require.Equal(t, "elgato", selection.Device.ID)
	require.Empty(t, selection.Warning)
	require.False(t, selection.Fallback)
}

func TestSelectDeviceFromListMatchesDescription(t *testing.T) {
	devices := []Device{
		{ID: "alsa_input.a", Description: "Built-in", Available: true, Default: true},
		{ID: "alsa_input.b", Description: "Blue Yeti", Available: true},
	}

	selection, err := selectDeviceFromList(devices, "YETI", "")
	require.NoError(t, err)
	require.Equal(t, "alsa_input.b", selection.Device.ID)
}

func TestSelectDeviceFromListMutedPrimaryUsesFallback(t *testing.T) {
	devices := []Device{
		{ID: "elgato", Description: "Elgato Wave 3 Mono", Available: true, Muted: true, Default: true},
		{ID: "sony", Description: "Sony WH-1000XM6", Available: true},
	}

	selection, err := selectDeviceFromList(devices, "elgato", "sony")
	require.NoError(t, err)
	require.Equal(t, "sony", selection.Device.ID)
	require.Contains(t, selection.Warning, "muted")
	require.True(t, selection.Fallback)
}

func TestSelectDeviceFromListUnpluggedPrimaryFallsBackToDefault(t *testing.T) {
	devices := []Device{
		{ID: "usb", Description: "USB Mic", Available: false},
		{ID: "builtin", Description: "Built-in", Available: true, Default: true},
	}

	selection, err := selectDeviceFromList(devices, "usb", "default")
	require.NoError(t, err)
	require.Equal(t, "builtin", selection.Device.ID)
	require.Contains(t, selection.Warning, "unavailable")
}

func TestSelectDeviceFromListFailsWhenSelectedAndFallbackMuted(t *testing.T) {
	devices := []Device{
		{ID: "elgato", Description: "Elgato Wave 3 Mono", Available: true, Muted: true, Default: true},
	}

	_, err := selectDeviceFromList(devices, "default", "default")
	require.Error(t, err)
	require.Contains(t, err.Error(), "muted")
}

func TestSelectDeviceFromListUnknownInput(t *testing.T) {
	devices := []Device{{ID: "elgato", Description: "Elgato Wave 3 Mono", Available: true, Default: true}}

	_, err := selectDeviceFromList(devices, "missing", "default")
	require.Error(t, err)
	require.Contains(t, err.Error(), "did not match")
}

func TestSelectDeviceFromListEmpty(t *testing.T) {
	_, err := selectDeviceFromList(nil, "default", "default")
	require.Error(t, err)
}

func TestDeviceMatchesByIDAndDescription(t *testing.T) {
	dev := Device{ID: "alsa_input.usb-elgato", Description: "Elgato Wave 3 Mono"}
	require.True(t, deviceMatches(dev, "elgato"))
	require.True(t, deviceMatches(dev, "wave 3"))
	require.False(t, deviceMatches(dev, "missing"))
	require.False(t, deviceMatches(dev, ""))
}

func TestDeviceLabel(t *testing.T) {
	require.Equal(t, "Elgato (alsa_input.wave3)", Device{Description: "Elgato", ID: "alsa_input.wave3"}.Label())
	require.Equal(t, "Elgato", Device{Description: "Elgato"}.Label())
	require.Equal(t, "alsa_input.wave3", Device{ID: "alsa_input.wave3"}.Label())
}

func TestListDevicesFailsWhenPulseUnavailable(t *testing.T) {
	t.Setenv("PULSE_SERVER", missingPulse)
	_, err := ListDevices(context.Background())
	require.Error(t, err)
}

func TestSelectDeviceWrapsErrDevice(t *testing.T) {
	t.Setenv("PULSE_SERVER", missingPulse)
	_, err := SelectDevice(context.Background(), "default", "default")
	require.ErrorIs(t, err, ErrDevice)
}

func TestOpenSourceWrapsErrDevice(t *testing.T) {
	t.Setenv("PULSE_SERVER", missingPulse)
	_, err := OpenSource(context.Background(), SourceOptions{Input: "default"}, func([]byte) {})
	require.ErrorIs(t, err, ErrDevice)
}

func TestSourceStateString(t *testing.T) {
	require.Equal(t, "running", sourceStateString(0))
	require.Equal(t, "idle", sourceStateString(1))
	require.Equal(t, "suspended", sourceStateString(2))
	require.Equal(t, "unknown(99)", sourceStateString(99))
}

func TestSourceAvailable(t *testing.T) {
	require.False(t, sourceAvailable(nil))
	require.True(t, sourceAvailable(&pulseproto.GetSourceInfoReply{}))

	available := &pulseproto.GetSourceInfoReply{ActivePortName: "mic"}
	setSourcePorts(t, available, []sourcePort{{name: "mic", available: 2}})
	require.True(t, sourceAvailable(available))

	unknown := &pulseproto.GetSourceInfoReply{ActivePortName: "mic"}
	setSourcePorts(t, unknown, []sourcePort{{name: "mic", available: 0}})
	require.True(t, sourceAvailable(unknown))

	unplugged := &pulseproto.GetSourceInfoReply{ActivePortName: "mic"}
	setSourcePorts(t, unplugged, []sourcePort{{name: "line", available: 2}, {name: "mic", available: 1}})
	require.False(t, sourceAvailable(unplugged))
}

type sourcePort struct {
	name      string
	available uint32
}

// setSourcePorts fills the unexported port element type through reflection.
func setSourcePorts(t *testing.T, reply *pulseproto.GetSourceInfoReply, ports []sourcePort) {
	t.Helper()

	sliceValue := reflect.MakeSlice(reflect.TypeOf(reply.Ports), len(ports), len(ports))
	for i, port := range ports {
		item := sliceValue.Index(i)
		item.FieldByName("Name").SetString(port.name)
		item.FieldByName("Available").SetUint(uint64(port.available))
	}
	reflect.ValueOf(reply).Elem().FieldByName("Ports").Set(sliceValue)
}
