// go-bleradio
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-bleradio.
//
// go-bleradio is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-bleradio is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-bleradio; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package bleradio

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	testutil "github.com/ZaparooProject/go-bleradio/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTimeout = 2 * time.Second

// newTestRadio starts a radio on a mock transport answered by a virtual radio
func newTestRadio(t *testing.T, opts ...Option) (*Radio, *MockTransport, *testutil.VirtualRadio) {
	t.Helper()

	vr := testutil.NewVirtualRadio()
	mock := NewMockTransportWithResponder(vr.Respond)
	radio, err := New(mock, opts...)
	require.NoError(t, err)
	require.NoError(t, radio.Init(context.Background(), nil))
	t.Cleanup(func() { _ = radio.Close() })
	return radio, mock, vr
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	t.Cleanup(cancel)
	return ctx
}

func nextEvent(t *testing.T, radio *Radio) Event {
	t.Helper()
	ev, err := radio.GetEvent(testContext(t))
	require.NoError(t, err)
	return ev
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		transport Transport
		name      string
		opts      []Option
		wantErr   bool
	}{
		{
			name:      "Valid_MockTransport",
			transport: NewMockTransport(),
		},
		{
			name:    "Nil_Transport",
			wantErr: true,
		},
		{
			name:      "Zero_Command_Timeout",
			transport: NewMockTransport(),
			opts:      []Option{WithCommandTimeout(0)},
			wantErr:   true,
		},
		{
			name:      "Zero_Queue_Depth",
			transport: NewMockTransport(),
			opts:      []Option{WithEventQueueDepth(0)},
			wantErr:   true,
		},
		{
			name:      "Nil_Logger",
			transport: NewMockTransport(),
			opts:      []Option{WithLogger(nil)},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			radio, err := New(tt.transport, tt.opts...)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, radio)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.transport, radio.Transport())
			assert.False(t, radio.Running())
		})
	}
}

func TestRadio_Init(t *testing.T) {
	t.Parallel()

	t.Run("Transport_Init_Error", func(t *testing.T) {
		t.Parallel()
		mock := NewMockTransport()
		mock.SetInitError(ErrDeviceNotFound)
		radio, err := New(mock)
		require.NoError(t, err)

		err = radio.Init(context.Background(), nil)
		require.ErrorIs(t, err, ErrDeviceNotFound)
		assert.False(t, radio.Running())
	})

	t.Run("Twice", func(t *testing.T) {
		t.Parallel()
		radio, _, _ := newTestRadio(t)
		assert.ErrorIs(t, radio.Init(context.Background(), nil), ErrAlreadyRunning)
	})

	t.Run("Command_Before_Init", func(t *testing.T) {
		t.Parallel()
		radio, err := New(NewMockTransport())
		require.NoError(t, err)

		err = radio.Reset(context.Background())
		require.ErrorIs(t, err, ErrNotRunning)
		assert.Equal(t, ResponseFailure, EventOf(err))
	})

	t.Run("Stops_On_Context_Cancel", func(t *testing.T) {
		t.Parallel()
		radio, err := New(NewMockTransport())
		require.NoError(t, err)
		ctx, cancel := context.WithCancel(context.Background())
		require.NoError(t, radio.Init(ctx, nil))
		cancel()
		assert.Eventually(t, func() bool { return !radio.Running() }, testTimeout, time.Millisecond)
		require.NoError(t, radio.Close())
	})
}

func TestRadio_InitAfterTransportFailure(t *testing.T) {
	t.Parallel()

	radio, mock, _ := newTestRadio(t)
	mock.SetReadError(NewTransportError("read", "mock", ErrTransportRead, ErrorTypePermanent))
	require.Eventually(t, func() bool { return !radio.Running() }, testTimeout, time.Millisecond)

	stopped := radio.done
	require.NoError(t, radio.Init(context.Background(), nil))
	assert.True(t, radio.Running())
	assert.NotEqual(t, stopped, radio.done)
	select {
	case <-stopped:
	default:
		t.Fatal("previous receive loop still running")
	}

	_, err := radio.GetControllerVersion(testContext(t))
	require.NoError(t, err)
}

func TestRadio_GetControllerVersion(t *testing.T) {
	t.Parallel()

	radio, mock, _ := newTestRadio(t)

	v, err := radio.GetControllerVersion(testContext(t))
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0201), v.ManufacturerID)
	assert.Equal(t, uint16(0x0403), v.LMPSubVersion)

	written := mock.Written()
	require.Len(t, written, 1)
	assert.Equal(t, []byte{0x01, 0x20, 0xFC, 0x02, 0x01, 0x00}, written[0])
}

func TestRadio_Commands(t *testing.T) {
	t.Parallel()

	radio, mock, vr := newTestRadio(t)
	ctx := testContext(t)

	require.NoError(t, radio.Reset(ctx))
	require.NoError(t, radio.RegisterDevice(ctx, RoleCentral))
	assert.True(t, vr.Registered())

	addr, err := radio.GetLocalAddress(ctx)
	require.NoError(t, err)
	assert.Equal(t, AddressPublic, addr.Type)
	assert.Equal(t, "11:22:33:44:55:66", addr.Address.String())

	list, err := radio.GetConnectionList(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uint16{0x0040}, list.List())

	rssi, err := radio.GetConnectionRSSI(ctx, 0x0040)
	require.NoError(t, err)
	assert.Equal(t, int8(-60), rssi)

	level, err := radio.GetLinkSecurity(ctx, 0x0040)
	require.NoError(t, err)
	assert.Equal(t, SecurityAuthenticated, level)

	require.NoError(t, radio.SetMode(ctx, GeneralDiscoverable, UndirectedConnectable))
	require.NoError(t, radio.SetAdvertisingInterval(ctx, 0x00A0))
	require.NoError(t, radio.ConfigureSecurity(ctx, IOKeyboardDisplay, true, true))
	require.NoError(t, radio.SetPasskey(ctx, 0x0040, 123456))
	require.NoError(t, radio.StartTransmitterTest(ctx, 39, 37, Payload10101010))
	require.NoError(t, radio.StartReceiverTest(ctx, 0))

	count, err := radio.EndTest(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint16(1000), count)

	require.NoError(t, radio.RegisterFindMeTarget(ctx))
	require.NoError(t, radio.SetFindMeAlert(ctx, 0x0040, AlertHigh))
	require.NoError(t, radio.RegisterProximityReporter(ctx))
	require.NoError(t, radio.RegisterDataExchangeServer(ctx))
	require.NoError(t, radio.VendorCommand(ctx, 0xBEEF, []byte{1, 2, 3}))
	require.NoError(t, radio.StopInquiry(ctx))

	assert.Equal(t, []Opcode{
		OpCoreReset, OpGAPRegisterDevice, OpGAPGetLocalAddress, OpGAPGetConnectionList,
		OpGAPGetConnectionRSSI, OpSMPGetLinkSecurity, OpGAPSetMode, OpGAPSetAdvertisingInterval,
		OpSMPConfigure, OpSMPSetPasskey, OpTestTransmitter, OpTestReceiver, OpTestEnd,
		OpFindMeRegisterTarget, OpFindMeSetAlert, OpProximityRegisterReporter,
		OpDataExchangeRegisterServer, OpCoreVendorCommand, OpGAPStopInquiry,
	}, mock.WrittenOpcodes())

	written := mock.Written()
	assert.Equal(t, []byte{0x40, 0x00, 0x40, 0xE2, 0x01, 0x00}, written[9][6:], "passkey params")
	assert.Equal(t, []byte{0xEF, 0xBE, 0x03, 1, 2, 3}, written[17][6:], "vendor params")
}

func TestRadio_EchoRoundTrip(t *testing.T) {
	t.Parallel()

	radio, _, _ := newTestRadio(t)
	ctx := testContext(t)

	adv := []byte{0x02, 0x01, 0x06, 0x05, 0x09, 'n', 'o', 'd', 'e'}
	require.NoError(t, radio.SetAdvertisingData(ctx, adv))
	got, err := radio.GetAdvertisingData(ctx)
	require.NoError(t, err)
	assert.Equal(t, adv, got.Bytes())

	require.NoError(t, radio.SetLocalName(ctx, "sensor-01"))
	require.NoError(t, radio.GetLocalName(ctx))
	assert.Equal(t, EventGAPLocalName, nextEvent(t, radio))
	assert.Equal(t, "sensor-01", radio.LocalName())
}

func TestRadio_EventFollowsCommands(t *testing.T) {
	t.Parallel()

	radio, _, _ := newTestRadio(t)
	ctx := testContext(t)

	require.NoError(t, radio.Connect(ctx, AddressRandom, BDAddr(testutil.TestPeerAddress), DefaultConnParams()))
	n, err := radio.NextEvent(ctx)
	require.NoError(t, err)
	assert.Equal(t, EventGAPConnected, n.Event)
	info := radio.ConnectionInfo()
	assert.Equal(t, info, n.Data)
	assert.True(t, info.Connected)
	assert.Equal(t, uint16(0x0041), info.Handle)
	assert.Equal(t, RoleCentral, info.Role)
	assert.Equal(t, AddressRandom, info.PeerAddressType)
	assert.Equal(t, BDAddr(testutil.TestPeerAddress), info.PeerAddress)
	assert.Equal(t, uint16(0x0028), info.Interval)
	assert.Equal(t, uint16(0x01F4), info.SupervisionTimeout)

	require.NoError(t, radio.Pair(ctx, 0x0041))
	assert.Equal(t, EventSMPPasskeyDisplay, nextEvent(t, radio))
	pairing := radio.PairingInfo()
	assert.Equal(t, PairingPasskeyDisplay, pairing.Kind)
	assert.Equal(t, uint32(123456), pairing.Passkey)

	require.NoError(t, radio.SendData(ctx, 0x0041, []byte("hello")))
	assert.Equal(t, EventDataExchangeTxComplete, nextEvent(t, radio))

	require.NoError(t, radio.GenerateRandomAddress(ctx))
	assert.Equal(t, EventGAPRandomAddress, nextEvent(t, radio))
	assert.Equal(t, BDAddr(testutil.TestRandomAddr), radio.RandomAddress())

	require.NoError(t, radio.Disconnect(ctx, 0x0041))
	assert.Equal(t, EventGAPDisconnected, nextEvent(t, radio))
	info = radio.ConnectionInfo()
	assert.False(t, info.Connected)
	assert.Equal(t, byte(0x13), info.DisconnectReason)
}

func TestRadio_Inquiry(t *testing.T) {
	t.Parallel()

	radio, _, _ := newTestRadio(t)
	ctx := testContext(t)

	require.NoError(t, radio.StartInquiry(ctx, InquiryGeneral, 5))
	assert.Equal(t, EventGAPInquiryResult, nextEvent(t, radio))
	assert.Equal(t, EventGAPInquiryComplete, nextEvent(t, radio))

	res := radio.InquiryResult()
	assert.Equal(t, BDAddr(testutil.TestPeerAddress), res.Address)
	assert.Equal(t, int8(-60), res.RSSI)
	assert.Equal(t, []byte{0x02, 0x01, 0x06}, res.AdvData())
}

func TestRadio_IsDeviceBonded(t *testing.T) {
	t.Parallel()

	radio, _, vr := newTestRadio(t)
	ctx := testContext(t)

	bonded, err := radio.IsDeviceBonded(ctx, AddressPublic, BDAddr(testutil.TestPeerAddress))
	require.NoError(t, err)
	assert.True(t, bonded)

	bonded, err = radio.IsDeviceBonded(ctx, AddressPublic, BDAddr(testutil.TestAddress))
	require.NoError(t, err, "not bonded is a successful answer")
	assert.False(t, bonded)

	require.NoError(t, radio.DeleteBonds(ctx))
	bonded, err = radio.IsDeviceBonded(ctx, AddressPublic, BDAddr(testutil.TestPeerAddress))
	require.NoError(t, err)
	assert.False(t, bonded)

	vr.Status[uint16(OpSMPIsDeviceBonded)] = testutil.StatusBusy
	_, err = radio.IsDeviceBonded(ctx, AddressPublic, BDAddr(testutil.TestPeerAddress))
	require.ErrorIs(t, err, ErrRadioStatus)
	assert.Equal(t, ResponseBusy, EventOf(err))
}

func TestRadio_RadioStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status byte
		want   Event
	}{
		{name: "Failure", status: 0x02, want: ResponseFailure},
		{name: "Busy", status: 0x03, want: ResponseBusy},
		{name: "Insufficient_Authentication", status: 0x04, want: ResponseInsufficientAuthentication},
		{name: "Insufficient_Authorization", status: 0x05, want: ResponseInsufficientAuthorization},
		{name: "Insufficient_Encryption", status: 0x06, want: ResponseInsufficientEncryption},
		{name: "Insufficient_Key_Size", status: 0x07, want: ResponseInsufficientEncryptionKeySize},
		{name: "Invalid_Params", status: 0x08, want: ResponseInvalidParams},
		{name: "No_Resources", status: 0x09, want: ResponseNoResources},
		{name: "Not_Supported", status: 0x0A, want: ResponseNotSupported},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			radio, _, vr := newTestRadio(t)
			vr.Status[uint16(OpCoreGetControllerVersion)] = tt.status

			_, err := radio.GetControllerVersion(testContext(t))
			require.ErrorIs(t, err, ErrRadioStatus)
			assert.Equal(t, tt.want, EventOf(err))

			var ce *CommandError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, OpCoreGetControllerVersion, ce.Opcode)
			assert.Equal(t, "GetControllerVersion", ce.Op)
		})
	}
}

func TestRadio_UnknownStatus(t *testing.T) {
	t.Parallel()

	radio, _, vr := newTestRadio(t)
	vr.Status[uint16(OpCoreReset)] = 0x7F

	err := radio.Reset(testContext(t))
	require.ErrorIs(t, err, ErrProcessing)
	assert.Equal(t, ErrorProcessing, EventOf(err))
}

func TestRadio_FailureDistinctness(t *testing.T) {
	t.Parallel()

	opts := []Option{WithCommandTimeout(50 * time.Millisecond)}

	t.Run("Timeout", func(t *testing.T) {
		t.Parallel()
		radio, _, vr := newTestRadio(t, opts...)
		vr.Silent[uint16(OpCoreReset)] = true

		err := radio.Reset(testContext(t))
		require.ErrorIs(t, err, ErrTimeout)
		assert.Equal(t, ErrorTimeout, EventOf(err))
		assert.True(t, IsRetryable(err))
		assert.Equal(t, ErrorTypeTimeout, GetErrorType(err))
	})

	t.Run("Parsing", func(t *testing.T) {
		t.Parallel()
		radio, mock, _ := newTestRadio(t, opts...)
		mock.SetResponder(func(cmd []byte) [][]byte {
			return [][]byte{testutil.Corrupt(testutil.BuildSuccess(uint16(OpCoreReset)))}
		})

		err := radio.Reset(testContext(t))
		require.ErrorIs(t, err, ErrParsing)
		assert.Equal(t, ErrorParsing, EventOf(err))
	})

	t.Run("Bad_Status", func(t *testing.T) {
		t.Parallel()
		radio, _, vr := newTestRadio(t, opts...)
		vr.Status[uint16(OpCoreReset)] = testutil.StatusFailure

		err := radio.Reset(testContext(t))
		require.ErrorIs(t, err, ErrRadioStatus)
		assert.Equal(t, ResponseFailure, EventOf(err))
	})

	t.Run("Wrong_Completion_Flag", func(t *testing.T) {
		t.Parallel()
		radio, mock, _ := newTestRadio(t, opts...)
		// A plain success where an event-follows answer is expected is not a completion
		mock.SetResponder(func(cmd []byte) [][]byte {
			return [][]byte{testutil.BuildSuccess(uint16(OpGAPGetLocalName))}
		})

		err := radio.GetLocalName(testContext(t))
		require.ErrorIs(t, err, ErrTimeout)
		assert.Equal(t, ResponseSuccess, nextEvent(t, radio))
	})

	t.Run("Payload_Length", func(t *testing.T) {
		t.Parallel()
		radio, mock, _ := newTestRadio(t, opts...)
		mock.SetResponder(func(cmd []byte) [][]byte {
			return [][]byte{testutil.BuildSuccess(uint16(OpCoreGetControllerVersion), 1, 2, 3)}
		})

		v, err := radio.GetControllerVersion(testContext(t))
		require.ErrorIs(t, err, ErrProcessing)
		assert.Equal(t, ErrorProcessing, EventOf(err))
		assert.Equal(t, ControllerVersion{}, v)
	})

	t.Run("Write_Error", func(t *testing.T) {
		t.Parallel()
		radio, mock, _ := newTestRadio(t, opts...)
		mock.SetWriteError(NewTransportError("Write", "mock", ErrCommunicationFailed, ErrorTypeTransient))

		err := radio.Reset(testContext(t))
		require.ErrorIs(t, err, ErrTransportWrite)
		require.ErrorIs(t, err, ErrCommunicationFailed)
		assert.Equal(t, ResponseFailure, EventOf(err))
	})

	t.Run("Read_Error", func(t *testing.T) {
		t.Parallel()
		radio, mock, vr := newTestRadio(t, opts...)
		vr.Silent[uint16(OpCoreReset)] = true
		mock.SetResponder(func(cmd []byte) [][]byte {
			mock.SetReadError(NewTransportError("Read", "mock", ErrFrameCorrupted, ErrorTypeTransient))
			return vr.Respond(cmd)
		})

		err := radio.Reset(testContext(t))
		require.ErrorIs(t, err, ErrTransportRead)
		assert.Equal(t, ResponseFailure, EventOf(err))
		assert.True(t, radio.Running(), "transient read errors keep the receive path alive")
	})
}

func TestRadio_StaleResponseRejected(t *testing.T) {
	t.Parallel()

	radio, _, _ := newTestRadio(t)
	require.NoError(t, radio.RegisterDevice(testContext(t), RolePeripheral))

	// The outstanding opcode is RegisterDevice; a GetLocalAddress answer is stale
	before := radio.ConnectionInfo()
	ev := radio.ProcessFrame(testutil.BuildSuccess(uint16(OpGAPGetLocalAddress), 0x00, 1, 2, 3, 4, 5, 6))
	assert.Equal(t, ResponseFailure, ev)
	assert.Equal(t, before, radio.ConnectionInfo())
	assert.Equal(t, ResponseFailure, nextEvent(t, radio))
}

func TestRadio_LateResponseAfterNextCommand(t *testing.T) {
	t.Parallel()

	radio, mock, vr := newTestRadio(t, WithCommandTimeout(50*time.Millisecond))
	ctx := testContext(t)
	vr.Silent[uint16(OpGAPGetLocalAddress)] = true

	_, err := radio.GetLocalAddress(ctx)
	require.ErrorIs(t, err, ErrTimeout)

	// B is outstanding when A's answer finally arrives
	vr.Silent[uint16(OpGAPGetConnectionList)] = true
	done := make(chan error, 1)
	go func() {
		_, err := radio.GetConnectionList(ctx)
		done <- err
	}()
	require.Eventually(t, func() bool { return len(mock.Written()) == 2 }, testTimeout, time.Millisecond)

	mock.Inject(testutil.BuildSuccess(uint16(OpGAPGetLocalAddress), 0x01, 1, 2, 3, 4, 5, 6))
	assert.Equal(t, ResponseFailure, nextEvent(t, radio))

	err = <-done
	require.ErrorIs(t, err, ErrTimeout, "a late answer for A must not complete B")
}

func TestRadio_TimedOutDestinationNotWritten(t *testing.T) {
	t.Parallel()

	radio, mock, vr := newTestRadio(t, WithCommandTimeout(30*time.Millisecond))
	vr.Silent[uint16(OpCoreGetControllerVersion)] = true

	v, err := radio.GetControllerVersion(testContext(t))
	require.ErrorIs(t, err, ErrTimeout)

	// Same opcode still outstanding, but nothing is registered to decode into
	mock.Inject(testutil.BuildSuccess(uint16(OpCoreGetControllerVersion), 1, 2, 3, 4))
	assert.Equal(t, ResponseSuccess, nextEvent(t, radio))
	assert.Equal(t, ControllerVersion{}, v)
}

func TestRadio_UnexpectedPendingLeavesDestination(t *testing.T) {
	t.Parallel()

	op := uint16(OpCoreGetControllerVersion)
	mock := NewMockTransportWithResponder(func([]byte) [][]byte {
		return [][]byte{testutil.BuildResponse(op, testutil.StatusEventFollows, 1, 2, 3, 4)}
	})
	radio, err := New(mock, WithCommandTimeout(30*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, radio.Init(context.Background(), nil))
	t.Cleanup(func() { _ = radio.Close() })

	// A response-only command does not complete on "event follows"
	v, err := radio.GetControllerVersion(testContext(t))
	require.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, ErrorTimeout, EventOf(err))
	assert.Equal(t, ControllerVersion{}, v)
	assert.Equal(t, ResponsePending, nextEvent(t, radio))

	// The next matching answer still decodes into a fresh destination
	mock.SetResponder(func([]byte) [][]byte {
		return [][]byte{testutil.BuildSuccess(op, 1, 2, 3, 4)}
	})
	v, err = radio.GetControllerVersion(testContext(t))
	require.NoError(t, err)
	assert.Equal(t, ControllerVersion{ManufacturerID: 0x0201, LMPSubVersion: 0x0403}, v)
}

func TestRadio_AccessTimeout(t *testing.T) {
	t.Parallel()

	radio, mock, _ := newTestRadio(t, WithAccessTimeout(30*time.Millisecond))
	mock.BlockWrites()

	ctx := testContext(t)
	first := make(chan error, 1)
	go func() { first <- radio.Reset(ctx) }()

	// Wait until the first command holds the radio
	require.Eventually(t, func() bool { return mock.BlockedWriters() == 1 }, testTimeout, time.Millisecond)

	err := radio.StopInquiry(ctx)
	require.ErrorIs(t, err, ErrAccessTimeout)
	assert.Equal(t, ErrorTimeout, EventOf(err))

	mock.Unblock()
	require.NoError(t, <-first)
	require.NoError(t, radio.StopInquiry(ctx))
}

func TestRadio_ConcurrentCommands(t *testing.T) {
	t.Parallel()

	radio, _, _ := newTestRadio(t, WithAccessTimeout(testTimeout))
	ctx := testContext(t)

	var wg sync.WaitGroup
	errs := make(chan error, 40)
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			v, err := radio.GetControllerVersion(ctx)
			if err == nil && v.ManufacturerID != 0x0201 {
				err = errors.New("wrong version decoded")
			}
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := radio.GetConnectionList(ctx)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
}

func TestRadio_ContextCancel(t *testing.T) {
	t.Parallel()

	radio, _, vr := newTestRadio(t)
	vr.Silent[uint16(OpCoreReset)] = true

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := radio.Reset(ctx)
	require.ErrorIs(t, err, ErrTimeout)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, ErrorTimeout, EventOf(err))
}

func TestRadio_EventQueue(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var seen []Event
	radio, err := New(NewMockTransport(), WithEventQueueDepth(2), WithEventCallback(func(ev Event) {
		mu.Lock()
		seen = append(seen, ev)
		mu.Unlock()
	}))
	require.NoError(t, err)

	complete := testutil.BuildEvent(0x0105, testutil.StatusSuccess)
	for i := 0; i < 3; i++ {
		assert.Equal(t, EventGAPInquiryComplete, radio.ProcessFrame(complete))
	}

	assert.Equal(t, uint64(1), radio.DroppedEvents())
	assert.Equal(t, EventGAPInquiryComplete, radio.PollEvent())
	assert.Equal(t, EventGAPInquiryComplete, radio.PollEvent())
	assert.Equal(t, EventNone, radio.PollEvent())

	mu.Lock()
	assert.Len(t, seen, 2)
	mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = radio.GetEvent(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRadio_InitNotify(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	radio, err := New(mock)
	require.NoError(t, err)

	got := make(chan Event, 1)
	require.NoError(t, radio.Init(context.Background(), func(ev Event) { got <- ev }))
	t.Cleanup(func() { _ = radio.Close() })

	mock.Inject(testutil.BuildEvent(0x0001, 0x00, 0x2A))
	select {
	case ev := <-got:
		assert.Equal(t, EventHardwareError, ev)
	case <-time.After(testTimeout):
		t.Fatal("no notification")
	}
	assert.Equal(t, byte(0x2A), radio.HardwareError())
}

func TestRadio_ArgumentValidationPanics(t *testing.T) {
	t.Parallel()

	radio, mock, _ := newTestRadio(t)
	ctx := testContext(t)
	long := make([]byte, 32)
	bad := DefaultConnParams()
	bad.IntervalMin = 0x0005

	tests := []struct {
		call func()
		name string
	}{
		{name: "Role", call: func() { _ = radio.RegisterDevice(ctx, Role(4)) }},
		{name: "Empty_Name", call: func() { _ = radio.SetLocalName(ctx, "") }},
		{name: "Long_Name", call: func() { _ = radio.SetLocalName(ctx, "abcdefghijklmnopqrstu") }},
		{name: "Adv_Data", call: func() { _ = radio.SetAdvertisingData(ctx, long) }},
		{name: "Adv_Interval_Low", call: func() { _ = radio.SetAdvertisingInterval(ctx, 0x001F) }},
		{name: "Adv_Interval_High", call: func() { _ = radio.SetAdvertisingInterval(ctx, 0x4001) }},
		{name: "Conn_Params", call: func() { _ = radio.Connect(ctx, AddressPublic, BDAddr{}, bad) }},
		{name: "Passkey", call: func() { _ = radio.SetPasskey(ctx, 1, 1000000) }},
		{name: "Channel", call: func() { _ = radio.StartReceiverTest(ctx, 40) }},
		{name: "Payload_Type", call: func() { _ = radio.StartTransmitterTest(ctx, 0, 37, PayloadType(8)) }},
		{name: "Alert_Level", call: func() { _ = radio.SetFindMeAlert(ctx, 1, AlertLevel(3)) }},
		{name: "Data_Empty", call: func() { _ = radio.SendData(ctx, 1, nil) }},
		{name: "Data_Long", call: func() { _ = radio.SendData(ctx, 1, long[:21]) }},
		{name: "Vendor_Data", call: func() { _ = radio.VendorCommand(ctx, 1, make([]byte, 56)) }},
		{name: "Inquiry_Duration", call: func() { _ = radio.StartInquiry(ctx, InquiryGeneral, 0) }},
	}

	for _, tt := range tests {
		tt := tt
		assert.Panics(t, tt.call, tt.name)
	}
	assert.Empty(t, mock.Written(), "nothing reaches the radio")
}

func TestValidateConnParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mutate  func(*ConnParams)
		name    string
		wantErr bool
	}{
		{name: "Default", mutate: func(*ConnParams) {}},
		{name: "Min_Bounds", mutate: func(p *ConnParams) {
			*p = ConnParams{IntervalMin: 0x0006, IntervalMax: 0x0006, SupervisionTimeout: 0x000A}
		}},
		{name: "Max_Bounds", mutate: func(p *ConnParams) {
			*p = ConnParams{IntervalMin: 0x0C80, IntervalMax: 0x0C80, Latency: 0x01F3, SupervisionTimeout: 0x0C80}
		}},
		{name: "Min_Above_Max", wantErr: true, mutate: func(p *ConnParams) { p.IntervalMin = p.IntervalMax + 1 }},
		{name: "Latency", wantErr: true, mutate: func(p *ConnParams) { p.Latency = 0x01F4 }},
		{name: "Timeout_Low", wantErr: true, mutate: func(p *ConnParams) { p.SupervisionTimeout = 0x0009 }},
		{name: "Timeout_High", wantErr: true, mutate: func(p *ConnParams) { p.SupervisionTimeout = 0x0C81 }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := DefaultConnParams()
			tt.mutate(&p)
			err := ValidateConnParams(p)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidParameter)
				return
			}
			require.NoError(t, err)
		})
	}
}
