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

package waiter

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaiter_SignalWanted(t *testing.T) {
	t.Parallel()

	var w Waiter[string]
	p := w.Arm(FlagResponse)
	assert.True(t, w.Armed())

	go func() {
		assert.True(t, w.Signal(FlagResponse, "done"))
	}()

	res, err := p.Wait(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, FlagResponse, res.Flag)
	assert.Equal(t, "done", res.Value)
	assert.False(t, w.Armed())
}

func TestWaiter_IgnoresUnwantedFlag(t *testing.T) {
	t.Parallel()

	var w Waiter[int]
	p := w.Arm(FlagEventFollows)

	assert.False(t, w.Signal(FlagResponse, 1))
	assert.True(t, w.Armed())

	_, err := p.Wait(context.Background(), 20*time.Millisecond)
	require.ErrorIs(t, err, ErrTimeout)
	assert.False(t, w.Armed())
}

func TestWaiter_FailureAlwaysCompletes(t *testing.T) {
	t.Parallel()

	var w Waiter[int]
	p := w.Arm(FlagResponse)
	assert.True(t, w.Signal(FlagFailure, 7))

	res, err := p.Wait(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, FlagFailure, res.Flag)
	assert.Equal(t, 7, res.Value)
}

func TestWaiter_SignalWithoutWait(t *testing.T) {
	t.Parallel()

	var w Waiter[int]
	assert.False(t, w.Signal(FlagFailure, 1))
}

func TestWaiter_ContextCancel(t *testing.T) {
	t.Parallel()

	var w Waiter[int]
	p := w.Arm(FlagResponse)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Wait(ctx, time.Second)
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, w.Armed())
}

func TestWaiter_RearmDropsStaleWait(t *testing.T) {
	t.Parallel()

	var w Waiter[int]
	first := w.Arm(FlagResponse)
	second := w.Arm(FlagResponse)

	// The first wait is no longer reachable by Signal
	w.Disarm(first)
	assert.True(t, w.Armed())
	assert.True(t, w.Signal(FlagResponse, 2))

	res, err := second.Wait(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Value)
}

func TestWaiter_TimeoutRace(t *testing.T) {
	t.Parallel()

	for i := 0; i < 50; i++ {
		var w Waiter[int]
		p := w.Arm(FlagResponse)

		var wg sync.WaitGroup
		wg.Add(1)
		signaled := false
		go func() {
			defer wg.Done()
			signaled = w.Signal(FlagResponse, i)
		}()

		res, err := p.Wait(context.Background(), time.Millisecond)
		wg.Wait()
		if signaled {
			require.NoError(t, err)
			assert.Equal(t, i, res.Value)
		} else {
			require.ErrorIs(t, err, ErrTimeout)
		}
	}
}

func TestFlags_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "none", Flags(0).String())
	assert.Equal(t, "response|failure", (FlagResponse | FlagFailure).String())
	assert.Equal(t, "event-follows", FlagEventFollows.String())
}

func TestSlot(t *testing.T) {
	t.Parallel()

	s := NewSlot()
	require.NoError(t, s.Acquire(context.Background(), time.Second))

	err := s.Acquire(context.Background(), 10*time.Millisecond)
	require.ErrorIs(t, err, ErrAcquireTimeout)

	released := make(chan struct{})
	go func() {
		time.Sleep(5 * time.Millisecond)
		s.Release()
		close(released)
	}()
	require.NoError(t, s.Acquire(context.Background(), time.Second))
	<-released
	s.Release()

	assert.Panics(t, s.Release)
}

func TestSlot_ContextCancel(t *testing.T) {
	t.Parallel()

	s := NewSlot()
	require.NoError(t, s.Acquire(context.Background(), time.Second))
	defer s.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, s.Acquire(ctx, time.Second), context.Canceled)
}
