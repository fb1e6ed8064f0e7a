// Copyright (c) 2023 Canonical Ltd
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License version 3 as
// published by the Free Software Foundation.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package leds blinks the front panel LEDs while a firmware update runs.
package leds

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"gopkg.in/tomb.v2"

	"github.com/termus/burnfw/internals/logger"
)

var (
	blinkPeriod = 500 * time.Millisecond

	openDevice = func(path string) (io.WriteCloser, error) {
		return os.OpenFile(path, os.O_RDWR, 0)
	}
)

// Blinker lights the configured LEDs one after the other until stopped.
// Failures are logged and never reach the update itself.
type Blinker struct {
	device string
	ids    []int

	mu      sync.Mutex
	tomb    tomb.Tomb
	started bool
	out     io.WriteCloser
}

// NewBlinker returns a blinker driving the LEDs with the given ids through
// the LED device at path.
func NewBlinker(device string, ids []int) *Blinker {
	return &Blinker{device: device, ids: ids}
}

// Start opens the LED device and starts the blink loop. Calling Start on a
// running blinker does nothing.
func (b *Blinker) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.started {
		return nil
	}
	if len(b.ids) == 0 {
		return fmt.Errorf("cannot blink LEDs: no LEDs configured")
	}
	out, err := openDevice(b.device)
	if err != nil {
		return fmt.Errorf("cannot open LED device: %w", err)
	}
	b.out = out
	b.started = true
	b.tomb = tomb.Tomb{}
	b.tomb.Go(b.loop)
	return nil
}

// Stop ends the blink loop, switches the LEDs off and closes the device.
func (b *Blinker) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.started {
		return nil
	}
	b.tomb.Kill(nil)
	err := b.tomb.Wait()
	b.setAll(false)
	if cerr := b.out.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("cannot close LED device: %w", cerr)
	}
	b.started = false
	return err
}

func (b *Blinker) loop() error {
	logger.Debugf("Blinking LEDs %v.", b.ids)
	b.setAll(false)

	prev := -1
	next := 0
	for {
		if prev >= 0 {
			b.set(b.ids[prev], false)
		}
		b.set(b.ids[next], true)
		prev, next = next, (next+1)%len(b.ids)

		select {
		case <-time.After(blinkPeriod):
		case <-b.tomb.Dying():
			logger.Debugf("LED blinker stopped.")
			return nil
		}
	}
}

func (b *Blinker) setAll(on bool) {
	for _, id := range b.ids {
		b.set(id, on)
	}
}

// set writes a two byte {led, state} command to the device.
func (b *Blinker) set(id int, on bool) {
	cmd := []byte{byte(id), 0}
	if on {
		cmd[1] = 1
	}
	if _, err := b.out.Write(cmd); err != nil {
		logger.Noticef("Cannot switch LED %d: %v", id, err)
	}
}
