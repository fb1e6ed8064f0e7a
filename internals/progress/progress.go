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

// Package progress provides the sinks that firmware write progress is
// reported to.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/termus/burnfw/internals/logger"
)

const (
	// DefaultStatusPath is polled by the device UI to display the update.
	DefaultStatusPath = "/tmp/burningPercent"

	// DefaultHold is how long a status value stays in place before the
	// writer continues.
	DefaultHold = 100 * time.Millisecond
)

var sleep = time.Sleep

// Reporter receives completion percentages between 0 and 100.
type Reporter interface {
	Report(percent int)
}

type multi []Reporter

func (m multi) Report(percent int) {
	for _, r := range m {
		r.Report(percent)
	}
}

// SetPayload forwards the payload size to the reporters that record it.
func (m multi) SetPayload(size int64) {
	for _, r := range m {
		if pr, ok := r.(interface{ SetPayload(int64) }); ok {
			pr.SetPayload(size)
		}
	}
}

// Multi returns a Reporter forwarding every report to all the given
// reporters, in order. Nil reporters are skipped.
func Multi(reporters ...Reporter) Reporter {
	var m multi
	for _, r := range reporters {
		if r != nil {
			m = append(m, r)
		}
	}
	return m
}

// StatusFile writes the latest percentage to a file, one decimal number
// followed by a newline.
type StatusFile struct {
	path string
	hold time.Duration
}

func NewStatusFile(path string, hold time.Duration) *StatusFile {
	return &StatusFile{path: path, hold: hold}
}

func (f *StatusFile) Report(percent int) {
	data := fmt.Sprintf("%d\n", percent)
	if err := os.WriteFile(f.path, []byte(data), 0644); err != nil {
		logger.Noticef("Cannot write update status: %v", err)
		return
	}
	if f.hold > 0 {
		sleep(f.hold)
	}
}

// Bar draws a single line progress bar, redrawn in place with carriage
// returns. It is meant for terminals.
type Bar struct {
	w     io.Writer
	label string
	cells int
	done  bool
}

const minBarCells = 10

// NewBar returns a bar labelled with label that fits in width columns.
func NewBar(w io.Writer, label string, width int) *Bar {
	// label, " [", "] ", "100%"
	cells := width - len(label) - 8
	if cells < minBarCells {
		cells = minBarCells
	}
	return &Bar{w: w, label: label, cells: cells}
}

func (b *Bar) Report(percent int) {
	if b.done {
		return
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := b.cells * percent / 100
	fmt.Fprintf(b.w, "\r%s [%s%s] %3d%%", b.label,
		strings.Repeat("#", filled), strings.Repeat(".", b.cells-filled), percent)
	if percent == 100 {
		fmt.Fprintln(b.w)
		b.done = true
	}
}
