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

package burner

import (
	"errors"
	"io"
	"os"

	"github.com/termus/burnfw/internals/logger"
	"github.com/termus/burnfw/internals/partition"
)

// chunkSize is the amount of payload copied per write.
const chunkSize = 10000

// reportStep throttles progress events to multiples of this percentage.
const reportStep = 4

var openBlockDevice = func(path string) (io.WriteCloser, error) {
	return os.OpenFile(path, os.O_WRONLY, 0)
}

// session is the transient state of one payload transfer.
type session struct {
	target      partition.Spec
	payloadSize int64
	reporter    Reporter

	written     int64
	lastPercent int
}

// stream copies src into dst in chunkSize writes until src is exhausted.
// A short write stops the transfer; the prefix already written stays on
// the device.
func (s *session) stream(dst io.Writer, src io.Reader) error {
	buf := make([]byte, chunkSize)
	for {
		n, rerr := io.ReadFull(src, buf)
		if n > 0 {
			m, werr := dst.Write(buf[:n])
			s.written += int64(m)
			if m < n || werr != nil {
				logger.Noticef("Cannot write to partition %s after %d bytes: %v", s.target.Name, s.written, werr)
				if werr == nil {
					werr = io.ErrShortWrite
				}
				return errorf(ErrorKindWritePartition, "cannot write partition %q: %w", s.target.Name, werr)
			}
			s.progress()
		}
		switch {
		case rerr == nil:
		case errors.Is(rerr, io.EOF), errors.Is(rerr, io.ErrUnexpectedEOF):
			return nil
		default:
			return errorf(ErrorKindDefault, "cannot read firmware payload: %w", rerr)
		}
	}
}

// progress reports the completion percentage when it changed and is a
// multiple of reportStep. Percentages skipped over within a single chunk
// are not reported.
func (s *session) progress() {
	if s.payloadSize <= 0 {
		return
	}
	percent := int(s.written * 100 / s.payloadSize)
	if percent == s.lastPercent || percent%reportStep != 0 {
		return
	}
	s.reporter.Report(percent)
	s.lastPercent = percent
	logger.Noticef("Burning: %d%%", percent)
}

// finish reports completion regardless of the throttle.
func (s *session) finish() {
	s.reporter.Report(100)
	s.lastPercent = 100
}
