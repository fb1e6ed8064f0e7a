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
	"fmt"
)

// ErrorKind distinguishes the terminal outcomes of an engine operation.
type ErrorKind string

const (
	ErrorKindOpenFirmware       ErrorKind = "open-firmware"
	ErrorKindReadFirmwareHeader ErrorKind = "read-firmware-header"
	ErrorKindPartitionPath      ErrorKind = "partition-path"
	ErrorKindIncompatible       ErrorKind = "incompatible"
	ErrorKindDefault            ErrorKind = "default"
	ErrorKindOpenPartition      ErrorKind = "open-partition"
	ErrorKindWritePartition     ErrorKind = "write-partition"
	ErrorKindEraseFlash         ErrorKind = "erase-flash"

	// Reserved for image metadata and signature support.
	ErrorKindReadFirmwareInfo ErrorKind = "read-firmware-info"
	ErrorKindReadCryptoKey    ErrorKind = "read-crypto-key"
)

var exitCodes = map[ErrorKind]int{
	ErrorKindOpenFirmware:       10,
	ErrorKindReadFirmwareHeader: 11,
	ErrorKindReadFirmwareInfo:   12,
	ErrorKindPartitionPath:      13,
	ErrorKindReadCryptoKey:      14,
	ErrorKindIncompatible:       15,
	ErrorKindDefault:            16,
	ErrorKindOpenPartition:      17,
	ErrorKindWritePartition:     18,
	ErrorKindEraseFlash:         19,
}

// ExitCode returns the process exit status reported for the kind.
func (k ErrorKind) ExitCode() int {
	if code, ok := exitCodes[k]; ok {
		return code
	}
	return exitCodes[ErrorKindDefault]
}

// Error is the error returned by all engine operations.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("firmware update failed (%s)", e.Kind)
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func errorf(kind ErrorKind, format string, v ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, v...)}
}

// KindOf returns the kind of an engine error. Errors that did not
// originate in the engine are reported as ErrorKindDefault, and a nil
// error has no kind.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrorKindDefault
}
