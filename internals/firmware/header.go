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

// Package firmware decodes the fixed binary header that prefixes every
// firmware image and describes the payload that follows it.
package firmware

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// HeaderSize is the size in bytes of the header at the start of an
	// image. The payload starts right after it.
	HeaderSize = 15

	// Magic is the sentinel value expected in the first header byte.
	Magic = 0x55
)

// ErrShortHeader is returned when an image holds fewer than HeaderSize bytes.
var ErrShortHeader = errors.New("firmware image shorter than header")

// Header describes the firmware image. Multi-byte fields are stored
// little-endian:
//
//	offset  size  field
//	     0     1  magic
//	     1     4  vendor id
//	     5     4  device id
//	     9     2  major version
//	    11     2  minor version
//	    13     2  patch version
type Header struct {
	Magic    uint8
	Vendor   uint32
	DeviceID uint32
	Major    uint16
	Minor    uint16
	Patch    uint16
}

// HasMagic reports whether the header starts with the expected sentinel.
func (h Header) HasMagic() bool {
	return h.Magic == Magic
}

// Version returns the "major.minor.patch" version string.
func (h Header) Version() string {
	return fmt.Sprintf("%d.%d.%d", h.Major, h.Minor, h.Patch)
}

// MarshalBinary encodes the header into its HeaderSize bytes on-disk form.
func (h Header) MarshalBinary() ([]byte, error) {
	b := make([]byte, HeaderSize)
	b[0] = h.Magic
	binary.LittleEndian.PutUint32(b[1:5], h.Vendor)
	binary.LittleEndian.PutUint32(b[5:9], h.DeviceID)
	binary.LittleEndian.PutUint16(b[9:11], h.Major)
	binary.LittleEndian.PutUint16(b[11:13], h.Minor)
	binary.LittleEndian.PutUint16(b[13:15], h.Patch)
	return b, nil
}

// UnmarshalBinary decodes the header from data, which must hold at least
// HeaderSize bytes. The magic byte is decoded but not checked.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return ErrShortHeader
	}
	h.Magic = data[0]
	h.Vendor = binary.LittleEndian.Uint32(data[1:5])
	h.DeviceID = binary.LittleEndian.Uint32(data[5:9])
	h.Major = binary.LittleEndian.Uint16(data[9:11])
	h.Minor = binary.LittleEndian.Uint16(data[11:13])
	h.Patch = binary.LittleEndian.Uint16(data[13:15])
	return nil
}

// ReadHeader reads and decodes the header found at offset 0 of r.
func ReadHeader(r io.ReaderAt) (Header, error) {
	var h Header
	buf := make([]byte, HeaderSize)
	n, err := r.ReadAt(buf, 0)
	if n < HeaderSize {
		if err == nil || errors.Is(err, io.EOF) {
			return h, ErrShortHeader
		}
		return h, fmt.Errorf("cannot read firmware header: %w", err)
	}
	if err := h.UnmarshalBinary(buf); err != nil {
		return h, err
	}
	return h, nil
}
