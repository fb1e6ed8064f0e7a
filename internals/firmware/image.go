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

package firmware

import (
	"fmt"
	"os"
)

// Image is a firmware image file on disk.
type Image struct {
	Path   string
	Header Header

	// PayloadSize is the number of bytes following the header.
	PayloadSize int64
}

// Open reads the header of the image at path and computes its payload
// size. The file is not kept open.
func Open(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open firmware image: %w", err)
	}
	defer f.Close()

	h, err := ReadHeader(f)
	if err != nil {
		return nil, err
	}
	size, err := PayloadSize(f)
	if err != nil {
		return nil, err
	}
	return &Image{Path: path, Header: h, PayloadSize: size}, nil
}

// PayloadSize returns the size of the payload stored in f, that is the
// file size minus HeaderSize.
func PayloadSize(f *os.File) (int64, error) {
	st, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("cannot stat firmware image: %w", err)
	}
	if st.Size() < HeaderSize {
		return 0, ErrShortHeader
	}
	return st.Size() - HeaderSize, nil
}
