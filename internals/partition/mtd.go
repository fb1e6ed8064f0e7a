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

package partition

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"
)

var (
	procMTDPath = "/proc/mtd"
	devfsPath   = "/dev"
)

// MTDPart is an entry of the kernel MTD partition table.
type MTDPart struct {
	Dev       string
	Size      uint64
	EraseSize uint64
	Name      string
}

// EraseDevice returns the path of the raw character device.
func (p MTDPart) EraseDevice() string {
	return path.Join(devfsPath, p.Dev)
}

// BlockDevice returns the path of the matching mtdblock device.
func (p MTDPart) BlockDevice() string {
	return path.Join(devfsPath, "mtdblock"+strings.TrimPrefix(p.Dev, "mtd"))
}

// ReadMTD returns the MTD partitions currently known to the kernel.
func ReadMTD() ([]MTDPart, error) {
	f, err := os.Open(procMTDPath)
	if err != nil {
		return nil, fmt.Errorf("cannot read MTD table: %w", err)
	}
	defer f.Close()
	return ParseMTD(f)
}

// ParseMTD parses the /proc/mtd format:
//
//	dev:    size   erasesize  name
//	mtd0: 00040000 00010000 "u-boot"
func ParseMTD(r io.Reader) ([]MTDPart, error) {
	var parts []MTDPart
	scanner := bufio.NewScanner(r)
	for lineno := 1; scanner.Scan(); lineno++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "dev:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 || !strings.HasSuffix(fields[0], ":") {
			return nil, fmt.Errorf("cannot parse MTD table line %d: %q", lineno, line)
		}
		size, err := strconv.ParseUint(fields[1], 16, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot parse MTD table line %d: invalid size %q", lineno, fields[1])
		}
		eraseSize, err := strconv.ParseUint(fields[2], 16, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot parse MTD table line %d: invalid erase size %q", lineno, fields[2])
		}
		name := strings.Join(fields[3:], " ")
		parts = append(parts, MTDPart{
			Dev:       strings.TrimSuffix(fields[0], ":"),
			Size:      size,
			EraseSize: eraseSize,
			Name:      strings.Trim(name, `"`),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read MTD table: %w", err)
	}
	return parts, nil
}

// FindMTD returns the MTD partition with the given name.
func FindMTD(parts []MTDPart, name string) (MTDPart, bool) {
	for _, p := range parts {
		if p.Name == name {
			return p, true
		}
	}
	return MTDPart{}, false
}
