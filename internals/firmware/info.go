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

	"gopkg.in/yaml.v3"
)

// metaInfoPath points to the metadata the firmware build process places
// in the root filesystem.
var metaInfoPath = "/termus/meta/termus.json"

// Info describes the firmware the system is running.
type Info struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Summary string `yaml:"summary"`
}

// String returns "name version", or whichever of the two is known.
func (i *Info) String() string {
	switch {
	case i.Name == "":
		return i.Version
	case i.Version == "":
		return i.Name
	}
	return i.Name + " " + i.Version
}

// RunningInfo returns the metadata of the running firmware. The metadata
// file is JSON, which the YAML decoder reads as well.
func RunningInfo() (*Info, error) {
	data, err := os.ReadFile(metaInfoPath)
	if err != nil {
		return nil, fmt.Errorf("cannot open firmware metadata file %s: %w", metaInfoPath, err)
	}

	var info Info
	if err := yaml.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("cannot parse firmware metadata: %w", err)
	}
	return &info, nil
}
