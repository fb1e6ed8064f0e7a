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
	"github.com/termus/burnfw/internals/logger"
	"github.com/termus/burnfw/internals/partition"
)

func (e *Engine) erase(spec partition.Spec) error {
	logger.Debugf("Erasing %s (%s).", spec.Name, spec.EraseDevice)
	if err := e.exec.Erase(spec.EraseDevice); err != nil {
		logger.Noticef("Cannot erase flash %s: %v", spec.EraseDevice, err)
		return errorf(ErrorKindEraseFlash, "cannot erase partition %q: %w", spec.Name, err)
	}
	return nil
}
