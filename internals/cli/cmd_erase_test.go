// Copyright (c) 2014-2020 Canonical Ltd
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

package cli_test

import (
	"errors"

	. "gopkg.in/check.v1"

	"github.com/termus/burnfw/internals/burner"
	"github.com/termus/burnfw/internals/cli"
)

func (s *BurnfwSuite) TestErase(c *C) {
	_, err := cli.Parser().ParseArgs([]string{"erase", "rootfs"})
	c.Assert(err, IsNil)
	c.Check(s.Stdout(), Equals, "Partition rootfs erased.\n")
	c.Check(s.exec.calls, DeepEquals, []string{"erase /dev/mtd2"})
}

func (s *BurnfwSuite) TestEraseUnknown(c *C) {
	_, err := cli.Parser().ParseArgs([]string{"erase", "rootfs-3"})
	c.Assert(err, ErrorMatches, `cannot erase unknown partition "rootfs-3"`)
	c.Check(burner.KindOf(err), Equals, burner.ErrorKindEraseFlash)
	c.Check(s.exec.calls, HasLen, 0)
}

func (s *BurnfwSuite) TestEraseFails(c *C) {
	s.exec.eraseErr = errors.New("MTD get info failed")

	_, err := cli.Parser().ParseArgs([]string{"erase", "rootfs-2"})
	c.Assert(err, ErrorMatches, `cannot erase partition "rootfs-2": MTD get info failed`)
	c.Check(s.Stdout(), Equals, "")
}

func (s *BurnfwSuite) TestEraseExtraArgs(c *C) {
	_, err := cli.Parser().ParseArgs([]string{"erase", "rootfs", "rootfs-2"})
	c.Assert(err, Equals, cli.ErrExtraArgs)
}
