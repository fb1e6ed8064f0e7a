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

	"github.com/termus/burnfw/internals/cli"
	"github.com/termus/burnfw/internals/firmware"
)

func (s *BurnfwSuite) TestVersion(c *C) {
	defer fakeVersion("4.5.6")()
	defer cli.FakeRunningInfo(&firmware.Info{Name: "termus-os", Version: "2.1"}, nil)()

	_, err := cli.Parser().ParseArgs([]string{"version"})
	c.Assert(err, IsNil)
	c.Check(s.Stdout(), Equals, "burnfw          4.5.6\nfirmware        termus-os 2.1\nboot-partition  rootfs\n")
	c.Check(s.Stderr(), Equals, "")
}

func (s *BurnfwSuite) TestVersionUnknownBootPartition(c *C) {
	defer fakeVersion("4.5.6")()
	defer cli.FakeRunningInfo(nil, errors.New("cannot open firmware metadata file"))()
	delete(s.exec.env, "rootfspart")

	_, err := cli.Parser().ParseArgs([]string{"version"})
	c.Assert(err, IsNil)
	c.Check(s.Stdout(), Equals, "burnfw          4.5.6\nfirmware        -\nboot-partition  -\n")
}

func (s *BurnfwSuite) TestVersionClientOnly(c *C) {
	defer fakeVersion("v1.2.3")()

	_, err := cli.Parser().ParseArgs([]string{"version", "--client"})
	c.Assert(err, IsNil)
	c.Check(s.Stdout(), Equals, "v1.2.3\n")
	c.Check(s.exec.calls, HasLen, 0)
}

func (s *BurnfwSuite) TestVersionExtraArgs(c *C) {
	_, err := cli.Parser().ParseArgs([]string{"version", "extra", "args"})
	c.Assert(err, Equals, cli.ErrExtraArgs)
}
