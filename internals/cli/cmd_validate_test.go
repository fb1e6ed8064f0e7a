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
	"os"
	"path/filepath"

	. "gopkg.in/check.v1"

	"github.com/termus/burnfw/internals/burner"
	"github.com/termus/burnfw/internals/cli"
)

func (s *BurnfwSuite) TestValidate(c *C) {
	image := s.writeImage(c, 42, 1000)

	rest, err := cli.Parser().ParseArgs([]string{"validate", image})
	c.Assert(err, IsNil)
	c.Assert(rest, HasLen, 0)
	c.Check(s.Stdout(), Equals, ""+
		"image:      "+image+"\n"+
		"device-id:  42\n"+
		"vendor:     1\n"+
		"version:    1.2.3\n"+
		"payload:    1000B\n")
	c.Check(s.exec.calls, HasLen, 0)
}

func (s *BurnfwSuite) TestValidateBadMagic(c *C) {
	image := s.writeImage(c, 42, 10)
	data, err := os.ReadFile(image)
	c.Assert(err, IsNil)
	data[0] = 0x12
	c.Assert(os.WriteFile(image, data, 0644), IsNil)

	_, err = cli.Parser().ParseArgs([]string{"validate", image})
	c.Assert(err, IsNil)
	c.Check(s.Stdout(), Matches, `(?s).*\nwarning:    unexpected magic byte 0x12\n`)
}

func (s *BurnfwSuite) TestValidateIncompatible(c *C) {
	s.config.ProductID = 43

	_, err := cli.Parser().ParseArgs([]string{"validate", s.writeImage(c, 42, 10)})
	c.Assert(err, ErrorMatches, "firmware for device 42 is incompatible with product 43")
	c.Check(burner.KindOf(err), Equals, burner.ErrorKindIncompatible)
	c.Check(s.Stdout(), Equals, "")
}

func (s *BurnfwSuite) TestValidateMissingImage(c *C) {
	_, err := cli.Parser().ParseArgs([]string{"validate", filepath.Join(s.dir, "missing.bin")})
	c.Assert(err, ErrorMatches, "cannot open firmware: .*no such file or directory")
	c.Check(burner.KindOf(err), Equals, burner.ErrorKindOpenFirmware)
}

func (s *BurnfwSuite) TestValidateRequiresImage(c *C) {
	_, err := cli.Parser().ParseArgs([]string{"validate"})
	c.Assert(err, ErrorMatches, "the required argument `<image>` was not provided")
}

func (s *BurnfwSuite) TestValidateExtraArgs(c *C) {
	_, err := cli.Parser().ParseArgs([]string{"validate", "a.bin", "b.bin"})
	c.Assert(err, Equals, cli.ErrExtraArgs)
}

func (s *BurnfwSuite) TestValidateWithConfigFile(c *C) {
	s.restores = append(s.restores, cli.RealDevice())

	path := filepath.Join(s.dir, "config.yaml")
	c.Assert(os.WriteFile(path, []byte("product-id: 42\nsupport-fw-ver: no\n"), 0644), IsNil)

	_, err := cli.Parser().ParseArgs([]string{"--config", path, "validate", s.writeImage(c, 42, 10)})
	c.Assert(err, IsNil)
	c.Check(s.Stdout(), Matches, `(?s).*device-id:  42\n.*`)

	s.stdout.Reset()
	c.Assert(os.WriteFile(path, []byte("product-id: 43\nsupport-fw-ver: no\n"), 0644), IsNil)
	_, err = cli.Parser().ParseArgs([]string{"--config", path, "validate", s.writeImage(c, 42, 10)})
	c.Assert(err, ErrorMatches, "firmware for device 42 is incompatible with product 43")
}
