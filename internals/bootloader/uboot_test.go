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

package bootloader_test

import (
	"fmt"
	"os"
	"path/filepath"

	. "gopkg.in/check.v1"

	"github.com/termus/burnfw/internals/bootloader"
)

var _ = Suite(&ubootSuite{})

type ubootSuite struct {
	b bootloader.Bootloader

	rootdir string
	bindir  string
	logFile string
	oldPath string
}

const fakePrintenv = `#!/bin/sh
echo "fw_printenv $*" >> %[1]s
case "$2" in
rootfspart) echo rootfs-2 ;;
support_fw_ver) echo yes ;;
*) echo "## Error: \"$2\" not defined" >&2; exit 1 ;;
esac
`

const fakeSetenv = `#!/bin/sh
echo "fw_setenv $*" >> %[1]s
cat >> %[1]s
`

const failingSetenv = `#!/bin/sh
cat > /dev/null
echo "Cannot open /dev/mtd1: Permission denied" >&2
exit 1
`

func (s *ubootSuite) writeTool(c *C, name, script string) {
	path := filepath.Join(s.bindir, name)
	err := os.WriteFile(path, []byte(fmt.Sprintf(script, s.logFile)), 0755)
	c.Assert(err, IsNil)
}

func (s *ubootSuite) SetUpTest(c *C) {
	s.rootdir = c.MkDir()
	s.bindir = c.MkDir()
	s.logFile = filepath.Join(c.MkDir(), "calls.log")

	err := os.MkdirAll(filepath.Join(s.rootdir, "etc"), 0755)
	c.Assert(err, IsNil)
	err = os.WriteFile(filepath.Join(s.rootdir, "etc", "fw_env.config"), []byte("/dev/mtd1 0x0 0x10000 0x10000\n"), 0644)
	c.Assert(err, IsNil)

	s.writeTool(c, "fw_printenv", fakePrintenv)
	s.writeTool(c, "fw_setenv", fakeSetenv)

	s.oldPath = os.Getenv("PATH")
	os.Setenv("PATH", s.bindir+":"+s.oldPath)
	s.b = bootloader.NewUBoot(s.rootdir)
}

func (s *ubootSuite) TearDownTest(c *C) {
	os.Setenv("PATH", s.oldPath)
}

func (s *ubootSuite) calls(c *C) string {
	data, err := os.ReadFile(s.logFile)
	if os.IsNotExist(err) {
		return ""
	}
	c.Assert(err, IsNil)
	return string(data)
}

func (s *ubootSuite) TestName(c *C) {
	c.Assert(s.b.Name(), Equals, "u-boot")
}

func (s *ubootSuite) TestPresent(c *C) {
	isPresent, err := s.b.Present()
	c.Assert(err, IsNil)
	c.Assert(isPresent, Equals, true)
}

func (s *ubootSuite) TestNotPresent(c *C) {
	b := bootloader.NewUBoot(c.MkDir())
	isPresent, err := b.Present()
	c.Assert(err, IsNil)
	c.Assert(isPresent, Equals, false)
}

func (s *ubootSuite) TestFind(c *C) {
	defer bootloader.FakeRootDir(s.rootdir)()

	b, err := bootloader.Find()
	c.Assert(err, IsNil)
	c.Assert(b.Name(), Equals, "u-boot")
}

func (s *ubootSuite) TestGetEnv(c *C) {
	value, err := s.b.GetEnv("rootfspart")
	c.Assert(err, IsNil)
	c.Check(value, Equals, "rootfs-2")
	c.Check(s.calls(c), Equals, "fw_printenv -n rootfspart\n")
}

func (s *ubootSuite) TestGetEnvUndefined(c *C) {
	_, err := s.b.GetEnv("nope")
	c.Assert(err, ErrorMatches, `cannot get bootloader variable "nope": ## Error: "nope" not defined`)
}

func (s *ubootSuite) TestSetEnv(c *C) {
	err := s.b.SetEnv(map[string]string{
		"rootfspart":     "rootfs",
		"linux_bootargs": "root=mtd:rootfs rootfstype=jffs2",
	})
	c.Assert(err, IsNil)
	c.Check(s.calls(c), Equals, ""+
		"fw_setenv -s -\n"+
		"linux_bootargs root=mtd:rootfs rootfstype=jffs2\n"+
		"rootfspart rootfs\n")
}

func (s *ubootSuite) TestSetEnvFails(c *C) {
	s.writeTool(c, "fw_setenv", failingSetenv)

	err := s.b.SetEnv(map[string]string{"check_fw": "none"})
	c.Assert(err, ErrorMatches, "cannot set bootloader variables: Cannot open /dev/mtd1: Permission denied")
}

func (s *ubootSuite) TestSetEnvInvalid(c *C) {
	err := s.b.SetEnv(map[string]string{"bad name": "x"})
	c.Assert(err, ErrorMatches, `invalid bootloader variable name "bad name"`)

	err = s.b.SetEnv(map[string]string{"name": "a\nb"})
	c.Assert(err, ErrorMatches, `invalid value for bootloader variable "name"`)

	c.Check(s.calls(c), Equals, "")
}
