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

package firmware_test

import (
	"os"
	"path/filepath"

	. "gopkg.in/check.v1"

	"github.com/termus/burnfw/internals/firmware"
)

type infoSuite struct {
	path string
}

var _ = Suite(&infoSuite{})

func (s *infoSuite) SetUpTest(c *C) {
	s.path = filepath.Join(c.MkDir(), "meta", "termus.json")
}

func (s *infoSuite) write(c *C, content string) {
	c.Assert(os.MkdirAll(filepath.Dir(s.path), 0755), IsNil)
	c.Assert(os.WriteFile(s.path, []byte(content), 0644), IsNil)
}

func (s *infoSuite) TestRunningInfoMissing(c *C) {
	defer firmware.FakeMetaInfoPath(s.path)()

	_, err := firmware.RunningInfo()
	c.Assert(err, ErrorMatches, `cannot open firmware metadata file .*termus.json: .*no such file or directory`)
}

func (s *infoSuite) TestRunningInfoInvalid(c *C) {
	defer firmware.FakeMetaInfoPath(s.path)()
	s.write(c, `{"name": "foo"`)

	_, err := firmware.RunningInfo()
	c.Assert(err, ErrorMatches, `cannot parse firmware metadata: .*`)
}

func (s *infoSuite) TestRunningInfo(c *C) {
	defer firmware.FakeMetaInfoPath(s.path)()

	for _, t := range []struct {
		json string
		info firmware.Info
		str  string
	}{
		{`{}`, firmware.Info{}, ""},
		{`{"name":"foo"}`, firmware.Info{Name: "foo"}, "foo"},
		{`{"version":"1.0~dev"}`, firmware.Info{Version: "1.0~dev"}, "1.0~dev"},
		{
			`{"name":"foo", "version":"1.0~dev", "summary":"Foo firmware dev build"}`,
			firmware.Info{Name: "foo", Version: "1.0~dev", Summary: "Foo firmware dev build"},
			"foo 1.0~dev",
		},
	} {
		s.write(c, t.json)

		info, err := firmware.RunningInfo()
		c.Assert(err, IsNil)
		c.Check(*info, DeepEquals, t.info)
		c.Check(info.String(), Equals, t.str)
	}
}
