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

package bootloader

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/termus/burnfw/internals/logger"
	"github.com/termus/burnfw/internals/osutil"
)

// uboot implements the Bootloader interface on top of the U-Boot
// environment tools.
type uboot struct {
	rootdir  string
	printenv string
	setenv   string
}

func newUBoot(rootdir string) Bootloader {
	return &uboot{
		rootdir:  rootdir,
		printenv: osutil.LookPathDefault("fw_printenv", "/usr/sbin/fw_printenv"),
		setenv:   osutil.LookPathDefault("fw_setenv", "/usr/sbin/fw_setenv"),
	}
}

func (u *uboot) Name() string {
	return "u-boot"
}

func (u *uboot) Present() (bool, error) {
	exists, _, err := osutil.ExistsIsDir(filepath.Join(u.rootdir, "etc", "fw_env.config"))
	return exists, err
}

func (u *uboot) GetEnv(name string) (string, error) {
	logger.Debugf("Reading bootloader variable %s.", name)
	out, err := exec.Command(u.printenv, "-n", name).Output()
	if err != nil {
		return "", fmt.Errorf("cannot get bootloader variable %q: %w", name, commandError(err))
	}
	return strings.TrimRight(string(out), "\n"), nil
}

// SetEnv feeds a script to fw_setenv so all variables land in a single
// environment write.
func (u *uboot) SetEnv(vars map[string]string) error {
	names := make([]string, 0, len(vars))
	for name := range vars {
		if name == "" || strings.ContainsAny(name, " \t\n=") {
			return fmt.Errorf("invalid bootloader variable name %q", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var script strings.Builder
	for _, name := range names {
		if strings.Contains(vars[name], "\n") {
			return fmt.Errorf("invalid value for bootloader variable %q", name)
		}
		fmt.Fprintf(&script, "%s %s\n", name, vars[name])
	}
	logger.Debugf("Setting bootloader variables %s.", strings.Join(names, ", "))

	cmd := exec.Command(u.setenv, "-s", "-")
	cmd.Stdin = strings.NewReader(script.String())
	if out, err := cmd.CombinedOutput(); err != nil {
		if msg := bytes.TrimSpace(out); len(msg) > 0 {
			return fmt.Errorf("cannot set bootloader variables: %s", msg)
		}
		return fmt.Errorf("cannot set bootloader variables: %w", err)
	}
	return nil
}

func commandError(err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if msg := bytes.TrimSpace(exitErr.Stderr); len(msg) > 0 {
			return errors.New(string(msg))
		}
	}
	return err
}
