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

package cli

import (
	"fmt"

	"github.com/termus/burnfw/internals/bootloader"
	"github.com/termus/burnfw/internals/burner"
	"github.com/termus/burnfw/internals/config"
	"github.com/termus/burnfw/internals/flash"
	"github.com/termus/burnfw/internals/logger"
	"github.com/termus/burnfw/internals/partition"
)

// device bundles what commands need to drive an update on this machine.
type device struct {
	config   *config.DeviceConfig
	exec     burner.Executor
	registry partition.Registry
}

// engine returns an update engine for the device reporting progress to
// reporter, which may be nil.
func (d *device) engine(reporter burner.Reporter) (*burner.Engine, error) {
	return burner.New(&burner.Options{
		Config:   d.config.Engine(),
		Registry: d.registry,
		Executor: d.exec,
		Reporter: reporter,
	})
}

var openDevice = openDeviceImpl

// openDeviceImpl locates the bootloader and loads the configuration. When
// needBootloader is false a missing bootloader is tolerated and only
// operations that do not touch its environment will work.
func openDeviceImpl(needBootloader bool) (*device, error) {
	loader, err := bootloader.Find()
	if err != nil {
		if needBootloader {
			return nil, err
		}
		logger.Debugf("Continuing without bootloader: %v", err)
		loader = missingBootloader{err}
	}
	exec := flash.New(loader)
	cfg, err := config.Load(config.Path(optionsData.Config), exec)
	if err != nil {
		return nil, err
	}
	return &device{
		config:   cfg,
		exec:     exec,
		registry: partition.Default,
	}, nil
}

type missingBootloader struct {
	err error
}

func (b missingBootloader) Name() string { return "none" }

func (b missingBootloader) Present() (bool, error) { return false, nil }

func (b missingBootloader) GetEnv(name string) (string, error) {
	return "", fmt.Errorf("cannot get bootloader variable %q: %w", name, b.err)
}

func (b missingBootloader) SetEnv(map[string]string) error {
	return fmt.Errorf("cannot set bootloader variables: %w", b.err)
}
