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

// Package burner writes firmware images into one of the redundant root
// filesystem partitions and switches the bootloader over to it.
//
// An update validates the image header, clears the validity flag of the
// target partition, erases it, streams the payload into it and, only
// when every byte was written, makes it the active boot partition.
package burner

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/canonical/x-go/strutil/quantity"

	"github.com/termus/burnfw/internals/firmware"
	"github.com/termus/burnfw/internals/logger"
	"github.com/termus/burnfw/internals/partition"
)

// Config holds the device settings the engine depends on.
type Config struct {
	// ProductID must match the device id of accepted images.
	ProductID uint32
	// SupportFwVer enables the bootloader validity handshake.
	SupportFwVer bool
}

// Executor runs the external operations of an update.
type Executor interface {
	// Erase erases the raw flash device, blocking until it is done.
	Erase(device string) error
	// GetEnv returns the value of a bootloader environment variable.
	GetEnv(name string) (string, error)
	// SetEnv sets all the given bootloader variables in a single update.
	SetEnv(vars map[string]string) error
	// Sync flushes the bootloader environment and filesystems.
	Sync() error
}

// Reporter receives the completion percentage of an update. It is called
// synchronously from the write loop and must return promptly.
type Reporter interface {
	Report(percent int)
}

// PayloadReporter is a Reporter that is also told the payload size of an
// update once its header was accepted.
type PayloadReporter interface {
	Reporter
	SetPayload(size int64)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(percent int)

func (f ReporterFunc) Report(percent int) { f(percent) }

type nopReporter struct{}

func (nopReporter) Report(int) {}

// Options are the parameters of New.
type Options struct {
	Config Config

	// Registry defaults to partition.Default.
	Registry partition.Registry

	Executor Executor

	// Reporter is optional.
	Reporter Reporter
}

// Engine performs firmware validation, erase and update operations. An
// engine must not run more than one operation at a time against the
// same partition.
type Engine struct {
	config   Config
	registry partition.Registry
	exec     Executor
	reporter Reporter
}

// New returns an engine configured with opts.
func New(opts *Options) (*Engine, error) {
	if opts.Executor == nil {
		return nil, errors.New("internal error: engine requires an executor")
	}
	registry := opts.Registry
	if registry == nil {
		registry = partition.Default
	}
	if err := registry.Validate(); err != nil {
		return nil, fmt.Errorf("invalid partition registry: %w", err)
	}
	reporter := opts.Reporter
	if reporter == nil {
		reporter = nopReporter{}
	}
	return &Engine{
		config:   opts.Config,
		registry: registry,
		exec:     opts.Executor,
		reporter: reporter,
	}, nil
}

// Validate checks that the image at path has a readable header whose
// device id matches the configured product id, and returns the header.
func (e *Engine) Validate(imagePath string) (*firmware.Header, error) {
	f, err := os.Open(imagePath)
	if err != nil {
		return nil, errorf(ErrorKindOpenFirmware, "cannot open firmware: %w", err)
	}
	defer f.Close()

	return e.checkImage(f)
}

func (e *Engine) checkImage(r io.ReaderAt) (*firmware.Header, error) {
	h, err := firmware.ReadHeader(r)
	if err != nil {
		return nil, errorf(ErrorKindReadFirmwareHeader, "cannot read firmware header: %w", err)
	}
	if h.DeviceID != e.config.ProductID {
		return nil, errorf(ErrorKindIncompatible, "firmware for device %d is incompatible with product %d", h.DeviceID, e.config.ProductID)
	}
	return &h, nil
}

// Erase erases the flash device of the named partition. It does not touch
// the bootloader environment.
func (e *Engine) Erase(name string) error {
	spec, ok := e.registry.Lookup(name)
	if !ok {
		return errorf(ErrorKindEraseFlash, "cannot erase unknown partition %q", name)
	}
	return e.erase(spec)
}

// Update writes the payload of the image at imagePath into the named
// partition and, on success, makes it the active boot partition.
//
// A failure after erase leaves the target partition in an undefined state
// but never switches the boot partition, so the device keeps booting from
// the previously active one.
func (e *Engine) Update(imagePath, name string) error {
	logger.Noticef("Partition choice: %s", name)

	spec, ok := e.registry.Lookup(name)
	if !ok {
		return errorf(ErrorKindEraseFlash, "cannot erase unknown partition %q", name)
	}
	if spec.BlockDevice == "" {
		return errorf(ErrorKindOpenPartition, "cannot open partition %q: no block device", name)
	}

	f, err := os.Open(imagePath)
	if err != nil {
		return errorf(ErrorKindOpenFirmware, "cannot open firmware: %w", err)
	}
	defer f.Close()

	if _, err := e.checkImage(f); err != nil {
		return err
	}
	size, err := firmware.PayloadSize(f)
	if err != nil {
		return errorf(ErrorKindReadFirmwareHeader, "cannot read firmware header: %w", err)
	}
	logger.Noticef("Firmware size: %sB", strings.TrimSpace(quantity.FormatAmount(uint64(size), -1)))
	if pr, ok := e.reporter.(PayloadReporter); ok {
		pr.SetPayload(size)
	}

	sw := &bootSwitcher{exec: e.exec, handshake: e.config.SupportFwVer}
	defer sw.sync()

	err = sw.invalidate(spec)
	if err == nil {
		err = e.burn(spec, f, size)
	}
	if err != nil {
		sw.restore(spec)
		return err
	}
	if err := sw.commit(spec); err != nil {
		sw.restore(spec)
		return err
	}
	return nil
}

func (e *Engine) burn(spec partition.Spec, src io.ReadSeeker, size int64) error {
	if err := e.erase(spec); err != nil {
		return err
	}

	dev, err := openBlockDevice(spec.BlockDevice)
	if err != nil {
		return errorf(ErrorKindOpenPartition, "cannot open partition %q: %w", spec.Name, err)
	}
	if _, err := src.Seek(firmware.HeaderSize, io.SeekStart); err != nil {
		dev.Close()
		return errorf(ErrorKindDefault, "cannot skip firmware header: %w", err)
	}

	s := &session{target: spec, payloadSize: size, reporter: e.reporter}
	err = s.stream(dev, src)
	if syncer, ok := dev.(interface{ Sync() error }); ok && err == nil {
		if serr := syncer.Sync(); serr != nil {
			err = errorf(ErrorKindWritePartition, "cannot flush partition %q: %w", spec.Name, serr)
		}
	}
	if cerr := dev.Close(); cerr != nil && err == nil {
		err = errorf(ErrorKindWritePartition, "cannot write partition %q: %w", spec.Name, cerr)
	}
	if err != nil {
		return err
	}
	logger.Noticef("Firmware written to partition %s.", spec.Name)
	s.finish()
	return nil
}

// ActivePartition returns the partition the bootloader is set to boot.
func (e *Engine) ActivePartition() (partition.Spec, error) {
	name, err := e.exec.GetEnv(envActivePartition)
	if err != nil {
		return partition.Spec{}, errorf(ErrorKindPartitionPath, "cannot obtain active partition: %w", err)
	}
	return e.Partition(name)
}

// Partition returns the registry entry for the named partition.
func (e *Engine) Partition(name string) (partition.Spec, error) {
	spec, ok := e.registry.Lookup(name)
	if !ok {
		return partition.Spec{}, errorf(ErrorKindPartitionPath, "unknown partition %q", name)
	}
	return spec, nil
}

// Partitions returns the partition registry used by the engine.
func (e *Engine) Partitions() partition.Registry {
	return e.registry
}
