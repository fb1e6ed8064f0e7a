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

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/canonical/go-flags"
	"golang.org/x/term"

	version "github.com/termus/burnfw/cmd"
	"github.com/termus/burnfw/internals/burner"
	"github.com/termus/burnfw/internals/logger"
)

var (
	// Standard streams, redirected for testing.
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
	// set to logger.Panicf in testing
	noticef = logger.Noticef
)

type options struct {
	Config  string `long:"config"`
	Version func() `long:"version"`
}

var optionsData options

// ArgumentHelp describes a positional argument in the command manual.
type ArgumentHelp struct {
	Placeholder string
	Help        string
}

// ErrExtraArgs is returned when a command receives unexpected arguments.
var ErrExtraArgs = fmt.Errorf("too many arguments for command")

// CmdInfo registers a burnfw subcommand.
type CmdInfo struct {
	Name        string
	Aliases     []string
	Summary     string
	Description string

	// New returns a fresh command value for every parser.
	New func() flags.Commander

	// OptionsHelp maps long option names to their help text. When set it
	// must cover every option of the command.
	OptionsHelp map[string]string

	// ArgumentsHelp is keyed by the positional-arg-name of each argument.
	ArgumentsHelp map[string]ArgumentHelp
}

var commands []*CmdInfo

// AddCommand registers a command for every parser built by Parser.
func AddCommand(info *CmdInfo) {
	commands = append(commands, info)
}

func lintDesc(cmdName, optName, desc, origDesc string) {
	if len(optName) == 0 {
		logger.Panicf("option on %q has no name", cmdName)
	}
	if len(origDesc) != 0 {
		logger.Panicf("description of %s's %q of %q set from tag", cmdName, optName, origDesc)
	}
	if len(desc) > 0 {
		// decode the first rune instead of converting all of desc into []rune
		r, _ := utf8.DecodeRuneInString(desc)
		// note IsLower != !IsUpper for runes with no upper/lower.
		if unicode.IsLower(r) && !strings.HasPrefix(desc, cmdName) {
			noticef("description of %s's %q is lowercase: %q", cmdName, optName, desc)
		}
	}
}

func lintArg(cmdName, optName, desc, origDesc string) {
	lintDesc(cmdName, optName, desc, origDesc)
	if len(optName) > 0 && optName[0] == '<' && optName[len(optName)-1] == '>' {
		return
	}
	noticef("argument %q's %q should begin with < and end with >", cmdName, optName)
}

const longBurnfwDescription = `
burnfw writes firmware images into the redundant root filesystem
partitions of the device and switches the bootloader over to the freshly
written partition.
`

// Parser returns a new parser with every registered command. Command
// values hold option state, so each parse needs its own parser.
func Parser() *flags.Parser {
	optionsData = options{}
	optionsData.Version = func() {
		fmt.Fprintln(Stdout, version.Version)
		panic(&exitStatus{0})
	}
	flagopts := flags.Options(flags.PassDoubleDash | flags.HelpFlag)
	parser := flags.NewParser(&optionsData, flagopts)
	parser.ShortDescription = "Firmware update tool"
	parser.LongDescription = longBurnfwDescription
	if opt := parser.FindOptionByLongName("version"); opt != nil {
		opt.Description = "Print the version and exit"
	}
	if opt := parser.FindOptionByLongName("config"); opt != nil {
		opt.Description = "Configuration file (defaults to $BURNFW_CONFIG, then /etc/burnfw/config.yaml)"
		opt.ValueName = "<path>"
	}

	for _, c := range commands {
		obj := c.New()
		cmd, err := parser.AddCommand(c.Name, c.Summary, strings.TrimSpace(c.Description), obj)
		if err != nil {
			logger.Panicf("cannot add command %q: %v", c.Name, err)
		}
		cmd.Aliases = c.Aliases

		opts := cmd.Options()
		if c.OptionsHelp != nil && len(opts) != len(c.OptionsHelp) {
			logger.Panicf("wrong number of option descriptions for %s: expected %d, got %d", c.Name, len(opts), len(c.OptionsHelp))
		}
		for _, opt := range opts {
			name := opt.LongName
			if name == "" {
				name = string(opt.ShortName)
			}
			desc, ok := c.OptionsHelp[name]
			if !(c.OptionsHelp == nil || ok) {
				logger.Panicf("%s missing description for %s", c.Name, name)
			}
			lintDesc(c.Name, name, desc, opt.Description)
			if desc != "" {
				opt.Description = desc
			}
		}

		args := cmd.Args()
		if c.ArgumentsHelp != nil && len(args) != len(c.ArgumentsHelp) {
			logger.Panicf("wrong number of argument descriptions for %s: expected %d, got %d", c.Name, len(args), len(c.ArgumentsHelp))
		}
		for _, arg := range args {
			name, desc := arg.Name, ""
			if c.ArgumentsHelp != nil {
				name = c.ArgumentsHelp[arg.Name].Placeholder
				desc = c.ArgumentsHelp[arg.Name].Help
			}
			lintArg(c.Name, name, desc, arg.Description)
			arg.Name = name
			arg.Description = desc
		}
	}
	return parser
}

var (
	isStdoutTTY = term.IsTerminal(1)
	osExit      = os.Exit
)

// exitStatus is panicked with to leave with a specific exit code; Run
// recovers it and calls osExit.
type exitStatus struct {
	code int
}

func (e *exitStatus) Error() string {
	return fmt.Sprintf("internal error: exitStatus{%d} being handled as normal error", e.code)
}

var errorPrefix = "error: "

var setupLogger = func() {
	l := logger.New(os.Stderr, "["+version.ProgramName+"] ")
	if sl, err := logger.NewSyslog(version.ProgramName); err == nil {
		l = logger.Multi(l, sl)
	}
	logger.SetLogger(l)
}

// Run parses the command line and runs the selected command. Update engine
// failures are printed and terminate the process with the exit code of
// their kind; other errors are returned.
func Run() error {
	defer func() {
		if v := recover(); v != nil {
			if e, ok := v.(*exitStatus); ok {
				osExit(e.code)
			}
			panic(v)
		}
	}()

	setupLogger()

	parser := Parser()
	xtra, err := parser.Parse()
	if err == nil {
		return nil
	}

	var flagsErr *flags.Error
	if errors.As(err, &flagsErr) {
		switch flagsErr.Type {
		case flags.ErrCommandRequired:
			parser.WriteHelp(Stdout)
			return nil
		case flags.ErrHelp:
			fmt.Fprintln(Stdout, flagsErr.Message)
			return nil
		case flags.ErrUnknownCommand:
			sub := os.Args[1]
			if len(xtra) > 0 {
				sub = xtra[0]
			}
			return fmt.Errorf("unknown command %q, see '%s --help'.", sub, version.ProgramName)
		}
		return err
	}

	var engineErr *burner.Error
	if errors.As(err, &engineErr) {
		fmt.Fprintf(Stderr, "%s%v\n", errorPrefix, err)
		panic(&exitStatus{engineErr.Kind.ExitCode()})
	}
	return err
}
