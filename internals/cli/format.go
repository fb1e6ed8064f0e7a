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
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/canonical/x-go/strutil/quantity"
	"golang.org/x/term"
)

func tabWriter() *tabwriter.Writer {
	return tabwriter.NewWriter(Stdout, 5, 3, 2, ' ', 0)
}

var termWidth = termWidthImpl

// termWidthImpl returns the width available for progress output, falling
// back to $COLUMNS and then to 80 columns when stdout is not a terminal.
func termWidthImpl() int {
	width := 0
	if f, ok := Stdout.(*os.File); ok {
		width, _, _ = term.GetSize(int(f.Fd()))
	}
	if width <= 0 {
		width, _ = strconv.Atoi(os.Getenv("COLUMNS"))
	}
	if width < 40 {
		width = 80
	}
	return width
}

// formatSize renders a byte count the way the rest of the output does,
// for example "1.5MB".
func formatSize(size uint64) string {
	return strings.TrimSpace(quantity.FormatAmount(size, -1)) + "B"
}
