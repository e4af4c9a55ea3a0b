// Package qr renders the server's startup URL as a scannable terminal QR
// code, grounded on the teacher's internal/ui/qr.go (there used to print a
// transfer link for warp send/host; here printing the listen URL so a phone
// on the LAN can open the served directory without typing it in).
package qr

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// Print renders url as a QR code to os.Stdout.
func Print(url string) error {
	return Fprint(os.Stdout, url)
}

// Fprint renders url as a QR code to w, as compact Unicode half-block
// characters (█ ▀ ▄) inside a border.
func Fprint(w io.Writer, url string) error {
	qr, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return err
	}
	qr.DisableBorder = true

	bm := qr.Bitmap()
	if len(bm) == 0 {
		return nil
	}
	width := len(bm[0])
	cols := detectTerminalColumns()
	if cols > 0 && width > cols {
		fmt.Fprintf(w, "(QR width %d exceeds terminal columns %d)\n", width, cols)
	}

	bw := bufio.NewWriter(w)
	defer func() { _ = bw.Flush() }()

	border := strings.Repeat("─", width+2)
	_, _ = bw.WriteString("┌" + border + "┐\n")

	height := len(bm)
	for y := 0; y < height; y += 2 {
		var b strings.Builder
		b.WriteString("│ ")
		for x := 0; x < width; x++ {
			top := bm[y][x]
			bottom := false
			if y+1 < height {
				bottom = bm[y+1][x]
			}
			b.WriteRune(pixel(top, bottom))
		}
		b.WriteString(" │\n")
		_, _ = bw.WriteString(b.String())
	}
	_, _ = bw.WriteString("└" + border + "┘\n")

	return nil
}

func pixel(top, bottom bool) rune {
	switch {
	case top && bottom:
		return '█'
	case top && !bottom:
		return '▀'
	case !top && bottom:
		return '▄'
	default:
		return ' '
	}
}

// detectTerminalColumns reads the COLUMNS env var, returning 0 (unknown) if
// it's unset or unparsable.
func detectTerminalColumns() int {
	s := os.Getenv("COLUMNS")
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
