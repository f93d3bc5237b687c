package tui

import (
	"context"
	"errors"
	"os/exec"
	"runtime"
	"strings"
	"unicode/utf8"
)

// Opener hands a URL to the desktop.
type Opener func(ctx context.Context, href string) error

// SystemOpener uses the platform URL handler.
func SystemOpener(ctx context.Context, href string) error {
	if strings.TrimSpace(href) == "" {
		return errors.New("empty link")
	}
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "open", href)
	case "windows":
		cmd = exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", href)
	default:
		cmd = exec.CommandContext(ctx, "xdg-open", href)
	}
	return cmd.Start()
}

// byteOffset converts a rune offset into a byte offset within text.
func byteOffset(text string, runes int) int {
	if runes <= 0 {
		return 0
	}
	i := 0
	for pos := range text {
		if i == runes {
			return pos
		}
		i++
	}
	return len(text)
}

// runeOffset returns the absolute rune offset of (row, col) in text.
func runeOffset(text string, row, col int) int {
	lines := strings.Split(text, "\n")
	offset := 0
	for i := 0; i < row && i < len(lines); i++ {
		offset += utf8.RuneCountInString(lines[i]) + 1
	}
	if row < len(lines) {
		if n := utf8.RuneCountInString(lines[row]); col > n {
			col = n
		}
	}
	return offset + col
}

// rowCol is the inverse of runeOffset.
func rowCol(text string, offset int) (int, int) {
	row, col := 0, 0
	for i, r := range []rune(text) {
		if i == offset {
			break
		}
		if r == '\n' {
			row++
			col = 0
			continue
		}
		col++
	}
	return row, col
}
