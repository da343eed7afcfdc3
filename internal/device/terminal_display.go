package device

import (
	"fmt"
	"image"
	_ "image/jpeg"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

const (
	clearScreen = "\x1b[2J\x1b[H"
	hideCursor  = "\x1b[?25l"
	showCursor  = "\x1b[?25h"
)

var (
	colorPrimary = lipgloss.Color("12")  // bright blue
	colorDim     = lipgloss.Color("240") // gray

	styleImage = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(2, 6).
			Bold(true)

	styleImageMeta = lipgloss.NewStyle().
			Foreground(colorDim)

	styleText = lipgloss.NewStyle().
			Align(lipgloss.Center)
)

// TerminalDisplay renders frames on a terminal. Images cannot be drawn in a
// text terminal, so an image is shown as a framed caption with its file
// name and pixel size.
type TerminalDisplay struct {
	out    io.Writer
	width  int
	height int

	image string
	text  map[Position]string
}

// NewTerminalDisplay creates a display writing to out. The frame fills the
// terminal when out is one; otherwise it defaults to 80x24.
func NewTerminalDisplay(out io.Writer) *TerminalDisplay {
	d := &TerminalDisplay{out: out, width: 80, height: 24, text: make(map[Position]string)}
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if w, h, err := term.GetSize(int(f.Fd())); err == nil && w > 0 && h > 0 {
			d.width, d.height = w, h
		}
	}
	fmt.Fprint(out, hideCursor)
	return d
}

// ShowImage places the image at path in the back buffer.
func (d *TerminalDisplay) ShowImage(path string) error {
	caption := filepath.Base(path)
	if w, h, err := imageSize(path); err == nil {
		caption += "\n" + styleImageMeta.Render(fmt.Sprintf("%d x %d px", w, h))
	}
	d.image = styleImage.Render(caption)
	return nil
}

// ShowText places text at pos in the back buffer, replacing earlier text
// at the same position.
func (d *TerminalDisplay) ShowText(text string, pos Position) error {
	d.text[pos] = styleText.Render(text)
	return nil
}

// Present draws the back buffer and clears it for the next frame.
func (d *TerminalDisplay) Present() error {
	frame := d.render()
	d.image = ""
	d.text = make(map[Position]string)
	// Raw mode disables output post-processing, so lines need an explicit
	// carriage return.
	frame = strings.ReplaceAll(frame, "\n", "\r\n")
	if _, err := io.WriteString(d.out, clearScreen+frame); err != nil {
		return fmt.Errorf("present frame: %w", err)
	}
	return nil
}

// Close clears the screen and restores the cursor.
func (d *TerminalDisplay) Close() error {
	_, err := io.WriteString(d.out, clearScreen+showCursor)
	return err
}

func (d *TerminalDisplay) render() string {
	middle := d.image
	if middle == "" {
		middle = d.text[Center]
	} else if c := d.text[Center]; c != "" {
		middle = lipgloss.JoinVertical(lipgloss.Center, middle, c)
	}

	var rows []string
	top := lipgloss.Place(d.width, 2, lipgloss.Center, lipgloss.Top, d.text[Top])
	bottom := lipgloss.Place(d.width, 2, lipgloss.Center, lipgloss.Bottom, d.text[Bottom])
	bodyHeight := d.height - lipgloss.Height(top) - lipgloss.Height(bottom)
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	rows = append(rows, top)
	rows = append(rows, lipgloss.Place(d.width, bodyHeight, lipgloss.Center, lipgloss.Center, middle))
	rows = append(rows, bottom)
	return strings.Join(rows, "\n")
}

// imageSize reads only the image header.
func imageSize(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}
