package terminal

import (
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/presenter"
)

type Style int

const (
	StyleNormal Style = iota
	StyleHint
	StyleMark
	StyleHighlight
	StyleMessage
)

type Segment struct {
	Text  string
	Style Style
}

type Line []Segment

func (that Line) Text() string {
	var builder strings.Builder
	for _, segment := range that {
		builder.WriteString(segment.Text)
	}

	return builder.String()
}

// Width is the number of terminal columns the line takes.
func (that Line) Width() int {
	return runewidth.StringWidth(that.Text())
}

const (
	cellSeparator = "|"
	rowSeparator  = "---+---+---"
)

// Layout lays a view out as screen lines: the board with the key number in
// every free cell, then the message, the score and the instructions.
func Layout(view presenter.View) []Line {
	lines := make([]Line, 0, 9)

	for row := 0; row < 3; row++ {
		if row > 0 {
			lines = append(lines, Line{{Text: rowSeparator}})
		}

		line := make(Line, 0, 5)
		for col := 0; col < 3; col++ {
			if col > 0 {
				line = append(line, Segment{Text: cellSeparator})
			}

			line = append(line, cellSegment(view, row*3+col))
		}

		lines = append(lines, line)
	}

	lines = append(lines,
		Line{},
		Line{{Text: view.Message, Style: StyleMessage}},
		Line{{Text: view.ScoreLine}},
		Line{{Text: view.Instructions, Style: StyleHint}},
	)

	return lines
}

func cellSegment(view presenter.View, cell int) Segment {
	label := view.Cells[cell]

	switch {
	case label == string(entity.EmptyCell):
		return Segment{Text: " " + strconv.Itoa(cell+1) + " ", Style: StyleHint}
	case view.Highlight[cell]:
		return Segment{Text: " " + label + " ", Style: StyleHighlight}
	default:
		return Segment{Text: " " + label + " ", Style: StyleMark}
	}
}

func runeWidth(ch rune) int {
	if width := runewidth.RuneWidth(ch); width > 0 {
		return width
	}

	return 1
}
