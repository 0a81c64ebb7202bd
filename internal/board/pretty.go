package board

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Pretty renders the position as a colored terminal board with the game-state
// fields below it. Output is for humans on the "d" debug command; protocol
// output never goes through here.
func (p *Position) Pretty() string {
	lightCell := color.New(color.BgHiWhite, color.FgBlack)
	darkCell := color.New(color.BgGreen, color.FgBlack)
	label := color.New(color.Bold)

	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		sb.WriteString(label.Sprintf(" %d ", rank+1))
		for file := 0; file < 8; file++ {
			sq := NewSquare(file, rank)
			sym := byte(' ')
			for idx := 0; idx < 12; idx++ {
				if p.Pieces[idx].IsSet(sq) {
					sym = fenPieceChars[idx]
					break
				}
			}
			cell := darkCell
			if (file+rank)%2 == 1 {
				cell = lightCell
			}
			sb.WriteString(cell.Sprintf(" %c ", sym))
		}
		sb.WriteByte('\n')
	}
	sb.WriteString(label.Sprint("    a  b  c  d  e  f  g  h "))
	sb.WriteByte('\n')

	sb.WriteString("\nfen: " + p.ToFEN())
	sb.WriteString(fmt.Sprintf("\nhash: %016x\n", p.Hash))
	return sb.String()
}
