package board

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the FEN of the standard initial position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ErrInvalidFEN is wrapped by every FEN parsing failure.
var ErrInvalidFEN = errors.New("invalid fen")

// ParseFEN parses a standard six-field FEN string. The full-move counter is
// read but ignored. On failure no partially built position escapes.
func ParseFEN(fen string) (*Position, error) {
	fields := strings.Fields(fen)
	if len(fields) != 6 {
		return nil, fmt.Errorf("%w: expected 6 fields, got %d", ErrInvalidFEN, len(fields))
	}

	p := &Position{}

	// Piece placement.
	rank, file := 7, 0
	for i := 0; i < len(fields[0]); i++ {
		c := fields[0][i]
		switch {
		case c >= '0' && c <= '9':
			file += int(c - '0')
		case c == '/':
			if file != 8 {
				return nil, fmt.Errorf("%w: rank %d not complete", ErrInvalidFEN, rank+1)
			}
			rank--
			file = 0
		default:
			if rank < 0 || rank > 7 || file < 0 || file > 7 {
				return nil, fmt.Errorf("%w: bad board coordinates", ErrInvalidFEN)
			}
			idx := pieceFromFENChar(c)
			if idx < 0 {
				return nil, fmt.Errorf("%w: unknown piece %q", ErrInvalidFEN, string(c))
			}
			p.Pieces[idx] |= SquareBB(NewSquare(file, rank))
			file++
		}
	}
	if rank != 0 || file != 8 {
		return nil, fmt.Errorf("%w: board dimensions incorrect", ErrInvalidFEN)
	}
	p.updateOccupancy()

	// Active color.
	switch fields[1] {
	case "w":
		p.Us, p.Opp = White, Black
	case "b":
		p.Us, p.Opp = Black, White
	default:
		return nil, fmt.Errorf("%w: active color %q", ErrInvalidFEN, fields[1])
	}

	// Castling rights.
	if fields[2] != "-" {
		for _, c := range fields[2] {
			switch c {
			case 'K':
				p.CastlingRights |= WhiteKingSideCastle
			case 'Q':
				p.CastlingRights |= WhiteQueenSideCastle
			case 'k':
				p.CastlingRights |= BlackKingSideCastle
			case 'q':
				p.CastlingRights |= BlackQueenSideCastle
			default:
				return nil, fmt.Errorf("%w: castling right %q", ErrInvalidFEN, string(c))
			}
		}
	}

	// En-passant square.
	if fields[3] != "-" {
		sq, err := ParseSquare(fields[3])
		if err != nil {
			return nil, fmt.Errorf("%w: en-passant square %q", ErrInvalidFEN, fields[3])
		}
		p.EPSquare = SquareBB(sq)
	}

	// Half-move clock. The full-move counter in fields[5] is ignored.
	rule50, err := strconv.Atoi(fields[4])
	if err != nil {
		return nil, fmt.Errorf("%w: half-move clock %q", ErrInvalidFEN, fields[4])
	}
	p.Rule50 = rule50

	p.Hash = p.ComputeHash()
	return p, nil
}

// ToFEN renders the position as FEN. The full-move counter is not tracked and
// is always emitted as 1.
func (p *Position) ToFEN() string {
	var sb strings.Builder

	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			bb := SquareBB(NewSquare(file, rank))
			found := false
			for idx := 0; idx < 12; idx++ {
				if p.Pieces[idx]&bb != 0 {
					if empty > 0 {
						sb.WriteString(strconv.Itoa(empty))
						empty = 0
					}
					sb.WriteByte(fenPieceChars[idx])
					found = true
					break
				}
			}
			if !found {
				empty++
			}
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	if p.Us == White {
		sb.WriteString(" w ")
	} else {
		sb.WriteString(" b ")
	}

	if p.CastlingRights == 0 {
		sb.WriteByte('-')
	} else {
		if p.CastlingRights&WhiteKingSideCastle != 0 {
			sb.WriteByte('K')
		}
		if p.CastlingRights&WhiteQueenSideCastle != 0 {
			sb.WriteByte('Q')
		}
		if p.CastlingRights&BlackKingSideCastle != 0 {
			sb.WriteByte('k')
		}
		if p.CastlingRights&BlackQueenSideCastle != 0 {
			sb.WriteByte('q')
		}
	}

	sb.WriteByte(' ')
	if p.EPSquare == 0 {
		sb.WriteByte('-')
	} else {
		sb.WriteString(p.EPSquare.LSB().String())
	}

	sb.WriteString(fmt.Sprintf(" %d 1", p.Rule50))
	return sb.String()
}
