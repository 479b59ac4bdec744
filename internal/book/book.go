package book

import (
	"encoding/binary"
	"io"
	"math/rand"
	"os"
	"sort"

	"github.com/hailam/chesscore/internal/board"
)

// Entry is one book move for a position. Moves are stored as coordinates
// and only become board.Moves once matched against a position's legal moves.
type Entry struct {
	From      board.Square
	To        board.Square
	Promotion board.PieceType // NoPieceType when not a promotion
	Weight    uint16
}

// UCI returns the entry's move in UCI form.
func (e Entry) UCI() string {
	s := e.From.String() + e.To.String()
	if e.Promotion != board.NoPieceType {
		s += string(e.Promotion.Letter() + 'a' - 'A')
	}
	return s
}

// Book represents an opening book.
type Book struct {
	entries map[uint64][]Entry
}

// New creates an empty book.
func New() *Book {
	return &Book{
		entries: make(map[uint64][]Entry),
	}
}

// Add records a move for the position with the given key.
func (b *Book) Add(key uint64, e Entry) {
	b.entries[key] = append(b.entries[key], e)
}

// LoadPolyglot loads a Polyglot format opening book from a file.
func LoadPolyglot(filename string) (*Book, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadPolyglotReader(file)
}

// LoadPolyglotReader loads a Polyglot format book from a reader.
func LoadPolyglotReader(r io.Reader) (*Book, error) {
	book := New()

	// Polyglot entry format:
	// 8 bytes: position key (big-endian)
	// 2 bytes: move (big-endian)
	// 2 bytes: weight (big-endian)
	// 4 bytes: learn data (ignored)
	var entry [16]byte

	for {
		_, err := io.ReadFull(r, entry[:])
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		key := binary.BigEndian.Uint64(entry[0:8])
		e := decodePolyglotMove(binary.BigEndian.Uint16(entry[8:10]))
		e.Weight = binary.BigEndian.Uint16(entry[10:12])
		book.Add(key, e)
	}

	return book, nil
}

// decodePolyglotMove converts a Polyglot move encoding to an Entry.
// Polyglot move format (bits):
// 0-5: to square
// 6-11: from square
// 12-14: promotion piece (0=none, 1=knight, 2=bishop, 3=rook, 4=queen)
func decodePolyglotMove(data uint16) Entry {
	toFile := data & 7
	toRank := (data >> 3) & 7
	fromFile := (data >> 6) & 7
	fromRank := (data >> 9) & 7
	promo := (data >> 12) & 7

	from := board.NewSquare(int(fromFile), int(fromRank))
	to := board.NewSquare(int(toFile), int(toRank))

	// Polyglot encodes castling as king-captures-rook
	switch {
	case from == board.E1 && to == board.H1:
		to = board.G1
	case from == board.E1 && to == board.A1:
		to = board.C1
	case from == board.E8 && to == board.H8:
		to = board.G8
	case from == board.E8 && to == board.A8:
		to = board.C8
	}

	e := Entry{From: from, To: to, Promotion: board.NoPieceType}
	switch promo {
	case 1:
		e.Promotion = board.Knight
	case 2:
		e.Promotion = board.Bishop
	case 3:
		e.Promotion = board.Rook
	case 4:
		e.Promotion = board.Queen
	}
	return e
}

// EncodePolyglotMove is the inverse of the Polyglot move decoding, with
// castling written as king-to-target square.
func EncodePolyglotMove(e Entry) uint16 {
	data := uint16(e.To.File()) | uint16(e.To.Rank())<<3 |
		uint16(e.From.File())<<6 | uint16(e.From.Rank())<<9
	switch e.Promotion {
	case board.Knight:
		data |= 1 << 12
	case board.Bishop:
		data |= 2 << 12
	case board.Rook:
		data |= 3 << 12
	case board.Queen:
		data |= 4 << 12
	}
	return data
}

// Probe looks up a position in the book and returns a legal move using
// weighted random selection. Entries that are not legal in pos are skipped.
func (b *Book) Probe(pos *board.Position) (board.Move, bool) {
	entries := b.legalEntries(pos)
	if len(entries) == 0 {
		return board.NoMove, false
	}

	totalWeight := uint32(0)
	for _, e := range entries {
		totalWeight += uint32(e.entry.Weight)
	}

	if totalWeight == 0 {
		// All weights are 0, just pick the first
		return entries[0].move, true
	}

	r := rand.Uint32() % totalWeight
	cumulative := uint32(0)
	for _, e := range entries {
		cumulative += uint32(e.entry.Weight)
		if r < cumulative {
			return e.move, true
		}
	}

	return entries[0].move, true
}

// ProbeAll returns all book entries for the position, sorted by weight.
func (b *Book) ProbeAll(pos *board.Position) []Entry {
	if b == nil {
		return nil
	}

	entries := b.entries[pos.PolyglotHash()]
	result := make([]Entry, len(entries))
	copy(result, entries)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Weight > result[j].Weight
	})

	return result
}

type legalEntry struct {
	entry Entry
	move  board.Move
}

// legalEntries pairs the book entries for pos with their legal moves,
// highest weight first.
func (b *Book) legalEntries(pos *board.Position) []legalEntry {
	var out []legalEntry
	for _, e := range b.ProbeAll(pos) {
		if m, err := board.ParseUCI(e.UCI(), pos); err == nil {
			out = append(out, legalEntry{entry: e, move: m})
		}
	}
	return out
}

// Size returns the number of unique positions in the book.
func (b *Book) Size() int {
	if b == nil {
		return 0
	}
	return len(b.entries)
}
