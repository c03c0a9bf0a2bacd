package engine

import (
	"encoding/json"
	"fmt"
)

// MoveType is the discriminator tag of a move descriptor.
type MoveType string

const (
	MoveDraw                MoveType = "draw"
	MoveTableauToTableau    MoveType = "t2t"
	MoveTableauToFoundation MoveType = "t2f"
	MoveWasteToTableau      MoveType = "w2t"
	MoveWasteToFoundation   MoveType = "w2f"
	MoveRecycle             MoveType = "recycle"
)

// Known reports whether t is a recognised move tag.
func (t MoveType) Known() bool {
	switch t {
	case MoveDraw, MoveTableauToTableau, MoveTableauToFoundation,
		MoveWasteToTableau, MoveWasteToFoundation, MoveRecycle:
		return true
	}
	return false
}

// Move is a transport-neutral move descriptor. Only the fields relevant to
// Type are meaningful.
type Move struct {
	Type       MoveType
	FromCol    int
	StartIndex int
	ToCol      int
}

// Descriptor constructors.
func DrawMove() Move    { return Move{Type: MoveDraw} }
func W2F() Move         { return Move{Type: MoveWasteToFoundation} }
func RecycleMove() Move { return Move{Type: MoveRecycle} }
func T2F(from int) Move { return Move{Type: MoveTableauToFoundation, FromCol: from} }
func W2T(to int) Move   { return Move{Type: MoveWasteToTableau, ToCol: to} }

// T2T moves the run starting at index start of column from onto column to.
func T2T(from, start, to int) Move {
	return Move{Type: MoveTableauToTableau, FromCol: from, StartIndex: start, ToCol: to}
}

// String renders m for logs, e.g. "t2t(col 0[3] -> col 5)".
func (m Move) String() string {
	switch m.Type {
	case MoveTableauToTableau:
		return fmt.Sprintf("t2t(col %d[%d] -> col %d)", m.FromCol, m.StartIndex, m.ToCol)
	case MoveTableauToFoundation:
		return fmt.Sprintf("t2f(col %d)", m.FromCol)
	case MoveWasteToTableau:
		return fmt.Sprintf("w2t(col %d)", m.ToCol)
	}
	return string(m.Type)
}

// wireMove is the JSON shape; pointers distinguish a missing field from 0.
type wireMove struct {
	Type       MoveType `json:"type"`
	FromCol    *int     `json:"from_col,omitempty"`
	StartIndex *int     `json:"start_index,omitempty"`
	ToCol      *int     `json:"to_col,omitempty"`
}

// MarshalJSON emits only the fields that belong to the move's type.
func (m Move) MarshalJSON() ([]byte, error) {
	w := wireMove{Type: m.Type}
	switch m.Type {
	case MoveTableauToTableau:
		w.FromCol, w.StartIndex, w.ToCol = &m.FromCol, &m.StartIndex, &m.ToCol
	case MoveTableauToFoundation:
		w.FromCol = &m.FromCol
	case MoveWasteToTableau:
		w.ToCol = &m.ToCol
	}
	return json.Marshal(w)
}

// UnmarshalJSON requires every field the tag needs. An unknown tag decodes
// successfully so ApplyMove can report ErrUnknownMoveType.
func (m *Move) UnmarshalJSON(b []byte) error {
	var w wireMove
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	need := func(name string, v *int) (int, error) {
		if v == nil {
			return 0, fmt.Errorf("%w: %s move missing %s", ErrInvalidMove, w.Type, name)
		}
		return *v, nil
	}
	out := Move{Type: w.Type}
	var err error
	switch w.Type {
	case MoveTableauToTableau:
		if out.FromCol, err = need("from_col", w.FromCol); err != nil {
			return err
		}
		if out.StartIndex, err = need("start_index", w.StartIndex); err != nil {
			return err
		}
		if out.ToCol, err = need("to_col", w.ToCol); err != nil {
			return err
		}
	case MoveTableauToFoundation:
		if out.FromCol, err = need("from_col", w.FromCol); err != nil {
			return err
		}
	case MoveWasteToTableau:
		if out.ToCol, err = need("to_col", w.ToCol); err != nil {
			return err
		}
	}
	*m = out
	return nil
}
