package engine

// DefaultAutoplayLimit caps Autoplay when no positive limit is given.
const DefaultAutoplayLimit = 200

// Autoplay sends every card it safely can to the foundations: the waste top
// first, then each tableau top from column 0 to 6, repeating until a pass
// makes no progress or limit moves have been made. It returns the number of
// moves applied. The whole batch is a single undo entry.
func (g *Game) Autoplay(limit int) int {
	if limit <= 0 {
		limit = DefaultAutoplayLimit
	}
	before := g.Snapshot()
	moved := 0
	for moved < limit {
		progress := false
		for moved < limit && g.wasteToFoundation() {
			moved++
			progress = true
		}
		for col := 0; col < NumColumns && moved < limit; col++ {
			if g.tableauToFoundation(col) {
				moved++
				progress = true
			}
		}
		if !progress {
			break
		}
	}
	if moved > 0 {
		g.history.PushUndo(before)
	}
	return moved
}
