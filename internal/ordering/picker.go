package ordering

import (
	"sort"

	"github.com/corvidchess/corvid/internal/board"
	"github.com/corvidchess/corvid/internal/see"
)

// stage is the picker's explicit state tag. Staged move ordering is a
// natural resumable generator, implemented here as a state machine with a
// stage tag plus a per-stage index rather than a cooperative scheduler.
type stage int

const (
	stageHashMove stage = iota
	stageGenerate
	stageGoodCaptures
	stageKillers
	stageQuiets
	stageBadCaptures
	stageDone
)

type scoredMove struct {
	m         board.Move
	score     int
	underpromo bool
}

// Picker enumerates legal moves for one search node in the contracted
// order: hash move, winning/equal captures (SEE then MVV-LVA), killers,
// quiets (combined history), losing captures (SEE descending) — with
// underpromotions pushed to the back of whichever stage they land in.
type Picker struct {
	pos  *board.Position
	hist *History

	ttMove    board.Move
	ply       int
	prevMove  board.Move
	prevPiece board.Piece

	stage stage
	idx   int

	goodCaptures []scoredMove
	badCaptures  []scoredMove
	quiets       []scoredMove
	killers      [2]board.Move
}

// NewPicker builds a picker for the current node. prevMove is the move
// played to reach this node (NoMove at the root), used for the counter-move
// bonus folded into the quiet-move sort key.
func NewPicker(pos *board.Position, hist *History, ttMove board.Move, ply int, prevMove board.Move) *Picker {
	p := &Picker{pos: pos, hist: hist, ttMove: ttMove, ply: ply, prevMove: prevMove}
	if prevMove != board.NoMove {
		p.prevPiece = pos.PieceAt(prevMove.To())
	}
	return p
}

// Next returns the next move in staged order, or (NoMove, false) once
// every legal move has been emitted exactly once.
func (p *Picker) Next() (board.Move, bool) {
	for {
		switch p.stage {
		case stageHashMove:
			p.stage = stageGenerate
			if p.ttMove != board.NoMove && p.pos.GeneratePseudoLegalMoves().Contains(p.ttMove) && p.pos.IsLegal(p.ttMove) {
				return p.ttMove, true
			}
		case stageGenerate:
			p.generate()
			p.stage = stageGoodCaptures
		case stageGoodCaptures:
			if p.idx < len(p.goodCaptures) {
				m := p.goodCaptures[p.idx].m
				p.idx++
				return m, true
			}
			p.idx = 0
			p.stage = stageKillers
		case stageKillers:
			if p.idx < 2 {
				k := p.killers[p.idx]
				p.idx++
				if k != board.NoMove {
					return k, true
				}
				continue
			}
			p.idx = 0
			p.stage = stageQuiets
		case stageQuiets:
			if p.idx < len(p.quiets) {
				m := p.quiets[p.idx].m
				p.idx++
				return m, true
			}
			p.idx = 0
			p.stage = stageBadCaptures
		case stageBadCaptures:
			if p.idx < len(p.badCaptures) {
				m := p.badCaptures[p.idx].m
				p.idx++
				return m, true
			}
			p.stage = stageDone
		case stageDone:
			return board.NoMove, false
		}
	}
}

func isUnderpromotion(m board.Move) bool {
	return m.IsPromotion() && m.Promotion() != board.Queen
}

func (p *Picker) generate() {
	ml := p.pos.GenerateLegalMoves()

	counterMove := p.hist.CounterMove(p.prevMove, p.prevPiece)
	k0, k1 := p.hist.Killers(p.ply)
	if ml.Contains(k0) && k0 != p.ttMove && !k0.IsCapture(p.pos) {
		p.killers[0] = k0
	}
	if ml.Contains(k1) && k1 != p.ttMove && k1 != p.killers[0] && !k1.IsCapture(p.pos) {
		p.killers[1] = k1
	}

	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		if m == p.ttMove {
			continue
		}
		if m.IsCapture(p.pos) {
			s := see.Evaluate(p.pos, m)
			attacker := p.pos.PieceAt(m.From())
			var victim board.PieceType
			if m.IsEnPassant() {
				victim = board.Pawn
			} else {
				victim = p.pos.PieceAt(m.To()).Type()
			}
			tiebreak := 0
			if attacker != board.NoPiece {
				tiebreak = see.PieceValue[victim]*8 - see.PieceValue[attacker.Type()]
				tiebreak += p.hist.CaptureHistory(attacker, m.To(), victim) / 64
			}
			sm := scoredMove{m: m, score: s*1000 + tiebreak, underpromo: isUnderpromotion(m)}
			if s >= 0 {
				p.goodCaptures = append(p.goodCaptures, sm)
			} else {
				p.badCaptures = append(p.badCaptures, sm)
			}
			continue
		}
		if m == p.killers[0] || m == p.killers[1] {
			continue
		}
		score := p.hist.CombinedHistory(p.pos, m)
		if m == counterMove {
			score += 20000
		}
		p.quiets = append(p.quiets, scoredMove{m: m, score: score, underpromo: isUnderpromotion(m)})
	}

	sortStage(p.goodCaptures)
	sortStage(p.badCaptures)
	sortStage(p.quiets)
}

// sortStage orders a stage's moves by descending score, with any
// underpromotion pushed to the end regardless of its raw score.
func sortStage(moves []scoredMove) {
	sort.SliceStable(moves, func(i, j int) bool {
		if moves[i].underpromo != moves[j].underpromo {
			return !moves[i].underpromo
		}
		return moves[i].score > moves[j].score
	})
}
