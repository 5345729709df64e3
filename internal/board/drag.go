package board

import (
	"sync"

	"edluar/pipeline/internal/model"
)

// DragState is the state of a drag session.
type DragState int

const (
	Idle DragState = iota
	Dragging
)

func (s DragState) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// DefaultActivationDistance is how far a pressed pointer must travel before
// a drag starts. Shorter movements are treated as clicks.
const DefaultActivationDistance = 8

// Point is a pointer position in whatever unit the UI uses (pixels, cells).
type Point struct{ X, Y int }

// TargetKind says what a drop landed on.
type TargetKind int

const (
	TargetNone TargetKind = iota
	TargetColumn
	TargetCard
)

// Target is a drop target: a column surface or another card.
type Target struct {
	Kind TargetKind
	ID   string
}

// ColumnTarget targets the surface of a column.
func ColumnTarget(id model.Status) Target { return Target{Kind: TargetColumn, ID: string(id)} }

// CardTarget targets a card; the drop goes to that card's column.
func CardTarget(applicationID string) Target { return Target{Kind: TargetCard, ID: applicationID} }

// NoTarget is a release outside any valid target.
var NoTarget = Target{}

// Move is a committed cross-column drop.
type Move struct {
	ApplicationID string
	From          model.Status
	To            model.Status
}

// DragController turns pointer and keyboard input into a drag lifecycle:
//
//	Idle ──grab──► Dragging(id) ──drop on other column──► Idle (Move)
//	                    │
//	                    └──cancel / invalid or same-column drop──► Idle
//
// A pointer grab only becomes a drag once the pointer has travelled past the
// activation distance; keyboard activation starts the drag at once.
type DragController struct {
	mu        sync.Mutex
	board     *Board
	threshold int

	state    DragState
	activeID string

	pressID     string
	pressOrigin Point
}

// NewDragController returns an idle controller resolving targets against b.
// A non-positive distance uses DefaultActivationDistance.
func NewDragController(b *Board, activationDistance int) *DragController {
	if activationDistance <= 0 {
		activationDistance = DefaultActivationDistance
	}
	return &DragController{board: b, threshold: activationDistance}
}

// State returns the current state.
func (d *DragController) State() DragState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// ActiveID returns the dragged application's id, or "" when idle.
func (d *DragController) ActiveID() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.activeID
}

// PointerDown records a press on a card. Nothing is dragged yet.
func (d *DragController) PointerDown(applicationID string, at Point) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != Idle {
		return
	}
	if _, ok := d.board.Find(applicationID); !ok {
		return
	}
	d.pressID = applicationID
	d.pressOrigin = at
}

// PointerMove starts the drag once the press has moved past the activation
// distance. It reports whether this call started the drag.
func (d *DragController) PointerMove(at Point) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != Idle || d.pressID == "" {
		return false
	}
	dx, dy := at.X-d.pressOrigin.X, at.Y-d.pressOrigin.Y
	if dx*dx+dy*dy <= d.threshold*d.threshold {
		return false
	}
	d.begin(d.pressID)
	return true
}

// PointerUp ends a pointer interaction. A press that never became a drag is
// a click and yields nothing.
func (d *DragController) PointerUp(t Target) (Move, bool) {
	return d.Drop(t)
}

// KeyActivate starts a drag on a card without a distance threshold.
func (d *DragController) KeyActivate(applicationID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != Idle {
		return false
	}
	if _, ok := d.board.Find(applicationID); !ok {
		return false
	}
	d.begin(applicationID)
	return true
}

// Drop commits the drag onto t. It returns a Move only for a drop on a valid
// target whose column differs from the card's current column; every other
// outcome returns to Idle without a move.
func (d *DragController) Drop(t Target) (Move, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != Dragging {
		d.reset()
		return Move{}, false
	}
	id := d.activeID
	d.reset()

	from, ok := d.board.Find(id)
	if !ok {
		return Move{}, false
	}
	to, ok := d.resolve(t)
	if !ok || to == from {
		return Move{}, false
	}
	return Move{ApplicationID: id, From: from, To: to}, true
}

// KeyDrop commits a keyboard-started drag; it behaves exactly like Drop.
func (d *DragController) KeyDrop(t Target) (Move, bool) {
	return d.Drop(t)
}

// Cancel abandons the drag (e.g. Escape). No move is produced.
func (d *DragController) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reset()
}

func (d *DragController) begin(applicationID string) {
	d.state = Dragging
	d.activeID = applicationID
	d.pressID = ""
}

func (d *DragController) reset() {
	d.state = Idle
	d.activeID = ""
	d.pressID = ""
	d.pressOrigin = Point{}
}

func (d *DragController) resolve(t Target) (model.Status, bool) {
	switch t.Kind {
	case TargetColumn:
		st := model.Status(t.ID)
		if !model.IsActive(st) {
			return "", false
		}
		return st, true
	case TargetCard:
		return d.board.Find(t.ID)
	}
	return "", false
}
