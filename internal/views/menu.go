// Package views holds the presentation state shared by every record list:
// action menus, sorting, search, delete confirmation and the loaded records
// themselves. It knows nothing about rendering; the HTTP API and the terminal
// browser both drive it.
package views

// Rect is an anchor element's box in viewport coordinates.
type Rect struct {
	Top, Left, Bottom, Right int
}

// Size is a width and height pair.
type Size struct {
	Width, Height int
}

// Position is where an action menu is drawn.
type Position struct {
	Top   int  `json:"top"`
	Left  int  `json:"left"`
	Above bool `json:"show_above"`
}

// DefaultMenuSize fits the two-item edit/delete menu.
var DefaultMenuSize = Size{Width: 120, Height: 90}

const menuMargin = 10

// PlaceMenu positions a menu next to anchor so it stays inside viewport. The
// menu opens below the anchor unless there is no room there and there is room
// above.
func PlaceMenu(anchor Rect, viewport, menu Size) Position {
	spaceBelow := viewport.Height - anchor.Bottom
	above := spaceBelow < menu.Height && anchor.Top > menu.Height

	left := anchor.Right - menu.Width
	top := anchor.Bottom
	if above {
		top = anchor.Top - menu.Height
	}

	if left < menuMargin {
		left = anchor.Left
	}
	if left+menu.Width > viewport.Width-menuMargin {
		left = viewport.Width - menu.Width - menuMargin
	}
	if top < menuMargin {
		top = menuMargin
	}
	if top+menu.Height > viewport.Height-menuMargin {
		top = viewport.Height - menu.Height - menuMargin
	}

	return Position{Top: max(menuMargin, top), Left: max(menuMargin, left), Above: above}
}

// MenuState is either closed or open for exactly one record.
type MenuState struct {
	id  string
	pos Position
}

// OpenFor returns a menu open on record id at pos.
func OpenFor(id string, pos Position) MenuState {
	return MenuState{id: id, pos: pos}
}

func (m MenuState) IsOpen() bool { return m.id != "" }

// OpenID reports the record the menu is open for.
func (m MenuState) OpenID() (string, bool) {
	return m.id, m.id != ""
}

func (m MenuState) Position() Position { return m.pos }

// Toggle opens the menu for id, or closes it when it is already open for id.
func (m MenuState) Toggle(id string, anchor Rect, viewport Size) MenuState {
	if m.id == id {
		return MenuState{}
	}
	return OpenFor(id, PlaceMenu(anchor, viewport, DefaultMenuSize))
}

// Close returns the closed state.
func (m MenuState) Close() MenuState { return MenuState{} }
