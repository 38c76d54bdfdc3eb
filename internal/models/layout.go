package models

// Placement pins one card side to a page at an absolute position, in
// the page's units.
type Placement struct {
	PageIndex int     `json:"page_index"`
	CardIndex int     `json:"card_index"`
	Back      bool    `json:"back"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

// LayoutPlan is the compositor's pure output: every placement plus the
// total page count. It carries no drawing state.
type LayoutPlan struct {
	Placements []Placement `json:"placements"`
	PageCount  int         `json:"page_count"`
}
