package domain

// Action is a cart transition request handled by Reduce.
type Action interface {
	actionName() string
}

// AddItem adds lines to the cart. A line whose key is already present
// increases that line's quantity and leaves its other fields untouched;
// otherwise it is appended. Batch marks a hydration load rather than a
// user add.
type AddItem struct {
	Items []LineItem
	Batch bool
}

// AddOne is a user add of a single item.
func AddOne(item LineItem) AddItem { return AddItem{Items: []LineItem{item}} }

// AddBatch is the hydration add of previously saved lines.
func AddBatch(items []LineItem) AddItem { return AddItem{Items: items, Batch: true} }

// UpdateQuantity sets the quantity of the line with LineKey. When LineKey
// is empty every line with ProductID is updated instead, which is how
// payloads written before line keys existed address lines. Lines left with
// a quantity of zero or less are removed.
type UpdateQuantity struct {
	LineKey   string
	ProductID string
	Quantity  int
}

// UpdateAttribute changes one selected attribute of a line. The line is
// found by LineKey, or by the first line with ProductID when no key is
// given. If the new selection matches another line the two are merged.
type UpdateAttribute struct {
	LineKey   string
	ProductID string
	Name      string
	Value     string
}

// ClearCart empties the cart.
type ClearCart struct{}

func (AddItem) actionName() string         { return "add_item" }
func (UpdateQuantity) actionName() string  { return "update_quantity" }
func (UpdateAttribute) actionName() string { return "update_attribute" }
func (ClearCart) actionName() string       { return "clear_cart" }

// ActionName returns a short name for logging.
func ActionName(a Action) string {
	if a == nil {
		return "unknown"
	}
	return a.actionName()
}
