package domain

import "slices"

// Reduce computes the cart that results from applying a to c. It reports
// whether anything changed; when it did not, the returned cart is c.
// Reduce never modifies c.
func Reduce(c Cart, a Action) (Cart, bool) {
	switch a := a.(type) {
	case AddItem:
		return addItems(c, a.Items)
	case UpdateQuantity:
		return updateQuantity(c, a)
	case UpdateAttribute:
		return updateAttribute(c, a)
	case ClearCart:
		if c.IsEmpty() {
			return c, false
		}
		return Cart{}, true
	default:
		return c, false
	}
}

func addItems(c Cart, items []LineItem) (Cart, bool) {
	lines := slices.Clone(c.lines)
	changed := false
	for _, item := range items {
		item = item.normalize()
		if item.Quantity == 0 {
			continue
		}
		key := item.Key()
		if i := slices.IndexFunc(lines, func(li LineItem) bool { return li.Key() == key }); i >= 0 {
			lines[i].Quantity = AddQuantity(lines[i].Quantity, item.Quantity)
		} else {
			lines = append(lines, item.Clone())
		}
		changed = true
	}
	if !changed {
		return c, false
	}
	return Cart{lines: lines}, true
}

func updateQuantity(c Cart, a UpdateQuantity) (Cart, bool) {
	match := func(li LineItem) bool { return li.ProductID == a.ProductID }
	if a.LineKey != "" {
		match = func(li LineItem) bool { return li.Key() == a.LineKey }
	}

	qty := ClampQuantity(a.Quantity)
	lines := make([]LineItem, 0, len(c.lines))
	changed := false
	for _, li := range c.lines {
		if match(li) && li.Quantity != qty {
			li.Quantity = qty
			changed = true
		}
		if li.Quantity > 0 {
			lines = append(lines, li)
		}
	}
	if !changed {
		return c, false
	}
	return Cart{lines: lines}, true
}

func updateAttribute(c Cart, a UpdateAttribute) (Cart, bool) {
	target := c.indexOfProduct(a.ProductID)
	if a.LineKey != "" {
		target = c.indexOf(a.LineKey)
	}
	if target < 0 {
		return c, false
	}

	candidate := c.lines[target].withAttribute(a.Name, a.Value)
	newKey := candidate.Key()
	if newKey == c.lines[target].Key() {
		return c, false
	}

	lines := slices.Clone(c.lines)
	for i := range lines {
		if i != target && lines[i].Key() == newKey {
			lines[i].Quantity = AddQuantity(lines[i].Quantity, lines[target].Quantity)
			return Cart{lines: slices.Delete(lines, target, target+1)}, true
		}
	}
	lines[target] = candidate
	return Cart{lines: lines}, true
}
