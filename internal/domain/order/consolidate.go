package order

// consolidate merges submitted lines that reference the same product into a
// single line with the quantities summed, preserving first-seen order. Lines
// for the same product must agree on the unit price; silently picking one
// occurrence could store a total that matches neither line.
func consolidate(items []LineItem) ([]LineItem, error) {
	if len(items) == 0 {
		return nil, ErrEmptyItems
	}

	merged := make([]LineItem, 0, len(items))
	seen := make(map[string]int, len(items))

	for _, it := range items {
		if it.Quantity < 1 {
			return nil, &InvalidQuantityError{ProductID: it.ProductID}
		}
		if i, ok := seen[it.ProductID]; ok {
			if !merged[i].Price.Equal(it.Price) {
				return nil, &PriceMismatchError{ProductID: it.ProductID}
			}
			merged[i].Quantity += it.Quantity
			continue
		}
		seen[it.ProductID] = len(merged)
		merged = append(merged, it)
	}

	return merged, nil
}
