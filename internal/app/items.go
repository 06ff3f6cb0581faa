package app

import (
	"strconv"
	"strings"

	"github.com/go-faster/errors"

	"github.com/xenking/order-placement/internal/domain/order"
)

// ParseItems parses "productID=quantity" pairs separated by commas, keeping
// their order. Quantities are not range checked here; the order service
// rejects non-positive ones.
func ParseItems(s string) ([]order.Item, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("no items given")
	}

	parts := strings.Split(s, ",")
	items := make([]order.Item, 0, len(parts))
	for _, part := range parts {
		id, qty, ok := strings.Cut(strings.TrimSpace(part), "=")
		id = strings.TrimSpace(id)
		if !ok || id == "" {
			return nil, errors.Errorf("item %q: want productID=quantity", part)
		}
		n, err := strconv.Atoi(strings.TrimSpace(qty))
		if err != nil {
			return nil, errors.Wrapf(err, "item %q: quantity", part)
		}
		items = append(items, order.Item{ProductID: id, Quantity: n})
	}
	return items, nil
}
