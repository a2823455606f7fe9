// Package pricing turns a raw cart submission into priced, validated order
// line items and an order total. Prices are snapshotted from the menu at
// pricing time; the engine never trusts client-submitted prices.
//
// Policies (applied consistently):
//   - Selected ingredients are matched against the menu item by name,
//     case-insensitively, and the match is strict: an unmatched name fails
//     the whole cart.
//   - Totals are ingredient-inclusive: each line contributes
//     discounted unit price x quantity plus the sum of its selected
//     ingredient prices (the surcharge is applied once per line).
//   - Discount is a percentage in [0,100]; the discounted unit price is
//     rounded to 2 decimals and never goes below zero.
package pricing

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"azzipizza/apperr"
	"azzipizza/models"
)

// MenuGetter is the slice of the menu store the engine needs.
type MenuGetter interface {
	Get(ctx context.Context, id primitive.ObjectID) (*models.MenuItem, error)
}

type CartEntry struct {
	MenuItemID          string   `json:"menuItemId"`
	Quantity            int      `json:"quantity"`
	SelectedIngredients []string `json:"selectedIngredients"`
	Customizations      string   `json:"customizations"`
}

type Result struct {
	Items []models.OrderLineItem
	Total float64
}

type Engine struct {
	menu MenuGetter
}

func NewEngine(menu MenuGetter) *Engine {
	return &Engine{menu: menu}
}

// Price resolves and prices every cart entry. Any failing entry rejects the
// whole cart; no partial result is ever returned.
func (e *Engine) Price(ctx context.Context, cart []CartEntry) (*Result, error) {
	if len(cart) == 0 {
		return nil, apperr.Validation("items", "at least one item is required")
	}

	items := make([]models.OrderLineItem, 0, len(cart))
	total := decimal.Zero

	for i, entry := range cart {
		if entry.MenuItemID == "" {
			return nil, apperr.Validationf("items", "items[%d]: menuItemId is required", i)
		}
		if entry.Quantity < 1 {
			return nil, apperr.Validationf("items", "items[%d]: quantity must be at least 1", i)
		}

		objID, err := primitive.ObjectIDFromHex(entry.MenuItemID)
		if err != nil {
			return nil, apperr.Validationf("items", "items[%d]: invalid menuItemId %q", i, entry.MenuItemID)
		}

		menuItem, err := e.menu.Get(ctx, objID)
		if err != nil {
			return nil, err
		}

		selected, err := matchIngredients(menuItem, entry.SelectedIngredients)
		if err != nil {
			return nil, err
		}

		unit := DiscountedUnitPrice(menuItem.Price, menuItem.Discount)

		line := decimal.NewFromFloat(unit).Mul(decimal.NewFromInt(int64(entry.Quantity)))
		for _, ing := range selected {
			line = line.Add(decimal.NewFromFloat(ing.Price))
		}
		total = total.Add(line)

		items = append(items, models.OrderLineItem{
			MenuItemID:          menuItem.ID,
			Name:                menuItem.Name,
			Price:               unit,
			OriginalPrice:       menuItem.Price,
			Quantity:            entry.Quantity,
			SelectedIngredients: selected,
			Customizations:      entry.Customizations,
		})
	}

	return &Result{Items: items, Total: total.Round(2).InexactFloat64()}, nil
}

// DiscountedUnitPrice applies a percentage discount and rounds to 2 decimals.
// The result is clamped at zero.
func DiscountedUnitPrice(price, discount float64) float64 {
	p := decimal.NewFromFloat(price)
	d := decimal.NewFromFloat(discount)
	unit := p.Sub(p.Mul(d).Div(decimal.NewFromInt(100))).Round(2)
	if unit.IsNegative() {
		return 0
	}
	return unit.InexactFloat64()
}

func matchIngredients(item *models.MenuItem, names []string) ([]models.SelectedIngredient, error) {
	selected := make([]models.SelectedIngredient, 0, len(names))
	var unmatched []string

	for _, name := range names {
		want := strings.ToLower(strings.TrimSpace(name))
		found := false
		for _, ing := range item.Ingredients {
			if strings.ToLower(ing.Name) == want {
				selected = append(selected, models.SelectedIngredient{Name: ing.Name, Price: ing.Price})
				found = true
				break
			}
		}
		if !found {
			unmatched = append(unmatched, name)
		}
	}

	if len(unmatched) > 0 {
		return nil, apperr.Validationf("selectedIngredients",
			"ingredients not available on %q: %s", item.Name, strings.Join(unmatched, ", "))
	}
	return selected, nil
}
