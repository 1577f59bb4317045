package planner

import (
	"encoding/json"
	"fmt"
	"strings"

	"comidacasa/internal/menu"

	"github.com/google/uuid"
)

func decodeShoppingList(raw string) (menu.ShoppingList, error) {
	if strings.TrimSpace(raw) == "" {
		return menu.ShoppingList{}, emptyErr()
	}

	var list menu.ShoppingList
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return menu.ShoppingList{}, malformedErr(raw, err)
	}

	if len(list.Categories) == 0 {
		return menu.ShoppingList{}, schemaErr(raw, "shopping list has no categories")
	}
	for i, cat := range list.Categories {
		if strings.TrimSpace(cat.Name) == "" {
			return menu.ShoppingList{}, schemaErr(raw, fmt.Sprintf("category %d has no name", i))
		}
		for j, item := range cat.Items {
			if strings.TrimSpace(item.Name) == "" {
				return menu.ShoppingList{}, schemaErr(raw, fmt.Sprintf("item %d in category %q has no name", j, cat.Name))
			}
		}
	}

	ensureItemIDs(&list)
	return list, nil
}

// ensureItemIDs backfills a generated unique id for any item where the model
// omitted one or reused another item's id.
func ensureItemIDs(list *menu.ShoppingList) {
	seen := make(map[string]struct{})
	for ci := range list.Categories {
		items := list.Categories[ci].Items
		for ii := range items {
			id := strings.TrimSpace(items[ii].ID)
			if id == "" {
				id = uuid.NewString()
			}
			if _, dup := seen[id]; dup {
				id = uuid.NewString()
			}
			seen[id] = struct{}{}
			items[ii].ID = id
		}
	}
}
