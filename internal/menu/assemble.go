package menu

import "fmt"

// WithMealDetails returns a copy of plan where only the meal at c has been
// replaced by details. Every other day and slot is carried over unchanged.
// The plan held by the caller is never mutated; callers are expected to
// replace their whole plan value with the result so that concurrent readers
// never observe a half-written meal.
//
// The slot is located by coordinate, not by dish name; the name is only
// verified so that a late or misrouted result cannot overwrite a different
// dish that happens to occupy the slot by the time it arrives.
func WithMealDetails(plan MenuPlan, c Coordinate, details Meal) (MenuPlan, error) {
	current := plan.MealAt(c)
	if current == nil {
		return nil, fmt.Errorf("no meal at day %d slot %s", c.DayIndex, c.Slot)
	}
	if current.Name != details.Name {
		return nil, fmt.Errorf("meal at day %d slot %s is %q, details are for %q",
			c.DayIndex, c.Slot, current.Name, details.Name)
	}
	if len(details.Ingredients) == 0 {
		return nil, fmt.Errorf("details for %q carry no ingredients", details.Name)
	}

	updated := make(MenuPlan, len(plan))
	copy(updated, plan)

	detailed := details
	detailed.Name = current.Name
	switch c.Slot {
	case SlotLunch:
		updated[c.DayIndex].Lunch = &detailed
	case SlotDinner:
		updated[c.DayIndex].Dinner = &detailed
	}
	return updated, nil
}

// RefreshSelection returns the meal a detail view should display after
// updated was spliced into the plan. Views hold a copy of the meal rather
// than a coordinate, so the only stable identifier shared between the copy
// and the plan is the dish name. If the selection is a different dish it is
// returned untouched.
func RefreshSelection(selected *Meal, updated Meal) *Meal {
	if selected == nil || selected.Name != updated.Name {
		return selected
	}
	refreshed := updated
	return &refreshed
}
