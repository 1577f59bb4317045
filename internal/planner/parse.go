package planner

import (
	"encoding/json"
	"fmt"
	"strings"

	"comidacasa/internal/llm"
	"comidacasa/internal/menu"
)

// A schema was supplied upstream, but model output is not guaranteed to
// conform to it. Every response is therefore checked for all contractually
// required fields before the value is exposed to callers.

const (
	msgEmpty     = "La respuesta del modelo de IA estaba vacía."
	msgBadJSON   = "La respuesta del modelo de IA no es JSON válido."
	msgBadSchema = "La respuesta del modelo de IA no cumple el esquema esperado."
)

func emptyErr() error {
	return &llm.Error{Kind: llm.KindEmptyResponse, Message: msgEmpty}
}

func malformedErr(raw string, cause error) error {
	return &llm.Error{
		Kind:    llm.KindMalformedResponse,
		Message: msgBadJSON,
		Detail:  fmt.Sprintf("%v; raw: %s", cause, llm.Truncate(raw)),
	}
}

func schemaErr(raw string, reason string) error {
	return &llm.Error{
		Kind:    llm.KindMalformedResponse,
		Message: msgBadSchema,
		Detail:  fmt.Sprintf("%s; raw: %s", reason, llm.Truncate(raw)),
	}
}

func decodePlan(raw string, duration int) (menu.MenuPlan, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, emptyErr()
	}

	var plan menu.MenuPlan
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		return nil, malformedErr(raw, err)
	}

	if len(plan) == 0 {
		return nil, schemaErr(raw, "plan has no days")
	}
	if len(plan) != duration {
		return nil, schemaErr(raw, fmt.Sprintf("plan has %d days, expected %d", len(plan), duration))
	}

	for i, day := range plan {
		if strings.TrimSpace(day.Day) == "" {
			return nil, schemaErr(raw, fmt.Sprintf("day %d has no label", i))
		}
		if strings.TrimSpace(day.Date) == "" {
			return nil, schemaErr(raw, fmt.Sprintf("day %d has no date", i))
		}
		for _, slot := range []menu.Slot{menu.SlotLunch, menu.SlotDinner} {
			meal := day.Meal(slot)
			if meal != nil && strings.TrimSpace(meal.Name) == "" {
				return nil, schemaErr(raw, fmt.Sprintf("day %d %s has no dish name", i, slot))
			}
		}
	}

	return plan, nil
}

func decodeDetails(raw, mealName string) (menu.Meal, error) {
	if strings.TrimSpace(raw) == "" {
		return menu.Meal{}, emptyErr()
	}

	var meal menu.Meal
	if err := json.Unmarshal([]byte(raw), &meal); err != nil {
		return menu.Meal{}, malformedErr(raw, err)
	}

	if len(meal.Ingredients) == 0 {
		return menu.Meal{}, schemaErr(raw, "details carry no ingredients")
	}
	if strings.TrimSpace(meal.Preparation) == "" {
		return menu.Meal{}, schemaErr(raw, "details carry no preparation steps")
	}
	if strings.TrimSpace(meal.Comment) == "" {
		return menu.Meal{}, schemaErr(raw, "details carry no nutritionist comment")
	}
	n := meal.Nutrition
	if n == nil {
		return menu.Meal{}, schemaErr(raw, "details carry no nutrition facts")
	}
	if n.Calories < 0 || n.Protein < 0 || n.Carbs < 0 || n.Fat < 0 {
		return menu.Meal{}, schemaErr(raw, "nutrition facts contain negative values")
	}

	// The model echoes the dish name, but the requested name is the stable
	// identifier downstream merging relies on.
	meal.Name = mealName
	return meal, nil
}
