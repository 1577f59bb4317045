// Package planner implements the three model-backed operations: initial plan
// generation, per-meal detail expansion and shopping-list consolidation.
// The package is stateless; every call takes its full input and returns its
// full output.
package planner

import (
	"context"
	"time"

	"comidacasa/internal/menu"
	"comidacasa/internal/prompt"

	"github.com/google/generative-ai-go/genai"
)

// Invoker issues a built request to the model, retrying transient failures.
type Invoker interface {
	Generate(ctx context.Context, prompt string, schema *genai.Schema) (string, error)
}

// Planner handles the generation of meal plans, recipe details and shopping
// lists.
type Planner struct {
	invoker Invoker
}

// New creates a new Planner instance.
func New(invoker Invoker) *Planner {
	return &Planner{invoker: invoker}
}

// PlanInput carries everything the initial plan request needs. Profiles and
// recipes are read as a snapshot; the family size used for quantity scaling
// is always exactly len(Profiles).
type PlanInput struct {
	Profiles          []menu.Profile
	Recipes           []menu.Recipe
	Duration          int
	StartDate         time.Time
	IncludeBreakfasts bool
}

// GeneratePlan creates a multi-day plan with name-only meals.
func (p *Planner) GeneratePlan(ctx context.Context, in PlanInput) (menu.MenuPlan, error) {
	req, err := prompt.Plan(in.Profiles, in.Recipes, in.Duration, in.StartDate, in.IncludeBreakfasts)
	if err != nil {
		return nil, err
	}

	raw, err := p.invoker.Generate(ctx, req.Instructions, req.Schema)
	if err != nil {
		return nil, err
	}

	return decodePlan(raw, in.Duration)
}

// GenerateDetails expands one named dish into a fully detailed meal scaled
// to familySize people. The returned meal always carries mealName, so
// callers can splice it back by name-verified coordinate.
func (p *Planner) GenerateDetails(ctx context.Context, mealName string, familySize int) (menu.Meal, error) {
	req, err := prompt.Details(mealName, familySize)
	if err != nil {
		return menu.Meal{}, err
	}

	raw, err := p.invoker.Generate(ctx, req.Instructions, req.Schema)
	if err != nil {
		return menu.Meal{}, err
	}

	return decodeDetails(raw, mealName)
}

// GenerateShoppingList consolidates the plan into a categorized list with
// summed quantities. Every item is guaranteed a unique non-empty id.
func (p *Planner) GenerateShoppingList(ctx context.Context, plan menu.MenuPlan, profiles []menu.Profile) (menu.ShoppingList, error) {
	req, err := prompt.ShoppingList(plan, profiles)
	if err != nil {
		return menu.ShoppingList{}, err
	}

	raw, err := p.invoker.Generate(ctx, req.Instructions, req.Schema)
	if err != nil {
		return menu.ShoppingList{}, err
	}

	return decodeShoppingList(raw)
}
