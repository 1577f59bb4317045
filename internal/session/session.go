// Package session owns the mutable per-session state: family profiles, user
// recipes, the current plan and the displayed selection. The core operations
// stay stateless; the session feeds them snapshots and applies their results
// through the assembler.
package session

import (
	"context"
	"errors"
	"sync"

	"comidacasa/internal/menu"
	"comidacasa/internal/planner"
)

// Operations is the model-backed core the session delegates to.
type Operations interface {
	GeneratePlan(ctx context.Context, in planner.PlanInput) (menu.MenuPlan, error)
	GenerateDetails(ctx context.Context, mealName string, familySize int) (menu.Meal, error)
	GenerateShoppingList(ctx context.Context, plan menu.MenuPlan, profiles []menu.Profile) (menu.ShoppingList, error)
}

var (
	ErrNoProfiles   = errors.New("por favor, añada al menos un perfil familiar")
	ErrNoPlan       = errors.New("todavía no se ha generado ningún plan de comidas")
	ErrPlanInFlight = errors.New("ya hay una generación de plan en curso")
	ErrNoMealAt     = errors.New("no hay ningún plato en esa posición del plan")
)

// Session holds one user's ephemeral planning state. The plan field is only
// ever replaced wholesale with a freshly assembled copy, never mutated in
// place, so a snapshot handed out earlier stays internally consistent.
type Session struct {
	mu       sync.Mutex
	ops      Operations
	profiles []menu.Profile
	recipes  []menu.Recipe
	plan     menu.MenuPlan
	selected *menu.Meal

	planInFlight bool
	// detailSeq tracks a monotonic sequence per coordinate; a completion
	// carrying a stale sequence lost to a newer request and is discarded.
	detailSeq map[menu.Coordinate]uint64
}

// New creates a session around the given core.
func New(ops Operations, profiles []menu.Profile) *Session {
	return &Session{
		ops:       ops,
		profiles:  profiles,
		detailSeq: make(map[menu.Coordinate]uint64),
	}
}

// DefaultProfiles is the starter family used when no profiles have been
// configured yet.
func DefaultProfiles() []menu.Profile {
	return []menu.Profile{
		{ID: "1", Name: "Adolescente 1", Age: 15, Gender: menu.GenderMale, ActivityLevel: menu.ActivityHigh, Notes: "Jugador de baloncesto"},
		{ID: "2", Name: "Adolescente 2", Age: 12, Gender: menu.GenderFemale, ActivityLevel: menu.ActivityHigh, Notes: "Jugadora de baloncesto"},
		{ID: "3", Name: "Adulto 1", Age: 50, Gender: menu.GenderMale, ActivityLevel: menu.ActivityModerate},
		{ID: "4", Name: "Adulto 2", Age: 50, Gender: menu.GenderFemale, ActivityLevel: menu.ActivityModerate},
	}
}

// Profiles returns the current profile snapshot.
func (s *Session) Profiles() []menu.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]menu.Profile(nil), s.profiles...)
}

// SetProfiles replaces the profile set.
func (s *Session) SetProfiles(profiles []menu.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles = append([]menu.Profile(nil), profiles...)
}

// Recipes returns the current recipe snapshot.
func (s *Session) Recipes() []menu.Recipe {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]menu.Recipe(nil), s.recipes...)
}

// AddRecipe appends a recipe hint.
func (s *Session) AddRecipe(r menu.Recipe) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recipes = append(s.recipes, r)
}

// Plan returns the current plan. The returned value is never mutated by the
// session afterwards.
func (s *Session) Plan() menu.MenuPlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plan
}

// Selected returns the meal the detail view currently shows, or nil.
func (s *Session) Selected() *menu.Meal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Select marks the meal at c as the displayed selection.
func (s *Session) Select(c menu.Coordinate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	meal := s.plan.MealAt(c)
	if meal == nil {
		return ErrNoMealAt
	}
	copied := *meal
	s.selected = &copied
	return nil
}

// GeneratePlan runs the initial plan generation. At most one plan request is
// in flight per session; a second call while one is outstanding fails
// immediately instead of queueing.
func (s *Session) GeneratePlan(ctx context.Context, in planner.PlanInput) error {
	s.mu.Lock()
	if s.planInFlight {
		s.mu.Unlock()
		return ErrPlanInFlight
	}
	if len(s.profiles) == 0 {
		s.mu.Unlock()
		return ErrNoProfiles
	}
	in.Profiles = append([]menu.Profile(nil), s.profiles...)
	in.Recipes = append([]menu.Recipe(nil), s.recipes...)
	s.planInFlight = true
	s.mu.Unlock()

	plan, err := s.ops.GeneratePlan(ctx, in)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.planInFlight = false
	if err != nil {
		return err
	}
	s.plan = plan
	s.selected = nil
	s.detailSeq = make(map[menu.Coordinate]uint64)
	return nil
}

// FetchMealDetails expands the meal at c. Refetching an already detailed
// slot is a no-op guarded before any network call. On failure the meal keeps
// its prior state; there are no partial writes. A completion superseded by a
// newer request for the same coordinate is discarded.
func (s *Session) FetchMealDetails(ctx context.Context, c menu.Coordinate) error {
	s.mu.Lock()
	meal := s.plan.MealAt(c)
	if meal == nil {
		s.mu.Unlock()
		return ErrNoMealAt
	}
	if meal.Detailed() {
		s.mu.Unlock()
		return nil
	}
	name := meal.Name
	familySize := len(s.profiles)
	s.detailSeq[c]++
	seq := s.detailSeq[c]
	s.mu.Unlock()

	details, err := s.ops.GenerateDetails(ctx, name, familySize)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.detailSeq[c] != seq {
		return nil
	}
	updated, err := menu.WithMealDetails(s.plan, c, details)
	if err != nil {
		return err
	}
	s.plan = updated
	s.selected = menu.RefreshSelection(s.selected, details)
	return nil
}

// ShoppingList consolidates the current plan into a shopping list.
func (s *Session) ShoppingList(ctx context.Context) (menu.ShoppingList, error) {
	s.mu.Lock()
	if len(s.plan) == 0 {
		s.mu.Unlock()
		return menu.ShoppingList{}, ErrNoPlan
	}
	plan := s.plan
	profiles := append([]menu.Profile(nil), s.profiles...)
	s.mu.Unlock()

	return s.ops.GenerateShoppingList(ctx, plan, profiles)
}
