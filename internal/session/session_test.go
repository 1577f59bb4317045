package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"comidacasa/internal/menu"
	"comidacasa/internal/planner"
)

// mockOps counts calls and plays back configurable results.
type mockOps struct {
	mu           sync.Mutex
	planCalls    int
	detailsCalls int
	listCalls    int

	plan       menu.MenuPlan
	planErr    error
	details    menu.Meal
	detailsErr error
	list       menu.ShoppingList
	listErr    error

	// detailsGate and planGate, when set, block the corresponding call until
	// released. Used to interleave a second request while one is outstanding.
	detailsGate chan struct{}
	planGate    chan struct{}
}

func (m *mockOps) GeneratePlan(_ context.Context, _ planner.PlanInput) (menu.MenuPlan, error) {
	m.mu.Lock()
	m.planCalls++
	gate := m.planGate
	m.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return m.plan, m.planErr
}

func (m *mockOps) GenerateDetails(_ context.Context, mealName string, _ int) (menu.Meal, error) {
	m.mu.Lock()
	m.detailsCalls++
	gate := m.detailsGate
	m.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if m.detailsErr != nil {
		return menu.Meal{}, m.detailsErr
	}
	d := m.details
	d.Name = mealName
	return d, nil
}

func (m *mockOps) GenerateShoppingList(_ context.Context, _ menu.MenuPlan, _ []menu.Profile) (menu.ShoppingList, error) {
	m.mu.Lock()
	m.listCalls++
	m.mu.Unlock()
	return m.list, m.listErr
}

func twoDayPlan() menu.MenuPlan {
	return menu.MenuPlan{
		{Day: "Lunes", Date: "2026-07-27", Lunch: &menu.Meal{Name: "Paella"}, Dinner: &menu.Meal{Name: "Gazpacho"}},
		{Day: "Martes", Date: "2026-07-28", Lunch: &menu.Meal{Name: "Lentejas"}, Dinner: &menu.Meal{Name: "Tortilla"}},
	}
}

func detailedMeal() menu.Meal {
	return menu.Meal{
		Ingredients: []string{"400g de arroz"},
		Preparation: "1. Cocina.",
		Nutrition:   &menu.NutritionFacts{Calories: 650, Protein: 35, Carbs: 70, Fat: 20},
		Comment:     "Buen provecho.",
	}
}

func TestGeneratePlan(t *testing.T) {
	t.Run("InstallsPlanAndResetsSelection", func(t *testing.T) {
		ops := &mockOps{plan: twoDayPlan(), details: detailedMeal()}
		s := New(ops, DefaultProfiles())

		if err := s.GeneratePlan(context.Background(), planner.PlanInput{Duration: 2}); err != nil {
			t.Fatalf("GeneratePlan failed: %v", err)
		}
		if len(s.Plan()) != 2 {
			t.Fatalf("Expected the generated plan to be installed")
		}

		coord := menu.Coordinate{DayIndex: 0, Slot: menu.SlotLunch}
		if err := s.Select(coord); err != nil {
			t.Fatalf("Select failed: %v", err)
		}
		if err := s.GeneratePlan(context.Background(), planner.PlanInput{Duration: 2}); err != nil {
			t.Fatalf("GeneratePlan failed: %v", err)
		}
		if s.Selected() != nil {
			t.Error("Expected the selection to be cleared by a fresh plan")
		}
	})

	t.Run("NoProfiles", func(t *testing.T) {
		ops := &mockOps{plan: twoDayPlan()}
		s := New(ops, nil)
		if err := s.GeneratePlan(context.Background(), planner.PlanInput{Duration: 2}); !errors.Is(err, ErrNoProfiles) {
			t.Fatalf("Expected ErrNoProfiles, got %v", err)
		}
		if ops.planCalls != 0 {
			t.Error("Expected no model call without profiles")
		}
	})

	t.Run("FailureKeepsPriorPlan", func(t *testing.T) {
		ops := &mockOps{plan: twoDayPlan()}
		s := New(ops, DefaultProfiles())
		if err := s.GeneratePlan(context.Background(), planner.PlanInput{Duration: 2}); err != nil {
			t.Fatalf("GeneratePlan failed: %v", err)
		}

		ops.planErr = errors.New("saturado")
		if err := s.GeneratePlan(context.Background(), planner.PlanInput{Duration: 2}); err == nil {
			t.Fatal("Expected the failure to propagate")
		}
		if len(s.Plan()) != 2 {
			t.Error("Expected the prior plan to survive a failed regeneration")
		}
	})

	t.Run("SecondRequestWhileInFlightRejected", func(t *testing.T) {
		gate := make(chan struct{})
		ops := &mockOps{plan: twoDayPlan(), planGate: gate}
		s := New(ops, DefaultProfiles())

		done := make(chan error, 1)
		go func() {
			done <- s.GeneratePlan(context.Background(), planner.PlanInput{Duration: 2})
		}()

		for {
			s.mu.Lock()
			inFlight := s.planInFlight
			s.mu.Unlock()
			if inFlight {
				break
			}
		}

		if err := s.GeneratePlan(context.Background(), planner.PlanInput{Duration: 2}); !errors.Is(err, ErrPlanInFlight) {
			t.Errorf("Expected ErrPlanInFlight, got %v", err)
		}

		close(gate)
		if err := <-done; err != nil {
			t.Fatalf("In-flight generation failed: %v", err)
		}
		if ops.planCalls != 1 {
			t.Errorf("Expected a single model call, got %d", ops.planCalls)
		}
	})

	t.Run("SessionProfilesOverrideInput", func(t *testing.T) {
		var captured planner.PlanInput
		ops := &capturingOps{mockOps: mockOps{plan: twoDayPlan()}, capture: &captured}
		s := New(ops, DefaultProfiles())
		s.AddRecipe(menu.Recipe{ID: "r1", Name: "Paella de la abuela", Ingredients: "arroz"})

		if err := s.GeneratePlan(context.Background(), planner.PlanInput{Duration: 2}); err != nil {
			t.Fatalf("GeneratePlan failed: %v", err)
		}
		if len(captured.Profiles) != 4 {
			t.Errorf("Expected the session's 4 profiles in the input, got %d", len(captured.Profiles))
		}
		if len(captured.Recipes) != 1 {
			t.Errorf("Expected the session's recipe hints in the input, got %d", len(captured.Recipes))
		}
	})
}

// capturingOps wraps mockOps to record the plan input.
type capturingOps struct {
	mockOps
	capture *planner.PlanInput
}

func (c *capturingOps) GeneratePlan(ctx context.Context, in planner.PlanInput) (menu.MenuPlan, error) {
	*c.capture = in
	return c.mockOps.GeneratePlan(ctx, in)
}

func TestFetchMealDetails(t *testing.T) {
	coord := menu.Coordinate{DayIndex: 0, Slot: menu.SlotLunch}

	newSessionWithPlan := func(t *testing.T, ops *mockOps) *Session {
		t.Helper()
		s := New(ops, DefaultProfiles())
		if err := s.GeneratePlan(context.Background(), planner.PlanInput{Duration: 2}); err != nil {
			t.Fatalf("GeneratePlan failed: %v", err)
		}
		return s
	}

	t.Run("SplicesDetailsIntoPlan", func(t *testing.T) {
		ops := &mockOps{plan: twoDayPlan(), details: detailedMeal()}
		s := newSessionWithPlan(t, ops)

		if err := s.FetchMealDetails(context.Background(), coord); err != nil {
			t.Fatalf("FetchMealDetails failed: %v", err)
		}
		meal := s.Plan().MealAt(coord)
		if !meal.Detailed() {
			t.Fatal("Expected the meal to be detailed after the fetch")
		}
		if meal.Name != "Paella" {
			t.Errorf("Expected the dish name to be preserved, got %q", meal.Name)
		}
	})

	t.Run("RefetchIsNoOp", func(t *testing.T) {
		ops := &mockOps{plan: twoDayPlan(), details: detailedMeal()}
		s := newSessionWithPlan(t, ops)

		if err := s.FetchMealDetails(context.Background(), coord); err != nil {
			t.Fatalf("FetchMealDetails failed: %v", err)
		}
		if err := s.FetchMealDetails(context.Background(), coord); err != nil {
			t.Fatalf("Refetch failed: %v", err)
		}
		if ops.detailsCalls != 1 {
			t.Errorf("Expected the second fetch to skip the model, got %d calls", ops.detailsCalls)
		}
	})

	t.Run("FailureLeavesMealNamed", func(t *testing.T) {
		ops := &mockOps{plan: twoDayPlan(), detailsErr: errors.New("saturado")}
		s := newSessionWithPlan(t, ops)

		if err := s.FetchMealDetails(context.Background(), coord); err == nil {
			t.Fatal("Expected the failure to propagate")
		}
		meal := s.Plan().MealAt(coord)
		if meal.Detailed() {
			t.Error("Expected the meal to stay in the named state after a failure")
		}
		if meal.Name != "Paella" {
			t.Errorf("Expected the name untouched, got %q", meal.Name)
		}
	})

	t.Run("MatchingSelectionRefreshed", func(t *testing.T) {
		ops := &mockOps{plan: twoDayPlan(), details: detailedMeal()}
		s := newSessionWithPlan(t, ops)

		if err := s.Select(coord); err != nil {
			t.Fatalf("Select failed: %v", err)
		}
		if err := s.FetchMealDetails(context.Background(), coord); err != nil {
			t.Fatalf("FetchMealDetails failed: %v", err)
		}
		if !s.Selected().Detailed() {
			t.Error("Expected the displayed selection to pick up the details")
		}
	})

	t.Run("StaleCompletionDiscarded", func(t *testing.T) {
		gate := make(chan struct{})
		ops := &mockOps{plan: twoDayPlan(), details: detailedMeal(), detailsGate: gate}
		s := newSessionWithPlan(t, ops)

		firstDone := make(chan error, 1)
		go func() {
			firstDone <- s.FetchMealDetails(context.Background(), coord)
		}()

		// Wait for the first request to claim its sequence number.
		for {
			s.mu.Lock()
			claimed := s.detailSeq[coord] == 1
			s.mu.Unlock()
			if claimed {
				break
			}
		}

		// Second request for the same coordinate supersedes the first.
		secondDone := make(chan error, 1)
		go func() {
			secondDone <- s.FetchMealDetails(context.Background(), coord)
		}()
		for {
			s.mu.Lock()
			claimed := s.detailSeq[coord] == 2
			s.mu.Unlock()
			if claimed {
				break
			}
		}

		close(gate)
		if err := <-firstDone; err != nil {
			t.Fatalf("Superseded fetch failed: %v", err)
		}
		if err := <-secondDone; err != nil {
			t.Fatalf("Winning fetch failed: %v", err)
		}

		if !s.Plan().MealAt(coord).Detailed() {
			t.Error("Expected the winning completion to land")
		}
		if ops.detailsCalls != 2 {
			t.Errorf("Expected two model calls, got %d", ops.detailsCalls)
		}
	})

	t.Run("NoMealAtCoordinate", func(t *testing.T) {
		ops := &mockOps{plan: twoDayPlan(), details: detailedMeal()}
		s := newSessionWithPlan(t, ops)

		err := s.FetchMealDetails(context.Background(), menu.Coordinate{DayIndex: 9, Slot: menu.SlotLunch})
		if !errors.Is(err, ErrNoMealAt) {
			t.Fatalf("Expected ErrNoMealAt, got %v", err)
		}
		if ops.detailsCalls != 0 {
			t.Error("Expected no model call for a bad coordinate")
		}
	})
}

func TestShoppingList(t *testing.T) {
	t.Run("RequiresPlan", func(t *testing.T) {
		ops := &mockOps{}
		s := New(ops, DefaultProfiles())
		if _, err := s.ShoppingList(context.Background()); !errors.Is(err, ErrNoPlan) {
			t.Fatalf("Expected ErrNoPlan, got %v", err)
		}
		if ops.listCalls != 0 {
			t.Error("Expected no model call without a plan")
		}
	})

	t.Run("DelegatesWithCurrentPlan", func(t *testing.T) {
		ops := &mockOps{
			plan: twoDayPlan(),
			list: menu.ShoppingList{Categories: []menu.ShoppingListCategory{{Name: "Despensa"}}},
		}
		s := New(ops, DefaultProfiles())
		if err := s.GeneratePlan(context.Background(), planner.PlanInput{Duration: 2}); err != nil {
			t.Fatalf("GeneratePlan failed: %v", err)
		}

		list, err := s.ShoppingList(context.Background())
		if err != nil {
			t.Fatalf("ShoppingList failed: %v", err)
		}
		if len(list.Categories) != 1 {
			t.Errorf("Expected the delegated result, got %+v", list)
		}
	})
}
