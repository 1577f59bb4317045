package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"comidacasa/internal/llm"
	"comidacasa/internal/menu"
	"comidacasa/internal/planner"
)

// Core is the model-backed planning service behind the HTTP surface.
type Core interface {
	GeneratePlan(ctx context.Context, in planner.PlanInput) (menu.MenuPlan, error)
	GenerateDetails(ctx context.Context, mealName string, familySize int) (menu.Meal, error)
	GenerateShoppingList(ctx context.Context, plan menu.MenuPlan, profiles []menu.Profile) (menu.ShoppingList, error)
}

// RecipeImporter extracts a recipe hint from a web page.
type RecipeImporter interface {
	ImportRecipe(ctx context.Context, url string) (menu.Recipe, error)
}

// Handler serves the planning API.
type Handler struct {
	Core    Core
	Clipper RecipeImporter
	Logger  *slog.Logger
}

type errorResponse struct {
	Message string `json:"message"`
}

type profilePayload struct {
	ID            string `json:"id"`
	Name          string `json:"name" validate:"required"`
	Age           int    `json:"age" validate:"gte=0"`
	Gender        string `json:"gender" validate:"required,oneof=male female other"`
	ActivityLevel string `json:"activityLevel" validate:"required,oneof=sedentary light moderate high"`
	Notes         string `json:"notes"`
}

type recipePayload struct {
	ID          string `json:"id"`
	Name        string `json:"name" validate:"required"`
	Ingredients string `json:"ingredients"`
}

type generatePlanRequest struct {
	Profiles          []profilePayload `json:"profiles" validate:"min=1,dive"`
	Recipes           []recipePayload  `json:"recipes" validate:"dive"`
	Duration          int              `json:"duration" validate:"required,oneof=7 14"`
	StartDate         string           `json:"startDate" validate:"required,datetime=2006-01-02"`
	IncludeBreakfasts bool             `json:"includeBreakfasts"`
}

type generateDetailsRequest struct {
	MealName   string `json:"mealName" validate:"required"`
	FamilySize int    `json:"familySize" validate:"required,gt=0"`
}

type generateShoppingListRequest struct {
	MenuPlan menu.MenuPlan    `json:"menuPlan" validate:"required,min=1"`
	Profiles []profilePayload `json:"profiles" validate:"min=1,dive"`
}

type importRecipeRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// Health reports liveness.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// GeneratePlan handles POST /api/generatePlan.
func (h *Handler) GeneratePlan(c echo.Context) error {
	var req generatePlanRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return badRequest(c, "La fecha de inicio no es válida.")
	}

	plan, err := h.Core.GeneratePlan(c.Request().Context(), planner.PlanInput{
		Profiles:          toProfiles(req.Profiles),
		Recipes:           toRecipes(req.Recipes),
		Duration:          req.Duration,
		StartDate:         startDate,
		IncludeBreakfasts: req.IncludeBreakfasts,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, plan)
}

// GenerateDetails handles POST /api/generateDetails.
func (h *Handler) GenerateDetails(c echo.Context) error {
	var req generateDetailsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	meal, err := h.Core.GenerateDetails(c.Request().Context(), req.MealName, req.FamilySize)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, meal)
}

// GenerateShoppingList handles POST /api/generateShoppingList.
func (h *Handler) GenerateShoppingList(c echo.Context) error {
	var req generateShoppingListRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	list, err := h.Core.GenerateShoppingList(c.Request().Context(), req.MenuPlan, toProfiles(req.Profiles))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// ImportRecipe handles POST /api/importRecipe.
func (h *Handler) ImportRecipe(c echo.Context) error {
	var req importRecipeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	recipe, err := h.Clipper.ImportRecipe(c.Request().Context(), req.URL)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, recipe)
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return badRequest(c, "Petición inválida.")
	}
	if err := c.Validate(req); err != nil {
		return badRequest(c, "Petición inválida.")
	}
	return nil
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Message: msg})
}

// fail maps a classified invocation error to an HTTP status and the single
// user-facing message; the bounded diagnostic detail goes to the log only.
func (h *Handler) fail(c echo.Context, err error) error {
	var le *llm.Error
	if errors.As(err, &le) {
		if h.Logger != nil {
			h.Logger.Error("model invocation failed",
				slog.String("kind", string(le.Kind)),
				slog.String("detail", le.Detail))
		}
		return c.JSON(statusForKind(le.Kind), errorResponse{Message: le.Message})
	}

	if h.Logger != nil {
		h.Logger.Error("request failed", slog.String("error", err.Error()))
	}
	return c.JSON(http.StatusInternalServerError, errorResponse{Message: "Error interno del servidor."})
}

func statusForKind(kind llm.Kind) int {
	switch kind {
	case llm.KindConfigurationMissing:
		return http.StatusInternalServerError
	case llm.KindOverloaded:
		return http.StatusServiceUnavailable
	case llm.KindNetworkFailure:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func toProfiles(in []profilePayload) []menu.Profile {
	out := make([]menu.Profile, 0, len(in))
	for _, p := range in {
		out = append(out, menu.Profile{
			ID:            p.ID,
			Name:          p.Name,
			Age:           p.Age,
			Gender:        menu.Gender(p.Gender),
			ActivityLevel: menu.ActivityLevel(p.ActivityLevel),
			Notes:         p.Notes,
		})
	}
	return out
}

func toRecipes(in []recipePayload) []menu.Recipe {
	out := make([]menu.Recipe, 0, len(in))
	for _, r := range in {
		out = append(out, menu.Recipe{ID: r.ID, Name: r.Name, Ingredients: r.Ingredients})
	}
	return out
}
