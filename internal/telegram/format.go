package telegram

import (
	"fmt"
	"strings"

	"comidacasa/internal/menu"
)

func formatPlanMarkdown(plan menu.MenuPlan) string {
	var sb strings.Builder
	sb.WriteString("📅 *Menú Semanal*\n\n")

	for i, day := range plan {
		sb.WriteString(fmt.Sprintf("*%s* (%s)\n", day.Day, day.Date))
		if day.Lunch != nil {
			sb.WriteString(fmt.Sprintf("  🍽 Comida: %s\n", day.Lunch.Name))
		}
		if day.Dinner != nil {
			sb.WriteString(fmt.Sprintf("  🌙 Cena: %s\n", day.Dinner.Name))
		}
		sb.WriteString(fmt.Sprintf("  _/detalle %d comida · /detalle %d cena_\n\n", i+1, i+1))
	}

	sb.WriteString("Usa /compra para la lista de la compra.")
	return sb.String()
}

func formatMealMarkdown(meal *menu.Meal) string {
	if meal == nil {
		return "No hay ningún plato en esa posición del plan."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🍽 *%s*\n\n", meal.Name))

	sb.WriteString("*Ingredientes:*\n")
	for _, ing := range meal.Ingredients {
		sb.WriteString(fmt.Sprintf("• %s\n", ing))
	}

	sb.WriteString("\n*Preparación:*\n")
	sb.WriteString(meal.Preparation)
	sb.WriteString("\n")

	if n := meal.Nutrition; n != nil {
		sb.WriteString(fmt.Sprintf("\n*Por ración:* %.0f kcal · %.0fg proteínas · %.0fg carbohidratos · %.0fg grasas\n",
			n.Calories, n.Protein, n.Carbs, n.Fat))
	}

	if meal.Comment != "" {
		sb.WriteString(fmt.Sprintf("\n💬 _%s_", meal.Comment))
	}
	return sb.String()
}

func formatShoppingListMarkdown(list menu.ShoppingList) string {
	var sb strings.Builder
	sb.WriteString("🛒 *Lista de la Compra*\n")

	for _, cat := range list.Categories {
		// Empty categories may exist in the structure but are not rendered.
		if len(cat.Items) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n*%s*\n", cat.Name))
		for _, item := range cat.Items {
			sb.WriteString(fmt.Sprintf("• %s — %s\n", item.Name, item.Quantity))
		}
	}
	return sb.String()
}
