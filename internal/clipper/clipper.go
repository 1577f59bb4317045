// Package clipper imports a recipe from a web page: it fetches the URL,
// strips markup noise and asks the model to extract the dish name and
// ingredients into a recipe hint usable by the planner.
package clipper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"comidacasa/internal/llm"
	"comidacasa/internal/menu"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
)

// Invoker issues a built request to the model, retrying transient failures.
type Invoker interface {
	Generate(ctx context.Context, prompt string, schema *genai.Schema) (string, error)
}

// Clipper handles fetching and extracting recipes from URLs.
type Clipper struct {
	invoker    Invoker
	httpClient *http.Client
}

// New creates a new Clipper instance.
func New(invoker Invoker) *Clipper {
	return &Clipper{
		invoker:    invoker,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type extractedRecipe struct {
	Name        string   `json:"nombre"`
	Ingredients []string `json:"ingredientes"`
}

func extractionSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"nombre": {Type: genai.TypeString},
			"ingredientes": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
		},
		Required: []string{"nombre", "ingredientes"},
	}
}

// ImportRecipe fetches the URL and extracts a recipe hint from its content.
func (c *Clipper) ImportRecipe(ctx context.Context, url string) (menu.Recipe, error) {
	content, err := c.fetchAndCleanHTML(ctx, url)
	if err != nil {
		return menu.Recipe{}, fmt.Errorf("failed to fetch content: %w", err)
	}

	prompt := fmt.Sprintf(`Eres un experto extrayendo recetas de páginas web.
Extrae el nombre del plato y la lista de ingredientes (con cantidades cuando aparezcan) del siguiente contenido.
La salida debe ser un único objeto JSON válido, adhiriéndose estrictamente al esquema proporcionado.
El idioma debe ser español (de España).

CONTENIDO:
%s
`, content)

	raw, err := c.invoker.Generate(ctx, prompt, extractionSchema())
	if err != nil {
		return menu.Recipe{}, err
	}

	var extracted extractedRecipe
	if err := json.Unmarshal([]byte(raw), &extracted); err != nil {
		return menu.Recipe{}, &llm.Error{
			Kind:    llm.KindMalformedResponse,
			Message: "La respuesta del modelo de IA no es JSON válido.",
			Detail:  fmt.Sprintf("%v; raw: %s", err, llm.Truncate(raw)),
		}
	}
	if strings.TrimSpace(extracted.Name) == "" || len(extracted.Ingredients) == 0 {
		return menu.Recipe{}, &llm.Error{
			Kind:    llm.KindMalformedResponse,
			Message: "No se pudo extraer una receta de esa página.",
			Detail:  llm.Truncate(raw),
		}
	}

	return menu.Recipe{
		ID:          uuid.NewString(),
		Name:        extracted.Name,
		Ingredients: strings.Join(extracted.Ingredients, ", "),
	}, nil
}

func (c *Clipper) fetchAndCleanHTML(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	// Remove noise to save LLM tokens
	doc.Find("script, style, nav, footer, iframe, ads, .ads, #ads").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	return doc.Find("body").Text(), nil
}
