// Package mealdb looks up recipes in TheMealDB and flattens its positional
// ingredient/measure slots into an ordered ingredient list.
package mealdb

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"github.com/pageza/crave-decoder/config"
	"github.com/pageza/crave-decoder/logging"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// IngredientSlots is the number of strIngredientN/strMeasureN pairs in a
// TheMealDB record.
const IngredientSlots = 20

var (
	// ErrNameRequired is returned for a blank meal name.
	ErrNameRequired = errors.New("meal name required")
	// ErrNoRecipes is returned when neither the search nor the random
	// fallback yields a record.
	ErrNoRecipes = errors.New("no recipes available")
)

// MealRecord is the flattened recipe returned to the browser.
type MealRecord struct {
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	Area         string   `json:"area"`
	Instructions string   `json:"instructions"`
	Ingredients  []string `json:"ingredients"`
	Image        string   `json:"image"`
	Youtube      string   `json:"youtube"`
}

// meal is one raw record; every value is a string or null.
type meal map[string]interface{}

type mealsResponse struct {
	Meals []meal `json:"meals"`
}

// Client queries TheMealDB by name with a random-meal fallback.
type Client struct {
	baseURL string
	client  *http.Client
}

// New creates a Client for cfg.MealDBBaseURL. A nil client gets one with
// cfg.HTTPTimeout.
func New(cfg config.Config, client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.MealDBBaseURL, "/"),
		client:  client,
	}
}

// Lookup finds name by search, falling back to a random recipe when nothing
// matches. It returns ErrNameRequired, ErrNoRecipes, or a wrapped transport
// or decode error.
func (c *Client) Lookup(ctx context.Context, name string) (MealRecord, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return MealRecord{}, ErrNameRequired
	}
	log := logging.FromContext(ctx).WithField("meal", name)

	meals, err := c.searchByName(ctx, name)
	if err != nil {
		return MealRecord{}, err
	}
	if len(meals) == 0 {
		log.Info("no recipe matched; falling back to a random recipe")
		meals, err = c.random(ctx)
		if err != nil {
			return MealRecord{}, err
		}
	}
	if len(meals) == 0 {
		return MealRecord{}, ErrNoRecipes
	}

	record := flatten(meals[0])
	log.WithField("ingredients", len(record.Ingredients)).Debug("recipe resolved")
	return record, nil
}

func (c *Client) searchByName(ctx context.Context, name string) ([]meal, error) {
	return c.get(ctx, "/search.php?s="+url.QueryEscape(name))
}

func (c *Client) random(ctx context.Context) ([]meal, error) {
	return c.get(ctx, "/random.php")
}

func (c *Client) get(ctx context.Context, path string) ([]meal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build recipe request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "call recipe database")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Errorf("recipe database returned %s", resp.Status)
	}

	var body mealsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.Wrap(err, "decode recipe response")
	}
	return body.Meals, nil
}

func flatten(m meal) MealRecord {
	return MealRecord{
		Name:         m.field("strMeal"),
		Category:     m.field("strCategory"),
		Area:         m.field("strArea"),
		Instructions: m.field("strInstructions"),
		Ingredients:  m.ingredients(),
		Image:        m.field("strMealThumb"),
		Youtube:      m.field("strYoutube"),
	}
}

func (m meal) field(key string) string {
	return strings.TrimSpace(cast.ToString(m[key]))
}

// ingredients pairs every non-empty ingredient slot with its measure, in slot
// order.
func (m meal) ingredients() []string {
	ingredients := make([]string, 0, IngredientSlots)
	for i := 1; i <= IngredientSlots; i++ {
		n := strconv.Itoa(i)
		ingredient := m.field("strIngredient" + n)
		if ingredient == "" {
			continue
		}
		measure := m.field("strMeasure" + n)
		ingredients = append(ingredients, strings.TrimSpace(measure+" "+ingredient))
	}
	return ingredients
}
