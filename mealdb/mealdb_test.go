package mealdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/crave-decoder/config"
)

// fixtureMeal is shaped like a TheMealDB record: all 20 slots present, five
// populated, the rest a mix of "", " " and null.
func fixtureMeal() map[string]interface{} {
	m := map[string]interface{}{
		"idMeal":          "52772",
		"strMeal":         "Teriyaki Chicken Casserole",
		"strCategory":     "Chicken",
		"strArea":         "Japanese",
		"strInstructions": "Preheat oven to 350F.\r\nCombine sauce ingredients.",
		"strMealThumb":    "https://www.themealdb.com/images/media/meals/wvpsxx1468256321.jpg",
		"strYoutube":      "https://www.youtube.com/watch?v=4aZr5hZXP_s",
	}
	for i := 1; i <= IngredientSlots; i++ {
		n := strconv.Itoa(i)
		switch {
		case i%3 == 0:
			m["strIngredient"+n] = nil
			m["strMeasure"+n] = nil
		case i%3 == 1:
			m["strIngredient"+n] = ""
			m["strMeasure"+n] = ""
		default:
			m["strIngredient"+n] = " "
			m["strMeasure"+n] = " "
		}
	}
	m["strIngredient1"], m["strMeasure1"] = "soy sauce", "3/4 cup"
	m["strIngredient2"], m["strMeasure2"] = "water", "1/2 cup "
	m["strIngredient3"], m["strMeasure3"] = "brown sugar", "1/4 cup"
	m["strIngredient5"], m["strMeasure5"] = " chicken breasts", ""
	m["strIngredient7"], m["strMeasure7"] = "stir-fry vegetables", nil
	return m
}

type fakeMealDB struct {
	search, random interface{}
	status         int
	searchCalls    int32
	randomCalls    int32

	mu        sync.Mutex
	lastQuery string
}

func (f *fakeMealDB) query() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastQuery
}

func (f *fakeMealDB) start(t *testing.T) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if f.status != 0 {
			w.WriteHeader(f.status)
			return
		}
		var body interface{}
		switch r.URL.Path {
		case "/search.php":
			atomic.AddInt32(&f.searchCalls, 1)
			f.mu.Lock()
			f.lastQuery = r.URL.Query().Get("s")
			f.mu.Unlock()
			body = f.search
		case "/random.php":
			atomic.AddInt32(&f.randomCalls, 1)
			body = f.random
		default:
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return New(config.Config{MealDBBaseURL: srv.URL + "/", HTTPTimeout: 5 * time.Second}, nil)
}

func meals(ms ...map[string]interface{}) map[string]interface{} {
	if len(ms) == 0 {
		return map[string]interface{}{"meals": nil}
	}
	return map[string]interface{}{"meals": ms}
}

func TestLookupExactMatch(t *testing.T) {
	f := &fakeMealDB{search: meals(fixtureMeal())}
	c := f.start(t)

	rec, err := c.Lookup(context.Background(), "  Teriyaki Chicken Casserole ")
	require.NoError(t, err)

	assert.Equal(t, "Teriyaki Chicken Casserole", f.query())
	assert.Equal(t, int32(0), atomic.LoadInt32(&f.randomCalls))
	assert.Equal(t, "Teriyaki Chicken Casserole", rec.Name)
	assert.Equal(t, "Chicken", rec.Category)
	assert.Equal(t, "Japanese", rec.Area)
	assert.Equal(t, "https://www.youtube.com/watch?v=4aZr5hZXP_s", rec.Youtube)
	assert.NotEmpty(t, rec.Image)
	assert.Equal(t, []string{
		"3/4 cup soy sauce",
		"1/2 cup water",
		"1/4 cup brown sugar",
		"chicken breasts",
		"stir-fry vegetables",
	}, rec.Ingredients)
}

func TestLookupUsesFirstRecord(t *testing.T) {
	second := fixtureMeal()
	second["strMeal"] = "Teriyaki Salmon"
	f := &fakeMealDB{search: meals(fixtureMeal(), second)}

	rec, err := f.start(t).Lookup(context.Background(), "teriyaki")
	require.NoError(t, err)
	assert.Equal(t, "Teriyaki Chicken Casserole", rec.Name)
}

func TestLookupFallsBackToRandom(t *testing.T) {
	random := fixtureMeal()
	random["strMeal"] = "Shakshuka"
	f := &fakeMealDB{search: meals(), random: meals(random)}

	rec, err := f.start(t).Lookup(context.Background(), "Unicorn Stew")
	require.NoError(t, err)
	assert.Equal(t, "Shakshuka", rec.Name)
	assert.Equal(t, int32(1), atomic.LoadInt32(&f.searchCalls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&f.randomCalls))
}

func TestLookupNoRecipes(t *testing.T) {
	f := &fakeMealDB{search: meals(), random: map[string]interface{}{"meals": []interface{}{}}}

	_, err := f.start(t).Lookup(context.Background(), "Unicorn Stew")
	assert.True(t, errors.Is(err, ErrNoRecipes))
}

func TestLookupBlankName(t *testing.T) {
	f := &fakeMealDB{}
	_, err := f.start(t).Lookup(context.Background(), "   ")
	assert.Equal(t, ErrNameRequired, err)
	assert.Equal(t, int32(0), atomic.LoadInt32(&f.searchCalls))
}

func TestLookupUpstreamStatus(t *testing.T) {
	f := &fakeMealDB{status: http.StatusServiceUnavailable}
	_, err := f.start(t).Lookup(context.Background(), "Pad Thai")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestLookupBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"meals": [`))
	}))
	defer srv.Close()

	_, err := New(config.Config{MealDBBaseURL: srv.URL}, srv.Client()).Lookup(context.Background(), "Pad Thai")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode recipe response")
}

func TestIngredientsScanAllSlots(t *testing.T) {
	m := meal{}
	for i := 1; i <= IngredientSlots+2; i++ {
		n := strconv.Itoa(i)
		m["strIngredient"+n] = "item" + n
		m["strMeasure"+n] = n + "g"
	}

	got := m.ingredients()
	require.Len(t, got, IngredientSlots, "slots past IngredientSlots are ignored")
	assert.Equal(t, "1g item1", got[0])
	assert.Equal(t, "20g item20", got[IngredientSlots-1])
}

func TestIngredientsEmptyRecord(t *testing.T) {
	got := meal{}.ingredients()
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
