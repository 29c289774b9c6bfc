package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"bakehouse/internal/costing"
	"bakehouse/internal/measure"
	"bakehouse/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintConversion(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printConversion(&buf, 8, measure.Tablespoon, measure.Cup, measure.DefaultDensity))
	assert.Equal(t, "8 tbsp = 0.50 cup (½)\n", buf.String())
}

func TestPrintScaling(t *testing.T) {
	flour := models.Ingredient{Name: "Flour", Unit: "g", PackageSize: 1000, PackagePrice: 2}
	flour.ID = 1
	recipe := models.Recipe{
		DisplayName: "Test", BaseYield: 10, BaseCookieSize: 50,
		Ingredients: []models.RecipeIngredient{{IngredientID: 1, Amount: 250}, {IngredientID: 9, Amount: 5}},
	}
	s := costing.ScaleRecipe(recipe, costing.NewCatalog([]models.Ingredient{flour}), 20, 50)
	p := costing.ProfitMetrics(s, 2, 20, nil)

	var buf bytes.Buffer
	require.NoError(t, printScaling(&buf, recipe.DisplayName, s, &p))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Test x2 (1000 g dough)"))
	assert.Contains(t, out, "Flour")
	assert.Contains(t, out, "500")
	assert.Contains(t, out, "Total cost: $1.00")
	assert.Contains(t, out, "Cost per cookie: $0.05")
	assert.Contains(t, out, "Missing ingredients: [9]")
	assert.Contains(t, out, "no discount")
}

func TestRootCommandTree(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "migrate", "token", "convert", "scale", "init-config"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestExecuteConvert(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml"), "convert", "8", "tbsp", "cup"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "8 tbsp = 0.50 cup (½)\n", out.String())
	// the post-run hook flushed the logger built by the pre-run hook
	require.NotNil(t, log)
	assert.Equal(t, "development", cfg.Logging.Mode)
}
