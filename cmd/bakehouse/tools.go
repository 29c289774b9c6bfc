package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"bakehouse/internal/api"
	"bakehouse/internal/costing"
	"bakehouse/internal/database"
	"bakehouse/internal/measure"
	"bakehouse/internal/pricing"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and seed defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := database.Open(cfg.Database, log)
		if err != nil {
			return err
		}
		defer store.Close()
		fmt.Fprintf(cmd.OutOrStdout(), "database %s ready\n", cfg.Database.Dialect)
		return nil
	},
}

var (
	tokenSubject string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a back-office API token",
	Long: `Signs a bearer token with auth.jwt_secret for the admin API.

Example:
  BAKEHOUSE_JWT_SECRET=s3cret bakehouse token --subject owner`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ttl := tokenTTL
		if ttl == 0 {
			ttl = cfg.GetTokenTTL()
		}
		token, err := api.IssueToken(cfg.Auth.JWTSecret, tokenSubject, ttl, time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

var convertDensity float64

var convertCmd = &cobra.Command{
	Use:   "convert [amount] [from] [to]",
	Short: "Convert an amount between kitchen units",
	Long: `Converts between weight, volume and count units. Weight and volume
are bridged with --density in g/ml (water by default).

Examples:
  bakehouse convert 2 cup g --density 0.53
  bakehouse convert 454 g lb`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", args[0], err)
		}
		from, ok := measure.ParseUnit(args[1])
		if !ok {
			return fmt.Errorf("unknown unit %q", args[1])
		}
		to, ok := measure.ParseUnit(args[2])
		if !ok {
			return fmt.Errorf("unknown unit %q", args[2])
		}
		return printConversion(cmd.OutOrStdout(), amount, from, to, convertDensity)
	},
}

func printConversion(w io.Writer, amount float64, from, to measure.Unit, density float64) error {
	out := measure.ConvertWithDensity(amount, from, to, density)
	info, _ := measure.Lookup(to)
	_, err := fmt.Fprintf(w, "%s %s = %s %s (%s)\n",
		measure.FormatAmount(amount), from,
		measure.FormatAmount(out), info.ShortLabel,
		measure.FormatAsFraction(out))
	return err
}

var (
	scaleWeight float64
	scalePrice  float64
)

var scaleCmd = &cobra.Command{
	Use:   "scale [recipe-id] [count]",
	Short: "Scale a stored recipe and show its ingredient costs",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid recipe id %q: %w", args[0], err)
		}
		count, err := strconv.ParseFloat(args[1], 64)
		if err != nil || count <= 0 {
			return fmt.Errorf("invalid count %q", args[1])
		}

		store, err := database.Open(cfg.Database, log)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := cmd.Context()
		recipe, err := store.GetRecipe(ctx, uint(id))
		if err != nil {
			return err
		}
		catalog, err := store.Catalog(ctx)
		if err != nil {
			return err
		}
		weight := scaleWeight
		if weight == 0 {
			weight = recipe.BaseCookieSize
		}
		s := costing.ScaleRecipe(*recipe, catalog, count, weight)

		var profit *costing.Profit
		if scalePrice > 0 {
			tiers, err := store.ListDiscountTiers(ctx)
			if err != nil {
				return err
			}
			p := costing.ProfitMetrics(s, scalePrice, int(count), tiers)
			profit = &p
		}
		if err := printScaling(cmd.OutOrStdout(), recipe.DisplayName, s, profit); err != nil {
			return err
		}
		if oven, ok := recipe.Oven(); ok {
			fmt.Fprintf(cmd.OutOrStdout(), "Bake at %s for %s\n", oven, recipe.BakeTime)
		}
		return nil
	},
}

func printScaling(w io.Writer, name string, s costing.Scaling, profit *costing.Profit) error {
	fmt.Fprintf(w, "%s x%s (%s g dough)\n\n", name, measure.FormatAmount(float64(s.ScaleFactor)), measure.FormatAmount(s.TotalDough))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INGREDIENT\tAMOUNT\tUNIT\tCOST")
	for _, line := range s.Ingredients {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			line.Ingredient.Name,
			measure.FormatAmount(line.ScaledAmount),
			line.Ingredient.Unit,
			pricing.FormatCurrency(line.Cost))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nTotal cost: %s\n", pricing.FormatCurrency(s.TotalCost))
	if s.CostPerUnit.Finite() {
		fmt.Fprintf(w, "Cost per cookie: %s\n", pricing.FormatCurrency(float64(s.CostPerUnit)))
	}
	if len(s.Skipped) > 0 {
		fmt.Fprintf(w, "Missing ingredients: %v\n", s.Skipped)
	}
	if profit != nil {
		fmt.Fprintf(w, "Sale price: %s (%s)\n", pricing.FormatCurrency(profit.DiscountedPrice), discountText(profit.DiscountLabel))
		if profit.ProfitMargin.Finite() {
			fmt.Fprintf(w, "Margin: %s%%\n", measure.FormatAmount(float64(profit.ProfitMargin)))
		}
		fmt.Fprintf(w, "Net revenue: %s\n", pricing.FormatCurrency(profit.NetRevenue))
	}
	return nil
}

func discountText(label string) string {
	if label == "" {
		return "no discount"
	}
	return label
}

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Write the default configuration to --config",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Save(configFile); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", configFile)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "owner", "Token subject")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "Token lifetime (defaults to auth.token_ttl)")
	convertCmd.Flags().Float64Var(&convertDensity, "density", measure.DefaultDensity, "Density in g/ml for weight/volume conversions")
	scaleCmd.Flags().Float64Var(&scaleWeight, "weight", 0, "Cookie weight in grams (defaults to the recipe's base size)")
	scaleCmd.Flags().Float64Var(&scalePrice, "price", 0, "Sale price per cookie for a profit summary")
}
