package main

import (
	"os"

	"github.com/fekuna/catalog-service/internal/seed"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	seedOpts seed.Options
	seedCSV  string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the catalog with generated or imported data",
	Example: `  catalog seed --brands 20 --categories 40 --products 5000 --workers 8
  catalog seed --csv products.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, cfg, cfg.Database.AutoMigrate)
		if err != nil {
			return err
		}
		defer a.Close()

		s := seed.NewSeeder(a.brands, a.categories, a.products, a.log)

		var res *seed.Result
		if seedCSV != "" {
			f, openErr := os.Open(seedCSV)
			if openErr != nil {
				return openErr
			}
			defer f.Close()
			res, err = s.ImportCSV(ctx, f, seedOpts.Workers)
		} else {
			res, err = s.Generate(ctx, seedOpts)
		}
		if res != nil {
			a.log.Info("seed finished",
				zap.Int("brands", res.Brands),
				zap.Int("categories", res.Categories),
				zap.Int("products", res.Products))
		}
		return err
	},
}

func init() {
	f := seedCmd.Flags()
	f.IntVar(&seedOpts.Brands, "brands", 10, "number of brands to generate")
	f.IntVar(&seedOpts.Categories, "categories", 20, "number of categories to generate")
	f.IntVar(&seedOpts.Products, "products", 200, "number of products to generate")
	f.IntVar(&seedOpts.Workers, "workers", 4, "concurrent writers")
	f.Uint64Var(&seedOpts.Seed, "seed", 0, "random seed (0 picks one)")
	f.StringVar(&seedCSV, "csv", "", "import products from this CSV file instead of generating")
}
