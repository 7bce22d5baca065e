// Command main runs the database seeder for Inkpress.
package main

import (
	"fmt"
	"os"

	"inkpress/internal/config"
	"inkpress/internal/database"
	"inkpress/internal/middleware"
	"inkpress/internal/seed"

	"github.com/urfave/cli/v2"
	"gorm.io/gorm"
)

func main() {
	app := &cli.App{
		Name:  "inkpress-seed",
		Usage: "populate the database with demo data",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "users", Value: 20, Usage: "number of generated users"},
			&cli.IntFlag{Name: "posts", Value: 100, Usage: "number of generated posts"},
			&cli.BoolFlag{Name: "clean", Value: true, Usage: "delete all rows before seeding"},
			&cli.StringFlag{Name: "fixtures", Usage: "YAML fixtures file to apply instead of generated data"},
			&cli.BoolFlag{Name: "demo", Usage: "apply the built-in demo fixtures"},
			&cli.StringFlag{Name: "sqlite", Usage: "seed a SQLite file instead of the configured PostgreSQL database"},
			&cli.Int64Flag{Name: "seed", Usage: "random seed for reproducible output"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		middleware.Logger.Error("seeding failed", "error", err)
		os.Exit(1)
	}
}

func openDB(c *cli.Context) (*gorm.DB, error) {
	if path := c.String("sqlite"); path != "" {
		return database.OpenSQLite(path)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return database.Connect(cfg)
}

func loadFixtures(c *cli.Context) (*seed.Fixtures, error) {
	if c.Bool("demo") {
		return seed.DemoFixtures()
	}
	path := c.String("fixtures")
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return seed.LoadFixtures(f)
}

func run(c *cli.Context) error {
	ctx := c.Context
	fx, err := loadFixtures(c)
	if err != nil {
		return err
	}

	db, err := openDB(c)
	if err != nil {
		return err
	}
	s := seed.NewSeeder(db, seed.Options{FastHash: true, Seed: c.Int64("seed")})

	if c.Bool("clean") {
		if err := s.ClearAll(ctx); err != nil {
			return fmt.Errorf("cleanup: %w", err)
		}
	}

	if fx != nil {
		res, err := s.ApplyFixtures(ctx, fx)
		if err != nil {
			return fmt.Errorf("apply fixtures: %w", err)
		}
		middleware.Logger.InfoContext(ctx, "fixtures applied",
			"users", res.Users, "posts", res.Posts, "comments", res.Comments, "likes", res.Likes)
	} else {
		sum, err := s.SeedRandom(ctx, c.Int("users"), c.Int("posts"))
		if err != nil {
			return err
		}
		middleware.Logger.InfoContext(ctx, "random data seeded",
			"users", len(sum.Users), "posts", len(sum.Posts), "comments", sum.Comments, "likes", sum.Likes)
	}

	middleware.Logger.InfoContext(ctx, "seeding complete", "password", seed.DefaultPassword)
	return nil
}
