// Command main runs the database seeder for Agora.
package main

import (
	"context"
	"flag"
	"log"

	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 25, "Number of users to create")
	numPosts := flag.Int("posts", 60, "Number of posts to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	fixtures := flag.String("fixtures", "", "Apply a YAML fixtures file instead of random data")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db, cfg)
	ctx := context.Background()

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	if *fixtures != "" {
		f, err := seed.LoadFixtures(*fixtures)
		if err != nil {
			log.Fatalf("Fixtures load failed: %v", err)
		}
		if err := s.ApplyFixtures(ctx, f); err != nil {
			log.Fatalf("Fixtures seeding failed: %v", err)
		}
		log.Println("Fixtures applied.")
		return
	}

	if err := s.Seed(ctx, seed.Options{
		NumUsers: *numUsers,
		NumPosts: *numPosts,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
