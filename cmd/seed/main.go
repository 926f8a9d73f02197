// Command main runs the demo data seeder for DevConnector.
package main

import (
	"context"
	"flag"
	"log"

	"devconnector/internal/auth"
	"devconnector/internal/bootstrap"
	"devconnector/internal/config"
	"devconnector/internal/seed"
	"devconnector/internal/service"
)

func main() {
	// Parse command line flags
	numUsers := flag.Int("users", 20, "Number of users to create")
	postsPerUser := flag.Int("posts", 3, "Number of posts per user")
	maxLikes := flag.Int("likes", 5, "Maximum likes per post")
	maxComments := flag.Int("comments", 3, "Maximum comments per post")
	seedValue := flag.Int64("seed", 0, "Random seed (0 picks one)")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d users, %d posts each\n", *numUsers, *postsPerUser)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	store, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to store: %v", err)
	}
	defer func() { _ = store.Close(ctx) }()

	tokens, err := auth.NewTokenManager(cfg.JWTSecret)
	if err != nil {
		log.Fatalf("Failed to create token manager: %v", err)
	}
	users := service.NewUserService(store.Users, auth.NewBcryptHasher(cfg.BcryptCost), tokens, auth.DefaultTokenTTL)
	posts := service.NewPostService(store.Posts)

	res, err := seed.NewFactory(users, posts, seed.Options{
		NumUsers:     *numUsers,
		PostsPerUser: *postsPerUser,
		MaxLikes:     *maxLikes,
		MaxComments:  *maxComments,
		Seed:         *seedValue,
	}).Run(ctx)
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("Created %d users, %d posts, %d likes, %d comments\n",
		len(res.Users), len(res.Posts), res.Likes, res.Comments)
	log.Println("✨ All done! Your database is now populated with test data.")
	log.Printf("📧 All test users have the password: %s\n", seed.DefaultPassword)
}
