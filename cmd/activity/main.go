// Command activity tails post activity events published by the API.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"devconnector/internal/config"
	"devconnector/internal/notifications"
	"devconnector/internal/redisclient"
)

func main() {
	userID := flag.String("user", "", "only show events for this post owner")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	redisclient.InitRedis(cfg.RedisURL)
	rdb := redisclient.GetClient()
	if rdb == nil {
		log.Fatalf("Redis is not reachable at %s", cfg.RedisURL)
	}
	defer func() { _ = rdb.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	want := ""
	if *userID != "" {
		want = notifications.UserChannel(*userID)
	}

	n := notifications.NewNotifier(rdb)
	err = n.StartPatternSubscriber(ctx, func(channel, payload string) {
		if want != "" && channel != want {
			return
		}
		var evt notifications.PostEvent
		if err := json.Unmarshal([]byte(payload), &evt); err != nil {
			log.Printf("%s: unreadable payload: %v", channel, err)
			return
		}
		log.Printf("%-28s %-22s post=%s actor=%s likes=%d comments=%d",
			channel, evt.Type, evt.PostID, evt.ActorID, evt.Likes, evt.Comments)
	})
	if err != nil {
		log.Fatalf("Failed to subscribe: %v", err)
	}

	log.Println("Listening for post activity. Press Ctrl+C to stop.")
	<-ctx.Done()
	log.Println("Stopped")
}
