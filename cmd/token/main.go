package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/johnquangdev/cyberon-reporter/pkg/config"
	pkgjwt "github.com/johnquangdev/cyberon-reporter/pkg/jwt"
)

// Prints a bearer token for the HTTP API. The user id is the caller's
// Telegram id so history and quotas are shared with the bot.
func main() {
	userID := flag.Int64("user", 0, "user id to issue the token for (defaults to ADMIN_ID)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	id := *userID
	if id == 0 {
		id = cfg.Access.AdminID
	}
	if id == 0 {
		log.Fatalf("No user id: pass -user or set ADMIN_ID")
	}

	jwtManager := pkgjwt.NewManager(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiry, cfg.JWT.Issuer)
	token, err := jwtManager.GenerateAccessToken(id)
	if err != nil {
		log.Fatalf("Failed to generate token: %v", err)
	}

	fmt.Fprintf(os.Stderr, "🔑 Token for user %d, valid for %s\n", id, jwtManager.GetAccessExpiry())
	fmt.Println(token)
}
