// Command devtoken mints an access token for a user id, for local testing
// against a server sharing the same JWT_SECRET.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/nekogravitycat/item-sharing-backend/internal/auth"
)

func main() {
	_ = godotenv.Load()

	userID := flag.Int64("user", 0, "user id to put in the token subject")
	name := flag.String("name", "", "optional display name claim")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	secret := flag.String("secret", os.Getenv("JWT_SECRET"), "signing secret (default $JWT_SECRET)")
	flag.Parse()

	if *userID <= 0 {
		log.Fatal("-user must be a positive id")
	}
	if *secret == "" {
		log.Fatal("JWT_SECRET is not set and -secret was not given")
	}

	token, err := auth.NewJWTManager(*secret, *ttl).GenerateAccessToken(*userID, *name)
	if err != nil {
		log.Fatalf("failed to mint token: %v", err)
	}
	fmt.Println(token)
}
