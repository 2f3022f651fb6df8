package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"infinite-experiment/flightboard/internal/auth"
	"infinite-experiment/flightboard/internal/config"
)

func main() {
	subject := flag.String("sub", "operator", "token subject")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	tokens := auth.NewOperatorTokens(cfg.JWTSecret)
	token, err := tokens.Issue(*subject, *ttl)
	if err != nil {
		log.Fatalf("issue token: %v (set FLIGHTBOARD_JWT_SECRET)", err)
	}

	fmt.Println("Operator token:", token)
}
