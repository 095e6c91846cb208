// Command admin-token prints a bearer token for the admin HTTP API.
package main

import (
	"flag"
	"fmt"
	"os"

	"telegram-vocab-reader/internal/config"
	"telegram-vocab-reader/internal/infra/api"
)

func main() {
	subject := flag.String("subject", "admin", "token subject")
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	tok, err := api.NewAuthManager(cfg.Admin.JWTSecret, cfg.Admin.TokenTTL).Mint(*subject)
	if err != nil {
		fmt.Fprintln(os.Stderr, "mint:", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
