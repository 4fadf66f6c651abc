// Package main provides a CLI tool for generating bearer tokens for the
// scheme portal API. Tokens are signed with the key from JWT_SIGNING_KEY (or
// the development default) and will NOT work against a production deployment.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	jwttoken "schemeportal/internal/jwt_token"
	"schemeportal/internal/platform/config"
	"schemeportal/internal/seeder"
	id "schemeportal/pkg/domain"
)

type tokenOutput struct {
	Token     string            `json:"token"`
	Type      string            `json:"type"`
	ExpiresIn string            `json:"expires_in"`
	Claims    map[string]any    `json:"claims,omitempty"`
	Usage     map[string]string `json:"usage"`
}

// demoIdentities are the staff members the server seeds with SEED_DEMO_DATA.
var demoIdentities = map[string]id.UserID{
	"super_admin": seeder.DemoSuperAdminID,
	"admin":       seeder.DemoAdminID,
	"analyst":     seeder.DemoAnalystID,
}

func main() {
	accessCmd := flag.NewFlagSet("access", flag.ExitOnError)
	demoCmd := flag.NewFlagSet("demo", flag.ExitOnError)

	accessUserID := accessCmd.String("user-id", "", "User ID (UUID). Generated if empty; unknown users act as citizens.")
	accessTTL := accessCmd.Duration("ttl", 0, "Token time-to-live (defaults to TOKEN_TTL)")
	accessEnv := accessCmd.String("env", "", "Environment annotation carried in the token")
	accessJSON := accessCmd.Bool("json", false, "Output as JSON")

	demoRole := demoCmd.String("role", "admin", "Seeded identity: super_admin, admin or analyst")
	demoTTL := demoCmd.Duration("ttl", 0, "Token time-to-live (defaults to TOKEN_TTL)")
	demoJSON := demoCmd.Bool("json", false, "Output as JSON")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg := config.FromEnv()

	switch os.Args[1] {
	case "access":
		accessCmd.Parse(os.Args[2:]) //nolint:errcheck // ExitOnError
		uid := parseOrGenerateUserID(*accessUserID)
		generateAccessToken(cfg, uid, *accessTTL, *accessEnv, *accessJSON)
	case "demo":
		demoCmd.Parse(os.Args[2:]) //nolint:errcheck // ExitOnError
		uid, ok := demoIdentities[*demoRole]
		if !ok {
			fmt.Fprintf(os.Stderr, "Unknown demo role: %s (want super_admin, admin or analyst)\n", *demoRole)
			os.Exit(1)
		}
		generateAccessToken(cfg, uid, *demoTTL, "demo", *demoJSON)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`tokengen - Generate bearer tokens for the scheme portal API

WARNING: Tokens are signed with JWT_SIGNING_KEY or the development default.
         Only use for local development and testing.

Usage:
  tokengen <command> [flags]

Commands:
  access    Generate an access token for any user id
  demo      Generate an access token for a seeded staff member

Roles are never part of the token. The server looks them up in the staff
directory, so a fresh user id acts as a citizen.

Examples:
  # Citizen token for a new user
  tokengen access

  # Token for a specific user with a custom TTL
  tokengen access -user-id "550e8400-e29b-41d4-a716-446655440000" -ttl 1h

  # Token for the seeded analyst (server started with SEED_DEMO_DATA=true)
  tokengen demo -role analyst

  # Output as JSON
  tokengen access -json

Use "tokengen <command> -h" for more information about a command.`)
}

func generateAccessToken(cfg config.Server, uid id.UserID, ttl time.Duration, env string, jsonOutput bool) {
	if ttl <= 0 {
		ttl = cfg.TokenTTL
	}
	svc := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience, ttl)
	if env != "" {
		svc.SetEnv(env)
	}

	token, jti, err := svc.GenerateAccessToken(context.Background(), uid)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating token: %v\n", err)
		os.Exit(1)
	}

	if jsonOutput {
		printJSON(tokenOutput{
			Token:     token,
			Type:      "access_token",
			ExpiresIn: ttl.String(),
			Claims: map[string]any{
				"user_id": uid.String(),
				"iss":     cfg.JWTIssuer,
				"aud":     cfg.JWTAudience,
				"env":     env,
				"jti":     jti,
			},
			Usage: map[string]string{
				"header": "Authorization: Bearer <token>",
			},
		})
		return
	}

	fmt.Println("Access Token (JWT)")
	fmt.Println("==================")
	fmt.Printf("Expires In:  %s\n", ttl)
	fmt.Printf("User ID:     %s\n", uid)
	fmt.Printf("Issuer:      %s\n", cfg.JWTIssuer)
	fmt.Printf("Audience:    %s\n", cfg.JWTAudience)
	if env != "" {
		fmt.Printf("Env:         %s\n", env)
	}
	fmt.Printf("JTI:         %s\n", jti)
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(token)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  curl -H \"Authorization: Bearer <token>\" http://localhost:8080/applications/mine")
}

func parseOrGenerateUserID(input string) id.UserID {
	if input == "" {
		return id.UserID(uuid.New())
	}
	parsed, err := id.ParseUserID(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid user-id UUID: %s\n", input)
		os.Exit(1)
	}
	return parsed
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}
