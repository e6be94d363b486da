// Command oneshelfctl runs one-off operator tasks against the loan service's
// configuration: applying the schema and minting development tokens.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	mw "oneshelf-backend/internal/adapter/middleware"
	"oneshelf-backend/internal/config"
	"oneshelf-backend/internal/domain/auth"
	"oneshelf-backend/internal/infrastructure/db"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "oneshelfctl",
		Short:         "Operator tasks for the oneshelf loan service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMigrateCmd(), newTokenCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the schema to the configured database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			gdb, err := db.Open(cfg)
			if err != nil {
				return err
			}
			if sqlDB, err := gdb.DB(); err == nil {
				defer sqlDB.Close()
			}
			if err := db.Migrate(gdb); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrated %s schema\n", cfg.DBDriver)
			return nil
		},
	}
}

func newTokenCmd() *cobra.Command {
	var (
		userID    uint64
		username  string
		role      string
		libraryID uint64
		ttl       time.Duration
		secret    string
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a signed bearer token for a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if secret == "" {
				secret = config.Load().JWTSecret
			}
			if secret == "" {
				return fmt.Errorf("no signing secret: pass --secret or set JWT_SECRET")
			}
			claim := auth.Claim{UserID: userID, Username: username, Role: auth.Role(role)}
			if !claim.Role.Valid() {
				return fmt.Errorf("unknown role %q", role)
			}
			if libraryID != 0 {
				claim.LibraryID = &libraryID
			}
			if claim.Role.ScopedToLibrary() && claim.LibraryID == nil {
				return fmt.Errorf("role %q needs --library", role)
			}

			raw, err := mw.IssueToken([]byte(secret), claim, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), raw)
			return nil
		},
	}

	f := cmd.Flags()
	f.Uint64Var(&userID, "id", 0, "user id (required)")
	f.StringVar(&username, "username", "", "display name")
	f.StringVar(&role, "role", string(auth.RoleUser), "user, librarian, headLibrarian or admin")
	f.Uint64Var(&libraryID, "library", 0, "library id for staff roles")
	f.DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime; 0 never expires")
	f.StringVar(&secret, "secret", "", "HMAC secret (defaults to JWT_SECRET)")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
