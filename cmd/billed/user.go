package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmynk/billed/internal/auth"
	"github.com/mmynk/billed/internal/models"
	"github.com/mmynk/billed/internal/storage/sqlite"
)

func newUserCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}
	cmd.AddCommand(newUserAddCmd(opts))
	return cmd
}

func newUserAddCmd(opts *rootOptions) *cobra.Command {
	var (
		email       string
		displayName string
		password    string
		userType    string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register an employee or admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(nil)
			if err != nil {
				return err
			}

			store, err := sqlite.New(cfg.Storage.DBPath)
			if err != nil {
				return fmt.Errorf("initialize storage: %w", err)
			}
			defer store.Close()

			if displayName == "" {
				displayName = email
			}
			user, err := auth.NewPasswordAuthenticator(store).Register(
				context.Background(), email, displayName, password, models.UserType(userType))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s %s (%s)\n", user.Type, user.Email, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&displayName, "name", "", "display name (default: email)")
	cmd.Flags().StringVar(&password, "password", "", "password, at least 8 characters")
	cmd.Flags().StringVar(&userType, "type", string(models.UserTypeEmployee), "Employee or Admin")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
