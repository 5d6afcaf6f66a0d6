package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/example/intern-ledger/internal/application"
)

func (cli *commandLine) resetPassword(ctx context.Context, username, password string) error {
	engine, err := cli.loadEngine(ctx)
	if err != nil {
		return err
	}
	accounts := application.NewAccountServiceWithLogger(engine, cli.clock, uuid.NewString, cli.hasher, cli.logger)

	views, err := accounts.ListAccounts(ctx, application.ListAccountsParams{Actor: operator, Query: username})
	if err != nil {
		return err
	}
	accountID := ""
	for _, view := range views {
		if strings.EqualFold(view.Username, strings.TrimSpace(username)) {
			accountID = view.ID
			break
		}
	}
	if accountID == "" {
		return fmt.Errorf("account %q: %w", username, application.ErrNotFound)
	}

	if err := accounts.ResetPassword(ctx, application.ResetPasswordParams{
		Actor:       operator,
		AccountID:   accountID,
		NewPassword: password,
	}); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "password updated for %s\n", username)
	return nil
}
