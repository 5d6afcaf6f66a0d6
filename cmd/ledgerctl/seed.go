package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/example/intern-ledger/internal/application"
	"github.com/example/intern-ledger/internal/persistence"
)

var errDocumentExists = errors.New("a document is already stored; use -force to overwrite it")

func (cli *commandLine) seed(ctx context.Context, force bool) error {
	_, err := cli.store.Load(ctx)
	switch {
	case err == nil && !force:
		return errDocumentExists
	case err != nil && !errors.Is(err, persistence.ErrNotFound) && !force:
		return err
	}

	doc, err := application.SampleDocument(cli.clock, uuid.NewString, cli.hasher)
	if err != nil {
		return fmt.Errorf("build sample document: %w", err)
	}
	if err := cli.store.Save(ctx, doc); err != nil {
		return fmt.Errorf("save sample document: %w", err)
	}

	cli.logger.InfoContext(ctx, "sample document stored", "persons", len(doc.Persons), "accounts", len(doc.Accounts))
	fmt.Fprintf(cli.out, "seeded %d persons; login %s / %s, interns est1..est%d / %s\n",
		len(doc.Persons),
		application.SampleAdminUsername, application.SampleAdminPassword,
		len(doc.Persons), application.SampleInternPassword,
	)
	return nil
}
