package main

import (
	"context"
	"fmt"
	"os"

	"github.com/example/intern-ledger/internal/application"
	"github.com/example/intern-ledger/internal/backup"
	"github.com/example/intern-ledger/internal/persistence"
)

func (cli *commandLine) export(ctx context.Context, path string) error {
	engine, err := cli.loadEngine(ctx)
	if err != nil {
		return err
	}
	doc, err := application.NewDocumentService(engine, cli.logger).Export(ctx, operator)
	if err != nil {
		return err
	}
	raw, err := persistence.Encode(doc)
	if err != nil {
		return err
	}

	if path == "" {
		_, err = fmt.Fprintln(cli.out, string(raw))
		return err
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(cli.out, "document written to %s\n", path)
	return nil
}

func (cli *commandLine) importDocument(ctx context.Context, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := persistence.Decode(raw)
	if err != nil {
		return err
	}

	engine, err := cli.loadEngine(ctx)
	if err != nil {
		return err
	}
	if err := application.NewDocumentService(engine, cli.logger).Import(ctx, operator, doc); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "imported %d persons and %d accounts\n", len(doc.Persons), len(doc.Accounts))
	return nil
}

func (cli *commandLine) backup(ctx context.Context) error {
	if !cli.cfg.Backup.Enabled() {
		return fmt.Errorf("backup: LEDGER_BACKUP_ENDPOINT is not configured")
	}
	uploader, err := cli.newUploader(backup.Config(cli.cfg.Backup), cli.logger)
	if err != nil {
		return err
	}

	doc, err := cli.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("backup: load document: %w", err)
	}
	result, err := uploader.Upload(ctx, doc)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "snapshot stored at %s/%s (%d bytes)\n", result.Bucket, result.Object, result.Size)
	return nil
}
