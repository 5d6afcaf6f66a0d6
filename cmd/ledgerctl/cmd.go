package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/example/intern-ledger/internal/application"
	"github.com/example/intern-ledger/internal/backup"
	"github.com/example/intern-ledger/internal/config"
	"github.com/example/intern-ledger/internal/domain"
	"github.com/example/intern-ledger/internal/persistence"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

// operator is the actor recorded for changes made from the command line.
var operator = domain.Actor{
	ID:          "ledgerctl",
	DisplayName: "ledgerctl",
	Role:        domain.RoleSuper,
}

type snapshotUploader interface {
	Upload(ctx context.Context, doc domain.Document) (backup.Result, error)
}

type commandLine struct {
	cfg         config.Config
	store       persistence.Store
	logger      *slog.Logger
	out         io.Writer
	stdinFD     int
	clock       application.Clock
	hasher      application.PasswordHasher
	newUploader func(backup.Config, *slog.Logger) (snapshotUploader, error)
}

func newCommandLine(cfg config.Config, store persistence.Store, logger *slog.Logger) *commandLine {
	cli := &commandLine{
		cfg:     cfg,
		store:   store,
		logger:  logger,
		out:     os.Stdout,
		stdinFD: int(os.Stdin.Fd()),
		clock:   application.SystemClock{Location: cfg.Location},
		hasher:  application.NewPasswordHasher(application.DefaultArgon2idParams),
	}
	cli.newUploader = func(cfg backup.Config, logger *slog.Logger) (snapshotUploader, error) {
		return backup.New(cfg, logger)
	}
	return cli
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  seed [-force]                   - write the sample document (admin plus ten interns)")
	fmt.Fprintln(cli.out, "  resetpassword -username NAME    - reset an account password; the password is prompted next")
	fmt.Fprintln(cli.out, "  export [-out FILE]              - write the document as JSON to FILE or stdout")
	fmt.Fprintln(cli.out, "  import -in FILE                 - validate FILE and replace the stored document")
	fmt.Fprintln(cli.out, "  backup                          - upload a snapshot to the configured bucket")
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	seedCmd := flag.NewFlagSet("seed", flag.ContinueOnError)
	seedForce := seedCmd.Bool("force", false, "Overwrite an existing document.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordUname := resetPasswordCmd.String("username", "", "The account username. The password will be prompted next.")

	exportCmd := flag.NewFlagSet("export", flag.ContinueOnError)
	exportOut := exportCmd.String("out", "", "Destination file; stdout when empty.")

	importCmd := flag.NewFlagSet("import", flag.ContinueOnError)
	importIn := importCmd.String("in", "", "JSON document to import.")

	backupCmd := flag.NewFlagSet("backup", flag.ContinueOnError)

	for _, fs := range []*flag.FlagSet{seedCmd, resetPasswordCmd, exportCmd, importCmd, backupCmd} {
		fs.SetOutput(cli.out)
	}

	switch args[1] {
	case "seed":
		if err := seedCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.seed(ctx, *seedForce)
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordUname == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(cli.stdinFD)
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(ctx, *resetPasswordUname, string(pwd))
	case "export":
		if err := exportCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.export(ctx, *exportOut)
	case "import":
		if err := importCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *importIn == "" {
			importCmd.Usage()
			return errHelp
		}
		return cli.importDocument(ctx, *importIn)
	case "backup":
		if err := backupCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.backup(ctx)
	default:
		cli.printUsage()
		return errHelp
	}
}

// loadEngine opens the stored document. An empty store yields an empty
// document rather than the sample data.
func (cli *commandLine) loadEngine(ctx context.Context) (*application.Engine, error) {
	return application.LoadEngine(ctx, cli.store, nil, cli.logger)
}
