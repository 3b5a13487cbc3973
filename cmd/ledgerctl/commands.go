package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/subcommands"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/cmd/httpserver"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/jobdelivery"
	"github.com/go-petr/pet-ledger/internal/joblock"
	"github.com/go-petr/pet-ledger/internal/middleware"
	"github.com/go-petr/pet-ledger/pkg/configpkg"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/go-petr/pet-ledger/pkg/passpkg"
)

var commands = []subcommands.Command{
	&jobCmd{
		name:     "accrue",
		synopsis: "accrue daily interest on interest-bearing assets",
		job:      domain.JobInterestAccrual,
		pick:     func(e *httpserver.Engines) jobdelivery.Engine { return e.Accrual },
	},
	&jobCmd{
		name:     "revalue",
		synopsis: "revalue holdings-bearing assets at the previous close",
		job:      domain.JobClosePrice,
		pick:     func(e *httpserver.Engines) jobdelivery.Engine { return e.Revaluation },
	},
	&migrateCmd{},
	&hashPasswordCmd{},
}

func loadConfig() (configpkg.Config, zerolog.Logger, error) {
	config, err := configpkg.Load(*configDir)
	if err != nil {
		return config, zerolog.Nop(), fmt.Errorf("cannot load config: %w", err)
	}

	return config, middleware.GetLogger(config), nil
}

type jobCmd struct {
	name     string
	synopsis string
	job      string
	pick     func(*httpserver.Engines) jobdelivery.Engine

	assetID int64
	dryRun  bool
}

func (c *jobCmd) Name() string     { return c.name }
func (c *jobCmd) Synopsis() string { return c.synopsis }
func (c *jobCmd) Usage() string {
	return fmt.Sprintf(`%s [-asset <id>] [-dry-run]

  %s.
  Prints the run result as JSON. With -dry-run only the candidates are listed.
`, c.name, c.synopsis)
}

func (c *jobCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.assetID, "asset", 0, "only consider the asset with this id")
	f.BoolVar(&c.dryRun, "dry-run", false, "list candidates without changing anything")
}

func (c *jobCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	config, logger, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if c.assetID < 0 {
		fmt.Fprintln(os.Stderr, domain.ErrInvalidAssetID)
		return subcommands.ExitUsageError
	}

	db, err := dbpkg.Setup(config.DBDriver, config.DBSource)
	if err != nil {
		logger.Error().Err(err).Msg("cannot connect to database")
		return subcommands.ExitFailure
	}
	defer db.Close()

	engines := httpserver.NewEngines(db, config)

	var locker jobdelivery.Locker = joblock.NopLocker{}
	if engines.Redis != nil {
		defer engines.Redis.Close()
		locker = joblock.NewRedisLocker(engines.Redis, config.JobLockTTL)
	}

	params := domain.RunParams{Now: time.Now()}
	if c.assetID > 0 {
		params.AssetID = &c.assetID
	}

	ctx = logger.WithContext(ctx)

	if err := runJob(ctx, os.Stdout, c.pick(engines), locker, c.job, params, c.dryRun); err != nil {
		logger.Error().Err(err).Str("job", c.job).Send()
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}

// runJob runs or dry runs engine and writes the outcome to w as JSON.
func runJob(ctx context.Context, w io.Writer, engine jobdelivery.Engine, locker jobdelivery.Locker,
	job string, params domain.RunParams, dryRun bool,
) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if dryRun {
		candidates, err := engine.Candidates(ctx, params)
		if err != nil {
			return err
		}

		return enc.Encode(candidates)
	}

	release, err := locker.Acquire(ctx, job)
	if err != nil {
		return err
	}
	defer release()

	result, err := engine.Run(ctx, params)
	if err != nil {
		return err
	}

	return enc.Encode(result)
}

type migrateCmd struct{}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "apply or roll back database migrations" }
func (*migrateCmd) Usage() string {
	return `migrate up|down|version

  up applies every pending migration, down rolls back the last one.
`
}
func (*migrateCmd) SetFlags(*flag.FlagSet) {}

func (*migrateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "migrate expects exactly one of up, down, version")
		return subcommands.ExitUsageError
	}

	config, logger, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	switch f.Arg(0) {
	case "up":
		err = dbpkg.RunMigrations(config.MigrationURL, config.MigrationsPath)
	case "down":
		err = dbpkg.RollbackMigrations(config.MigrationURL, config.MigrationsPath)
	case "version":
		var (
			version uint
			dirty   bool
		)

		version, dirty, err = dbpkg.MigrationVersion(config.MigrationURL, config.MigrationsPath)
		if err == nil {
			fmt.Printf("version %d dirty %t\n", version, dirty)
		}
	default:
		err = errors.New("unknown migrate direction " + f.Arg(0))
	}

	if err != nil {
		logger.Error().Err(err).Send()
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}

type hashPasswordCmd struct{}

func (*hashPasswordCmd) Name() string     { return "hash-password" }
func (*hashPasswordCmd) Synopsis() string { return "print the bcrypt hash for ADMIN_PASSWORD_HASH" }
func (*hashPasswordCmd) Usage() string {
	return `hash-password <password>
`
}
func (*hashPasswordCmd) SetFlags(*flag.FlagSet) {}

func (*hashPasswordCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "hash-password expects the password as its only argument")
		return subcommands.ExitUsageError
	}

	hash, err := passpkg.Hash(f.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	fmt.Println(hash)

	return subcommands.ExitSuccess
}
