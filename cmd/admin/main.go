package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"academic-portal/core"
)

var readPasswordFunc = term.ReadPassword // mockable

// commandLine holds what the admin commands need; the database hooks are swapped in tests.
type commandLine struct {
	cfg     core.Config
	out     io.Writer
	users   func(ctx context.Context) (core.UserRepository, func(), error)
	migrate func(ctx context.Context) error
}

func main() {
	cfg, err := core.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cli := &commandLine{
		cfg: cfg,
		out: os.Stdout,
		users: func(ctx context.Context) (core.UserRepository, func(), error) {
			db, err := core.Connect(ctx, cfg.DatabaseURL)
			if err != nil {
				return nil, nil, err
			}
			return core.NewPgUserRepository(db), db.Close, nil
		},
		migrate: func(ctx context.Context) error {
			db, err := core.Connect(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close()
			return core.ApplySchema(ctx, db)
		},
	}
	if err := newRootCmd(cli).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cli *commandLine) *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Administrative tasks for the academic portal",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.SetOut(cli.out)

	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cli.migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema applied")
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "adduser <login>",
		Short: "Create a staff login or reset its password",
		Long:  "Creates the login, or replaces its password when it already exists. The password is prompted on the terminal.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			login := strings.TrimSpace(args[0])
			if login == "" {
				return errors.New("login must not be empty")
			}
			password, err := promptPassword(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			digest, err := core.PasswordDigest(cli.cfg.PasswordScheme, password)
			if err != nil {
				return err
			}
			repo, closeFn, err := cli.users(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			id, err := repo.Upsert(cmd.Context(), login, digest)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user %q saved (id %d)\n", login, id)
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "digest",
		Short: "Print the stored digest for a password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := promptPassword(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			digest, err := core.PasswordDigest(cli.cfg.PasswordScheme, password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), digest)
			return nil
		},
	})

	return root
}

func promptPassword(out io.Writer) (string, error) {
	fmt.Fprint(out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(out)
	if err != nil {
		return "", errors.Wrap(err, "read password")
	}
	if len(pwd) == 0 {
		return "", errors.New("password must not be empty")
	}
	return string(pwd), nil
}
