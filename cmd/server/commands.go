package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/phrazzld/taskdesk/internal/config"
	"github.com/phrazzld/taskdesk/internal/domain"
	"github.com/phrazzld/taskdesk/internal/platform/logger"
	"github.com/phrazzld/taskdesk/internal/platform/migrations"
	"github.com/phrazzld/taskdesk/internal/service"
	"github.com/phrazzld/taskdesk/internal/service/auth"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

// rootOptions holds the flags shared by every command.
type rootOptions struct {
	configPath string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "taskdesk",
		Short:         "Task management API for small teams",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"config file (YAML, TOML or JSON); TASKDESK_* environment variables take precedence")

	cmd.AddCommand(
		newServeCommand(opts),
		newMigrateCommand(opts),
		newUserCommand(opts),
		newSeedCommand(opts),
	)
	return cmd
}

// loadConfig loads the configuration and builds a logger writing to the
// command's stderr.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	log, err := logger.SetupWithWriter(cfg.Server, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}
	return cfg, log, nil
}

// withDatabase loads the configuration, opens the database and runs fn,
// closing the database afterwards.
func (o *rootOptions) withDatabase(
	cmd *cobra.Command,
	fn func(cfg *config.Config, log *slog.Logger, db *database) error,
) error {
	cfg, log, err := o.loadConfig(cmd)
	if err != nil {
		return err
	}
	db, err := openDatabase(cmd.Context(), cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.close(); err != nil {
			log.Error("failed to close database", slog.String("error", err.Error()))
		}
	}()
	return fn(cfg, log, db)
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the deadline reminder sweeper",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withDatabase(cmd, func(cfg *config.Config, log *slog.Logger, db *database) error {
				ctx := cmd.Context()
				if migrate {
					if err := db.migrate(ctx, log); err != nil {
						return err
					}
				}
				app, err := newApplication(cfg, log, db)
				if err != nil {
					return err
				}
				return app.Run(ctx)
			})
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving")
	return cmd
}

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	withRunner := func(run func(cmd *cobra.Command, r *migrations.Runner) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			return opts.withDatabase(cmd, func(cfg *config.Config, log *slog.Logger, db *database) error {
				r, err := migrations.NewRunner(db.sql, cfg.Database.Driver, log)
				if err != nil {
					return err
				}
				return run(cmd, r)
			})
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			RunE: withRunner(func(cmd *cobra.Command, r *migrations.Runner) error {
				return r.Up(cmd.Context())
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			RunE: withRunner(func(cmd *cobra.Command, r *migrations.Runner) error {
				return r.Down(cmd.Context())
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "List migrations and whether they are applied",
			RunE: withRunner(func(cmd *cobra.Command, r *migrations.Runner) error {
				statuses, err := r.Status(cmd.Context())
				if err != nil {
					return err
				}
				return printMigrationStatus(cmd.OutOrStdout(), statuses)
			}),
		},
	)
	return cmd
}

func printMigrationStatus(out io.Writer, statuses []migrations.Status) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tSTATE\tFILE")
	for _, s := range statuses {
		state := "pending"
		if s.Applied {
			state = "applied"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", s.Version, state, s.Path)
	}
	return tw.Flush()
}

func newUserCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(newUserCreateCommand(opts), newHashPasswordCommand())
	return cmd
}

func newUserCreateCommand(opts *rootOptions) *cobra.Command {
	var in service.NewUserInput

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withDatabase(cmd, func(cfg *config.Config, log *slog.Logger, db *database) error {
				users, err := service.NewUserService(db.users, db.sql, auth.NewBcryptHasher(cfg.Auth.BCryptCost), log)
				if err != nil {
					return err
				}
				u, err := users.CreateUser(cmd.Context(), in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s %s (%s)\n", u.Role, u.Email, u.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "email address used to sign in")
	cmd.Flags().StringVar(&in.Name, "name", "", "display name")
	cmd.Flags().StringVar(&in.Role, "role", "TEAM_MEMBER", "ADMIN or TEAM_MEMBER")
	cmd.Flags().StringVar(&in.Password, "password", "", "initial password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

// newHashPasswordCommand prints a bcrypt hash for provisioning accounts by
// hand. The password is read from stdin when not given as an argument.
func newHashPasswordCommand() *cobra.Command {
	var cost int

	cmd := &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print the bcrypt hash of a password",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var password string
			if len(args) == 1 {
				password = args[0]
			} else {
				raw, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), 1024))
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
				password = strings.TrimRight(string(raw), "\r\n")
			}
			if err := domain.ValidatePassword(password); err != nil {
				return err
			}

			hash, err := auth.NewBcryptHasher(cost).Hash(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().IntVar(&cost, "cost", bcrypt.DefaultCost, "bcrypt cost")
	return cmd
}

func newSeedCommand(opts *rootOptions) *cobra.Command {
	var (
		file         string
		skipExisting bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the users listed in a YAML file",
		Long: `Seed creates every user in the file in one transaction. Either all
users are created or none are; --skip-existing ignores emails that are
already registered instead of failing.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			inputs, err := readSeedFile(file)
			if err != nil {
				return err
			}
			return opts.withDatabase(cmd, func(cfg *config.Config, log *slog.Logger, db *database) error {
				users, err := service.NewUserService(db.users, db.sql, auth.NewBcryptHasher(cfg.Auth.BCryptCost), log)
				if err != nil {
					return err
				}
				created, err := users.CreateUsers(cmd.Context(), inputs, skipExisting)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %d of %d users\n", len(created), len(inputs))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "users.yaml", "seed file")
	cmd.Flags().BoolVar(&skipExisting, "skip-existing", false, "skip users whose email is already registered")
	return cmd
}
