package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	sqliteadapter "github.com/ericfisherdev/codesuggest/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/codesuggest/internal/config"
)

func newMigrateCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database schema migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(root.configFile)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			db, err := sqliteadapter.NewDB(cmd.Context(), cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			v, err := sqliteadapter.RunMigrations(db.Writer)
			if err != nil {
				return err
			}

			st := newStyles(colorEnabled(cmd.OutOrStdout(), root.noColor))
			state := "already up to date"
			if v.Applied {
				state = "migrated"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n",
				st.header.Render(cfg.DBPath),
				st.success.Render(state),
				st.muted.Render(fmt.Sprintf("(schema version %d)", v.Version)),
			)
			return nil
		},
	}
}
