// Package cli implements the mealbank CLI commands.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jsantoro/mealbank/internal/ledger"
	"github.com/jsantoro/mealbank/internal/notify"
	"github.com/jsantoro/mealbank/internal/profile"
	"github.com/jsantoro/mealbank/internal/store"
)

var (
	dbPath     string
	formatFlag string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "mealbank",
	Short: "Meal, water and weight tracking with a weekly calorie bank",
	Long: "Log meals, water and weight against daily goals. Unused calories from " +
		"successful days go into a weekly bank that covers later overshoots; streaks " +
		"and missed days are reconciled on every sync.",
}

func init() {
	godotenv.Load()
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $MEALBANK_DB or ~/.mealbank/mealbank.db)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if env := os.Getenv("MEALBANK_DB"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".mealbank", "mealbank.db")
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(getDBPath())
}

func loadProfile() (*profile.Profile, error) {
	return profile.Load(profile.DefaultPath(getDBPath()))
}

// openEngine opens the store and a loaded engine for the configured user.
// Exits with a message when setup has not been run.
func openEngine(cmd *cobra.Command) (*ledger.Engine, *store.SQLiteStore) {
	p, err := loadProfile()
	if err != nil {
		exitErr("load profile (run `mealbank setup` first)", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}

	e := ledger.New(s, &notify.Writer{W: os.Stderr}, p.UserID)
	if err := e.Load(cmd.Context()); err != nil {
		s.Close()
		exitErr("load ledger", err)
	}
	return e, s
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
