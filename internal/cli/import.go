package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jsantoro/mealbank/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load an export dump from stdin",
		Long:  "Read a JSON dump produced by `mealbank export` from stdin and write it into the database. Rows with matching keys are overwritten.",
		Run:   runImport,
	}
	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		exitErr("read stdin", err)
	}
	var backup store.Backup
	if err := json.Unmarshal(data, &backup); err != nil {
		exitErr("parse dump", err)
	}

	p, err := loadProfile()
	if err != nil {
		exitErr("load profile (run `mealbank setup` first)", err)
	}
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	n, err := s.Import(cmd.Context(), p.UserID, &backup)
	if err != nil {
		exitErr("import", err)
	}
	fmt.Printf("{\"ok\": true, \"records\": %d}\n", n)
}
