package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Dump all ledger data as JSON to stdout",
		Run:   runExport,
	}
	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	p, err := loadProfile()
	if err != nil {
		exitErr("load profile (run `mealbank setup` first)", err)
	}
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	backup, err := s.Export(cmd.Context(), p.UserID)
	if err != nil {
		exitErr("export", err)
	}
	b, _ := json.MarshalIndent(backup, "", "  ")
	fmt.Println(string(b))
}
