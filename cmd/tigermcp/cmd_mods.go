package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var modsCmd = &cobra.Command{
	Use:   "mods",
	Short: "List available mods under the mods base",
	RunE:  runMods,
}

func runMods(cmd *cobra.Command, _ []string) error {
	inv, err := newInvoker()
	if err != nil {
		return err
	}
	mods, err := inv.ListMods()
	if err != nil {
		return err
	}
	for _, mod := range mods {
		fmt.Println(mod)
	}
	return nil
}
