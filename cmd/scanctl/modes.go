package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scanout/scanout/kms"
)

func init() {
	rootCmd.AddCommand(modesCmd)
}

var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: `list display modes`,
	Long:  `list the modes of every connected connector, preferred ones marked`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		run(modesFunc(cmd, args))
	},
}

func modesFunc(cmd *cobra.Command, args []string) func() error {
	return func() error {
		c, err := kms.Open(device)
		if err != nil {
			return err
		}
		defer c.Close()
		res, err := c.Resources()
		if err != nil {
			return err
		}
		for _, id := range res.Connectors {
			conn, err := c.Connector(id)
			if err != nil {
				return err
			}
			if conn.Connection != kms.Connected {
				continue
			}
			fmt.Printf("connector %d:\n", conn.ID)
			for _, m := range conn.Modes {
				mark := ' '
				if m.Preferred() {
					mark = '*'
				}
				fmt.Printf("%c %dx%d@%d %q\n", mark, m.HDisplay, m.VDisplay, m.VRefresh, m.Name())
			}
		}
		return nil
	}
}
