// Copyright (C) 2025-2026 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dbconfig",
	Short: "Read typed configuration entries",
	Long: `Read typed configuration entries from the config_items table through
the same read-through cache the services use.`,
	SilenceUsage: true,
}

var (
	outputFormat       string
	skipMigrationCheck bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", formatJSON, "Output format (json or yaml)")
	rootCmd.PersistentFlags().BoolVar(&skipMigrationCheck, "skip-migration-check", false, "Do not verify the configdb schema version")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
