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
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cardinalhq/dbconfig/internal/configservice"
)

var describeCmd = &cobra.Command{
	Use:   "describe KEY",
	Short: "Show the stored row and decoded value for a key",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		return withService(c, func(ctx context.Context, svc *configservice.Service) error {
			d, err := svc.Describe(ctx, args[0])
			if err != nil {
				return err
			}
			if d == nil {
				return fmt.Errorf("config item %q not found", args[0])
			}
			return writeOutput(c.OutOrStdout(), outputFormat, d)
		})
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
}
