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

	"github.com/spf13/cobra"

	"github.com/cardinalhq/dbconfig/internal/configservice"
)

var listTag string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List entries sharing a tag",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		return withService(c, func(ctx context.Context, svc *configservice.Service) error {
			details, err := svc.ListByTag(ctx, listTag)
			if err != nil {
				return err
			}
			return writeOutput(c.OutOrStdout(), outputFormat, details)
		})
	},
}

func init() {
	listCmd.Flags().StringVar(&listTag, "tag", "", "Tag to list")
	_ = listCmd.MarkFlagRequired("tag")
	rootCmd.AddCommand(listCmd)
}
