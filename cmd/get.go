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
	"github.com/cardinalhq/dbconfig/internal/itemcodec"
)

var getCentral bool

var getCmd = &cobra.Command{
	Use:   "get KEY [KEY...]",
	Short: "Print decoded values for one or more keys",
	Long: `Print decoded values as a key to value mapping. Keys without a live
entry map to null.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		return withService(c, func(ctx context.Context, svc *configservice.Service) error {
			values, err := getValues(ctx, svc, args, getCentral)
			if err != nil {
				return err
			}
			return writeOutput(c.OutOrStdout(), outputFormat, values)
		})
	},
}

func init() {
	getCmd.Flags().BoolVar(&getCentral, "central", false, "Resolve in the central tenant context")
	rootCmd.AddCommand(getCmd)
}

func getValues(ctx context.Context, svc *configservice.Service, keys []string, central bool) (map[string]*itemcodec.Value, error) {
	if len(keys) == 1 {
		get := svc.GetByKey
		if central {
			get = svc.GetByKeyCentral
		}
		v, err := get(ctx, keys[0])
		if err != nil {
			return nil, err
		}
		return map[string]*itemcodec.Value{keys[0]: v}, nil
	}

	if central {
		return svc.GetByKeysCentral(ctx, keys)
	}
	return svc.GetByKeys(ctx, keys)
}
