// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"fmt"
	"os"

	"github.com/tcovert2015/vlfront/pkg/ast/printer"
	"github.com/tcovert2015/vlfront/pkg/elaborate"
	"github.com/tcovert2015/vlfront/pkg/netlist"
	"github.com/tcovert2015/vlfront/pkg/parser"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var elaborateCmd = &cobra.Command{
	Use:   "elaborate [flags] source.v",
	Short: "elaborate a Verilog source file into a flattened netlist summary.",
	Run: func(cmd *cobra.Command, args []string) {
		source, filename := readSource(args)

		sf, err := parser.Parse(source, filename)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		if GetFlag(cmd, "verbose") {
			fmt.Println(printer.Print(sf))
		}

		cfg := elaborate.Config{
			Top:                  GetString(cmd, "top"),
			AllowUndrivenOutputs: GetFlag(cmd, "lenient"),
		}

		nl, warnings, err := elaborate.Elaborate(sf, cfg)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		for _, w := range warnings.Items() {
			log.WithFields(log.Fields{"entity": w.Entity, "kind": w.Kind.String()}).Warn(w.Message)
		}

		printNetlistSummary(nl)
	},
}

func printNetlistSummary(nl *netlist.Netlist) {
	width := 80
	if w, _, err := term.GetSize(0); err == nil && w > 0 {
		width = w
	}

	fmt.Printf("module %s\n", nl.Name)
	fmt.Printf("%s\n", repeat("-", min(width, 60)))

	for _, c := range nl.CellsInOrder() {
		fmt.Printf("  %-12s %s\n", c.Op.String(), c.Name)
	}

	fmt.Printf("%s\n", repeat("-", min(width, 60)))
	fmt.Printf("%d cells, %d nets\n", len(nl.Cells), len(nl.Nets))
}

func repeat(s string, n int) string {
	out := make([]byte, 0, n*len(s))
	for i := 0; i < n; i++ {
		out = append(out, s...)
	}

	return string(out)
}

func min(a, b int) int {
	if a < b {
		return a
	}

	return b
}

func init() {
	rootCmd.AddCommand(elaborateCmd)
	elaborateCmd.Flags().Bool("lenient", false, "set Config.AllowUndrivenOutputs (no elaboration check reads it)")
}
