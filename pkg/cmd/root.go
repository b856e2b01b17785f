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

// Package cmd implements the vlfront command-line interface: a cobra
// command tree with one verb per pipeline stage, grounded on the teacher's
// pkg/cmd/root.go and pkg/cmd/compile.go.
package cmd

import (
	"fmt"
	"os"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is filled in by the release build via -ldflags, left empty for
// "go run"/"go install" builds, matching the teacher's rootCmd.Run.
var Version string

var rootCmd = &cobra.Command{
	Use:   "vlfront",
	Short: "A Verilog-2005 synthesizable-subset compiler front end.",
	Long:  "Lexes, parses, and elaborates a synthesizable Verilog-2005 subset into a flattened gate-level netlist.",
	Run: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "version") {
			fmt.Print("vlfront ")

			if Version != "" {
				fmt.Print(Version)
			} else if info, ok := debug.ReadBuildInfo(); ok {
				fmt.Print(info.Main.Version)
			} else {
				fmt.Print("(unknown version)")
			}

			fmt.Println()
		}
	},
}

// Execute runs the command tree, exiting with status 1 on any returned
// error, matching the teacher's rootCmd.Execute -> os.Exit(1) pattern.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:errcheck
func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose/debug logging and AST dumps")
	rootCmd.PersistentFlags().String("top", "", "name of the top module (defaults to the last module declared)")
	rootCmd.Flags().Bool("version", false, "print version information")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}
	}
}
