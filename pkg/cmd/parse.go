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

	"github.com/tcovert2015/vlfront/pkg/ast/astjson"
	"github.com/tcovert2015/vlfront/pkg/ast/printer"
	"github.com/tcovert2015/vlfront/pkg/parser"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse [flags] source.v",
	Short: "parse a Verilog source file and dump its AST.",
	Run: func(cmd *cobra.Command, args []string) {
		source, filename := readSource(args)

		sf, err := parser.Parse(source, filename)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		log.WithFields(log.Fields{"file": filename, "modules": len(sf.Modules)}).Debug("parsed source file")

		if GetFlag(cmd, "verbose") {
			fmt.Println(printer.Print(sf))
		}

		data, err := astjson.Marshal(sf)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		fmt.Println(string(data))
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
}
