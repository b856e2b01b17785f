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
package elaborate

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tcovert2015/vlfront/pkg/netlist"
	"github.com/tcovert2015/vlfront/pkg/parser"
)

func TestElaborateGinkgoSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "elaborate spec suite")
}

var _ = Describe("Elaborate", func() {
	elaborate := func(src string, cfg Config) (*netlist.Netlist, error) {
		sf, err := parser.Parse(src, "ginkgo.v")
		if err != nil {
			return nil, err
		}

		nl, _, err := Elaborate(sf, cfg)

		return nl, err
	}

	Context("given a single AND gate module", func() {
		It("flattens to exactly one AND cell driving the output", func() {
			nl, err := elaborate(`module m(input a,b,output c); assign c=a&b; endmodule`, Config{})
			Expect(err).NotTo(HaveOccurred())

			count := 0
			for _, c := range nl.Cells {
				if c.Op == netlist.OpAnd {
					count++
				}
			}

			Expect(count).To(Equal(1))
		})
	})

	Context("given a combinational feedback loop", func() {
		It("is rejected with an elaboration error rather than hanging", func() {
			src := `
module m(input a, output o);
  wire x, y;
  assign x = y & a;
  assign y = x | a;
  assign o = y;
endmodule`
			_, err := elaborate(src, Config{})
			Expect(err).To(HaveOccurred())
		})
	})

	Context("given a module with an explicit top override", func() {
		It("elaborates the named module instead of the last one declared", func() {
			src := `
module first(input a, output b); assign b = a; endmodule
module second(input a, output b); assign b = ~a; endmodule`
			nl, err := elaborate(src, Config{Top: "first"})
			Expect(err).NotTo(HaveOccurred())
			Expect(nl.Name).To(Equal("first"))
		})
	})
})
