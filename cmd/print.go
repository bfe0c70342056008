// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/xataio/recordhub/internal/json"
)

const trueStr = "true"

type printer interface {
	PrettyPrint() string
}

// print writes v to stdout, as indented JSON when the command json flag is
// set. Values that aren't printers are always written as JSON.
func print(cmd *cobra.Command, v any) error {
	p, isPrinter := v.(printer)
	if jsonFlag := cmd.Flags().Lookup("json"); isPrinter && (jsonFlag == nil || jsonFlag.Value.String() != trueStr) {
		fmt.Println(p.PrettyPrint()) //nolint:forbidigo
		return nil
	}

	jsonData, err := json.MarshalIndent(v)
	if err != nil {
		return err
	}
	fmt.Println(string(jsonData)) //nolint:forbidigo
	return nil
}

// renderTable renders the rows with the first one as header.
func renderTable(rows [][]string) string {
	out, err := pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData(rows)).Srender()
	if err != nil {
		return fmt.Sprint(rows)
	}
	return out
}
