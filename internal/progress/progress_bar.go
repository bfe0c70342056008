// SPDX-License-Identifier: Apache-2.0

package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Bar tracks the number of items processed.
type Bar interface {
	Add(int) error
	Close() error
}

type ProgressBar struct {
	*progressbar.ProgressBar
}

const barWidth = 20

// NewRecordsBar renders the count of records processed out of total on
// stderr, leaving stdout to the command output.
func NewRecordsBar(total int, description string) *ProgressBar {
	return newRecordsBar(os.Stderr, total, description)
}

func newRecordsBar(out io.Writer, total int, description string) *ProgressBar {
	return &ProgressBar{
		ProgressBar: progressbar.NewOptions(total,
			progressbar.OptionSetWriter(out),
			progressbar.OptionSetDescription(description),
			progressbar.OptionSetWidth(barWidth),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("records"),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetRenderBlankState(true),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintln(out)
			}),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[cyan]#[reset]",
				SaucerHead:    "[cyan]>[reset]",
				SaucerPadding: ".",
				BarStart:      "|",
				BarEnd:        "|",
			})),
	}
}
