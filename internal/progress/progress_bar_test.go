// SPDX-License-Identifier: Apache-2.0

package progress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecordsBar(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	bar := newRecordsBar(buf, 10, "ingesting records")
	require.NoError(t, bar.Add(4))
	require.NoError(t, bar.Add(6))
	require.NoError(t, bar.Close())

	require.Contains(t, buf.String(), "ingesting records")
	require.Contains(t, buf.String(), "10/10")
}
