package multi

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/ozontech/typedhttp/report/noop"
	"github.com/ozontech/typedhttp/report/phout"
)

func TestMultiFanOut(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	first, second := new(bytes.Buffer), new(bytes.Buffer)
	m := New(phout.New(first, time.Hour), phout.New(second, time.Hour), noop.New())

	g := new(errgroup.Group)
	g.Go(m.Run)

	for _, tag := range []string{"a", "b"} {
		s := m.Acquire(tag)
		s.SetSize(10)
		s.Connected()
		s.OnStatus(201)
		s.SetResponseSize(5)
		s.End()
	}

	require.NoError(t, m.Close())
	require.NoError(t, g.Wait())

	for _, out := range []*bytes.Buffer{first, second} {
		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 2)
		for i, line := range lines {
			fields := strings.Split(line, "\t")
			require.Len(t, fields, 12)
			a.Equal([]string{"a", "b"}[i], fields[1])
			a.Equal("10", fields[8])
			a.Equal("5", fields[9])
			a.Equal("201", fields[11])
		}
	}
}
