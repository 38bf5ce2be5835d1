package samples

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc-language/core-builder/internal/logging"
	"github.com/arc-language/core-builder/internal/session"
	"github.com/arc-language/core-builder/ir"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestSamplesGolden(t *testing.T) {
	g := newGoldie(t)
	for _, s := range All() {
		t.Run(s.Name, func(t *testing.T) {
			sess, err := s.Run(logging.Discard())
			require.NoError(t, err)
			g.Assert(t, s.Name, []byte(sess.Module.String()))
		})
	}
}

func TestSamplesVerify(t *testing.T) {
	for _, s := range All() {
		t.Run(s.Name, func(t *testing.T) {
			sess, err := s.Run(logging.Discard())
			require.NoError(t, err)
			assert.True(t, sess.Verify(), sess.Diagnostics.Diagnostics())
			assert.False(t, sess.Diagnostics.HasErrors())
			assert.Zero(t, sess.Diagnostics.WarningCount())
		})
	}
}

func TestNamesSortedAndComplete(t *testing.T) {
	names := Names()
	assert.IsIncreasing(t, names)
	for _, want := range []string{
		"simple_return", "add", "float_to_int", "max", "sum_loop",
		"fibonacci", "classify", "point", "dispatch", "lanes", "pair",
	} {
		_, ok := Lookup(want)
		assert.True(t, ok, want)
	}
	_, ok := Lookup("missing")
	assert.False(t, ok)
}

func TestRunReleasesBuilder(t *testing.T) {
	s, _ := Lookup("add")
	sess, err := s.Run(nil)
	require.NoError(t, err)
	assert.True(t, sess.Builder.IsDisposed())
	_, err = sess.Builder.CreateRetVoid()
	assert.Error(t, err)
}

func TestClassifySwitchGrowsPastHint(t *testing.T) {
	s, _ := Lookup("classify")
	sess, err := s.Run(nil)
	require.NoError(t, err)

	fn, ok := sess.Module.Function("classify")
	require.True(t, ok)
	entry, ok := fn.EntryBlock()
	require.True(t, ok)
	term, ok := entry.Terminator()
	require.True(t, ok)
	sw, ok := term.AsSwitch()
	require.True(t, ok)
	assert.Equal(t, 3, sw.NumCases())
	assert.Len(t, entry.Successors(), 3, "successors are distinct")
}

func TestSumLoopFlags(t *testing.T) {
	s, _ := Lookup("sum_loop")
	sess, err := s.Run(nil)
	require.NoError(t, err)

	fn, _ := sess.Module.Function("sum")
	wraps := map[string]ir.WrapSemantics{}
	for bb := range fn.Blocks() {
		for inst := range bb.Instructions() {
			if bin, ok := inst.AsBinary(); ok {
				wraps[inst.Name()] = bin.Wrap()
			}
		}
	}
	assert.Equal(t, map[string]ir.WrapSemantics{
		"acc.next": ir.WrapUnspecified,
		"i.next":   ir.NoUnsignedWrap,
	}, wraps)
}

func TestRunWrapsBuildError(t *testing.T) {
	broken := Sample{Name: "broken", Build: func(s *session.Session) error {
		_, err := s.Builder.CreateRetVoid()
		return err
	}}
	_, err := broken.Run(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sample broken:")
}
