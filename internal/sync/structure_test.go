package sync_test

import (
	"testing"

	syncpkg "github.com/MarkoPoloResearchLab/extsync/internal/sync"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func names(values ...string) syncpkg.NameSet {
	set := syncpkg.NameSet{}
	for _, value := range values {
		set[value] = struct{}{}
	}
	return set
}

func TestReconcileStructures(t *testing.T) {
	cases := []struct {
		name   string
		input  syncpkg.DirectoryStructure
		output syncpkg.DirectoryStructure
		want   syncpkg.CommonStructure
	}{
		{
			name:   "IntersectsNamesAtSharedPaths",
			input:  syncpkg.DirectoryStructure{"": names("docs", "src"), "docs": names("guides"), "src": names()},
			output: syncpkg.DirectoryStructure{"": names("docs", "assets"), "docs": names("guides", "drafts")},
			want:   syncpkg.CommonStructure{"": names("docs"), "docs": names("guides")},
		},
		{
			name:   "DropsEmptyIntersections",
			input:  syncpkg.DirectoryStructure{"": names("a"), "a": names("x")},
			output: syncpkg.DirectoryStructure{"": names("a"), "a": names("y")},
			want:   syncpkg.CommonStructure{"": names("a")},
		},
		{
			name:   "IgnoresPathsPresentOnOneSide",
			input:  syncpkg.DirectoryStructure{"": names("only-in")},
			output: syncpkg.DirectoryStructure{"other": names("only-in")},
			want:   syncpkg.CommonStructure{},
		},
		{
			name:   "EmptyTrees",
			input:  syncpkg.DirectoryStructure{"": names()},
			output: syncpkg.DirectoryStructure{"": names()},
			want:   syncpkg.CommonStructure{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := syncpkg.ReconcileStructures(tc.input, tc.output)
			require.Equal(t, tc.want, got)
			for relativePath, set := range got {
				require.NotEmpty(t, set, "empty set kept for %q", relativePath)
			}
		})
	}
}

func TestReconcileStructuresIsSymmetric(t *testing.T) {
	left := syncpkg.DirectoryStructure{"": names("a", "b"), "a": names("c", "d"), "b": names("e")}
	right := syncpkg.DirectoryStructure{"": names("b", "a", "z"), "a": names("d"), "b": names("f")}

	require.Equal(t, syncpkg.ReconcileStructures(left, right), syncpkg.ReconcileStructures(right, left))
}

func TestNameSetSorted(t *testing.T) {
	require.Equal(t, []string{"alpha", "beta", "gamma"}, names("gamma", "alpha", "beta").Sorted())
	require.Empty(t, syncpkg.NameSet(nil).Sorted())
}

func TestCommonStructureLogsRootAsDot(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	common := syncpkg.CommonStructure{"": names("docs"), "docs": names("b", "a")}
	logger.Info("found common directory structure", zap.Object("common", common))

	entries := logs.FilterMessage("found common directory structure").All()
	require.Len(t, entries, 1)
	logged, ok := entries[0].ContextMap()["common"].(map[string]interface{})
	require.True(t, ok, "unexpected field type %T", entries[0].ContextMap()["common"])
	require.Equal(t, []interface{}{"docs"}, logged["."])
	require.Equal(t, []interface{}{"a", "b"}, logged["docs"])
}
