package sync

// Action tags counted in SyncResult.ActionCounters.
const (
	ActionCopied    = "copied"
	ActionUpdated   = "updated"
	ActionUnchanged = "unchanged"
	ActionDeleted   = "deleted"
)

// DirectoryResult describes one synchronized directory pair.
type DirectoryResult struct {
	InputDirectory  string
	OutputDirectory string
	Copied          int
	Updated         int
	Unchanged       int
	Deleted         int
	BytesWritten    int64
}

// ChangedFileCount is the number of files written or deleted in the pair.
func (r DirectoryResult) ChangedFileCount() int {
	return r.Copied + r.Updated + r.Deleted
}

// SyncResult aggregates a whole run. A directory pair that is reachable at
// both levels of the walk is synchronized, and listed, once per visit.
type SyncResult struct {
	DirectoryCount   int
	ChangedFileCount int
	BytesWritten     int64
	ActionCounters   map[string]int
	Directories      []DirectoryResult
}

func newSyncResult() SyncResult {
	return SyncResult{
		ActionCounters: map[string]int{
			ActionCopied:    0,
			ActionUpdated:   0,
			ActionUnchanged: 0,
			ActionDeleted:   0,
		},
	}
}

func (r *SyncResult) add(directory DirectoryResult) {
	r.DirectoryCount++
	r.ChangedFileCount += directory.ChangedFileCount()
	r.BytesWritten += directory.BytesWritten
	r.ActionCounters[ActionCopied] += directory.Copied
	r.ActionCounters[ActionUpdated] += directory.Updated
	r.ActionCounters[ActionUnchanged] += directory.Unchanged
	r.ActionCounters[ActionDeleted] += directory.Deleted
	r.Directories = append(r.Directories, directory)
}
