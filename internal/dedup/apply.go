package dedup

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ivoronin/hashdog/internal/model"
	"github.com/ivoronin/hashdog/internal/progress"
)

// ApplyOptions configures the opt-in mutation mode. This is not part of the
// spec's C10 contract (read-only grouping); it supplements it with the
// hardlink/symlink replacement behavior a real dedup tool needs once a
// report has been reviewed.
type ApplyOptions struct {
	PathPriority    []string // preferred source paths, first prefix match wins
	DryRun          bool
	SymlinkFallback bool // fall back to a symlink when hardlinking crosses a device boundary
	Verbose         bool
	Sink            progress.Sink
}

// Action identifies what ApplyFile did to a target path.
type Action int

const (
	ActionHardlink Action = iota
	ActionSymlink
	ActionSkipped
)

func (a Action) String() string {
	switch a {
	case ActionHardlink:
		return "hardlink"
	case ActionSymlink:
		return "symlink"
	default:
		return "skipped"
	}
}

// ApplyResult describes the outcome of replacing one target with a link to
// a chosen source.
type ApplyResult struct {
	Source     string
	Target     string
	Action     Action
	BytesSaved int64
	Err        error
}

func (r *ApplyResult) String() string {
	if r.Err != nil {
		return fmt.Sprintf("skip %s: %v", r.Target, r.Err)
	}
	return fmt.Sprintf("%s -> %s (%s)", r.Target, r.Source, r.Action)
}

// ApplyStats summarizes a full Apply run.
type ApplyStats struct {
	TotalSets     int
	ProcessedSets int
	SavedBytes    int64
	StartTime     time.Time
}

func (s *ApplyStats) String() string {
	return fmt.Sprintf("deduplicated %d/%d sets, saved %s in %.1fs",
		s.ProcessedSets, s.TotalSets, humanize.IBytes(uint64(s.SavedBytes)), time.Since(s.StartTime).Seconds())
}

// Apply replaces all but one copy in every multi-path group with a link to
// a chosen source file, using statFileInfo to discover which paths are
// already hardlinked to each other (sibling groups) so that work already
// done by a previous Apply run is never redone.
func Apply(groups []Group, opts ApplyOptions) (ApplyStats, error) {
	stats := ApplyStats{StartTime: time.Now()}

	dupGroups := make([]model.DuplicateGroup, 0, len(groups))
	for _, g := range groups {
		dg, err := buildDuplicateGroup(g)
		if err != nil {
			return stats, err
		}
		if dg.Len() < 2 {
			continue
		}
		dupGroups = append(dupGroups, dg)
	}
	stats.TotalSets = len(dupGroups)

	if opts.Sink != nil {
		opts.Sink.Start(int64(stats.TotalSets))
	}

	for _, dupeGroup := range dupGroups {
		source := selectSource(dupeGroup, opts.PathPriority)

		for _, targetSiblings := range dupeGroup.Items() {
			if containsFile(targetSiblings, source) {
				continue
			}
			for _, target := range targetSiblings.Items() {
				result := applyFile(source, target, opts)
				if result.Err != nil {
					continue
				}
				stats.SavedBytes += result.BytesSaved
				if opts.Verbose {
					fmt.Println(result.String())
				}
			}
		}

		stats.ProcessedSets++
		if opts.Sink != nil {
			opts.Sink.Tick(int64(stats.ProcessedSets), stats.SavedBytes, "")
		}
	}

	if opts.Sink != nil {
		opts.Sink.Finish(&stats)
	}
	return stats, nil
}

// buildDuplicateGroup stats every path in g and clusters them by (dev, ino)
// into sibling groups, turning the flat digest-grouped path list dedup.Run
// produces into the sibling/duplicate-group shape Apply's selection logic
// needs.
func buildDuplicateGroup(g Group) (model.DuplicateGroup, error) {
	bySiblings := make(map[[2]uint64][]*model.FileInfo)
	var order [][2]uint64
	for _, path := range g.Paths {
		fi, err := statFileInfo(path)
		if err != nil {
			return model.DuplicateGroup{}, err
		}
		key := [2]uint64{fi.Dev, fi.Ino}
		if _, ok := bySiblings[key]; !ok {
			order = append(order, key)
		}
		bySiblings[key] = append(bySiblings[key], fi)
	}

	siblingGroups := make([]model.SiblingGroup, 0, len(order))
	for _, key := range order {
		siblingGroups = append(siblingGroups, model.NewSiblingGroup(bySiblings[key]))
	}
	return model.NewDuplicateGroup(siblingGroups), nil
}

// containsFile reports whether siblings already includes f (by inode).
func containsFile(siblings model.SiblingGroup, f *model.FileInfo) bool {
	for _, sib := range siblings.Items() {
		if sib.Dev == f.Dev && sib.Ino == f.Ino {
			return true
		}
	}
	return false
}

// selectSource chooses which file survives as the hardlink target's source:
// first a path-priority match searched across every sibling group, then
// whichever sibling group already carries the most hardlinks.
func selectSource(dupeGroup model.DuplicateGroup, pathPriority []string) *model.FileInfo {
	for _, prefix := range pathPriority {
		if f := firstWithPrefix(dupeGroup, prefix); f != nil {
			return f
		}
	}
	return mostLinkedRepresentative(dupeGroup)
}

// firstWithPrefix returns the first file (in sorted sibling-group order)
// whose path starts with prefix, searched across every sibling group so a
// priority match works even when the preferred path sits alongside other
// hardlinks.
func firstWithPrefix(dupeGroup model.DuplicateGroup, prefix string) *model.FileInfo {
	for _, siblings := range dupeGroup.Items() {
		for _, f := range siblings.Items() {
			if strings.HasPrefix(f.Path, prefix) {
				return f
			}
		}
	}
	return nil
}

// mostLinkedRepresentative returns the representative (all siblings in a
// group share nlink) of whichever sibling group already has the most
// existing hardlinks, so a new duplicate joins an established hardlink
// cluster rather than the reverse. Ties break on path for determinism.
func mostLinkedRepresentative(dupeGroup model.DuplicateGroup) *model.FileInfo {
	items := dupeGroup.Items()
	reps := make([]*model.FileInfo, len(items))
	for i, siblings := range items {
		reps[i] = siblings.First()
	}
	sort.Slice(reps, func(i, j int) bool {
		if reps[i].Nlink != reps[j].Nlink {
			return reps[i].Nlink > reps[j].Nlink
		}
		return reps[i].Path < reps[j].Path
	})
	return reps[0]
}

// applyFile replaces target with a link to source, after re-verifying
// target is still the file that was scanned (advisory lock plus mtime
// recheck) so a concurrent edit is never silently overwritten.
func applyFile(source, target *model.FileInfo, opts ApplyOptions) *ApplyResult {
	f, err := os.Open(target.Path)
	if err != nil {
		return &ApplyResult{Source: source.Path, Target: target.Path, Action: ActionSkipped, Err: err}
	}
	defer func() { _ = f.Close() }()

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		return &ApplyResult{
			Source: source.Path, Target: target.Path, Action: ActionSkipped,
			Err: errors.New("file in use (locked by another process)"),
		}
	}

	info, err := f.Stat()
	if err != nil {
		return &ApplyResult{Source: source.Path, Target: target.Path, Action: ActionSkipped, Err: err}
	}
	if !info.ModTime().Equal(target.ModTime) {
		return &ApplyResult{
			Source: source.Path, Target: target.Path, Action: ActionSkipped,
			Err: errors.New("file modified since scan"),
		}
	}

	if opts.DryRun {
		return &ApplyResult{Source: source.Path, Target: target.Path, Action: ActionHardlink, BytesSaved: target.Size}
	}

	return linkTarget(source, target, opts.SymlinkFallback)
}

// linkTarget replaces target with a hardlink to source, falling back to a
// relative symlink on a cross-device error (EXDEV) only when fallback is
// enabled. Any other link failure is reported as skipped.
func linkTarget(source, target *model.FileInfo, fallback bool) *ApplyResult {
	ok := func(action Action) *ApplyResult {
		return &ApplyResult{Source: source.Path, Target: target.Path, Action: action, BytesSaved: target.Size}
	}
	skip := func(err error) *ApplyResult {
		return &ApplyResult{Source: source.Path, Target: target.Path, Action: ActionSkipped, Err: err}
	}

	err := CreateHardlink(source.Path, target.Path)
	if err == nil {
		return ok(ActionHardlink)
	}
	if !errors.Is(err, syscall.EXDEV) {
		return skip(err)
	}
	if !fallback {
		return skip(errors.New("cannot hardlink across device boundaries (use --symlink-fallback)"))
	}
	if err := CreateSymlink(source.Path, target.Path); err != nil {
		return skip(err)
	}
	return ok(ActionSymlink)
}
