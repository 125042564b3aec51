// Package discovery walks an espanso match directory and summarizes the
// snippet files it contains. A file that fails to parse is reported, not
// fatal: the rest of the directory still loads.
package discovery

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ezmatch/ezmatch/pkg/errors"
	"github.com/ezmatch/ezmatch/pkg/logging"
	"github.com/ezmatch/ezmatch/pkg/matches"
	"github.com/ezmatch/ezmatch/pkg/yamldoc"
)

// Names with special handling during the walk.
const (
	// scratchDirName is the editor scratch folder; never a match source.
	scratchDirName = "temp-ez"

	// packageFileName gets its display name from the parent directory,
	// since every espanso package ships a file by this name.
	packageFileName = "package.yml"
)

// skippedFiles are espanso package bookkeeping, not match sources.
var skippedFiles = map[string]bool{
	"_manifest.yml":  true,
	"_pkgsource.yml": true,
}

// File summarizes one discovered snippet file.
type File struct {
	Path        string
	DisplayName string

	// Entries and Complex count the file's matches; zero when Err is set.
	Entries int
	Complex int

	// Err records a per-file load failure.
	Err error
}

// Scan walks dir for snippet files and summarizes each. The returned slice
// is sorted by display name. benignFields feeds the classifier used for
// the complex counts.
func Scan(dir string, benignFields []string) ([]File, error) {
	logger := logging.GetLogger("discovery")

	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, errors.Newf(errors.ErrDirNotFound, "match directory %s not found", dir)
	}

	classifier := matches.NewClassifier(benignFields)
	var files []File

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == scratchDirName {
				return filepath.SkipDir
			}
			return nil
		}
		name := d.Name()
		if skippedFiles[name] {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".yml" && ext != ".yaml" {
			return nil
		}

		files = append(files, summarize(path, name, classifier))
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileRead, "failed to walk %s", dir)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].DisplayName < files[j].DisplayName })

	logger.Debug().Str("dir", dir).Int("files", len(files)).Msg("scan complete")
	return files, nil
}

func summarize(path, name string, classifier *matches.Classifier) File {
	f := File{Path: path, DisplayName: displayName(path, name)}

	raw, err := os.ReadFile(path)
	if err != nil {
		f.Err = errors.Wrapf(err, errors.ErrFileRead, "failed to read %s", path)
		return f
	}
	doc, err := yamldoc.Load(raw)
	if err != nil {
		f.Err = err
		return f
	}
	store, err := matches.BuildStore(doc, classifier)
	if err != nil {
		f.Err = err
		return f
	}

	f.Entries = store.Len()
	for _, e := range store.List() {
		if e.IsComplex() {
			f.Complex++
		}
	}
	return f
}

func displayName(path, name string) string {
	if name == packageFileName {
		return filepath.Base(filepath.Dir(path))
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}
