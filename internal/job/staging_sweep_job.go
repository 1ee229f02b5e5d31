package job

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// StagingSweepJob removes staged upload files left behind by interrupted
// requests. Fresh files still being processed are kept.
type StagingSweepJob struct {
	dir    string
	prefix string
	maxAge time.Duration
}

// NewStagingSweepJob sweeps files under dir whose name carries prefix. The
// prefix guard matters when the staging dir is a shared temp dir.
func NewStagingSweepJob(dir, prefix string, maxAge time.Duration) *StagingSweepJob {
	return &StagingSweepJob{dir: dir, prefix: prefix, maxAge: maxAge}
}

func (j *StagingSweepJob) Name() string {
	return "staging_sweep"
}

func (j *StagingSweepJob) Run(ctx context.Context) error {
	if j.dir == "" {
		return nil
	}
	maxAge := j.maxAge
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	cutoff := time.Now().Add(-maxAge)

	entries, err := os.ReadDir(j.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), j.prefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(j.dir, entry.Name())); err != nil {
			logutil.GetLogger(ctx).Warn("remove staged file failed",
				zap.String("name", entry.Name()), zap.Error(err))
			continue
		}
		removed++
	}
	if removed > 0 {
		logutil.GetLogger(ctx).Info("staging sweep done", zap.Int("removed", removed))
	}
	return nil
}
