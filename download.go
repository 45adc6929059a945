package edureport

import (
	"context"
	"fmt"
	"time"

	"github.com/alnah/go-edureport/internal/dateutil"
	"github.com/alnah/go-edureport/internal/fileutil"
)

// artifactPrefix and artifactExt frame the artifact file name.
const (
	artifactPrefix = "Educational_Recommendations_"
	artifactExt    = ".pdf"
)

// ArtifactName returns the file name of a report exported at t:
// Educational_Recommendations_<YYYY-MM-DD>.pdf, using the UTC calendar date.
func ArtifactName(t time.Time) string {
	return artifactPrefix + dateutil.ArtifactDate(t) + artifactExt
}

// Downloader delivers a finished artifact to the user.
type Downloader interface {
	// Save stores data under filename and returns where it ended up.
	Save(ctx context.Context, filename string, data []byte) (string, error)
}

// DirDownloader saves artifacts into a directory, replacing any earlier
// artifact with the same name.
type DirDownloader struct {
	Dir string
}

var _ Downloader = DirDownloader{}

// Save implements Downloader.
func (d DirDownloader) Save(ctx context.Context, filename string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path, err := fileutil.WriteFileAtomic(d.Dir, filename, data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownload, err)
	}
	return path, nil
}
