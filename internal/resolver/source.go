package resolver

import (
	"context"

	"github.com/cbout22/git-file/internal/config"
)

// FetchRequest asks for one remote file to be written to a local path.
type FetchRequest struct {
	Ref         config.FileRef
	Destination string
}

// SourceRepository fetches single files from remote repositories.
type SourceRepository interface {
	// Fetch writes the file named by req.Ref to req.Destination and returns
	// the full commit hash the content was taken from.
	Fetch(ctx context.Context, req FetchRequest) (string, error)
}
