package manager

import (
	"net/url"
	"os"
	"strings"

	"servecore/internal/common/fsutil"
)

// ArtifactReport describes whether a catalog model's artifact is reachable
// without loading it.
type ArtifactReport struct {
	Name      string `json:"name"`
	Path      string `json:"path,omitempty"`
	Available bool   `json:"available"`
	// StandIn is true when a load would synthesize a stand-in.
	StandIn bool   `json:"stand_in"`
	Error   string `json:"error,omitempty"`
}

// SanityReport summarizes artifact availability for the whole catalog.
type SanityReport struct {
	Models    []ArtifactReport `json:"models"`
	Available int              `json:"available"`
	Missing   int              `json:"missing"`
}

// SanityCheck stats local artifacts and flags remote ones as unchecked. It
// does not mutate state and is safe to call at any time.
func (m *Manager) SanityCheck() SanityReport {
	var r SanityReport
	for _, s := range m.ListModels() {
		ar := ArtifactReport{Name: s.Name, Path: s.Path}
		switch p := strings.TrimSpace(s.Path); {
		case p == "":
			ar.StandIn = true
			ar.Error = "no artifact path"
		case isRemote(p):
			// reachability is only known at fetch time
			ar.Available = true
		default:
			lp, err := fsutil.LocalPath(p)
			if err == nil {
				var fi os.FileInfo
				if fi, err = os.Stat(lp); err == nil && fi.IsDir() {
					ar.Error = "artifact path is a directory"
					ar.StandIn = true
					break
				}
			}
			if err != nil {
				ar.Error = err.Error()
				ar.StandIn = true
				break
			}
			ar.Available = true
		}
		if ar.Available {
			r.Available++
		} else {
			r.Missing++
		}
		r.Models = append(r.Models, ar)
	}
	return r
}

func isRemote(p string) bool {
	u, err := url.Parse(p)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}
