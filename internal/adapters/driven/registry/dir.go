// Package registry loads trusted identity providers from SAML metadata
// files on disk.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/dgsspa/spid-sp/internal/core/domain"
	"github.com/dgsspa/spid-sp/internal/core/ports"
	"github.com/dgsspa/spid-sp/internal/saml2"
)

// DirectoryRegistry reads every *.xml file in a directory, one or more
// IdentityProviders per file. The directory is read once on first access
// and the result is shared; a malformed file is skipped and reported in
// FileErrors without aborting the load.
type DirectoryRegistry struct {
	dir             string
	logger          *zap.Logger
	metricsRecorder ports.MetricsRecorder

	once       sync.Once
	idps       []*domain.IdentityProvider
	fileErrors map[string]error
}

type Option func(*DirectoryRegistry)

func WithLogger(logger *zap.Logger) Option {
	return func(r *DirectoryRegistry) { r.logger = logger }
}

func WithMetricsRecorder(recorder ports.MetricsRecorder) Option {
	return func(r *DirectoryRegistry) { r.metricsRecorder = recorder }
}

func NewDirectoryRegistry(dir string, opts ...Option) *DirectoryRegistry {
	r := &DirectoryRegistry{
		dir:        dir,
		logger:     zap.NewNop(),
		fileErrors: map[string]error{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FindByEntityID returns the first provider with the given entity id, or
// nil when none matches.
func (r *DirectoryRegistry) FindByEntityID(entityID string) *domain.IdentityProvider {
	r.once.Do(r.load)
	for _, idp := range r.idps {
		if idp.EntityID == entityID {
			return idp
		}
	}
	return nil
}

// All returns every loaded provider.
func (r *DirectoryRegistry) All() []*domain.IdentityProvider {
	r.once.Do(r.load)
	out := make([]*domain.IdentityProvider, len(r.idps))
	copy(out, r.idps)
	return out
}

// FileErrors reports the per-file parse failures of the load, keyed by
// file path.
func (r *DirectoryRegistry) FileErrors() map[string]error {
	r.once.Do(r.load)
	out := make(map[string]error, len(r.fileErrors))
	for k, v := range r.fileErrors {
		out[k] = v
	}
	return out
}

func (r *DirectoryRegistry) load() {
	paths, err := filepath.Glob(filepath.Join(r.dir, "*.xml"))
	if err != nil {
		r.fileErrors[r.dir] = err
		r.logger.Error("listing idp metadata directory", zap.String("dir", r.dir), zap.Error(err))
		return
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			r.fileErrors[path] = err
			r.logger.Warn("reading idp metadata file", zap.String("file", path), zap.Error(err))
			continue
		}
		idps, err := saml2.ParseIdPMetadata(data)
		if err != nil {
			r.fileErrors[path] = fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
			r.logger.Warn("parsing idp metadata file", zap.String("file", path), zap.Error(err))
			continue
		}
		r.idps = append(r.idps, idps...)
	}

	r.logger.Info("idp metadata registry loaded",
		zap.String("dir", r.dir),
		zap.Int("identity_providers", len(r.idps)),
		zap.Int("file_errors", len(r.fileErrors)),
	)
	if r.metricsRecorder != nil {
		r.metricsRecorder.RecordRegistryLoad(len(r.idps), len(r.fileErrors))
	}
}
