// Package shelf is the shared client layer for the study-materials portal:
// it wires the persistent cache, key index, download coordinator, remote
// document client, and secure viewer behind one handle that UI adapters
// call into.
package shelf

import (
	"context"
	"fmt"

	"github.com/shelfdocs/libshelf-go/config"
	"github.com/shelfdocs/libshelf-go/download"
	"github.com/shelfdocs/libshelf-go/index"
	"github.com/shelfdocs/libshelf-go/remote"
	"github.com/shelfdocs/libshelf-go/store"
	"github.com/shelfdocs/libshelf-go/view"
)

// Shelf owns the offline cache and content-delivery subsystems.
type Shelf struct {
	Config      config.Config
	Manager     *store.Manager
	Index       *index.KeyIndex
	Coordinator *download.Coordinator
	Opener      *view.Opener
	Remote      *remote.Client // nil = offline mode, cached documents only
}

// New creates a Shelf from a validated configuration. The cache database is
// not opened until first use. When the config names a service domain
// instead of a URL, the document service is discovered from SRV records
// (DNSSEC-validated when a resolver address is configured).
func New(cfg config.Config, creds download.CredentialSource) (*Shelf, error) {
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("shelf: %w", err)
	}

	var opts []store.Option
	if cfg.SealCache {
		secret, err := store.LoadOrCreateSecret(config.SecretPath(cfg.DataDir))
		if err != nil {
			return nil, fmt.Errorf("shelf: %w", err)
		}
		sealer, err := store.NewSealer(secret)
		if err != nil {
			return nil, fmt.Errorf("shelf: %w", err)
		}
		opts = append(opts, store.WithSealer(sealer))
	}

	client, err := resolveClient(cfg)
	if err != nil {
		return nil, err
	}

	mgr := store.NewManager(config.DatabasePath(cfg.DataDir), opts...)

	s := &Shelf{
		Config:      cfg,
		Manager:     mgr,
		Index:       index.New(mgr),
		Coordinator: download.NewCoordinator(mgr, creds),
		Remote:      client,
	}

	// The opener shares the remote client for the view-only fetch path;
	// offline mode opens cached documents only.
	var fetcher view.ContentFetcher
	if client != nil {
		fetcher = client
	}
	s.Opener = view.NewOpener(mgr, creds, fetcher)
	return s, nil
}

// resolveClient builds the document service client from the config, or nil
// in offline mode.
func resolveClient(cfg config.Config) (*remote.Client, error) {
	if cfg.ServiceURL != "" {
		return remote.NewClient(cfg.ServiceURL), nil
	}
	if cfg.ServiceDomain == "" {
		return nil, nil
	}

	resolver := remote.DefaultDNSResolver
	if cfg.ResolverAddr != "" {
		resolver = remote.NewDNSSECResolver(cfg.ResolverAddr)
	}
	endpoints, err := remote.ResolveEndpointsWithResolver(cfg.ServiceDomain, resolver)
	if err != nil {
		return nil, fmt.Errorf("shelf: discover service: %w", err)
	}
	return remote.NewClient("https://" + endpoints[0]), nil
}

// Download fetches the document for key through the remote client and
// commits it to the cache, then refreshes the key index so the new entry is
// immediately observable through IsDownloaded.
func (s *Shelf) Download(ctx context.Context, key string) error {
	if s.Remote == nil {
		return ErrOffline
	}
	return s.DownloadWith(ctx, key, s.Remote)
}

// DownloadWith is Download with a caller-supplied fetcher.
func (s *Shelf) DownloadWith(ctx context.Context, key string, fetcher download.Fetcher) error {
	if err := s.Coordinator.Download(ctx, key, fetcher); err != nil {
		return err
	}
	if _, err := s.Index.Refresh(ctx); err != nil {
		return fmt.Errorf("shelf: index refresh after download: %w", err)
	}
	return nil
}

// IsDownloaded reports whether key was downloaded as of the last index
// refresh.
func (s *Shelf) IsDownloaded(key string) bool { return s.Index.Has(key) }

// RefreshIndex recomputes the key index snapshot. Call on startup and
// whenever the host wants writes from elsewhere to become observable.
func (s *Shelf) RefreshIndex(ctx context.Context) (index.Snapshot, error) {
	return s.Index.Refresh(ctx)
}

// Item returns the metadata record for a downloaded key.
func (s *Shelf) Item(ctx context.Context, key string) (*store.ItemMeta, error) {
	st, err := s.Manager.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("shelf: %w", err)
	}
	return st.GetItem(key)
}

// Open resolves content for key into a viewing session. The caller owns
// the session and must Close it when the displaying surface goes away.
func (s *Shelf) Open(ctx context.Context, key string) (*view.Session, error) {
	return s.Opener.Open(ctx, key)
}

// SweepOrphans removes content entries with no metadata entry. Exposed for
// hosts that want to reclaim space left by interrupted downloads.
func (s *Shelf) SweepOrphans(ctx context.Context) (int, error) {
	st, err := s.Manager.Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("shelf: %w", err)
	}
	return st.SweepOrphans()
}

// Close releases the cache handle. The shelf remains usable; the next
// operation reopens the database.
func (s *Shelf) Close() error { return s.Manager.Close() }
