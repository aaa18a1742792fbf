package eips

import (
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	git "github.com/go-git/go-git/v5"

	"github.com/ergoscope/analytics-engine/internal/ergo"
	"github.com/ergoscope/analytics-engine/pkg/models"
)

const (
	// DefaultRepoURL is the public Ergo Improvement Proposals repository.
	DefaultRepoURL = "https://github.com/ergoplatform/eips.git"

	DefaultRefreshInterval = 24 * time.Hour

	// The refresh loop sleeps in short slices so a shutdown signal is
	// observed promptly even with a multi-hour interval.
	sleepSlice   = 60 * time.Second
	shutdownJoin = 5 * time.Second
)

// Mirror maintains an in-memory index of the EIP corpus, backed by a local
// git working copy. The index handle is an atomic pointer: the refresh loop
// is the single writer, lookups never lock.
type Mirror struct {
	repoURL         string
	localDir        string
	refreshInterval time.Duration

	idx  atomic.Pointer[index]
	stop chan struct{}
	done chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once
}

// NewMirror builds an unstarted mirror. An empty repoURL disables git sync
// entirely: the local directory is parsed as-is (air-gapped deployments and
// tests). Empty localDir and interval fall back to ./eips-cache and 24h.
func NewMirror(repoURL, localDir string, refreshInterval time.Duration) *Mirror {
	if localDir == "" {
		localDir = "eips-cache"
	}
	if refreshInterval <= 0 {
		refreshInterval = DefaultRefreshInterval
	}
	return &Mirror{
		repoURL:         repoURL,
		localDir:        localDir,
		refreshInterval: refreshInterval,
		stop:            make(chan struct{}),
		done:            make(chan struct{}),
	}
}

// Start performs the initial load and launches the background refresher.
// A failed initial load is returned but does not prevent the refresher from
// retrying on schedule.
func (m *Mirror) Start() error {
	var loadErr error
	m.startOnce.Do(func() {
		loadErr = m.Load()
		go m.refreshLoop()
	})
	return loadErr
}

// Stop signals the refresher and waits for it to exit, bounded to 5s.
func (m *Mirror) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
	select {
	case <-m.done:
	case <-time.After(shutdownJoin):
		log.Printf("[Mirror] Refresher did not exit within %s, abandoning", shutdownJoin)
	}
}

// Load syncs the working copy and atomically publishes a fresh index.
// When sync fails but a previous index exists, the old index is retained and
// the error reported; readers never lose data to a bad refresh.
func (m *Mirror) Load() error {
	if err := m.sync(); err != nil {
		if m.idx.Load() != nil {
			log.Printf("[Mirror] Refresh failed, keeping previously loaded index: %v", err)
			return err
		}
		return err
	}

	fresh, err := parseDir(m.localDir)
	if err != nil {
		if m.idx.Load() != nil {
			log.Printf("[Mirror] Parse failed, keeping previously loaded index: %v", err)
		}
		return err
	}

	m.idx.Store(fresh)
	log.Printf("[Mirror] Published EIP index with %d documents", len(fresh.numbers))
	return nil
}

// sync clones the repository when the local directory is absent, otherwise
// pulls the default branch. On failure the directory is removed and cloned
// once more before giving up. With no repoURL the local directory is used
// as-is and never touched.
func (m *Mirror) sync() error {
	if m.repoURL == "" {
		return nil
	}
	if _, err := os.Stat(m.localDir); os.IsNotExist(err) {
		return m.clone()
	}

	if err := m.pull(); err != nil {
		log.Printf("[Mirror] Pull failed (%v), recloning %s", err, m.localDir)
		if rmErr := os.RemoveAll(m.localDir); rmErr != nil {
			return rmErr
		}
		return m.clone()
	}
	return nil
}

func (m *Mirror) clone() error {
	log.Printf("[Mirror] Cloning %s into %s", m.repoURL, m.localDir)
	_, err := git.PlainClone(m.localDir, false, &git.CloneOptions{
		URL:   m.repoURL,
		Depth: 1,
	})
	return err
}

func (m *Mirror) pull() error {
	repo, err := git.PlainOpen(m.localDir)
	if err != nil {
		return err
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return err
	}
	err = worktree.Pull(&git.PullOptions{})
	if err == git.NoErrAlreadyUpToDate {
		return nil
	}
	return err
}

func (m *Mirror) refreshLoop() {
	defer close(m.done)

	for {
		// Sleep the full interval in <=60s slices, watching for shutdown
		// between slices.
		remaining := m.refreshInterval
		for remaining > 0 {
			slice := sleepSlice
			if remaining < slice {
				slice = remaining
			}
			select {
			case <-m.stop:
				log.Println("[Mirror] Refresher stopping")
				return
			case <-time.After(slice):
				remaining -= slice
			}
		}

		if err := m.Load(); err != nil {
			log.Printf("[Mirror] Scheduled refresh failed: %v", err)
		}
	}
}

// List returns every known EIP summary sorted by number ascending.
// Triggers a lazy load when the mirror was never started.
func (m *Mirror) List() ([]models.EIPSummary, error) {
	idx, err := m.current()
	if err != nil {
		return nil, err
	}
	summaries := make([]models.EIPSummary, 0, len(idx.numbers))
	for _, n := range idx.numbers {
		summaries = append(summaries, idx.byNumber[n].EIPSummary)
	}
	return summaries, nil
}

// Get returns one EIP by number, or NotFound.
func (m *Mirror) Get(number int) (*models.EIPDetail, error) {
	idx, err := m.current()
	if err != nil {
		return nil, err
	}
	detail, ok := idx.byNumber[number]
	if !ok {
		return nil, ergo.NewError(ergo.KindNotFound, "EIP %d not found", number)
	}
	return &detail, nil
}

func (m *Mirror) current() (*index, error) {
	if idx := m.idx.Load(); idx != nil {
		return idx, nil
	}
	if err := m.Load(); err != nil {
		return nil, ergo.NewError(ergo.KindTransport, "EIP repository unavailable: %v", err)
	}
	return m.idx.Load(), nil
}
