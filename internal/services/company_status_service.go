package services

import (
	"log"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/strappedupmami/journeyatlas/internal/config"
	"github.com/strappedupmami/journeyatlas/internal/models"
)

// CompanyStatusService serves the organizational awareness block. The
// status comes from a YAML file that ops edits in place; the service
// watches it and hot-reloads on change. Without a file it serves the
// built-in default.
type CompanyStatusService struct {
	mu       sync.RWMutex
	status   models.CompanyStatus
	filePath string
	watcher  *fsnotify.Watcher
}

// NewCompanyStatusService creates the service, loading the file if one is
// configured. A missing or broken file falls back to the default status.
func NewCompanyStatusService(filePath string) *CompanyStatusService {
	s := &CompanyStatusService{
		status:   models.DefaultCompanyStatus(),
		filePath: filePath,
	}
	if filePath != "" {
		s.reload()
	}
	return s
}

// Current returns the current company status.
func (s *CompanyStatusService) Current() models.CompanyStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Set replaces the current status. Used by tests and by admin tooling.
func (s *CompanyStatusService) Set(status models.CompanyStatus) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
}

// Watch starts the file watcher. Returns immediately; reloads happen on a
// background goroutine until Close is called. No-op without a file.
func (s *CompanyStatusService) Watch() error {
	if s.filePath == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(s.filePath); err != nil {
		watcher.Close()
		return err
	}
	s.watcher = watcher

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					s.reload()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("⚠️ [COMPANY] Status watcher error: %v", err)
			}
		}
	}()

	log.Printf("👁️ [COMPANY] Watching status file: %s", s.filePath)
	return nil
}

// Close stops the file watcher.
func (s *CompanyStatusService) Close() {
	if s.watcher != nil {
		s.watcher.Close()
		s.watcher = nil
	}
}

func (s *CompanyStatusService) reload() {
	status, err := config.LoadCompanyStatus(s.filePath)
	if err != nil {
		log.Printf("⚠️ [COMPANY] Keeping previous status, reload failed: %v", err)
		return
	}

	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
	log.Printf("🔄 [COMPANY] Status reloaded (phase: %s)", status.Phase)
}
