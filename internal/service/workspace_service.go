package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

// WorkspaceStore loads saved workspaces and accepts section writes.
type WorkspaceStore interface {
	Load(ctx context.Context, ownerID string) (*models.Workspace, bool, error)
	Schedule(ownerID string, section models.WorkspaceSection, ws *models.Workspace)
}

// WorkspaceMutation edits ws in place and returns the sections it changed.
// Returning an error discards every edit.
type WorkspaceMutation func(ws *models.Workspace) ([]models.WorkspaceSection, error)

type ownerWorkspace struct {
	mu sync.Mutex
	ws *models.Workspace
}

// WorkspaceService keeps each owner's workspace in memory. Edits for one owner
// are serialised; readers get deep copies.
type WorkspaceService struct {
	mu     sync.Mutex
	owners map[string]*ownerWorkspace
	store  WorkspaceStore
	logger *zap.Logger
}

// NewWorkspaceService builds the service. A nil store keeps every workspace in
// memory only.
func NewWorkspaceService(store WorkspaceStore, logger *zap.Logger) *WorkspaceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkspaceService{owners: make(map[string]*ownerWorkspace), store: store, logger: logger}
}

func (s *WorkspaceService) owner(ownerID string) *ownerWorkspace {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.owners[ownerID]
	if !ok {
		entry = &ownerWorkspace{}
		s.owners[ownerID] = entry
	}
	return entry
}

func (s *WorkspaceService) persistent(ownerID string) bool {
	return s.store != nil && ownerID != models.AnonymousOwner
}

// ensureLoaded must be called with entry.mu held.
func (s *WorkspaceService) ensureLoaded(ctx context.Context, ownerID string, entry *ownerWorkspace) error {
	if entry.ws != nil {
		return nil
	}
	if !s.persistent(ownerID) {
		entry.ws = DefaultWorkspace()
		return nil
	}

	ws, found, err := s.store.Load(ctx, ownerID)
	if err != nil {
		s.logger.Error("load workspace", zap.String("owner_id", ownerID), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load workspace")
	}
	if !found {
		ws = DefaultWorkspace()
		s.logger.Info("workspace initialised from defaults", zap.String("owner_id", ownerID))
		for _, section := range models.AllSections {
			s.store.Schedule(ownerID, section, ws.Clone())
		}
	}
	entry.ws = ws
	return nil
}

// Snapshot returns a copy of the owner's workspace.
func (s *WorkspaceService) Snapshot(ctx context.Context, ownerID string) (*models.Workspace, error) {
	entry := s.owner(ownerID)
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if err := s.ensureLoaded(ctx, ownerID, entry); err != nil {
		return nil, err
	}
	return entry.ws.Clone(), nil
}

// Update applies fn to a copy of the workspace and commits it when fn
// succeeds. Changed sections are handed to the store. The committed
// workspace is returned as a copy.
func (s *WorkspaceService) Update(ctx context.Context, ownerID string, fn WorkspaceMutation) (*models.Workspace, error) {
	entry := s.owner(ownerID)
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if err := s.ensureLoaded(ctx, ownerID, entry); err != nil {
		return nil, err
	}

	working := entry.ws.Clone()
	changed, err := fn(working)
	if err != nil {
		return nil, err
	}
	entry.ws = working

	if s.persistent(ownerID) && len(changed) > 0 {
		seen := make(map[models.WorkspaceSection]bool, len(changed))
		for _, section := range changed {
			if seen[section] {
				continue
			}
			seen[section] = true
			s.store.Schedule(ownerID, section, working.Clone())
		}
	}
	return working.Clone(), nil
}

// Reset drops the in-memory copy so the next access reloads it.
func (s *WorkspaceService) Reset(ownerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.owners, ownerID)
}
