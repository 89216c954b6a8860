package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/chazuruo/agentdeck/internal/agents"
	deckerrors "github.com/chazuruo/agentdeck/internal/errors"
	"github.com/chazuruo/agentdeck/internal/logging"
)

const (
	agentFile   = "agent.yaml"
	readmeFile  = "README.md"
	versionsDir = "versions"
)

// FileSystemStore implements Store as a tree of YAML files:
//
//	<root>/agents/<id>/agent.yaml
//	<root>/agents/<id>/README.md
//	<root>/agents/<id>/versions/<version>.yaml
//	<root>/drafts/<draft>.yaml
type FileSystemStore struct {
	root   string
	logger *slog.Logger
	mu     sync.RWMutex
}

var _ Store = (*FileSystemStore)(nil)

// NewFileSystemStore creates a store rooted at root, creating the directory
// if needed.
func NewFileSystemStore(root string, logger *slog.Logger) (*FileSystemStore, error) {
	if root == "" {
		return nil, deckerrors.Invalidf("store root cannot be empty")
	}
	for _, dir := range []string{"agents", "drafts"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0755); err != nil {
			return nil, fsError("open", err)
		}
	}
	return &FileSystemStore{
		root:   root,
		logger: logging.OrDiscard(logger).With("store", BackendFilesystem),
	}, nil
}

// Root returns the store's root directory.
func (s *FileSystemStore) Root() string { return s.root }

func (s *FileSystemStore) agentDir(id string) string {
	return filepath.Join(s.root, "agents", id)
}

func (s *FileSystemStore) draftPath(id string) string {
	return filepath.Join(s.root, "drafts", id+".yaml")
}

// ListRecords reads every agents/*/agent.yaml.
func (s *FileSystemStore) ListRecords(ctx context.Context) ([]agents.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(filepath.Join(s.root, "agents"))
	if err != nil {
		return nil, fsError("list", err)
	}

	records := make([]agents.Agent, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.IsDir() {
			continue
		}
		a, err := s.read(entry.Name())
		if err != nil {
			if deckerrors.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		records = append(records, *a)
	}
	sortRecords(records)
	return records, nil
}

// Get loads one agent.
func (s *FileSystemStore) Get(_ context.Context, id string) (*agents.Agent, error) {
	if err := checkID("agent", id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(id)
}

func (s *FileSystemStore) read(id string) (*agents.Agent, error) {
	data, err := os.ReadFile(filepath.Join(s.agentDir(id), agentFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &deckerrors.AgentError{Op: "get", Err: deckerrors.ErrNotFound, ID: id}
		}
		return nil, fsError("get", err)
	}
	a, err := agents.UnmarshalAgent(data)
	if err != nil {
		return nil, &deckerrors.AgentError{Op: "get", Err: fmt.Errorf("%w: %v", deckerrors.ErrInvalid, err), ID: id}
	}
	return a, nil
}

// Save writes agent.yaml and regenerates the README.
func (s *FileSystemStore) Save(_ context.Context, a *agents.Agent, opts SaveOptions) error {
	if err := checkID("agent", a.ID); err != nil {
		return err
	}
	if err := a.Validate(); err != nil {
		return &deckerrors.AgentError{Op: "save", Err: fmt.Errorf("%w: %v", deckerrors.ErrInvalid, err), ID: a.ID}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := s.agentDir(a.ID)
	path := filepath.Join(dir, agentFile)
	if _, err := os.Stat(path); err == nil && !opts.Force {
		return &deckerrors.AgentError{Op: "save", Err: deckerrors.ErrAlreadyExists, ID: a.ID}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fsError("save", err)
	}

	data, err := agents.MarshalAgent(a)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(path, data); err != nil {
		return fsError("save", err)
	}

	if err := writeReadme(filepath.Join(dir, readmeFile), a); err != nil {
		s.logger.Warn("failed to generate README", "agent", a.ID, "error", err)
	}
	s.logger.Debug("saved agent", "agent", a.ID, "path", path)
	return nil
}

// Delete removes the agent directory, versions included.
func (s *FileSystemStore) Delete(_ context.Context, id string) error {
	if err := checkID("agent", id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := s.agentDir(id)
	if _, err := os.Stat(filepath.Join(dir, agentFile)); os.IsNotExist(err) {
		return &deckerrors.AgentError{Op: "delete", Err: deckerrors.ErrNotFound, ID: id}
	}
	if err := os.RemoveAll(dir); err != nil {
		return fsError("delete", err)
	}
	s.logger.Debug("deleted agent", "agent", id)
	return nil
}

// SaveVersion writes versions/<id>.yaml, overwriting a version with the same id.
func (s *FileSystemStore) SaveVersion(_ context.Context, v agents.PromptVersion) error {
	if err := checkID("agent", v.AgentID); err != nil {
		return err
	}
	if err := checkID("version", v.ID); err != nil {
		return err
	}
	if err := v.Validate(); err != nil {
		return deckerrors.Invalidf("%v", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := s.agentDir(v.AgentID)
	if _, err := os.Stat(filepath.Join(dir, agentFile)); os.IsNotExist(err) {
		return &deckerrors.AgentError{Op: "save version", Err: deckerrors.ErrNotFound, ID: v.AgentID}
	}
	if err := os.MkdirAll(filepath.Join(dir, versionsDir), 0755); err != nil {
		return fsError("save version", err)
	}
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal version: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(dir, versionsDir, v.ID+".yaml"), data); err != nil {
		return fsError("save version", err)
	}
	return nil
}

// ListVersions reads versions/*.yaml of an agent, newest first.
func (s *FileSystemStore) ListVersions(_ context.Context, agentID string) ([]agents.PromptVersion, error) {
	if err := checkID("agent", agentID); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	dir := s.agentDir(agentID)
	if _, err := os.Stat(filepath.Join(dir, agentFile)); os.IsNotExist(err) {
		return nil, &deckerrors.AgentError{Op: "list versions", Err: deckerrors.ErrNotFound, ID: agentID}
	}

	paths, err := filepath.Glob(filepath.Join(dir, versionsDir, "*.yaml"))
	if err != nil {
		return nil, fsError("list versions", err)
	}
	versions := make([]agents.PromptVersion, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fsError("list versions", err)
		}
		var v agents.PromptVersion
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("%w: version %s: %v", deckerrors.ErrInvalid, filepath.Base(path), err)
		}
		versions = append(versions, v)
	}
	sortVersions(versions)
	return versions, nil
}

// SaveDraft writes drafts/<id>.yaml.
func (s *FileSystemStore) SaveDraft(_ context.Context, id string, data []byte) error {
	if err := checkID("draft", id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := writeFileAtomic(s.draftPath(id), data); err != nil {
		return fsError("save draft", err)
	}
	return nil
}

// LoadDraft reads drafts/<id>.yaml.
func (s *FileSystemStore) LoadDraft(_ context.Context, id string) ([]byte, error) {
	if err := checkID("draft", id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, err := os.ReadFile(s.draftPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("draft %q: %w", id, deckerrors.ErrNotFound)
		}
		return nil, fsError("load draft", err)
	}
	return data, nil
}

// ListDrafts summarizes every draft, most recently updated first.
func (s *FileSystemStore) ListDrafts(_ context.Context) ([]DraftInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	paths, err := filepath.Glob(filepath.Join(s.root, "drafts", "*.yaml"))
	if err != nil {
		return nil, fsError("list drafts", err)
	}
	drafts := make([]DraftInfo, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fsError("list drafts", err)
		}
		info, err := parseDraftInfo(strings.TrimSuffix(filepath.Base(path), ".yaml"), data)
		if err != nil {
			s.logger.Warn("skipping unreadable draft", "path", path, "error", err)
			continue
		}
		drafts = append(drafts, info)
	}
	sortDrafts(drafts)
	return drafts, nil
}

// DeleteDraft removes drafts/<id>.yaml.
func (s *FileSystemStore) DeleteDraft(_ context.Context, id string) error {
	if err := checkID("draft", id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.draftPath(id)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("draft %q: %w", id, deckerrors.ErrNotFound)
		}
		return fsError("delete draft", err)
	}
	return nil
}

// Close is a no-op for the filesystem backend.
func (s *FileSystemStore) Close() error { return nil }

func fsError(op string, err error) error {
	return &deckerrors.StoreError{Op: op, Err: fmt.Errorf("%w: %v", deckerrors.ErrIO, err), Backend: BackendFilesystem}
}

// writeFileAtomic writes to a temp file in the same directory and renames it
// over path so readers never see a partial record.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// writeReadme creates a README.md summarizing the agent.
func writeReadme(path string, a *agents.Agent) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", a.Name)
	if a.Description != "" {
		b.WriteString(a.Description + "\n\n")
	}

	fmt.Fprintf(&b, "- Creator: %s\n", a.Creator)
	fmt.Fprintf(&b, "- Type: %s\n", a.Type)
	fmt.Fprintf(&b, "- Model: %s\n", a.Model)
	fmt.Fprintf(&b, "- Status: %s\n", a.Status)
	if a.Organization != "" {
		fmt.Fprintf(&b, "- Organization: %s\n", a.Organization)
	}
	b.WriteString("\n")

	if len(a.Tags) > 0 {
		b.WriteString("## Tags\n\n")
		for _, tag := range a.Tags {
			fmt.Fprintf(&b, "- %s\n", tag)
		}
		b.WriteString("\n")
	}

	if a.Config != nil && a.Config.SystemPrompt != "" {
		b.WriteString("## System prompt\n\n")
		fmt.Fprintf(&b, "```\n%s\n```\n", strings.TrimRight(a.Config.SystemPrompt, "\n"))
	}

	return os.WriteFile(path, []byte(b.String()), 0644)
}
