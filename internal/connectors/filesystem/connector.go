package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
	"github.com/datacraft-labs/sftgen-cli/internal/core/ports/driven"
	"github.com/datacraft-labs/sftgen-cli/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// Connector discovers documents on the local filesystem.
// The root may be a single file or a directory walked recursively.
type Connector struct {
	rootPath string
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	closed   bool
}

// New creates a filesystem connector rooted at the given path.
func New(rootPath string) *Connector {
	return &Connector{rootPath: rootPath}
}

// Type returns the connector type identifier.
func (c *Connector) Type() string {
	return "filesystem"
}

// Root returns the configured input path.
func (c *Connector) Root() string {
	return c.rootPath
}

// Capabilities returns the connector's capabilities.
func (c *Connector) Capabilities() driven.ConnectorCapabilities {
	return driven.ConnectorCapabilities{
		SupportsWatch:     true,
		SupportsHierarchy: true,
	}
}

// Validate checks the input path exists and is usable.
// A directory root is always acceptable; a file root must carry a
// supported extension.
func (c *Connector) Validate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return domain.ErrConnectorClosed
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	info, err := os.Stat(c.rootPath)
	if os.IsNotExist(err) {
		return fmt.Errorf("input path does not exist: %s", c.rootPath)
	}
	if err != nil {
		return fmt.Errorf("stat input path: %w", err)
	}

	if !info.IsDir() {
		if _, ok := domain.FormatFromPath(c.rootPath); !ok {
			return fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, filepath.Ext(c.rootPath))
		}
	}

	return nil
}

// Discover streams supported documents under the root in sorted path
// order. Documents carry metadata only; Load fills in content.
func (c *Connector) Discover(ctx context.Context) (<-chan domain.SourceDocument, <-chan error) {
	docsChan := make(chan domain.SourceDocument)
	errsChan := make(chan error, 1)

	go func() {
		defer close(docsChan)
		defer close(errsChan)

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			errsChan <- domain.ErrConnectorClosed
			return
		}
		c.mu.Unlock()

		info, err := os.Stat(c.rootPath)
		if os.IsNotExist(err) {
			errsChan <- fmt.Errorf("input path does not exist: %s", c.rootPath)
			return
		}
		if err != nil {
			errsChan <- fmt.Errorf("stat input path: %w", err)
			return
		}

		if !info.IsDir() {
			// An explicitly named file must be supported; there is
			// nothing to skip to.
			format, ok := domain.FormatFromPath(c.rootPath)
			if !ok {
				errsChan <- fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, filepath.Ext(c.rootPath))
				return
			}
			sendDocument(ctx, docsChan, newDocument(c.rootPath, info, format))
			return
		}

		docs, err := c.collectDocuments(ctx)
		if err != nil {
			if ctx.Err() == nil {
				errsChan <- err
			}
			return
		}

		for _, doc := range docs {
			if !sendDocument(ctx, docsChan, doc) {
				return
			}
		}
	}()

	return docsChan, errsChan
}

// Load fills in the document content.
func (c *Connector) Load(ctx context.Context, doc *domain.SourceDocument) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	content, err := os.ReadFile(doc.Path)
	if err != nil {
		return fmt.Errorf("read %s: %w", doc.Path, err)
	}
	doc.Content = content
	return nil
}

// Watch listens for file changes under the root. For a single-file
// root the parent directory is watched and events are filtered to the
// file itself.
func (c *Connector) Watch(ctx context.Context) (<-chan domain.FileChange, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, domain.ErrConnectorClosed
	}

	info, err := os.Stat(c.rootPath)
	if err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	// fsnotify does not recurse, so every nested directory is added.
	only := ""
	if info.IsDir() {
		if err := c.watchTree(watcher); err != nil {
			_ = watcher.Close()
			return nil, fmt.Errorf("watch %s: %w", c.rootPath, err)
		}
	} else {
		only = c.rootPath
		if err := watcher.Add(filepath.Dir(c.rootPath)); err != nil {
			_ = watcher.Close()
			return nil, fmt.Errorf("watch %s: %w", c.rootPath, err)
		}
	}

	c.watcher = watcher
	changes := make(chan domain.FileChange)

	go func() {
		defer close(changes)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if only != "" && event.Name != only {
					continue
				}
				change := c.handleFsEvent(event, watcher)
				if change == nil {
					continue
				}
				select {
				case <-ctx.Done():
					return
				case changes <- *change:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("watch error", "root", c.rootPath, "error", err)
			}
		}
	}()

	return changes, nil
}

// Close releases resources. Safe to call more than once.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if c.watcher != nil {
		err := c.watcher.Close()
		c.watcher = nil
		return err
	}
	return nil
}

// collectDocuments walks the root and returns supported files in
// sorted path order.
func (c *Connector) collectDocuments(ctx context.Context) ([]domain.SourceDocument, error) {
	var docs []domain.SourceDocument

	err := filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == c.rootPath {
				return err
			}
			logger.Warn("skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != c.rootPath && c.hidden(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if c.hidden(path) {
			return nil
		}
		format, ok := domain.FormatFromPath(path)
		if !ok {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			logger.Warn("skipping unreadable path", "path", path, "error", err)
			return nil
		}
		docs = append(docs, newDocument(path, info, format))
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, fmt.Errorf("walk input: %w", err)
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, nil
}

// watchTree registers the root and every visible nested directory.
func (c *Connector) watchTree(watcher *fsnotify.Watcher) error {
	return filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == c.rootPath {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != c.rootPath && c.hidden(path) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

// handleFsEvent maps one fsnotify event onto a domain change.
// Returns nil for events that need no reprocessing: directories,
// hidden or unsupported files, and attribute-only changes.
func (c *Connector) handleFsEvent(event fsnotify.Event, watcher *fsnotify.Watcher) *domain.FileChange {
	if c.hidden(event.Name) {
		return nil
	}

	switch {
	case event.Op.Has(fsnotify.Create):
		info, err := os.Stat(event.Name)
		if err != nil {
			return nil
		}
		if info.IsDir() {
			// New directories join the watch set but emit nothing.
			if watcher != nil {
				_ = watcher.Add(event.Name)
			}
			return nil
		}
		if _, ok := domain.FormatFromPath(event.Name); !ok {
			return nil
		}
		return &domain.FileChange{Type: domain.ChangeCreated, Path: event.Name}

	case event.Op.Has(fsnotify.Write):
		info, err := os.Stat(event.Name)
		if err != nil || info.IsDir() {
			return nil
		}
		if _, ok := domain.FormatFromPath(event.Name); !ok {
			return nil
		}
		return &domain.FileChange{Type: domain.ChangeUpdated, Path: event.Name}

	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		if _, ok := domain.FormatFromPath(event.Name); !ok {
			return nil
		}
		return &domain.FileChange{Type: domain.ChangeDeleted, Path: event.Name}

	default:
		return nil
	}
}

// hidden reports whether path is hidden relative to the connector
// root. A hidden component in the root itself does not hide the tree.
func (c *Connector) hidden(path string) bool {
	rel, err := filepath.Rel(c.rootPath, path)
	if err != nil {
		return isHidden(path)
	}
	return isHidden(rel)
}

// sendDocument delivers doc unless the context is cancelled first.
func sendDocument(ctx context.Context, docsChan chan<- domain.SourceDocument, doc domain.SourceDocument) bool {
	select {
	case <-ctx.Done():
		return false
	case docsChan <- doc:
		return true
	}
}

// newDocument builds a metadata-only document for a discovered file.
func newDocument(path string, info os.FileInfo, format domain.FileFormat) domain.SourceDocument {
	return domain.SourceDocument{
		ID:      uuid.NewString(),
		Path:    path,
		Format:  format,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}
}

// isHidden reports whether any path component is a dot-prefixed entry.
// "." and ".." are path navigation, not hidden entries.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "." || part == ".." || part == "" {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
