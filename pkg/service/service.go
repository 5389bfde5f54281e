package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-notion/pkg/button"
	"github.com/mattsolo1/grove-notion/pkg/journal"
	"github.com/mattsolo1/grove-notion/pkg/notion"
	"github.com/mattsolo1/grove-notion/pkg/store"
	"github.com/mattsolo1/grove-notion/pkg/tree"
)

// Store key under which the discovered root page id is remembered.
const RootPageKey = "root_page_id"

var (
	// ErrNoRoot is returned when no page matches the configured root name.
	ErrNoRoot = errors.New("no root page found")
	// ErrAmbiguousRoot is returned when several pages match the root name.
	ErrAmbiguousRoot = errors.New("multiple pages match the root page name")
	// ErrNotFound is returned when no node in the tree carries a name.
	ErrNotFound = errors.New("object not found in tree")
	// ErrNotCheckbox is returned when a button name resolves to another kind.
	ErrNotCheckbox = errors.New("object is not a checkbox")
)

// Service ties the tree, the buttons and the local state together
type Service struct {
	Config *Config

	transport notion.Transport
	store     store.Store
	journal   *journal.Journal
	resolver  *tree.Resolver
	logger    logrus.FieldLogger

	mu   sync.Mutex
	root tree.Node
}

// Config holds service configuration
type Config struct {
	RootPageName string
	RootPageID   string
	RunButton    string
	ClearButton  string
	Essentials   []string
	PollInterval time.Duration
}

// Defaults for the well-known nodes.
const (
	DefaultRunButton   = "!RUN"
	DefaultClearButton = "!CLEAR"
)

// DefaultEssentials are the nodes a usable workspace must contain.
var DefaultEssentials = []string{"!RUN", "!CLEAR", "!Interface"}

// New creates a service. The journal may be nil, in which case events are
// only logged.
func New(config *Config, t notion.Transport, st store.Store, j *journal.Journal, logger logrus.FieldLogger) *Service {
	if config.RunButton == "" {
		config.RunButton = DefaultRunButton
	}
	if config.ClearButton == "" {
		config.ClearButton = DefaultClearButton
	}
	if len(config.Essentials) == 0 {
		config.Essentials = DefaultEssentials
	}
	if config.PollInterval <= 0 {
		config.PollInterval = button.DefaultInterval
	}
	log := logger.WithField("module", "NotionFetcher")
	return &Service{
		Config:    config,
		transport: t,
		store:     st,
		journal:   j,
		resolver:  tree.NewResolver(t, logger),
		logger:    log,
	}
}

// RootPage returns the root page. A configured id wins over the stored one;
// without either the root is discovered by searching for its name, which must
// match exactly one object. The id found is stored for later runs.
func (s *Service) RootPage(ctx context.Context) (tree.Node, error) {
	id := s.Config.RootPageID
	if id == "" {
		stored, ok, err := s.store.Get(ctx, RootPageKey)
		if err != nil {
			s.logger.WithError(err).Warn("Could not read stored root page id")
		} else if ok {
			id = stored
		}
	}

	var raw notion.Object
	if id != "" {
		normalized, err := notion.NormalizeID(id)
		if err != nil {
			return nil, fmt.Errorf("root page id: %w", err)
		}
		raw, err = s.transport.RetrieveObject(ctx, notion.EndpointPages, normalized)
		if err != nil {
			s.logger.WithError(err).Errorf("Error while fetching root page <%s>", normalized)
			return nil, err
		}
	} else {
		name := s.Config.RootPageName
		if name == "" {
			return nil, fmt.Errorf("%w: no root page name or id configured", ErrNoRoot)
		}
		results, err := s.transport.Search(ctx, name)
		if err != nil {
			s.logger.WithError(err).Errorf("Error while searching for the root page with <%s> name", name)
			return nil, err
		}
		switch len(results) {
		case 0:
			return nil, fmt.Errorf("%w: <%s>", ErrNoRoot, name)
		case 1:
			raw = results[0]
		default:
			return nil, fmt.Errorf("%w: <%s> (%d results)", ErrAmbiguousRoot, name, len(results))
		}
	}

	root, err := tree.New(raw)
	if err != nil {
		return nil, fmt.Errorf("root page: %w", err)
	}
	if err := s.store.Set(ctx, RootPageKey, root.ID()); err != nil {
		s.logger.WithError(err).Warn("Could not remember root page id")
	}
	s.logger.WithField("id", root.ID()).Debug("Successfully fetched root page")
	return root, nil
}

// ForgetRoot clears the stored root page id so the next lookup searches again.
func (s *Service) ForgetRoot(ctx context.Context) error {
	return s.store.Set(ctx, RootPageKey, "")
}

// FetchFullTree resolves the whole tree under the root page and caches it.
func (s *Service) FetchFullTree(ctx context.Context) (tree.Node, *tree.Report, error) {
	rootPage, err := s.RootPage(ctx)
	if err != nil {
		return nil, nil, err
	}
	root, report, err := s.resolver.Resolve(ctx, rootPage.ID())
	if err != nil {
		return nil, report, fmt.Errorf("resolve tree: %w", err)
	}
	s.mu.Lock()
	s.root = root
	s.mu.Unlock()
	s.logger.WithFields(logrus.Fields{
		"resolved": report.Resolved,
		"skipped":  report.Skipped,
		"leaves":   report.Leaves,
	}).Info("Fetched root tree")
	return root, report, nil
}

// Tree returns the cached tree, fetching it on first use.
func (s *Service) Tree(ctx context.Context) (tree.Node, error) {
	s.mu.Lock()
	root := s.root
	s.mu.Unlock()
	if root != nil {
		return root, nil
	}
	root, _, err := s.FetchFullTree(ctx)
	return root, err
}

// FindObject returns the first node named name.
func (s *Service) FindObject(ctx context.Context, name string) (tree.Node, error) {
	root, err := s.Tree(ctx)
	if err != nil {
		return nil, err
	}
	n := tree.Find(root, name)
	if n == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	s.logger.WithFields(logrus.Fields{"id": n.ID(), "kind": n.Kind().String()}).
		Debugf("Found %s %s", n.ObjectKind(), tree.Label(n))
	return n, nil
}

// FindEssentials returns the well-known nodes present in the tree, in
// configuration order. Missing ones are logged and left out.
func (s *Service) FindEssentials(ctx context.Context) ([]tree.Node, error) {
	var found []tree.Node
	for _, name := range s.Config.Essentials {
		n, err := s.FindObject(ctx, name)
		if errors.Is(err, ErrNotFound) {
			s.logger.WithField("name", name).Warn("Essential object missing")
			continue
		}
		if err != nil {
			return nil, err
		}
		found = append(found, n)
	}
	return found, nil
}

// Button returns a poller for the checkbox named name.
func (s *Service) Button(ctx context.Context, name string) (*button.Button, error) {
	n, err := s.FindObject(ctx, name)
	if err != nil {
		return nil, err
	}
	cb, ok := n.(*tree.Checkbox)
	if !ok {
		return nil, fmt.Errorf("%w: %s is a %s", ErrNotCheckbox, name, n.Kind())
	}
	logger := s.logger.WithField("module", buttonModule(name))
	return button.New(cb, s.transport, logger, button.WithInterval(s.Config.PollInterval)), nil
}

// RunButton returns the configured run button.
func (s *Service) RunButton(ctx context.Context) (*button.Button, error) {
	return s.Button(ctx, s.Config.RunButton)
}

// ClearButton returns the configured clear button.
func (s *Service) ClearButton(ctx context.Context) (*button.Button, error) {
	return s.Button(ctx, s.Config.ClearButton)
}

// buttonModule turns "!RUN" into "RUN_BUTTON" for log fields.
func buttonModule(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == ' ' || r == '-' || r == '_':
			return '_'
		}
		return -1
	}, name)
	if cleaned == "" {
		return "BUTTON"
	}
	return strings.ToUpper(cleaned) + "_BUTTON"
}

// Close releases the journal and the store.
func (s *Service) Close() error {
	var errs []error
	if s.journal != nil {
		errs = append(errs, s.journal.Close())
	}
	if c, ok := s.store.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
