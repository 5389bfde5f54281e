package tree

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-notion/pkg/notion"
)

// Report summarizes one resolution.
type Report struct {
	Resolved int      // nodes materialised
	Skipped  int      // children dropped because they failed to resolve
	Leaves   int      // content-capable nodes whose listing failed
	Errors   []string // detailed error messages
}

func (r *Report) fail(err error) {
	r.Errors = append(r.Errors, err.Error())
}

// Resolver materialises a remote tree into nodes, one node at a time and
// strictly in listing order.
type Resolver struct {
	transport notion.Transport
	logger    logrus.FieldLogger
}

// NewResolver creates a Resolver.
func NewResolver(t notion.Transport, logger logrus.FieldLogger) *Resolver {
	return &Resolver{
		transport: t,
		logger:    logger.WithField("module", "TreeResolver"),
	}
}

// Resolve builds the tree rooted at id. Only failures of the root itself are
// returned; failing descendants are logged, counted in the report and left
// out of the tree.
func (r *Resolver) Resolve(ctx context.Context, id string) (Node, *Report, error) {
	report := &Report{}
	visited := make(map[string]bool)
	node, err := r.resolve(ctx, id, visited, report)
	if err != nil {
		report.fail(err)
		return nil, report, err
	}
	return node, report, nil
}

func (r *Resolver) resolve(ctx context.Context, id string, visited map[string]bool, report *Report) (Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := r.logger.WithField("id", id)
	log.Debug("Resolving tree")

	if visited[id] {
		err := fmt.Errorf("object %s already present in this tree", id)
		log.WithError(err).Warn("Skipping repeated object")
		return nil, err
	}
	visited[id] = true

	rawBlock, err := r.transport.RetrieveObject(ctx, notion.EndpointBlocks, id)
	if err == nil && rawBlock == nil {
		err = &notion.RetrievalError{Endpoint: notion.EndpointBlocks, ID: id, Err: notion.ErrAbsent}
	}
	if err != nil {
		log.WithError(err).Error("Error while fetching block")
		return nil, err
	}
	bare := newBlock(KindOf(rawBlock), rawBlock, id)
	log = log.WithField("kind", bare.Kind().String())

	props, err := bare.FetchProperties(ctx, r.transport)
	if err != nil {
		log.WithError(err).Error("Error while acquiring properties")
		return nil, err
	}

	node, err := Wrap(bare.Kind(), props)
	if err != nil {
		log.WithError(err).WithField("object", props).Error("Error while creating node")
		return nil, err
	}
	report.Resolved++

	content, err := node.FetchContent(ctx, r.transport)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log.WithError(err).Error("Error while acquiring children")
		report.Leaves++
		report.fail(err)
		return node, nil
	}
	if len(content) == 0 {
		log.Debug("No content")
		return node, nil
	}

	for _, entry := range content {
		child, err := r.resolve(ctx, entry.ID(), visited, report)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			log.WithError(err).WithField("child", entry.ID()).Warn("Skipping child")
			report.Skipped++
			report.fail(err)
			continue
		}
		log.WithField("child", child.ID()).Debug("Appending child")
		node.AppendChild(child)
	}

	log.WithField("children", len(node.Children())).Debug("Successfully fetched all children")
	return node, nil
}
