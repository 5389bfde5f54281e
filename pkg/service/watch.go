package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-notion/pkg/button"
	"github.com/mattsolo1/grove-notion/pkg/journal"
)

// EventPressed is journaled when a button is pressed from this side.
const EventPressed = "pressed"

// WatchOptions configures Watch.
type WatchOptions struct {
	// Once stops watching after the first deactivation, i.e. after one full
	// press and reset cycle.
	Once bool
	// OnEvent, when set, is called after an event has been logged and journaled.
	OnEvent func(b *button.Button, ev button.Event)
}

// Watch subscribes to the button named name and blocks until ctx is done or,
// with Once, until the button has been pressed and reset.
func (s *Service) Watch(ctx context.Context, name string, opts WatchOptions) error {
	b, err := s.Button(ctx, name)
	if err != nil {
		return err
	}
	log := s.logger.WithField("button", b.Name())

	b.On(button.Activated, func(ctx context.Context, b *button.Button) {
		log.Infof("Button %s is activated", b.Name())
		s.record(b, string(button.Activated))
		if opts.OnEvent != nil {
			opts.OnEvent(b, button.Activated)
		}
	})
	b.On(button.Deactivated, func(ctx context.Context, b *button.Button) {
		log.Infof("Button %s is deactivated", b.Name())
		s.record(b, string(button.Deactivated))
		if opts.OnEvent != nil {
			opts.OnEvent(b, button.Deactivated)
		}
		if opts.Once {
			b.Unsubscribe()
		}
	})

	if err := b.Subscribe(ctx); err != nil {
		return err
	}
	log.WithField("interval", b.Interval().String()).Infof("Subscribed for %s", b.Name())

	select {
	case <-b.Done():
	case <-ctx.Done():
		b.Unsubscribe()
		<-b.Done()
	}
	return nil
}

// Press ticks the button named name remotely. A watcher, possibly in another
// process, sees it as an activation.
func (s *Service) Press(ctx context.Context, name string) error {
	b, err := s.Button(ctx, name)
	if err != nil {
		return err
	}
	if err := b.SetPressed(ctx, true); err != nil {
		return fmt.Errorf("press %s: %w", name, err)
	}
	s.record(b, EventPressed)
	return nil
}

// History lists journaled events.
func (s *Service) History(f journal.Filter) ([]*journal.Entry, error) {
	if s.journal == nil {
		return nil, nil
	}
	return s.journal.List(f)
}

func (s *Service) record(b *button.Button, ev string) {
	if s.journal == nil {
		return
	}
	err := s.journal.Record(&journal.Entry{
		ButtonID:   b.ID(),
		ButtonName: b.Name(),
		Event:      ev,
		EditedAt:   b.LastEditedTime(),
	})
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{"id": b.ID(), "event": ev}).Warn("Could not journal event")
	}
}
