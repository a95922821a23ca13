// Package provider implements the two settings storage backends and the
// factory that picks one of them for the process.
package provider

import (
	"fmt"
	"log/slog"
	"time"

	"invoicedesk/internal/domain/settings"
	"invoicedesk/internal/events"
	"invoicedesk/internal/schema"
)

// notifier carries the subscription plumbing shared by both providers.
type notifier struct {
	feed    *events.Feed
	changes *events.Topic[settings.ChangeEvent]
	now     func() time.Time
}

func newNotifier(logger *slog.Logger) *notifier {
	return &notifier{
		feed:    events.NewFeed(logger),
		changes: events.NewTopic[settings.ChangeEvent]("settings.change", logger),
		now:     time.Now,
	}
}

// Subscribe registers fn for writes to exactly keyPath.
func (n *notifier) Subscribe(keyPath string, fn func(value any, keyPath string)) func() {
	return n.feed.Subscribe(keyPath, fn)
}

// Watch registers fn for every change event.
func (n *notifier) Watch(fn func(settings.ChangeEvent)) func() {
	return n.changes.Subscribe(fn)
}

func (n *notifier) written(keyPath string, value any) {
	n.feed.Publish(keyPath, schema.Clone(value))
	n.changes.Emit(settings.ChangeEvent{
		Kind:      settings.ChangeSet,
		KeyPath:   keyPath,
		Section:   schema.Section(keyPath),
		Value:     schema.Clone(value),
		Timestamp: n.now(),
	})
}

func (n *notifier) reset(section string) {
	n.changes.Emit(settings.ChangeEvent{
		Kind:      settings.ChangeReset,
		Section:   section,
		Timestamp: n.now(),
	})
}

func (n *notifier) imported() {
	n.changes.Emit(settings.ChangeEvent{
		Kind:      settings.ChangeImport,
		Section:   settings.SectionAll,
		Timestamp: n.now(),
	})
}

func (n *notifier) reloaded() {
	n.changes.Emit(settings.ChangeEvent{
		Kind:      settings.ChangeReload,
		Section:   settings.SectionAll,
		Timestamp: n.now(),
	})
}

// prepareWrite normalizes value to its JSON shape and validates it.
func prepareWrite(keyPath string, value any) (any, error) {
	if _, err := schema.SplitKeyPath(keyPath); err != nil {
		return nil, err
	}
	normalized, err := schema.Normalize(value)
	if err != nil {
		return nil, settings.NewValidationError(keyPath, value, fmt.Sprintf("not JSON encodable: %v", err))
	}
	if err := schema.ValidateTree(keyPath, normalized); err != nil {
		return nil, err
	}
	return normalized, nil
}

// prepareImport checks an inbound tree carries at least one required section
// and normalizes it.
func prepareImport(tree map[string]any) (map[string]any, error) {
	present := 0
	for _, section := range schema.RequiredSections {
		if _, ok := tree[section]; ok {
			present++
		}
	}
	if present == 0 {
		return nil, fmt.Errorf("%w: none of the sections %v present", settings.ErrInvalidImport, schema.RequiredSections)
	}

	normalized, err := schema.Normalize(tree)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", settings.ErrInvalidImport, err)
	}
	return normalized.(map[string]any), nil
}

// resetTarget resolves a reset argument to a section name or SectionAll.
func resetTarget(section string) (string, error) {
	if section == "" || section == settings.SectionAll {
		return settings.SectionAll, nil
	}
	if !schema.IsSection(section) {
		return "", fmt.Errorf("%w: %s", settings.ErrUnknownSection, section)
	}
	return section, nil
}

func defaultValue(keyPath string) any {
	v, _ := schema.DefaultFor(keyPath)
	return v
}
