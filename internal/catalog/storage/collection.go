// Package storage provides the movie and person registries: in-memory
// collections of validated entities, each mirrored as one JSON blob in a
// SlotStore slot.
//
// Registries are not safe for concurrent use. Callers drive them from a
// single goroutine, the way a CLI command or test does.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"go.opentelemetry.io/otel/attribute"

	"github.com/zjrosen/marquee/internal/catalog/domain"
	"github.com/zjrosen/marquee/internal/log"
	"github.com/zjrosen/marquee/internal/pubsub"
	"github.com/zjrosen/marquee/internal/tracing"
)

// Fixed slot keys.
const (
	MoviesKey  = "movies"
	PersonsKey = "person"
)

// ErrNotFound is returned when an operation addresses an id that is not registered.
var ErrNotFound = errors.New("not found")

// SlotStore is the storage substrate the registries persist to.
type SlotStore = domain.SlotStore

// ErrStoreUnavailable is returned by a SlotStore whose backend is closed or unreachable.
var ErrStoreUnavailable = domain.ErrStoreUnavailable

// Entity kinds carried in ChangeEvent.Kind.
const (
	KindMovie  = "movie"
	KindPerson = "person"
)

// ChangeEvent is the payload published when a registry mutates.
type ChangeEvent struct {
	Kind string // KindMovie or KindPerson
	ID   int
}

// Option configures a registry.
type Option func(*options)

type options struct {
	broker *pubsub.Broker[ChangeEvent]
}

// WithBroker publishes the registry's change events on b instead of a
// private broker, so several registries can share one event stream.
func WithBroker(b *pubsub.Broker[ChangeEvent]) Option {
	return func(o *options) { o.broker = b }
}

type entity interface {
	ID() int
	String() string
}

// collection is the state shared by both registries: the id-keyed instances,
// the next-id counter, and the slot they persist to.
type collection[E entity] struct {
	kind      string
	key       string
	store     SlotStore
	instances map[int]E

	// nextID is 0 until first computed.
	nextID int

	broker *pubsub.Broker[ChangeEvent]
}

func newCollection[E entity](kind, key string, store SlotStore, opts []Option) collection[E] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.broker == nil {
		o.broker = pubsub.NewBroker[ChangeEvent]()
	}
	return collection[E]{
		kind:      kind,
		key:       key,
		store:     store,
		instances: make(map[int]E),
		broker:    o.broker,
	}
}

// Contains reports whether id is registered.
func (c *collection[E]) Contains(id int) bool {
	_, ok := c.instances[id]
	return ok
}

// Get returns the entity registered under id.
func (c *collection[E]) Get(id int) (E, bool) {
	e, ok := c.instances[id]
	return e, ok
}

// Len returns the number of registered entities.
func (c *collection[E]) Len() int {
	return len(c.instances)
}

// All returns the registered entities ordered by id.
func (c *collection[E]) All() []E {
	out := make([]E, 0, len(c.instances))
	for _, id := range slices.Sorted(maps.Keys(c.instances)) {
		out = append(out, c.instances[id])
	}
	return out
}

// NextID returns the id to assign to the next new entity. The counter is
// computed by a scan the first time it is needed. An empty registry yields 1.
func (c *collection[E]) NextID() int {
	if c.nextID == 0 {
		c.recomputeNextID()
	}
	return c.nextID
}

func (c *collection[E]) recomputeNextID() {
	highest := 0
	for id := range c.instances {
		highest = max(highest, id)
	}
	c.nextID = highest + 1
}

// Subscribe returns a channel of change events, closed when ctx is cancelled.
func (c *collection[E]) Subscribe(ctx context.Context) <-chan pubsub.Event[ChangeEvent] {
	return c.broker.Subscribe(ctx)
}

func (c *collection[E]) publish(t pubsub.EventType, id int) {
	c.broker.Publish(t, ChangeEvent{Kind: c.kind, ID: id})
}

func (c *collection[E]) insert(e E) {
	c.instances[e.ID()] = e
	if c.nextID == 0 {
		c.recomputeNextID()
	} else {
		c.nextID = max(c.nextID, e.ID()+1)
	}
	c.publish(pubsub.CreatedEvent, e.ID())
}

// remove deletes id and recomputes the counter when the highest id goes away.
func (c *collection[E]) remove(id int) {
	e := c.instances[id]
	delete(c.instances, id)
	if id == c.nextID-1 {
		c.recomputeNextID()
	}
	log.Info(log.CatStorage, fmt.Sprintf("%s deleted", e.String()))
	c.publish(pubsub.DeletedEvent, id)
}

func (c *collection[E]) destroy(id int, onDestroy func(E)) error {
	e, ok := c.instances[id]
	if !ok {
		log.Info(log.CatStorage, fmt.Sprintf("There is no %s with id %d to delete from the database", c.kind, id))
		return fmt.Errorf("destroy %s %d: %w", c.kind, id, ErrNotFound)
	}
	if onDestroy != nil {
		onDestroy(e)
	}
	c.remove(id)
	return nil
}

func (c *collection[E]) destroyAll(pred func(E) bool) int {
	removed := 0
	for _, e := range c.All() {
		if pred == nil || pred(e) {
			c.remove(e.ID())
			removed++
		}
	}
	return removed
}

// retrieveAll loads the slot and registers every record decode accepts.
// Records that decode rejects are skipped. The counter ends at
// max(current, highest loaded id + 1).
func (c *collection[E]) retrieveAll(ctx context.Context, decode func(json.RawMessage) (E, bool)) (n int, err error) {
	ctx, span := tracing.Start(ctx, tracing.SpanPrefixRegistry+"retrieve_all",
		attribute.String(tracing.AttrEntityKind, c.kind),
		attribute.String(tracing.AttrSlotKey, c.key),
	)
	defer func() { tracing.End(span, err) }()

	serialized, found, err := c.store.Get(ctx, c.key)
	if err != nil {
		log.ErrorErr(log.CatStorage, "Error when reading from slot", err, "key", c.key)
		return 0, fmt.Errorf("read slot %q: %w", c.key, err)
	}
	if !found || serialized == "" {
		return 0, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(serialized), &raw); err != nil {
		log.ErrorErr(log.CatStorage, "Error when parsing slot", err, "key", c.key)
		return 0, fmt.Errorf("parse slot %q: %w", c.key, err)
	}

	highest, skipped := 0, 0
	for key, rec := range raw {
		e, ok := decode(rec)
		if !ok {
			skipped++
			continue
		}
		if key != strconv.Itoa(e.ID()) {
			log.Warn(log.CatStorage, "Slot key does not match record id", "key", key, "id", e.ID())
		}
		c.instances[e.ID()] = e
		highest = max(highest, e.ID())
		n++
	}
	c.nextID = max(c.nextID, highest+1)

	span.SetAttributes(
		attribute.Int(tracing.AttrEntityCount, n),
		attribute.Int(tracing.AttrEntitySkips, skipped),
		attribute.Int(tracing.AttrEntityNextID, c.nextID),
	)
	log.Info(log.CatStorage, fmt.Sprintf("%d %s records loaded", n, c.kind), "key", c.key, "skipped", skipped)
	return n, nil
}

// persist writes the whole collection to the slot as one JSON object keyed by
// decimal id.
func (c *collection[E]) persist(ctx context.Context, encode func(E) any) (n int, err error) {
	ctx, span := tracing.Start(ctx, tracing.SpanPrefixRegistry+"persist",
		attribute.String(tracing.AttrEntityKind, c.kind),
		attribute.String(tracing.AttrSlotKey, c.key),
	)
	defer func() { tracing.End(span, err) }()

	records := make(map[string]any, len(c.instances))
	for id, e := range c.instances {
		records[strconv.Itoa(id)] = encode(e)
	}
	data, err := json.Marshal(records)
	if err != nil {
		log.ErrorErr(log.CatStorage, "Error when serializing records", err, "key", c.key)
		return 0, fmt.Errorf("serialize %s records: %w", c.kind, err)
	}
	if err := c.store.Set(ctx, c.key, string(data)); err != nil {
		log.ErrorErr(log.CatStorage, "Error when writing to slot", err, "key", c.key)
		return 0, fmt.Errorf("write slot %q: %w", c.key, err)
	}

	span.SetAttributes(
		attribute.Int(tracing.AttrEntityCount, len(records)),
		attribute.Int(tracing.AttrSlotBytes, len(data)),
	)
	log.Info(log.CatStorage, fmt.Sprintf("%d %s records saved", len(records), c.kind), "key", c.key)
	return len(records), nil
}

// clear empties the collection and writes an empty object to the slot.
func (c *collection[E]) clear(ctx context.Context) error {
	ids := slices.Collect(maps.Keys(c.instances))
	c.instances = make(map[int]E)
	c.nextID = 1
	for _, id := range ids {
		c.publish(pubsub.DeletedEvent, id)
	}
	if err := c.store.Set(ctx, c.key, "{}"); err != nil {
		log.ErrorErr(log.CatStorage, "Error when clearing slot", err, "key", c.key)
		return fmt.Errorf("clear slot %q: %w", c.key, err)
	}
	log.Info(log.CatStorage, "All data cleared", "key", c.key)
	return nil
}
