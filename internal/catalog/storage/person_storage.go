package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/zjrosen/marquee/internal/catalog/domain"
	"github.com/zjrosen/marquee/internal/log"
	"github.com/zjrosen/marquee/internal/pubsub"
)

// PersonUpdate carries the fields to change on one person. A nil field is left as is.
type PersonUpdate struct {
	PersonID int
	Name     *string
}

// PersonStorage is the registry of persons, persisted under PersonsKey.
type PersonStorage struct {
	collection[*domain.Person]
}

var _ domain.Container = (*PersonStorage)(nil)

// NewPersonStorage creates an empty registry backed by store.
func NewPersonStorage(store SlotStore, opts ...Option) *PersonStorage {
	return &PersonStorage{collection: newCollection[*domain.Person](KindPerson, PersonsKey, store, opts)}
}

// Add validates slots, registers the new person and returns it. On a violation
// nothing is registered and the violation is returned.
func (s *PersonStorage) Add(ctx context.Context, slots domain.PersonSlots) (*domain.Person, error) {
	p, err := domain.NewPerson(slots, s)
	if err != nil {
		log.Warn(log.CatModel, "Person not created", "personId", slots.PersonID, "error", err)
		return nil, err
	}
	s.insert(p)
	log.Info(log.CatStorage, fmt.Sprintf("%s created", p))
	return p, nil
}

// Update applies the provided fields to a registered person. If a field is
// rejected, the person is restored to its state before the call.
func (s *PersonStorage) Update(ctx context.Context, upd PersonUpdate) error {
	p, ok := s.instances[upd.PersonID]
	if !ok {
		log.Info(log.CatStorage, fmt.Sprintf("There is no person with id %d to update", upd.PersonID))
		return fmt.Errorf("update person %d: %w", upd.PersonID, ErrNotFound)
	}
	snapshot := p.Clone()

	var changed []string
	if upd.Name != nil {
		if v := domain.CheckName(*upd.Name); !v.Ok() || v.Value != p.Name() {
			if err := p.SetName(*upd.Name); err != nil {
				p.Restore(snapshot)
				log.Warn(log.CatModel, "Person update rolled back", "personId", upd.PersonID, "error", err)
				return err
			}
			changed = append(changed, "name")
		}
	}

	logChanges("person", upd.PersonID, changed)
	if len(changed) > 0 {
		s.publish(pubsub.UpdatedEvent, upd.PersonID)
	}
	return nil
}

// Destroy removes the person with the given id. onDestroy, if non-nil, is
// called with the person before removal so that references to it can be
// resolved first.
func (s *PersonStorage) Destroy(ctx context.Context, id int, onDestroy func(*domain.Person)) error {
	return s.destroy(id, onDestroy)
}

// DestroyAll removes every person matching pred (all when pred is nil) and
// returns how many were removed.
func (s *PersonStorage) DestroyAll(ctx context.Context, pred func(*domain.Person) bool) int {
	return s.destroyAll(pred)
}

// RetrieveAll loads persons from the slot store. Invalid records are skipped.
func (s *PersonStorage) RetrieveAll(ctx context.Context) (int, error) {
	return s.retrieveAll(ctx, func(raw json.RawMessage) (*domain.Person, bool) {
		var rec domain.PersonRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			log.Warn(log.CatModel, "Malformed person record skipped", "error", err)
			return nil, false
		}
		p := domain.DeserializePerson(rec)
		return p, p != nil
	})
}

// Persist writes all persons to the slot store and returns how many were written.
func (s *PersonStorage) Persist(ctx context.Context) (int, error) {
	return s.persist(ctx, func(p *domain.Person) any { return p.ToRecord() })
}

// Clear removes every person and empties the slot.
func (s *PersonStorage) Clear(ctx context.Context) error {
	return s.clear(ctx)
}

func logChanges(kind string, id int, changed []string) {
	if len(changed) == 0 {
		log.Info(log.CatStorage, fmt.Sprintf("No property value changed for %s %d!", kind, id))
		return
	}
	log.Info(log.CatStorage, fmt.Sprintf("Properties %v modified for %s %d", changed, kind, id))
}
