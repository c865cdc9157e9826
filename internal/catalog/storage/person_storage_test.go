package storage

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/marquee/internal/catalog/domain"
	"github.com/zjrosen/marquee/internal/domain/violation"
)

func TestPersonStorage_Add(t *testing.T) {
	ctx := context.Background()
	people := NewPersonStorage(newMemStore())

	p, err := people.Add(ctx, domain.PersonSlots{PersonID: "3", Name: "  Quentin Terrentino "})
	require.NoError(t, err)
	require.Equal(t, 3, p.ID())
	require.Equal(t, "Quentin Terrentino", p.Name())
	require.True(t, people.Contains(3))

	_, err = people.Add(ctx, domain.PersonSlots{PersonID: "3", Name: "Someone Else"})
	require.ErrorIs(t, err, violation.NotUnique(""))
	got, _ := people.Get(3)
	require.Equal(t, "Quentin Terrentino", got.Name(), "duplicate add leaves the original untouched")

	_, err = people.Add(ctx, domain.PersonSlots{PersonID: "4", Name: " "})
	require.ErrorIs(t, err, violation.Mandatory(""))
	require.False(t, people.Contains(4))
}

func TestPersonStorage_Update(t *testing.T) {
	ctx := context.Background()
	people := NewPersonStorage(newMemStore())
	addPeople(t, people, "Stephen Frears")
	p, _ := people.Get(1)

	name := "Stephen Arthur Frears"
	require.NoError(t, people.Update(ctx, PersonUpdate{PersonID: 1, Name: &name}))
	require.Equal(t, name, p.Name())

	same := "  Stephen Arthur Frears"
	require.NoError(t, people.Update(ctx, PersonUpdate{PersonID: 1, Name: &same}), "unchanged values are accepted")

	blank := ""
	err := people.Update(ctx, PersonUpdate{PersonID: 1, Name: &blank})
	kind, ok := violation.KindOf(err)
	require.True(t, ok)
	require.Equal(t, violation.MandatoryValue, kind)
	require.Equal(t, name, p.Name(), "rejected update restores the person")

	err = people.Update(ctx, PersonUpdate{PersonID: 9, Name: &name})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPersonStorage_DestroyCallsHookFirst(t *testing.T) {
	ctx := context.Background()
	people := NewPersonStorage(newMemStore())
	addPeople(t, people, "Uma Thurman")

	var seen *domain.Person
	err := people.Destroy(ctx, 1, func(p *domain.Person) {
		require.True(t, people.Contains(p.ID()), "hook runs while the person is still registered")
		seen = p
	})
	require.NoError(t, err)
	require.NotNil(t, seen)
	require.Equal(t, "Uma Thurman", seen.Name())
	require.False(t, people.Contains(1))
}

func TestPersonStorage_DestroyAll(t *testing.T) {
	ctx := context.Background()
	people := NewPersonStorage(newMemStore())
	addPeople(t, people, "Stephen Frears", "George Lucas", "Quentin Terrentino", "Uma Thurman")

	n := people.DestroyAll(ctx, func(p *domain.Person) bool { return p.ID()%2 == 0 })
	require.Equal(t, 2, n)
	require.Equal(t, 2, people.Len())
	require.Equal(t, 4, people.NextID())

	require.Equal(t, 2, people.DestroyAll(ctx, nil))
	require.Equal(t, 1, people.NextID())
}

func TestPersonStorage_RetrieveAllSkipsInvalidRecords(t *testing.T) {
	store := newMemStore()
	store.slots[PersonsKey] = `{
		"1": {"personId": 1, "name": "Stephen Frears"},
		"2": {"personId": 0, "name": "Zero"},
		"3": {"personId": 3, "name": ""},
		"4": "not an object",
		"8": {"personId": 8, "name": "Keanu Reeves"}
	}`
	people := NewPersonStorage(store)

	n, err := people.RetrieveAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.True(t, people.Contains(1))
	require.True(t, people.Contains(8))
	require.Equal(t, 9, people.NextID())
}

func TestPersonStorage_PersistRetrieveRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		store := newMemStore()
		people := NewPersonStorage(store)

		ids := rapid.SliceOfNDistinct(rapid.IntRange(1, 500), 0, 20, rapid.ID[int]).Draw(t, "ids")
		for _, id := range ids {
			name := rapid.StringMatching(`[A-Z][a-z]{1,10} [A-Z][a-z]{1,10}`).Draw(t, "name")
			_, err := people.Add(ctx, domain.PersonSlots{PersonID: strconv.Itoa(id), Name: name})
			require.NoError(t, err)
		}

		n, err := people.Persist(ctx)
		require.NoError(t, err)
		require.Equal(t, len(ids), n)

		reloaded := NewPersonStorage(store)
		_, err = reloaded.RetrieveAll(ctx)
		require.NoError(t, err)
		require.Equal(t, people.Len(), reloaded.Len())
		require.Equal(t, people.NextID(), reloaded.NextID())
		for _, p := range people.All() {
			got, ok := reloaded.Get(p.ID())
			require.True(t, ok)
			require.Equal(t, p.ToRecord(), got.ToRecord())
		}
	})
}

func TestPersonStorage_NextIDAfterDestroyingHighest(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		people := NewPersonStorage(newMemStore())

		ids := rapid.SliceOfNDistinct(rapid.IntRange(1, 200), 1, 15, rapid.ID[int]).Draw(t, "ids")
		for _, id := range ids {
			_, err := people.Add(ctx, domain.PersonSlots{PersonID: strconv.Itoa(id), Name: "Person"})
			require.NoError(t, err)
		}

		highest := people.NextID() - 1
		require.True(t, people.Contains(highest))
		require.NoError(t, people.Destroy(ctx, highest, nil))

		want := 1
		for _, p := range people.All() {
			want = max(want, p.ID()+1)
		}
		require.Equal(t, want, people.NextID())
	})
}
