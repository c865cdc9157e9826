package domain

import (
	"fmt"
	"strings"

	"github.com/zjrosen/marquee/internal/domain/violation"
	"github.com/zjrosen/marquee/internal/log"
)

// PersonSlots is the raw field bag used to create a Person.
type PersonSlots struct {
	PersonID string
	Name     string
}

// PersonRecord is the persisted form of a Person.
type PersonRecord struct {
	PersonID int    `json:"personId"`
	Name     string `json:"name"`
}

// Slots converts a persisted record back into raw creation slots.
func (r PersonRecord) Slots() PersonSlots {
	return PersonSlots{PersonID: itoaOrEmpty(r.PersonID), Name: r.Name}
}

// Person is a director or actor.
// All fields are unexported; the name can only change through SetName.
type Person struct {
	id   int
	name string
}

// CheckPersonID validates the format of a person id.
func CheckPersonID(raw string) violation.Violation {
	return checkID(raw, "person", "personId")
}

// CheckPersonIDAsID validates a person id for creation: it must not be registered yet.
func CheckPersonIDAsID(raw string, people Container) violation.Violation {
	return checkIDAsID(raw, "person", "personId", people)
}

// CheckPersonIDAsIDRef validates a person id used as a reference: it must be registered.
func CheckPersonIDAsIDRef(raw string, people Container) violation.Violation {
	return checkIDAsIDRef(raw, "person", "personId", people)
}

// CheckName validates a person's name.
func CheckName(raw string) violation.Violation {
	name := strings.TrimSpace(raw)
	if name == "" {
		return violation.Mandatory("The person's name is required!")
	}
	return violation.OKWith(name)
}

// NewPerson validates slots and creates a Person. When people is non-nil the id
// must not already be registered in it. The first violation found is returned.
func NewPerson(slots PersonSlots, people Container) (*Person, error) {
	idCheck := CheckPersonIDAsID(slots.PersonID, people)
	if !idCheck.Ok() {
		return nil, idCheck
	}
	p := &Person{id: idCheck.Value.(int)}
	if err := p.SetName(slots.Name); err != nil {
		return nil, err
	}
	return p, nil
}

// DeserializePerson rebuilds a Person from its record. Invalid records are
// logged and yield nil.
func DeserializePerson(rec PersonRecord) *Person {
	p, err := NewPerson(rec.Slots(), nil)
	if err != nil {
		log.Warn(log.CatModel, "Invalid person record skipped", "personId", rec.PersonID, "error", err)
		return nil
	}
	return p
}

// ID returns the person id.
func (p *Person) ID() int { return p.id }

// Name returns the trimmed name.
func (p *Person) Name() string { return p.name }

// SetName validates and assigns a new name.
func (p *Person) SetName(raw string) error {
	v := CheckName(raw)
	if !v.Ok() {
		return v
	}
	p.name = v.Value.(string)
	return nil
}

// SetPersonID assigns the id of a person that has none yet. Once set, the id is frozen.
func (p *Person) SetPersonID(raw string) error {
	v := CheckPersonID(raw)
	if !v.Ok() {
		return v
	}
	id := v.Value.(int)
	if p.id != 0 && p.id != id {
		return violation.Frozen("The person's personId (%d) cannot be changed to %d!", p.id, id)
	}
	p.id = id
	return nil
}

// Clone returns an independent copy.
func (p *Person) Clone() *Person {
	c := *p
	return &c
}

// Restore overwrites p with snapshot, keeping p's identity.
func (p *Person) Restore(snapshot *Person) {
	*p = *snapshot
}

// ToRecord converts the person to its persisted form.
func (p *Person) ToRecord() PersonRecord {
	return PersonRecord{PersonID: p.id, Name: p.name}
}

func (p *Person) String() string {
	return fmt.Sprintf("Person{personId: %d, name: %s}", p.id, p.name)
}
