package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestEntryVersion_Clone_DropsChildren(t *testing.T) {
	t.Parallel()

	v := &EntryVersion{
		ID:             uuid.New(),
		EntryID:        uuid.New(),
		Number:         3,
		Text:           "abandon",
		Senses:         []*Sense{{ID: uuid.New()}},
		Pronunciations: []*Pronunciation{{ID: uuid.New()}},
	}

	c := v.Clone().(*EntryVersion)
	if c == v {
		t.Fatal("clone must be a distinct instance")
	}
	if c.ID != v.ID || c.EntryID != v.EntryID || c.Number != 3 || c.Text != "abandon" {
		t.Errorf("row fields not copied: %+v", c)
	}
	if c.Senses != nil || c.Pronunciations != nil {
		t.Error("children must not be carried over")
	}
	if len(v.Senses) != 1 {
		t.Error("original must keep its children")
	}
}

func TestEntryVersion_RootLink(t *testing.T) {
	t.Parallel()

	root := uuid.New()
	v := &EntryVersion{}
	v.SetRootID(root)
	v.SetVersionNumber(2)

	if v.EntryID != root || v.RootID() != root {
		t.Errorf("root link = %s, want %s", v.RootID(), root)
	}
	if v.VersionNumber() != 2 {
		t.Errorf("number = %d, want 2", v.VersionNumber())
	}
	if v.EntityKind() != KindEntryVersion {
		t.Errorf("kind = %q", v.EntityKind())
	}
}

func TestSense_Owner(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	s := &Sense{}
	s.SetOwnerID(owner)
	if s.VersionID != owner || s.OwnerID() != owner {
		t.Errorf("owner = %s, want %s", s.OwnerID(), owner)
	}
}
