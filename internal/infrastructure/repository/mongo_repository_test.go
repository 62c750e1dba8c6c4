package repository

import (
	"errors"
	"testing"

	"storefront-ingest/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseObjectID(t *testing.T) {
	id := primitive.NewObjectID()

	got, err := parseObjectID(" " + id.Hex() + " ")
	if err != nil || got != id {
		t.Fatalf("expected %s got %s %v", id.Hex(), got.Hex(), err)
	}

	for _, bad := range []string{"", "abc", "zzzzzzzzzzzzzzzzzzzzzzzz"} {
		if _, err := parseObjectID(bad); !errors.Is(err, domain.ErrInvalidIdentifier) {
			t.Fatalf("expected invalid identifier for %q got %v", bad, err)
		}
	}
}

func TestParseObjectIDsRejectsAnyMalformed(t *testing.T) {
	ids, err := parseObjectIDs([]string{primitive.NewObjectID().Hex(), primitive.NewObjectID().Hex()})
	if err != nil || len(ids) != 2 {
		t.Fatalf("expected 2 ids got %v %v", ids, err)
	}
	if _, err := parseObjectIDs([]string{primitive.NewObjectID().Hex(), "bad"}); !errors.Is(err, domain.ErrInvalidIdentifier) {
		t.Fatalf("expected invalid identifier got %v", err)
	}
}
