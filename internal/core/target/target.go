// Package target identifies the entity a promotion override or notification
// points at. The kind is an explicit tag rather than a type name.
package target

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is the variant tag of a Target.
type Kind string

const (
	KindStore   Kind = "store"
	KindProduct Kind = "product"
	KindCourier Kind = "courier"
	KindUser    Kind = "user"
)

// ErrInvalidTarget is returned when a target string or kind cannot be parsed.
var ErrInvalidTarget = errors.New("invalid target")

// Target is one of Store, Product, Courier or User.
type Target struct {
	Kind Kind   `json:"kind" yaml:"kind"`
	ID   string `json:"id" yaml:"id"`
}

func Store(id string) Target   { return Target{Kind: KindStore, ID: id} }
func Product(id string) Target { return Target{Kind: KindProduct, ID: id} }
func Courier(id string) Target { return Target{Kind: KindCourier, ID: id} }
func User(id string) Target    { return Target{Kind: KindUser, ID: id} }

// Valid reports whether the kind is known and the id is set.
func (t Target) Valid() bool {
	switch t.Kind {
	case KindStore, KindProduct, KindCourier, KindUser:
		return t.ID != ""
	}
	return false
}

// String renders the target as "kind:id".
func (t Target) String() string {
	return string(t.Kind) + ":" + t.ID
}

// Parse reads the "kind:id" form produced by String.
func Parse(s string) (Target, error) {
	kind, id, ok := strings.Cut(s, ":")
	t := Target{Kind: Kind(kind), ID: id}
	if !ok || !t.Valid() {
		return Target{}, fmt.Errorf("%w: %q", ErrInvalidTarget, s)
	}
	return t, nil
}
