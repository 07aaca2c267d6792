package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ItemID is the canonical identity of an item: namespace, name and an
// optional numeric variant. It is comparable and safe to use as a map key.
type ItemID struct {
	Namespace string
	Name      string
	Variant   int
}

// String renders the id as "namespace:name" or "namespace:name:variant".
func (id ItemID) String() string {
	if id.Variant != 0 {
		return fmt.Sprintf("%s:%s:%d", id.Namespace, id.Name, id.Variant)
	}
	return id.Namespace + ":" + id.Name
}

// IsZero reports whether the id is unset.
func (id ItemID) IsZero() bool {
	return id.Namespace == "" && id.Name == ""
}

// ItemRef is a parsed item reference from a catalog record.
// Value is the explicit per-item contribution from a "/value" suffix.
type ItemRef struct {
	ID       ItemID
	Value    float64
	HasValue bool
}

// Item reference parse failures.
var (
	ErrEmptyItemRef     = errors.New("empty item reference")
	ErrMissingNamespace = errors.New("item reference is missing a namespace")
	ErrBadVariant       = errors.New("item reference has an invalid variant")
	ErrBadValue         = errors.New("item reference has an invalid custom value")
)

// ParseItemRef parses "namespace:name[:variant][/value]".
func ParseItemRef(raw string) (ItemRef, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ItemRef{}, ErrEmptyItemRef
	}

	var ref ItemRef
	name, value, hasValue := strings.Cut(raw, "/")
	if hasValue {
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return ItemRef{}, fmt.Errorf("%w: %q", ErrBadValue, raw)
		}
		ref.Value = v
		ref.HasValue = true
	}

	parts := strings.Split(name, ":")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return ItemRef{}, fmt.Errorf("%w: %q (use names like \"minecraft:golden_apple\")", ErrMissingNamespace, raw)
	}
	if len(parts) > 3 {
		return ItemRef{}, fmt.Errorf("%w: %q", ErrBadVariant, raw)
	}
	ref.ID = ItemID{Namespace: parts[0], Name: parts[1]}

	if len(parts) == 3 {
		// Base prefix 0 accepts decimal, hex (0x) and octal forms.
		v, err := strconv.ParseInt(parts[2], 0, 32)
		if err != nil {
			return ItemRef{}, fmt.Errorf("%w: %q", ErrBadVariant, raw)
		}
		ref.ID.Variant = int(v)
	}

	return ref, nil
}

// MustItemID parses a bare item id and panics on failure. Intended for
// fixtures and constants.
func MustItemID(raw string) ItemID {
	ref, err := ParseItemRef(raw)
	if err != nil {
		panic(err)
	}
	return ref.ID
}
