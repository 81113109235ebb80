package ipld

import (
	"fmt"
	"slices"

	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/ipld/go-ipld-prime/node/basicnode"
)

// CompareKeys orders map keys the way DAG-CBOR does: shorter keys first, keys
// of equal length bytewise.
func CompareKeys(a, b string) int {
	if len(a) != len(b) {
		return len(a) - len(b)
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// SortKeys sorts keys in place with [CompareKeys].
func SortKeys(keys []string) {
	slices.SortFunc(keys, CompareKeys)
}

// SortNode returns a copy of the node in which every map (at any depth) has
// its entries in [CompareKeys] order. Free form values such as caveats and
// facts have no declared field order, so they are normalised with this before
// encoding.
func SortNode(n datamodel.Node) (datamodel.Node, error) {
	switch n.Kind() {
	case datamodel.Kind_Map:
		type entry struct {
			key string
			val datamodel.Node
		}
		var entries []entry
		it := n.MapIterator()
		for !it.Done() {
			k, v, err := it.Next()
			if err != nil {
				return nil, err
			}
			ks, err := k.AsString()
			if err != nil {
				return nil, fmt.Errorf("map key: %w", err)
			}
			sv, err := SortNode(v)
			if err != nil {
				return nil, fmt.Errorf("map value %q: %w", ks, err)
			}
			entries = append(entries, entry{ks, sv})
		}
		slices.SortFunc(entries, func(a, b entry) int { return CompareKeys(a.key, b.key) })

		nb := basicnode.Prototype.Map.NewBuilder()
		ma, err := nb.BeginMap(int64(len(entries)))
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if err := ma.AssembleKey().AssignString(e.key); err != nil {
				return nil, err
			}
			if err := ma.AssembleValue().AssignNode(e.val); err != nil {
				return nil, err
			}
		}
		if err := ma.Finish(); err != nil {
			return nil, err
		}
		return nb.Build(), nil

	case datamodel.Kind_List:
		nb := basicnode.Prototype.List.NewBuilder()
		la, err := nb.BeginList(n.Length())
		if err != nil {
			return nil, err
		}
		it := n.ListIterator()
		for !it.Done() {
			_, v, err := it.Next()
			if err != nil {
				return nil, err
			}
			sv, err := SortNode(v)
			if err != nil {
				return nil, err
			}
			if err := la.AssembleValue().AssignNode(sv); err != nil {
				return nil, err
			}
		}
		if err := la.Finish(); err != nil {
			return nil, err
		}
		return nb.Build(), nil
	}
	return n, nil
}
