package datamodel

import (
	// to use go:embed
	_ "embed"
	"fmt"
	"sync"

	"github.com/ipld/go-ipld-prime"
	"github.com/ipld/go-ipld-prime/schema"
	cacaoipld "github.com/storacha/go-cacao/core/ipld"
)

//go:embed failure.ipldsch
var failureSchema []byte

var (
	once sync.Once
	typ  schema.Type
)

// FailureType is the schema type of a rendered failure.
func FailureType() schema.Type {
	once.Do(func() {
		ts, err := ipld.LoadSchemaBytes(failureSchema)
		if err != nil {
			panic(fmt.Errorf("loading failure schema: %w", err))
		}
		typ = ts.TypeByName("Failure")
	})
	return typ
}

// FailureModel is a failure as printed by the command line tools. Field names
// the claim that caused it, when known.
type FailureModel struct {
	Name    *string
	Message string
	Field   *string
	Stack   *string
}

func (f FailureModel) Error() string {
	return f.Message
}

func (f *FailureModel) ToIPLD() (ipld.Node, error) {
	return cacaoipld.WrapWithRecovery(f, FailureType())
}

// Bind reads a failure back from a rendered node. Unknown keys are ignored and
// values of the wrong kind are skipped.
func Bind(n ipld.Node) FailureModel {
	f := FailureModel{}
	if s, ok := lookupString(n, "message"); ok {
		f.Message = s
	}
	for key, dst := range map[string]**string{"name": &f.Name, "field": &f.Field, "stack": &f.Stack} {
		if s, ok := lookupString(n, key); ok {
			*dst = &s
		}
	}
	return f
}

func lookupString(n ipld.Node, key string) (string, bool) {
	v, err := n.LookupByString(key)
	if err != nil || v.IsAbsent() || v.IsNull() {
		return "", false
	}
	s, err := v.AsString()
	if err != nil {
		return "", false
	}
	return s, true
}
