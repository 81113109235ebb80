package schema

import (
	"fmt"
	"sync"

	"github.com/ipld/go-ipld-prime"
	"github.com/ipld/go-ipld-prime/schema"
	"github.com/storacha/go-cacao/did"
)

// Loader compiles a schema lazily, once per DID representation. The schema
// source refers to the DID type, which is appended according to the
// representation.
type Loader struct {
	src  []byte
	once [2]sync.Once
	ts   [2]*schema.TypeSystem
	err  [2]error
}

func NewLoader(src []byte) *Loader {
	return &Loader{src: src}
}

// TypeSystem returns the compiled type system for a representation.
func (l *Loader) TypeSystem(rep did.Representation) (*schema.TypeSystem, error) {
	if rep != did.Bytes && rep != did.String {
		return nil, fmt.Errorf("unknown DID representation: %d", int(rep))
	}
	i := int(rep)
	l.once[i].Do(func() {
		decl, err := DIDType(rep)
		if err != nil {
			l.err[i] = err
			return
		}
		src := append(append([]byte{}, l.src...), "\n"+decl+"\n"...)
		l.ts[i], l.err[i] = ipld.LoadSchemaBytes(src)
	})
	return l.ts[i], l.err[i]
}

// Type returns the named type compiled for a representation. It panics if the
// schema cannot be loaded, since schemas are embedded at build time.
func (l *Loader) Type(rep did.Representation, name string) schema.Type {
	ts, err := l.TypeSystem(rep)
	if err != nil {
		panic(fmt.Errorf("failed to load IPLD schema: %w", err))
	}
	typ := ts.TypeByName(name)
	if typ == nil {
		panic(fmt.Errorf("type %q not found in IPLD schema", name))
	}
	return typ
}
