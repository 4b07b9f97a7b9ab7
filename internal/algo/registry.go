// Package algo implements the algorithm registry (spec component C1): a
// closed, immutable-after-init set of named hash algorithms, each exposing a
// uniform incremental digest abstraction over heterogeneous implementations
// (stdlib crypto/*, golang.org/x/crypto/{sha3,blake2b,blake2s},
// github.com/zeebo/blake3, github.com/zeebo/xxh3).
package algo

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/sha3"

	"github.com/zeebo/blake3"
	"github.com/zeebo/xxh3"
)

// Descriptor describes a registered algorithm. Immutable once returned by
// the registry.
type Descriptor struct {
	Name          string // canonical lowercase identifier, e.g. "sha3-256"
	OutputBits    int
	Cryptographic bool
	PostQuantum   bool // true iff the algorithm belongs to the SHA-3 family
}

// HexLen is the number of hex characters a digest from this algorithm
// produces: OutputBits/8 raw bytes, each rendered as two hex digits.
func (d Descriptor) HexLen() int { return d.OutputBits / 4 }

// Digest is a single-use incremental digest: Update any number of times,
// then Finalize exactly once. Calling Update after Finalize, or Finalize
// twice, panics — the digest object is consumed by finalization, per the
// "owned-once finalize" design.
type Digest interface {
	Update(p []byte)
	Finalize() []byte
}

// hashDigest adapts a stdlib-shaped hash.Hash to the Digest interface with a
// runtime finalized guard (DESIGN NOTES: "a runtime finalized guard that
// rejects further update calls").
type hashDigest struct {
	h         hash.Hash
	finalized bool
}

func (d *hashDigest) Update(p []byte) {
	if d.finalized {
		panic("algo: Update called after Finalize")
	}
	d.h.Write(p) //nolint:errcheck // hash.Hash.Write never returns an error
}

func (d *hashDigest) Finalize() []byte {
	if d.finalized {
		panic("algo: Finalize called twice")
	}
	d.finalized = true
	return d.h.Sum(nil)
}

func newHashDigest(h hash.Hash) Digest {
	return &hashDigest{h: h}
}

// entry pairs a descriptor with its digest factory. The registry is a slice,
// not a map, so List() can return registration order (spec: "stable order:
// insertion order of registration") while name lookup still uses a map index.
type entry struct {
	desc    Descriptor
	factory func() Digest
}

// Registry is the closed, immutable-after-construction set of algorithms.
type Registry struct {
	order  []entry
	byName map[string]int
}

// New builds the standard registry. There is no plugin mechanism; the set
// below is exhaustive and fixed for the process lifetime.
func New() *Registry {
	r := &Registry{byName: make(map[string]int)}

	r.register(Descriptor{Name: "md5", OutputBits: 128, Cryptographic: true}, func() Digest {
		return newHashDigest(md5.New())
	})
	r.register(Descriptor{Name: "sha1", OutputBits: 160, Cryptographic: true}, func() Digest {
		return newHashDigest(sha1.New())
	})
	r.register(Descriptor{Name: "sha256", OutputBits: 256, Cryptographic: true}, func() Digest {
		return newHashDigest(sha256.New())
	})
	r.register(Descriptor{Name: "sha384", OutputBits: 384, Cryptographic: true}, func() Digest {
		return newHashDigest(sha512.New384())
	})
	r.register(Descriptor{Name: "sha512", OutputBits: 512, Cryptographic: true}, func() Digest {
		return newHashDigest(sha512.New())
	})

	r.register(Descriptor{Name: "sha3-224", OutputBits: 224, Cryptographic: true, PostQuantum: true}, func() Digest {
		return newHashDigest(sha3.New224())
	})
	r.register(Descriptor{Name: "sha3-256", OutputBits: 256, Cryptographic: true, PostQuantum: true}, func() Digest {
		return newHashDigest(sha3.New256())
	})
	r.register(Descriptor{Name: "sha3-384", OutputBits: 384, Cryptographic: true, PostQuantum: true}, func() Digest {
		return newHashDigest(sha3.New384())
	})
	r.register(Descriptor{Name: "sha3-512", OutputBits: 512, Cryptographic: true, PostQuantum: true}, func() Digest {
		return newHashDigest(sha3.New512())
	})

	r.register(Descriptor{Name: "blake2b", OutputBits: 512, Cryptographic: true}, func() Digest {
		h, err := blake2b.New512(nil)
		if err != nil {
			panic(err) // nil key never errors
		}
		return newHashDigest(h)
	})
	r.register(Descriptor{Name: "blake2s", OutputBits: 256, Cryptographic: true}, func() Digest {
		h, err := blake2s.New256(nil)
		if err != nil {
			panic(err) // nil key never errors
		}
		return newHashDigest(h)
	})
	r.register(Descriptor{Name: "blake3", OutputBits: 256, Cryptographic: true}, func() Digest {
		return newHashDigest(blake3.New())
	})

	r.register(Descriptor{Name: "xxh3", OutputBits: 64, Cryptographic: false}, func() Digest {
		return newHashDigest(xxh3.New())
	})
	r.register(Descriptor{Name: "xxh128", OutputBits: 128, Cryptographic: false}, func() Digest {
		return newHashDigest(xxh3.New128())
	})

	return r
}

func (r *Registry) register(d Descriptor, factory func() Digest) {
	r.byName[d.Name] = len(r.order)
	r.order = append(r.order, entry{desc: d, factory: factory})
}

// ErrUnknownAlgorithm is returned by Get/Descriptor for unregistered names.
type ErrUnknownAlgorithm struct{ Name string }

func (e *ErrUnknownAlgorithm) Error() string {
	return fmt.Sprintf("unknown algorithm %q", e.Name)
}

// normalize lowercases input for case-insensitive lookup; canonical stored
// names are already lowercase with hyphens.
func normalize(name string) string { return strings.ToLower(strings.TrimSpace(name)) }

// Get constructs a fresh Digest object for the named algorithm. Name
// matching is case-insensitive.
func (r *Registry) Get(name string) (Digest, error) {
	i, ok := r.byName[normalize(name)]
	if !ok {
		return nil, &ErrUnknownAlgorithm{Name: name}
	}
	return r.order[i].factory(), nil
}

// Descriptor returns the descriptor for a registered algorithm name.
func (r *Registry) Descriptor(name string) (Descriptor, error) {
	i, ok := r.byName[normalize(name)]
	if !ok {
		return Descriptor{}, &ErrUnknownAlgorithm{Name: name}
	}
	return r.order[i].desc, nil
}

// List returns all registered descriptors in registration order.
func (r *Registry) List() []Descriptor {
	out := make([]Descriptor, len(r.order))
	for i, e := range r.order {
		out[i] = e.desc
	}
	return out
}

// ByOutputBits infers candidate algorithm names from a hex digest's length,
// for database loaders (e.g. hashdeep) that must recover the algorithm from
// hex length alone. Multiple algorithms can share an output size (sha256 and
// blake2s, sha512 and blake2b, ...), so all matches are returned; callers
// typically disambiguate using other context (a declared header, say).
func (r *Registry) ByOutputBits(hexDigest string) []Descriptor {
	hexLen := len(hexDigest)
	var out []Descriptor
	for _, e := range r.order {
		if e.desc.HexLen() == hexLen {
			out = append(out, e.desc)
		}
	}
	return out
}
