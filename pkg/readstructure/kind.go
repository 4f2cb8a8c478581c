package readstructure

import (
	"fmt"
	"sort"
	"sync"
)

// Kind is the type of bases in a read segment. Its underlying value is the
// single uppercase character used for it in read structure strings.
type Kind byte

// Built-in segment kinds.
const (
	// Template bases are reads of the template (genomic DNA, RNA, etc).
	Template Kind = 'T'
	// SampleBarcode bases are an index sequence identifying the sample.
	SampleBarcode Kind = 'B'
	// MolecularBarcode bases identify the unique source molecule (a UMI).
	MolecularBarcode Kind = 'M'
	// Skip bases should be ignored, e.g. monotemplate sequence from library prep.
	Skip Kind = 'S'
	// CellularBarcode bases identify the cell a molecule came from.
	CellularBarcode Kind = 'C'
)

var (
	kindMu    sync.RWMutex
	kindNames = map[Kind]string{
		Template:         "template",
		SampleBarcode:    "sample barcode",
		MolecularBarcode: "molecular barcode",
		Skip:             "skip",
		CellularBarcode:  "cellular barcode",
	}
)

// RegisterKind adds a segment kind for the given code. Codes must be
// uppercase ASCII letters that are not already registered.
func RegisterKind(code byte, name string) (Kind, error) {
	if code < 'A' || code > 'Z' {
		return 0, &KindError{Value: string(rune(code))}
	}

	kindMu.Lock()
	defer kindMu.Unlock()

	k := Kind(code)
	if existing, ok := kindNames[k]; ok {
		return 0, fmt.Errorf("%w: %c is %s", ErrKindConflict, code, existing)
	}
	kindNames[k] = name
	return k, nil
}

// KindFromByte resolves a segment kind from its code.
func KindFromByte(c byte) (Kind, error) {
	kindMu.RLock()
	_, ok := kindNames[Kind(c)]
	kindMu.RUnlock()
	if !ok {
		return 0, &KindError{Value: string(rune(c))}
	}
	return Kind(c), nil
}

// ParseKind resolves a segment kind from a one character string.
func ParseKind(s string) (Kind, error) {
	if len(s) != 1 {
		return 0, &KindError{Value: s}
	}
	return KindFromByte(s[0])
}

// Kinds returns all registered kinds ordered by code.
func Kinds() []Kind {
	kindMu.RLock()
	kinds := make([]Kind, 0, len(kindNames))
	for k := range kindNames {
		kinds = append(kinds, k)
	}
	kindMu.RUnlock()

	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Code returns the character representing k in a read structure.
func (k Kind) Code() byte {
	return byte(k)
}

// String returns the human readable name of k.
func (k Kind) String() string {
	kindMu.RLock()
	name, ok := kindNames[k]
	kindMu.RUnlock()
	if !ok {
		return fmt.Sprintf("Kind(%q)", rune(k))
	}
	return name
}
