package typemeta

import (
	"fmt"

	"github.com/wegman-software/mapfile-go/internal/filestream"
)

// Area ring serialization flags carried in the feature buffer's flag byte.
const (
	flagMultipleRings = 1 << 0
	flagHasMaster     = 1 << 1
)

// FeatureValueBuffer holds the feature values of one entity (or one area
// ring). The wire format is a presence bitmask over the type's feature
// slots followed by the payloads of the set slots in slot order. The
// flags-carrying variant used by area ring 0 appends one flag byte.
type FeatureValueBuffer struct {
	typeInfo *TypeInfo
	values   []any
}

// SetType binds the buffer to a type and clears all values.
func (b *FeatureValueBuffer) SetType(t *TypeInfo) {
	b.typeInfo = t
	if t == nil || len(t.features) == 0 {
		b.values = nil
		return
	}
	b.values = make([]any, len(t.features))
}

// Type returns the bound type, nil for an unbound buffer.
func (b *FeatureValueBuffer) Type() *TypeInfo {
	return b.typeInfo
}

// Has reports whether the feature slot carries a value.
func (b *FeatureValueBuffer) Has(index int) bool {
	return index >= 0 && index < len(b.values) && b.values[index] != nil
}

// Get returns the value of the feature slot.
func (b *FeatureValueBuffer) Get(index int) (any, bool) {
	if !b.Has(index) {
		return nil, false
	}
	return b.values[index], true
}

// Set stores a value in the feature slot, validating it against the slot's
// kind: string for FeatureString, int64 for FeatureInt, true for
// FeatureFlag.
func (b *FeatureValueBuffer) Set(index int, value any) error {
	if b.typeInfo == nil || index < 0 || index >= len(b.typeInfo.features) {
		return fmt.Errorf("feature index %d out of range", index)
	}

	switch b.typeInfo.features[index].Kind {
	case FeatureString:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("feature %q expects a string", b.typeInfo.features[index].Name)
		}
	case FeatureInt:
		if _, ok := value.(int64); !ok {
			return fmt.Errorf("feature %q expects an int64", b.typeInfo.features[index].Name)
		}
	case FeatureFlag:
		if v, ok := value.(bool); !ok || !v {
			return fmt.Errorf("feature %q is a flag; set it with true", b.typeInfo.features[index].Name)
		}
	}

	b.values[index] = value
	return nil
}

// Unset clears the feature slot.
func (b *FeatureValueBuffer) Unset(index int) {
	if index >= 0 && index < len(b.values) {
		b.values[index] = nil
	}
}

func (b *FeatureValueBuffer) maskLen() int {
	if b.typeInfo == nil {
		return 0
	}
	return (len(b.typeInfo.features) + 7) / 8
}

// Read reads the buffer contents for the bound type.
func (b *FeatureValueBuffer) Read(s *filestream.FileScanner) error {
	_, err := b.read(s, false)
	return err
}

// ReadWithFlags reads the buffer contents plus the ring flag byte used by
// area ring 0.
func (b *FeatureValueBuffer) ReadWithFlags(s *filestream.FileScanner) (multipleRings, hasMaster bool, err error) {
	flags, err := b.read(s, true)
	if err != nil {
		return false, false, err
	}
	return flags&flagMultipleRings != 0, flags&flagHasMaster != 0, nil
}

func (b *FeatureValueBuffer) read(s *filestream.FileScanner, withFlags bool) (uint8, error) {
	if b.typeInfo == nil {
		return 0, fmt.Errorf("feature buffer has no type")
	}

	mask, err := s.ReadBytes(b.maskLen())
	if err != nil {
		return 0, err
	}

	var flags uint8
	if withFlags {
		if flags, err = s.ReadUint8(); err != nil {
			return 0, err
		}
	}

	b.values = make([]any, len(b.typeInfo.features))
	for i, f := range b.typeInfo.features {
		if mask[i/8]&(1<<(i%8)) == 0 {
			continue
		}
		switch f.Kind {
		case FeatureString:
			v, err := s.ReadString()
			if err != nil {
				return 0, err
			}
			b.values[i] = v
		case FeatureInt:
			v, err := s.ReadSignedNumber()
			if err != nil {
				return 0, err
			}
			b.values[i] = v
		case FeatureFlag:
			b.values[i] = true
		}
	}

	return flags, nil
}

// Write writes the buffer contents for the bound type.
func (b *FeatureValueBuffer) Write(w *filestream.FileWriter) error {
	return b.write(w, false, 0)
}

// WriteWithFlags writes the buffer contents plus the ring flag byte used by
// area ring 0.
func (b *FeatureValueBuffer) WriteWithFlags(w *filestream.FileWriter, multipleRings, hasMaster bool) error {
	var flags uint8
	if multipleRings {
		flags |= flagMultipleRings
	}
	if hasMaster {
		flags |= flagHasMaster
	}
	return b.write(w, true, flags)
}

func (b *FeatureValueBuffer) write(w *filestream.FileWriter, withFlags bool, flags uint8) error {
	if b.typeInfo == nil {
		return fmt.Errorf("feature buffer has no type")
	}

	mask := make([]byte, b.maskLen())
	for i := range b.typeInfo.features {
		if b.Has(i) {
			mask[i/8] |= 1 << (i % 8)
		}
	}
	if err := w.WriteBytes(mask); err != nil {
		return err
	}
	if withFlags {
		if err := w.WriteUint8(flags); err != nil {
			return err
		}
	}

	for i, f := range b.typeInfo.features {
		if !b.Has(i) {
			continue
		}
		switch f.Kind {
		case FeatureString:
			if err := w.WriteString(b.values[i].(string)); err != nil {
				return err
			}
		case FeatureInt:
			if err := w.WriteSignedNumber(b.values[i].(int64)); err != nil {
				return err
			}
		case FeatureFlag:
			// presence in the mask is the value
		}
	}

	return nil
}
