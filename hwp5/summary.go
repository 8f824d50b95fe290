package hwp5

import (
	"bytes"
	"fmt"

	"github.com/richardlehane/msoleps"
)

// MetaProperty is one entry of the document summary property set. Names
// come from the property-set dictionary and may be empty for properties
// the set leaves unnamed.
type MetaProperty struct {
	Name  string
	Value string
}

// SummaryInfo parses the document's summary property-set stream
// (\x05HwpSummaryInformation) into name/value pairs. It returns
// ErrStreamNotFound when the container carries no property set.
func (c *Container) SummaryInfo() ([]MetaProperty, error) {
	for _, info := range c.infos {
		entry := c.entries[info.Path]
		if entry == nil || !msoleps.IsMSOLEPS(entry.Initial) {
			continue
		}
		raw, err := c.ReadStream(info.Path)
		if err != nil {
			return nil, err
		}
		set := msoleps.New()
		if err := set.Reset(bytes.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("failed to parse property set %q: %w", info.Path, err)
		}
		props := make([]MetaProperty, 0, len(set.Property))
		for _, p := range set.Property {
			props = append(props, MetaProperty{Name: p.Name, Value: fmt.Sprint(p.T)})
		}
		return props, nil
	}
	return nil, fmt.Errorf("%w: summary property set", ErrStreamNotFound)
}
