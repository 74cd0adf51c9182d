// Package gs1 defines the document shapes shared by the resolver's read and
// write paths: the submitted Entry form, the stored ResolverDocument form,
// and the qualifier maps that tie the two together.
package gs1

// Qualifier is a single-key AI/value mapping, e.g. {"10": "LOT01"}. Values
// may be literal or a template placeholder such as "{lot}".
type Qualifier map[string]string

// LinkV3 is a single link entry as submitted by a Data-Entry client.
type LinkV3 struct {
	Linktype string   `json:"linktype"`
	Href     string   `json:"href"`
	Title    string   `json:"title"`
	Type     string   `json:"type,omitempty"`
	Hreflang []string `json:"hreflang,omitempty"`
	Context  []string `json:"context,omitempty"`
}

// Entry is an immutable record submitted to the Authoring Engine.
type Entry struct {
	Anchor          string      `json:"anchor"`
	ItemDescription string      `json:"itemDescription,omitempty"`
	DefaultLinktype string      `json:"defaultLinktype,omitempty"`
	Qualifiers      []Qualifier `json:"qualifiers,omitempty"`
	Links           []LinkV3    `json:"links"`
}

// LinksetEntry is one entry in a stored linkset, keyed by link-type IRI.
type LinksetEntry struct {
	Href     string   `json:"href"`
	Title    string   `json:"title,omitempty"`
	Type     string   `json:"type,omitempty"`
	Hreflang []string `json:"hreflang,omitempty"`
	Context  []string `json:"context,omitempty"`
}

// Linkset holds the optional item description and the link-type-keyed
// entries for one DataItem.
type Linkset struct {
	ItemDescription string                    `json:"itemDescription,omitempty"`
	LinkTypes       map[string][]LinksetEntry `json:"linkTypes"`

	// linkTypeOrder preserves insertion order of LinkTypes keys (defaultLink,
	// defaultLinkMulti, then first-seen order) across JSON round trips, since
	// Go maps have no order of their own. It is populated by the authoring
	// and merge engines and consulted by MarshalJSON.
	linkTypeOrder []string
}

// DataItem is one qualifier-scoped bundle of links within a ResolverDocument.
type DataItem struct {
	Qualifiers []Qualifier `json:"qualifiers"`
	Linkset    Linkset     `json:"linkset"`
}

// ResolverDocument is the stored form of an anchor: an id, an optional
// fallback linktype, and an ordered sequence of qualifier-scoped DataItems.
type ResolverDocument struct {
	ID              string     `json:"id"`
	DefaultLinktype string     `json:"defaultLinktype,omitempty"`
	Data            []DataItem `json:"data"`
}

// LinkTypeOrder returns the key order recorded for this linkset, falling
// back to map iteration (unordered) if none was recorded — callers that
// care about §3's ordering invariant should always go through the
// authoring/merge engines, which populate it.
func (l *Linkset) LinkTypeOrder() []string {
	if len(l.linkTypeOrder) > 0 {
		return l.linkTypeOrder
	}
	order := make([]string, 0, len(l.LinkTypes))
	for k := range l.LinkTypes {
		order = append(order, k)
	}
	return order
}

// SetLinkTypeOrder records the explicit key order to preserve on output.
func (l *Linkset) SetLinkTypeOrder(order []string) {
	l.linkTypeOrder = order
}
