package model

// ObjRef is a symbolic reference to a catalog object. An object can be
// addressed either by its stable identifier or by a server-assigned URI;
// at least one of the two must be set for the ref to be usable.
type ObjRef struct {
	Identifier string `json:"identifier,omitempty" bson:"identifier,omitempty"`
	URI        string `json:"uri,omitempty" bson:"uri,omitempty"`
}

func NewRef(identifier string) ObjRef {
	return ObjRef{Identifier: identifier}
}

func (r ObjRef) IsEmpty() bool {
	return r.Identifier == "" && r.URI == ""
}

// Key returns a stable comparison key for the ref. Identifier wins over URI
// so that refs pointing at the same object through different addressing
// schemes still compare equal after resolution.
func (r ObjRef) Key() string {
	if r.Identifier != "" {
		return "id:" + r.Identifier
	}
	return "uri:" + r.URI
}

func RefsEqual(a, b ObjRef) bool {
	if a.Identifier != "" && b.Identifier != "" {
		return a.Identifier == b.Identifier
	}
	if a.URI != "" && b.URI != "" {
		return a.URI == b.URI
	}
	return false
}

// DisplayForm is the catalog record describing an attribute display form.
// Handlers resolve ignore-list entries against these.
type DisplayForm struct {
	Ref       ObjRef `json:"ref" bson:"ref"`
	Attribute ObjRef `json:"attribute" bson:"attribute"`
	Title     string `json:"title" bson:"title"`
}
