package worldmap

import "transitcore/typedef"

// LocationDoc is the plain, JSON-friendly shape of a Location, with no
// pointer cycles: the persisted-map format (spec §6) and Map snapshots both
// build on it.
type LocationDoc struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Description string `json:"description"`
}

// ConnectionDoc is the plain, JSON-friendly shape of a Connection.
type ConnectionDoc struct {
	Locations   [2]string `json:"locations"`
	Weight      int       `json:"weight"`
	IsTrain     bool      `json:"is_train"`
	Label       string    `json:"label"`
	Description string    `json:"description"`
}

// Document is a flattened, pointer-free view of a Map's contents.
type Document struct {
	Locations   []LocationDoc   `json:"locations"`
	Connections []ConnectionDoc `json:"connections"`
}

// ToDocument flattens the Map's current contents.
func (m *Map) ToDocument() Document {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc := Document{
		Locations:   make([]LocationDoc, 0, len(m.list)),
		Connections: make([]ConnectionDoc, 0, len(m.conns)),
	}
	for _, loc := range m.list {
		doc.Locations = append(doc.Locations, LocationDoc{
			ID:          loc.ID,
			Label:       loc.Label,
			X:           loc.Pos.X,
			Y:           loc.Pos.Y,
			Description: loc.Description,
		})
	}
	for _, conn := range m.conns {
		doc.Connections = append(doc.Connections, ConnectionDoc{
			Locations:   [2]string{conn.Endpoints[0].ID, conn.Endpoints[1].ID},
			Weight:      conn.Weight,
			IsTrain:     conn.IsTrain,
			Label:       conn.Label,
			Description: conn.Description,
		})
	}
	return doc
}

// ReplaceFrom discards the Map's current contents and rebuilds them from
// doc, going through the normal AddLocation/AddConnection path so indices
// and IsStation stay consistent.
func (m *Map) ReplaceFrom(doc Document) error {
	m.mu.Lock()
	m.byID = make(map[string]*typedef.Location, len(doc.Locations))
	m.byPos = make(map[typedef.Position]*typedef.Location, len(doc.Locations))
	m.list = nil
	m.conns = nil
	m.mu.Unlock()

	for _, l := range doc.Locations {
		if _, err := m.AddLocation(l.ID, l.Label, typedef.Position{X: l.X, Y: l.Y}, l.Description); err != nil {
			return err
		}
	}
	for _, c := range doc.Connections {
		if _, err := m.AddConnection(c.Weight, c.IsTrain, c.Label, c.Description, c.Locations[0], c.Locations[1]); err != nil {
			return err
		}
	}
	return nil
}

// NewFromDocument builds a fresh Map bounded by border and populated from
// doc.
func NewFromDocument(border typedef.Rect, doc Document) (*Map, error) {
	m := New(border)
	if err := m.ReplaceFrom(doc); err != nil {
		return nil, err
	}
	return m, nil
}
