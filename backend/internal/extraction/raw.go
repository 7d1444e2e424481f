package extraction

import "encoding/json"

// RawPayload is the untrusted shape returned by the extraction call. Every
// field is validated before anything reaches the graph; enum values in
// particular are never trusted without an allow-list check.
type RawPayload struct {
	Nodes []RawNode `json:"nodes"`
	Edges []RawEdge `json:"edges"`
}

// RawNode is an extracted entity, pre-validation
type RawNode struct {
	Type    string         `json:"type"`
	Name    string         `json:"name"`
	Aliases []string       `json:"aliases"`
	Props   map[string]any `json:"props"`
}

// RawEdge is an extracted relation, pre-validation
type RawEdge struct {
	Type       string         `json:"type"`
	From       RawEndpoint    `json:"from"`
	To         RawEndpoint    `json:"to"`
	Props      map[string]any `json:"props"`
	Confidence *float64       `json:"confidence"`
}

// RawEndpoint is an edge endpoint, which the model may emit as a bare name
// string or as a {name, type} object
type RawEndpoint struct {
	Name string
	Type string
}

// UnmarshalJSON accepts both endpoint encodings and degrades anything else to
// an empty endpoint rather than failing the whole payload; an edge with an
// empty endpoint name is filtered out downstream.
func (p *RawEndpoint) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		p.Name = s
		p.Type = ""
		return nil
	}
	var obj struct {
		Name string `json:"name"`
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		p.Name = ""
		p.Type = ""
		return nil
	}
	p.Name = obj.Name
	p.Type = obj.Type
	return nil
}
