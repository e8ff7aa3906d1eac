// Package protocol defines the wire types exchanged with a surface agent:
// the inbound line-delimited message envelope and the outbound
// action/error-report envelopes.
package protocol

import (
	"encoding/json"
	"time"
)

// Version is the protocol version declared on outbound envelopes.
const Version = "v0.9"

// Message type discriminants carried in the "type" field of inbound messages.
const (
	TypeCreateSurface    = "createSurface"
	TypeUpdateComponents = "updateComponents"
	TypeUpdateDataModel  = "updateDataModel"
	TypeDeleteSurface    = "deleteSurface"
	TypeError            = "error"
)

// Message is the envelope for all inbound agent messages. Each line in the
// event stream decodes to one Message; which fields are populated depends on
// the Type discriminant.
type Message struct {
	Type          string            `json:"type"`
	SurfaceID     string            `json:"surfaceId,omitempty"`
	CatalogID     string            `json:"catalogId,omitempty"`
	Theme         json.RawMessage   `json:"theme,omitempty"`
	SendDataModel *bool             `json:"sendDataModel,omitempty"`
	Components    []ComponentUpdate `json:"components,omitempty"`
	Path          string            `json:"path,omitempty"`
	Value         json.RawMessage   `json:"value,omitempty"`
	Code          string            `json:"code,omitempty"`
	ErrorMessage  string            `json:"message,omitempty"`
}

// ComponentUpdate is a component definition from the protocol: an id, a
// component type tag, and an open bag of additional properties. Properties
// captures every field other than "id"; the type tag appears both in
// Component and, for round-trip fidelity, in the bag under "component".
type ComponentUpdate struct {
	ID         string
	Component  string
	Properties map[string]any
}

// UnmarshalJSON captures id and component, collecting all remaining fields
// into the open property bag.
func (c *ComponentUpdate) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	c.Properties = make(map[string]any, len(raw))
	for key, val := range raw {
		switch key {
		case "id":
			var id string
			if err := json.Unmarshal(val, &id); err != nil {
				return err
			}
			c.ID = id
			continue
		case "component":
			var typ string
			if err := json.Unmarshal(val, &typ); err != nil {
				return err
			}
			c.Component = typ
		}

		var v any
		if err := json.Unmarshal(val, &v); err != nil {
			return err
		}
		c.Properties[key] = v
	}

	return nil
}

// MarshalJSON writes the component back as the flat property bag it came from.
func (c ComponentUpdate) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Properties)+2)
	for k, v := range c.Properties {
		out[k] = v
	}
	out["id"] = c.ID
	out["component"] = c.Component
	return json.Marshal(out)
}

// UserAction is a user interaction sent from client to agent, wrapped in a
// ClientMessage envelope.
type UserAction struct {
	Name              string         `json:"name"`
	SurfaceID         string         `json:"surfaceId"`
	SourceComponentID string         `json:"sourceComponentId"`
	Timestamp         string         `json:"timestamp"`
	Context           map[string]any `json:"context"`
}

// NewUserAction builds a UserAction stamped with the current UTC time.
func NewUserAction(name, surfaceID, sourceComponentID string, actionContext map[string]any) *UserAction {
	if actionContext == nil {
		actionContext = map[string]any{}
	}
	return &UserAction{
		Name:              name,
		SurfaceID:         surfaceID,
		SourceComponentID: sourceComponentID,
		Timestamp:         time.Now().UTC().Format(time.RFC3339Nano),
		Context:           actionContext,
	}
}

// ErrorReport is a client-to-agent error notification. Action and Error are
// mutually exclusive within one ClientMessage.
type ErrorReport struct {
	Code      string `json:"code"`
	SurfaceID string `json:"surfaceId"`
	Message   string `json:"message"`
	Path      string `json:"path,omitempty"`
}

// ClientMessage is the client-to-agent envelope. DataModel is attached only
// when the surface was created with the sendDataModel flag set.
type ClientMessage struct {
	Version   string       `json:"version"`
	Action    *UserAction  `json:"action,omitempty"`
	Error     *ErrorReport `json:"error,omitempty"`
	DataModel any          `json:"dataModel,omitempty"`
}

// CapabilitiesHeader is the HTTP header carrying the client capabilities
// declaration on outbound requests.
const CapabilitiesHeader = "A2UI-Client-Capabilities"

// StandardCatalogID identifies the standard component catalog.
const StandardCatalogID = "https://github.com/google/A2UI/blob/main/specification/v0_9/json/standard_catalog.json"

// ClientCapabilities declares protocol support to the agent.
type ClientCapabilities struct {
	V09 CapabilitiesV09 `json:"v0.9"`
}

// CapabilitiesV09 lists the component catalogs this client can render.
type CapabilitiesV09 struct {
	SupportedCatalogIDs []string `json:"supportedCatalogIds"`
}

// DefaultCapabilities returns the capabilities declaration for the standard
// catalog.
func DefaultCapabilities() ClientCapabilities {
	return ClientCapabilities{
		V09: CapabilitiesV09{
			SupportedCatalogIDs: []string{StandardCatalogID},
		},
	}
}
