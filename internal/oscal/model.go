// =============================================================================
// EUCS to OSCAL Converter - OSCAL Document Model
// =============================================================================
//
// The subset of the OSCAL 1.1 JSON model that the catalog and profiles use.
// Field names follow the OSCAL JSON format (hyphenated keys, optional fields
// omitted when empty).
//
// =============================================================================

package oscal

import "time"

// CatalogDocument is the top-level JSON object of a catalog file.
type CatalogDocument struct {
	Catalog *Catalog `json:"catalog"`
}

// ProfileDocument is the top-level JSON object of a profile file.
type ProfileDocument struct {
	Profile *Profile `json:"profile"`
}

type Catalog struct {
	UUID       string      `json:"uuid"`
	Metadata   Metadata    `json:"metadata"`
	Groups     []Group     `json:"groups,omitempty"`
	BackMatter *BackMatter `json:"back-matter,omitempty"`
}

type Profile struct {
	UUID     string   `json:"uuid"`
	Metadata Metadata `json:"metadata"`
	Imports  []Import `json:"imports"`
}

type Import struct {
	Href            string          `json:"href"`
	IncludeControls []SelectControl `json:"include-controls,omitempty"`
}

type SelectControl struct {
	WithIDs []string `json:"with-ids,omitempty"`
}

type Metadata struct {
	Title              string             `json:"title"`
	Published          *time.Time         `json:"published,omitempty"`
	LastModified       time.Time          `json:"last-modified"`
	Version            string             `json:"version"`
	OSCALVersion       string             `json:"oscal-version"`
	Props              []Property         `json:"props,omitempty"`
	Links              []Link             `json:"links,omitempty"`
	Roles              []Role             `json:"roles,omitempty"`
	Parties            []Party            `json:"parties,omitempty"`
	ResponsibleParties []ResponsibleParty `json:"responsible-parties,omitempty"`
	Remarks            string             `json:"remarks,omitempty"`
}

type Property struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Class string `json:"class,omitempty"`
}

type Link struct {
	Href string `json:"href"`
	Rel  string `json:"rel,omitempty"`
}

type Role struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type Party struct {
	UUID           string    `json:"uuid"`
	Type           string    `json:"type"`
	Name           string    `json:"name,omitempty"`
	EmailAddresses []string  `json:"email-addresses,omitempty"`
	Addresses      []Address `json:"addresses,omitempty"`
}

type Address struct {
	AddrLines []string `json:"addr-lines,omitempty"`
	City      string   `json:"city,omitempty"`
	Country   string   `json:"country,omitempty"`
}

type ResponsibleParty struct {
	RoleID     string   `json:"role-id"`
	PartyUUIDs []string `json:"party-uuids"`
}

type Group struct {
	ID       string     `json:"id,omitempty"`
	Class    string     `json:"class,omitempty"`
	Title    string     `json:"title"`
	Props    []Property `json:"props,omitempty"`
	Controls []Control  `json:"controls,omitempty"`
}

type Control struct {
	ID    string     `json:"id"`
	Class string     `json:"class,omitempty"`
	Title string     `json:"title"`
	Props []Property `json:"props,omitempty"`
	Parts []Part     `json:"parts,omitempty"`
}

type Part struct {
	ID    string     `json:"id,omitempty"`
	Name  string     `json:"name"`
	Class string     `json:"class,omitempty"`
	Props []Property `json:"props,omitempty"`
	Prose string     `json:"prose,omitempty"`
	Parts []Part     `json:"parts,omitempty"`
}

type BackMatter struct {
	Resources []Resource `json:"resources,omitempty"`
}

type Resource struct {
	UUID   string  `json:"uuid"`
	Title  string  `json:"title,omitempty"`
	Rlinks []Rlink `json:"rlinks,omitempty"`
}

type Rlink struct {
	Href      string `json:"href"`
	MediaType string `json:"media-type,omitempty"`
}
