// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strconv"

// AbstractStatus records what the pipeline knows about a work's abstract.
// It is serialized inside the metadata block as "abstract_available" for
// compatibility with existing journal files.
type AbstractStatus string

const (
	// AbstractUnknown means no enrichment attempt has concluded yet.
	AbstractUnknown AbstractStatus = "no"

	// AbstractFound means the abstract field holds an enriched value.
	// An empty string is still a valid enriched value.
	AbstractFound AbstractStatus = "yes"

	// AbstractConfirmedAbsent means a lookup completed and returned no
	// abstract. Terminal: enrichment never re-queries such a record.
	AbstractConfirmedAbsent AbstractStatus = "not available"
)

// Metadata holds the flattened CrossRef fields carried with each work.
type Metadata struct {
	DOI                 string         `json:"doi"`
	Type                string         `json:"type"`
	Published           []int          `json:"published"`
	Authors             []string       `json:"authors"`
	URL                 string         `json:"url"`
	Publisher           string         `json:"publisher"`
	ContainerTitle      string         `json:"container_title"`
	Volume              string         `json:"volume"`
	Issue               string         `json:"issue"`
	Page                string         `json:"page"`
	Subject             []string       `json:"subject"`
	Language            string         `json:"language"`
	ISSN                []string       `json:"issn"`
	ISBN                []string       `json:"isbn"`
	ReferencesCount     int            `json:"references_count"`
	IsReferencedByCount int            `json:"is_referenced_by_count"`
	Score               float64        `json:"score"`
	AbstractAvailable   AbstractStatus `json:"abstract_available"`
}

// Work is the normalized representation of one scholarly article. The ID
// is assigned once at transform time and reused as the vector collection
// primary key, so it must be globally unique, not unique per file.
type Work struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Abstract string   `json:"abstract"`
	Metadata Metadata `json:"metadata"`
}

// Status returns the effective abstract status. Files written before the
// marker existed have an empty abstract_available; those classify as
// Found when an abstract is present and Unknown otherwise.
func (w *Work) Status() AbstractStatus {
	switch w.Metadata.AbstractAvailable {
	case AbstractFound, AbstractConfirmedAbsent, AbstractUnknown:
		return w.Metadata.AbstractAvailable
	}
	if w.Abstract != "" {
		return AbstractFound
	}
	return AbstractUnknown
}

// NeedsAbstract reports whether enrichment should attempt this record.
func (w *Work) NeedsAbstract() bool {
	return w.Status() == AbstractUnknown
}

// SetAbstract stores an enriched abstract and marks it available.
func (w *Work) SetAbstract(abstract string) {
	w.Abstract = abstract
	w.Metadata.AbstractAvailable = AbstractFound
}

// MarkAbstractUnavailable records that a lookup found no abstract.
// The record is permanently skipped by subsequent enrichment runs.
func (w *Work) MarkAbstractUnavailable() {
	w.Metadata.AbstractAvailable = AbstractConfirmedAbsent
}

// Document returns the text embedded for this work: the title, followed
// by the abstract when one is present.
func (w *Work) Document() string {
	if w.Abstract == "" {
		return w.Title
	}
	return w.Title + " " + w.Abstract
}

// Year returns the publication year as a string, or "" when unknown.
func (w *Work) Year() string {
	if len(w.Metadata.Published) == 0 {
		return ""
	}
	return strconv.Itoa(w.Metadata.Published[0])
}
