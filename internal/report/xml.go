// =============================================================================
// Catalog Reconciler - XML Findings Report
// =============================================================================
//
// Serializes a comparison as a standalone XML document for downstream
// systems that do not read spreadsheets.
//
// XML STRUCTURE:
//
//   <reconciliation runId="..." job="acura" base="a.xlsx" reference="b.xlsx"
//                   generatedAt="2025-01-02T15:04:05Z">
//     <summary baseRows="8" referenceRows="8" ... differences="1"/>
//     <differences>
//       <cell row="1" col="3" ref="D3"/>
//     </differences>
//     <findings>
//       <finding row="1" col="3" ref="D3" kind="price_mismatch">base 95000, reference 96000</finding>
//     </findings>
//   </reconciliation>
//
// =============================================================================

package report

import (
	"encoding/xml"
	"fmt"
	"os"
	"time"

	"github.com/ginjaninja78/catalog-reconciler/internal/reconcile"
)

// Meta identifies the run a report belongs to.
type Meta struct {
	RunID       string
	Job         string
	Base        string
	Reference   string
	GeneratedAt time.Time
}

// =============================================================================
// XML DOCUMENT STRUCTURE
// =============================================================================

type xmlReport struct {
	XMLName     xml.Name     `xml:"reconciliation"`
	RunID       string       `xml:"runId,attr,omitempty"`
	Job         string       `xml:"job,attr,omitempty"`
	Base        string       `xml:"base,attr"`
	Reference   string       `xml:"reference,attr"`
	GeneratedAt string       `xml:"generatedAt,attr"`
	Summary     xmlSummary   `xml:"summary"`
	Cells       []xmlCell    `xml:"differences>cell"`
	Findings    []xmlFinding `xml:"findings>finding"`
}

type xmlSummary struct {
	BaseRows           int `xml:"baseRows,attr"`
	ReferenceRows      int `xml:"referenceRows,attr"`
	SkippedRows        int `xml:"skippedRows,attr"`
	ExactMatches       int `xml:"exactMatches,attr"`
	FallbackMatches    int `xml:"fallbackMatches,attr"`
	NoMatch            int `xml:"noMatch,attr"`
	DuplicateBase      int `xml:"duplicateBase,attr"`
	DuplicateReference int `xml:"duplicateReference,attr"`
	RuleViolations     int `xml:"ruleViolations,attr"`
	TotalComparisons   int `xml:"totalComparisons,attr"`
	Differences        int `xml:"differences,attr"`
}

type xmlCell struct {
	Row int    `xml:"row,attr"`
	Col int    `xml:"col,attr"`
	Ref string `xml:"ref,attr"`
}

type xmlFinding struct {
	Row    int    `xml:"row,attr"`
	Col    int    `xml:"col,attr"`
	Ref    string `xml:"ref,attr"`
	Kind   string `xml:"kind,attr"`
	Detail string `xml:",chardata"`
}

// =============================================================================
// XML GENERATION FUNCTIONS
// =============================================================================

// GenerateXML renders the findings report.
//
// RETURNS:
//   - The XML document, declaration included.
//   - An error if marshalling fails.
func GenerateXML(meta Meta, result *reconcile.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("no comparison result to write")
	}
	if meta.GeneratedAt.IsZero() {
		meta.GeneratedAt = time.Now()
	}

	doc := xmlReport{
		RunID:       meta.RunID,
		Job:         meta.Job,
		Base:        meta.Base,
		Reference:   meta.Reference,
		GeneratedAt: meta.GeneratedAt.UTC().Format(time.RFC3339),
		Summary:     summaryOf(result.Stats),
	}

	for _, coord := range result.Differences.Sorted() {
		doc.Cells = append(doc.Cells, xmlCell{Row: coord.Row, Col: coord.Col, Ref: CellName(coord)})
	}
	for _, f := range result.Findings {
		doc.Findings = append(doc.Findings, xmlFinding{
			Row:    f.Coord.Row,
			Col:    f.Coord.Col,
			Ref:    CellName(f.Coord),
			Kind:   string(f.Kind),
			Detail: f.Detail,
		})
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}

	out := make([]byte, 0, len(xml.Header)+len(body)+1)
	out = append(out, xml.Header...)
	out = append(out, body...)
	out = append(out, '\n')
	return out, nil
}

// WriteXML renders the findings report and writes it to path.
func WriteXML(path string, meta Meta, result *reconcile.Result) error {
	data, err := GenerateXML(meta, result)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func summaryOf(s reconcile.Stats) xmlSummary {
	return xmlSummary{
		BaseRows:           s.BaseRows,
		ReferenceRows:      s.ReferenceRows,
		SkippedRows:        s.SkippedRows,
		ExactMatches:       s.ExactMatches,
		FallbackMatches:    s.FallbackMatches,
		NoMatch:            s.NoMatch,
		DuplicateBase:      s.DuplicateBase,
		DuplicateReference: s.DuplicateReference,
		RuleViolations:     s.RuleViolations,
		TotalComparisons:   s.TotalComparisons,
		Differences:        s.Differences,
	}
}
