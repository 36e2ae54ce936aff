package contextbuilder

import (
	"fmt"
	"strings"

	"healthix-be/pkg/store"
)

// NoDataMessage is returned when retrieval produced nothing; the prompt
// template relies on it never being empty.
const NoDataMessage = "No patient data available."

// Assembler turns retrieval hits into the context block handed to the LLM.
type Assembler struct{}

func NewAssembler() *Assembler {
	return &Assembler{}
}

// Assemble renders hits as numbered, provenance-labeled sections joined by
// blank lines. Hit order is preserved, so staging documents keep their
// priority position. Never returns an empty string.
func (a *Assembler) Assemble(hits []store.Hit) string {
	if len(hits) == 0 {
		return NoDataMessage
	}

	sections := make([]string, 0, len(hits))
	for i, hit := range hits {
		sections = append(sections, fmt.Sprintf("%s %d: %s", labelFor(hit), i+1, hit.Content))
	}
	return strings.Join(sections, "\n\n")
}

func labelFor(hit store.Hit) string {
	switch hit.Metadata[store.MetaType] {
	case store.TypePatientRecord:
		return "Patient Record"
	case store.TypeStagingDocument:
		return "Attached Document"
	default:
		return "Context"
	}
}
