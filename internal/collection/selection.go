package collection

import "github.com/Bluenz7/pdfredactor/internal/documents"

// Mode is the state of the merge workflow.
type Mode int

const (
	Idle Mode = iota
	Selecting
	Confirming
)

func (m Mode) String() string {
	switch m {
	case Selecting:
		return "selecting"
	case Confirming:
		return "confirming"
	default:
		return "idle"
	}
}

// Selection is the merge workflow state. Source is set outside Idle; Target
// only while Confirming and never shares Source's ID.
type Selection struct {
	Mode         Mode
	Source       *documents.Document
	Target       *documents.Document
	ProposedName string
}

// DefaultMergeName is the name proposed for merging source into target.
func DefaultMergeName(source, target documents.Document) string {
	return source.Name + " + " + target.Name
}
