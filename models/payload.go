package models

// Payload is the sum type fed to a rule evaluator. Exactly one field is
// populated per validator type:
//
//	content:   Content
//	structure: Paths
//	naming:    FileName
type Payload struct {
	kind PayloadKind

	Content  string
	Paths    []string
	FileName string
}

type PayloadKind int

const (
	PayloadContent PayloadKind = iota
	PayloadPathList
	PayloadFileName
)

func NewContentPayload(content string) Payload {
	return Payload{kind: PayloadContent, Content: content}
}

func NewPathListPayload(paths []string) Payload {
	return Payload{kind: PayloadPathList, Paths: paths}
}

func NewFileNamePayload(name string) Payload {
	return Payload{kind: PayloadFileName, FileName: name}
}

func (p Payload) Kind() PayloadKind { return p.kind }

// PayloadKindFor maps a validator type to the payload kind its evaluators
// must accept.
func PayloadKindFor(t ValidatorType) PayloadKind {
	switch t {
	case ValidatorTypeStructure:
		return PayloadPathList
	case ValidatorTypeNaming:
		return PayloadFileName
	default:
		return PayloadContent
	}
}
