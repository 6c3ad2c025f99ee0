package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// Name is an identifier or keyword.
	Name
	// Number is an integer, float or imaginary literal.
	Number
	// String is a string or bytes literal, prefix and quotes included.
	String

	LParen    // (
	RParen    // )
	LBracket  // [
	RBracket  // ]
	LBrace    // {
	RBrace    // }
	Comma     // ,
	Dot       // .
	Colon     // :
	Semicolon // ;
	Assign    // =
	Walrus    // :=
	Star      // *
	StarStar  // **
	Arrow     // ->
	Ellipsis  // ...
	At        // @
	// Op covers the remaining operators (+, ==, <<=, ...); Text tells them apart.
	Op
)

var kindNames = [...]string{
	Invalid:   "Invalid",
	EOF:       "EOF",
	Name:      "Name",
	Number:    "Number",
	String:    "String",
	LParen:    "LParen",
	RParen:    "RParen",
	LBracket:  "LBracket",
	RBracket:  "RBracket",
	LBrace:    "LBrace",
	RBrace:    "RBrace",
	Comma:     "Comma",
	Dot:       "Dot",
	Colon:     "Colon",
	Semicolon: "Semicolon",
	Assign:    "Assign",
	Walrus:    "Walrus",
	Star:      "Star",
	StarStar:  "StarStar",
	Arrow:     "Arrow",
	Ellipsis:  "Ellipsis",
	At:        "At",
	Op:        "Op",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Kind(?)"
}

// Closing returns the bracket kind that closes k, if k opens a bracket.
func (k Kind) Closing() (Kind, bool) {
	switch k {
	case LParen:
		return RParen, true
	case LBracket:
		return RBracket, true
	case LBrace:
		return RBrace, true
	default:
		return Invalid, false
	}
}

// IsClosing reports whether k closes a bracket.
func (k Kind) IsClosing() bool {
	return k == RParen || k == RBracket || k == RBrace
}
