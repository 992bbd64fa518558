package token

import (
	"bytes"
	"strconv"
)

type Token int

// List of all tokens recognized by the documentation lexer.
// When adding a new token add it in between blocks since we use comparison functions to check properties of tokens.
const (
	// Not to be used in code. Is to catch uninitialized tokens.
	Undefined Token = iota // <undefined>

	// ==================== KEYWORDS ====================

	// Type declaration keywords
	INTEGER         // INTEGER
	REAL            // REAL
	COMPLEX         // COMPLEX
	LOGICAL         // LOGICAL
	CHARACTER       // CHARACTER
	DOUBLE          // DOUBLE
	PRECISION       // PRECISION
	DOUBLEPRECISION // DOUBLEPRECISION
	TYPE            // TYPE
	CLASS           // CLASS

	// Program structure keywords
	PROGRAM       // PROGRAM
	ENDPROGRAM    // ENDPROGRAM
	MODULE        // MODULE
	ENDMODULE     // ENDMODULE
	SUBROUTINE    // SUBROUTINE
	ENDSUBROUTINE // ENDSUBROUTINE
	FUNCTION      // FUNCTION
	ENDFUNCTION   // ENDFUNCTION
	ENDTYPE       // ENDTYPE
	INTERFACE     // INTERFACE
	ENDINTERFACE  // ENDINTERFACE
	END           // END
	CONTAINS      // CONTAINS
	USE           // USE
	ONLY          // ONLY
	RESULT        // RESULT
	PROCEDURE     // PROCEDURE
	ABSTRACT      // ABSTRACT

	// Procedure prefixes
	RECURSIVE // RECURSIVE
	PURE      // PURE
	ELEMENTAL // ELEMENTAL

	// Attributes
	ALLOCATABLE // ALLOCATABLE
	POINTER     // POINTER
	SAVE        // SAVE
	DIMENSION   // DIMENSION
	PARAMETER   // PARAMETER
	TARGET      // TARGET
	INTENT      // INTENT
	OPTIONAL    // OPTIONAL
	PUBLIC      // PUBLIC
	PRIVATE     // PRIVATE
	EXTERNAL    // EXTERNAL
	INTRINSIC   // INTRINSIC
	VALUE       // VALUE
	VOLATILE    // VOLATILE
	PROTECTED   // PROTECTED
	CONTIGUOUS  // CONTIGUOUS

	// ==================== LITERALS ====================

	Identifier // <identifier>
	IntLit     // <int>
	FloatLit   // <float>
	StringLit  // <string>
	DotOp      // <dotop> (.AND., .TRUE., ...)

	// ==================== PUNCTUATION ====================

	LParen        // (
	RParen        // )
	Comma         // ,
	DoubleColon   // ::
	Colon         // :
	Equals        // =
	PointerAssign // =>
	Asterisk      // *
	Slash         // /
	Percent       // %
	Plus          // +
	Minus         // -
	Other         // <other>

	EOF     // <EOF>
	Illegal // <illegal>
	numToks
)

var tokNames = [numToks]string{
	Undefined:       "<undefined>",
	INTEGER:         "INTEGER",
	REAL:            "REAL",
	COMPLEX:         "COMPLEX",
	LOGICAL:         "LOGICAL",
	CHARACTER:       "CHARACTER",
	DOUBLE:          "DOUBLE",
	PRECISION:       "PRECISION",
	DOUBLEPRECISION: "DOUBLEPRECISION",
	TYPE:            "TYPE",
	CLASS:           "CLASS",
	PROGRAM:         "PROGRAM",
	ENDPROGRAM:      "ENDPROGRAM",
	MODULE:          "MODULE",
	ENDMODULE:       "ENDMODULE",
	SUBROUTINE:      "SUBROUTINE",
	ENDSUBROUTINE:   "ENDSUBROUTINE",
	FUNCTION:        "FUNCTION",
	ENDFUNCTION:     "ENDFUNCTION",
	ENDTYPE:         "ENDTYPE",
	INTERFACE:       "INTERFACE",
	ENDINTERFACE:    "ENDINTERFACE",
	END:             "END",
	CONTAINS:        "CONTAINS",
	USE:             "USE",
	ONLY:            "ONLY",
	RESULT:          "RESULT",
	PROCEDURE:       "PROCEDURE",
	ABSTRACT:        "ABSTRACT",
	RECURSIVE:       "RECURSIVE",
	PURE:            "PURE",
	ELEMENTAL:       "ELEMENTAL",
	ALLOCATABLE:     "ALLOCATABLE",
	POINTER:         "POINTER",
	SAVE:            "SAVE",
	DIMENSION:       "DIMENSION",
	PARAMETER:       "PARAMETER",
	TARGET:          "TARGET",
	INTENT:          "INTENT",
	OPTIONAL:        "OPTIONAL",
	PUBLIC:          "PUBLIC",
	PRIVATE:         "PRIVATE",
	EXTERNAL:        "EXTERNAL",
	INTRINSIC:       "INTRINSIC",
	VALUE:           "VALUE",
	VOLATILE:        "VOLATILE",
	PROTECTED:       "PROTECTED",
	CONTIGUOUS:      "CONTIGUOUS",
	Identifier:      "<identifier>",
	IntLit:          "<int>",
	FloatLit:        "<float>",
	StringLit:       "<string>",
	DotOp:           "<dotop>",
	LParen:          "(",
	RParen:          ")",
	Comma:           ",",
	DoubleColon:     "::",
	Colon:           ":",
	Equals:          "=",
	PointerAssign:   "=>",
	Asterisk:        "*",
	Slash:           "/",
	Percent:         "%",
	Plus:            "+",
	Minus:           "-",
	Other:           "<other>",
	EOF:             "<EOF>",
	Illegal:         "<illegal>",
}

func (tok Token) String() string {
	if tok < 0 || tok >= numToks {
		return "Token(" + strconv.Itoa(int(tok)) + ")"
	}
	return tokNames[tok]
}

// IsKeyword returns true if the token is a Fortran keyword.
func (tok Token) IsKeyword() bool {
	return tok >= INTEGER && tok <= CONTIGUOUS
}

// CanBeUsedAsIdentifier returns true if the token may name an entity.
// Fortran has no reserved words so every keyword qualifies.
func (tok Token) CanBeUsedAsIdentifier() bool {
	return tok == Identifier || tok.IsKeyword()
}

// IsTypeDeclaration returns true for the keywords that open an intrinsic
// or derived type specification.
func (tok Token) IsTypeDeclaration() bool {
	return tok >= INTEGER && tok <= CLASS
}

// IsProcedurePrefix returns true for RECURSIVE, PURE and ELEMENTAL.
func (tok Token) IsProcedurePrefix() bool {
	return tok == RECURSIVE || tok == PURE || tok == ELEMENTAL
}

// IsAttribute returns true for the attribute keywords accepted in a declaration's attribute list.
func (tok Token) IsAttribute() bool {
	return tok >= ALLOCATABLE && tok <= CONTIGUOUS
}

// IsEnd returns true for END and its composite single-token forms.
func (tok Token) IsEnd() bool {
	switch tok {
	case END, ENDPROGRAM, ENDMODULE, ENDSUBROUTINE, ENDFUNCTION, ENDTYPE, ENDINTERFACE:
		return true
	}
	return false
}

// EndComposite returns the single-token END form of a construct keyword,
// i.e. MODULE yields ENDMODULE. Returns Undefined for tokens with no such form.
func (tok Token) EndComposite() Token {
	switch tok {
	case PROGRAM:
		return ENDPROGRAM
	case MODULE:
		return ENDMODULE
	case SUBROUTINE:
		return ENDSUBROUTINE
	case FUNCTION:
		return ENDFUNCTION
	case TYPE:
		return ENDTYPE
	case INTERFACE:
		return ENDINTERFACE
	}
	return Undefined
}

// LookupKeyword returns [Identifier] or the token for keyword maybeKeyword represents if found.
func LookupKeyword(maybeKeyword []byte) Token {
	// Convert to uppercase for case-insensitive comparison
	upper := bytes.ToUpper(maybeKeyword)
	switch string(upper) {
	default:
		return Identifier
	case "INTEGER":
		return INTEGER
	case "REAL":
		return REAL
	case "COMPLEX":
		return COMPLEX
	case "LOGICAL":
		return LOGICAL
	case "CHARACTER":
		return CHARACTER
	case "DOUBLE":
		return DOUBLE
	case "PRECISION":
		return PRECISION
	case "DOUBLEPRECISION":
		return DOUBLEPRECISION
	case "TYPE":
		return TYPE
	case "CLASS":
		return CLASS
	case "PROGRAM":
		return PROGRAM
	case "ENDPROGRAM":
		return ENDPROGRAM
	case "MODULE":
		return MODULE
	case "ENDMODULE":
		return ENDMODULE
	case "SUBROUTINE":
		return SUBROUTINE
	case "ENDSUBROUTINE":
		return ENDSUBROUTINE
	case "FUNCTION":
		return FUNCTION
	case "ENDFUNCTION":
		return ENDFUNCTION
	case "ENDTYPE":
		return ENDTYPE
	case "INTERFACE":
		return INTERFACE
	case "ENDINTERFACE":
		return ENDINTERFACE
	case "END":
		return END
	case "CONTAINS":
		return CONTAINS
	case "USE":
		return USE
	case "ONLY":
		return ONLY
	case "RESULT":
		return RESULT
	case "PROCEDURE":
		return PROCEDURE
	case "ABSTRACT":
		return ABSTRACT
	case "RECURSIVE":
		return RECURSIVE
	case "PURE":
		return PURE
	case "ELEMENTAL":
		return ELEMENTAL
	case "ALLOCATABLE":
		return ALLOCATABLE
	case "POINTER":
		return POINTER
	case "SAVE":
		return SAVE
	case "DIMENSION":
		return DIMENSION
	case "PARAMETER":
		return PARAMETER
	case "TARGET":
		return TARGET
	case "INTENT":
		return INTENT
	case "OPTIONAL":
		return OPTIONAL
	case "PUBLIC":
		return PUBLIC
	case "PRIVATE":
		return PRIVATE
	case "EXTERNAL":
		return EXTERNAL
	case "INTRINSIC":
		return INTRINSIC
	case "VALUE":
		return VALUE
	case "VOLATILE":
		return VOLATILE
	case "PROTECTED":
		return PROTECTED
	case "CONTIGUOUS":
		return CONTIGUOUS
	}
}
