package ast

// Kind identifies the syntactic category of a node. The set of kinds is
// closed; phases register handlers in tables indexed by Kind.
type Kind uint8

const (
	Invalid Kind = iota

	// Translation unit and its direct children
	TranslationUnit
	VersionDirective
	ExtensionDirective
	PragmaDirective
	Directive
	Declaration
	LayoutDefaults
	InterfaceBlock
	FunctionPrototype
	FunctionDefinition
	EmptyDeclaration

	// Types and declarators
	FullySpecifiedType
	QualifierList
	LayoutQualifier
	LayoutQualifierID
	TypeSpecifier
	StructSpecifier
	StructMember
	ArraySpecifier
	Declarator
	ParameterList
	Parameter

	// Statements
	CompoundStatement
	DeclarationStatement
	ExpressionStatement
	IfStatement
	ForStatement
	WhileStatement
	DoStatement
	SwitchStatement
	CaseLabel
	JumpStatement
	EmptyStatement

	// Expressions
	BinaryExpression
	UnaryExpression
	PostfixExpression
	AssignmentExpression
	ConditionalExpression
	CallExpression
	IndexExpression
	MemberExpression
	SequenceExpression
	GroupExpression
	InitializerList

	// Leaves
	Identifier // a name in a declaring or member position
	Reference  // a name used as an expression
	Literal
	Terminal
	Tombstone
	Synthetic
	EOF

	numKinds
)

// NumKinds is the number of node kinds, suitable for sizing lookup tables.
const NumKinds = int(numKinds)

var kindNames = [...]string{
	Invalid:               "Invalid",
	TranslationUnit:       "TranslationUnit",
	VersionDirective:      "VersionDirective",
	ExtensionDirective:    "ExtensionDirective",
	PragmaDirective:       "PragmaDirective",
	Directive:             "Directive",
	Declaration:           "Declaration",
	LayoutDefaults:        "LayoutDefaults",
	InterfaceBlock:        "InterfaceBlock",
	FunctionPrototype:     "FunctionPrototype",
	FunctionDefinition:    "FunctionDefinition",
	EmptyDeclaration:      "EmptyDeclaration",
	FullySpecifiedType:    "FullySpecifiedType",
	QualifierList:         "QualifierList",
	LayoutQualifier:       "LayoutQualifier",
	LayoutQualifierID:     "LayoutQualifierID",
	TypeSpecifier:         "TypeSpecifier",
	StructSpecifier:       "StructSpecifier",
	StructMember:          "StructMember",
	ArraySpecifier:        "ArraySpecifier",
	Declarator:            "Declarator",
	ParameterList:         "ParameterList",
	Parameter:             "Parameter",
	CompoundStatement:     "CompoundStatement",
	DeclarationStatement:  "DeclarationStatement",
	ExpressionStatement:   "ExpressionStatement",
	IfStatement:           "IfStatement",
	ForStatement:          "ForStatement",
	WhileStatement:        "WhileStatement",
	DoStatement:           "DoStatement",
	SwitchStatement:       "SwitchStatement",
	CaseLabel:             "CaseLabel",
	JumpStatement:         "JumpStatement",
	EmptyStatement:        "EmptyStatement",
	BinaryExpression:      "BinaryExpression",
	UnaryExpression:       "UnaryExpression",
	PostfixExpression:     "PostfixExpression",
	AssignmentExpression:  "AssignmentExpression",
	ConditionalExpression: "ConditionalExpression",
	CallExpression:        "CallExpression",
	IndexExpression:       "IndexExpression",
	MemberExpression:      "MemberExpression",
	SequenceExpression:    "SequenceExpression",
	GroupExpression:       "GroupExpression",
	InitializerList:       "InitializerList",
	Identifier:            "Identifier",
	Reference:             "Reference",
	Literal:               "Literal",
	Terminal:              "Terminal",
	Tombstone:             "Tombstone",
	Synthetic:             "Synthetic",
	EOF:                   "EOF",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(?)"
}

// ParseKind returns the kind with the given name.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), true
		}
	}
	return Invalid, false
}

// Kinds returns every valid kind.
func Kinds() []Kind {
	kinds := make([]Kind, 0, NumKinds-1)
	for k := Invalid + 1; k < numKinds; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// IsLeaf reports whether nodes of this kind never have children.
func (k Kind) IsLeaf() bool {
	switch k {
	case VersionDirective, ExtensionDirective, PragmaDirective, Directive,
		Identifier, Reference, Literal, Terminal, Tombstone, Synthetic, EOF:
		return true
	}
	return false
}

// IsDirective reports whether the kind is a preprocessor line.
func (k Kind) IsDirective() bool {
	switch k {
	case VersionDirective, ExtensionDirective, PragmaDirective, Directive:
		return true
	}
	return false
}

// IsExpression reports whether the kind is an expression.
func (k Kind) IsExpression() bool {
	return (k >= BinaryExpression && k <= InitializerList) || k == Reference || k == Literal
}

// IsExternalDeclaration reports whether the kind may appear as a direct
// child of a translation unit.
func (k Kind) IsExternalDeclaration() bool {
	return k >= VersionDirective && k <= EmptyDeclaration
}
