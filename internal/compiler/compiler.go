// Package compiler walks the token stream produced by internal/lexer and
// emits a flat internal/bytecode.Chunk, recursively compiling nested
// quoted code, sub-stack literals, and bracket-argument bodies
// (spec.md §4.D).
package compiler

import (
	"strconv"
	"strings"

	"sscript/internal/bytecode"
	"sscript/internal/dictionary"
	serrors "sscript/internal/errors"
	"sscript/internal/lexer"
)

// Compile lexes and compiles source in one pass, equivalent to
// NewCompiler(source).Compile().
func Compile(source string) (*bytecode.Chunk, *serrors.Error) {
	return NewCompiler(source).Compile()
}

// Compiler consumes a token stream and builds a Chunk. Nested `[...]`,
// `{...}`, and bracket-argument bodies are compiled by recursing into a
// fresh Compiler over the captured interior text, mirroring the
// reference's recursive substring-compile approach but operating on
// already-lexed tokens for the top level.
type Compiler struct {
	tokens []lexer.Token
	pos    int
	lexErr *serrors.Error
}

// NewCompiler lexes source and returns a Compiler ready to walk it.
func NewCompiler(source string) *Compiler {
	toks, err := lexer.NewScanner(source).ScanTokens()
	if err != nil {
		return &Compiler{tokens: []lexer.Token{{Type: lexer.TokenEOF}}, pos: 0, lexErr: err}
	}
	return &Compiler{tokens: toks}
}

// Compile consumes the whole token stream and returns the resulting chunk.
func (c *Compiler) Compile() (*bytecode.Chunk, *serrors.Error) {
	// NewCompiler records lex errors instead of failing construction;
	// surface them here.
	if c.lexErr != nil {
		return nil, c.lexErr
	}
	if len(c.tokens) == 1 && c.tokens[0].Type == lexer.TokenEOF {
		return bytecode.NewChunk(), nil
	}
	chunk := bytecode.NewChunk()
	for !c.atEnd() {
		instr, err := c.compileOne()
		if err != nil {
			return nil, err
		}
		chunk.Write(instr)
	}
	return chunk, nil
}

func (c *Compiler) atEnd() bool { return c.tokens[c.pos].Type == lexer.TokenEOF }

func (c *Compiler) advance() lexer.Token {
	t := c.tokens[c.pos]
	if t.Type != lexer.TokenEOF {
		c.pos++
	}
	return t
}

func (c *Compiler) compileOne() (bytecode.Instruction, *serrors.Error) {
	tok := c.advance()
	switch tok.Type {
	case lexer.TokenString:
		return bytecode.Instruction{Op: bytecode.OpPushString, String: tok.Lexeme, Line: tok.Line}, nil
	case lexer.TokenQuoted:
		// The body is compiled only to report its errors now; the
		// instruction carries the text, which apply/define recompile.
		if _, err := compileSub(tok.Lexeme); err != nil {
			return bytecode.Instruction{}, err
		}
		return bytecode.Instruction{Op: bytecode.OpPushQuoted, String: tok.Lexeme, Line: tok.Line}, nil
	case lexer.TokenSubLit:
		inner, err := compileSub(tok.Lexeme)
		if err != nil {
			return bytecode.Instruction{}, err
		}
		return bytecode.Instruction{Op: bytecode.OpPushStackLiteral, Code: inner, String: tok.Lexeme, Line: tok.Line}, nil
	case lexer.TokenNumber:
		return compileNumber(tok)
	default: // TokenWord
		return c.compileWord(tok)
	}
}

// compileSub recompiles a captured `{...}` body immediately (rather than
// lazily like Quoted) since the value pushed is a materialized SubStack,
// not a re-parseable textual form.
func compileSub(body string) (*bytecode.Chunk, *serrors.Error) {
	return NewCompiler(body).Compile()
}

func compileNumber(tok lexer.Token) (bytecode.Instruction, *serrors.Error) {
	raw := strings.Replace(tok.Lexeme, ",", ".", 1)
	hasDot := strings.ContainsAny(tok.Lexeme, ".,")
	if hasDot {
		f, perr := strconv.ParseFloat(raw, 64)
		if perr != nil {
			return bytecode.Instruction{}, serrors.Newf(serrors.ValueError, "invalid float literal %q", tok.Lexeme).AtLine(tok.Line)
		}
		return bytecode.Instruction{Op: bytecode.OpPushFloat, Float: f, Line: tok.Line}, nil
	}
	i, perr := strconv.ParseInt(raw, 10, 64)
	if perr != nil {
		return bytecode.Instruction{}, serrors.Newf(serrors.ValueError, "invalid integer literal %q", tok.Lexeme).AtLine(tok.Line)
	}
	return bytecode.Instruction{Op: bytecode.OpPushInt, Int: i, Line: tok.Line}, nil
}

func (c *Compiler) compileWord(tok lexer.Token) (bytecode.Instruction, *serrors.Error) {
	if tok.HasArgs {
		return c.compileBracketWord(tok)
	}
	if instr, ok := simpleWords[tok.Lexeme]; ok {
		instr.Line = tok.Line
		return instr, nil
	}
	if op, name, ok := parseNumberedWord(tok.Lexeme); ok {
		return bytecode.Instruction{Op: op, N: name, Line: tok.Line}, nil
	}
	return bytecode.Instruction{Op: bytecode.OpCall, Name: tok.Lexeme, Line: tok.Line}, nil
}

// parseNumberedWord recognizes dupN/swapN/digN/injectN/pinjectN where N is
// a run of trailing decimal digits (spec.md §4.D), e.g. "dup3", "inject2".
func parseNumberedWord(word string) (bytecode.Op, int, bool) {
	cut := len(word)
	for cut > 0 && word[cut-1] >= '0' && word[cut-1] <= '9' {
		cut--
	}
	if cut == len(word) || cut == 0 {
		return 0, 0, false
	}
	name, digits := word[:cut], word[cut:]
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, 0, false
	}
	switch name {
	case "dup":
		return bytecode.OpDupN, n, true
	case "swap":
		return bytecode.OpSwapN, n, true
	case "dig":
		return bytecode.OpDigN, n, true
	case "inject":
		return bytecode.OpInjectN, n, true
	case "pinject":
		return bytecode.OpPInjectN, n, true
	}
	return 0, 0, false
}

func (c *Compiler) compileBracketWord(tok lexer.Token) (bytecode.Instruction, *serrors.Error) {
	switch tok.Lexeme {
	case "define":
		if verr := dictionary.ValidateName(tok.Args); verr != nil {
			return bytecode.Instruction{}, verr.AtLine(tok.Line)
		}
		return bytecode.Instruction{Op: bytecode.OpDefine, Name: tok.Args, Line: tok.Line}, nil
	case "delete":
		return bytecode.Instruction{Op: bytecode.OpDelete, Name: tok.Args, Line: tok.Line}, nil
	case "isdef":
		return bytecode.Instruction{Op: bytecode.OpIsDef, Name: tok.Args, Line: tok.Line}, nil
	case "load":
		return bytecode.Instruction{Op: bytecode.OpLoad, Name: tok.Args, Line: tok.Line}, nil
	case "save":
		return bytecode.Instruction{Op: bytecode.OpSave, Name: tok.Args, Line: tok.Line}, nil
	}
	argChunk, aerr := Compile(tok.Args)
	if aerr != nil {
		return bytecode.Instruction{}, aerr
	}
	switch tok.Lexeme {
	case "if":
		return bytecode.Instruction{Op: bytecode.OpIfCond, Code: argChunk, Line: tok.Line}, nil
	case "loop":
		return bytecode.Instruction{Op: bytecode.OpLoopCond, Code: argChunk, Line: tok.Line}, nil
	case "times":
		return bytecode.Instruction{Op: bytecode.OpTimes, Code: argChunk, Line: tok.Line}, nil
	case "dup":
		return bytecode.Instruction{Op: bytecode.OpDupCond, Code: argChunk, Line: tok.Line}, nil
	case "swap":
		return bytecode.Instruction{Op: bytecode.OpSwapCond, Code: argChunk, Line: tok.Line}, nil
	case "dig":
		return bytecode.Instruction{Op: bytecode.OpDigCond, Code: argChunk, Line: tok.Line}, nil
	case "split":
		return bytecode.Instruction{Op: bytecode.OpSplitCond, Code: argChunk, Line: tok.Line}, nil
	case "compose":
		return bytecode.Instruction{Op: bytecode.OpComposeCond, Code: argChunk, Line: tok.Line}, nil
	}
	if argChunk.Len() == 0 {
		return bytecode.Instruction{Op: bytecode.OpCall, Name: tok.Lexeme, Line: tok.Line}, nil
	}
	return bytecode.Instruction{}, serrors.Newf(serrors.InvalidInstruction, "%s(%s)", tok.Lexeme, tok.Args).AtLine(tok.Line)
}

// simpleWords maps every argument-less built-in word to its opcode.
var simpleWords = map[string]bytecode.Instruction{
	"+": {Op: bytecode.OpAdd}, "-": {Op: bytecode.OpSub}, "*": {Op: bytecode.OpMul},
	"/": {Op: bytecode.OpDiv}, "%": {Op: bytecode.OpMod}, "pow": {Op: bytecode.OpPow},
	"sqrt": {Op: bytecode.OpSqrt}, "exp": {Op: bytecode.OpExp}, "log": {Op: bytecode.OpLog},
	"log2": {Op: bytecode.OpLog2}, "log10": {Op: bytecode.OpLog10}, "--": {Op: bytecode.OpOpposite},
	"!": {Op: bytecode.OpFactorial}, "gamma": {Op: bytecode.OpGamma},
	"sin": {Op: bytecode.OpSin}, "cos": {Op: bytecode.OpCos}, "tan": {Op: bytecode.OpTan},
	"arcsin": {Op: bytecode.OpArcSin}, "arccos": {Op: bytecode.OpArcCos}, "arctan": {Op: bytecode.OpArcTan},
	"sinh": {Op: bytecode.OpSinh}, "cosh": {Op: bytecode.OpCosh}, "tanh": {Op: bytecode.OpTanh},
	"arcsinh": {Op: bytecode.OpArcSinh}, "arccosh": {Op: bytecode.OpArcCosh}, "arctanh": {Op: bytecode.OpArcTanh},
	"int": {Op: bytecode.OpToInt},
	"and": {Op: bytecode.OpAnd}, "or": {Op: bytecode.OpOr}, "xor": {Op: bytecode.OpXor}, "not": {Op: bytecode.OpNot},
	"true": {Op: bytecode.OpTrue}, "false": {Op: bytecode.OpFalse}, "none": {Op: bytecode.OpPushNone},
	"==": {Op: bytecode.OpEq}, "!=": {Op: bytecode.OpNotEq},
	"<": {Op: bytecode.OpLt}, ">": {Op: bytecode.OpGt}, "<=": {Op: bytecode.OpLtEq}, ">=": {Op: bytecode.OpGtEq},
	"dup": {Op: bytecode.OpDup}, "dup0": {Op: bytecode.OpDup},
	"swap": {Op: bytecode.OpSwap}, "swap1": {Op: bytecode.OpSwap}, "swap0": {Op: bytecode.OpNop},
	"drop": {Op: bytecode.OpDrop}, "clear": {Op: bytecode.OpClear}, "roll": {Op: bytecode.OpRoll},
	"top": {Op: bytecode.OpTop}, "quote": {Op: bytecode.OpQuote}, "compose": {Op: bytecode.OpCompose},
	"apply": {Op: bytecode.OpApply}, "split": {Op: bytecode.OpSplit}, "size": {Op: bytecode.OpSize},
	"empty": {Op: bytecode.OpEmpty}, "last": {Op: bytecode.OpLast}, "compress": {Op: bytecode.OpCompress},
	"dip": {Op: bytecode.OpDip},
	"stack": {Op: bytecode.OpNewStack}, "push": {Op: bytecode.OpPush}, "pop": {Op: bytecode.OpPop},
	"inject": {Op: bytecode.OpInject},
	"type": {Op: bytecode.OpGetType},
	"INSTR": {Op: bytecode.OpTypeInstr}, "INT": {Op: bytecode.OpTypeInt}, "FLOAT": {Op: bytecode.OpTypeFloat},
	"BOOL": {Op: bytecode.OpTypeBool}, "STR": {Op: bytecode.OpTypeStr}, "TYPE": {Op: bytecode.OpTypeType},
	"NONE": {Op: bytecode.OpTypeNone}, "STACK": {Op: bytecode.OpTypeStack},
	"if": {Op: bytecode.OpIf}, "loop": {Op: bytecode.OpLoop}, "nop": {Op: bytecode.OpNop},
	"exit": {Op: bytecode.OpExit}, "try": {Op: bytecode.OpTry},
	"print": {Op: bytecode.OpPrint}, "printall": {Op: bytecode.OpPrintAll},
}
