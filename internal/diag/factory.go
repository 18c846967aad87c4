package diag

import (
	"fmt"

	"github.com/lapis-lang/lapis/internal/sourcemap"
)

// Lexical errors (LAP1xxx).

func UnexpectedCharacterError(span sourcemap.Span, char string) *Diagnostic {
	msg := fmt.Sprintf("unexpected character '%s'", char)
	d := New(UnexpectedCharacter, Error, msg, []Label{{Span: span, Message: msg, IsPrimary: true}})
	d.Help = "check for typos or unsupported characters"
	return d
}

func UnterminatedStringError(span sourcemap.Span) *Diagnostic {
	d := New(UnterminatedString, Error, "unterminated string literal",
		[]Label{{Span: span, Message: "string starts here", IsPrimary: true}})
	d.Help = "add a closing quote to terminate the string"
	return d
}

func UnterminatedCommentError(span sourcemap.Span) *Diagnostic {
	d := New(UnterminatedComment, Error, "unterminated block comment",
		[]Label{{Span: span, Message: "comment starts here", IsPrimary: true}})
	d.Help = "add a closing '*/' to terminate the comment"
	return d
}

func UnterminatedTemplateLiteralError(span sourcemap.Span) *Diagnostic {
	d := New(UnterminatedTemplateLiteral, Error, "unterminated template literal",
		[]Label{{Span: span, Message: "template literal starts here", IsPrimary: true}})
	d.Help = "add a closing backtick to terminate the template literal"
	return d
}

func InvalidNumberError(span sourcemap.Span, text string) *Diagnostic {
	msg := fmt.Sprintf("invalid number literal '%s'", text)
	d := New(InvalidNumber, Error, msg, []Label{{Span: span, Message: msg, IsPrimary: true}})
	return d
}

// Parser errors (LAP2xxx).

func ExpectedTokenError(span sourcemap.Span, expected, found string) *Diagnostic {
	msg := fmt.Sprintf("expected '%s', found '%s'", expected, found)
	d := New(ExpectedToken, Error, msg, []Label{{Span: span, Message: fmt.Sprintf("expected '%s' here", expected), IsPrimary: true}})
	d.Help = fmt.Sprintf("add '%s' before this token", expected)
	return d
}

func ExpectedExpressionError(span sourcemap.Span) *Diagnostic {
	d := New(ExpectedExpression, Error, "expected expression",
		[]Label{{Span: span, Message: "expected expression here", IsPrimary: true}})
	d.Help = "add a valid expression (variable, literal, or function call)"
	return d
}

func ExpectedStatementError(span sourcemap.Span) *Diagnostic {
	d := New(ExpectedStatement, Error, "expected statement",
		[]Label{{Span: span, Message: "expected statement here", IsPrimary: true}})
	return d
}

func InvalidAssignmentTargetError(span sourcemap.Span) *Diagnostic {
	d := New(InvalidAssignmentTarget, Error, "invalid assignment target",
		[]Label{{Span: span, Message: "cannot assign to this expression", IsPrimary: true}})
	d.Help = "only variables, properties, and array elements can be assigned to"
	return d
}

func VariadicNotLastError(span sourcemap.Span) *Diagnostic {
	d := New(VariadicNotLast, Error, "variadic parameter must be the last parameter",
		[]Label{{Span: span, Message: "variadic parameter declared here", IsPrimary: true}})
	d.Help = "move this parameter to the end of the parameter list"
	return d
}

// Type errors (LAP3xxx).

func InvalidBinaryOperationError(exprSpan, leftSpan, rightSpan sourcemap.Span, operator, leftType, rightType string) *Diagnostic {
	msg := fmt.Sprintf("cannot use operator '%s' with %s and %s", operator, leftType, rightType)
	labels := []Label{
		{Span: exprSpan, Message: msg, IsPrimary: true},
		{Span: leftSpan, Message: fmt.Sprintf("left operand has type %s", leftType)},
		{Span: rightSpan, Message: fmt.Sprintf("right operand has type %s", rightType)},
	}
	help := fmt.Sprintf("operator '%s' requires numeric operands", operator)
	switch operator {
	case "==", "!=":
		help = "equality operators work with any types"
	case "<", ">", "<=", ">=":
		help = "comparison operators require numeric operands"
	}
	d := New(TypeMismatchBinary, Error, msg, labels)
	d.Help = help
	return d
}

func InvalidUnaryOperationError(span sourcemap.Span, operator, operandType string) *Diagnostic {
	msg := fmt.Sprintf("cannot use operator '%s' with %s", operator, operandType)
	d := New(TypeMismatchUnary, Error, msg, []Label{{Span: span, Message: msg, IsPrimary: true}})
	return d
}

func CannotCallError(span sourcemap.Span, typeName string) *Diagnostic {
	msg := fmt.Sprintf("'%s' is not callable", typeName)
	d := New(CannotCall, Error, msg, []Label{{Span: span, Message: msg, IsPrimary: true}})
	d.Help = "only functions, classes, and methods can be called"
	return d
}

func WrongArityError(span sourcemap.Span, expected, got int) *Diagnostic {
	msg := fmt.Sprintf("expected %d argument(s) but got %d", expected, got)
	d := New(WrongArity, Error, msg, []Label{{Span: span, Message: msg, IsPrimary: true}})
	return d
}

func NoPropertyError(span sourcemap.Span, typeName, propName string) *Diagnostic {
	msg := fmt.Sprintf("'%s' has no property '%s'", typeName, propName)
	d := New(NoProperty, Error, msg, []Label{{Span: span, Message: msg, IsPrimary: true}})
	return d
}

func NotIndexableError(span sourcemap.Span, typeName string) *Diagnostic {
	msg := fmt.Sprintf("'%s' is not indexable", typeName)
	d := New(NotIndexable, Error, msg, []Label{{Span: span, Message: msg, IsPrimary: true}})
	return d
}

func IndexOutOfBoundsError(span sourcemap.Span, index, length int) *Diagnostic {
	msg := fmt.Sprintf("index %d is out of bounds for length %d", index, length)
	d := New(IndexOutOfBounds, Error, msg, []Label{{Span: span, Message: msg, IsPrimary: true}})
	return d
}

func DivisionByZeroError(span sourcemap.Span) *Diagnostic {
	d := New(DivisionByZero, Error, "division by zero",
		[]Label{{Span: span, Message: "division by zero", IsPrimary: true}})
	d.Help = "ensure the denominator is not zero before dividing"
	return d
}

// Runtime errors (LAP4xxx).

func UndefinedVariableError(span sourcemap.Span, name string) *Diagnostic {
	msg := fmt.Sprintf("undefined variable '%s'", name)
	d := New(UndefinedVariable, Error, msg, []Label{{Span: span, Message: fmt.Sprintf("'%s' not found", name), IsPrimary: true}})
	d.Help = fmt.Sprintf("declare the variable with 'var %s = value;' before using it", name)
	return d
}

func AccessViolationError(span sourcemap.Span, name string) *Diagnostic {
	msg := fmt.Sprintf("'%s' is private and cannot be accessed here", name)
	d := New(AccessViolation, Error, msg, []Label{{Span: span, Message: msg, IsPrimary: true}})
	return d
}

func ImportErrorDiag(span sourcemap.Span, message string) *Diagnostic {
	return New(ImportError, Error, message, []Label{{Span: span, Message: message, IsPrimary: true}})
}

func FileErrorDiag(span sourcemap.Span, message string) *Diagnostic {
	return New(FileError, Error, message, []Label{{Span: span, Message: message, IsPrimary: true}})
}

// RuntimeErrorDiag wraps a bare runtime error message (argument validation
// inside a built-in method, an operand check with no dedicated factory,
// an error bubbled out of a user callback) with a span.
func RuntimeErrorDiag(span sourcemap.Span, message string) *Diagnostic {
	return New(RuntimeError, Error, message, []Label{{Span: span, Message: message, IsPrimary: true}})
}

func NotIterableError(span sourcemap.Span, typeName string) *Diagnostic {
	msg := fmt.Sprintf("object is not iterable: %s", typeName)
	d := New(NotIterable, Error, msg, []Label{{Span: span, Message: msg, IsPrimary: true}})
	d.Help = "only arrays can be used in a for-in loop"
	return d
}

// Internal errors (LAP9xxx).

func InternalErrorDiag(message string) *Diagnostic {
	return New(InternalError, Error, message, nil)
}

func BreakOrContinueOutsideLoopError(span sourcemap.Span) *Diagnostic {
	return New(BreakOrContinueOutsideLoop, Error, "break or continue outside of loop",
		[]Label{{Span: span, Message: "used outside of a loop", IsPrimary: true}})
}
