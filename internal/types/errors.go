package types

import (
	"errors"
	"fmt"
)

var (
	// ErrUnrecognizedType marks a host type or annotation with no logical mapping.
	ErrUnrecognizedType = errors.New("unrecognized type")
	// ErrUnsupportedConversion marks a logical type with no foreign mapping.
	ErrUnsupportedConversion = errors.New("unsupported conversion")
	// ErrAmbiguousTypeName marks a database type name no rule could classify.
	ErrAmbiguousTypeName = errors.New("ambiguous database type name")
	// ErrSchema marks a value that does not fit its target type.
	ErrSchema = errors.New("schema error")
	// ErrAmbiguousUnion marks a union annotation with several non-null branches.
	ErrAmbiguousUnion = errors.New("union with more than one non-null branch")
)

// UnrecognizedTypeError reports a native type or annotation that could not
// be mapped to a logical type.
type UnrecognizedTypeError struct {
	// Spec is the textual representation of the offending input.
	Spec string
	// Err optionally narrows the reason.
	Err error
}

func (e *UnrecognizedTypeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot infer dtype from %s: %v", e.Spec, e.Err)
	}
	return fmt.Sprintf("cannot infer dtype from %s", e.Spec)
}

func (e *UnrecognizedTypeError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrUnrecognizedType, e.Err}
	}
	return []error{ErrUnrecognizedType}
}

// UnsupportedConversionError reports a logical type that has no mapping into
// the requested representation.
type UnsupportedConversionError struct {
	DType  DataType
	Target string
}

func (e *UnsupportedConversionError) Error() string {
	return fmt.Sprintf("conversion of %s to %s not implemented", e.DType, e.Target)
}

func (e *UnsupportedConversionError) Unwrap() error { return ErrUnsupportedConversion }

// AmbiguousTypeNameError reports a database type name that matched no rule.
type AmbiguousTypeNameError struct {
	Name string
}

func (e *AmbiguousTypeNameError) Error() string {
	return fmt.Sprintf("cannot infer dtype from database type name %q", e.Name)
}

func (e *AmbiguousTypeNameError) Unwrap() error { return ErrAmbiguousTypeName }

// SchemaError reports a value rejected by strict coercion.
type SchemaError struct {
	Target DataType
	Value  any
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("unexpected value while building column of type %s; found value of type %T: %#v\n\n"+
		"Hint: pass strict=false to convert values best-effort and null out the rest.",
		e.Target, e.Value, e.Value)
}

func (e *SchemaError) Unwrap() error { return ErrSchema }
