// Package abc decodes ActionScript Byte Code blobs.
//
// An ABC blob is a version header, a constant pool and a sequence of
// record tables: method signatures, metadata, instances and classes,
// scripts and method bodies. Every cross reference is an index, so the
// decoded File and the assembled Model are plain index-addressed tables.
//
// # Decoding
//
// Decode reads the record structure and validates every index against
// the tables read so far. Method body code is kept raw:
//
//	f, err := abc.Decode(data)
//	if err != nil {
//	    return err
//	}
//
// DecodeBody turns one body into instructions in a single linear pass.
// Parse runs Decode, decodes every body and assembles the Model:
//
//	m, err := abc.Parse(data, abc.Lenient)
//
// In Lenient mode opcodes missing from the table decode as operand-less
// unknown instructions, each one adding an unsupported_opcode error to
// MethodBody.Warnings, and a body that fails to decode keeps its error
// in MethodBody.Err. Strict mode returns the first such error.
//
// # Names
//
// Pool.ResolveName renders a multiname for display. Package namespaces
// qualify the local name, access namespaces do not, runtime-qualified
// forms render with a "*" qualifier and TypeName renders as Base.<Param>:
//
//	flash.display.Sprite
//	*::x
//	Vector.<Vector.<int>>
//
// Index 0 of every pool table is a sentinel and resolves to "*".
//
// # Errors
//
// All errors are *errors.Error values. Offsets are absolute positions
// in the blob passed to Decode, or in the body code for instruction
// errors.
package abc
