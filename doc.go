// Package abcdump decodes compiled Flash artifacts (.swf, .swc and raw
// .abc blobs) into two deterministic text projections: an interface stub
// of the public API and a per-instruction IL dump of every method body.
//
// # Architecture Overview
//
// The module is organized into several packages with distinct responsibilities:
//
//	abcdump/             Root package with the archive collaborator and projection selector
//	├── decoder/         Whole pipeline: bytes in, stub and IL text out
//	├── swf/             SWF header, decompression and tag demultiplexing
//	├── swc/             library.swf extraction from SWC archives
//	├── abc/             Constant pool, name resolution, records, bytecode, model
//	├── render/          Interface stub and IL dump printers
//	├── export/          Canonical CBOR snapshot of decoded models
//	├── batch/           Parallel decoding of project trees, caching, watch mode
//	├── config/          abcdump.toml loading
//	├── errors/          Structured error types for debugging
//	└── cmd/abcdump/     Command line tool and interactive browser
//
// # Quick Start
//
// Decode a file and print both projections:
//
//	data, err := os.ReadFile("library.swc")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := decoder.Decode(data, decoder.Options{Mode: abc.Strict})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(res.Stub)
//	fmt.Print(res.IL)
//
// # Lenient and Strict Decoding
//
// Container and constant pool errors always abort the decode. Errors in a
// single method body abort only in abc.Strict mode; in abc.Lenient mode
// the body renders a placeholder line and the error is reported in
// Result.Diagnostics. Unknown opcodes decode as unknown_0xNN in lenient
// mode and are reported in Result.Diagnostics as unsupported_opcode.
//
// # Thread Safety
//
// Decoding keeps no state between calls. Independent inputs may be
// decoded concurrently; the batch package does exactly that.
package abcdump
