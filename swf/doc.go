// Package swf demultiplexes SWF files into tags and extracts the ABC
// payloads carried by DoABC and DoABC2 tags.
//
// FWS bodies are read as is, CWS bodies are zlib-inflated and ZWS
// bodies are LZMA-decoded before the tag stream is walked. Every tag is
// skipped by its declared length, so unknown tags never desynchronize
// the stream.
package swf
