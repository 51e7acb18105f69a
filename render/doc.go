// Package render produces the two text projections of an assembled ABC
// model.
//
// # Interface stub
//
// InterfaceStub lists the public API as ActionScript declarations:
//
//	package flash.display {
//	  public class Sprite extends DisplayObjectContainer {
//	    public function get graphics():flash.display.Graphics;
//	    public function startDrag(lockCenter:Boolean = false, bounds:flash.geom.Rectangle = null):void;
//	  }
//	}
//
// Only names in package-public or user-defined namespaces are included.
// Private, protected and internal declarations are omitted, as are
// constructors without parameters.
//
// # IL dump
//
// ILDump lists every method body with one instruction per line:
//
//	function Foo/bar():void
//	  // method 2, max_stack 1, locals 1, scope 0..1, code 3 bytes
//	       0  getlocal0
//	       1  pushscope
//	       2  returnvoid
//
// Branch operands show absolute targets. Bodies that failed to decode
// in lenient mode render a single error line in place of instructions.
//
// Both projections are pure functions of the model: rendering the same
// model twice yields identical bytes.
package render
