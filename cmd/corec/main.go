// cmd/corec/main.go is a thin driver over the core pipeline: the
// lexer/parser and real source-file intake stay out of scope (spec §1), so
// this only builds one hardcoded IR function (`main() { return 2 + 3; }`)
// and runs it through C9-C15, printing the resulting machine-word count and
// its humanized byte size. Grounded on the teacher's cmd/sentra/main.go
// "run" subcommand (read input, drive the pipeline, report a result or
// log.Fatalf), trimmed to the one path this module actually implements.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/dustin/go-humanize"

	"corec/internal/asm"
	"corec/internal/asm/labels"
	"corec/internal/asm/regalloc"
	"corec/internal/dataseg"
	"corec/internal/decl"
	"corec/internal/emit"
	"corec/internal/engines"
	"corec/internal/ir"
	"corec/internal/ir/constprop"
	"corec/internal/ir/demote"
)

func main() {
	e := engines.New()
	fnDecl := e.Decls.Insert(decl.Decl{Kind: decl.KindFunction, Name: "main"})

	fn := ir.NewFunction(fnDecl)
	lhs := fn.FreshReg()
	rhs := fn.FreshReg()
	sum := fn.FreshReg()
	fn.Emit(fn.Entry, ir.Instr{Op: ir.OpMoveImmediate, Dst: lhs, Lhs: ir.ConstValue(2)})
	fn.Emit(fn.Entry, ir.Instr{Op: ir.OpMoveImmediate, Dst: rhs, Lhs: ir.ConstValue(3)})
	fn.Emit(fn.Entry, ir.Instr{Op: ir.OpBinary, Bin: ir.BinAdd, Dst: sum, Lhs: ir.RegValue(lhs), Rhs: ir.RegValue(rhs)})
	fn.Emit(fn.Entry, ir.Instr{Op: ir.OpReturn, Lhs: ir.RegValue(sum)})

	demote.Run(fn, e.Types)
	constprop.Run(fn)

	prog := asm.Lower(fn)
	alloc := regalloc.Run(prog)
	prog.Instrs = regalloc.Apply(prog.Instrs, alloc)

	resolved, err := labels.Resolve(prog)
	if err != nil {
		log.Fatalf("label resolution failed: %v", err)
	}

	data := dataseg.New()
	packed, err := emit.Emit(resolved.Instrs, data, nil)
	if err != nil {
		log.Fatalf("emission failed: %v", err)
	}

	wordBytes := len(packed.Words) * 4
	fmt.Fprintf(os.Stdout, "corec: emitted %d words (%s), %d data-section entries (%s), %d spilled register(s)\n",
		len(packed.Words), humanize.Bytes(uint64(wordBytes)),
		data.Len(), humanize.Bytes(uint64(data.Size())),
		len(alloc.Spills))
}
