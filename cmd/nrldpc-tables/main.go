// nrldpc-tables inspects the embedded base graph tables: it validates
// that every (base graph, lifting size) pair expands into a usable
// parity-check matrix, prints digests, and dumps expanded matrices to
// JSON for external analysis.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/observe-l/nrldpc/ldpc"
)

func main() {
	var validate, summary bool
	var dump, outPath string
	flag.BoolVar(&validate, "validate", false, "construct an encoder for every base graph and lifting size")
	flag.BoolVar(&summary, "summary", false, "print table digests and entry counts")
	flag.StringVar(&dump, "dump", "", "dump one expanded matrix, as <bg>:<liftingSize> e.g. 1:208")
	flag.StringVar(&outPath, "out", "tables/dump.json", "output path for -dump")
	flag.Parse()

	if !validate && !summary && dump == "" {
		summary = true
	}

	if summary {
		for _, bg := range []ldpc.BaseGraph{ldpc.BG1, ldpc.BG2} {
			d, err := ldpc.DumpTable(bg, ldpc.SupportedLiftingSizes()[0])
			if err != nil {
				fatalf("%v: %v", bg, err)
			}
			deg := make([]int, d.BlockRows)
			for _, e := range d.Entries {
				deg[e.Row]++
			}
			minDeg, maxDeg := deg[0], deg[0]
			for _, n := range deg[1:] {
				if n < minDeg {
					minDeg = n
				}
				if n > maxDeg {
					maxDeg = n
				}
			}
			fmt.Printf("%s: %dx%d blocks, %d entries, row degree %d..%d, digest %s\n",
				d.BaseGraph, d.BlockRows, d.BlockCols, len(d.Entries), minDeg, maxDeg, d.Digest)
		}
	}

	if validate {
		bad := 0
		for _, bg := range []ldpc.BaseGraph{ldpc.BG1, ldpc.BG2} {
			for _, ls := range ldpc.SupportedLiftingSizes() {
				for _, typ := range []ldpc.EncoderType{ldpc.TypeGeneric, ldpc.TypePacked} {
					enc, err := ldpc.NewEncoder(bg, ls, typ)
					if err != nil {
						fmt.Fprintf(os.Stderr, "%v ls=%d %v: %v\n", bg, ls, typ, err)
						bad++
						continue
					}
					enc.Close()
				}
			}
		}
		if bad > 0 {
			fatalf("%d combinations failed", bad)
		}
		fmt.Printf("validated %d combinations\n", 2*2*len(ldpc.SupportedLiftingSizes()))
	}

	if dump != "" {
		bg, ls, err := parseDumpSpec(dump)
		if err != nil {
			fatalf("%v", err)
		}
		d, err := ldpc.DumpTable(bg, ls)
		if err != nil {
			fatalf("%v", err)
		}
		if dir := filepath.Dir(outPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				fatalf("mkdir %s: %v", dir, err)
			}
		}
		if err := ldpc.SaveTableDump(outPath, d); err != nil {
			fatalf("write %s: %v", outPath, err)
		}
		fmt.Printf("wrote %s\n", outPath)
	}
}

func parseDumpSpec(s string) (ldpc.BaseGraph, int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("dump spec %q: want <bg>:<liftingSize>", s)
	}
	var bg ldpc.BaseGraph
	switch parts[0] {
	case "1":
		bg = ldpc.BG1
	case "2":
		bg = ldpc.BG2
	default:
		return 0, 0, fmt.Errorf("dump spec %q: base graph must be 1 or 2", s)
	}
	ls, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("dump spec %q: %v", s, err)
	}
	return bg, ls, nil
}

func fatalf(f string, a ...any) { fmt.Fprintf(os.Stderr, f+"\n", a...); os.Exit(1) }
