// Command assemble builds a replicated biological assembly from an mmCIF
// file and prints the result as a summary or JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"assemblycore/internal/assembly"
	"assemblycore/internal/catalog"
	"assemblycore/internal/filestore"
	"assemblycore/internal/infra/cif"
	"assemblycore/pkg/structure"
)

var exitFunc = os.Exit

func main() {
	exitFunc(cli(os.Args[1:], os.Stdout, os.Stderr))
}

func cli(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("assemble", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		file       = fs.String("file", "", "path to an mmCIF file")
		entry      = fs.String("entry", "", "entry key to load from the filestore instead of -file")
		assemblyID = fs.String("assembly", "1", "assembly id to build")
		modelIndex = fs.Int("model", 0, "model index to build from")
		asJSON     = fs.Bool("json", false, "print the built structure as JSON")
		list       = fs.Bool("list", false, "list assembly definitions instead of building")
		catDriver  = fs.String("catalog", "", "record the build in a catalog backend (memory|sqlite|postgres)")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *file == "" && *entry == "" {
		fmt.Fprintln(stderr, "assemble: one of -file or -entry is required")
		fs.Usage()
		return 2
	}
	if err := run(context.Background(), stdout, options{
		file:       *file,
		entry:      *entry,
		assemblyID: *assemblyID,
		modelIndex: *modelIndex,
		asJSON:     *asJSON,
		list:       *list,
		catDriver:  *catDriver,
	}); err != nil {
		fmt.Fprintf(stderr, "assemble: %v\n", err)
		return 1
	}
	return 0
}

type options struct {
	file       string
	entry      string
	assemblyID string
	modelIndex int
	asJSON     bool
	list       bool
	catDriver  string
}

func run(ctx context.Context, stdout io.Writer, opts options) error {
	source, sourceName, err := openSource(ctx, opts)
	if err != nil {
		return err
	}
	defer func() { _ = source.Close() }()

	traj, err := cif.Read(source)
	if err != nil {
		return err
	}

	var svcOpts []assembly.Option
	var store catalog.Store
	if opts.catDriver != "" {
		if err := os.Setenv("ASSEMBLYCORE_CATALOG_DRIVER", opts.catDriver); err != nil {
			return err
		}
		store, err = catalog.Open(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		svcOpts = append(svcOpts, assembly.WithCatalog(store))
	}
	svc, err := assembly.NewService(assembly.DefaultCacheSize, svcOpts...)
	if err != nil {
		return err
	}

	if opts.list {
		return listDefinitions(ctx, stdout, svc, traj)
	}

	if store != nil {
		err := store.PutEntry(ctx, catalog.Entry{
			ID:        traj.ID(),
			Source:    sourceName,
			Frames:    traj.FrameCount(),
			CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			return err
		}
	}

	result, err := svc.Build(ctx, traj, opts.assemblyID, opts.modelIndex)
	if err != nil {
		return err
	}
	if result == nil {
		fmt.Fprintf(stdout, "no usable model at index %d\n", opts.modelIndex)
		return nil
	}
	if opts.asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	printSummary(stdout, traj.Label(), opts, result)
	return nil
}

// openSource resolves the input reader from either a local path or the
// configured filestore.
func openSource(ctx context.Context, opts options) (io.ReadCloser, string, error) {
	if opts.file != "" {
		f, err := os.Open(opts.file)
		if err != nil {
			return nil, "", err
		}
		return f, opts.file, nil
	}
	store, err := filestore.Open(ctx)
	if err != nil {
		return nil, "", err
	}
	_, rc, err := store.Get(ctx, opts.entry)
	if err != nil {
		return nil, "", fmt.Errorf("entry %s: %w", opts.entry, err)
	}
	return rc, opts.entry, nil
}

func listDefinitions(ctx context.Context, stdout io.Writer, svc *assembly.Service, traj *cif.Trajectory) error {
	defs, err := svc.Definitions(ctx, traj)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "block %s: %d frames, %d assemblies\n", traj.Label(), traj.FrameCount(), len(defs))
	for _, def := range defs {
		nums := make([]int, 0, len(def.Groups))
		for num := range def.Groups {
			nums = append(nums, num)
		}
		sort.Ints(nums)
		fmt.Fprintf(stdout, "assembly %s:", def.ID)
		for _, num := range nums {
			fmt.Fprintf(stdout, " model %d (%d tuples)", num, def.OperatorCount(num))
		}
		if def.Details != "" {
			fmt.Fprintf(stdout, " %s", def.Details)
		}
		fmt.Fprintln(stdout)
	}
	return nil
}

func printSummary(stdout io.Writer, label string, opts options, result *structure.Structure) {
	fmt.Fprintf(stdout, "block %s assembly %s model %d: %d units\n", label, opts.assemblyID, opts.modelIndex, len(result.Units))
	byOperator := make(map[string]int)
	for _, u := range result.Units {
		byOperator[u.Operator]++
	}
	tags := make([]string, 0, len(byOperator))
	for tag := range byOperator {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	for _, tag := range tags {
		fmt.Fprintf(stdout, "  operator %s: %d units\n", tag, byOperator[tag])
	}
}
