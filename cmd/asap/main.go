package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/teris-io/cli"

	"github.com/tmakhader/asap-patch/pkg/asap"
	"github.com/tmakhader/asap-patch/pkg/perr"
	"github.com/tmakhader/asap-patch/pkg/rast/refverilog"
)

var Description = strings.ReplaceAll(`
The ASAP patch tool reads a Verilog file list, scans it for #pragma observe/
control annotations, rewrites the driver/load graph of every annotated
signal to route it through a side-channel tap, plumbs the resulting
observation/control buses up through the instance hierarchy, and emits a
"_patch" copy of every input file alongside the original.
`, "\n", " ")

var AsapPatch = cli.New(Description).
	WithArg(cli.NewArg("filelist", "Path to a text file listing one Verilog source path per line")).
	WithArg(cli.NewArg("top", "Name of the top-level module to root the instance tree at")).
	WithOption(cli.NewOption("observe-port", "Name of the observation side-channel output port").
		WithType(cli.TypeString)).
	WithOption(cli.NewOption("control-port-in", "Name of the control side-channel output port").
		WithType(cli.TypeString)).
	WithOption(cli.NewOption("control-port-out", "Name of the control side-channel input port").
		WithType(cli.TypeString)).
	WithOption(cli.NewOption("verbose", "Enables debug-level logging").
		WithType(cli.TypeBool)).
	WithAction(Handler)

func Handler(args []string, options map[string]string) int {
	if len(args) < 2 {
		fmt.Printf("ERROR: Not enough arguments provided, use --help\n")
		return -1
	}

	cfg := asap.DefaultConfig()
	cfg.TopModule = args[1]
	if v := options["observe-port"]; v != "" {
		cfg.ObservePort = v
	}
	if v := options["control-port-in"]; v != "" {
		cfg.ControlPortIn = v
	}
	if v := options["control-port-out"]; v != "" {
		cfg.ControlPortOut = v
	}

	filelist, err := readFilelist(args[0])
	if err != nil {
		fmt.Printf("ERROR: Unable to read filelist: %s\n", err)
		return -1
	}

	log := logrus.New()
	if _, enabled := options["verbose"]; enabled {
		log.SetLevel(logrus.DebugLevel)
	}
	entry := logrus.NewEntry(log)

	result, err := asap.Run(cfg, filelist, refverilog.NewParser(), refverilog.NewEmitter(), entry)
	var empty *perr.EmptyRun
	if errors.As(err, &empty) {
		fmt.Printf("%s\n", err)
		return 0
	}
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		return -1
	}

	fmt.Printf("Patched %d file(s); top module aggregate widths: observe=%d control=%d\n",
		len(result.PatchedFiles), result.RootObserveWidth, result.RootControlWidth)
	for _, f := range result.PatchedFiles {
		fmt.Printf("  %s\n", f)
	}

	return 0
}

// readFilelist reads one path per line, blanks ignored (spec §6 "File
// list").
func readFilelist(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var files []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			files = append(files, line)
		}
	}
	return files, sc.Err()
}

func main() { os.Exit(AsapPatch.Run(os.Args, os.Stdout)) }
