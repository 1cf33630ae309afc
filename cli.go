package potkit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"reflect"
	"strings"

	"github.com/hashicorp/logutils"
	flags "github.com/jessevdk/go-flags"

	"github.com/mlp-tools/potkit/checkpoint"
	"github.com/mlp-tools/potkit/logging"
	"github.com/mlp-tools/potkit/packaging"
	"github.com/mlp-tools/potkit/rdf"
	"github.com/mlp-tools/potkit/resolver"
	"github.com/mlp-tools/potkit/torchenv"
)

const (
	// ExitOK for exit code
	ExitOK int = 0

	// ExitErr for exit code
	ExitErr int = 1
)

// CLI struct
type CLI struct {
	outStream, errStream io.Writer
	Command              string
	Args                 []string
	Config               string `long:"config" short:"c" description:"Path to configuration file"`
	LogLevel             string `long:"log-level" short:"l" arg:"(debug|info|warn|error)" description:"Level displayed as log"`
	LogFormat            string `long:"log-format" arg:"(text|json)" description:"Format of log output"`
	Python               string `long:"python" short:"p" description:"Python interpreter used to probe the torch runtime"`
	Output               string `long:"output" short:"o" description:"Output image path for the rdf command"`
	Manifest             string `long:"manifest" short:"m" description:"Extern-module manifest for the extern command"`
	Help                 bool   `long:"help" short:"h" description:"show this help message and exit"`
	Version              bool   `long:"version" short:"v" description:"prints the version number"`
}

// RunCLI runs as CLI
func RunCLI(o, e io.Writer, a []string) int {
	cli := &CLI{outStream: o, errStream: e}
	return cli.run(a)
}

func (c *CLI) buildHelp(names []string) []string {
	var help []string
	t := reflect.TypeOf(CLI{})

	for _, name := range names {
		f, ok := t.FieldByName(name)
		if !ok {
			continue
		}

		tag := f.Tag
		if tag == "" {
			continue
		}

		var o, a string
		if a = tag.Get("arg"); a != "" {
			a = fmt.Sprintf("=%s", a)
		}
		if s := tag.Get("short"); s != "" {
			o = fmt.Sprintf("-%s, --%s%s", tag.Get("short"), tag.Get("long"), a)
		} else {
			o = fmt.Sprintf("--%s%s", tag.Get("long"), a)
		}

		desc := tag.Get("description")
		if i := strings.Index(desc, "\n"); i >= 0 {
			var buf bytes.Buffer
			buf.WriteString(desc[:i+1])
			desc = desc[i+1:]
			const indent = "                        "
			for {
				if i = strings.Index(desc, "\n"); i >= 0 {
					buf.WriteString(indent)
					buf.WriteString(desc[:i+1])
					desc = desc[i+1:]
					continue
				}
				break
			}
			if len(desc) > 0 {
				buf.WriteString(indent)
				buf.WriteString(desc)
			}
			desc = buf.String()
		}
		help = append(help, fmt.Sprintf("  %-40s %s", o, desc))
	}

	return help
}

func (c *CLI) showHelp() {
	Banner(c.outStream)

	opts := strings.Join(c.buildHelp([]string{
		"Config",
		"LogLevel",
		"LogFormat",
		"Python",
		"Output",
		"Manifest",
	}), "\n")

	help := `
Usage: potkit [--version] [--help] command <options>

Commands:
  resolve  Determine the torch version behind a training checkpoint
  rdf      Plot an RDF comparison between a reference and a model run
  extern   Print the extern-module list for model packaging

Options:
%s
`
	fmt.Fprintf(c.outStream, help, opts)
}

func (c *CLI) run(a []string) int {
	p := flags.NewParser(c, flags.PrintErrors|flags.PassDoubleDash)
	args, err := p.ParseArgs(a)
	if err != nil || c.Help {
		c.showHelp()
		return ExitErr
	}

	if c.Version {
		fmt.Fprintf(c.errStream, "%s version %s [%v, %v]\n", name, version, commit, date)
		return ExitOK
	}

	if len(args) == 0 {
		fmt.Fprintf(c.errStream, "Error: command is not available\n")
		c.showHelp()
		return ExitErr
	}

	c.Command = args[0]
	if len(args) > 1 {
		c.Args = args[1:]
	}

	if c.LogLevel != "" {
		c.LogLevel = strings.ToUpper(c.LogLevel)
	} else {
		c.LogLevel = "ERROR"
	}

	filter := &logutils.LevelFilter{
		Levels:   []logutils.LogLevel{"DEBUG", "INFO", "WARN", "ERROR"},
		MinLevel: logutils.LogLevel(c.LogLevel),
		Writer:   c.errStream,
	}
	log.SetOutput(filter)

	logger := logging.New(c.LogLevel, c.LogFormat, c.errStream)

	conf := DefaultConfig()
	if c.Config != "" {
		conf, err = LoadConfig(c.Config)
		if err != nil {
			fmt.Fprintf(c.errStream, "Error: %s\n", err)
			return ExitErr
		}
	}
	conf.OverrideWithEnv()

	if c.Python != "" {
		conf.Python = c.Python
	}
	if c.Output != "" {
		conf.RDF.Output = c.Output
	}
	if c.Manifest != "" {
		conf.Extern.Manifest = c.Manifest
	}

	switch c.Command {
	case "resolve":
		return c.runResolve(conf, logger)
	case "rdf":
		return c.runRDF(conf, logger)
	case "extern":
		return c.runExtern(conf)
	}

	fmt.Fprintf(c.errStream, "Error: command is not available\n")
	c.showHelp()
	return ExitErr
}

func (c *CLI) runResolve(conf Config, logger *logging.Logger) int {
	ctx := context.Background()

	prober := &torchenv.PythonProber{
		Python: conf.Python,
		Log:    logger.With("component", "torchenv"),
	}

	var sources []resolver.Source
	if len(c.Args) > 0 {
		sources = append(sources, &resolver.CheckpointSource{
			Path:   c.Args[0],
			Loader: &checkpoint.ZipLoader{Log: logger.With("component", "checkpoint")},
			Proxy:  prober,
			Log:    logger.With("component", "resolver"),
		})
	}
	sources = append(sources, &resolver.EnvironmentSource{Prober: prober})

	res, err := resolver.New(sources, logger.With("component", "resolver")).Resolve(ctx)
	if err != nil {
		if errors.Is(err, resolver.ErrUnparseable) {
			fmt.Fprintf(c.errStream, "Error: %s\n", err)
		} else {
			fmt.Fprintf(c.errStream, "Error: could not determine torch version. Install torch or provide a valid checkpoint file.\n")
		}
		return ExitErr
	}

	fmt.Fprintf(c.outStream, "TORCH_VERSION=%s\n", res.Version)
	fmt.Fprintf(c.outStream, "TORCH_MAJOR_MINOR=%s\n", res.MajorMinor)
	fmt.Fprintf(c.outStream, "SOURCE=%s\n", res.Source)

	// Bare value last, no newline, so shells can capture it directly.
	fmt.Fprint(c.outStream, res.MajorMinor)
	return ExitOK
}

func (c *CLI) runRDF(conf Config, logger *logging.Logger) int {
	if len(c.Args) != 2 {
		fmt.Fprintf(c.errStream, "Error: rdf requires a reference table and a candidate table\n")
		return ExitErr
	}

	ref, err := rdf.Load(c.Args[0], conf.RDF.ReferenceLabel)
	if err != nil {
		fmt.Fprintf(c.errStream, "Error: %s\n", err)
		return ExitErr
	}
	cand, err := rdf.Load(c.Args[1], conf.RDF.CandidateLabel)
	if err != nil {
		fmt.Fprintf(c.errStream, "Error: %s\n", err)
		return ExitErr
	}

	logger.Debug("profiles loaded",
		"reference_rows", ref.Len(), "candidate_rows", cand.Len())

	if err := rdf.PlotComparison(ref, cand, conf.RDF.Output); err != nil {
		fmt.Fprintf(c.errStream, "Error: %s\n", err)
		return ExitErr
	}

	fmt.Fprintln(c.outStream, conf.RDF.Output)
	return ExitOK
}

func (c *CLI) runExtern(conf Config) int {
	path := conf.Extern.Manifest
	if len(c.Args) > 0 {
		path = c.Args[0]
	}

	var (
		m   *packaging.Manifest
		err error
	)
	if path == "" {
		m = packaging.Default()
	} else {
		m, err = packaging.LoadManifest(path)
		if err != nil {
			fmt.Fprintf(c.errStream, "Error: %s\n", err)
			return ExitErr
		}
	}

	for _, mod := range m.ExternModules() {
		fmt.Fprintln(c.outStream, mod)
	}
	return ExitOK
}
