// Package rdf reads radial distribution function tables produced by
// molecular dynamics runs and renders comparison plots between a reference
// force field and a learned potential.
package rdf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Column layout of a LAMMPS ave/time rdf table. The first column is the
// pair distance, g(r) columns for each pair alternate with coordination
// numbers, hence the gaps.
const (
	colR  = 0
	colOO = 1
	colOH = 3
	colHH = 5

	minColumns = 8
)

// Profile holds the sampled g(r) curves of one simulation.
type Profile struct {
	Label string
	// R is the pair distance axis in Angstrom.
	R  []float64
	OO []float64
	OH []float64
	HH []float64
}

// Len returns the number of sampled distances.
func (p *Profile) Len() int {
	return len(p.R)
}

// Load reads an rdf table from disk.
func Load(path, label string) (*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("rdf: open %s: %w", path, err)
	}
	defer f.Close()

	p, err := Parse(f, label)
	if err != nil {
		return nil, fmt.Errorf("rdf: %s: %w", path, err)
	}
	return p, nil
}

// Parse reads an rdf table. Header comments before the "# Row" marker are
// skipped; without a marker the whole input is treated as data. Rows with
// fewer than eight columns are discarded, the writer pads short sampling
// windows that way.
func Parse(r io.Reader, label string) (*Profile, error) {
	p := &Profile{Label: label}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			if strings.HasPrefix(line, "# Row") {
				// Data starts after the marker; anything read before it
				// was preamble.
				p.R, p.OO, p.OH, p.HH = nil, nil, nil, nil
			}
			continue
		}
		if err := p.appendRow(line); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}

	if p.Len() == 0 {
		return nil, fmt.Errorf("no data rows found")
	}
	return p, nil
}

func (p *Profile) appendRow(line string) error {
	fields := strings.Fields(line)
	if len(fields) < minColumns {
		return nil
	}

	values := make([]float64, 0, minColumns)
	for _, f := range fields[:minColumns] {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return fmt.Errorf("bad value %q: %w", f, err)
		}
		values = append(values, v)
	}

	p.R = append(p.R, values[colR])
	p.OO = append(p.OO, values[colOO])
	p.OH = append(p.OH, values[colOH])
	p.HH = append(p.HH, values[colHH])
	return nil
}
