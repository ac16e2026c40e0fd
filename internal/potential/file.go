package potential

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// The sidecar file is a plain text description: a "potential <name>" header
// followed by one "key value" line per parameter, keys sorted. Values use
// the shortest representation that round-trips exactly.

func describeParams(params map[string]float64) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte(' ')
		b.WriteString(strconv.FormatFloat(params[k], 'g', -1, 64))
		b.WriteByte('\n')
	}
	return b.String()
}

// Save writes the field description to path.
func Save(f Field, path string) error {
	return os.WriteFile(path, []byte(f.Describe()), 0644)
}

// Load reads a field description produced by Save.
func Load(path string) (Field, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var name string
	params := map[string]float64{}

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if fields[0] == "potential" {
			if len(fields) != 2 {
				return nil, fmt.Errorf("potential: malformed header %q", line)
			}
			name = fields[1]
			continue
		}
		if len(fields) != 2 {
			return nil, fmt.Errorf("potential: malformed parameter line %q", line)
		}
		v, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("potential: bad value in %q: %w", line, err)
		}
		params[fields[0]] = v
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	switch name {
	case "zero":
		return Zero{}, nil
	case "pointmass":
		return PointMass{Mass: params["m"]}, nil
	case "milkyway":
		mw := NewMilkyWay()
		for k, v := range params {
			switch k {
			case "disk.m":
				mw.DiskMass = v
			case "disk.a":
				mw.DiskA = v
			case "disk.b":
				mw.DiskB = v
			case "bulge.m":
				mw.BulgeMass = v
			case "bulge.c":
				mw.BulgeC = v
			case "nucleus.m":
				mw.NucleusMass = v
			case "nucleus.c":
				mw.NucleusC = v
			case "halo.m":
				mw.HaloMass = v
			case "halo.rs":
				mw.HaloRs = v
			default:
				return nil, fmt.Errorf("potential: unknown milkyway parameter %q", k)
			}
		}
		return mw, nil
	case "":
		return nil, fmt.Errorf("potential: %s has no potential header", path)
	default:
		return nil, fmt.Errorf("potential: unknown potential %q", name)
	}
}
