package netlist

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

type AnalysisType int

const (
	AnalysisOP AnalysisType = iota
	AnalysisAC
	AnalysisDC
)

type NetlistData struct {
	Elements []Element     // Circuit elements
	Nodes    map[string]int // Node name and order of appearance
	Analysis AnalysisType   // Analysis type
	ACParam  struct {
		Omega float64 // angular frequency, 0 = from the sources
	}
	DCParam struct {
		Source    string
		Start     float64
		Stop      float64
		Increment float64
	}
	Title string // Circuit title
}

type Element struct {
	Type   string            // Part type (R, L, C, W, V, I, E, F, G, H)
	Name   string            // Part name
	Nodes  []string          // Node names
	Value  float64           // Part value, DC value or gain
	Params map[string]string // Parameter values
}

var unitMap = map[string]float64{
	"T":   1e12,  // tera
	"G":   1e9,   // giga
	"meg": 1e6,   // mega
	"K":   1e3,   // kilo
	"k":   1e3,   // kilo
	"m":   1e-3,  // milli
	"u":   1e-6,  // micro
	"n":   1e-9,  // nano
	"p":   1e-12, // pico
	"f":   1e-15, // femto
}

var (
	valueRe = regexp.MustCompile(`^([-+]?\d*\.?\d+(?:[eE][-+]?\d+)?)(meg|[TGMKkmunpf])?s?$`)
	spaceRe = regexp.MustCompile(`\s+`)
	commaRe = regexp.MustCompile(`\s*,\s*`)
	pairRe  = regexp.MustCompile(`^[iI]\(([^,()]+),([^,()]+)\)$`)
)

// Parse reads a netlist. The first line is the title; "*" starts a comment,
// "+" continues the previous line and ".end" stops parsing.
func Parse(input string) (*NetlistData, error) {
	scanner := bufio.NewScanner(strings.NewReader(input))
	netlistData := &NetlistData{
		Nodes: make(map[string]int),
	}

	// Title or comment
	if scanner.Scan() {
		netlistData.Title = strings.TrimPrefix(scanner.Text(), "*")
		netlistData.Title = strings.TrimSpace(netlistData.Title)
	}

	var currentLine string
	var continuationMode bool

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Empty line
		if len(line) == 0 {
			if currentLine != "" {
				if err := parseLine(netlistData, currentLine); err != nil {
					return nil, err
				}
				currentLine = ""
				continuationMode = false
			}
			continue
		}

		// Comment, whole line or trailing
		if idx := strings.Index(line, "*"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
			if len(line) == 0 {
				continue
			}
		}

		if strings.EqualFold(line, ".end") {
			break
		}

		// Line continue
		if strings.HasPrefix(line, "+") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "+"))
			if currentLine != "" {
				currentLine += " " + line
			}
			continuationMode = true
			continue
		}

		// Indented continuation
		if continuationMode && strings.HasPrefix(scanner.Text(), " ") {
			if currentLine != "" {
				currentLine += " " + line
			}
			continue
		}

		if currentLine != "" {
			if err := parseLine(netlistData, currentLine); err != nil {
				return nil, err
			}
		}
		currentLine = line
		continuationMode = false
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	// Final line
	if currentLine != "" {
		if err := parseLine(netlistData, currentLine); err != nil {
			return nil, err
		}
	}

	return netlistData, nil
}

func parseLine(netlistData *NetlistData, line string) error {
	line = spaceRe.ReplaceAllString(line, " ")
	line = commaRe.ReplaceAllString(line, ",")

	if strings.HasPrefix(line, ".") {
		return parseDotOperator(netlistData, line)
	}

	element, err := parseElement(line)
	if err != nil {
		return err
	}

	netlistData.Elements = append(netlistData.Elements, *element)
	for _, node := range element.Nodes {
		if _, exists := netlistData.Nodes[node]; !exists {
			netlistData.Nodes[node] = len(netlistData.Nodes)
		}
	}
	return nil
}

// Parse .op, .ac, .dc
func parseDotOperator(netlistData *NetlistData, line string) error {
	var err error

	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case ".op":
		netlistData.Analysis = AnalysisOP

	case ".ac":
		netlistData.Analysis = AnalysisAC
		if len(fields) > 1 {
			netlistData.ACParam.Omega, err = ParseValue(fields[1])
			if err != nil {
				return fmt.Errorf("invalid omega: %v", err)
			}
			if netlistData.ACParam.Omega <= 0 {
				return fmt.Errorf("omega must be positive: %s", fields[1])
			}
		}

	case ".dc":
		netlistData.Analysis = AnalysisDC
		if len(fields) < 5 {
			return fmt.Errorf("insufficient DC sweep parameters, need source, start, stop and increment")
		}

		netlistData.DCParam.Source = fields[1]
		netlistData.DCParam.Start, err = ParseValue(fields[2])
		if err != nil {
			return fmt.Errorf("invalid start value: %v", err)
		}
		netlistData.DCParam.Stop, err = ParseValue(fields[3])
		if err != nil {
			return fmt.Errorf("invalid stop value: %v", err)
		}
		netlistData.DCParam.Increment, err = ParseValue(fields[4])
		if err != nil {
			return fmt.Errorf("invalid increment value: %v", err)
		}

	default:
		return fmt.Errorf("unsupported analysis type: %s", fields[0])
	}

	return nil
}

// Parse circuit element
func parseElement(line string) (*Element, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return nil, fmt.Errorf("invalid element format: %s", line)
	}

	elem := &Element{
		Name:   fields[0],
		Type:   strings.ToUpper(string(fields[0][0])),
		Nodes:  fields[1:3],
		Params: make(map[string]string),
	}

	var err error
	switch elem.Type {
	case "W":
		if len(fields) != 3 {
			return nil, fmt.Errorf("wire %s takes two nodes", elem.Name)
		}

	case "R", "L", "C":
		if len(fields) != 4 {
			return nil, fmt.Errorf("%s: need two nodes and a value", elem.Name)
		}
		elem.Value, err = ParseValue(fields[3])
		if err != nil {
			return nil, err
		}

	case "V", "I":
		return parseSource(elem, fields)

	case "E", "G": // name n1 n2 nA nB gain
		if len(fields) != 6 {
			return nil, fmt.Errorf("%s: need two nodes, two control nodes and a gain", elem.Name)
		}
		elem.Nodes = fields[1:5]
		elem.Value, err = ParseValue(fields[5])
		if err != nil {
			return nil, err
		}

	case "F", "H": // name n1 n2 ctrl gain
		if len(fields) != 5 {
			return nil, fmt.Errorf("%s: need two nodes, a controlling branch and a gain", elem.Name)
		}
		elem.Params["ctrl"] = fields[3]
		elem.Value, err = ParseValue(fields[4])
		if err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("unsupported element type: %s", elem.Name)
	}

	return elem, nil
}

// parseSource reads "[DC v] [SIN(m w p)|COS(m w p)]" or a bare DC value.
func parseSource(elem *Element, fields []string) (*Element, error) {
	if len(fields) < 4 {
		return nil, fmt.Errorf("insufficient source parameters: %s", elem.Name)
	}
	elem.Params["type"] = "dc"

	remaining := strings.Join(fields[3:], " ")
	remaining = strings.ReplaceAll(remaining, "(", " ( ") // Append whitespace around parentheses
	remaining = strings.ReplaceAll(remaining, ")", " ) ")
	remaining = strings.ReplaceAll(remaining, ",", " ")
	words := strings.Fields(remaining)

	for i := 0; i < len(words); i++ {
		switch word := strings.ToUpper(words[i]); word {
		case "DC":
			if i+1 >= len(words) {
				return nil, fmt.Errorf("%s: missing DC value", elem.Name)
			}
			value, err := ParseValue(words[i+1])
			if err != nil {
				return nil, err
			}
			elem.Value = value
			i++

		case "SIN", "COS":
			end := i + 1
			for end < len(words) && words[end] != ")" {
				end++
			}
			if i+1 >= len(words) || words[i+1] != "(" || end == len(words) {
				return nil, fmt.Errorf("%s: %s needs (magnitude [omega [phase]])", elem.Name, word)
			}
			elem.Params["type"] = strings.ToLower(word)
			elem.Params["args"] = strings.Join(words[i+2:end], " ")
			i = end

		default:
			if i != 0 {
				return nil, fmt.Errorf("%s: unexpected %q", elem.Name, words[i])
			}
			value, err := ParseValue(words[i])
			if err != nil {
				return nil, err
			}
			elem.Value = value
		}
	}

	return elem, nil
}

// parseSinParams reads "magnitude [omega [phase]]"; omega defaults to 1 and
// phase (radians) to 0.
func parseSinParams(params string) (magnitude, omega, phase float64, err error) {
	sinParams := strings.Fields(params)
	if len(sinParams) < 1 || len(sinParams) > 3 {
		return 0, 0, 0, fmt.Errorf("need 1 to 3 sinusoid parameters, got %d", len(sinParams))
	}

	magnitude, err = ParseValue(sinParams[0])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid magnitude: %v", err)
	}

	omega = 1.0
	if len(sinParams) > 1 {
		omega, err = ParseValue(sinParams[1])
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid omega: %v", err)
		}
	}

	if len(sinParams) > 2 {
		phase, err = ParseValue(sinParams[2])
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid phase: %v", err)
		}
	}

	return magnitude, omega, phase, nil
}

// parsePair splits "I(a,b)" into its nodes.
func parsePair(ctrl string) (a, b string, ok bool) {
	m := pairRe.FindStringSubmatch(ctrl)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// ParseValue - Parse value and factor. 1k -> 1000
func ParseValue(val string) (float64, error) {
	matches := valueRe.FindStringSubmatch(strings.TrimSpace(val))
	if matches == nil {
		return 0, fmt.Errorf("invalid value format: %s", val)
	}

	num, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, err
	}

	// factor
	if len(matches) > 2 && matches[2] != "" {
		if multiplier, ok := unitMap[matches[2]]; ok {
			num *= multiplier
		}
	}

	return num, nil
}
