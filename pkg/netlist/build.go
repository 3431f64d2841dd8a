package netlist

import (
	"fmt"
	"log"
	"slices"
	"strings"

	"github.com/leoll2/Ohmulator/internal/consts"
	"github.com/leoll2/Ohmulator/pkg/circuit"
	"github.com/leoll2/Ohmulator/pkg/device"
	"github.com/leoll2/Ohmulator/pkg/session"
)

func isGround(name string) bool {
	return name == "0" || strings.EqualFold(name, "gnd")
}

// NodeOrder lists the node names by order of appearance.
func (nd *NetlistData) NodeOrder() []string {
	names := make([]string, 0, len(nd.Nodes))
	for name := range nd.Nodes {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int { return nd.Nodes[a] - nd.Nodes[b] })
	return names
}

// Build loads the netlist into a new session. Node "0" (or "gnd") is ground;
// the other nodes are numbered by order of appearance.
func Build(nd *NetlistData, logger *log.Logger) (*session.Session, error) {
	s := session.New(nd.Title, logger)
	s.AddNamedNode("0")

	ids := make(map[string]int)
	for _, name := range nd.NodeOrder() {
		if isGround(name) {
			ids[name] = consts.GROUND
			continue
		}
		ids[name] = s.AddNamedNode(name)
	}

	for _, elem := range nd.Elements {
		if err := addElement(s, elem, ids); err != nil {
			return nil, fmt.Errorf("%s: %w", elem.Name, err)
		}
	}
	return s, nil
}

func addElement(s *session.Session, elem Element, ids map[string]int) error {
	dev, err := CreateDevice(elem, ids)
	if err != nil {
		return err
	}
	p1, p2 := ids[elem.Nodes[0]], ids[elem.Nodes[1]]

	if !dev.Kind.ControlledByCurrent() {
		_, err = s.AddBranch(p1, p2, dev)
		return err
	}

	ctrl := elem.Params["ctrl"]
	if a, b, ok := parsePair(ctrl); ok {
		na, oka := ids[a]
		nb, okb := ids[b]
		if !oka || !okb {
			return fmt.Errorf("controller %s: %w", ctrl, circuit.ErrNodeNotFound)
		}
		_, err = s.AddControlledByPair(p1, p2, dev, na, nb)
		return err
	}

	id, ok := s.BranchByName(ctrl)
	if !ok {
		return fmt.Errorf("controller %s must be declared before use: %w", ctrl, circuit.ErrInvalidController)
	}
	dev.Control.Branch = id
	_, err = s.AddBranch(p1, p2, dev)
	return err
}

// CreateDevice turns a parsed element into its electrical description.
// Current controllers are resolved by the caller.
func CreateDevice(elem Element, ids map[string]int) (device.Element, error) {
	switch elem.Type {
	case "W":
		return device.NewWire(elem.Name), nil

	case "R":
		return device.NewResistor(elem.Name, elem.Value), nil

	case "L":
		return device.NewInductor(elem.Name, elem.Value), nil

	case "C":
		return device.NewCapacitor(elem.Name, elem.Value), nil

	case "V", "I":
		return createSource(elem)

	case "E":
		return device.NewVCVS(elem.Name, elem.Value, ids[elem.Nodes[2]], ids[elem.Nodes[3]]), nil

	case "G":
		return device.NewVCCS(elem.Name, elem.Value, ids[elem.Nodes[2]], ids[elem.Nodes[3]]), nil

	case "H":
		return device.NewCCVS(elem.Name, elem.Value, -1), nil

	case "F":
		return device.NewCCCS(elem.Name, elem.Value, -1), nil
	}
	return device.Element{}, fmt.Errorf("unsupported device type: %s", elem.Type)
}

func createSource(elem Element) (device.Element, error) {
	var stype device.SourceType
	switch elem.Params["type"] {
	case "dc":
		if elem.Type == "V" {
			return device.NewDCVoltageSource(elem.Name, elem.Value), nil
		}
		return device.NewDCCurrentSource(elem.Name, elem.Value), nil
	case "sin":
		stype = device.SinSource
	case "cos":
		stype = device.CosSource
	default:
		return device.Element{}, fmt.Errorf("unsupported source type: %s", elem.Params["type"])
	}

	magnitude, omega, phase, err := parseSinParams(elem.Params["args"])
	if err != nil {
		return device.Element{}, err
	}
	if elem.Type == "V" {
		return device.NewSinVoltageSource(elem.Name, elem.Value, stype, magnitude, omega, phase), nil
	}
	return device.NewSinCurrentSource(elem.Name, elem.Value, stype, magnitude, omega, phase), nil
}
