// Package network extracts a seed genome from a SUMO network description.
package network

import (
	"encoding/xml"
	"fmt"
	"math"
	"os"

	"greenwave/internal/model"
)

type netFile struct {
	TrafficLights []tlLogic `xml:"tlLogic"`
}

type tlLogic struct {
	ID     string  `xml:"id,attr"`
	Phases []phase `xml:"phase"`
}

type phase struct {
	Duration float64 `xml:"duration,attr"`
	State    string  `xml:"state,attr"`
}

// SeedFromNetwork reads the tlLogic program of one junction and returns its
// green-phase durations as the seed genome. Green phases are the
// even-indexed phases of the program; the odd ones are amber/clearance.
func SeedFromNetwork(path, junctionID string) (model.Genome, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read network file: %w", err)
	}
	return seedFromXML(data, junctionID)
}

func seedFromXML(data []byte, junctionID string) (model.Genome, error) {
	var net netFile
	if err := xml.Unmarshal(data, &net); err != nil {
		return nil, fmt.Errorf("parse network file: %w", err)
	}

	var logic *tlLogic
	for i := range net.TrafficLights {
		if net.TrafficLights[i].ID == junctionID {
			logic = &net.TrafficLights[i]
			break
		}
	}
	if logic == nil {
		return nil, fmt.Errorf("traffic light %q not found in network", junctionID)
	}

	var genome model.Genome
	for i, p := range logic.Phases {
		if i%2 != 0 {
			continue
		}
		genome = append(genome, int(math.Round(p.Duration)))
	}
	if len(genome) == 0 {
		return nil, fmt.Errorf("no green phases found for traffic light %q", junctionID)
	}
	return genome, nil
}
