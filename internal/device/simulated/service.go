package simulated

import (
	"sort"

	"github.com/srg/bleconform/internal/device"
)

// Service is a discovered GATT service and its characteristics
type Service struct {
	uuid            string
	knownName       string
	characteristics map[string]*Characteristic
}

func (s *Service) UUID() string {
	return s.uuid
}

func (s *Service) KnownName() string {
	return s.knownName
}

func (s *Service) GetCharacteristics() []device.Characteristic {
	result := make([]device.Characteristic, 0, len(s.characteristics))
	for _, char := range s.characteristics {
		result = append(result, char)
	}
	// Sort by UUID for consistent ordering
	sort.Slice(result, func(i, j int) bool {
		return result[i].UUID() < result[j].UUID()
	})
	return result
}
