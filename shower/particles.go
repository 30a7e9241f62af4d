package shower

import (
	"fmt"
	"sort"

	"github.com/sarchlab/steptrace/stepping"
	"github.com/sarchlab/steptrace/units"
)

var particleTable = map[string]*stepping.ParticleDefinition{
	"e-":      {Name: "e-", PDGCode: 11, Mass: 0.51099895 * units.MeV, Charge: -1},
	"e+":      {Name: "e+", PDGCode: -11, Mass: 0.51099895 * units.MeV, Charge: 1},
	"gamma":   {Name: "gamma", PDGCode: 22},
	"mu-":     {Name: "mu-", PDGCode: 13, Mass: 105.6583755 * units.MeV, Charge: -1},
	"mu+":     {Name: "mu+", PDGCode: -13, Mass: 105.6583755 * units.MeV, Charge: 1},
	"pi-":     {Name: "pi-", PDGCode: -211, Mass: 139.57039 * units.MeV, Charge: -1},
	"pi+":     {Name: "pi+", PDGCode: 211, Mass: 139.57039 * units.MeV, Charge: 1},
	"pi0":     {Name: "pi0", PDGCode: 111, Mass: 134.9768 * units.MeV},
	"proton":  {Name: "proton", PDGCode: 2212, Mass: 938.272088 * units.MeV, Charge: 1},
	"neutron": {Name: "neutron", PDGCode: 2112, Mass: 939.565420 * units.MeV},
}

// products lists the species an interaction of a particle may produce.
var products = map[string][]string{
	"e-":      {"e-", "gamma"},
	"e+":      {"e+", "gamma"},
	"gamma":   {"e-", "e+"},
	"mu-":     {"mu-", "e-", "gamma"},
	"mu+":     {"mu+", "e-", "gamma"},
	"pi-":     {"pi-", "pi+", "pi0", "proton", "neutron"},
	"pi+":     {"pi-", "pi+", "pi0", "proton", "neutron"},
	"pi0":     {"gamma"},
	"proton":  {"pi-", "pi+", "pi0", "proton", "neutron"},
	"neutron": {"pi-", "pi+", "pi0", "proton", "neutron"},
}

// interactionProcess names the discrete process of a particle.
var interactionProcess = map[string]string{
	"e-":    "eBrem",
	"e+":    "annihil",
	"gamma": "conv",
	"mu-":   "muPairProd",
	"mu+":   "muPairProd",
	"pi0":   "Decay",
}

// FindParticle returns the definition of a particle by name.
func FindParticle(name string) (*stepping.ParticleDefinition, error) {
	p, ok := particleTable[name]
	if !ok {
		return nil, fmt.Errorf("unknown particle %q, known: %v",
			name, ParticleNames())
	}

	return p, nil
}

// ParticleNames returns the names of the known particles, sorted.
func ParticleNames() []string {
	names := make([]string, 0, len(particleTable))
	for n := range particleTable {
		names = append(names, n)
	}

	sort.Strings(names)

	return names
}

func processName(p *stepping.ParticleDefinition) string {
	if name, ok := interactionProcess[p.Name]; ok {
		return name
	}

	return "hadInelastic"
}
